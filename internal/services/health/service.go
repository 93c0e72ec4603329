package health

import (
	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
)

// Status is the payload served by the health endpoint.
type Status struct {
	OK        bool            `json:"ok"`
	Customers int             `json:"customers"`
	Products  int             `json:"products"`
	Backends  map[string]bool `json:"backends"`
}

// Service encapsulates health-related checks.
type Service struct {
	Catalog  *catalog.Store
	Registry *llm.Registry
}

// NewService constructs a new health service.
func NewService(store *catalog.Store, registry *llm.Registry) *Service {
	return &Service{Catalog: store, Registry: registry}
}

// Status reports loaded data sizes and which backends have credentials.
// The process is healthy once products are loaded.
func (s *Service) Status() Status {
	st := Status{Backends: map[string]bool{}}
	if s == nil {
		return st
	}
	if s.Catalog != nil {
		st.Customers = s.Catalog.CustomerCount()
		st.Products = s.Catalog.ProductCount()
	}
	if s.Registry != nil {
		for _, b := range s.Registry.Backends() {
			st.Backends[string(b.Name)] = b.Available
		}
	}
	st.OK = st.Products > 0
	return st
}
