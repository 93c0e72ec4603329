package catalog

import "errors"

// ErrEmptyCatalog is returned when no products are available.
var ErrEmptyCatalog = errors.New("no products available")

// Store holds the customers and products loaded at startup. It is never
// mutated after NewStore returns, so concurrent readers need no locking.
type Store struct {
	customers map[string]Customer
	products  map[string]Product
	order     []string
}

// NewStore indexes customers and products by ID. Records without an ID are
// dropped. A repeated ID replaces the earlier record but keeps its position.
func NewStore(customers []Customer, products []Product) *Store {
	s := &Store{
		customers: make(map[string]Customer, len(customers)),
		products:  make(map[string]Product, len(products)),
		order:     make([]string, 0, len(products)),
	}
	for _, c := range customers {
		if c.ID == "" {
			continue
		}
		s.customers[c.ID] = c
	}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, seen := s.products[p.ID]; !seen {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
	return s
}

// Customer looks up a customer by ID.
func (s *Store) Customer(id string) (Customer, bool) {
	c, ok := s.customers[id]
	return c, ok
}

// Product looks up a product by ID.
func (s *Store) Product(id string) (Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// HasProduct reports whether id is a known product identifier.
func (s *Store) HasProduct(id string) bool {
	_, ok := s.products[id]
	return ok
}

// Products returns a fresh copy of all products in file order.
func (s *Store) Products() []Product {
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out
}

// CustomerCount returns the number of loaded customers.
func (s *Store) CustomerCount() int {
	return len(s.customers)
}

// ProductCount returns the number of loaded products.
func (s *Store) ProductCount() int {
	return len(s.order)
}
