package storefront

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/candidates"
	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/profiles"
	"shopping-buddy/internal/shared/server/middleware"
	"shopping-buddy/internal/shared/server/respond"
)

// RegisterRoutes attaches the JSON API routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	registerValidators()
	rg.POST("/recommendations", h.recommend)
	rg.GET("/customers/:id/profile", h.profile)
	rg.POST("/customers/:id/profile/refresh", h.refreshProfile)
	rg.GET("/customers/:id/candidates", h.candidates)
	rg.GET("/backends", h.backends)
}

type recommendRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	Backend    string `json:"backend" binding:"omitempty,backend"`
	Model      string `json:"model" binding:"required"`
}

type recommendResponse struct {
	CustomerID      string `json:"customerId"`
	Backend         string `json:"backend"`
	Model           string `json:"model"`
	Profile         string `json:"profile"`
	Recommendations []Row  `json:"recommendations"`
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
		return
	}
	if strings.TrimSpace(req.Backend) == "" {
		req.Backend = string(h.Registry.Default())
	}
	c.Set(middleware.CustomerIDKey, req.CustomerID)
	c.Set(middleware.BackendKey, req.Backend)

	out := h.Recommend(c.Request.Context(), Input{CustomerID: req.CustomerID, Backend: req.Backend, Model: req.Model})
	if out.Failure != nil {
		var details any
		if out.Failure.Kind != "" {
			details = gin.H{"kind": out.Failure.Kind}
		}
		respond.Error(c, out.Failure.Status, out.Failure.Code, out.Failure.Message, details)
		return
	}
	respond.OK(c, recommendResponse{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		Backend:         strings.ToLower(strings.TrimSpace(req.Backend)),
		Model:           strings.TrimSpace(req.Model),
		Profile:         out.Profile,
		Recommendations: out.Rows,
	})
}

type profileResponse struct {
	CustomerID string     `json:"customerId"`
	Profile    string     `json:"profile"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func (h *Handler) profile(c *gin.Context) {
	customerID := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.CustomerIDKey, customerID)

	summary, err := h.Profiles.Get(c.Request.Context(), customerID)
	if err != nil {
		h.profileError(c, customerID, err)
		return
	}
	respond.OK(c, profileResponse{CustomerID: customerID, Profile: summary})
}

func (h *Handler) refreshProfile(c *gin.Context) {
	customerID := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.CustomerIDKey, customerID)

	p, err := h.Profiles.Refresh(c.Request.Context(), customerID)
	if err != nil {
		h.profileError(c, customerID, err)
		return
	}
	updated := p.UpdatedAt
	respond.OK(c, profileResponse{CustomerID: p.CustomerID, Profile: p.Summary, UpdatedAt: &updated})
}

func (h *Handler) profileError(c *gin.Context, customerID string, err error) {
	if errors.Is(err, profiles.ErrCustomerNotFound) {
		respond.Error(c, http.StatusNotFound, "customer_not_found", "Customer ID "+customerID+" not found in loaded data", nil)
		return
	}
	f := profileFailure(customerID, err)
	respond.Error(c, f.Status, f.Code, f.Message, nil)
}

type candidateResponse struct {
	ProductID   string  `json:"productId"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Season      string  `json:"season"`
}

func (h *Handler) candidates(c *gin.Context) {
	customerID := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.CustomerIDKey, customerID)

	if _, ok := h.Store.Customer(customerID); !ok {
		respond.Error(c, http.StatusNotFound, "customer_not_found", "Customer ID "+customerID+" not found in loaded data", nil)
		return
	}
	selected := candidates.Select(h.Store, customerID, h.MaxCandidates)
	items := make([]candidateResponse, 0, len(selected))
	for _, p := range selected {
		items = append(items, toCandidateResponse(p))
	}
	respond.OK(c, gin.H{"customerId": customerID, "items": items})
}

func toCandidateResponse(p catalog.Product) candidateResponse {
	return candidateResponse{
		ProductID:   p.ID,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Price:       p.Price,
		Rating:      p.Rating,
		Season:      p.Season,
	}
}

func (h *Handler) backends(c *gin.Context) {
	respond.OK(c, gin.H{
		"default":  h.Registry.Default(),
		"backends": h.Registry.Backends(),
	})
}
