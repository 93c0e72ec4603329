// Package storefront serves the recommendation form and its JSON API.
package storefront

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/profiles"
	"shopping-buddy/internal/recommendations"
	"shopping-buddy/internal/shared/server/middleware"
	"shopping-buddy/internal/shared/telemetry"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).ParseFS(templateFS, "templates/index.html"))

// Handler wires HTTP handlers to the recommendation pipeline.
type Handler struct {
	Profiles      *profiles.Service
	Store         *catalog.Store
	Requester     *recommendations.Requester
	Registry      *llm.Registry
	MaxCandidates int
}

// NewHandler constructs a Handler.
func NewHandler(profileSvc *profiles.Service, store *catalog.Store, requester *recommendations.Requester, registry *llm.Registry, maxCandidates int) *Handler {
	return &Handler{
		Profiles:      profileSvc,
		Store:         store,
		Requester:     requester,
		Registry:      registry,
		MaxCandidates: maxCandidates,
	}
}

// RegisterPageRoutes attaches the HTML form routes.
func (h *Handler) RegisterPageRoutes(r gin.IRoutes) {
	r.GET("/", h.showForm)
	r.POST("/", h.submitForm)
}

type pageData struct {
	CustomerID      string
	Profile         string
	Rows            []Row
	ShowResults     bool
	FlashError      string
	Backends        []llm.BackendInfo
	ModelOptions    map[string][]string
	SelectedBackend string
	SelectedModel   string
}

func (h *Handler) showForm(c *gin.Context) {
	data := h.basePage()
	data.SelectedBackend = string(h.Registry.Default())
	if models := data.ModelOptions[data.SelectedBackend]; len(models) > 0 {
		data.SelectedModel = models[0]
	}
	h.render(c, http.StatusOK, data)
}

func (h *Handler) submitForm(c *gin.Context) {
	in := Input{
		CustomerID: strings.TrimSpace(c.PostForm("customer_id")),
		Backend:    strings.TrimSpace(c.PostForm("llm_service")),
		Model:      strings.TrimSpace(c.PostForm("generation_model")),
	}
	if in.Backend == "" {
		in.Backend = string(h.Registry.Default())
	}
	c.Set(middleware.CustomerIDKey, in.CustomerID)
	c.Set(middleware.BackendKey, in.Backend)

	out := h.Recommend(c.Request.Context(), in)

	data := h.basePage()
	data.CustomerID = in.CustomerID
	data.SelectedBackend = in.Backend
	data.SelectedModel = in.Model
	data.Profile = out.Profile
	data.Rows = out.Rows
	data.ShowResults = out.Rows != nil
	if out.Failure != nil {
		data.FlashError = out.Failure.Message
	}
	h.render(c, http.StatusOK, data)
}

func (h *Handler) basePage() pageData {
	backends := h.Registry.Backends()
	options := make(map[string][]string, len(backends))
	for _, b := range backends {
		options[string(b.Name)] = b.Models
	}
	return pageData{Backends: backends, ModelOptions: options}
}

func (h *Handler) render(c *gin.Context, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		telemetry.Error("storefront.render_failed", map[string]any{"error": err})
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
