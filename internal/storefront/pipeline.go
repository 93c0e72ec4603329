package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shopping-buddy/internal/candidates"
	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/profiles"
	"shopping-buddy/internal/recommendations"
	"shopping-buddy/internal/shared/telemetry"
)

const notAvailable = "N/A"

// Failure is a user-facing pipeline error. Message is shown verbatim on the
// form; Status and Code are used by the JSON API.
type Failure struct {
	Status  int
	Code    string
	Message string
	Kind    recommendations.Kind
}

func (f *Failure) Error() string {
	return f.Message
}

// Input is one recommendation request.
type Input struct {
	CustomerID string
	Backend    string
	Model      string
}

// Row is one recommendation resolved against the loaded catalog.
type Row struct {
	ProductID   string  `json:"productId"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Price       string  `json:"price,omitempty"`
	Rating      string  `json:"rating,omitempty"`
	Explanation *string `json:"explanation"`
	Error       string  `json:"error,omitempty"`
}

// Outcome is the result of a pipeline run. Profile is kept when a later
// stage fails so the form can still show it. Rows is non-nil only when the
// pipeline reached candidate selection.
type Outcome struct {
	Profile string
	Rows    []Row
	Failure *Failure
}

// Recommend runs profile, candidate selection and the backend request in
// sequence and resolves the returned items against the catalog.
func (h *Handler) Recommend(ctx context.Context, in Input) Outcome {
	customerID := strings.TrimSpace(in.CustomerID)
	model := strings.TrimSpace(in.Model)
	backendName := strings.TrimSpace(in.Backend)
	if backendName == "" {
		backendName = string(h.Registry.Default())
	}

	if customerID == "" {
		return Outcome{Failure: validationFailure("Please enter a Customer ID.")}
	}
	if model == "" {
		return Outcome{Failure: validationFailure("Please select a Generation Model.")}
	}

	backend, err := h.backend(backendName)
	if err != nil {
		return Outcome{Failure: &Failure{
			Status:  http.StatusBadRequest,
			Code:    "unknown_backend",
			Message: fmt.Sprintf("LLM Error: Invalid service configuration: %s", backendName),
			Kind:    recommendations.KindUnknownBackend,
		}}
	}
	if !h.Registry.Available(backend) {
		return Outcome{Failure: &Failure{
			Status:  http.StatusServiceUnavailable,
			Code:    "backend_unavailable",
			Message: fmt.Sprintf("Error: %s selected, but %s env var not set.", backend.Label(), backend.CredentialEnv()),
		}}
	}

	telemetry.Info("storefront.request", map[string]any{
		"customer_id": customerID,
		"backend":     string(backend),
		"model":       model,
	})

	profile, err := h.Profiles.Get(ctx, customerID)
	if err != nil {
		return Outcome{Failure: profileFailure(customerID, err)}
	}

	cands := candidates.Select(h.Store, customerID, h.MaxCandidates)
	if len(cands) == 0 {
		return Outcome{
			Profile: profile,
			Rows:    []Row{},
			Failure: &Failure{
				Status:  http.StatusUnprocessableEntity,
				Code:    "no_candidates",
				Message: "No suitable candidate products found based on profile filtering.",
				Kind:    recommendations.KindNoCandidates,
			},
		}
	}

	items, err := h.Requester.Request(ctx, profile, cands, backend, model)
	if err != nil {
		return Outcome{Profile: profile, Failure: requestFailure(err)}
	}

	return Outcome{Profile: profile, Rows: h.resolve(items)}
}

func (h *Handler) backend(name string) (llm.Backend, error) {
	b, err := llm.ParseBackend(name)
	if err != nil {
		return "", err
	}
	if _, err := h.Registry.Client(b); err != nil {
		return "", err
	}
	return b, nil
}

func (h *Handler) resolve(items []recommendations.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			rows = append(rows, Row{ProductID: notAvailable, Category: notAvailable, Error: "Missing product_id from LLM"})
			continue
		}
		p, ok := h.Store.Product(item.ProductID)
		if !ok {
			rows = append(rows, Row{
				ProductID:   item.ProductID,
				Category:    notAvailable,
				Error:       "Product details not found",
				Explanation: item.Explanation,
			})
			continue
		}
		rows = append(rows, productRow(p, item.Explanation))
	}
	return rows
}

func productRow(p catalog.Product, explanation *string) Row {
	return Row{
		ProductID:   p.ID,
		Category:    orNA(p.Category),
		Subcategory: orNA(p.Subcategory),
		Brand:       orNA(p.Brand),
		Price:       orNA(formatNumber(p.Price)),
		Rating:      orNA(formatNumber(p.Rating)),
		Explanation: explanation,
	}
}

func validationFailure(msg string) *Failure {
	return &Failure{Status: http.StatusBadRequest, Code: "validation_error", Message: msg}
}

func profileFailure(customerID string, err error) *Failure {
	if errors.Is(err, profiles.ErrCustomerNotFound) {
		return &Failure{
			Status:  http.StatusNotFound,
			Code:    "customer_not_found",
			Message: fmt.Sprintf("Error: Customer ID %s not found in loaded data.", customerID),
		}
	}
	telemetry.Error("storefront.profile_failed", map[string]any{
		"customer_id": customerID,
		"error":       err,
	})
	return &Failure{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "An unexpected server error occurred.",
	}
}

func requestFailure(err error) *Failure {
	var recErr *recommendations.Error
	if !errors.As(err, &recErr) {
		telemetry.Error("storefront.request_failed", map[string]any{"error": err})
		return &Failure{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "An unexpected server error occurred.",
		}
	}
	status := http.StatusBadGateway
	if recErr.Kind == recommendations.KindUnknownBackend {
		status = http.StatusBadRequest
	}
	return &Failure{
		Status:  status,
		Code:    "llm_error",
		Message: "LLM Error: " + recErr.Reason,
		Kind:    recErr.Kind,
	}
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
