// Package recommendations turns a customer profile and candidate list into a
// ranked recommendation list using one of the configured LLM backends.
package recommendations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/shared/metrics"
	"shopping-buddy/internal/shared/telemetry"
	"shopping-buddy/internal/shared/util"
)

// Requester builds prompts, calls a backend once and validates its answer.
type Requester struct {
	Registry   *llm.Registry
	MaxDetails int
}

func NewRequester(registry *llm.Registry, maxDetails int) *Requester {
	return &Requester{Registry: registry, MaxDetails: maxDetails}
}

// Request returns ranked items or an *Error. It never retries.
func (r *Requester) Request(ctx context.Context, profile string, candidates []catalog.Product, backend llm.Backend, model string) ([]Item, error) {
	if len(candidates) == 0 {
		metrics.IncRecommendation(string(backend), string(KindNoCandidates))
		return nil, &Error{Kind: KindNoCandidates, Reason: "Could not generate: No candidates."}
	}

	client, err := r.client(backend)
	if err != nil {
		metrics.IncRecommendation("unknown", string(KindUnknownBackend))
		return nil, &Error{
			Kind:   KindUnknownBackend,
			Reason: fmt.Sprintf("Invalid service configuration: %s", backend),
			Err:    err,
		}
	}

	prompt, err := BuildPrompt(profile, candidates, r.MaxDetails)
	if err != nil {
		return nil, err
	}

	telemetry.Info("recommendations.prompt_sent", map[string]any{
		"backend":    string(backend),
		"model":      model,
		"candidates": len(candidates),
		"prompt_id":  util.Fingerprint(prompt),
	})
	start := time.Now()
	raw, err := client.Generate(ctx, prompt, model)
	metrics.ObserveLLMDuration(string(backend), time.Since(start))
	if err != nil {
		metrics.IncRecommendation(string(backend), string(KindBackend))
		telemetry.Error("recommendations.backend_failed", map[string]any{
			"backend": string(backend),
			"model":   model,
			"error":   err,
		})
		return nil, &Error{
			Kind:   KindBackend,
			Reason: fmt.Sprintf("Could not get recommendations from %s: %v", backend, err),
			Err:    err,
		}
	}

	elems, err := ParseResponse(raw)
	if err != nil {
		var recErr *Error
		if errors.As(err, &recErr) {
			metrics.IncRecommendation(string(backend), string(recErr.Kind))
			fields := map[string]any{
				"backend": string(backend),
				"model":   model,
				"kind":    string(recErr.Kind),
			}
			if recErr.RawOutput != "" {
				fields["raw_output"] = recErr.RawOutput
			}
			telemetry.Warn("recommendations.invalid_response", fields)
		}
		return nil, err
	}

	metrics.IncRecommendation(string(backend), "ok")
	telemetry.Info("recommendations.parsed", map[string]any{
		"backend": string(backend),
		"items":   len(elems),
	})
	return DecodeItems(elems), nil
}

func (r *Requester) client(backend llm.Backend) (llm.Client, error) {
	parsed, err := llm.ParseBackend(string(backend))
	if err != nil {
		return nil, err
	}
	if r.Registry == nil {
		return nil, fmt.Errorf("%w: %s", llm.ErrUnknownBackend, backend)
	}
	return r.Registry.Client(parsed)
}
