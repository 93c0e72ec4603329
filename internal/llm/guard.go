package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"shopping-buddy/internal/shared/telemetry"
)

// GuardConfig bounds each backend call.
type GuardConfig struct {
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type guarded struct {
	backend Backend
	inner   Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[string]
}

// Guard wraps a client with a per-call timeout and a circuit breaker that
// opens after FailureThreshold consecutive failures. Missing credentials do
// not count as failures.
func Guard(b Backend, c Client, cfg GuardConfig) Client {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        string(b),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("llm.breaker_state", map[string]any{
				"backend": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMissingCredential)
		},
	}
	return &guarded{
		backend: b,
		inner:   c,
		timeout: cfg.Timeout,
		cb:      gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (g *guarded) Generate(ctx context.Context, prompt, model string) (string, error) {
	out, err := g.cb.Execute(func() (string, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.inner.Generate(callCtx, prompt, model)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%s temporarily unavailable: %w", g.backend.Label(), err)
	}
	return out, err
}
