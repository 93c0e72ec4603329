package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/shared/metrics"
	"shopping-buddy/internal/shared/telemetry"
)

// ErrCustomerNotFound is returned when an ID is neither cached nor loaded.
var ErrCustomerNotFound = errors.New("customer not found")

const (
	placeholder       = "N/A"
	recentHistorySize = 5
	defaultWriteLimit = 5 * time.Second
)

// Service builds customer profile summaries, consulting the cache first.
type Service struct {
	Repo         Repo
	Store        *catalog.Store
	WriteTimeout time.Duration

	writes sync.WaitGroup
	now    func() time.Time
}

func NewService(repo Repo, store *catalog.Store, writeTimeout time.Duration) *Service {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteLimit
	}
	return &Service{Repo: repo, Store: store, WriteTimeout: writeTimeout, now: time.Now}
}

// Get returns the cached summary for customerID, or renders a new one from
// the loaded data and stores it in the background. A cache hit is returned
// unchanged even if the loaded record has since changed.
func (s *Service) Get(ctx context.Context, customerID string) (string, error) {
	if s == nil || s.Store == nil {
		return "", errors.New("profiles service not configured")
	}

	if cached, ok := s.lookup(ctx, customerID); ok {
		return cached.Summary, nil
	}

	customer, ok := s.Store.Customer(customerID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
	}

	summary := Render(customer)
	s.saveAsync(ctx, Profile{CustomerID: customerID, Summary: summary, UpdatedAt: s.clock().UTC()})
	return summary, nil
}

// Refresh regenerates the summary from the loaded data and replaces the
// cached copy before returning.
func (s *Service) Refresh(ctx context.Context, customerID string) (Profile, error) {
	if s == nil || s.Store == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	customer, ok := s.Store.Customer(customerID)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
	}
	profile := Profile{CustomerID: customerID, Summary: Render(customer), UpdatedAt: s.clock().UTC()}
	if s.Repo != nil {
		if err := s.Repo.Upsert(ctx, profile); err != nil {
			metrics.IncProfileCacheWriteFailure()
			return Profile{}, fmt.Errorf("store profile: %w", err)
		}
	}
	telemetry.Info("profile.refreshed", map[string]any{"customer_id": customerID})
	return profile, nil
}

// Wait blocks until background cache writes have finished.
func (s *Service) Wait() {
	s.writes.Wait()
}

func (s *Service) lookup(ctx context.Context, customerID string) (Profile, bool) {
	if s.Repo == nil {
		return Profile{}, false
	}
	profile, err := s.Repo.Get(ctx, customerID)
	if err == nil {
		metrics.IncProfileCacheHit()
		telemetry.Info("profile.cache_hit", map[string]any{"customer_id": customerID})
		return profile, true
	}
	metrics.IncProfileCacheMiss()
	if !errors.Is(err, ErrNotFound) {
		telemetry.Warn("profile.cache_read_failed", map[string]any{
			"customer_id": customerID,
			"error":       err,
		})
	}
	return Profile{}, false
}

// saveAsync writes the profile on a detached goroutine. The result is
// discarded; failures are logged and counted only.
func (s *Service) saveAsync(ctx context.Context, profile Profile) {
	if s.Repo == nil {
		return
	}
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.WriteTimeout)
		defer cancel()
		if err := s.Repo.Upsert(writeCtx, profile); err != nil {
			metrics.IncProfileCacheWriteFailure()
			telemetry.Error("profile.cache_write_failed", map[string]any{
				"customer_id": profile.CustomerID,
				"error":       err,
			})
			return
		}
		telemetry.Info("profile.cached", map[string]any{"customer_id": profile.CustomerID})
	}()
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Render produces the fixed-format profile text for a customer.
func Render(c catalog.Customer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer Profile for %s:\n", c.ID)
	fmt.Fprintf(&b, "- Age: %s\n", orNA(formatAge(c.Age)))
	fmt.Fprintf(&b, "- Gender: %s\n", orNA(c.Gender))
	fmt.Fprintf(&b, "- Location: %s\n", orNA(c.Location))
	fmt.Fprintf(&b, "- Segment: %s\n", orNA(c.Segment))
	fmt.Fprintf(&b, "- Avg Order Value: %s\n", orNA(formatAmount(c.AvgOrderValue)))
	fmt.Fprintf(&b, "- Prefers Holiday Shopping: %s\n", orNA(c.Holiday))
	fmt.Fprintf(&b, "- Active Season: %s\n", orNA(c.Season))
	fmt.Fprintf(&b, "- Recently Browsed: %s...\n", strings.Join(firstN(c.BrowsingHistory, recentHistorySize), ", "))
	fmt.Fprintf(&b, "- Recently Purchased: %s...\n", strings.Join(firstN(c.PurchaseHistory, recentHistorySize), ", "))
	return b.String()
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func formatAge(age *int) string {
	if age == nil {
		return ""
	}
	return strconv.Itoa(*age)
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
