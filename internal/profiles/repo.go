package profiles

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Repo when no profile is cached for an ID.
var ErrNotFound = errors.New("profile not found")

// Repo persists profile summaries. Upsert replaces the whole record and the
// last write wins.
type Repo interface {
	Get(ctx context.Context, customerID string) (Profile, error)
	Upsert(ctx context.Context, profile Profile) error
	Close() error
}
