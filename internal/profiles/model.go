package profiles

import "time"

// Profile is a cached customer profile summary.
type Profile struct {
	CustomerID string    `json:"customerId"`
	Summary    string    `json:"summary"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
