package domain

import "time"

// Identity is the raw principal record supplied by the identity source.
type Identity struct {
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id"`
	Permissions    []string  `json:"permissions"`
	Active         bool      `json:"active"`
	FetchedAt      time.Time `json:"fetched_at"`
}
