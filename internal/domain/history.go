package domain

import "time"

// AdoptionStatus records what the user did with a search's results. It is set
// after the fact through the feedback flow, never during the search itself.
type AdoptionStatus string

const (
	AdoptionStatusAdopted          AdoptionStatus = "adopted"
	AdoptionStatusPartiallyAdopted AdoptionStatus = "partially_adopted"
	AdoptionStatusRejected         AdoptionStatus = "rejected"
)

// IsValidAdoptionStatus reports whether s is a recognized adoption status.
func IsValidAdoptionStatus(s AdoptionStatus) bool {
	switch s {
	case AdoptionStatusAdopted, AdoptionStatusPartiallyAdopted, AdoptionStatusRejected:
		return true
	}
	return false
}

// SearchHistory is one persisted search and its outcome, kept for analytics.
// Created best-effort per search that carries a user id; its creation never
// affects the search response.
type SearchHistory struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Query          string         `json:"query"`
	Role           Role           `json:"role,omitempty"`
	ResultsCount   int            `json:"results_count"`
	AdoptionStatus AdoptionStatus `json:"adoption_status,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
