package models

import "time"

// Keyword intent constants
const (
	IntentInformational = "informational"
	IntentCommercial    = "commercial"
	IntentTransactional = "transactional"
	IntentNavigational  = "navigational"
	IntentMixed         = "mixed"
)

// Keyword is a tracked search term. Identity fields are owned by the catalog
// and are read-only here.
type Keyword struct {
	ID            int64     `json:"id"`
	Keyword       string    `json:"keyword"`
	TargetURL     string    `json:"target_url"`
	SearchCountry string    `json:"search_country"`
	Intent        *string   `json:"intent"` // informational, commercial, transactional, navigational
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IntentOrEmpty returns the keyword intent, or "" when unset.
func (k *Keyword) IntentOrEmpty() string {
	if k.Intent == nil {
		return ""
	}
	return *k.Intent
}
