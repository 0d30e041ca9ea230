// ABOUTME: Fact is a durable (category, predicate) -> object triple about the user
// ABOUTME: Carries confidence, sensitivity, consent scope and decay parameters
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sensitivity levels classify how private a fact's object is, ordered from
// public to highly sensitive.
const (
	SensitivityPublic     = 0
	SensitivityLow        = 1
	SensitivityPersonal   = 2
	SensitivityRestricted = 3

	MaxSensitivity = SensitivityRestricted
)

// ConsentScope controls whether a fact may ever be surfaced outside local
// storage. NeverShare is an absolute exclusion on every read path.
type ConsentScope string

const (
	ConsentShareable  ConsentScope = "shareable"
	ConsentNeverShare ConsentScope = "never_share"
)

// ValidConsentScope reports whether c is a known scope.
func ValidConsentScope(c ConsentScope) bool {
	return c == ConsentShareable || c == ConsentNeverShare
}

// DefaultHalfLifeDays is how long an un-reinforced fact takes to lose half
// its relevance.
const DefaultHalfLifeDays = 90.0

// Fact is one learned triple. (IdentityID, Category, Predicate) is unique in
// the store; writes to an existing triple update in place.
type Fact struct {
	ID                string       `json:"id"`
	IdentityID        string       `json:"identity_id"`
	Category          string       `json:"category"`
	Predicate         string       `json:"predicate"`
	Object            string       `json:"object"`
	Confidence        float64      `json:"confidence"`
	Sensitivity       int          `json:"sensitivity"`
	ConsentScope      ConsentScope `json:"consent_scope"`
	SourceMessageID   string       `json:"source_message_id,omitempty"`
	DecayHalfLifeDays float64      `json:"decay_half_life_days"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	LastReinforcedAt  *time.Time   `json:"last_reinforced_at,omitempty"`
}

// NewFact creates a fact with validated fields. Confidence is clamped to
// [0,1]; sensitivity defaults to low and consent to shareable.
func NewFact(identityID, category, predicate, object string, confidence float64) (*Fact, error) {
	if identityID == "" {
		return nil, fmt.Errorf("identityID cannot be empty")
	}
	if category == "" || predicate == "" {
		return nil, fmt.Errorf("category and predicate cannot be empty")
	}
	if object == "" {
		return nil, fmt.Errorf("object cannot be empty")
	}
	now := time.Now().UTC()
	return &Fact{
		ID:                uuid.New().String(),
		IdentityID:        identityID,
		Category:          category,
		Predicate:         predicate,
		Object:            object,
		Confidence:        ClampConfidence(confidence),
		Sensitivity:       SensitivityLow,
		ConsentScope:      ConsentShareable,
		DecayHalfLifeDays: DefaultHalfLifeDays,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ValidSensitivity reports whether s is within the 0..3 ordinal range.
func ValidSensitivity(s int) bool {
	return s >= SensitivityPublic && s <= MaxSensitivity
}

// ReinforcedAt returns the timestamp decay is measured from: the last
// reinforcement if any, otherwise creation time.
func (f *Fact) ReinforcedAt() time.Time {
	if f.LastReinforcedAt != nil {
		return *f.LastReinforcedAt
	}
	return f.CreatedAt
}
