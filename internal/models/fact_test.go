// ABOUTME: Tests for Fact model creation and validation
// ABOUTME: Verifies NewFact constructor, confidence clamping and field helpers
package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewFact(t *testing.T) {
	tests := []struct {
		name       string
		identityID string
		category   string
		predicate  string
		object     string
		confidence float64
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "valid fact",
			identityID: "ident_001",
			category:   "location",
			predicate:  "city",
			object:     "Philadelphia",
			confidence: 0.9,
			wantErr:    false,
		},
		{
			name:       "empty identity",
			identityID: "",
			category:   "location",
			predicate:  "city",
			object:     "Philadelphia",
			confidence: 0.9,
			wantErr:    true,
			errMsg:     "identityID cannot be empty",
		},
		{
			name:       "empty category",
			identityID: "ident_001",
			category:   "",
			predicate:  "city",
			object:     "Philadelphia",
			confidence: 0.9,
			wantErr:    true,
			errMsg:     "category and predicate cannot be empty",
		},
		{
			name:       "empty predicate",
			identityID: "ident_001",
			category:   "location",
			predicate:  "",
			object:     "Philadelphia",
			confidence: 0.9,
			wantErr:    true,
			errMsg:     "category and predicate cannot be empty",
		},
		{
			name:       "empty object",
			identityID: "ident_001",
			category:   "location",
			predicate:  "city",
			object:     "",
			confidence: 0.9,
			wantErr:    true,
			errMsg:     "object cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fact, err := NewFact(tt.identityID, tt.category, tt.predicate, tt.object, tt.confidence)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want contains %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fact.ID == "" {
				t.Error("fact ID should be generated")
			}
			if fact.DecayHalfLifeDays != DefaultHalfLifeDays {
				t.Errorf("half-life = %v, want %v", fact.DecayHalfLifeDays, DefaultHalfLifeDays)
			}
			if fact.ConsentScope != ConsentShareable {
				t.Errorf("consent scope = %q, want %q", fact.ConsentScope, ConsentShareable)
			}
		})
	}
}

func TestNewFact_ClampsConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.7, 0.7},
		{1, 1},
		{1.5, 1},
	}

	for _, tt := range tests {
		fact, err := NewFact("ident_001", "c", "p", "o", tt.in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fact.Confidence != tt.want {
			t.Errorf("confidence(%v) = %v, want %v", tt.in, fact.Confidence, tt.want)
		}
	}
}

func TestFact_ReinforcedAt(t *testing.T) {
	fact, err := NewFact("ident_001", "c", "p", "o", 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fact.ReinforcedAt(); !got.Equal(fact.CreatedAt) {
		t.Errorf("ReinforcedAt = %v, want creation time %v", got, fact.CreatedAt)
	}

	later := fact.CreatedAt.Add(48 * time.Hour)
	fact.LastReinforcedAt = &later
	if got := fact.ReinforcedAt(); !got.Equal(later) {
		t.Errorf("ReinforcedAt = %v, want reinforcement time %v", got, later)
	}
}

func TestValidSensitivity(t *testing.T) {
	for s := SensitivityPublic; s <= MaxSensitivity; s++ {
		if !ValidSensitivity(s) {
			t.Errorf("ValidSensitivity(%d) = false, want true", s)
		}
	}
	if ValidSensitivity(-1) || ValidSensitivity(4) {
		t.Error("out-of-range sensitivity accepted")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	if ValidRole("moderator") {
		t.Error("unknown role accepted")
	}
}
