// ABOUTME: Session is a bounded unit of conversation owned by the identity
// ABOUTME: Open until explicitly ended; closed sessions reject new messages
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one conversation. EndedAt is nil while the session is open.
type Session struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identity_id"`
	Goal       string     `json:"goal,omitempty"`
	Title      string     `json:"title,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// NewSession creates an open session for the given identity.
func NewSession(identityID, goal string) (*Session, error) {
	if identityID == "" {
		return nil, fmt.Errorf("identityID cannot be empty")
	}
	return &Session{
		ID:         uuid.New().String(),
		IdentityID: identityID,
		Goal:       goal,
		StartedAt:  time.Now().UTC(),
	}, nil
}

// Open reports whether the session still accepts messages.
func (s *Session) Open() bool {
	return s.EndedAt == nil
}
