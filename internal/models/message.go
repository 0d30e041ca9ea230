// ABOUTME: Message is one immutable turn in a session
// ABOUTME: Content is plaintext in memory and ciphertext at rest
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the originator of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ValidRole reports whether r is one of the three allowed roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single conversation turn. Messages are append-only: there is
// no update path anywhere in the store.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message for an open session.
func NewMessage(sessionID string, role Role, content string) (*Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if content == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	return &Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}
