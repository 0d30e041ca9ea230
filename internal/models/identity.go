// ABOUTME: Identity represents the single per-installation owner of all stored memory
// ABOUTME: Created once at first startup and never deleted by normal operation
package models

import "time"

// Identity is the one-per-device owner row. The ID is minted by the key
// custodian and never changes for the life of the installation.
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
