// ABOUTME: Key custodian backed by the operating system credential store
// ABOUTME: Get-or-create semantics for the root encryption key and install ID
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	zkeyring "github.com/zalando/go-keyring"
)

const (
	rootKeyEntry   = "root-key"
	installIDEntry = "install-id"

	rootKeyBytes = 32 // AES-256
)

// ErrCredentialStore is returned when the OS credential store cannot be
// reached. There is no fallback to an unprotected key.
var ErrCredentialStore = errors.New("credential store unavailable")

// CredentialStore is the narrow surface the custodian needs from a secret
// backend. The system backend delegates to the OS keyring; tests use the
// in-memory implementation.
type CredentialStore interface {
	Get(service, entry string) (string, error)
	Set(service, entry, value string) error
}

// ErrEntryNotFound signals a missing entry, as distinct from an unreachable
// store.
var ErrEntryNotFound = errors.New("credential entry not found")

// SystemStore delegates to the OS credential store (Keychain, libsecret,
// Windows Credential Manager).
type SystemStore struct{}

func (SystemStore) Get(service, entry string) (string, error) {
	v, err := zkeyring.Get(service, entry)
	if errors.Is(err, zkeyring.ErrNotFound) {
		return "", ErrEntryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentialStore, err)
	}
	return v, nil
}

func (SystemStore) Set(service, entry, value string) error {
	if err := zkeyring.Set(service, entry, value); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialStore, err)
	}
	return nil
}

// MemStore is an in-memory CredentialStore for tests.
type MemStore struct {
	entries map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]string)}
}

func (m *MemStore) Get(service, entry string) (string, error) {
	v, ok := m.entries[service+"/"+entry]
	if !ok {
		return "", ErrEntryNotFound
	}
	return v, nil
}

func (m *MemStore) Set(service, entry, value string) error {
	m.entries[service+"/"+entry] = value
	return nil
}

// Custodian owns the root key and the stable per-installation identifier.
// The key never leaves the process boundary.
type Custodian struct {
	store   CredentialStore
	service string
}

// NewCustodian creates a custodian over the given backend.
func NewCustodian(store CredentialStore, service string) *Custodian {
	return &Custodian{store: store, service: service}
}

// RootKey returns the device's symmetric root key, generating and persisting
// a fresh random key on first call.
func (c *Custodian) RootKey() ([]byte, error) {
	existing, err := c.store.Get(c.service, rootKeyEntry)
	if err == nil {
		key, decErr := hex.DecodeString(existing)
		if decErr != nil || len(key) != rootKeyBytes {
			return nil, fmt.Errorf("stored root key is malformed")
		}
		return key, nil
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return nil, err
	}

	key := make([]byte, rootKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating root key: %w", err)
	}
	if err := c.store.Set(c.service, rootKeyEntry, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// InstallID returns the stable per-installation identifier, minting one on
// first call. It seeds the Identity entity and is echoed into store metadata
// for a startup cross-check.
func (c *Custodian) InstallID() (string, error) {
	existing, err := c.store.Get(c.service, installIDEntry)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return "", err
	}

	id := uuid.New().String()
	if err := c.store.Set(c.service, installIDEntry, id); err != nil {
		return "", err
	}
	return id, nil
}
