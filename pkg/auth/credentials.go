// Package auth stores the portal credential pair outside the config file,
// preferring the system keychain with an environment fallback.
package auth

import (
	"errors"
	"time"
)

var (
	// ErrCredentialsNotFound indicates no stored credentials exist
	ErrCredentialsNotFound = errors.New("credentials not found")
	// ErrInvalidCredentials indicates the credentials are malformed
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable indicates the store cannot perform the operation
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Credentials is the portal username/password pair used for digest auth.
type Credentials struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves the credential pair
	Store(creds *Credentials) error

	// Retrieve gets the stored credential pair
	Retrieve() (*Credentials, error)

	// Delete removes the stored credential pair
	Delete() error

	// Exists checks if credentials are stored
	Exists() bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager. The system keychain is preferred;
// environment variables are the read-only fallback.
func NewManager() *Manager {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		return ErrInvalidCredentials
	}
	creds.UpdatedAt = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = ErrStoreUnavailable
	}
	return lastErr
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve() (*Credentials, error) {
	for _, store := range m.stores {
		creds, err := store.Retrieve()
		if err == nil {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes credentials from every store that holds them
func (m *Manager) Delete() error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists() {
			if err := store.Delete(); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks if credentials exist in any store
func (m *Manager) Exists() bool {
	for _, store := range m.stores {
		if store.Exists() {
			return true
		}
	}
	return false
}
