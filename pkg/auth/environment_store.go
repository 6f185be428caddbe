package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and mainly serves CI and container deployments.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	username := os.Getenv("ASSOCFEED_USERNAME")
	password := os.Getenv("ASSOCFEED_PASSWORD")

	if username == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Username:  username,
		Password:  password,
		UpdatedAt: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists() bool {
	_, err := e.Retrieve()
	return err == nil
}
