// Package auth is the identity collaborator: account registration, password
// login, session tokens and profile display names.
package auth

import (
	"context"

	"github.com/mmynk/natiapp/internal/models"
)

// Authenticator registers and verifies accounts.
// Password is the only implementation; the interface keeps the service layer
// unaware of how credentials are checked.
type Authenticator interface {
	// Register creates an account. Email is normalised to lower case.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}

// Profiles reads and edits the public part of an account.
type Profiles interface {
	// User returns the account with the given ID, or ErrUserNotFound.
	User(ctx context.Context, id string) (*models.User, error)

	// SetDisplayName changes the name shown to other members and in reports.
	SetDisplayName(ctx context.Context, id, displayName string) (*models.User, error)
}
