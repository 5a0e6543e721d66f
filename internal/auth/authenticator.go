package auth

import (
	"context"

	"github.com/mmynk/invoicer/internal/models"
)

// Authenticator is what the billing server's /auth routes sign users in
// through. PasswordAuthenticator is the only implementation.
type Authenticator interface {
	// Register stores a new account. Implementations reject an email that is
	// already taken with ErrEmailExists and a weak credential with
	// ErrWeakPassword.
	Register(ctx context.Context, email, name, phone, credential string) (*models.User, error)

	// Authenticate returns the account for email, or ErrInvalidCredentials
	// when the email is unknown or the credential does not match.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}
