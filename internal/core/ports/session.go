package ports

import (
	"context"

	"github.com/99minutos/library-catalog/internal/core/domain"
)

// AccountDirectory holds every identity that can log in.
type AccountDirectory interface {
	// FindByEmail returns (nil, nil) when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Create returns domain.ErrEmailAlreadyInUse for a duplicate email.
	Create(ctx context.Context, account domain.Account) error
	// Remove deletes a registered account. Built-in accounts cannot be removed.
	Remove(ctx context.Context, email string) error
}

// AccountRepository persists the accounts created through registration.
type AccountRepository interface {
	// Load returns an empty slice when nothing has been persisted.
	Load(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, accounts []domain.Account) error
}

// CredentialVerifier turns passwords into stored secrets and checks them.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(secret, password string) bool
}

// IdentitySource exposes the active identity to other stores.
type IdentitySource interface {
	CurrentIdentity() (*domain.User, bool)
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
