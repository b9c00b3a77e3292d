// Package persistence maps the session and catalog onto a key-value profile.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

// Storage keys of the persisted profile.
const (
	KeyUser     = "user"
	KeyBooks    = "books"
	KeyAccounts = "accounts"
)

// SessionRepository stores the active identity as JSON under KeyUser.
type SessionRepository struct {
	kv ports.KeyValueStore
}

func NewSessionRepository(kv ports.KeyValueStore) *SessionRepository {
	return &SessionRepository{kv: kv}
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.User, error) {
	raw, err := r.kv.Get(ctx, KeyUser)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedPersistedState, KeyUser, err)
	}
	if !user.Valid() {
		return nil, fmt.Errorf("%w: %s: incomplete identity", domain.ErrMalformedPersistedState, KeyUser)
	}
	return &user, nil
}

func (r *SessionRepository) Save(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.kv.Set(ctx, KeyUser, raw)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, KeyUser)
}

// BookRepository stores the whole catalog as a JSON array under KeyBooks.
type BookRepository struct {
	kv ports.KeyValueStore
}

func NewBookRepository(kv ports.KeyValueStore) *BookRepository {
	return &BookRepository{kv: kv}
}

func (r *BookRepository) Load(ctx context.Context) ([]domain.Book, bool, error) {
	raw, err := r.kv.Get(ctx, KeyBooks)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var books []domain.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", domain.ErrMalformedPersistedState, KeyBooks, err)
	}
	if books == nil {
		return nil, true, fmt.Errorf("%w: %s: not an array", domain.ErrMalformedPersistedState, KeyBooks)
	}
	return books, true, nil
}

func (r *BookRepository) Save(ctx context.Context, books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode books: %w", err)
	}
	return r.kv.Set(ctx, KeyBooks, raw)
}

// AccountRepository stores registered accounts as a JSON array under
// KeyAccounts.
type AccountRepository struct {
	kv ports.KeyValueStore
}

func NewAccountRepository(kv ports.KeyValueStore) *AccountRepository {
	return &AccountRepository{kv: kv}
}

func (r *AccountRepository) Load(ctx context.Context) ([]domain.Account, error) {
	raw, err := r.kv.Get(ctx, KeyAccounts)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return []domain.Account{}, nil
	}
	if err != nil {
		return nil, err
	}

	var accounts []domain.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedPersistedState, KeyAccounts, err)
	}
	if accounts == nil {
		return nil, fmt.Errorf("%w: %s: not an array", domain.ErrMalformedPersistedState, KeyAccounts)
	}
	for _, a := range accounts {
		if !a.User.Valid() || a.Secret == "" {
			return nil, fmt.Errorf("%w: %s: incomplete account", domain.ErrMalformedPersistedState, KeyAccounts)
		}
	}
	return accounts, nil
}

func (r *AccountRepository) Save(ctx context.Context, accounts []domain.Account) error {
	if accounts == nil {
		accounts = []domain.Account{}
	}
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return r.kv.Set(ctx, KeyAccounts, raw)
}
