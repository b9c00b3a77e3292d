// Package directory holds the accounts that can log in: the built-in seed
// accounts plus every account created through registration.
package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

var ErrBuiltinAccount = errors.New("built-in accounts cannot be removed")

// Directory is a ports.AccountDirectory keyed by exact email. When backed by a
// repository, registered accounts are persisted before they become visible.
type Directory struct {
	mu         sync.RWMutex
	accounts   map[string]domain.Account
	builtin    map[string]bool
	registered []domain.Account
	repo       ports.AccountRepository
}

func New() *Directory {
	return &Directory{
		accounts: make(map[string]domain.Account),
		builtin:  make(map[string]bool),
	}
}

// NewSeeded returns an in-memory directory holding the built-in accounts, with
// their passwords turned into secrets by verifier.
func NewSeeded(verifier ports.CredentialVerifier, now time.Time) (*Directory, error) {
	d := New()
	for _, seed := range domain.SeedAccounts(now) {
		secret, err := verifier.Hash(seed.Password)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", seed.User.Email, err)
		}
		d.accounts[seed.User.Email] = domain.Account{User: seed.User, Secret: secret}
		d.builtin[seed.User.Email] = true
	}
	return d, nil
}

// Open returns a seeded directory that also holds the accounts persisted in
// repo. A malformed persisted list is logged and ignored; it is overwritten by
// the next registration.
func Open(ctx context.Context, verifier ports.CredentialVerifier, repo ports.AccountRepository, now time.Time, logger zerolog.Logger) (*Directory, error) {
	d, err := NewSeeded(verifier, now)
	if err != nil {
		return nil, err
	}
	d.repo = repo

	persisted, err := repo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrMalformedPersistedState):
		logger.Warn().Err(err).Msg("ignoring malformed persisted accounts")
		return d, nil
	case err != nil:
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	for _, a := range persisted {
		if _, exists := d.accounts[a.User.Email]; exists {
			logger.Warn().Str("email", a.User.Email).Msg("skipping duplicate persisted account")
			continue
		}
		d.accounts[a.User.Email] = a
		d.registered = append(d.registered, a)
	}
	return d, nil
}

func (d *Directory) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (d *Directory) Create(ctx context.Context, account domain.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.accounts[account.User.Email]; exists {
		return domain.ErrEmailAlreadyInUse
	}

	next := append(slices.Clone(d.registered), account)
	if err := d.persist(ctx, next); err != nil {
		return err
	}
	d.registered = next
	d.accounts[account.User.Email] = account
	return nil
}

// Remove deletes a registered account. Removing an unknown email is a no-op.
func (d *Directory) Remove(ctx context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.builtin[email] {
		return ErrBuiltinAccount
	}
	if _, exists := d.accounts[email]; !exists {
		return nil
	}

	next := slices.DeleteFunc(slices.Clone(d.registered), func(a domain.Account) bool {
		return a.User.Email == email
	})
	if err := d.persist(ctx, next); err != nil {
		return err
	}
	d.registered = next
	delete(d.accounts, email)
	return nil
}

func (d *Directory) persist(ctx context.Context, registered []domain.Account) error {
	if d.repo == nil {
		return nil
	}
	if err := d.repo.Save(ctx, registered); err != nil {
		return fmt.Errorf("persist accounts: %w", err)
	}
	return nil
}

// Len reports the number of accounts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}
