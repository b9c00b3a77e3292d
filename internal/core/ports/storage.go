package ports

import (
	"context"
	"errors"

	"github.com/99minutos/library-catalog/internal/core/domain"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the local profile storage the stores persist into.
// Values are opaque byte slices; callers own encoding.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SessionRepository persists the active identity under a single key.
type SessionRepository interface {
	// Load returns (nil, nil) when no identity is stored and
	// domain.ErrMalformedPersistedState when the stored value cannot be decoded.
	Load(ctx context.Context) (*domain.User, error)
	Save(ctx context.Context, user domain.User) error
	Clear(ctx context.Context) error
}

// BookRepository persists the whole catalog collection.
type BookRepository interface {
	// Load reports found=false when nothing is stored yet.
	Load(ctx context.Context) (books []domain.Book, found bool, err error)
	Save(ctx context.Context, books []domain.Book) error
}
