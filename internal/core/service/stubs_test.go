package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/core/validation"
)

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errStorage = errors.New("disk full")

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func testOptions() []Option {
	return []Option{
		WithLatency(0, 0),
		WithClock(fixedClock),
		WithIDGenerator(sequentialIDs("new-")),
	}
}

func testValidator() *validation.Validator {
	return validation.New(fixedClock)
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	mu    sync.Mutex
	items []ports.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, note)
}

func (n *recordingNotifier) last() ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return ports.Notification{}
	}
	return n.items[len(n.items)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

// ---------------------------------------------------------------------------
// Session collaborators
// ---------------------------------------------------------------------------

type stubDirectory struct {
	accounts map[string]domain.Account
	removed  []string
}

func newStubDirectory() *stubDirectory {
	d := &stubDirectory{accounts: make(map[string]domain.Account)}
	for _, a := range domain.SeedAccounts(fixedNow) {
		d.accounts[a.User.Email] = domain.Account{User: a.User, Secret: a.Password}
	}
	return d
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	a, ok := d.accounts[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (d *stubDirectory) Create(_ context.Context, a domain.Account) error {
	if _, exists := d.accounts[a.User.Email]; exists {
		return domain.ErrEmailAlreadyInUse
	}
	d.accounts[a.User.Email] = a
	return nil
}

func (d *stubDirectory) Remove(_ context.Context, email string) error {
	d.removed = append(d.removed, email)
	delete(d.accounts, email)
	return nil
}

type plainVerifier struct{}

func (plainVerifier) Hash(password string) (string, error) { return password, nil }
func (plainVerifier) Verify(secret, password string) bool { return secret == password }

type stubSessionRepo struct {
	stored    *domain.User
	loadErr   error
	saveErr   error
	clearErr   error
	clearDelay time.Duration
	cleared    int
	saveCalls  int
}

func (r *stubSessionRepo) Load(context.Context) (*domain.User, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return cloneUser(r.stored), nil
}

func (r *stubSessionRepo) Save(_ context.Context, u domain.User) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = &u
	return nil
}

func (r *stubSessionRepo) Clear(context.Context) error {
	time.Sleep(r.clearDelay)
	if r.clearErr != nil {
		return r.clearErr
	}
	r.cleared++
	r.stored = nil
	return nil
}

// ---------------------------------------------------------------------------
// Catalog collaborators
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	stored  []domain.Book
	found   bool
	loadErr error
	saveErr error
	saves   int
}

func (r *stubBookRepo) Load(context.Context) ([]domain.Book, bool, error) {
	if r.loadErr != nil {
		return nil, false, r.loadErr
	}
	return domain.CloneBooks(r.stored), r.found, nil
}

func (r *stubBookRepo) Save(_ context.Context, books []domain.Book) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.stored = domain.CloneBooks(books)
	r.found = true
	return nil
}

type stubIdentity struct {
	user *domain.User
}

func (s *stubIdentity) CurrentIdentity() (*domain.User, bool) {
	if s.user == nil {
		return nil, false
	}
	return cloneUser(s.user), true
}

func adminUser() *domain.User {
	return &domain.User{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: domain.RoleAdmin}
}

func regularUser() *domain.User {
	return &domain.User{ID: "2", Email: "user@example.com", Name: "Regular User", Role: domain.RoleUser}
}

func otherUser() *domain.User {
	return &domain.User{ID: "9", Email: "ann@example.com", Name: "Ann", Role: domain.RoleUser}
}
