package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/infrastructure/persistence"
	"github.com/99minutos/library-catalog/internal/infrastructure/storage/memstore"
)

func newTestCatalog(t *testing.T, repo *stubBookRepo, identity *stubIdentity) (*CatalogService, *recordingNotifier) {
	t.Helper()
	notes := &recordingNotifier{}
	svc := NewCatalogService(repo, identity, notes, testValidator(), discardLogger, testOptions()...)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return svc, notes
}

func seededRepo() *stubBookRepo {
	return &stubBookRepo{stored: domain.SeedBooks(), found: true}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validBookInput() ports.BookInput {
	return ports.BookInput{
		Title:       "Neuromancer",
		Author:      "William Gibson",
		Description: "Cyberpunk classic.",
		Genre:       []string{"Science Fiction"},
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestCatalogService_Load_SeedsAndPersistsWhenAbsent(t *testing.T) {
	repo := &stubBookRepo{}
	svc, _ := newTestCatalog(t, repo, &stubIdentity{})

	if got := len(svc.Books()); got != 6 {
		t.Fatalf("expected 6 seeded books, got %d", got)
	}
	if repo.saves != 1 || len(repo.stored) != 6 {
		t.Fatalf("expected seed persisted immediately, saves=%d stored=%d", repo.saves, len(repo.stored))
	}
}

func TestCatalogService_Load_UsesPersisted(t *testing.T) {
	repo := &stubBookRepo{stored: []domain.Book{{ID: "x", Title: "Only"}}, found: true}
	svc, _ := newTestCatalog(t, repo, &stubIdentity{})

	books := svc.Books()
	if len(books) != 1 || books[0].ID != "x" {
		t.Fatalf("expected persisted collection, got %+v", books)
	}
	if repo.saves != 0 {
		t.Errorf("expected no write on load, got %d", repo.saves)
	}
}

func TestCatalogService_Load_PersistedEmptyIsKept(t *testing.T) {
	repo := &stubBookRepo{stored: []domain.Book{}, found: true}
	svc, _ := newTestCatalog(t, repo, &stubIdentity{})
	if got := len(svc.Books()); got != 0 {
		t.Fatalf("expected empty catalog to stay empty, got %d", got)
	}
}

func TestCatalogService_Load_MalformedReseeds(t *testing.T) {
	repo := &stubBookRepo{loadErr: domain.ErrMalformedPersistedState}
	notes := &recordingNotifier{}
	svc := NewCatalogService(repo, &stubIdentity{}, notes, testValidator(), discardLogger, testOptions()...)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("expected malformed state to be recovered, got %v", err)
	}
	if got := len(svc.Books()); got != 6 {
		t.Fatalf("expected reseeded catalog, got %d", got)
	}
	if repo.saves != 1 {
		t.Errorf("expected seed persisted, got %d saves", repo.saves)
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestCatalogService_Get(t *testing.T) {
	svc, _ := newTestCatalog(t, seededRepo(), &stubIdentity{})

	b, ok := svc.Get("6")
	if !ok || b.Title != "Dune" {
		t.Fatalf("expected Dune, got %+v (ok=%v)", b, ok)
	}
	if _, ok := svc.Get("missing"); ok {
		t.Fatal("expected missing id to report ok=false")
	}

	b.Genre[0] = "Changed"
	again, _ := svc.Get("6")
	if again.Genre[0] != "Science Fiction" {
		t.Fatal("expected Get to return a copy")
	}
}

func TestCatalogService_ListBorrowedBy(t *testing.T) {
	svc, _ := newTestCatalog(t, seededRepo(), &stubIdentity{user: regularUser()})

	loans := svc.ListBorrowedBy("2")
	if len(loans) != 1 || loans[0].ID != "3" {
		t.Fatalf("expected book 3 borrowed by 2, got %+v", loans)
	}
	if got := svc.ListBorrowedBy(""); len(got) != 0 {
		t.Fatalf("expected empty list for anonymous, got %d", len(got))
	}
	if got := svc.BorrowedByCurrent(); len(got) != 1 {
		t.Fatalf("expected current identity loans, got %d", len(got))
	}
}

func TestCatalogService_GenresAndFeatured(t *testing.T) {
	svc, _ := newTestCatalog(t, seededRepo(), &stubIdentity{})

	genres := svc.Genres()
	if len(genres) != 10 || genres[0] != "Anthropology" {
		t.Fatalf("unexpected genres: %v", genres)
	}

	featured := svc.Featured(3)
	if len(featured) != 3 {
		t.Fatalf("expected 3 featured books, got %d", len(featured))
	}
	if got := svc.Featured(100); len(got) != 6 {
		t.Fatalf("expected featured capped at catalog size, got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Add / Update / Delete
// ---------------------------------------------------------------------------

func TestCatalogService_Add(t *testing.T) {
	repo := seededRepo()
	svc, notes := newTestCatalog(t, repo, &stubIdentity{user: adminUser()})

	b, err := svc.Add(context.Background(), validBookInput())
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if b.ID != "new-1" || !b.Available() {
		t.Fatalf("expected new available record, got %+v", b)
	}
	if !b.CreatedAt.Equal(fixedNow) || !b.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected timestamps = now, got %v / %v", b.CreatedAt, b.UpdatedAt)
	}
	books := svc.Books()
	if len(books) != 7 || books[6].ID != "new-1" {
		t.Fatalf("expected record appended at end, got %d books", len(books))
	}
	if len(repo.stored) != 7 {
		t.Fatalf("expected persisted collection to include new record, got %d", len(repo.stored))
	}
	if n := notes.last(); n.Title != "Book added" || n.Description != `"Neuromancer" has been added to the catalog` {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestCatalogService_Add_InvalidInput(t *testing.T) {
	repo := seededRepo()
	svc, notes := newTestCatalog(t, repo, &stubIdentity{})

	in := validBookInput()
	in.Genre = nil
	in.PublicationYear = 3000
	if _, err := svc.Add(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(svc.Books()) != 6 || repo.saves != 0 {
		t.Fatal("expected catalog untouched")
	}
	if n := notes.last(); n.Severity != ports.SeverityDestructive {
		t.Errorf("expected destructive notification, got %+v", n)
	}
}

func TestCatalogService_Add_PersistFailureIsAllOrNothing(t *testing.T) {
	repo := seededRepo()
	svc, notes := newTestCatalog(t, repo, &stubIdentity{})
	repo.saveErr = errStorage

	if _, err := svc.Add(context.Background(), validBookInput()); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(svc.Books()) != 6 {
		t.Fatalf("expected in-memory catalog unchanged, got %d", len(svc.Books()))
	}
	if n := notes.last(); n.Title != "Error" || n.Description != "Failed to add book" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestCatalogService_Update_MergesSuppliedFields(t *testing.T) {
	later := fixedNow.Add(time.Hour)
	repo := seededRepo()
	notes := &recordingNotifier{}
	svc := NewCatalogService(repo, &stubIdentity{}, notes, testValidator(), discardLogger,
		WithLatency(0, 0), WithClock(func() time.Time { return later }))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	b, err := svc.Update(context.Background(), "3", ports.BookPatch{Title: strPtr("Clean Code 2nd Ed."), Pages: intPtr(500)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if b.Title != "Clean Code 2nd Ed." || b.Pages != 500 {
		t.Fatalf("expected patched fields, got %+v", b)
	}
	if b.Author != "Robert C. Martin" || len(b.Genre) != 2 {
		t.Fatalf("expected untouched fields preserved, got %+v", b)
	}
	if b.BorrowedBy() != "2" {
		t.Fatalf("expected loan preserved, got %+v", b.Loan)
	}
	if !b.UpdatedAt.Equal(later) {
		t.Errorf("expected UpdatedAt refreshed, got %v", b.UpdatedAt)
	}
	if b.CreatedAt.Equal(later) {
		t.Error("expected CreatedAt unchanged")
	}
	if n := notes.last(); n.Title != "Book updated" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestCatalogService_Update_Errors(t *testing.T) {
	repo := seededRepo()
	svc, _ := newTestCatalog(t, repo, &stubIdentity{})

	if _, err := svc.Update(context.Background(), "nope", ports.BookPatch{Title: strPtr("x")}); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "1", ports.BookPatch{Genre: []string{}}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty genre list, got %v", err)
	}
	if b, _ := svc.Get("1"); len(b.Genre) != 2 {
		t.Fatal("expected record unchanged after rejected update")
	}
	if repo.saves != 0 {
		t.Errorf("expected no writes, got %d", repo.saves)
	}
}

func TestCatalogService_Delete(t *testing.T) {
	repo := seededRepo()
	svc, notes := newTestCatalog(t, repo, &stubIdentity{})

	if err := svc.Delete(context.Background(), "3"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := svc.Get("3"); ok {
		t.Fatal("expected record removed")
	}
	if got := svc.ListBorrowedBy("2"); len(got) != 0 {
		t.Fatalf("expected loan discarded with the record, got %d", len(got))
	}
	if len(repo.stored) != 5 {
		t.Fatalf("expected persisted removal, got %d", len(repo.stored))
	}
	if n := notes.last(); n.Description != `"Clean Code" has been removed from the catalog` {
		t.Errorf("unexpected notification: %+v", n)
	}

	if err := svc.Delete(context.Background(), "3"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound on second delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Borrow / Return
// ---------------------------------------------------------------------------

func TestCatalogService_Borrow(t *testing.T) {
	repo := seededRepo()
	svc, notes := newTestCatalog(t, repo, &stubIdentity{user: regularUser()})

	b, err := svc.Borrow(context.Background(), "1")
	if err != nil {
		t.Fatalf("Borrow returned error: %v", err)
	}
	wantDue := time.Date(2024, 3, 24, 9, 30, 0, 0, time.UTC)
	if b.BorrowedBy() != "2" || !b.Loan.DueAt.Equal(wantDue) {
		t.Fatalf("expected loan to 2 due %v, got %+v", wantDue, b.Loan)
	}
	if !b.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected UpdatedAt refreshed, got %v", b.UpdatedAt)
	}
	if stored := repo.stored[0]; stored.BorrowedBy() != "2" {
		t.Fatalf("expected loan persisted, got %+v", stored.Loan)
	}
	if n := notes.last(); n.Description != `You have borrowed "The Design of Everyday Things" until 3/24/2024` {
		t.Errorf("unexpected notification: %q", n.Description)
	}
}

func TestCatalogService_Borrow_Errors(t *testing.T) {
	identity := &stubIdentity{}
	svc, notes := newTestCatalog(t, seededRepo(), identity)

	if _, err := svc.Borrow(context.Background(), "1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if n := notes.last(); n.Title != "Authentication required" || n.Description != "You must be logged in to borrow books" {
		t.Errorf("unexpected notification: %+v", n)
	}

	identity.user = otherUser()
	if _, err := svc.Borrow(context.Background(), "missing"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	if _, err := svc.Borrow(context.Background(), "3"); !errors.Is(err, domain.ErrAlreadyBorrowed) {
		t.Fatalf("expected ErrAlreadyBorrowed, got %v", err)
	}
	if n := notes.last(); n.Description != "Book is not available for borrowing" {
		t.Errorf("unexpected description: %q", n.Description)
	}
	if b, _ := svc.Get("3"); b.BorrowedBy() != "2" {
		t.Fatal("expected existing loan untouched")
	}
}

func TestCatalogService_Borrow_AlreadyBorrowedLeavesStateUntouched(t *testing.T) {
	repo := seededRepo()
	svc, _ := newTestCatalog(t, repo, &stubIdentity{user: otherUser()})
	before, _ := svc.Get("3")
	saves := repo.saves

	if _, err := svc.Borrow(context.Background(), "3"); !errors.Is(err, domain.ErrAlreadyBorrowed) {
		t.Fatalf("expected ErrAlreadyBorrowed, got %v", err)
	}
	after, _ := svc.Get("3")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected record unchanged\nbefore: %+v\nafter:  %+v", before, after)
	}
	if repo.saves != saves {
		t.Errorf("expected no persist, saves went %d -> %d", saves, repo.saves)
	}
	if !reflect.DeepEqual(repo.stored[2], before) {
		t.Errorf("expected persisted record unchanged, got %+v", repo.stored[2])
	}
}

func TestCatalogService_Borrow_UnauthenticatedSkipsDelay(t *testing.T) {
	svc := NewCatalogService(seededRepo(), &stubIdentity{}, &recordingNotifier{}, testValidator(), discardLogger,
		WithLatency(0, time.Hour))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Borrow(context.Background(), "1")
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected unauthenticated borrow to fail before the simulated delay")
	}
}

func TestCatalogService_Return(t *testing.T) {
	cases := []struct {
		name    string
		user    *domain.User
		id      string
		wantErr error
	}{
		{"anonymous", nil, "3", domain.ErrUnauthenticated},
		{"missing", regularUser(), "missing", domain.ErrBookNotFound},
		{"not borrowed", regularUser(), "1", domain.ErrNotBorrowed},
		{"not borrower", otherUser(), "3", domain.ErrNotBorrower},
		{"borrower", regularUser(), "3", nil},
		{"admin override", adminUser(), "3", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := seededRepo()
			svc, notes := newTestCatalog(t, repo, &stubIdentity{user: tc.user})

			b, err := svc.Return(context.Background(), tc.id)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if got := svc.ListBorrowedBy("2"); len(got) != 1 {
					t.Fatal("expected seed loan untouched")
				}
				return
			}
			if err != nil {
				t.Fatalf("Return returned error: %v", err)
			}
			if !b.Available() {
				t.Fatalf("expected record available, got %+v", b.Loan)
			}
			if !repo.stored[2].Available() {
				t.Fatal("expected persisted record available")
			}
			if n := notes.last(); n.Title != "Book returned" || n.Description != `You have returned "Clean Code"` {
				t.Errorf("unexpected notification: %+v", n)
			}
		})
	}
}

func TestCatalogService_BorrowThenReturnRoundTrip(t *testing.T) {
	identity := &stubIdentity{user: otherUser()}
	svc, _ := newTestCatalog(t, seededRepo(), identity)
	ctx := context.Background()

	if _, err := svc.Borrow(ctx, "6"); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if got := svc.BorrowedByCurrent(); len(got) != 1 || got[0].ID != "6" {
		t.Fatalf("expected Dune in current loans, got %+v", got)
	}
	if _, err := svc.Return(ctx, "6"); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if got := svc.BorrowedByCurrent(); len(got) != 0 {
		t.Fatalf("expected no loans after return, got %d", len(got))
	}
}

func TestCatalogService_CancelledMutationLeavesStateUntouched(t *testing.T) {
	repo := seededRepo()
	svc := NewCatalogService(repo, &stubIdentity{user: regularUser()}, &recordingNotifier{}, testValidator(), discardLogger,
		WithLatency(0, time.Hour))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Borrow(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b, _ := svc.Get("1"); !b.Available() {
		t.Fatal("expected record still available")
	}
	if repo.saves != 0 {
		t.Errorf("expected no writes, got %d", repo.saves)
	}
}

// ---------------------------------------------------------------------------
// Persisted lending layout
// ---------------------------------------------------------------------------

func assertLendingLayout(t *testing.T, kv *memstore.Store, step string) {
	t.Helper()
	raw, err := kv.Get(context.Background(), persistence.KeyBooks)
	if err != nil {
		t.Fatalf("%s: read persisted books: %v", step, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("%s: decode persisted books: %v", step, err)
	}
	for _, r := range records {
		available, ok := r["available"].(bool)
		if !ok {
			t.Fatalf("%s: record %v has no boolean available", step, r["id"])
		}
		_, hasBorrower := r["borrowedBy"]
		_, hasDue := r["borrowedUntil"]
		if available == (hasBorrower && hasDue) || hasBorrower != hasDue {
			t.Errorf("%s: record %v breaks lending layout: available=%v borrowedBy=%v borrowedUntil=%v",
				step, r["id"], available, hasBorrower, hasDue)
		}
	}
}

func TestCatalogService_PersistedLendingLayoutAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	kv := memstore.New()
	identity := &stubIdentity{user: regularUser()}
	svc := NewCatalogService(persistence.NewBookRepository(kv), identity, &recordingNotifier{}, testValidator(),
		discardLogger, testOptions()...)

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertLendingLayout(t, kv, "load")

	added, err := svc.Add(ctx, validBookInput())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	assertLendingLayout(t, kv, "add")

	if _, err := svc.Borrow(ctx, added.ID); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	assertLendingLayout(t, kv, "borrow")

	if _, err := svc.Update(ctx, added.ID, ports.BookPatch{Title: strPtr("Count Zero")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertLendingLayout(t, kv, "update")

	if _, err := svc.Return(ctx, "3"); err != nil {
		t.Fatalf("Return: %v", err)
	}
	assertLendingLayout(t, kv, "return")

	if err := svc.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertLendingLayout(t, kv, "delete")
}
