package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/core/validation"
	"github.com/99minutos/library-catalog/internal/metrics"
)

const catalogStore = "catalog"

// CatalogService owns the in-memory book collection. Every successful mutation
// is persisted before it becomes visible; a failed mutation leaves the
// collection untouched.
type CatalogService struct {
	repo     ports.BookRepository
	identity ports.IdentitySource
	notifier ports.Notifier
	validate *validation.Validator
	logger   zerolog.Logger
	cfg      settings
	seed     func() []domain.Book

	mu     sync.RWMutex
	books  []domain.Book
}

func NewCatalogService(
	repo ports.BookRepository,
	identity ports.IdentitySource,
	notifier ports.Notifier,
	validate *validation.Validator,
	logger zerolog.Logger,
	opts ...Option,
) *CatalogService {
	return &CatalogService{
		repo:     repo,
		identity: identity,
		notifier: notifier,
		validate: validate,
		logger:   logger,
		cfg:      applyOptions(opts),
		seed:     domain.SeedBooks,
	}
}

// Load reads the persisted collection. When nothing is stored, or the stored
// value is malformed, the seed catalog is installed and persisted.
func (s *CatalogService) Load(ctx context.Context) error {
	start := time.Now()
	err := s.load(ctx)
	metrics.Observe(catalogStore, "load", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load books")
		s.notifier.Notify(ctx, ports.Notification{
			Title:       "Error",
			Description: "Failed to load books",
			Severity:    ports.SeverityDestructive,
		})
	}
	return err
}

func (s *CatalogService) load(ctx context.Context) error {
	if err := wait(ctx, s.cfg.loadLatency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	books, found, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrMalformedPersistedState):
		s.logger.Warn().Err(err).Msg("discarding malformed persisted catalog, reseeding")
		found = false
	case err != nil:
		return fmt.Errorf("load books: %w", err)
	}

	if !found {
		books = s.seed()
		if err := s.repo.Save(ctx, books); err != nil {
			return fmt.Errorf("persist seed catalog: %w", err)
		}
		s.logger.Info().Int("count", len(books)).Msg("catalog seeded")
	}

	s.swap(books)
	return nil
}

// Books returns a snapshot of the catalog in catalog order.
func (s *CatalogService) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneBooks(s.books)
}

// Get returns the record with id. It never fails; ok is false when absent.
func (s *CatalogService) Get(id string) (domain.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, false
	}
	return s.books[i].Clone(), true
}

// Add validates input and appends a new available record.
func (s *CatalogService) Add(ctx context.Context, input ports.BookInput) (domain.Book, error) {
	start := time.Now()
	book, err := s.add(ctx, input)
	metrics.Observe(catalogStore, "add", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to add book")
		s.notifier.Notify(ctx, failure("Error", err, "Failed to add book"))
		return domain.Book{}, err
	}

	s.logger.Info().Str("book_id", book.ID).Msg("book added")
	s.notifier.Notify(ctx, info("Book added", fmt.Sprintf("%q has been added to the catalog", book.Title)))
	return book, nil
}

func (s *CatalogService) add(ctx context.Context, input ports.BookInput) (domain.Book, error) {
	input = normalizeInput(input)
	if err := s.validate.Struct(input); err != nil {
		return domain.Book{}, err
	}
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return domain.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.now()
	book := bookFromInput(input)
	book.ID = s.cfg.newID()
	book.CreatedAt = now
	book.UpdatedAt = now

	next := append(domain.CloneBooks(s.books), book)
	if err := s.commit(ctx, next); err != nil {
		return domain.Book{}, err
	}
	return book.Clone(), nil
}

// Update merges the supplied patch fields into the record with id.
func (s *CatalogService) Update(ctx context.Context, id string, patch ports.BookPatch) (domain.Book, error) {
	start := time.Now()
	book, err := s.update(ctx, id, patch)
	metrics.Observe(catalogStore, "update", start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to update book")
		s.notifier.Notify(ctx, failure("Error", err, "Failed to update book"))
		return domain.Book{}, err
	}

	s.logger.Info().Str("book_id", id).Msg("book updated")
	s.notifier.Notify(ctx, info("Book updated", fmt.Sprintf("%q has been updated", book.Title)))
	return book, nil
}

func (s *CatalogService) update(ctx context.Context, id string, patch ports.BookPatch) (domain.Book, error) {
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return domain.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, domain.ErrBookNotFound
	}

	merged := applyPatch(s.books[i].Clone(), patch)
	if err := s.validate.Struct(inputFromBook(merged)); err != nil {
		return domain.Book{}, err
	}
	merged.UpdatedAt = s.cfg.now()

	next := domain.CloneBooks(s.books)
	next[i] = merged
	if err := s.commit(ctx, next); err != nil {
		return domain.Book{}, err
	}
	return merged.Clone(), nil
}

// Delete removes the record with id. An active loan on it is discarded.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	book, err := s.delete(ctx, id)
	metrics.Observe(catalogStore, "delete", start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to delete book")
		s.notifier.Notify(ctx, failure("Error", err, "Failed to delete book"))
		return err
	}

	s.logger.Info().Str("book_id", id).Bool("had_loan", !book.Available()).Msg("book deleted")
	s.notifier.Notify(ctx, info("Book deleted", fmt.Sprintf("%q has been removed from the catalog", book.Title)))
	return nil
}

func (s *CatalogService) delete(ctx context.Context, id string) (domain.Book, error) {
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return domain.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, domain.ErrBookNotFound
	}
	removed := s.books[i].Clone()

	next := slices.Delete(domain.CloneBooks(s.books), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return domain.Book{}, err
	}
	return removed, nil
}

// Borrow lends the record with id to the active identity for the loan period.
func (s *CatalogService) Borrow(ctx context.Context, id string) (domain.Book, error) {
	start := time.Now()
	user, ok := s.identity.CurrentIdentity()
	if !ok {
		metrics.Observe(catalogStore, "borrow", start, domain.ErrUnauthenticated)
		s.notifier.Notify(ctx, ports.Notification{
			Title:       "Authentication required",
			Description: "You must be logged in to borrow books",
			Severity:    ports.SeverityDestructive,
		})
		return domain.Book{}, domain.ErrUnauthenticated
	}

	book, err := s.borrow(ctx, id, user)
	metrics.Observe(catalogStore, "borrow", start, err)
	if err != nil {
		s.logger.Info().Err(err).Str("book_id", id).Str("user_id", user.ID).Msg("borrow rejected")
		s.notifier.Notify(ctx, failure("Error", err, "Failed to borrow book"))
		return domain.Book{}, err
	}

	s.logger.Info().Str("book_id", id).Str("user_id", user.ID).Time("due_at", book.Loan.DueAt).Msg("book borrowed")
	s.notifier.Notify(ctx, info("Book borrowed",
		fmt.Sprintf("You have borrowed %q until %s", book.Title, book.Loan.DueAt.Format("1/2/2006"))))
	return book, nil
}

func (s *CatalogService) borrow(ctx context.Context, id string, user *domain.User) (domain.Book, error) {
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return domain.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, domain.ErrBookNotFound
	}
	if !s.books[i].Available() {
		return domain.Book{}, domain.ErrAlreadyBorrowed
	}

	now := s.cfg.now()
	next := domain.CloneBooks(s.books)
	next[i].Loan = &domain.Loan{
		BorrowerID: user.ID,
		DueAt:      now.AddDate(0, 0, s.cfg.loanPeriodDays),
	}
	next[i].UpdatedAt = now
	if err := s.commit(ctx, next); err != nil {
		return domain.Book{}, err
	}
	return next[i].Clone(), nil
}

// Return ends the loan on the record with id. Only the borrower or an admin
// may return a book.
func (s *CatalogService) Return(ctx context.Context, id string) (domain.Book, error) {
	start := time.Now()
	user, ok := s.identity.CurrentIdentity()
	if !ok {
		metrics.Observe(catalogStore, "return", start, domain.ErrUnauthenticated)
		s.notifier.Notify(ctx, ports.Notification{
			Title:       "Authentication required",
			Description: "You must be logged in to return books",
			Severity:    ports.SeverityDestructive,
		})
		return domain.Book{}, domain.ErrUnauthenticated
	}

	book, err := s.returnBook(ctx, id, user)
	metrics.Observe(catalogStore, "return", start, err)
	if err != nil {
		s.logger.Info().Err(err).Str("book_id", id).Str("user_id", user.ID).Msg("return rejected")
		s.notifier.Notify(ctx, failure("Error", err, "Failed to return book"))
		return domain.Book{}, err
	}

	s.logger.Info().Str("book_id", id).Str("user_id", user.ID).Msg("book returned")
	s.notifier.Notify(ctx, info("Book returned", fmt.Sprintf("You have returned %q", book.Title)))
	return book, nil
}

func (s *CatalogService) returnBook(ctx context.Context, id string, user *domain.User) (domain.Book, error) {
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return domain.Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, domain.ErrBookNotFound
	}
	current := s.books[i]
	if current.Available() {
		return domain.Book{}, domain.ErrNotBorrowed
	}
	if current.BorrowedBy() != user.ID && !user.IsAdmin() {
		return domain.Book{}, domain.ErrNotBorrower
	}

	next := domain.CloneBooks(s.books)
	next[i].Loan = nil
	next[i].UpdatedAt = s.cfg.now()
	if err := s.commit(ctx, next); err != nil {
		return domain.Book{}, err
	}
	return next[i].Clone(), nil
}

// ListBorrowedBy returns the records currently lent to identityID, in catalog
// order. An empty id yields an empty list.
func (s *CatalogService) ListBorrowedBy(identityID string) []domain.Book {
	out := []domain.Book{}
	if identityID == "" {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.BorrowedBy() == identityID {
			out = append(out, b.Clone())
		}
	}
	return out
}

// BorrowedByCurrent lists the loans of the active identity.
func (s *CatalogService) BorrowedByCurrent() []domain.Book {
	user, ok := s.identity.CurrentIdentity()
	if !ok {
		return []domain.Book{}
	}
	return s.ListBorrowedBy(user.ID)
}

// Genres returns the sorted distinct genre tags of the catalog.
func (s *CatalogService) Genres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Genres(s.books)
}

// Featured returns up to n randomly chosen records.
func (s *CatalogService) Featured(n int) []domain.Book {
	books := s.Books()
	rand.Shuffle(len(books), func(i, j int) { books[i], books[j] = books[j], books[i] })
	if n < 0 {
		n = 0
	}
	if n < len(books) {
		books = books[:n]
	}
	return books
}

// commit persists next and, on success, makes it the live collection.
// Callers must hold s.mu.
func (s *CatalogService) commit(ctx context.Context, next []domain.Book) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist books: %w", err)
	}
	s.swap(next)
	return nil
}

func (s *CatalogService) swap(books []domain.Book) {
	s.books = books
	loans := 0
	for _, b := range books {
		if !b.Available() {
			loans++
		}
	}
	metrics.SetCatalogSize(len(books), loans)
}

func (s *CatalogService) indexOf(id string) int {
	return slices.IndexFunc(s.books, func(b domain.Book) bool { return b.ID == id })
}

func normalizeInput(in ports.BookInput) ports.BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	if in.Genre != nil {
		genre := make([]string, len(in.Genre))
		for i, g := range in.Genre {
			genre[i] = strings.TrimSpace(g)
		}
		in.Genre = genre
	}
	return in
}

func bookFromInput(in ports.BookInput) domain.Book {
	return domain.Book{
		Title:           in.Title,
		Author:          in.Author,
		Description:     in.Description,
		Genre:           slices.Clone(in.Genre),
		Cover:           in.Cover,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Publisher:       in.Publisher,
		Pages:           in.Pages,
		Language:        in.Language,
	}
}

func inputFromBook(b domain.Book) ports.BookInput {
	return ports.BookInput{
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		Genre:           b.Genre,
		Cover:           b.Cover,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
		Pages:           b.Pages,
		Language:        b.Language,
	}
}

func applyPatch(b domain.Book, p ports.BookPatch) domain.Book {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
	}
	if p.Genre != nil {
		b.Genre = normalizeInput(ports.BookInput{Genre: p.Genre}).Genre
	}
	if p.Cover != nil {
		b.Cover = *p.Cover
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	return b
}
