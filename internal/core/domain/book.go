package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Loan is the borrowed state of a book. A book without a loan is available.
type Loan struct {
	BorrowerID string
	DueAt      time.Time
}

// Book is a catalog record. Zero values of the optional fields (Cover, ISBN,
// PublicationYear, Publisher, Pages, Language) mean the value is absent.
type Book struct {
	ID              string
	Title           string
	Author          string
	Description     string
	Genre           []string
	Cover           string
	ISBN            string
	PublicationYear int
	Publisher       string
	Pages           int
	Language        string
	Loan            *Loan
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Available reports whether the book can be borrowed.
func (b Book) Available() bool {
	return b.Loan == nil
}

// BorrowedBy returns the borrower id, or "" when the book is available.
func (b Book) BorrowedBy() string {
	if b.Loan == nil {
		return ""
	}
	return b.Loan.BorrowerID
}

// HasGenre reports whether tag is one of the book's genres (exact match).
func (b Book) HasGenre(tag string) bool {
	return slices.Contains(b.Genre, tag)
}

// Clone returns a deep copy that shares no memory with b.
func (b Book) Clone() Book {
	c := b
	c.Genre = slices.Clone(b.Genre)
	if b.Loan != nil {
		loan := *b.Loan
		c.Loan = &loan
	}
	return c
}

// CloneBooks deep-copies a slice of books.
func CloneBooks(books []Book) []Book {
	out := make([]Book, len(books))
	for i := range books {
		out[i] = books[i].Clone()
	}
	return out
}

// bookRecord is the persisted shape of a Book: lending state is spread over
// available/borrowedBy/borrowedUntil and dates are ISO-8601 strings.
type bookRecord struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Cover           string     `json:"cover,omitempty"`
	ISBN            string     `json:"isbn,omitempty"`
	Description     string     `json:"description"`
	Genre           []string   `json:"genre"`
	PublicationYear int        `json:"publicationYear,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	Pages           int        `json:"pages,omitempty"`
	Language        string     `json:"language,omitempty"`
	Available       *bool      `json:"available"`
	BorrowedBy      string     `json:"borrowedBy,omitempty"`
	BorrowedUntil   *time.Time `json:"borrowedUntil,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// MarshalJSON writes the persisted record layout.
func (b Book) MarshalJSON() ([]byte, error) {
	available := b.Loan == nil
	rec := bookRecord{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Cover:           b.Cover,
		ISBN:            b.ISBN,
		Description:     b.Description,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
		Pages:           b.Pages,
		Language:        b.Language,
		Available:       &available,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if rec.Genre == nil {
		rec.Genre = []string{}
	}
	if b.Loan != nil {
		due := b.Loan.DueAt
		rec.BorrowedBy = b.Loan.BorrowerID
		rec.BorrowedUntil = &due
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the persisted record layout. A loan is only recognised
// when both borrowedBy and borrowedUntil are present; any other combination
// hydrates as an available book.
func (b *Book) UnmarshalJSON(data []byte) error {
	var rec bookRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*b = Book{
		ID:              rec.ID,
		Title:           rec.Title,
		Author:          rec.Author,
		Description:     rec.Description,
		Genre:           rec.Genre,
		Cover:           rec.Cover,
		ISBN:            rec.ISBN,
		PublicationYear: rec.PublicationYear,
		Publisher:       rec.Publisher,
		Pages:           rec.Pages,
		Language:        rec.Language,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	borrowed := rec.Available == nil || !*rec.Available
	if borrowed && rec.BorrowedBy != "" && rec.BorrowedUntil != nil {
		b.Loan = &Loan{BorrowerID: rec.BorrowedBy, DueAt: *rec.BorrowedUntil}
	}
	return nil
}
