package service

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

// QueryBooks filters and orders a catalog snapshot. The input slice is never
// modified; the result is freshly allocated.
func QueryBooks(books []domain.Book, q ports.BookQuery) []domain.Book {
	needle := strings.ToLower(strings.TrimSpace(q.SearchText))
	scope := q.Scope
	if scope == "" {
		scope = ports.ScopeCatalog
	}

	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if needle != "" && !matchesText(b, needle, scope) {
			continue
		}
		if len(q.Genres) > 0 && !slices.ContainsFunc(q.Genres, b.HasGenre) {
			continue
		}
		if q.AvailableOnly && !b.Available() {
			continue
		}
		out = append(out, b.Clone())
	}

	sortBooks(out, q.Sort)
	return out
}

func matchesText(b domain.Book, needle string, scope ports.SearchScope) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }

	if contains(b.Title) || contains(b.Author) {
		return true
	}
	switch scope {
	case ports.ScopeAdmin:
		return contains(b.ISBN)
	case ports.ScopeFull:
		return contains(b.Description) || slices.ContainsFunc(b.Genre, contains)
	default:
		return contains(b.Description)
	}
}

func sortBooks(books []domain.Book, key ports.SortKey) {
	switch key {
	case ports.SortTitle:
		sortByText(books, func(b domain.Book) string { return b.Title })
	case ports.SortAuthor:
		sortByText(books, func(b domain.Book) string { return b.Author })
	case ports.SortNewest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublicationYear > books[j].PublicationYear
		})
	case ports.SortOldest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublicationYear < books[j].PublicationYear
		})
	}
}

// sortByText orders by locale-aware English collation, where case only breaks
// ties and lowercase sorts first. Byte order makes the ordering total.
func sortByText(books []domain.Book, field func(domain.Book) string) {
	c := collate.New(language.English)
	sort.SliceStable(books, func(i, j int) bool {
		a, b := field(books[i]), field(books[j])
		if r := c.CompareString(a, b); r != 0 {
			return r < 0
		}
		return a < b
	})
}

// Genres returns the sorted distinct genre tags of books.
func Genres(books []domain.Book) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, b := range books {
		for _, g := range b.Genre {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return out
}

// ParseSortKey converts user input into a SortKey. Empty input means SortNone.
func ParseSortKey(s string) (ports.SortKey, error) {
	switch k := ports.SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ports.SortNone, nil
	case ports.SortNone, ports.SortTitle, ports.SortAuthor, ports.SortNewest, ports.SortOldest:
		return k, nil
	}
	return "", fmt.Errorf("%w: sort must be one of: title author newest oldest none", domain.ErrInvalidInput)
}

// ParseSearchScope converts user input into a SearchScope. Empty input means ScopeCatalog.
func ParseSearchScope(s string) (ports.SearchScope, error) {
	switch sc := ports.SearchScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ports.ScopeCatalog, nil
	case ports.ScopeCatalog, ports.ScopeFull, ports.ScopeAdmin:
		return sc, nil
	}
	return "", fmt.Errorf("%w: scope must be one of: catalog full admin", domain.ErrInvalidInput)
}
