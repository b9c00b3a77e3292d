package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/99minutos/library-catalog/internal/core/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	}
	return usagef("--output must be %s or %s, got %q", outputTable, outputJSON, format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderBookTable(w io.Writer, books []domain.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tGENRE\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, yearText(b.PublicationYear), strings.Join(b.Genre, ", "), statusText(b))
	}
	return tw.Flush()
}

func renderBookDetail(w io.Writer, b domain.Book, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", label, value)
		}
	}
	row("ID", b.ID)
	row("Title", b.Title)
	row("Author", b.Author)
	row("Genre", strings.Join(b.Genre, ", "))
	row("Year", yearText(b.PublicationYear))
	row("Publisher", b.Publisher)
	if b.Pages > 0 {
		row("Pages", fmt.Sprint(b.Pages))
	}
	row("Language", b.Language)
	row("ISBN", b.ISBN)
	row("Cover", b.Cover)
	row("Status", statusText(b))
	if b.Loan != nil {
		row("Due", fmt.Sprintf("%s (%s)", b.Loan.DueAt.Format(time.DateOnly), DueText(b.Loan.DueAt, now)))
	}
	row("Description", b.Description)
	return tw.Flush()
}

func renderLoans(w io.Writer, books []domain.Book, now time.Time) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "You have not borrowed any books.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDUE\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Loan.DueAt.Format(time.DateOnly), DueText(b.Loan.DueAt, now))
	}
	return tw.Flush()
}

func statusText(b domain.Book) string {
	if b.Available() {
		return "available"
	}
	return "borrowed"
}

func yearText(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprint(year)
}

// DueText describes a due date relative to now, counting partial days as
// whole days.
func DueText(due, now time.Time) string {
	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue by %s", plural(-days, "day"))
	case days == 0:
		return "Due today"
	default:
		return fmt.Sprintf("Due in %s", plural(days, "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
