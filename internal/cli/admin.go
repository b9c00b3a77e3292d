package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

// bookFlags binds the editable book fields to command-line flags.
type bookFlags struct {
	title       string
	author      string
	description string
	genre       []string
	cover       string
	isbn        string
	year        int
	publisher   string
	pages       int
	language    string
}

func (b *bookFlags) register(f *pflag.FlagSet) {
	f.StringVar(&b.title, "title", "", "book title")
	f.StringVar(&b.author, "author", "", "author name")
	f.StringVar(&b.description, "description", "", "short description")
	f.StringSliceVar(&b.genre, "genre", nil, "genre tags (repeat or comma-separate)")
	f.StringVar(&b.cover, "cover", "", "cover image URL")
	f.StringVar(&b.isbn, "isbn", "", "ISBN")
	f.IntVar(&b.year, "year", 0, "publication year")
	f.StringVar(&b.publisher, "publisher", "", "publisher")
	f.IntVar(&b.pages, "pages", 0, "page count")
	f.StringVar(&b.language, "language", "", "language")
}

func (b *bookFlags) input() ports.BookInput {
	return ports.BookInput{
		Title:           b.title,
		Author:          b.author,
		Description:     b.description,
		Genre:           b.genre,
		Cover:           b.cover,
		ISBN:            b.isbn,
		PublicationYear: b.year,
		Publisher:       b.publisher,
		Pages:           b.pages,
		Language:        b.language,
	}
}

// patch includes only the flags that were set explicitly.
func (b *bookFlags) patch(f *pflag.FlagSet) ports.BookPatch {
	var p ports.BookPatch
	str := func(name string, v string) *string {
		if !f.Changed(name) {
			return nil
		}
		return &v
	}
	num := func(name string, v int) *int {
		if !f.Changed(name) {
			return nil
		}
		return &v
	}
	p.Title = str("title", b.title)
	p.Author = str("author", b.author)
	p.Description = str("description", b.description)
	p.Cover = str("cover", b.cover)
	p.ISBN = str("isbn", b.isbn)
	p.Publisher = str("publisher", b.publisher)
	p.Language = str("language", b.language)
	p.PublicationYear = num("year", b.year)
	p.Pages = num("pages", b.pages)
	if f.Changed("genre") {
		p.Genre = append([]string{}, b.genre...)
	}
	return p
}

func readBookFile(path string) (ports.BookInput, error) {
	var in ports.BookInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, usagef("%s is not a valid book document: %v", path, err)
	}
	return in, nil
}

func newAddCommand(rt *runtime) *cobra.Command {
	var (
		fields   bookFlags
		fromFile string
	)
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a book to the catalog (admin)",
		GroupID: "admin",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if err := requireRole(a, domain.RoleAdmin); err != nil {
			return err
		}
		in := fields.input()
		if fromFile != "" {
			var err error
			if in, err = readBookFile(fromFile); err != nil {
				return err
			}
		}
		book, err := a.Catalog.Add(cmd.Context(), in)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), book.ID)
		return err
	})
	fields.register(cmd.Flags())
	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "read the book from a JSON document instead of flags")
	cmd.MarkFlagsMutuallyExclusive("from-file", "title")
	return cmd
}

func newEditCommand(rt *runtime) *cobra.Command {
	var fields bookFlags
	cmd := &cobra.Command{
		Use:     "edit ID",
		Short:   "Change fields of a book (admin)",
		GroupID: "admin",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireRole(a, domain.RoleAdmin); err != nil {
			return err
		}
		p := fields.patch(cmd.Flags())
		if p.Empty() {
			return usagef("nothing to change; pass at least one field flag")
		}
		_, err := a.Catalog.Update(cmd.Context(), args[0], p)
		return err
	})
	fields.register(cmd.Flags())
	return cmd
}

func newDeleteCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Remove a book from the catalog (admin)",
		GroupID: "admin",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireRole(a, domain.RoleAdmin); err != nil {
			return err
		}
		return a.Catalog.Delete(cmd.Context(), args[0])
	})
	return cmd
}
