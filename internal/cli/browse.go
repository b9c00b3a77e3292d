package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/core/service"
)

// withApp opens the catalog for the duration of one command.
func (r *runtime) withApp(run func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

func newBooksCommand(rt *runtime) *cobra.Command {
	var (
		search    string
		scope     string
		genres    []string
		available bool
		sortKey   string
		output    string
	)
	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"ls", "search"},
		Short:   "List books matching search, genre and availability filters",
		GroupID: "browse",
		Args:    cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error { return checkOutput(output) },
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		sc, err := service.ParseSearchScope(scope)
		if err != nil {
			return usageError{err: err}
		}
		key, err := service.ParseSortKey(sortKey)
		if err != nil {
			return usageError{err: err}
		}

		books := service.QueryBooks(a.Catalog.Books(), ports.BookQuery{
			SearchText:    search,
			Scope:         sc,
			Genres:        genres,
			AvailableOnly: available,
			Sort:          key,
		})
		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), books)
		}
		if len(books) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
			return err
		}
		return renderBookTable(cmd.OutOrStdout(), books)
	})

	f := cmd.Flags()
	f.StringVarP(&search, "search", "q", "", "case-insensitive text to look for")
	f.StringVar(&scope, "scope", string(ports.ScopeCatalog), "search fields: catalog, full or admin")
	f.StringSliceVarP(&genres, "genre", "g", nil, "only books tagged with any of these genres")
	f.BoolVar(&available, "available", false, "only books that can be borrowed")
	f.StringVarP(&sortKey, "sort", "s", string(ports.SortNone), "ordering: title, author, newest, oldest or none")
	f.StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newShowCommand(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "show ID",
		Short:   "Show the details of one book",
		GroupID: "browse",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error { return checkOutput(output) },
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		book, ok := a.Catalog.Get(args[0])
		if !ok {
			return domain.ErrBookNotFound
		}
		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), book)
		}
		return renderBookDetail(cmd.OutOrStdout(), book, time.Now())
	})
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newGenresCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genres",
		Short:   "List every genre in the catalog",
		GroupID: "browse",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		for _, g := range a.Catalog.Genres() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), g); err != nil {
				return err
			}
		}
		return nil
	})
	return cmd
}

func newFeaturedCommand(rt *runtime) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:     "featured",
		Short:   "Show a random selection of books",
		GroupID: "browse",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if count < 0 {
			return usagef("--count must not be negative")
		}
		return renderBookTable(cmd.OutOrStdout(), a.Catalog.Featured(count))
	})
	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of books to show")
	return cmd
}
