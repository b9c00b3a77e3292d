package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/domain"
)

func newBorrowCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "borrow ID",
		Short:   "Borrow a book for the loan period",
		GroupID: "lending",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		book, err := a.Catalog.Borrow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", book.ID, book.Loan.DueAt.Format(time.DateOnly))
		return err
	})
	return cmd
}

func newReturnCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "return ID",
		Short:   "Return a borrowed book",
		GroupID: "lending",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		_, err := a.Catalog.Return(cmd.Context(), args[0])
		return err
	})
	return cmd
}

func newLoansCommand(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "loans",
		Short:   "List the books you have borrowed",
		GroupID: "lending",
		Args:    cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error { return checkOutput(output) },
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if _, ok := a.Session.Current(); !ok {
			return domain.ErrUnauthenticated
		}
		loans := a.Catalog.BorrowedByCurrent()
		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), loans)
		}
		return renderLoans(cmd.OutOrStdout(), loans, time.Now())
	})
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}
