// Package cli is the command-line front-end of the catalog. Each invocation is
// one process; state carries over through the configured storage backend.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/infrastructure/notify"
	"github.com/99minutos/library-catalog/internal/pkg/config"
	"github.com/99minutos/library-catalog/pkg/logger"
)

// BuildFunc assembles the catalog for one command, sending user-facing
// notifications to notifier.
type BuildFunc func(ctx context.Context, notifier ports.Notifier) (*app.App, error)

// Options holds the process I/O and the app builder. Zero fields fall back to
// the standard streams and DefaultBuild.
type Options struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Build BuildFunc
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Build == nil {
		o.Build = DefaultBuild(o.Err)
	}
	return o
}

// DefaultBuild loads configuration from the environment and opens the
// configured storage. Logs go to logOut.
func DefaultBuild(logOut io.Writer) BuildFunc {
	return func(ctx context.Context, notifier ports.Notifier) (*app.App, error) {
		cfg, err := config.Load(ctx)
		if err != nil {
			return nil, err
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: logOut})
		return app.New(ctx, cfg, log, notifier)
	}
}

type runtime struct {
	opts Options
	// failureShown is set once a destructive notification reached the user.
	failureShown bool
}

// open builds the app for a single command. The caller must Close it.
func (r *runtime) open(cmd *cobra.Command) (*app.App, error) {
	return r.opts.Build(cmd.Context(), &terminalNotifier{rt: r, w: notify.NewWriterNotifier(r.opts.Err)})
}

type terminalNotifier struct {
	rt *runtime
	w  *notify.WriterNotifier
}

func (n *terminalNotifier) Notify(ctx context.Context, note ports.Notification) {
	if note.Severity == ports.SeverityDestructive {
		n.rt.failureShown = true
	}
	n.w.Notify(ctx, note)
}

// NewRootCommand returns the catalog command tree.
func NewRootCommand(opts Options) *cobra.Command {
	return newRoot(&runtime{opts: opts.withDefaults()})
}

func newRoot(rt *runtime) *cobra.Command {
	opts := rt.opts
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse and manage the library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err: err} })

	root.AddGroup(
		&cobra.Group{ID: "browse", Title: "Browsing:"},
		&cobra.Group{ID: "lending", Title: "Lending:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
		&cobra.Group{ID: "account", Title: "Account:"},
	)
	root.AddCommand(
		newBooksCommand(rt),
		newShowCommand(rt),
		newGenresCommand(rt),
		newFeaturedCommand(rt),
		newBorrowCommand(rt),
		newReturnCommand(rt),
		newLoansCommand(rt),
		newAddCommand(rt),
		newEditCommand(rt),
		newDeleteCommand(rt),
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newStatusCommand(rt),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string) int {
	rt := &runtime{opts: opts.withDefaults()}
	root := newRoot(rt)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && !rt.failureShown {
		reportError(rt.opts.Err, err)
	}
	return ExitCode(err)
}
