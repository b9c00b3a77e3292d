// Package app wires configuration, storage and services into a running catalog.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/core/service"
	"github.com/99minutos/library-catalog/internal/core/validation"
	"github.com/99minutos/library-catalog/internal/infrastructure/credentials"
	"github.com/99minutos/library-catalog/internal/infrastructure/directory"
	"github.com/99minutos/library-catalog/internal/infrastructure/notify"
	"github.com/99minutos/library-catalog/internal/infrastructure/persistence"
	"github.com/99minutos/library-catalog/internal/infrastructure/storage/filestore"
	"github.com/99minutos/library-catalog/internal/infrastructure/storage/memstore"
	"github.com/99minutos/library-catalog/internal/infrastructure/storage/sqlitestore"
	"github.com/99minutos/library-catalog/internal/metrics"
	"github.com/99minutos/library-catalog/internal/pkg/config"
)

// App holds the wired stores of one catalog process.
type App struct {
	Config  *config.Config
	Session *service.SessionService
	Catalog *service.CatalogService

	store  ports.KeyValueStore
	logger zerolog.Logger
}

// New builds the stores described by cfg, opens the persisted accounts,
// restores the persisted session and loads the catalog. Notifications go to notifier and to the log.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, notifier ports.Notifier) (*App, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStore(ctx, cfg, store, logger, notifier)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore is New with a caller-provided store. The App takes ownership of
// store and closes it in Close.
func NewWithStore(ctx context.Context, cfg *config.Config, store ports.KeyValueStore, logger zerolog.Logger, notifier ports.Notifier) (*App, error) {
	var verifier ports.CredentialVerifier = credentials.Plain{}
	if cfg.Credentials.Mode == config.CredentialBcrypt {
		verifier = credentials.Bcrypt{Cost: cfg.Credentials.BcryptCost}
	}

	accounts, err := directory.Open(ctx, verifier, persistence.NewAccountRepository(store), time.Now().UTC(),
		logger.With().Str("component", "directory").Logger())
	if err != nil {
		return nil, fmt.Errorf("open accounts: %w", err)
	}

	sink := notify.Multi{notify.NewLogNotifier(logger.With().Str("component", "notify").Logger()), notifier}
	validate := validation.New(nil)
	opts := []service.Option{
		service.WithLatency(cfg.Latency.Load, cfg.Latency.Mutation),
		service.WithLoanPeriod(cfg.LoanPeriodDays),
	}

	session := service.NewSessionService(
		accounts,
		verifier,
		persistence.NewSessionRepository(store),
		sink,
		validate,
		logger.With().Str("store", "session").Logger(),
		opts...,
	)
	catalog := service.NewCatalogService(
		persistence.NewBookRepository(store),
		session,
		sink,
		validate,
		logger.With().Str("store", "catalog").Logger(),
		opts...,
	)

	if err := session.Restore(ctx); err != nil {
		return nil, err
	}
	if err := catalog.Load(ctx); err != nil {
		return nil, err
	}

	logger.Debug().Str("backend", cfg.Storage.Backend).Msg("catalog ready")
	return &App{
		Config:  cfg,
		Session: session,
		Catalog: catalog,
		store:   store,
		logger:  logger,
	}, nil
}

// OpenStore opens the key-value backend selected by cfg.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (ports.KeyValueStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendSQLite:
		return sqlitestore.Open(ctx, cfg.SQLitePath)
	case config.BackendFile, "":
		return filestore.Open(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close flushes metrics to the configured textfile and closes the store.
func (a *App) Close() error {
	if err := metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		a.logger.Warn().Err(err).Str("path", a.Config.MetricsTextfile).Msg("failed to write metrics textfile")
	}
	return a.store.Close()
}
