package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"farm-planner/internal/auth"
	"farm-planner/internal/config"
	"farm-planner/internal/database"
	"farm-planner/internal/llm"
	"farm-planner/internal/metrics"
	"farm-planner/internal/store"
)

// Runtime is an App wired from configuration together with the resources it
// owns.
type Runtime struct {
	App       *App
	Metrics   *metrics.Store
	Approvers *auth.Approvers
	Config    *config.Config

	db      *database.DB
	textGen llm.TextGenerator
}

// Bootstrap opens the database, selects the record store backend and the
// draft provider, and builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var s store.Store
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s = store.NewSQLite(db.SQL)
	case config.BackendMemory:
		s = store.NewMemory()
	default:
		fs, err := store.NewFile(cfg.DataDir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		s = fs
	}

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize draft generator: %w", err)
	}

	metricsStore := metrics.NewStore(db.SQL)
	approvers := auth.NewApprovers(cfg.ApproverSecret)
	logger.Debug("application wired",
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("draft_provider", cfg.DraftProvider),
		zap.Bool("approver_tokens", approvers.Enabled()))

	return &Runtime{
		App:       NewApp(s, textGen, metricsStore, approvers, logger),
		Metrics:   metricsStore,
		Approvers: approvers,
		Config:    cfg,
		db:        db,
		textGen:   textGen,
	}, nil
}

// Close releases the generator and the database.
func (r *Runtime) Close() error {
	var errs []error
	if c, ok := r.textGen.(llm.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, r.db.Close())
	return errors.Join(errs...)
}
