package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/config"
	logpkg "github.com/appgrid/appdex/internal/logger"
	"github.com/appgrid/appdex/internal/modelstore"
	"github.com/appgrid/appdex/internal/repository/catalog"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector model from the current catalog",
		Long: `Rebuild fits a fresh TF-IDF model over all app names and atomically
replaces the artifact pair on disk. Safe to re-run; serving processes
pick the new model up on their next start. An empty catalog removes the
artifacts instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.Context())
		},
	}
}

func runReindex(ctx context.Context) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	repo, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("open catalog database: %w", err)
	}
	defer repo.Close()

	store := modelstore.New(cfg.Model.Dir, logger)
	model, err := store.Rebuild(ctx, repo)
	if err != nil {
		// Rebuild failures are hard failures for the operator; the
		// previous artifacts stay in place.
		return fmt.Errorf("rebuild model: %w", err)
	}
	if model == nil {
		logger.Info("Catalog is empty, no model written")
		return nil
	}
	logger.Info("Reindex complete", zap.Int("documents", model.Len()))
	return nil
}
