package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/config"
	"github.com/appgrid/appdex/internal/loader"
	logpkg "github.com/appgrid/appdex/internal/logger"
	"github.com/appgrid/appdex/internal/repository/catalog"
)

func newLoadCmd() *cobra.Command {
	var appsCSV, reviewsCSV string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import apps and reviews from CSV exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), appsCSV, reviewsCSV)
		},
	}
	cmd.Flags().StringVar(&appsCSV, "apps", "googleplaystore.csv", "app catalog CSV path")
	cmd.Flags().StringVar(&reviewsCSV, "reviews", "", "user reviews CSV path (optional)")
	return cmd
}

func runLoad(ctx context.Context, appsCSV, reviewsCSV string) error {
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

	im := loader.New(repo, logger)

	apps, err := im.ImportApps(ctx, appsCSV)
	if err != nil {
		return fmt.Errorf("import apps: %w", err)
	}
	logger.Info("Catalog import finished", zap.Int("apps", apps))

	if reviewsCSV != "" {
		reviews, err := im.ImportReviews(ctx, reviewsCSV)
		if err != nil {
			return fmt.Errorf("import reviews: %w", err)
		}
		logger.Info("Review import finished", zap.Int("reviews", reviews))
	}

	logger.Info("Done. Run `appdex reindex` to rebuild the search model.")
	return nil
}
