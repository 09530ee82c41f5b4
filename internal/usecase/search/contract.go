package search

import (
	"context"

	"github.com/appgrid/appdex/internal/domain"
)

// Catalog is the read-only catalog accessor the orchestrator consumes.
// The search core never writes through this interface.
type Catalog interface {
	// FindByExactName returns the app whose name equals name
	// case-insensitively, or domain.ErrNotFound.
	FindByExactName(ctx context.Context, name string) (domain.App, error)
	// FindBySubstring returns apps whose name contains fragment
	// case-insensitively, ordered alphabetically by name.
	FindBySubstring(ctx context.Context, fragment string) ([]domain.App, error)
	// AppsByID returns apps in exactly the given id order, dropping
	// missing ids.
	AppsByID(ctx context.Context, ids []int64) ([]domain.App, error)
}

// Ranker scores a query against the fitted document matrix.
type Ranker interface {
	Rank(query string, threshold float64) ([]domain.ScoredMatch, error)
}

// Cache stores the ranked id order per query.
type Cache interface {
	Get(ctx context.Context, query string) ([]int64, bool)
	Set(ctx context.Context, query string, ids []int64) error
}
