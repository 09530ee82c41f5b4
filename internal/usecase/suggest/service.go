// Package suggest implements autocomplete over app names. Short queries
// get substring matches only — their TF-IDF vectors are too unstable to
// rank — and longer queries use the vector model with a looser
// threshold than full search.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/domain"
	"github.com/appgrid/appdex/internal/metrics"
)

const (
	// minQueryLen is the shortest query that produces suggestions.
	minQueryLen = 3
	// substringOnlyLen and below bypass the vector model entirely.
	substringOnlyLen = 4
	// vectorThreshold is looser than full search: suggestions are
	// display-only, so catching more candidates beats precision.
	vectorThreshold = 0.1
	// maxSuggestions caps the returned names.
	maxSuggestions = 10
)

// Catalog provides the lookups the suggester needs.
type Catalog interface {
	FindBySubstring(ctx context.Context, fragment string) ([]domain.App, error)
	AppsByID(ctx context.Context, ids []int64) ([]domain.App, error)
}

// Ranker scores a query against the fitted document matrix.
type Ranker interface {
	Rank(query string, threshold float64) ([]domain.ScoredMatch, error)
}

// Service produces display-name suggestions for partial queries.
type Service struct {
	catalog Catalog
	model   Ranker // nil when no model artifact is loaded
	logger  *zap.Logger
}

// New creates a suggestion service. model may be nil.
func New(catalog Catalog, model Ranker, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, model: model, logger: logger}
}

// Suggest returns up to ten app names for the query. Output carries no
// pagination and no ids — this endpoint is display-only.
func (s *Service) Suggest(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	length := utf8.RuneCountInString(query)
	if length < minQueryLen {
		return nil, nil
	}

	if length <= substringOnlyLen {
		metrics.SuggestTotal.WithLabelValues("substring").Inc()
		return s.substringNames(ctx, query)
	}

	if s.model == nil {
		metrics.SuggestTotal.WithLabelValues("model_absent").Inc()
		return s.substringNames(ctx, query)
	}

	matches, err := s.model.Rank(query, vectorThreshold)
	if err != nil {
		s.logger.Warn("suggestion scoring failed, degrading to substring match",
			zap.String("query", query), zap.Error(err))
		metrics.SuggestTotal.WithLabelValues("degraded").Inc()
		return s.substringNames(ctx, query)
	}
	metrics.SuggestTotal.WithLabelValues("vector").Inc()

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.AppID
	}

	apps, err := s.catalog.AppsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve suggestion names: %w", err)
	}
	names := make([]string, 0, len(apps))
	for _, a := range apps {
		names = append(names, a.Name)
	}
	return names, nil
}

// substringNames returns alphabetically ordered substring matches.
func (s *Service) substringNames(ctx context.Context, query string) ([]string, error) {
	apps, err := s.catalog.FindBySubstring(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("substring suggestions: %w", err)
	}
	if len(apps) > maxSuggestions {
		apps = apps[:maxSuggestions]
	}
	names := make([]string, 0, len(apps))
	for _, a := range apps {
		names = append(names, a.Name)
	}
	return names, nil
}
