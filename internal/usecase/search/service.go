// Package search implements the hybrid search orchestrator: exact-name
// match first, then TF-IDF cosine ranking, then a case-insensitive
// substring fallback, merged into one deduplicated, stably ordered
// result list.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/domain"
	"github.com/appgrid/appdex/internal/metrics"
)

const (
	// vectorThreshold discards near-zero cosine noise in full search.
	vectorThreshold = 0.001
	// maxResults bounds the merged buffer before pagination.
	maxResults = 50
)

// Page is one page of search results in ranked order.
type Page struct {
	Apps     []domain.App
	Total    int
	Page     int
	PageSize int
}

// Service ranks catalog apps for free-text queries.
type Service struct {
	catalog         Catalog
	model           Ranker // nil when no model artifact is loaded
	cache           Cache  // nil when the query cache is disabled
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// New creates a search service. model may be nil (TF-IDF unavailable);
// every query then degrades to exact + substring matching.
func New(catalog Catalog, model Ranker, logger *zap.Logger) *Service {
	return &Service{
		catalog:         catalog,
		model:           model,
		logger:          logger,
		defaultPageSize: 10,
		maxPageSize:     maxResults,
	}
}

// WithCache attaches an optional ranked-id cache.
func (s *Service) WithCache(cache Cache) *Service {
	s.cache = cache
	return s
}

// WithPagination overrides the page-size bounds.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Search returns one page of ranked results plus the total match count.
// Page boundaries never reorder results: the full ranked id order is
// fixed first and pages are slices of it.
func (s *Service) Search(ctx context.Context, query string, page, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if page <= 0 {
		page = 1
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Page{Page: page, PageSize: pageSize}, nil
	}

	ids, err := s.rankedIDs(ctx, query)
	if err != nil {
		return Page{}, err
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(ids) {
		start = len(ids)
	}
	if end > len(ids) {
		end = len(ids)
	}

	apps, err := s.catalog.AppsByID(ctx, ids[start:end])
	if err != nil {
		return Page{}, fmt.Errorf("materialize page: %w", err)
	}

	return Page{Apps: apps, Total: len(ids), Page: page, PageSize: pageSize}, nil
}

// rankedIDs computes the full deduplicated id order for a query, going
// through the cache when one is attached.
func (s *Service) rankedIDs(ctx context.Context, query string) ([]int64, error) {
	cacheKey := strings.ToLower(query)
	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, cacheKey); ok {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			return ids, nil
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	}

	ids, err := s.rank(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, ids); err != nil {
			s.logger.Warn("query cache set failed", zap.Error(err))
		}
	}
	return ids, nil
}

// rank runs the three stages in fixed priority order. The buffer is
// deduplicated by first occurrence: an app placed by an earlier stage
// keeps its position no matter how later stages score it.
func (s *Service) rank(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]struct{})
	add := func(id int64) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		return true
	}

	// Stage 1: exact match goes first unconditionally, regardless of
	// its vector score.
	var exactID int64 = -1
	exact, err := s.catalog.FindByExactName(ctx, query)
	switch {
	case err == nil:
		exactID = exact.ID
		add(exact.ID)
		metrics.SearchStageTotal.WithLabelValues("exact").Inc()
	case errors.Is(err, domain.ErrNotFound):
		// no exact match
	default:
		return nil, fmt.Errorf("exact lookup: %w", err)
	}

	// Stage 2: TF-IDF cosine ranking. A scoring failure degrades to
	// "vector stage found nothing" for this query only; it never
	// reaches the caller.
	vectorFound := false
	if s.model != nil {
		matches, err := s.model.Rank(query, vectorThreshold)
		if err != nil {
			s.logger.Warn("vector stage failed, degrading to substring fallback",
				zap.String("query", query), zap.Error(err))
		} else {
			for _, m := range matches {
				if m.AppID == exactID {
					continue
				}
				if len(ids) >= maxResults {
					break
				}
				if add(m.AppID) {
					vectorFound = true
				}
			}
			if vectorFound {
				metrics.SearchStageTotal.WithLabelValues("vector").Inc()
			}
		}
	}

	// Stage 3: substring fallback whenever the vector stage found
	// nothing — model absent, zero qualifying rows, or a scoring
	// failure all land here.
	if !vectorFound {
		apps, err := s.catalog.FindBySubstring(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("substring fallback: %w", err)
		}
		for _, a := range apps {
			add(a.ID)
		}
		metrics.SearchStageTotal.WithLabelValues("fallback").Inc()
	}

	return ids, nil
}
