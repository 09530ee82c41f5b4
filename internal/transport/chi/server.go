// Package chi wires the use-case services into HTTP handlers. Handlers
// stay thin: parse, delegate, map domain errors to status codes.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/domain"
	logpkg "github.com/appgrid/appdex/internal/logger"
	healthuc "github.com/appgrid/appdex/internal/usecase/health"
	reviewuc "github.com/appgrid/appdex/internal/usecase/review"
	searchuc "github.com/appgrid/appdex/internal/usecase/search"
	suggestuc "github.com/appgrid/appdex/internal/usecase/suggest"
)

// AppReader is the single catalog read the transport performs itself,
// for the app-detail endpoint.
type AppReader interface {
	AppByID(ctx context.Context, id int64) (domain.App, error)
}

// Server holds the services behind the HTTP API.
type Server struct {
	search  *searchuc.Service
	suggest *suggestuc.Service
	reviews *reviewuc.Service
	health  *healthuc.Service
	apps    AppReader
	apiKeys []string
	logger  *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	reviews *reviewuc.Service,
	health *healthuc.Service,
	apps AppReader,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:  search,
		suggest: suggest,
		reviews: reviews,
		health:  health,
		apps:    apps,
		apiKeys: apiKeys,
		logger:  logger,
	}
}

// Register mounts all routes on the router. Moderation routes sit
// behind the bearer-token check; everything else is public.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/apps", s.handleSearch)
		r.Get("/apps/{id}", s.handleAppDetail)
		r.Get("/suggestions", s.handleSuggestions)
		r.Post("/apps/{id}/reviews", s.handleSubmitReview)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.apiKeys))
			r.Get("/reviews/pending", s.handlePendingReviews)
			r.Post("/reviews/{id}/moderate", s.handleModerateReview)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	result, err := s.search.Search(r.Context(), q, page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]appResponse, len(result.Apps))
	for i, a := range result.Apps {
		items[i] = appToResponse(a)
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:    q,
		Results:  items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (s *Server) handleAppDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	app, err := s.apps.AppByID(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	reviews, err := s.reviews.ForApp(r.Context(), id, false)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := appDetailResponse{appResponse: appToResponse(app)}
	resp.Reviews = make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		resp.Reviews[i] = reviewToResponse(rv)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	names, err := s.suggest.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": names})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "review body is required")
		return
	}

	id, err := s.reviews.Submit(r.Context(), domain.Review{
		AppID:  appID,
		Author: req.Author,
		Title:  req.Title,
		Body:   req.Body,
		Rating: req.Rating,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "review submitted for approval",
	})
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 10)

	reviews, total, err := s.reviews.Pending(r.Context(), page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		items[i] = reviewToResponse(rv)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": items,
		"total":   total,
	})
}

func (s *Server) handleModerateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.reviews.Moderate(r.Context(), id, req.Action); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	switch req.Action {
	case reviewuc.ActionReject:
		writeJSON(w, http.StatusOK, map[string]string{"message": "review rejected and removed"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "review approved"})
	}
}

// handleDomainError maps domain sentinels to HTTP statuses.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"action must be \"approve\" or \"reject\"")
	default:
		// The request-scoped logger carries request_id when the wide-event
		// middleware is mounted.
		l := logpkg.FromContext(r.Context())
		if l == nil {
			l = s.logger
		}
		l.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
