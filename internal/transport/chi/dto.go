package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/appgrid/appdex/internal/domain"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeUnauthorized     = "unauthorized"
	codeInternal         = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type appResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	ReviewsCount  int64   `json:"reviews_count,omitempty"`
	Size          string  `json:"size,omitempty"`
	Installs      int64   `json:"installs,omitempty"`
	Type          string  `json:"type,omitempty"`
	Price         string  `json:"price,omitempty"`
	ContentRating string  `json:"content_rating,omitempty"`
	Genres        string  `json:"genres,omitempty"`
}

type appDetailResponse struct {
	appResponse
	Reviews []reviewResponse `json:"reviews"`
}

type searchResponse struct {
	Query    string        `json:"query"`
	Results  []appResponse `json:"results"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	AppID     int64     `json:"app_id"`
	Author    string    `json:"author,omitempty"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Approved  bool      `json:"approved"`
}

type submitReviewRequest struct {
	Author string `json:"author"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

type moderateRequest struct {
	Action string `json:"action"`
}

func appToResponse(a domain.App) appResponse {
	return appResponse{
		ID:            a.ID,
		Name:          a.Name,
		Category:      a.Category,
		Rating:        a.Rating,
		ReviewsCount:  a.ReviewsCount,
		Size:          a.Size,
		Installs:      a.Installs,
		Type:          a.Type,
		Price:         a.Price,
		ContentRating: a.ContentRating,
		Genres:        a.Genres,
	}
}

func reviewToResponse(rv domain.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		AppID:     rv.AppID,
		Author:    rv.Author,
		Title:     rv.Title,
		Body:      rv.Body,
		Rating:    rv.Rating,
		CreatedAt: rv.CreatedAt,
		Approved:  rv.Approved,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
