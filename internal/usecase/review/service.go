// Package review handles user review submission and the moderation
// workflow: new reviews start unapproved, moderators approve them or
// reject (delete) them.
package review

import (
	"context"
	"fmt"

	"github.com/appgrid/appdex/internal/domain"
)

// Moderation actions accepted by Moderate.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Repository is the storage contract for reviews.
type Repository interface {
	AppByID(ctx context.Context, id int64) (domain.App, error)
	InsertReview(ctx context.Context, rv domain.Review) (int64, error)
	ReviewsForApp(ctx context.Context, appID int64, includePending bool) ([]domain.Review, error)
	PendingReviews(ctx context.Context, limit, offset int) ([]domain.Review, error)
	CountPendingReviews(ctx context.Context) (int, error)
	ApproveReview(ctx context.Context, id int64) error
	DeleteReview(ctx context.Context, id int64) error
}

// Service coordinates review submission and moderation.
type Service struct {
	repo Repository
}

// New creates a review service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit stores a new review for the app, pending approval. Returns the
// assigned review id.
func (s *Service) Submit(ctx context.Context, rv domain.Review) (int64, error) {
	if _, err := s.repo.AppByID(ctx, rv.AppID); err != nil {
		return 0, fmt.Errorf("look up app %d: %w", rv.AppID, err)
	}
	rv.Approved = false
	id, err := s.repo.InsertReview(ctx, rv)
	if err != nil {
		return 0, fmt.Errorf("store review: %w", err)
	}
	return id, nil
}

// ForApp lists an app's reviews, newest first. Moderators also see
// pending ones.
func (s *Service) ForApp(ctx context.Context, appID int64, moderator bool) ([]domain.Review, error) {
	reviews, err := s.repo.ReviewsForApp(ctx, appID, moderator)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Pending lists unapproved reviews newest first, with the backlog total.
func (s *Service) Pending(ctx context.Context, page, pageSize int) ([]domain.Review, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	reviews, err := s.repo.PendingReviews(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending: %w", err)
	}
	total, err := s.repo.CountPendingReviews(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count pending: %w", err)
	}
	return reviews, total, nil
}

// Moderate applies a moderation action: approve keeps the review and
// makes it visible, reject deletes it.
func (s *Service) Moderate(ctx context.Context, reviewID int64, action string) error {
	switch action {
	case ActionApprove:
		if err := s.repo.ApproveReview(ctx, reviewID); err != nil {
			return fmt.Errorf("approve review %d: %w", reviewID, err)
		}
	case ActionReject:
		if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
			return fmt.Errorf("reject review %d: %w", reviewID, err)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
	return nil
}
