package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/appgrid/appdex/internal/domain"
)

const reviewColumns = `id, app_id, author, title, body, sentiment,
	sentiment_polarity, sentiment_subjectivity, rating, created_at, approved`

func scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var rv domain.Review
	var createdAt int64
	err := row.Scan(
		&rv.ID, &rv.AppID, &rv.Author, &rv.Title, &rv.Body, &rv.Sentiment,
		&rv.SentimentPolarity, &rv.SentimentSubjectivity, &rv.Rating,
		&createdAt, &rv.Approved,
	)
	rv.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rv, err
}

// InsertReview stores a review and returns its assigned id. The caller
// decides the approval state; user submissions always start unapproved.
func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	createdAt := rv.CreatedAt.Unix()
	if rv.CreatedAt.IsZero() {
		createdAt = nowUnix()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (app_id, author, title, body, sentiment,
			sentiment_polarity, sentiment_subjectivity, rating, created_at, approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rv.AppID, rv.Author, rv.Title, rv.Body, rv.Sentiment,
		rv.SentimentPolarity, rv.SentimentSubjectivity, rv.Rating,
		createdAt, rv.Approved,
	)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review id: %w", err)
	}
	return id, nil
}

// ReviewByID returns a review or domain.ErrNotFound.
func (r *Repo) ReviewByID(ctx context.Context, id int64) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, fmt.Errorf("review by id: %w", err)
	}
	return rv, nil
}

// ReviewsForApp returns an app's reviews, newest first. Unapproved
// reviews are included only when includePending is set (moderator view).
func (r *Repo) ReviewsForApp(ctx context.Context, appID int64, includePending bool) ([]domain.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE app_id = ?`
	if !includePending {
		q += ` AND approved = 1`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, appID)
	if err != nil {
		return nil, fmt.Errorf("reviews for app: %w", err)
	}
	defer rows.Close()
	return collectReviews(rows)
}

// PendingReviews returns unapproved reviews newest first.
func (r *Repo) PendingReviews(ctx context.Context, limit, offset int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE approved = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pending reviews: %w", err)
	}
	defer rows.Close()
	return collectReviews(rows)
}

// CountPendingReviews returns the moderation backlog size.
func (r *Repo) CountPendingReviews(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE approved = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// ApproveReview marks a review approved. domain.ErrNotFound if missing.
func (r *Repo) ApproveReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("approve review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteReview removes a review. domain.ErrNotFound if missing.
func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertReviews bulk-inserts imported reviews in one transaction.
func (r *Repo) InsertReviews(ctx context.Context, reviews []domain.Review) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (app_id, author, title, body, sentiment,
			sentiment_polarity, sentiment_subjectivity, rating, created_at, approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rv := range reviews {
		createdAt := rv.CreatedAt.Unix()
		if rv.CreatedAt.IsZero() {
			createdAt = nowUnix()
		}
		if _, err := stmt.ExecContext(ctx, rv.AppID, rv.Author, rv.Title,
			rv.Body, rv.Sentiment, rv.SentimentPolarity,
			rv.SentimentSubjectivity, rv.Rating, createdAt, rv.Approved); err != nil {
			return inserted, fmt.Errorf("insert review for app %d: %w", rv.AppID, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// AppIDsByName maps app names to ids for the review importer.
func (r *Repo) AppIDsByName(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM apps`)
	if err != nil {
		return nil, fmt.Errorf("query app names: %w", err)
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan app name: %w", err)
		}
		m[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app names: %w", err)
	}
	return m, nil
}
