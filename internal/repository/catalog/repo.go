// Package catalog is the sqlite-backed store for apps and reviews. It
// is the catalog accessor the search core consumes: list-all in id
// order, exact-name lookup, substring lookup, and an order-preserving
// join for materializing ranked pages.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/appgrid/appdex/internal/domain"
)

// Repo wraps the sqlite database holding apps and reviews.
type Repo struct {
	db *sql.DB
}

// Open opens (creating if missing) the catalog database at path.
func Open(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc.org/sqlite serializes writes; one connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS apps (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL UNIQUE,
		category       TEXT,
		rating         REAL,
		reviews_count  INTEGER NOT NULL DEFAULT 0,
		size           TEXT,
		installs       INTEGER NOT NULL DEFAULT 0,
		type           TEXT,
		price          TEXT,
		content_rating TEXT,
		genres         TEXT,
		last_updated   TEXT,
		current_ver    TEXT,
		android_ver    TEXT
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id                     INTEGER PRIMARY KEY AUTOINCREMENT,
		app_id                 INTEGER NOT NULL REFERENCES apps(id) ON DELETE CASCADE,
		author                 TEXT,
		title                  TEXT,
		body                   TEXT,
		sentiment              TEXT,
		sentiment_polarity     REAL NOT NULL DEFAULT 0,
		sentiment_subjectivity REAL NOT NULL DEFAULT 0,
		rating                 INTEGER NOT NULL DEFAULT 0,
		created_at             INTEGER NOT NULL,
		approved               INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_app ON reviews(app_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_pending ON reviews(approved, created_at);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

const appColumns = `id, name, category, rating, reviews_count, size, installs,
	type, price, content_rating, genres, last_updated, current_ver, android_ver`

func scanApp(row interface{ Scan(...any) error }) (domain.App, error) {
	var a domain.App
	err := row.Scan(
		&a.ID, &a.Name, &a.Category, &a.Rating, &a.ReviewsCount, &a.Size,
		&a.Installs, &a.Type, &a.Price, &a.ContentRating, &a.Genres,
		&a.LastUpdated, &a.CurrentVer, &a.AndroidVer,
	)
	return a, err
}

// Snapshot returns the (id, name) corpus ordered by id ascending. This
// order fixes the vector-model row positions at build time.
func (r *Repo) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM apps ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var snap domain.Snapshot
	for rows.Next() {
		var e domain.SnapshotEntry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap = append(snap, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return snap, nil
}

// FindByExactName returns the single app whose name equals name
// case-insensitively, or domain.ErrNotFound.
func (r *Repo) FindByExactName(ctx context.Context, name string) (domain.App, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM apps WHERE name = ? COLLATE NOCASE LIMIT 1`, name)
	a, err := scanApp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.App{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.App{}, fmt.Errorf("find by exact name: %w", err)
	}
	return a, nil
}

// FindBySubstring returns apps whose name contains fragment
// case-insensitively, ordered alphabetically by name.
func (r *Repo) FindBySubstring(ctx context.Context, fragment string) ([]domain.App, error) {
	pattern := "%" + escapeLike(fragment) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appColumns+` FROM apps WHERE name LIKE ? ESCAPE '\' ORDER BY name ASC`, pattern)
	if err != nil {
		return nil, fmt.Errorf("find by substring: %w", err)
	}
	defer rows.Close()
	return collectApps(rows)
}

// AppByID returns a single app or domain.ErrNotFound.
func (r *Repo) AppByID(ctx context.Context, id int64) (domain.App, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appColumns+` FROM apps WHERE id = ?`, id)
	a, err := scanApp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.App{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.App{}, fmt.Errorf("app by id: %w", err)
	}
	return a, nil
}

// AppsByID fetches the given apps and returns them in exactly the input
// id order, dropping ids that no longer exist. The ranked order computed
// by the search orchestrator must survive this join untouched.
func (r *Repo) AppsByID(ctx context.Context, ids []int64) ([]domain.App, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appColumns+` FROM apps WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("apps by id: %w", err)
	}
	defer rows.Close()

	fetched, err := collectApps(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.App, len(fetched))
	for _, a := range fetched {
		byID[a.ID] = a
	}

	ordered := make([]domain.App, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// CountApps returns the catalog size.
func (r *Repo) CountApps(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM apps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count apps: %w", err)
	}
	return n, nil
}

// InsertApps bulk-inserts apps inside one transaction, skipping
// duplicate names.
func (r *Repo) InsertApps(ctx context.Context, apps []domain.App) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO apps (name, category, rating, reviews_count, size,
			installs, type, price, content_rating, genres, last_updated,
			current_ver, android_ver)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range apps {
		res, err := stmt.ExecContext(ctx, a.Name, a.Category, a.Rating,
			a.ReviewsCount, a.Size, a.Installs, a.Type, a.Price,
			a.ContentRating, a.Genres, a.LastUpdated, a.CurrentVer, a.AndroidVer)
		if err != nil {
			return inserted, fmt.Errorf("insert app %q: %w", a.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func collectApps(rows *sql.Rows) ([]domain.App, error) {
	var apps []domain.App
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return apps, nil
}

// escapeLike escapes LIKE wildcards so user fragments match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// nowUnix is swappable in tests.
var nowUnix = func() int64 { return time.Now().Unix() }
