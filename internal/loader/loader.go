// Package loader imports the Play-Store-style CSV exports into the
// catalog. Numeric columns arrive in display form ("1,000+", "3.0M",
// "Varies with device"); parsing is lenient and bad values fall back to
// zero rather than dropping the row.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/domain"
)

// Catalog is the write side the importer needs.
type Catalog interface {
	InsertApps(ctx context.Context, apps []domain.App) (int, error)
	InsertReviews(ctx context.Context, reviews []domain.Review) (int, error)
	AppIDsByName(ctx context.Context) (map[string]int64, error)
}

// Importer loads CSV exports into the catalog.
type Importer struct {
	catalog Catalog
	logger  *zap.Logger
}

// New creates an Importer.
func New(catalog Catalog, logger *zap.Logger) *Importer {
	return &Importer{catalog: catalog, logger: logger}
}

// ImportApps reads the app CSV and bulk-inserts the records, skipping
// rows without a name and duplicate names. Returns the inserted count.
func (im *Importer) ImportApps(ctx context.Context, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	var apps []domain.App
	for _, row := range rows {
		name := row["App"]
		if name == "" {
			continue
		}
		apps = append(apps, domain.App{
			Name:          name,
			Category:      row["Category"],
			Rating:        parseFloat(row["Rating"]),
			ReviewsCount:  parseCount(row["Reviews"]),
			Size:          row["Size"],
			Installs:      parseCount(row["Installs"]),
			Type:          row["Type"],
			Price:         row["Price"],
			ContentRating: row["Content Rating"],
			Genres:        row["Genres"],
			LastUpdated:   row["Last Updated"],
			CurrentVer:    row["Current Ver"],
			AndroidVer:    row["Android Ver"],
		})
	}

	inserted, err := im.catalog.InsertApps(ctx, apps)
	if err != nil {
		return inserted, fmt.Errorf("insert apps: %w", err)
	}
	im.logger.Info("apps imported",
		zap.Int("rows", len(rows)),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

// ImportReviews reads the review CSV and inserts records whose app
// exists and whose text is non-empty. Imported reviews are marked
// approved: they come from the upstream dataset, not from users.
func (im *Importer) ImportReviews(ctx context.Context, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	idsByName, err := im.catalog.AppIDsByName(ctx)
	if err != nil {
		return 0, fmt.Errorf("load app name index: %w", err)
	}

	var reviews []domain.Review
	skipped := 0
	for _, row := range rows {
		body := row["Translated_Review"]
		appID, ok := idsByName[row["App"]]
		if !ok || body == "" || strings.EqualFold(body, "nan") {
			skipped++
			continue
		}
		reviews = append(reviews, domain.Review{
			AppID:                 appID,
			Body:                  body,
			Sentiment:             row["Sentiment"],
			SentimentPolarity:     parseFloat(row["Sentiment_Polarity"]),
			SentimentSubjectivity: parseFloat(row["Sentiment_Subjectivity"]),
			Approved:              true,
		})
	}

	inserted, err := im.catalog.InsertReviews(ctx, reviews)
	if err != nil {
		return inserted, fmt.Errorf("insert reviews: %w", err)
	}
	im.logger.Info("reviews imported",
		zap.Int("rows", len(rows)),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
	)
	return inserted, nil
}

// readCSV reads the whole file into header-keyed rows. Short records
// are tolerated; missing columns read as empty strings.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseCount parses display counts like "1,000+" and "3.0M".
func parseCount(s string) int64 {
	s = strings.NewReplacer(",", "", "+", "").Replace(strings.TrimSpace(s))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		mult = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "k"):
		mult = 1e3
		s = strings.TrimSuffix(s, "k")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f * mult)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
