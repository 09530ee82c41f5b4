package domain

import "time"

// App is a single catalog entry. Records are owned by the catalog store;
// the search core only ever reads them.
type App struct {
	ID            int64
	Name          string
	Category      string
	Rating        float64
	ReviewsCount  int64
	Size          string
	Installs      int64
	Type          string
	Price         string
	ContentRating string
	Genres        string
	LastUpdated   string
	CurrentVer    string
	AndroidVer    string
}

// Review is a user-submitted app review. New reviews start unapproved and
// become visible only after a moderator approves them.
type Review struct {
	ID                    int64
	AppID                 int64
	Author                string
	Title                 string
	Body                  string
	Sentiment             string
	SentimentPolarity     float64
	SentimentSubjectivity float64
	Rating                int
	CreatedAt             time.Time
	Approved              bool
}

// SnapshotEntry is one (id, name) pair of a corpus snapshot.
type SnapshotEntry struct {
	ID   int64
	Name string
}

// Snapshot is the ordered corpus the vector model is built from.
// Entries are ordered by ID ascending; the order at build time fixes the
// row positions of the document matrix, so any later mapping from row to
// id must come from the model itself, never from a fresh catalog read.
type Snapshot []SnapshotEntry

// ScoredMatch pairs an app id with its cosine similarity to a query.
type ScoredMatch struct {
	AppID int64
	Score float64
}
