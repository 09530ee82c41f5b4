// Package modelstore persists the fitted vector model as a pair of gob
// artifacts on disk and rebuilds it from the catalog on demand.
//
// The pair (vectorizer + document matrix) must both exist and decode for
// the model to count as present; a missing or corrupt artifact is
// reported as absent, never as an error, so serving processes degrade to
// substring search instead of crashing.
package modelstore

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/domain"
	"github.com/appgrid/appdex/internal/tfidf"
)

const (
	vectorizerFile = "vectorizer.gob"
	matrixFile     = "matrix.gob"
)

// Snapshotter supplies the ordered corpus the model is rebuilt from.
type Snapshotter interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Store reads and writes model artifacts under a fixed directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a Store rooted at dir.
func New(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// matrixArtifact is the on-disk form of the document matrix. RowToID
// lives inside the artifact so the model is self-describing: mapping a
// row back to an app id never depends on a second catalog read
// returning the same order.
type matrixArtifact struct {
	Rows    []tfidf.SparseVector
	RowToID []int64
}

// Load reads the artifact pair. It returns (nil, nil) when the model is
// absent; corrupt artifacts are logged and treated the same way.
func (s *Store) Load() (*tfidf.Model, error) {
	var vec tfidf.Vectorizer
	if ok := s.loadGob(vectorizerFile, &vec); !ok {
		return nil, nil
	}
	var mat matrixArtifact
	if ok := s.loadGob(matrixFile, &mat); !ok {
		return nil, nil
	}
	if len(mat.Rows) != len(mat.RowToID) {
		s.logger.Warn("model artifact inconsistent, treating as absent",
			zap.Int("rows", len(mat.Rows)),
			zap.Int("ids", len(mat.RowToID)),
		)
		return nil, nil
	}
	return &tfidf.Model{Vectorizer: &vec, Rows: mat.Rows, RowToID: mat.RowToID}, nil
}

// Save writes the model as an artifact pair, each file written to a
// temp path and renamed so concurrent readers never observe a partial
// artifact.
func (s *Store) Save(m *tfidf.Model) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := s.saveGob(vectorizerFile, m.Vectorizer); err != nil {
		return err
	}
	mat := matrixArtifact{Rows: m.Rows, RowToID: m.RowToID}
	if err := s.saveGob(matrixFile, &mat); err != nil {
		return err
	}
	return nil
}

// Rebuild re-derives the model from the current catalog and replaces
// the artifact pair. It is the only mutation path and is idempotent:
// rerunning it against an unchanged catalog yields a model with
// identical ranking behavior. An empty catalog removes any existing
// artifacts instead of leaving a stale pair behind.
//
// Failures surface to the operator; the previous artifacts are left
// untouched because each file is replaced by rename only after its
// replacement is fully written.
func (s *Store) Rebuild(ctx context.Context, catalog Snapshotter) (*tfidf.Model, error) {
	snapshot, err := catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}

	model := tfidf.Build(snapshot)
	if model == nil {
		if err := s.remove(); err != nil {
			return nil, err
		}
		s.logger.Info("catalog empty, model artifacts removed")
		return nil, nil
	}

	if err := s.Save(model); err != nil {
		return nil, err
	}
	s.logger.Info("model rebuilt",
		zap.Int("documents", model.Len()),
		zap.Int("vocabulary", len(model.Vectorizer.Vocabulary)),
		zap.String("dir", s.dir),
	)
	return model, nil
}

func (s *Store) loadGob(name string, v any) bool {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("model artifact unreadable, treating as absent",
				zap.String("file", name), zap.Error(err))
		}
		return false
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		s.logger.Warn("model artifact corrupt, treating as absent",
			zap.String("file", name), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) saveGob(name string, v any) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) remove() error {
	for _, name := range []string{vectorizerFile, matrixFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
