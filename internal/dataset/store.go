package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/nao1215/chartbook/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Store normalizes the datasets of one document and caches the results.
//
// Design decision: normalization is cached per dataset instance so a
// dataset referenced by ten visuals is decompressed and coerced once.
// The cache also pins failures: a corrupt dataset reports the same
// error to every consumer instead of retrying the decode per visual.
// Distinct datasets normalize in parallel; singleflight collapses
// concurrent requests for the same ID into one decode.
type Store struct {
	datasets map[string]*model.Dataset

	mu     sync.Mutex
	tables map[string]*Table
	errs   map[string]error
	group  singleflight.Group

	logger      *slog.Logger
	concurrency int
	release     bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets a custom logger for normalization diagnostics.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithConcurrency sets the maximum number of datasets normalized
// simultaneously by NormalizeAll. Default is the number of CPUs.
func WithConcurrency(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithReleaseCompressed makes the store erase each dataset's compressed
// payload after a successful expansion, trading re-compression for
// memory relief. The erasure is irreversible for the given document.
func WithReleaseCompressed() StoreOption {
	return func(s *Store) {
		s.release = true
	}
}

// NewStore creates a Store over a document's dataset mapping.
func NewStore(datasets map[string]*model.Dataset, opts ...StoreOption) *Store {
	s := &Store{
		datasets:    datasets,
		tables:      make(map[string]*Table, len(datasets)),
		errs:        make(map[string]error, len(datasets)),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// IDs returns the dataset IDs in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.datasets))
	for id := range s.datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NormalizeAll normalizes every dataset concurrently, respecting the
// concurrency limit. Datasets are independent, so each failure is
// recorded against its own ID and never aborts the others; the only
// error returned here is context cancellation.
func (s *Store) NormalizeAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, id := range s.IDs() {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			t, err := s.normalize(id)
			if err != nil {
				s.logger.Warn("dataset normalization failed",
					"dataset", id,
					"error", err,
				)
				// Recorded against the dataset; other datasets continue.
				return nil
			}
			s.logger.Debug("dataset normalized",
				"dataset", id,
				"rows", t.NumRows(),
				"columns", t.NumCols(),
				"warnings", len(t.Warnings),
			)
			return nil
		})
	}
	return g.Wait()
}

// Table returns the canonical table for a dataset ID, normalizing it on
// first use. An unknown ID fails with ErrUnresolvedDataset; a dataset
// that failed to normalize returns its pinned error on every call.
func (s *Store) Table(id string) (*Table, error) {
	return s.normalize(id)
}

// Warnings returns the normalization warnings of every dataset
// normalized so far, prefixed with the dataset ID, in sorted ID order.
func (s *Store) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var all []string
	for _, id := range ids {
		for _, w := range s.tables[id].Warnings {
			all = append(all, fmt.Sprintf("dataset %q: %s", id, w))
		}
	}
	return all
}

// normalize runs Normalize at most once per ID and caches the outcome.
// The decode itself runs outside the lock so distinct datasets proceed
// in parallel.
func (s *Store) normalize(id string) (*Table, error) {
	if t, err, ok := s.cached(id); ok {
		return t, err
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		if t, err, ok := s.cached(id); ok {
			return t, err
		}

		ds, ok := s.datasets[id]
		if !ok {
			err := fmt.Errorf("dataset %q: %w", id, ErrUnresolvedDataset)
			s.record(id, nil, err)
			return nil, err
		}

		t, err := Normalize(ds)
		if err != nil {
			s.record(id, nil, err)
			return nil, err
		}
		if s.release {
			ds.ReleaseCompressed()
		}
		s.record(id, t, nil)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// cached returns the pinned outcome for an ID, if any.
func (s *Store) cached(id string) (*Table, error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[id]; ok {
		return t, nil, true
	}
	if err, ok := s.errs[id]; ok {
		return nil, err, true
	}
	return nil, nil, false
}

// record pins the outcome for an ID.
func (s *Store) record(id string, t *Table, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errs[id] = err
		return
	}
	s.tables[id] = t
}
