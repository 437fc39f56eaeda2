package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of the run, replacing any run with the same ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r = copyRun(r)
	r.ItemsetCount = len(r.Itemsets)
	r.RuleCount = len(r.Rules)
	s.runs[r.ID] = r
	return nil
}

// GetRun returns the run header.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, false, nil
	}
	return header(r), true, nil
}

// ListRuns returns run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, header(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.runs, id)
	return nil
}

// Itemsets returns the run's itemsets in saved order.
func (s *Store) Itemsets(ctx context.Context, runID string) ([]store.Itemset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRun(s.runs[runID]).Itemsets, nil
}

// Rules returns the run's rules in saved order.
func (s *Store) Rules(ctx context.Context, runID string) ([]store.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRun(s.runs[runID]).Rules, nil
}

func header(r store.Run) store.Run {
	r.Itemsets = nil
	r.Rules = nil
	return r
}

func copyRun(r store.Run) store.Run {
	if r.Itemsets != nil {
		sets := make([]store.Itemset, len(r.Itemsets))
		for i, set := range r.Itemsets {
			set.Items = append([]string(nil), set.Items...)
			sets[i] = set
		}
		r.Itemsets = sets
	}
	if r.Rules != nil {
		rs := make([]store.Rule, len(r.Rules))
		for i, rule := range r.Rules {
			rule.Antecedents = append([]string(nil), rule.Antecedents...)
			rule.Consequents = append([]string(nil), rule.Consequents...)
			rs[i] = rule
		}
		r.Rules = rs
	}
	return r
}

var _ store.Store = (*Store)(nil)
