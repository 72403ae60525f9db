package store

import (
	"fmt"
	"sort"
	"sync"

	"thermocalc/internal/thermo"
)

// MemStore is an in-memory Store, used for tests and for running
// against a YAML dataset without a database file.
type MemStore struct {
	mu      sync.RWMutex
	records map[string][]*thermo.Record
	nextID  int64
	history []*Calculation
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string][]*thermo.Record), nextID: 1}
}

// Candidates returns copies of the records stored under formula.
func (s *MemStore) Candidates(formula string) ([]*thermo.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[formula]
	out := make([]*thermo.Record, len(recs))
	for i, rec := range recs {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}

// SaveRecord stores a copy of rec and returns its assigned id.
func (s *MemStore) SaveRecord(rec *thermo.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.ID = s.nextID
	s.nextID++
	s.records[cp.Formula] = append(s.records[cp.Formula], &cp)
	return cp.ID, nil
}

// Formulas lists the distinct stored formulas in sorted order.
func (s *MemStore) Formulas() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.records))
	for f := range s.records {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// SaveCalculation appends one calculation to the in-memory history.
func (s *MemStore) SaveCalculation(c *Calculation) error {
	if c.ID == "" {
		return fmt.Errorf("calculation id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Created == "" {
		c.Created = nowUTC()
	}
	cp := *c
	s.history = append(s.history, &cp)
	return nil
}

// ListCalculations returns the most recent calculations, newest first.
func (s *MemStore) ListCalculations(limit int) ([]*Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]*Calculation, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.history[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }
