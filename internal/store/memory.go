package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/otelkit/docscan/internal/model"
)

// MemoryStore implements Store in memory for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	scans map[string]model.ScanRecord
}

// NewMemory creates an empty in-memory journal.
func NewMemory() *MemoryStore {
	return &MemoryStore{scans: make(map[string]model.ScanRecord)}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) SaveScan(_ context.Context, rec *model.ScanRecord) error {
	if rec.ID == "" {
		return eris.New("memory: scan record has no id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) GetScan(_ context.Context, id string) (*model.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.scans[id]
	if !ok {
		return nil, eris.Errorf("memory: scan %s not found", id)
	}
	return &rec, nil
}

func (s *MemoryStore) ListScans(_ context.Context, filter ScanFilter) ([]model.ScanRecord, error) {
	s.mu.RLock()
	var all []model.ScanRecord
	for _, rec := range s.scans {
		if filter.Provider != "" && rec.Provider != filter.Provider {
			continue
		}
		if filter.Success != nil && rec.Success != *filter.Success {
			continue
		}
		if filter.ReviewNeeded != nil && rec.ReviewNeeded != *filter.ReviewNeeded {
			continue
		}
		all = append(all, rec)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return nil, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (s *MemoryStore) Totals(context.Context) (*Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Totals
	for _, rec := range s.scans {
		t.Scans++
		if rec.Success {
			t.Successes++
		}
		if rec.FallbackUsed {
			t.Fallbacks++
		}
		if rec.ReviewNeeded {
			t.ReviewNeeded++
		}
		t.TotalCostUSD += rec.CostUSD
	}
	return &t, nil
}
