package fund

import (
	"context"
	"sort"
	"sync"

	"lifeflow/internal/funding/models"
)

// InMemory is the slice-backed store used in tests and when no database is
// configured.
type InMemory struct {
	mu    sync.RWMutex
	funds []*models.Fund
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Insert(_ context.Context, f *models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *f
	s.funds = append(s.funds, &copied)
	return nil
}

func (s *InMemory) List(_ context.Context, page models.Page) ([]*models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Fund, 0, len(s.funds))
	for _, f := range s.funds {
		copied := *f
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundingDate.After(out[j].FundingDate) })

	if page.Size <= 0 {
		return out, nil
	}
	offset := page.Offset()
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + page.Size
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *InMemory) Total(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, f := range s.funds {
		total += f.Amount
	}
	return total, nil
}
