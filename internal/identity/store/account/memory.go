package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"lifeflow/internal/identity/models"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
)

// InMemory is the map-backed account store used in tests and when no
// database is configured.
type InMemory struct {
	mu         sync.RWMutex
	byEmail    map[string]*models.Account
	emailsByID map[id.AccountID]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		byEmail:    make(map[string]*models.Account),
		emailsByID: make(map[id.AccountID]string),
	}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.NormalizeEmail(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrAlreadyExists
	}
	stored := *account
	stored.Email = key
	s.byEmail[key] = &stored
	s.emailsByID[account.ID] = key
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.byEmail[id.NormalizeEmail(email)]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookupLocked(accountID)
}

func (s *InMemory) List(_ context.Context, filter models.AccountFilter) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Account
	for _, account := range s.byEmail {
		if filter.Status != "" && account.Status != filter.Status {
			continue
		}
		copied := *account
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) SearchDonors(_ context.Context, filter models.DonorFilter) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Account
	for _, account := range s.byEmail {
		if account.Status != models.StatusActive {
			continue
		}
		if filter.BloodGroup != "" && account.BloodGroup != filter.BloodGroup {
			continue
		}
		if filter.District != "" && account.District != filter.District {
			continue
		}
		if filter.Upazila != "" && account.Upazila != filter.Upazila {
			continue
		}
		copied := *account
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) UpdateProfile(_ context.Context, email string, patch models.ProfilePatch, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.byEmail[id.NormalizeEmail(email)]
	if !exists {
		return sentinel.ErrNotFound
	}
	account.Name = patch.Name
	account.Avatar = patch.Avatar
	account.BloodGroup = patch.BloodGroup
	account.District = patch.District
	account.Upazila = patch.Upazila
	account.UpdatedAt = now
	return nil
}

func (s *InMemory) SetStatus(_ context.Context, accountID id.AccountID, status models.AccountStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.lookupLocked(accountID)
	if err != nil {
		return err
	}
	stored := s.byEmail[account.Email]
	stored.Status = status
	stored.UpdatedAt = now
	return nil
}

func (s *InMemory) SetRole(_ context.Context, accountID id.AccountID, role models.Role, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.lookupLocked(accountID)
	if err != nil {
		return err
	}
	stored := s.byEmail[account.Email]
	stored.Role = role
	stored.UpdatedAt = now
	return nil
}

func (s *InMemory) CountActiveDonors(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, account := range s.byEmail {
		if account.Role == models.RoleDonor && account.Status == models.StatusActive {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) lookupLocked(accountID id.AccountID) (*models.Account, error) {
	email, exists := s.emailsByID[accountID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	account := s.byEmail[email]
	copied := *account
	return &copied, nil
}
