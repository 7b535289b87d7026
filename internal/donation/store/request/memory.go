package request

import (
	"context"
	"sort"
	"sync"
	"time"

	"lifeflow/internal/donation/models"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
)

// InMemory is the map-backed request store used in tests and when no
// database is configured. The mutex gives ClaimForDonation the same
// atomicity the SQL conditional update provides.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.DonationRequest
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.RequestID]*models.DonationRequest)}
}

func (s *InMemory) Insert(_ context.Context, req *models.DonationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := cloneRequest(req)
	s.requests[req.ID] = copied
	return nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.DonationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, exists := s.requests[requestID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (s *InMemory) UpdateDetails(_ context.Context, requestID id.RequestID, details models.Details, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.requests[requestID]
	if !exists {
		return sentinel.ErrNotFound
	}
	req.RecipientName = details.RecipientName
	req.RecipientDistrict = details.RecipientDistrict
	req.RecipientUpazila = details.RecipientUpazila
	req.HospitalName = details.HospitalName
	req.FullAddress = details.FullAddress
	req.BloodGroup = details.BloodGroup
	req.DonationDate = details.DonationDate
	req.DonationTime = details.DonationTime
	req.RequestMessage = details.RequestMessage
	req.UpdatedAt = now
	return nil
}

func (s *InMemory) UpdateStatus(_ context.Context, requestID id.RequestID, status models.DonationStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.requests[requestID]
	if !exists {
		return sentinel.ErrNotFound
	}
	req.DonationStatus = status
	req.UpdatedAt = now
	return nil
}

func (s *InMemory) ClaimForDonation(_ context.Context, requestID id.RequestID, donor models.DonorInfo, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.requests[requestID]
	if !exists {
		return false, sentinel.ErrNotFound
	}
	if req.DonationStatus != models.StatusPending {
		return false, nil
	}
	req.DonationStatus = models.StatusInProgress
	req.DonorInfo = &models.DonorInfo{Name: donor.Name, Email: donor.Email}
	req.UpdatedAt = now
	return true, nil
}

func (s *InMemory) Delete(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[requestID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.requests, requestID)
	return nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter, page models.Page) ([]*models.DonationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.DonationRequest
	for _, req := range s.requests {
		if !matches(req, filter) {
			continue
		}
		matched = append(matched, cloneRequest(req))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if page.Size <= 0 {
		return matched, nil
	}
	offset := page.Offset()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *InMemory) Count(_ context.Context, filter models.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, req := range s.requests {
		if matches(req, filter) {
			count++
		}
	}
	return count, nil
}

func matches(req *models.DonationRequest, filter models.Filter) bool {
	if filter.Status != "" && req.DonationStatus != filter.Status {
		return false
	}
	if filter.RequesterEmail != "" && !req.IsOwner(filter.RequesterEmail) {
		return false
	}
	return true
}

func cloneRequest(req *models.DonationRequest) *models.DonationRequest {
	copied := *req
	if req.DonorInfo != nil {
		donor := *req.DonorInfo
		copied.DonorInfo = &donor
	}
	return &copied
}
