//go:build integration

package request

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lifeflow/internal/donation/models"
	"lifeflow/internal/platform/postgres"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
	"lifeflow/pkg/testutil/containers"
)

type PostgresRequestSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *Postgres
}

func TestPostgresRequestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresRequestSuite))
}

func (s *PostgresRequestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(s.ctx, s.pg.Pool))
	s.store = NewPostgres(s.pg.Pool)
}

func (s *PostgresRequestSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(s.ctx, `TRUNCATE donation_requests`)
	s.Require().NoError(err)
}

func (s *PostgresRequestSuite) newRequest() *models.DonationRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.DonationRequest{
		ID:                id.NewRequestID(),
		RequesterEmail:    "requester@example.com",
		RequesterName:     "Requester",
		RecipientName:     "Recipient",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Gulshan",
		HospitalName:      "City Hospital",
		FullAddress:       "1 Hospital Road",
		BloodGroup:        "A+",
		DonationDate:      "2026-09-15",
		DonationTime:      "10:00",
		DonationStatus:    models.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *PostgresRequestSuite) TestRoundTrip() {
	req := s.newRequest()
	s.Require().NoError(s.store.Insert(s.ctx, req))

	found, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.RequesterEmail, found.RequesterEmail)
	s.Equal(models.StatusPending, found.DonationStatus)
	s.Nil(found.DonorInfo)

	_, err = s.store.FindByID(s.ctx, id.NewRequestID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRequestSuite) TestClaimIsAtomicUnderConcurrency() {
	req := s.newRequest()
	s.Require().NoError(s.store.Insert(s.ctx, req))

	const donors = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < donors; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			claimed, err := s.store.ClaimForDonation(s.ctx, req.ID,
				models.DonorInfo{Name: "Donor", Email: "donor@example.com"}, time.Now().UTC())
			s.NoError(err)
			if claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, wins, "the conditional update admits exactly one winner")

	found, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, found.DonationStatus)
	s.Require().NotNil(found.DonorInfo)
}

func (s *PostgresRequestSuite) TestClaimDistinguishesMissingFromTaken() {
	_, err := s.store.ClaimForDonation(s.ctx, id.NewRequestID(), models.DonorInfo{}, time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	req := s.newRequest()
	req.DonationStatus = models.StatusDone
	s.Require().NoError(s.store.Insert(s.ctx, req))

	claimed, err := s.store.ClaimForDonation(s.ctx, req.ID, models.DonorInfo{Name: "D", Email: "d@example.com"}, time.Now().UTC())
	s.Require().NoError(err)
	s.False(claimed)
}

func (s *PostgresRequestSuite) TestListFilterAndCount() {
	for i := 0; i < 3; i++ {
		req := s.newRequest()
		req.CreatedAt = req.CreatedAt.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Insert(s.ctx, req))
	}
	done := s.newRequest()
	done.RequesterEmail = "other@example.com"
	done.DonationStatus = models.StatusDone
	s.Require().NoError(s.store.Insert(s.ctx, done))

	pending, err := s.store.List(s.ctx, models.Filter{Status: models.StatusPending}, models.Page{})
	s.Require().NoError(err)
	s.Len(pending, 3)
	s.True(pending[0].CreatedAt.After(pending[1].CreatedAt), "newest first")

	mine, err := s.store.List(s.ctx, models.Filter{RequesterEmail: "REQUESTER@example.com"}, models.Page{Number: 1, Size: 2})
	s.Require().NoError(err)
	s.Len(mine, 2)

	count, err := s.store.Count(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.EqualValues(4, count)
}

func (s *PostgresRequestSuite) TestUpdateAndDelete() {
	req := s.newRequest()
	s.Require().NoError(s.store.Insert(s.ctx, req))

	details := models.Details{
		RecipientName: "Updated", RecipientDistrict: "Khulna", RecipientUpazila: "Sadar",
		HospitalName: "Other Hospital", FullAddress: "2 Clinic Lane", BloodGroup: "B-",
		DonationDate: "2026-10-01", DonationTime: "14:00", RequestMessage: "urgent",
	}
	s.Require().NoError(s.store.UpdateDetails(s.ctx, req.ID, details, time.Now().UTC()))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, req.ID, models.StatusCanceled, time.Now().UTC()))

	found, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal("Updated", found.RecipientName)
	s.Equal("urgent", found.RequestMessage)
	s.Equal(models.StatusCanceled, found.DonationStatus)

	s.Require().NoError(s.store.Delete(s.ctx, req.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, req.ID), sentinel.ErrNotFound)
}
