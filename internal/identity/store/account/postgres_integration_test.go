//go:build integration

package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/platform/postgres"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
	"lifeflow/pkg/testutil/containers"
)

type PostgresAccountSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *Postgres
}

func TestPostgresAccountSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresAccountSuite))
}

func (s *PostgresAccountSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(s.ctx, s.pg.Pool))
	s.store = NewPostgres(s.pg.Pool)
}

func (s *PostgresAccountSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(s.ctx, `TRUNCATE accounts`)
	s.Require().NoError(err)
}

func (s *PostgresAccountSuite) newAccount(email string) *models.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Account{
		ID:           id.NewAccountID(),
		Email:        id.NormalizeEmail(email),
		Name:         "Rahim",
		BloodGroup:   "A+",
		District:     "Dhaka",
		Upazila:      "Gulshan",
		PasswordHash: []byte("$2a$10$fakehashfortesting"),
		Role:         models.RoleDonor,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresAccountSuite) TestCreateAndLookup() {
	acct := s.newAccount("rahim@example.com")
	s.Require().NoError(s.store.Create(s.ctx, acct))

	found, err := s.store.FindByEmail(s.ctx, "RAHIM@Example.com")
	s.Require().NoError(err)
	s.Equal("rahim@example.com", found.Email)
	s.Equal(models.RoleDonor, found.Role)

	byID, err := s.store.FindByID(s.ctx, acct.ID)
	s.Require().NoError(err)
	s.Equal(found.Email, byID.Email)

	// The unique constraint catches duplicates the normalization missed.
	dup := s.newAccount("rahim@example.com")
	s.Require().ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyExists)
}

func (s *PostgresAccountSuite) TestAdminMutations() {
	acct := s.newAccount("rahim@example.com")
	s.Require().NoError(s.store.Create(s.ctx, acct))

	s.Require().NoError(s.store.SetStatus(s.ctx, acct.ID, models.StatusBlocked, time.Now().UTC()))
	s.Require().NoError(s.store.SetRole(s.ctx, acct.ID, models.RoleVolunteer, time.Now().UTC()))

	found, err := s.store.FindByID(s.ctx, acct.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBlocked, found.Status)
	s.Equal(models.RoleVolunteer, found.Role)

	s.Require().ErrorIs(
		s.store.SetStatus(s.ctx, id.NewAccountID(), models.StatusBlocked, time.Now().UTC()),
		sentinel.ErrNotFound,
	)
}

func (s *PostgresAccountSuite) TestDonorSearchAndCount() {
	match := s.newAccount("match@example.com")
	s.Require().NoError(s.store.Create(s.ctx, match))

	blocked := s.newAccount("blocked@example.com")
	blocked.Status = models.StatusBlocked
	s.Require().NoError(s.store.Create(s.ctx, blocked))

	otherDistrict := s.newAccount("other@example.com")
	otherDistrict.District = "Khulna"
	s.Require().NoError(s.store.Create(s.ctx, otherDistrict))

	donors, err := s.store.SearchDonors(s.ctx, models.DonorFilter{BloodGroup: "A+", District: "Dhaka"})
	s.Require().NoError(err)
	s.Require().Len(donors, 1)
	s.Equal("match@example.com", donors[0].Email)

	count, err := s.store.CountActiveDonors(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, count, "blocked accounts are not active donors")
}

func (s *PostgresAccountSuite) TestProfileUpdate() {
	acct := s.newAccount("rahim@example.com")
	s.Require().NoError(s.store.Create(s.ctx, acct))

	patch := models.ProfilePatch{
		Name: "Rahim Updated", Avatar: "https://example.com/a.png",
		BloodGroup: "B+", District: "Khulna", Upazila: "Sadar",
	}
	s.Require().NoError(s.store.UpdateProfile(s.ctx, "RAHIM@example.com", patch, time.Now().UTC()))

	found, err := s.store.FindByEmail(s.ctx, "rahim@example.com")
	s.Require().NoError(err)
	s.Equal("Rahim Updated", found.Name)
	s.Equal("B+", found.BloodGroup)
}
