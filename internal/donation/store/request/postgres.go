package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeflow/internal/donation/models"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
)

// Postgres persists donation requests in the donation_requests table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const requestColumns = `id, requester_email, requester_name, recipient_name, recipient_district, recipient_upazila,
	hospital_name, full_address, blood_group, donation_date, donation_time, request_message,
	donation_status, donor_name, donor_email, created_at, updated_at`

func (s *Postgres) Insert(ctx context.Context, req *models.DonationRequest) error {
	query := `
		INSERT INTO donation_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	var donorName, donorEmail *string
	if req.DonorInfo != nil {
		donorName, donorEmail = &req.DonorInfo.Name, &req.DonorInfo.Email
	}
	_, err := s.pool.Exec(ctx, query,
		req.ID.String(), req.RequesterEmail, req.RequesterName,
		req.RecipientName, req.RecipientDistrict, req.RecipientUpazila,
		req.HospitalName, req.FullAddress, req.BloodGroup,
		req.DonationDate, req.DonationTime, req.RequestMessage,
		string(req.DonationStatus), donorName, donorEmail,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation request: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, requestID id.RequestID) (*models.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, requestID.String()))
}

func (s *Postgres) UpdateDetails(ctx context.Context, requestID id.RequestID, details models.Details, now time.Time) error {
	query := `
		UPDATE donation_requests
		SET recipient_name = $2, recipient_district = $3, recipient_upazila = $4,
			hospital_name = $5, full_address = $6, blood_group = $7,
			donation_date = $8, donation_time = $9, request_message = $10, updated_at = $11
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		requestID.String(), details.RecipientName, details.RecipientDistrict, details.RecipientUpazila,
		details.HospitalName, details.FullAddress, details.BloodGroup,
		details.DonationDate, details.DonationTime, details.RequestMessage, now,
	)
	if err != nil {
		return fmt.Errorf("update donation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, requestID id.RequestID, status models.DonationStatus, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE donation_requests SET donation_status = $2, updated_at = $3 WHERE id = $1`,
		requestID.String(), string(status), now,
	)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ClaimForDonation conditions the write on donation_status = 'pending' in the
// statement itself, so concurrent claims resolve inside Postgres: one matches
// a row, the rest match nothing.
func (s *Postgres) ClaimForDonation(ctx context.Context, requestID id.RequestID, donor models.DonorInfo, now time.Time) (bool, error) {
	query := `
		UPDATE donation_requests
		SET donation_status = 'inprogress', donor_name = $2, donor_email = $3, updated_at = $4
		WHERE id = $1 AND donation_status = 'pending'
	`
	tag, err := s.pool.Exec(ctx, query, requestID.String(), donor.Name, donor.Email, now)
	if err != nil {
		return false, fmt.Errorf("claim donation request: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Distinguish a lost race from a missing row.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM donation_requests WHERE id = $1)`, requestID.String(),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check donation request: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *Postgres) Delete(ctx context.Context, requestID id.RequestID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM donation_requests WHERE id = $1`, requestID.String())
	if err != nil {
		return fmt.Errorf("delete donation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter, page models.Page) ([]*models.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests`
	where, args := buildFilter(filter)
	query += where + ` ORDER BY created_at DESC`
	if page.Size > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Size, page.Offset())
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donation requests: %w", err)
	}
	defer rows.Close()

	var out []*models.DonationRequest
	for rows.Next() {
		req, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donation requests: %w", err)
	}
	return out, nil
}

func (s *Postgres) Count(ctx context.Context, filter models.Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM donation_requests`
	where, args := buildFilter(filter)
	query += where

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count donation requests: %w", err)
	}
	return count, nil
}

func buildFilter(filter models.Filter) (string, []any) {
	where := ""
	args := []any{}
	n := 1
	if filter.Status != "" {
		where += fmt.Sprintf(" WHERE donation_status = $%d", n)
		args = append(args, string(filter.Status))
		n++
	}
	if filter.RequesterEmail != "" {
		clause := " WHERE"
		if len(args) > 0 {
			clause = " AND"
		}
		where += fmt.Sprintf("%s lower(requester_email) = lower($%d)", clause, n)
		args = append(args, filter.RequesterEmail)
	}
	return where, args
}

func scanOne(row pgx.Row) (*models.DonationRequest, error) {
	var (
		req        models.DonationRequest
		requestID  string
		status     string
		donorName  *string
		donorEmail *string
	)
	err := row.Scan(
		&requestID, &req.RequesterEmail, &req.RequesterName,
		&req.RecipientName, &req.RecipientDistrict, &req.RecipientUpazila,
		&req.HospitalName, &req.FullAddress, &req.BloodGroup,
		&req.DonationDate, &req.DonationTime, &req.RequestMessage,
		&status, &donorName, &donorEmail, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan donation request: %w", err)
	}
	parsed, err := id.ParseRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("scan donation request id: %w", err)
	}
	req.ID = parsed
	req.DonationStatus = models.DonationStatus(status)
	if donorName != nil && donorEmail != nil {
		req.DonorInfo = &models.DonorInfo{Name: *donorName, Email: *donorEmail}
	}
	return &req, nil
}
