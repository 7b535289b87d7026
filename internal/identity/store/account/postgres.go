package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeflow/internal/identity/models"
	id "lifeflow/pkg/domain"
	"lifeflow/pkg/platform/sentinel"
)

// Postgres persists accounts in the accounts table. Emails are stored
// normalized, so equality lookups are already case-insensitive.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const accountColumns = `id, email, name, avatar, blood_group, district, upazila, password_hash, role, status, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.pool.Exec(ctx, query,
		account.ID.String(), id.NormalizeEmail(account.Email), account.Name, account.Avatar,
		account.BloodGroup, account.District, account.Upazila, account.PasswordHash,
		string(account.Role), string(account.Status), account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return s.scanOne(s.pool.QueryRow(ctx, query, id.NormalizeEmail(email)))
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.scanOne(s.pool.QueryRow(ctx, query, accountID.String()))
}

func (s *Postgres) List(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *Postgres) SearchDonors(ctx context.Context, filter models.DonorFilter) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = 'active'`
	args := []any{}
	n := 1
	if filter.BloodGroup != "" {
		query += fmt.Sprintf(" AND blood_group = $%d", n)
		args = append(args, filter.BloodGroup)
		n++
	}
	if filter.District != "" {
		query += fmt.Sprintf(" AND district = $%d", n)
		args = append(args, filter.District)
		n++
	}
	if filter.Upazila != "" {
		query += fmt.Sprintf(" AND upazila = $%d", n)
		args = append(args, filter.Upazila)
		n++
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *Postgres) UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch, now time.Time) error {
	query := `
		UPDATE accounts
		SET name = $2, avatar = $3, blood_group = $4, district = $5, upazila = $6, updated_at = $7
		WHERE email = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		id.NormalizeEmail(email), patch.Name, patch.Avatar, patch.BloodGroup, patch.District, patch.Upazila, now,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SetStatus(ctx context.Context, accountID id.AccountID, status models.AccountStatus, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET status = $2, updated_at = $3 WHERE id = $1`,
		accountID.String(), string(status), now,
	)
	if err != nil {
		return fmt.Errorf("set account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SetRole(ctx context.Context, accountID id.AccountID, role models.Role, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1`,
		accountID.String(), string(role), now,
	)
	if err != nil {
		return fmt.Errorf("set account role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) CountActiveDonors(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE role = 'donor' AND status = 'active'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count donors: %w", err)
	}
	return count, nil
}

func (s *Postgres) scanOne(row pgx.Row) (*models.Account, error) {
	var (
		account   models.Account
		accountID string
		role      string
		status    string
	)
	err := row.Scan(
		&accountID, &account.Email, &account.Name, &account.Avatar,
		&account.BloodGroup, &account.District, &account.Upazila, &account.PasswordHash,
		&role, &status, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	account.ID = parsed
	account.Role = models.Role(role)
	account.Status = models.AccountStatus(status)
	return &account, nil
}

func (s *Postgres) scanAll(rows pgx.Rows) ([]*models.Account, error) {
	var out []*models.Account
	for rows.Next() {
		account, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}
