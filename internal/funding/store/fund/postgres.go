package fund

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifeflow/internal/funding/models"
	id "lifeflow/pkg/domain"
)

// Postgres persists contributions in the funding table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Insert(ctx context.Context, f *models.Fund) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO funding (id, user_name, user_email, amount, transaction_id, funding_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID.String(), f.UserName, f.UserEmail, f.Amount, f.TransactionID, f.FundingDate,
	)
	if err != nil {
		return fmt.Errorf("insert funding: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, page models.Page) ([]*models.Fund, error) {
	query := `SELECT id, user_name, user_email, amount, transaction_id, funding_date
		FROM funding ORDER BY funding_date DESC`
	if page.Size > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Size, page.Offset())
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list funding: %w", err)
	}
	defer rows.Close()

	var out []*models.Fund
	for rows.Next() {
		var (
			f      models.Fund
			fundID string
		)
		if err := rows.Scan(&fundID, &f.UserName, &f.UserEmail, &f.Amount, &f.TransactionID, &f.FundingDate); err != nil {
			return nil, fmt.Errorf("scan funding: %w", err)
		}
		parsed, err := id.ParseFundingID(fundID)
		if err != nil {
			return nil, fmt.Errorf("scan funding id: %w", err)
		}
		f.ID = parsed
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding: %w", err)
	}
	return out, nil
}

func (s *Postgres) Total(ctx context.Context) (int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM funding`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total funding: %w", err)
	}
	return total, nil
}
