package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// PostingRepository implements usecase.PostingRepository.
type PostingRepository struct {
	pool *pgxpool.Pool
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{pool: pool}
}

const postingColumns = `id, origin, date, beneficiary, amount, description, client_id, charge_id, created_at`

// Create persists a posting. The partial unique index on (charge_id, origin)
// is the cross-session duplicate guard; its violation surfaces as
// domain.ErrDuplicatePosting.
func (r *PostingRepository) Create(ctx context.Context, posting *domain.ExpensePosting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO expense_postings (`+postingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		posting.ID,
		string(posting.Origin),
		timeToPgTimestamptz(posting.Date),
		posting.Beneficiary,
		decimalToNumeric(posting.Amount),
		posting.Description,
		posting.ClientID,
		textOrNull(posting.ChargeID),
		timeToPgTimestamptz(posting.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicatePosting
		}

		return err
	}

	return nil
}

// GetByChargeAndOrigin retrieves the posting linked to a (charge, origin)
// pair.
func (r *PostingRepository) GetByChargeAndOrigin(ctx context.Context, chargeID string, origin domain.Origin) (*domain.ExpensePosting, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM expense_postings
		 WHERE charge_id = $1 AND origin = $2`,
		chargeID, string(origin))

	posting, err := scanPosting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostingNotFound
		}

		return nil, err
	}

	return posting, nil
}

// List lists postings matching the filter, oldest first.
func (r *PostingRepository) List(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error) {
	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Origin != "" {
		conditions = append(conditions, "origin = "+arg(string(filter.Origin)))
	}

	if filter.Year != 0 {
		conditions = append(conditions, "EXTRACT(YEAR FROM date) = "+arg(filter.Year))
	}

	if filter.Month != 0 {
		conditions = append(conditions, "EXTRACT(MONTH FROM date) = "+arg(int(filter.Month)))
	}

	query := `SELECT ` + postingColumns + ` FROM expense_postings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY date, created_at, id"

	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []*domain.ExpensePosting

	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}

		postings = append(postings, posting)
	}

	return postings, rows.Err()
}

// Delete deletes a posting.
func (r *PostingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expense_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPostingNotFound
	}

	return nil
}

func scanPosting(row pgx.Row) (*domain.ExpensePosting, error) {
	var (
		posting   domain.ExpensePosting
		origin    string
		date      pgtype.Timestamptz
		amount    pgtype.Numeric
		chargeID  pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&posting.ID,
		&origin,
		&date,
		&posting.Beneficiary,
		&amount,
		&posting.Description,
		&posting.ClientID,
		&chargeID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	posting.Origin = domain.Origin(origin)
	posting.Date = date.Time
	posting.Amount = numericToDecimal(amount)
	posting.ChargeID = chargeID.String
	posting.CreatedAt = createdAt.Time

	return &posting, nil
}

// textOrNull maps the empty string to SQL NULL, keeping the partial unique
// index on charge links out of unlinked rows.
func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
