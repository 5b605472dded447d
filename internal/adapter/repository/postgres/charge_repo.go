package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// ChargeRepository implements usecase.ChargeRepository.
type ChargeRepository struct {
	pool *pgxpool.Pool
}

// NewChargeRepository creates a new ChargeRepository.
func NewChargeRepository(pool *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

const chargeColumns = `id, client_id, date, label, debit, credit, carry_forward, cash_withdrawal_processed, created_at, updated_at`

// Create creates a new charge.
func (r *ChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO charges (`+chargeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		charge.ID,
		charge.ClientID,
		timeToPgTimestamptz(charge.Date),
		charge.Label,
		decimalToNumeric(charge.Debit),
		decimalToNumeric(charge.Credit),
		charge.CarryForward,
		charge.CashWithdrawalProcessed,
		timeToPgTimestamptz(charge.CreatedAt),
		timeToPgTimestamptz(charge.UpdatedAt),
	)

	return err
}

// GetByID retrieves a charge by ID.
func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE id = $1`, id)

	charge, err := scanCharge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}

		return nil, err
	}

	return charge, nil
}

// Update updates a charge.
func (r *ChargeRepository) Update(ctx context.Context, charge *domain.Charge) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE charges
		 SET date = $2, label = $3, debit = $4, credit = $5, updated_at = $6
		 WHERE id = $1`,
		charge.ID,
		timeToPgTimestamptz(charge.Date),
		charge.Label,
		decimalToNumeric(charge.Debit),
		decimalToNumeric(charge.Credit),
		timeToPgTimestamptz(charge.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}

	return nil
}

// Delete deletes a charge.
func (r *ChargeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM charges WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}

	return nil
}

// ListByClientYear lists a client's charges for one year in creation order.
func (r *ChargeRepository) ListByClientYear(ctx context.Context, clientID string, year int) ([]*domain.Charge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+chargeColumns+` FROM charges
		 WHERE client_id = $1 AND EXTRACT(YEAR FROM date) = $2
		 ORDER BY created_at, id`,
		clientID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []*domain.Charge

	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}

		charges = append(charges, charge)
	}

	return charges, rows.Err()
}

// CarryForwardExists reports whether the client already has a carry-forward
// charge in the given year.
func (r *ChargeRepository) CarryForwardExists(ctx context.Context, clientID string, year int) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM charges
		   WHERE client_id = $1 AND carry_forward AND EXTRACT(YEAR FROM date) = $2
		 )`,
		clientID, year).Scan(&exists)

	return exists, err
}

// SetCashWithdrawalProcessed sets the one-shot withdrawal flag inside the
// caller's transaction. The guard on the current flag value makes the
// transition atomic: a concurrent withdrawal that lost the race sees zero
// affected rows.
func (r *ChargeRepository) SetCashWithdrawalProcessed(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE charges
		 SET cash_withdrawal_processed = TRUE, updated_at = $2
		 WHERE id = $1 AND NOT cash_withdrawal_processed`,
		id, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalAlreadyProcessed
	}

	return nil
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	var (
		charge    domain.Charge
		date      pgtype.Timestamptz
		debit     pgtype.Numeric
		credit    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&charge.ID,
		&charge.ClientID,
		&date,
		&charge.Label,
		&debit,
		&credit,
		&charge.CarryForward,
		&charge.CashWithdrawalProcessed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	charge.Date = date.Time
	charge.Debit = numericToDecimal(debit)
	charge.Credit = numericToDecimal(credit)
	charge.CreatedAt = createdAt.Time
	charge.UpdatedAt = updatedAt.Time

	return &charge, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
