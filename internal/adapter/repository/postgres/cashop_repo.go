package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// CashOperationRepository implements usecase.CashOperationRepository.
type CashOperationRepository struct {
	pool *pgxpool.Pool
}

// NewCashOperationRepository creates a new CashOperationRepository.
func NewCashOperationRepository(pool *pgxpool.Pool) *CashOperationRepository {
	return &CashOperationRepository{pool: pool}
}

const cashOpColumns = `id, type, sign, amount, comment, client_id, charge_id, created_at, updated_at`

const insertCashOp = `INSERT INTO cash_operations (` + cashOpColumns + `)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Create creates a cash register operation.
func (r *CashOperationRepository) Create(ctx context.Context, op *domain.CashOperation) error {
	_, err := r.pool.Exec(ctx, insertCashOp, cashOpArgs(op)...)

	return err
}

// CreateTx creates a cash register operation inside the caller's transaction.
func (r *CashOperationRepository) CreateTx(ctx context.Context, tx usecase.Transaction, op *domain.CashOperation) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertCashOp, cashOpArgs(op)...)

	return err
}

// GetByID retrieves an operation by ID.
func (r *CashOperationRepository) GetByID(ctx context.Context, id string) (*domain.CashOperation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cashOpColumns+` FROM cash_operations WHERE id = $1`, id)

	op, err := scanCashOp(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return op, nil
}

// Update updates an operation.
func (r *CashOperationRepository) Update(ctx context.Context, op *domain.CashOperation) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cash_operations
		 SET type = $2, sign = $3, amount = $4, comment = $5, updated_at = $6
		 WHERE id = $1`,
		op.ID,
		string(op.Type),
		string(op.Sign),
		decimalToNumeric(op.Amount),
		op.Comment,
		timeToPgTimestamptz(op.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// Delete deletes an operation.
func (r *CashOperationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cash_operations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// ListAll returns every operation in creation order.
func (r *CashOperationRepository) ListAll(ctx context.Context) ([]*domain.CashOperation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cashOpColumns+` FROM cash_operations ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*domain.CashOperation

	for rows.Next() {
		op, err := scanCashOp(rows)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func cashOpArgs(op *domain.CashOperation) []any {
	return []any{
		op.ID,
		string(op.Type),
		string(op.Sign),
		decimalToNumeric(op.Amount),
		op.Comment,
		textOrNull(op.ClientID),
		textOrNull(op.ChargeID),
		timeToPgTimestamptz(op.CreatedAt),
		timeToPgTimestamptz(op.UpdatedAt),
	}
}

func scanCashOp(row pgx.Row) (*domain.CashOperation, error) {
	var (
		op        domain.CashOperation
		opType    string
		sign      string
		amount    pgtype.Numeric
		clientID  pgtype.Text
		chargeID  pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&op.ID,
		&opType,
		&sign,
		&amount,
		&op.Comment,
		&clientID,
		&chargeID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	op.Type = domain.OperationType(opType)
	op.Sign = domain.Sign(sign)
	op.Amount = numericToDecimal(amount)
	op.ClientID = clientID.String
	op.ChargeID = chargeID.String
	op.CreatedAt = createdAt.Time
	op.UpdatedAt = updatedAt.Time

	return &op, nil
}
