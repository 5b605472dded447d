package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// pgxPool is the slice of pgxpool.Pool the manager needs; tests
// substitute a pgxmock pool through it.
type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager hands out database transactions to the use cases. The cash
// withdrawal flow relies on it to flag the charge and record the cash
// operation atomically. Implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a TxManager on pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx adapts a pgx transaction to usecase.Transaction. Repositories in
// this package unwrap it with PgxTx to run statements inside it.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. Safe to defer after Commit; pgx
// reports ErrTxClosed which callers ignore.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx exposes the wrapped pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
