package usecase

import (
	"context"
	"time"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
)

// ChargeRepository defines data access for charges.
type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id string) (*domain.Charge, error)
	Update(ctx context.Context, charge *domain.Charge) error
	Delete(ctx context.Context, id string) error
	// ListByClientYear returns the client's charges for one year in storage
	// order (the same-month tie-break of the balance fold).
	ListByClientYear(ctx context.Context, clientID string, year int) ([]*domain.Charge, error)
	CarryForwardExists(ctx context.Context, clientID string, year int) (bool, error)
	SetCashWithdrawalProcessed(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
}

// PostingFilter narrows posting listings.
type PostingFilter struct {
	Origin domain.Origin // empty for both ledgers
	Year   int           // 0 for all years
	Month  time.Month    // 0 for all months
	Limit  int
	Offset int
}

// PostingRepository defines data access for expense postings.
type PostingRepository interface {
	// Create persists a posting. A uniqueness violation on the
	// (charge, origin) pair is returned as domain.ErrDuplicatePosting.
	Create(ctx context.Context, posting *domain.ExpensePosting) error
	GetByChargeAndOrigin(ctx context.Context, chargeID string, origin domain.Origin) (*domain.ExpensePosting, error)
	List(ctx context.Context, filter PostingFilter) ([]*domain.ExpensePosting, error)
	Delete(ctx context.Context, id string) error
}

// CashOperationRepository defines data access for cash register operations.
type CashOperationRepository interface {
	Create(ctx context.Context, op *domain.CashOperation) error
	CreateTx(ctx context.Context, tx Transaction, op *domain.CashOperation) error
	GetByID(ctx context.Context, id string) (*domain.CashOperation, error)
	Update(ctx context.Context, op *domain.CashOperation) error
	Delete(ctx context.Context, id string) error
	// ListAll returns every operation in creation order, the order the
	// balance fold is defined over.
	ListAll(ctx context.Context) ([]*domain.CashOperation, error)
}

// ClientRepository reads client records. Client CRUD lives elsewhere; only
// the name is needed here, for posting beneficiaries and compatibility
// matching.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
