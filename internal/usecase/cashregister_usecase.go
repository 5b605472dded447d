package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
)

// CashRegisterUseCase handles the office cash register ledger.
type CashRegisterUseCase struct {
	txManager  TransactionManager
	opRepo     CashOperationRepository
	chargeRepo ChargeRepository
	idGen      IDGenerator
	cache      Cache
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewCashRegisterUseCase creates a new CashRegisterUseCase. The cache is
// optional; pass nil to disable snapshot caching.
func NewCashRegisterUseCase(
	txManager TransactionManager,
	opRepo CashOperationRepository,
	chargeRepo ChargeRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CashRegisterUseCase {
	return &CashRegisterUseCase{
		txManager:  txManager,
		opRepo:     opRepo,
		chargeRepo: chargeRepo,
		idGen:      idGen,
		cache:      cache,
		metrics:    m,
		logger:     logger,
	}
}

// WithRetrier configures retry behavior for the withdrawal transaction.
func (uc *CashRegisterUseCase) WithRetrier(retrier Retrier) *CashRegisterUseCase {
	uc.retrier = retrier
	return uc
}

// AddOperationInput represents input for a manual cash register operation.
type AddOperationInput struct {
	Type     domain.OperationType
	Sign     domain.Sign
	Amount   decimal.Decimal
	Comment  string
	ClientID string
}

// AddOperation records a cash register movement. The amount must be strictly
// positive; the sign is forced by the type except for "other" operations.
func (uc *CashRegisterUseCase) AddOperation(ctx context.Context, input AddOperationInput) (*domain.CashOperation, error) {
	now := time.Now().UTC()

	op := &domain.CashOperation{
		ID:        uc.idGen.Generate(),
		Type:      input.Type,
		Sign:      input.Sign,
		Amount:    input.Amount,
		Comment:   input.Comment,
		ClientID:  input.ClientID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := op.Normalize(); err != nil {
		return nil, err
	}

	if err := uc.opRepo.Create(ctx, op); err != nil {
		return nil, err
	}

	uc.invalidateSnapshot(ctx)

	if uc.metrics != nil {
		uc.metrics.CashOperations.WithLabelValues(string(op.Type)).Inc()
	}

	return op, nil
}

// UpdateOperationInput represents input for editing a cash register
// operation.
type UpdateOperationInput struct {
	Type    domain.OperationType
	Sign    domain.Sign
	Amount  decimal.Decimal
	Comment string
}

// UpdateOperation edits an operation. Edits are unrestricted; the derived
// balance changes on the next read.
func (uc *CashRegisterUseCase) UpdateOperation(ctx context.Context, id string, input UpdateOperationInput) (*domain.CashOperation, error) {
	op, err := uc.opRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	op.Type = input.Type
	op.Sign = input.Sign
	op.Amount = input.Amount
	op.Comment = input.Comment
	op.UpdatedAt = time.Now().UTC()

	if err := op.Normalize(); err != nil {
		return nil, err
	}

	if err := uc.opRepo.Update(ctx, op); err != nil {
		return nil, err
	}

	uc.invalidateSnapshot(ctx)

	return op, nil
}

// DeleteOperation permanently removes an operation.
func (uc *CashRegisterUseCase) DeleteOperation(ctx context.Context, id string) error {
	if err := uc.opRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidateSnapshot(ctx)

	return nil
}

// Snapshot is the full cash register state: every operation in creation
// order plus the balance folded from exactly that operation set.
type Snapshot struct {
	Operations []*domain.CashOperation
	Balance    decimal.Decimal
}

// GetSnapshot returns the operations and the derived balance. The balance is
// always a fold over the returned operation set, so rows and total can never
// disagree. A short-lived cache serves back-to-back polls; every mutation
// drops it.
func (uc *CashRegisterUseCase) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	if cached := uc.cachedSnapshot(ctx); cached != nil {
		return cached, nil
	}

	ops, err := uc.opRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Operations: ops,
		Balance:    domain.ComputeCashBalance(ops),
	}

	uc.storeSnapshot(ctx, snapshot)

	return snapshot, nil
}

// GetBalance recomputes the current balance from the full operation set.
func (uc *CashRegisterUseCase) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := uc.GetSnapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return snapshot.Balance, nil
}

// WithdrawalResult reports the outcome of a charge withdrawal.
// AlreadyProcessed means the one-shot was consumed earlier; that is a normal
// status, not an error.
type WithdrawalResult struct {
	Operation        *domain.CashOperation
	AlreadyProcessed bool
}

// WithdrawFromCharge performs the one-shot cash withdrawal of an
// expense-style charge: debit strictly positive, credit exactly zero, not a
// carry-forward. The operation insert and the charge's processed flag are one
// database transaction, so a failure can never leave one without the other.
// The persisted flag is authoritative: once set, the operation is permanently
// disabled for that charge.
func (uc *CashRegisterUseCase) WithdrawFromCharge(ctx context.Context, chargeID string) (*WithdrawalResult, error) {
	charge, err := uc.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	if charge.CashWithdrawalProcessed {
		return &WithdrawalResult{AlreadyProcessed: true}, nil
	}

	if !charge.WithdrawalEligible() {
		return nil, domain.ErrChargeNotWithdrawable
	}

	now := time.Now().UTC()

	op := &domain.CashOperation{
		ID:        uc.idGen.Generate(),
		Type:      domain.OperationWithdrawal,
		Sign:      domain.SignMinus,
		Amount:    charge.Debit,
		Comment:   "Retrait charge: " + charge.Label,
		ClientID:  charge.ClientID,
		ChargeID:  charge.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := op.Normalize(); err != nil {
		return nil, err
	}

	execute := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := uc.opRepo.CreateTx(txCtx, tx, op); err != nil {
			return err
		}

		if err := uc.chargeRepo.SetCashWithdrawalProcessed(txCtx, tx, charge.ID, now); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, execute)
	} else {
		err = execute()
	}

	if err != nil {
		// A concurrent withdrawal set the flag first; its transaction holds
		// the single operation and ours rolled back.
		if errors.Is(err, domain.ErrWithdrawalAlreadyProcessed) {
			return &WithdrawalResult{AlreadyProcessed: true}, nil
		}

		return nil, err
	}

	uc.invalidateSnapshot(ctx)

	if uc.metrics != nil {
		uc.metrics.CashOperations.WithLabelValues(string(domain.OperationWithdrawal)).Inc()
		uc.metrics.WithdrawalsProcessed.Inc()
	}

	return &WithdrawalResult{Operation: op}, nil
}

// snapshotPayload is the cache wire form of a Snapshot.
type snapshotPayload struct {
	Operations []*domain.CashOperation `json:"operations"`
	Balance    decimal.Decimal         `json:"balance"`
}

func (uc *CashRegisterUseCase) cachedSnapshot(ctx context.Context) *Snapshot {
	if uc.cache == nil {
		return nil
	}

	raw, err := uc.cache.Get(ctx, cashSnapshotKey)
	if err != nil {
		return nil
	}

	var payload snapshotPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	return &Snapshot{Operations: payload.Operations, Balance: payload.Balance}
}

func (uc *CashRegisterUseCase) storeSnapshot(ctx context.Context, snapshot *Snapshot) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(snapshotPayload{
		Operations: snapshot.Operations,
		Balance:    snapshot.Balance,
	})
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, cashSnapshotKey, string(raw), cashSnapshotTTL); err != nil {
		uc.logger.Debug().Err(err).Msg("cash snapshot cache write failed")
	}
}

func (uc *CashRegisterUseCase) invalidateSnapshot(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Delete(ctx, cashSnapshotKey); err != nil {
		uc.logger.Debug().Err(err).Msg("cash snapshot cache invalidation failed")
	}
}
