package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
)

// ChargeUseCase handles charge business logic.
type ChargeUseCase struct {
	chargeRepo ChargeRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewChargeUseCase creates a new ChargeUseCase.
func NewChargeUseCase(chargeRepo ChargeRepository, idGen IDGenerator, m *metrics.Metrics) *ChargeUseCase {
	return &ChargeUseCase{
		chargeRepo: chargeRepo,
		idGen:      idGen,
		metrics:    m,
	}
}

// CreateChargeInput represents input for creating a charge.
type CreateChargeInput struct {
	ClientID  string
	Date      time.Time
	BaseLabel string
	FreeText  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// CreateCharge creates a new charge. The stored label is built from the
// selected base label and optional free text; amounts are validated against
// the label class before any storage call.
func (uc *ChargeUseCase) CreateCharge(ctx context.Context, input CreateChargeInput) (*domain.Charge, error) {
	now := time.Now().UTC()

	charge := &domain.Charge{
		ID:        uc.idGen.Generate(),
		ClientID:  input.ClientID,
		Date:      input.Date,
		Label:     domain.BuildStoredLabel(input.BaseLabel, input.FreeText),
		Debit:     input.Debit,
		Credit:    input.Credit,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := charge.ValidateAmounts(); err != nil {
		return nil, err
	}

	if err := uc.chargeRepo.Create(ctx, charge); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ChargesCreated.Inc()
	}

	return charge, nil
}

// UpdateChargeInput represents input for updating a charge.
type UpdateChargeInput struct {
	Date      time.Time
	BaseLabel string
	FreeText  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// UpdateCharge updates an existing charge, revalidating amounts against the
// rebuilt label's class.
func (uc *ChargeUseCase) UpdateCharge(ctx context.Context, id string, input UpdateChargeInput) (*domain.Charge, error) {
	charge, err := uc.chargeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	charge.Date = input.Date
	charge.Label = domain.BuildStoredLabel(input.BaseLabel, input.FreeText)
	charge.Debit = input.Debit
	charge.Credit = input.Credit
	charge.UpdatedAt = time.Now().UTC()

	if err := charge.ValidateAmounts(); err != nil {
		return nil, err
	}

	if err := uc.chargeRepo.Update(ctx, charge); err != nil {
		return nil, err
	}

	return charge, nil
}

// GetCharge retrieves a charge by ID.
func (uc *ChargeUseCase) GetCharge(ctx context.Context, id string) (*domain.Charge, error) {
	return uc.chargeRepo.GetByID(ctx, id)
}

// DeleteCharge deletes a charge.
func (uc *ChargeUseCase) DeleteCharge(ctx context.Context, id string) error {
	return uc.chargeRepo.Delete(ctx, id)
}

// ListCharges lists a client's charges for one year, in storage order.
func (uc *ChargeUseCase) ListCharges(ctx context.Context, clientID string, year int) ([]*domain.Charge, error) {
	return uc.chargeRepo.ListByClientYear(ctx, clientID, year)
}

// RunningBalancesResult bundles the per-row balances with the grand total.
type RunningBalancesResult struct {
	Charges []*domain.Charge
	Rows    []domain.RunningBalanceRow
	Total   decimal.Decimal
}

// RunningBalances loads a client's year and folds it into running balances.
func (uc *ChargeUseCase) RunningBalances(ctx context.Context, clientID string, year int) (*RunningBalancesResult, error) {
	charges, err := uc.chargeRepo.ListByClientYear(ctx, clientID, year)
	if err != nil {
		return nil, err
	}

	rows, total, err := domain.ComputeRunningBalances(charges, decimal.Zero)
	if err != nil {
		return nil, err
	}

	return &RunningBalancesResult{Charges: charges, Rows: rows, Total: total}, nil
}

// CreateCarryForward closes a client's year into a synthetic carry-forward
// charge opening the next year. The closing balance is stored signed:
// positive balances in the credit field, negative ones in the debit field. A
// second carry-forward for the same target year is refused.
func (uc *ChargeUseCase) CreateCarryForward(ctx context.Context, clientID string, year int) (*domain.Charge, error) {
	exists, err := uc.chargeRepo.CarryForwardExists(ctx, clientID, year+1)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, domain.ErrCarryForwardExists
	}

	charges, err := uc.chargeRepo.ListByClientYear(ctx, clientID, year)
	if err != nil {
		return nil, err
	}

	_, total, err := domain.ComputeRunningBalances(charges, decimal.Zero)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	carry := &domain.Charge{
		ID:           uc.idGen.Generate(),
		ClientID:     clientID,
		Date:         time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		Label:        fmt.Sprintf("Report solde %d", year),
		CarryForward: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if total.IsNegative() {
		carry.Debit = total.Neg()
		carry.Credit = decimal.Zero
	} else {
		carry.Credit = total
		carry.Debit = decimal.Zero
	}

	if err := uc.chargeRepo.Create(ctx, carry); err != nil {
		return nil, err
	}

	return carry, nil
}
