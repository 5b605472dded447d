package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase/mocks"
)

type cashFixture struct {
	txManager  *mocks.MockTransactionManager
	opRepo     *mocks.MockCashOperationRepository
	chargeRepo *mocks.MockChargeRepository
	register   *usecase.CashRegisterUseCase
}

func newCashFixture(t *testing.T, cache usecase.Cache) *cashFixture {
	t.Helper()

	f := &cashFixture{
		txManager:  mocks.NewMockTransactionManager(),
		opRepo:     mocks.NewMockCashOperationRepository(),
		chargeRepo: mocks.NewMockChargeRepository(),
	}
	f.register = usecase.NewCashRegisterUseCase(
		f.txManager, f.opRepo, f.chargeRepo,
		mocks.NewMockIDGenerator(), cache, nil, zerolog.Nop(),
	)

	return f
}

func TestCashRegisterUseCase_AddOperation(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.AddOperationInput
		expectError error
		wantSign    domain.Sign
	}{
		{
			name: "deposit forces plus",
			input: usecase.AddOperationInput{
				Type:   domain.OperationDeposit,
				Sign:   domain.SignMinus,
				Amount: decimal.RequireFromString("200.000"),
			},
			wantSign: domain.SignPlus,
		},
		{
			name: "withdrawal forces minus",
			input: usecase.AddOperationInput{
				Type:   domain.OperationWithdrawal,
				Sign:   domain.SignPlus,
				Amount: decimal.RequireFromString("80.000"),
			},
			wantSign: domain.SignMinus,
		},
		{
			name: "other keeps its explicit sign",
			input: usecase.AddOperationInput{
				Type:   domain.OperationOther,
				Sign:   domain.SignMinus,
				Amount: decimal.RequireFromString("15.500"),
			},
			wantSign: domain.SignMinus,
		},
		{
			name: "other without a valid sign is rejected",
			input: usecase.AddOperationInput{
				Type:   domain.OperationOther,
				Amount: decimal.RequireFromString("15.500"),
			},
			expectError: domain.ErrInvalidOperationSign,
		},
		{
			name: "zero amount is rejected",
			input: usecase.AddOperationInput{
				Type: domain.OperationDeposit,
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount is rejected",
			input: usecase.AddOperationInput{
				Type:   domain.OperationDeposit,
				Amount: decimal.RequireFromString("-5.000"),
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "unknown type is rejected",
			input: usecase.AddOperationInput{
				Type:   domain.OperationType("transfer"),
				Amount: decimal.RequireFromString("5.000"),
			},
			expectError: domain.ErrUnknownOperationType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCashFixture(t, nil)

			op, err := f.register.AddOperation(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if op.Sign != tt.wantSign {
				t.Errorf("expected sign %s, got %s", tt.wantSign, op.Sign)
			}
		})
	}
}

func TestCashRegisterUseCase_BalanceFollowsMutations(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)

	deposit, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationDeposit,
		Amount: decimal.RequireFromString("500.000"),
	})
	if err != nil {
		t.Fatalf("add deposit: %v", err)
	}

	withdrawal, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationWithdrawal,
		Amount: decimal.RequireFromString("120.000"),
	})
	if err != nil {
		t.Fatalf("add withdrawal: %v", err)
	}

	balance, err := f.register.GetBalance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("380")) {
		t.Errorf("expected balance 380, got %s", balance)
	}

	// Deleting an operation moves the balance by its signed amount.
	if err := f.register.DeleteOperation(ctx, withdrawal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	balance, err = f.register.GetBalance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("expected balance 500 after delete, got %s", balance)
	}

	// Editing an amount moves the balance by the delta.
	if _, err := f.register.UpdateOperation(ctx, deposit.ID, usecase.UpdateOperationInput{
		Type:   domain.OperationDeposit,
		Amount: decimal.RequireFromString("450.000"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	balance, err = f.register.GetBalance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("450")) {
		t.Errorf("expected balance 450 after edit, got %s", balance)
	}
}

func TestCashRegisterUseCase_GetSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)

	if _, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationDeposit,
		Amount: decimal.RequireFromString("100.000"),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationOther,
		Sign:   domain.SignMinus,
		Amount: decimal.RequireFromString("30.000"),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	snapshot, err := f.register.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(snapshot.Operations))
	}

	// The balance is a fold over exactly the returned rows.
	if !snapshot.Balance.Equal(domain.ComputeCashBalance(snapshot.Operations)) {
		t.Error("snapshot balance disagrees with its own operation set")
	}
	if !snapshot.Balance.Equal(decimal.RequireFromString("70")) {
		t.Errorf("expected balance 70, got %s", snapshot.Balance)
	}
}

func TestCashRegisterUseCase_SnapshotCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	f := newCashFixture(t, cache)

	// Miss, fill, then a mutation drops the key.
	gomock.InOrder(
		cache.EXPECT().Delete(gomock.Any(), "caisse:snapshot").Return(nil),
		cache.EXPECT().Get(gomock.Any(), "caisse:snapshot").Return("", errors.New("redis: nil")),
		cache.EXPECT().Set(gomock.Any(), "caisse:snapshot", gomock.Any(), gomock.Any()).Return(nil),
		cache.EXPECT().Delete(gomock.Any(), "caisse:snapshot").Return(nil),
	)

	if _, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationDeposit,
		Amount: decimal.RequireFromString("100.000"),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := f.register.GetSnapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if _, err := f.register.AddOperation(ctx, usecase.AddOperationInput{
		Type:   domain.OperationDeposit,
		Amount: decimal.RequireFromString("50.000"),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestCashRegisterUseCase_SnapshotCacheHit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	f := newCashFixture(t, cache)

	cached := `{"operations":[],"balance":"42.5"}`
	cache.EXPECT().Get(gomock.Any(), "caisse:snapshot").Return(cached, nil)

	f.opRepo.ListAllFunc = func(ctx context.Context) ([]*domain.CashOperation, error) {
		t.Fatal("cache hit must not touch the store")
		return nil, nil
	}

	balance, err := f.register.GetBalance(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("expected cached balance 42.5, got %s", balance)
	}
}

func seedWithdrawableCharge(t *testing.T, repo *mocks.MockChargeRepository) *domain.Charge {
	t.Helper()

	charge := &domain.Charge{
		ID:       "charge-1",
		ClientID: "client-1",
		Date:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Label:    "CNSS",
		Debit:    decimal.RequireFromString("120.000"),
	}
	if err := repo.Create(context.Background(), charge); err != nil {
		t.Fatalf("seed charge: %v", err)
	}
	return charge
}

func TestCashRegisterUseCase_WithdrawFromCharge(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)
	charge := seedWithdrawableCharge(t, f.chargeRepo)

	result, err := f.register.WithdrawFromCharge(ctx, charge.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("first withdrawal must not report already processed")
	}

	op := result.Operation
	if op.Type != domain.OperationWithdrawal || op.Sign != domain.SignMinus {
		t.Errorf("expected minus withdrawal, got %s/%s", op.Type, op.Sign)
	}
	if !op.Amount.Equal(charge.Debit) {
		t.Errorf("expected amount %s, got %s", charge.Debit, op.Amount)
	}
	if op.ChargeID != charge.ID {
		t.Errorf("expected charge link %q, got %q", charge.ID, op.ChargeID)
	}
	if op.Comment != "Retrait charge: CNSS" {
		t.Errorf("unexpected comment %q", op.Comment)
	}

	if f.txManager.LastTx == nil || !f.txManager.LastTx.Committed {
		t.Error("expected the transaction to commit")
	}

	stored, err := f.chargeRepo.GetByID(ctx, charge.ID)
	if err != nil {
		t.Fatalf("get charge: %v", err)
	}
	if !stored.CashWithdrawalProcessed {
		t.Error("expected the processed flag to be set")
	}

	balance, err := f.register.GetBalance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("-120")) {
		t.Errorf("expected balance -120, got %s", balance)
	}
}

func TestCashRegisterUseCase_WithdrawFromCharge_OneShot(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)
	charge := seedWithdrawableCharge(t, f.chargeRepo)

	if _, err := f.register.WithdrawFromCharge(ctx, charge.ID); err != nil {
		t.Fatalf("first withdrawal: %v", err)
	}

	second, err := f.register.WithdrawFromCharge(ctx, charge.ID)
	if err != nil {
		t.Fatalf("second withdrawal must not error: %v", err)
	}
	if !second.AlreadyProcessed {
		t.Error("expected already-processed status")
	}
	if second.Operation != nil {
		t.Error("expected no new operation")
	}

	ops, err := f.opRepo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ops) != 1 {
		t.Errorf("expected exactly 1 operation, got %d", len(ops))
	}
}

func TestCashRegisterUseCase_WithdrawFromCharge_Ineligible(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)

	charges := []*domain.Charge{
		{
			ID:       "credit-charge",
			ClientID: "client-1",
			Date:     time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
			Label:    "Honoraires reçus",
			Credit:   decimal.RequireFromString("500.000"),
		},
		{
			ID:           "carry-charge",
			ClientID:     "client-1",
			Date:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			Label:        "Report solde 2024",
			Debit:        decimal.RequireFromString("50.000"),
			CarryForward: true,
		},
		{
			ID:       "zero-charge",
			ClientID: "client-1",
			Date:     time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
			Label:    "CNSS",
		},
	}
	for _, c := range charges {
		if err := f.chargeRepo.Create(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	for _, c := range charges {
		if _, err := f.register.WithdrawFromCharge(ctx, c.ID); !errors.Is(err, domain.ErrChargeNotWithdrawable) {
			t.Errorf("charge %s: expected ErrChargeNotWithdrawable, got %v", c.ID, err)
		}
	}

	if _, err := f.register.WithdrawFromCharge(ctx, "missing"); !errors.Is(err, domain.ErrChargeNotFound) {
		t.Errorf("expected ErrChargeNotFound, got %v", err)
	}
}

func TestCashRegisterUseCase_WithdrawFromCharge_Atomicity(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)
	charge := seedWithdrawableCharge(t, f.chargeRepo)

	f.chargeRepo.SetCashWithdrawalProcessedFunc = func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
		return errors.New("deadlock detected")
	}

	if _, err := f.register.WithdrawFromCharge(ctx, charge.ID); err == nil {
		t.Fatal("expected error when the flag update fails")
	}

	if f.txManager.LastTx == nil {
		t.Fatal("expected a transaction")
	}
	if f.txManager.LastTx.Committed {
		t.Error("failed withdrawal must not commit")
	}
	if !f.txManager.LastTx.RolledBack {
		t.Error("failed withdrawal must roll back")
	}

	// With the flag untouched, the withdrawal stays available.
	f.chargeRepo.SetCashWithdrawalProcessedFunc = nil
	result, err := f.register.WithdrawFromCharge(ctx, charge.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if result.AlreadyProcessed {
		t.Error("retry after rollback must perform the withdrawal")
	}
}

func TestCashRegisterUseCase_WithdrawFromCharge_LostRace(t *testing.T) {
	ctx := context.Background()
	f := newCashFixture(t, nil)
	charge := seedWithdrawableCharge(t, f.chargeRepo)

	// A concurrent withdrawal flips the flag between our read and our
	// transaction. The guarded update reports it and the attempt becomes a
	// no-op.
	f.chargeRepo.SetCashWithdrawalProcessedFunc = func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
		return domain.ErrWithdrawalAlreadyProcessed
	}

	result, err := f.register.WithdrawFromCharge(ctx, charge.ID)
	if err != nil {
		t.Fatalf("lost race must not surface an error: %v", err)
	}
	if !result.AlreadyProcessed || result.Operation != nil {
		t.Fatalf("expected already-processed outcome, got %+v", result)
	}

	if f.txManager.LastTx.Committed {
		t.Error("lost race must not commit")
	}
	if !f.txManager.LastTx.RolledBack {
		t.Error("lost race must roll back the inserted operation")
	}
}
