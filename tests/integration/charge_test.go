package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/repository/postgres"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/tests/testutil"
)

func TestChargeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	client := testDB.CreateTestClient(ctx, "Société Meriem")

	chargeRepo := postgres.NewChargeRepository(testDB.Pool)
	idGen := postgres.NewULIDGenerator()
	chargeUC := usecase.NewChargeUseCase(chargeRepo, idGen, nil)

	t.Run("create and list", func(t *testing.T) {
		charge, err := chargeUC.CreateCharge(ctx, usecase.CreateChargeInput{
			ClientID:  client.ID,
			Date:      time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			BaseLabel: "CNSS",
			Debit:     decimal.RequireFromString("120.500"),
		})
		if err != nil {
			t.Fatalf("failed to create charge: %v", err)
		}
		if charge.Label != "CNSS" {
			t.Fatalf("expected label CNSS, got %s", charge.Label)
		}

		charges, err := chargeUC.ListCharges(ctx, client.ID, 2025)
		if err != nil {
			t.Fatalf("failed to list charges: %v", err)
		}
		if len(charges) != 1 || !charges[0].Debit.Equal(decimal.RequireFromString("120.500")) {
			t.Fatalf("unexpected listing: %+v", charges)
		}
	})

	t.Run("update relabels and revalidates", func(t *testing.T) {
		charge, err := chargeUC.CreateCharge(ctx, usecase.CreateChargeInput{
			ClientID:  client.ID,
			Date:      time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			BaseLabel: "TVA",
			Debit:     decimal.RequireFromString("40"),
		})
		if err != nil {
			t.Fatalf("failed to create charge: %v", err)
		}

		updated, err := chargeUC.UpdateCharge(ctx, charge.ID, usecase.UpdateChargeInput{
			Date:      charge.Date,
			BaseLabel: "Honoraires reçus",
			Credit:    decimal.RequireFromString("200"),
		})
		if err != nil {
			t.Fatalf("failed to update charge: %v", err)
		}
		if updated.Label != "Honoraires reçus" || !updated.Credit.Equal(decimal.RequireFromString("200")) {
			t.Fatalf("unexpected updated charge: %+v", updated)
		}
	})

	t.Run("delete removes the row", func(t *testing.T) {
		charge, err := chargeUC.CreateCharge(ctx, usecase.CreateChargeInput{
			ClientID:  client.ID,
			Date:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			BaseLabel: "Timbre fiscal",
			Debit:     decimal.RequireFromString("0.600"),
		})
		if err != nil {
			t.Fatalf("failed to create charge: %v", err)
		}

		if err := chargeUC.DeleteCharge(ctx, charge.ID); err != nil {
			t.Fatalf("failed to delete charge: %v", err)
		}

		if err := chargeUC.DeleteCharge(ctx, charge.ID); err != domain.ErrChargeNotFound {
			t.Fatalf("expected ErrChargeNotFound on second delete, got %v", err)
		}
	})
}

func TestRunningBalancesAndCarryForward(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	client := testDB.CreateTestClient(ctx, "Cabinet Trabelsi")

	chargeRepo := postgres.NewChargeRepository(testDB.Pool)
	idGen := postgres.NewULIDGenerator()
	chargeUC := usecase.NewChargeUseCase(chargeRepo, idGen, nil)

	mustCreate := func(date time.Time, label string, debit, credit string) {
		t.Helper()
		_, err := chargeUC.CreateCharge(ctx, usecase.CreateChargeInput{
			ClientID:  client.ID,
			Date:      date,
			BaseLabel: label,
			Debit:     decimal.RequireFromString(debit),
			Credit:    decimal.RequireFromString(credit),
		})
		if err != nil {
			t.Fatalf("failed to create charge: %v", err)
		}
	}

	mustCreate(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "Honoraires reçus", "0", "500")
	mustCreate(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "CNSS", "120", "0")
	mustCreate(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), "Impôts", "80", "0")

	result, err := chargeUC.RunningBalances(ctx, client.ID, 2025)
	if err != nil {
		t.Fatalf("failed to compute balances: %v", err)
	}
	if !result.Total.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected final balance 300, got %s", result.Total)
	}
	if len(result.Rows) != 3 || !result.Rows[1].Balance.Equal(decimal.RequireFromString("380")) {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}

	carry, err := chargeUC.CreateCarryForward(ctx, client.ID, 2025)
	if err != nil {
		t.Fatalf("failed to create carry-forward: %v", err)
	}
	if carry.Label != "Report solde 2025" || !carry.CarryForward {
		t.Fatalf("unexpected carry-forward: %+v", carry)
	}
	if !carry.Credit.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected carried credit 300, got %s", carry.Credit)
	}
	if carry.Date.Year() != 2026 {
		t.Fatalf("expected carry-forward to open the next year, got %s", carry.Date)
	}

	if _, err := chargeUC.CreateCarryForward(ctx, client.ID, 2025); err != domain.ErrCarryForwardExists {
		t.Fatalf("expected ErrCarryForwardExists, got %v", err)
	}
}
