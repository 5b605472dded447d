package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RunningBalanceRow is the derived balance after one charge. Never persisted.
type RunningBalanceRow struct {
	ChargeID     string
	Balance      decimal.Decimal
	CarryForward bool
}

// ComputeRunningBalances folds charges into one cumulative balance per row
// plus the grand total.
//
// The opening balance comes from the carry-forward charge when one is
// present, otherwise from the opening argument. Regular charges are ordered
// chronologically at month granularity; charges within the same month keep
// their storage order (the source data's authoritative period is month/year,
// so day and time never reorder rows). Each row adds Credit-Debit to the
// running value. The total always equals the last row's balance, and negative
// balances are returned signed, never clamped.
//
// Inputs are assumed validated; a negative amount fails fast with
// ErrInvalidAmount.
func ComputeRunningBalances(charges []*Charge, opening decimal.Decimal) ([]RunningBalanceRow, decimal.Decimal, error) {
	var carry *Charge

	regular := make([]*Charge, 0, len(charges))

	for _, c := range charges {
		if c.Debit.IsNegative() || c.Credit.IsNegative() {
			return nil, decimal.Zero, ErrInvalidAmount
		}

		if c.CarryForward {
			// At most one carry-forward is expected per period; extras are
			// a data fault and are ignored rather than double-counted.
			if carry == nil {
				carry = c
			}

			continue
		}

		regular = append(regular, c)
	}

	sort.SliceStable(regular, func(i, j int) bool {
		yi, mi := regular[i].Date.Year(), regular[i].Date.Month()
		yj, mj := regular[j].Date.Year(), regular[j].Date.Month()

		if yi != yj {
			return yi < yj
		}

		return mi < mj
	})

	if carry != nil {
		opening = carry.Credit.Sub(carry.Debit)
	}

	rows := make([]RunningBalanceRow, 0, len(regular)+1)

	if carry != nil {
		rows = append(rows, RunningBalanceRow{
			ChargeID:     carry.ID,
			Balance:      opening,
			CarryForward: true,
		})
	}

	running := opening
	for _, c := range regular {
		running = running.Add(c.Credit.Sub(c.Debit))
		rows = append(rows, RunningBalanceRow{ChargeID: c.ID, Balance: running})
	}

	return rows, running, nil
}
