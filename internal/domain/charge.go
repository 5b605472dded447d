package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge is a dated ledger line belonging to exactly one client. Amounts are
// in dinars with millime precision (3 decimals). Exactly one of Debit
// ("montant") and Credit ("avance") is active for a regular charge; the label
// class decides which.
//
// A carry-forward charge is synthetic: it represents the prior period's
// closing balance, stored as Credit-Debit (positive balances in Credit,
// negative in Debit), and is excluded from classification and posting.
type Charge struct {
	ID                      string
	ClientID                string
	Date                    time.Time
	Label                   string
	Debit                   decimal.Decimal
	Credit                  decimal.Decimal
	CarryForward            bool
	CashWithdrawalProcessed bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// ActiveAmount returns the amount held in the field the label class
// activates.
func (c *Charge) ActiveAmount() decimal.Decimal {
	if ClassifyStored(c.Label) == CreditClass {
		return c.Credit
	}

	return c.Debit
}

// ValidateAmounts rejects negative amounts and any non-zero value in the
// field the label class forces to zero. Misuse is reported, never silently
// zeroed. Carry-forward charges skip classification.
func (c *Charge) ValidateAmounts() error {
	if c.Debit.IsNegative() || c.Credit.IsNegative() {
		return ErrInvalidAmount
	}

	if c.CarryForward {
		return nil
	}

	switch ClassifyStored(c.Label) {
	case CreditClass:
		if !c.Debit.IsZero() {
			return ErrConflictingAmount
		}
	default:
		if !c.Credit.IsZero() {
			return ErrConflictingAmount
		}
	}

	return nil
}

// WithdrawalEligible reports whether the charge may be withdrawn from the
// cash register: a pure expense-style line, debit strictly positive and
// credit exactly zero.
func (c *Charge) WithdrawalEligible() bool {
	return !c.CarryForward &&
		ClassifyStored(c.Label) == DebitClass &&
		c.Debit.IsPositive() &&
		c.Credit.IsZero()
}
