package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the kind of cash register movement.
type OperationType string

const (
	OperationWithdrawal OperationType = "withdrawal"
	OperationDeposit    OperationType = "deposit"
	OperationOther      OperationType = "other"
)

// ParseOperationType maps a wire value to an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	switch OperationType(strings.ToLower(strings.TrimSpace(s))) {
	case OperationWithdrawal:
		return OperationWithdrawal, nil
	case OperationDeposit:
		return OperationDeposit, nil
	case OperationOther:
		return OperationOther, nil
	default:
		return "", ErrUnknownOperationType
	}
}

// Sign is the direction of a cash register movement.
type Sign string

const (
	SignPlus  Sign = "plus"
	SignMinus Sign = "minus"
)

// CashOperation is one signed movement in the office cash register. Editable
// and deletable; the derived balance changes on the next read.
type CashOperation struct {
	ID        string
	Type      OperationType
	Sign      Sign
	Amount    decimal.Decimal
	Comment   string
	ClientID  string
	ChargeID  string // set when the operation was triggered from a charge withdrawal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize validates the amount and forces the sign implied by the type:
// deposits are always plus, withdrawals always minus, and only "other"
// operations keep an operator-chosen sign.
func (o *CashOperation) Normalize() error {
	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch o.Type {
	case OperationDeposit:
		o.Sign = SignPlus
	case OperationWithdrawal:
		o.Sign = SignMinus
	case OperationOther:
		if o.Sign != SignPlus && o.Sign != SignMinus {
			return ErrInvalidOperationSign
		}
	default:
		return ErrUnknownOperationType
	}

	return nil
}

// Signed returns the amount with the operation's sign applied.
func (o *CashOperation) Signed() decimal.Decimal {
	if o.Sign == SignMinus {
		return o.Amount.Neg()
	}

	return o.Amount
}

// ComputeCashBalance folds operations, in creation order, into the current
// balance. The fold is rerun from the full operation set on every call so the
// balance can never drift from the operations after an edit or delete.
func ComputeCashBalance(ops []*CashOperation) decimal.Decimal {
	balance := decimal.Zero
	for _, op := range ops {
		balance = balance.Add(op.Signed())
	}

	return balance
}
