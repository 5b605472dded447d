package domain

import "errors"

var (
	// Charge errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrConflictingAmount  = errors.New("debit and credit conflict with label class")
	ErrChargeNotFound     = errors.New("charge not found")
	ErrCarryForwardExists = errors.New("carry-forward already exists for year")

	// Posting errors
	ErrDuplicatePosting        = errors.New("posting already exists for charge and origin")
	ErrCarryForwardNotPostable = errors.New("carry-forward charges cannot be posted")
	ErrPostingNotFound         = errors.New("posting not found")
	ErrUnknownOrigin           = errors.New("unknown posting origin")

	// Cash register errors
	ErrOperationNotFound     = errors.New("cash operation not found")
	ErrUnknownOperationType  = errors.New("unknown cash operation type")
	ErrInvalidOperationSign  = errors.New("invalid cash operation sign")
	ErrChargeNotWithdrawable = errors.New("charge is not eligible for cash withdrawal")
	// ErrWithdrawalAlreadyProcessed reports that a concurrent withdrawal won
	// the race for a charge's one-shot flag.
	ErrWithdrawalAlreadyProcessed = errors.New("cash withdrawal already processed for charge")

	// Client errors
	ErrClientNotFound = errors.New("client not found")
)
