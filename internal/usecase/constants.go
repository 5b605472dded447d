package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// cashSnapshotKey and cashSnapshotTTL cover the cash register snapshot
	// cache. Sessions learn of each other's changes by polling, so the TTL
	// stays well below a poll interval; every mutation deletes the key.
	cashSnapshotKey = "caisse:snapshot"
	cashSnapshotTTL = 2 * time.Second
)
