package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues ULIDs for charges, postings and cash
// operations. The time-ordered prefix keeps ledger listings in
// insertion order without a separate sequence.
type ULIDGenerator struct{}

// NewULIDGenerator creates a ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a fresh ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
