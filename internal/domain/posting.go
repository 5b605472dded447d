package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Origin discriminates which expense ledger a posting targets.
type Origin string

const (
	OriginClient Origin = "client"
	OriginOffice Origin = "office"
)

// OfficeMarker is the literal bracketed tag embedded in office posting
// descriptions. The compatibility matcher keys on it, so it must never
// change.
const OfficeMarker = "[CGM]"

// ParseOrigin maps a wire value to an Origin. The wire uses "bureau" for the
// office ledger.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return OriginClient, nil
	case "bureau", "office":
		return OriginOffice, nil
	default:
		return "", ErrUnknownOrigin
	}
}

// WireValue returns the origin as serialized on the wire.
func (o Origin) WireValue() string {
	if o == OriginOffice {
		return "bureau"
	}

	return string(o)
}

// ExpensePosting is a record in one of the downstream expense ledgers,
// optionally linked back to the charge it was posted from. A given
// (ChargeID, Origin) pair is unique; that uniqueness is the duplicate
// prevention guarantee.
type ExpensePosting struct {
	ID          string
	Origin      Origin
	Date        time.Time
	Beneficiary string
	Amount      decimal.Decimal
	Description string
	ClientID    string
	ChargeID    string // empty for historical postings created before links existed
	CreatedAt   time.Time
}

// BuildDescription composes the description stored on a new posting. Office
// postings carry the OfficeMarker so that data predating explicit links stays
// reconstructable.
func BuildDescription(origin Origin, label string) string {
	if origin == OriginOffice {
		return OfficeMarker + " " + label
	}

	return label
}

// matchTolerance bounds the amount comparison on the compatibility path.
var matchTolerance = decimal.RequireFromString("0.01")

// MatchesCharge reports whether a posting that carries no explicit link
// belongs to the given charge. All four conditions must hold: same day, same
// amount within tolerance, beneficiary equal to the client name, and a
// description containing both the office marker and the charge label. A
// single mismatch means no match; a false positive here would corrupt
// duplicate prevention.
func (p *ExpensePosting) MatchesCharge(c *Charge, clientName string) bool {
	if !sameDay(p.Date, c.Date) {
		return false
	}

	if p.Amount.Sub(c.ActiveAmount()).Abs().GreaterThan(matchTolerance) {
		return false
	}

	if !strings.EqualFold(strings.TrimSpace(p.Beneficiary), strings.TrimSpace(clientName)) {
		return false
	}

	if !strings.Contains(p.Description, OfficeMarker) || !strings.Contains(p.Description, c.Label) {
		return false
	}

	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()

	return ay == by && am == bm && ad == bd
}

// PostingState summarizes, for one charge, which downstream records exist.
type PostingState struct {
	ChargeID       string
	Client         bool
	Office         bool
	CashWithdrawal bool
}
