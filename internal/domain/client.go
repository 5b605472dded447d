package domain

// Client is a reference to a client record. Client CRUD is handled by a
// separate system; the ledger only needs the name, as posting beneficiary and
// for compatibility matching.
type Client struct {
	ID   string
	Name string
}
