package dto

import (
	"time"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// ChargeResponse represents a charge in API responses. Amounts are serialized
// with three fractional digits (millime precision).
type ChargeResponse struct {
	ID                    string `json:"id"`
	ClientID              string `json:"client_id"`
	Date                  string `json:"date"`
	Libelle               string `json:"libelle"`
	Montant               string `json:"montant"`
	Avance                string `json:"avance"`
	Report                bool   `json:"report"`
	RetraitCaisseEffectue bool   `json:"retrait_caisse_effectue"`
}

// ChargeFromDomain converts a domain charge to a response.
func ChargeFromDomain(c *domain.Charge) *ChargeResponse {
	return &ChargeResponse{
		ID:                    c.ID,
		ClientID:              c.ClientID,
		Date:                  c.Date.Format(DateFormat),
		Libelle:               c.Label,
		Montant:               c.Debit.StringFixed(3),
		Avance:                c.Credit.StringFixed(3),
		Report:                c.CarryForward,
		RetraitCaisseEffectue: c.CashWithdrawalProcessed,
	}
}

// ChargesFromDomain converts domain charges to responses.
func ChargesFromDomain(charges []*domain.Charge) []*ChargeResponse {
	result := make([]*ChargeResponse, len(charges))
	for i, c := range charges {
		result[i] = ChargeFromDomain(c)
	}
	return result
}

// ChargeEnvelope wraps a single charge.
type ChargeEnvelope struct {
	Success bool            `json:"success"`
	Charge  *ChargeResponse `json:"charge"`
}

// ChargesEnvelope wraps a charge listing.
type ChargesEnvelope struct {
	Success bool              `json:"success"`
	Charges []*ChargeResponse `json:"charges"`
}

// BalanceRow is one row of the running balance view.
type BalanceRow struct {
	ChargeID string `json:"charge_id"`
	Report   bool   `json:"report"`
	Solde    string `json:"solde"`
}

// BalancesEnvelope wraps the running balance view of a client's year.
type BalancesEnvelope struct {
	Success    bool              `json:"success"`
	Charges    []*ChargeResponse `json:"charges"`
	Rows       []BalanceRow      `json:"rows"`
	SoldeFinal string            `json:"solde_final"`
}

// BalancesFromResult converts a running balances result to a response.
func BalancesFromResult(result *usecase.RunningBalancesResult) *BalancesEnvelope {
	rows := make([]BalanceRow, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = BalanceRow{
			ChargeID: row.ChargeID,
			Report:   row.CarryForward,
			Solde:    row.Balance.StringFixed(3),
		}
	}

	return &BalancesEnvelope{
		Success:    true,
		Charges:    ChargesFromDomain(result.Charges),
		Rows:       rows,
		SoldeFinal: result.Total.StringFixed(3),
	}
}

// DepenseResponse represents an expense posting in API responses.
type DepenseResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	Beneficiaire string `json:"beneficiaire"`
	Montant      string `json:"montant"`
	Description  string `json:"description,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ChargeID     string `json:"charge_id,omitempty"`
}

// DepenseFromDomain converts a domain posting to a response.
func DepenseFromDomain(p *domain.ExpensePosting) *DepenseResponse {
	return &DepenseResponse{
		ID:           p.ID,
		Type:         p.Origin.WireValue(),
		Date:         p.Date.Format(DateFormat),
		Beneficiaire: p.Beneficiary,
		Montant:      p.Amount.StringFixed(3),
		Description:  p.Description,
		ClientID:     p.ClientID,
		ChargeID:     p.ChargeID,
	}
}

// DepensesFromDomain converts domain postings to responses.
func DepensesFromDomain(postings []*domain.ExpensePosting) []*DepenseResponse {
	result := make([]*DepenseResponse, len(postings))
	for i, p := range postings {
		result[i] = DepenseFromDomain(p)
	}
	return result
}

// DepenseEnvelope wraps a single expense posting.
type DepenseEnvelope struct {
	Success bool             `json:"success"`
	Depense *DepenseResponse `json:"depense"`
}

// DepensesEnvelope wraps an expense listing.
type DepensesEnvelope struct {
	Success  bool               `json:"success"`
	Depenses []*DepenseResponse `json:"depenses"`
}

// PostOutcome reports one posting attempt. Created false means the pair was
// already posted and the call was a no-op.
type PostOutcome struct {
	Type    string           `json:"type"`
	Created bool             `json:"created"`
	Depense *DepenseResponse `json:"depense,omitempty"`
}

// PostEnvelope wraps the outcome of posting a charge.
type PostEnvelope struct {
	Success bool          `json:"success"`
	Results []PostOutcome `json:"results"`
}

// PostOutcomeFromResult converts a posting result.
func PostOutcomeFromResult(r *usecase.PostResult) PostOutcome {
	outcome := PostOutcome{
		Type:    r.Origin.WireValue(),
		Created: r.Created,
	}
	if r.Posting != nil {
		outcome.Depense = DepenseFromDomain(r.Posting)
	}

	return outcome
}

// StateResponse represents the posting state of one charge.
type StateResponse struct {
	ChargeID              string `json:"charge_id"`
	Client                bool   `json:"client"`
	Bureau                bool   `json:"bureau"`
	RetraitCaisseEffectue bool   `json:"retrait_caisse_effectue"`
}

// StateFromDomain converts a domain posting state.
func StateFromDomain(s *domain.PostingState) *StateResponse {
	return &StateResponse{
		ChargeID:              s.ChargeID,
		Client:                s.Client,
		Bureau:                s.Office,
		RetraitCaisseEffectue: s.CashWithdrawal,
	}
}

// StateEnvelope wraps a single charge's posting state.
type StateEnvelope struct {
	Success bool           `json:"success"`
	State   *StateResponse `json:"state"`
}

// StatesEnvelope wraps the posting states of a client's year.
type StatesEnvelope struct {
	Success bool             `json:"success"`
	States  []*StateResponse `json:"states"`
}

// CashOperationResponse represents a cash register operation.
type CashOperationResponse struct {
	ID            string    `json:"id"`
	TypeOperation string    `json:"type_operation"`
	OperationSign string    `json:"operation_sign"`
	Montant       string    `json:"montant"`
	Commentaire   string    `json:"commentaire,omitempty"`
	ClientID      string    `json:"client_id,omitempty"`
	ChargeID      string    `json:"charge_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CashOperationFromDomain converts a domain cash operation.
func CashOperationFromDomain(op *domain.CashOperation) *CashOperationResponse {
	return &CashOperationResponse{
		ID:            op.ID,
		TypeOperation: string(op.Type),
		OperationSign: string(op.Sign),
		Montant:       op.Amount.StringFixed(3),
		Commentaire:   op.Comment,
		ClientID:      op.ClientID,
		ChargeID:      op.ChargeID,
		CreatedAt:     op.CreatedAt,
	}
}

// CashOperationsFromDomain converts domain cash operations.
func CashOperationsFromDomain(ops []*domain.CashOperation) []*CashOperationResponse {
	result := make([]*CashOperationResponse, len(ops))
	for i, op := range ops {
		result[i] = CashOperationFromDomain(op)
	}
	return result
}

// CashOperationEnvelope wraps a single cash operation.
type CashOperationEnvelope struct {
	Success   bool                   `json:"success"`
	Operation *CashOperationResponse `json:"operation"`
}

// CaisseEnvelope wraps the cash register snapshot.
type CaisseEnvelope struct {
	Success     bool                     `json:"success"`
	Operations  []*CashOperationResponse `json:"operations"`
	SoldeActuel string                   `json:"solde_actuel"`
}

// WithdrawEnvelope wraps the outcome of a charge withdrawal.
type WithdrawEnvelope struct {
	Success      bool                   `json:"success"`
	DejaEffectue bool                   `json:"deja_effectue"`
	Operation    *CashOperationResponse `json:"operation,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
