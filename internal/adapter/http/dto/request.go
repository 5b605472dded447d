package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// DateFormat is the wire format of charge and expense dates.
const DateFormat = "2006-01-02"

// ChargeRequest represents a request to create or update a charge. The wire
// keeps the French field names of the office screens: montant is the debit
// side, avance the credit side.
type ChargeRequest struct {
	Date         string          `json:"date"`
	Libelle      string          `json:"libelle"`
	LibelleLibre string          `json:"libelle_libre,omitempty"`
	Montant      decimal.Decimal `json:"montant"`
	Avance       decimal.Decimal `json:"avance"`
}

// ToCreateInput converts to use case input.
func (r *ChargeRequest) ToCreateInput(clientID string) (usecase.CreateChargeInput, error) {
	date, err := time.Parse(DateFormat, r.Date)
	if err != nil {
		return usecase.CreateChargeInput{}, err
	}

	return usecase.CreateChargeInput{
		ClientID:  clientID,
		Date:      date,
		BaseLabel: r.Libelle,
		FreeText:  r.LibelleLibre,
		Debit:     r.Montant,
		Credit:    r.Avance,
	}, nil
}

// ToUpdateInput converts to use case input.
func (r *ChargeRequest) ToUpdateInput() (usecase.UpdateChargeInput, error) {
	date, err := time.Parse(DateFormat, r.Date)
	if err != nil {
		return usecase.UpdateChargeInput{}, err
	}

	return usecase.UpdateChargeInput{
		Date:      date,
		BaseLabel: r.Libelle,
		FreeText:  r.LibelleLibre,
		Debit:     r.Montant,
		Credit:    r.Avance,
	}, nil
}

// PostRequest selects the expense ledger(s) a charge is posted to:
// "client", "bureau" or "both".
type PostRequest struct {
	Type string `json:"type"`
}

// DepenseRequest represents a manually entered expense posting.
type DepenseRequest struct {
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	Beneficiaire string          `json:"beneficiaire"`
	Montant      decimal.Decimal `json:"montant"`
	Description  string          `json:"description,omitempty"`
	ClientID     string          `json:"client_id,omitempty"`
}

// CashOperationRequest represents a cash register operation.
type CashOperationRequest struct {
	TypeOperation string          `json:"type_operation"`
	OperationSign string          `json:"operation_sign,omitempty"`
	Montant       decimal.Decimal `json:"montant"`
	Commentaire   string          `json:"commentaire,omitempty"`
	ClientID      string          `json:"client_id,omitempty"`
}
