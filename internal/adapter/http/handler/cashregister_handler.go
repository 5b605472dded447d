package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/dto"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// CashRegisterService defines the behavior needed by CashRegisterHandler.
type CashRegisterService interface {
	AddOperation(ctx context.Context, input usecase.AddOperationInput) (*domain.CashOperation, error)
	UpdateOperation(ctx context.Context, id string, input usecase.UpdateOperationInput) (*domain.CashOperation, error)
	DeleteOperation(ctx context.Context, id string) error
	GetSnapshot(ctx context.Context) (*usecase.Snapshot, error)
	WithdrawFromCharge(ctx context.Context, chargeID string) (*usecase.WithdrawalResult, error)
}

// CashRegisterHandler handles cash register HTTP requests.
type CashRegisterHandler struct {
	registerUC CashRegisterService
}

// NewCashRegisterHandler creates a new CashRegisterHandler.
func NewCashRegisterHandler(registerUC CashRegisterService) *CashRegisterHandler {
	return &CashRegisterHandler{registerUC: registerUC}
}

// Snapshot returns every operation and the derived balance.
func (h *CashRegisterHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.registerUC.GetSnapshot(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read cash register", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CaisseEnvelope{
		Success:     true,
		Operations:  dto.CashOperationsFromDomain(snapshot.Operations),
		SoldeActuel: snapshot.Balance.StringFixed(3),
	})
}

// Add records a cash register operation.
func (h *CashRegisterHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.CashOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.registerUC.AddOperation(r.Context(), usecase.AddOperationInput{
		Type:     domain.OperationType(req.TypeOperation),
		Sign:     domain.Sign(req.OperationSign),
		Amount:   req.Montant,
		Comment:  req.Commentaire,
		ClientID: req.ClientID,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add operation", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashOperationEnvelope{
		Success:   true,
		Operation: dto.CashOperationFromDomain(op),
	})
}

// Update edits a cash register operation.
func (h *CashRegisterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CashOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.registerUC.UpdateOperation(r.Context(), id, usecase.UpdateOperationInput{
		Type:    domain.OperationType(req.TypeOperation),
		Sign:    domain.Sign(req.OperationSign),
		Amount:  req.Montant,
		Comment: req.Commentaire,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update operation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashOperationEnvelope{
		Success:   true,
		Operation: dto.CashOperationFromDomain(op),
	})
}

// Delete removes a cash register operation.
func (h *CashRegisterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.registerUC.DeleteOperation(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete operation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Withdraw performs the one-shot cash withdrawal of a charge. A second call
// for the same charge returns success with deja_effectue=true.
func (h *CashRegisterHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "id")

	result, err := h.registerUC.WithdrawFromCharge(r.Context(), chargeID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw from charge", err.Error())
		return
	}

	envelope := dto.WithdrawEnvelope{
		Success:      true,
		DejaEffectue: result.AlreadyProcessed,
	}
	if result.Operation != nil {
		envelope.Operation = dto.CashOperationFromDomain(result.Operation)
	}

	writeJSON(w, http.StatusOK, envelope)
}
