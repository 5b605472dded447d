package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/dto"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// ChargeService defines the behavior needed by ChargeHandler.
type ChargeService interface {
	CreateCharge(ctx context.Context, input usecase.CreateChargeInput) (*domain.Charge, error)
	UpdateCharge(ctx context.Context, id string, input usecase.UpdateChargeInput) (*domain.Charge, error)
	DeleteCharge(ctx context.Context, id string) error
	ListCharges(ctx context.Context, clientID string, year int) ([]*domain.Charge, error)
	RunningBalances(ctx context.Context, clientID string, year int) (*usecase.RunningBalancesResult, error)
	CreateCarryForward(ctx context.Context, clientID string, year int) (*domain.Charge, error)
}

// ChargeHandler handles charge-related HTTP requests.
type ChargeHandler struct {
	chargeUC ChargeService
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(chargeUC ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeUC: chargeUC}
}

// List lists a client's charges for one year.
func (h *ChargeHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	year := parseIntQuery(r, "annee", time.Now().Year())

	charges, err := h.chargeUC.ListCharges(r.Context(), clientID, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list charges", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargesEnvelope{
		Success: true,
		Charges: dto.ChargesFromDomain(charges),
	})
}

// Create creates a new charge for a client.
func (h *ChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req dto.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToCreateInput(clientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	charge, err := h.chargeUC.CreateCharge(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create charge", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChargeEnvelope{
		Success: true,
		Charge:  dto.ChargeFromDomain(charge),
	})
}

// Update updates a charge.
func (h *ChargeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUpdateInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	charge, err := h.chargeUC.UpdateCharge(r.Context(), id, input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeEnvelope{
		Success: true,
		Charge:  dto.ChargeFromDomain(charge),
	})
}

// Delete deletes a charge.
func (h *ChargeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.chargeUC.DeleteCharge(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Balances returns the running balance view of a client's year.
func (h *ChargeHandler) Balances(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	year := parseIntQuery(r, "annee", time.Now().Year())

	result, err := h.chargeUC.RunningBalances(r.Context(), clientID, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromResult(result))
}

// CarryForward closes a client's year into a carry-forward charge.
func (h *ChargeHandler) CarryForward(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	year := parseIntQuery(r, "annee", time.Now().Year())

	charge, err := h.chargeUC.CreateCarryForward(r.Context(), clientID, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create carry-forward", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChargeEnvelope{
		Success: true,
		Charge:  dto.ChargeFromDomain(charge),
	})
}
