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

// PostingService defines the behavior needed by PostingHandler.
type PostingService interface {
	Post(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error)
	PostBoth(ctx context.Context, chargeID string) ([]*usecase.PostResult, error)
	State(ctx context.Context, chargeID string) (*domain.PostingState, error)
	States(ctx context.Context, clientID string, year int) ([]domain.PostingState, error)
	CreatePosting(ctx context.Context, input usecase.CreatePostingInput) (*domain.ExpensePosting, error)
	ListPostings(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error)
	DeletePosting(ctx context.Context, id string) error
}

// PostingHandler handles expense posting HTTP requests.
type PostingHandler struct {
	postingUC PostingService
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC PostingService) *PostingHandler {
	return &PostingHandler{postingUC: postingUC}
}

// State returns the posting state of one charge.
func (h *PostingHandler) State(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "id")

	state, err := h.postingUC.State(r.Context(), chargeID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get posting state", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StateEnvelope{
		Success: true,
		State:   dto.StateFromDomain(state),
	})
}

// States returns the posting states of a client's year.
func (h *PostingHandler) States(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	year := parseIntQuery(r, "annee", time.Now().Year())

	states, err := h.postingUC.States(r.Context(), clientID, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get posting states", err.Error())
		return
	}

	responses := make([]*dto.StateResponse, len(states))
	for i := range states {
		responses[i] = dto.StateFromDomain(&states[i])
	}

	writeJSON(w, http.StatusOK, dto.StatesEnvelope{
		Success: true,
		States:  responses,
	})
}

// Post posts a charge to one or both expense ledgers. Re-posting an already
// posted pair returns success with created=false.
func (h *PostingHandler) Post(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "id")

	var req dto.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var (
		results []*usecase.PostResult
		err     error
	)

	if req.Type == "both" {
		results, err = h.postingUC.PostBoth(r.Context(), chargeID)
	} else {
		var origin domain.Origin

		origin, err = domain.ParseOrigin(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown posting type", err.Error())
			return
		}

		var result *usecase.PostResult

		result, err = h.postingUC.Post(r.Context(), chargeID, origin)
		if result != nil {
			results = []*usecase.PostResult{result}
		}
	}

	if err != nil {
		writeError(w, mapDomainError(err), "failed to post charge", err.Error())
		return
	}

	outcomes := make([]dto.PostOutcome, len(results))
	for i, result := range results {
		outcomes[i] = dto.PostOutcomeFromResult(result)
	}

	writeJSON(w, http.StatusOK, dto.PostEnvelope{
		Success: true,
		Results: outcomes,
	})
}

// List lists expense postings, filtered by type, year and month.
func (h *PostingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.PostingFilter{
		Year:   parseIntQuery(r, "annee", 0),
		Month:  time.Month(parseIntQuery(r, "mois", 0)),
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}

	if typ := r.URL.Query().Get("type"); typ != "" {
		origin, err := domain.ParseOrigin(typ)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown posting type", err.Error())
			return
		}

		filter.Origin = origin
	}

	postings, err := h.postingUC.ListPostings(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DepensesEnvelope{
		Success:  true,
		Depenses: dto.DepensesFromDomain(postings),
	})
}

// Create records a manually entered expense.
func (h *PostingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DepenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	origin, err := domain.ParseOrigin(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown posting type", err.Error())
		return
	}

	date, err := time.Parse(dto.DateFormat, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	posting, err := h.postingUC.CreatePosting(r.Context(), usecase.CreatePostingInput{
		Origin:      origin,
		Date:        date,
		Beneficiary: req.Beneficiaire,
		Amount:      req.Montant,
		Description: req.Description,
		ClientID:    req.ClientID,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DepenseEnvelope{
		Success: true,
		Depense: dto.DepenseFromDomain(posting),
	})
}

// Delete deletes an expense posting.
func (h *PostingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.postingUC.DeletePosting(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
