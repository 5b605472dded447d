package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/dto"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

type postingServiceStub struct {
	postFn     func(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error)
	postBothFn func(ctx context.Context, chargeID string) ([]*usecase.PostResult, error)
	stateFn    func(ctx context.Context, chargeID string) (*domain.PostingState, error)
	statesFn   func(ctx context.Context, clientID string, year int) ([]domain.PostingState, error)
	createFn   func(ctx context.Context, input usecase.CreatePostingInput) (*domain.ExpensePosting, error)
	listFn     func(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (s *postingServiceStub) Post(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error) {
	return s.postFn(ctx, chargeID, origin)
}

func (s *postingServiceStub) PostBoth(ctx context.Context, chargeID string) ([]*usecase.PostResult, error) {
	return s.postBothFn(ctx, chargeID)
}

func (s *postingServiceStub) State(ctx context.Context, chargeID string) (*domain.PostingState, error) {
	return s.stateFn(ctx, chargeID)
}

func (s *postingServiceStub) States(ctx context.Context, clientID string, year int) ([]domain.PostingState, error) {
	return s.statesFn(ctx, clientID, year)
}

func (s *postingServiceStub) CreatePosting(ctx context.Context, input usecase.CreatePostingInput) (*domain.ExpensePosting, error) {
	return s.createFn(ctx, input)
}

func (s *postingServiceStub) ListPostings(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error) {
	return s.listFn(ctx, filter)
}

func (s *postingServiceStub) DeletePosting(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func TestPostingHandler_Post_SingleOrigin(t *testing.T) {
	posting := &domain.ExpensePosting{
		ID:          "posting-1",
		Origin:      domain.OriginOffice,
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Beneficiary: "Société Meriem",
		Amount:      decimal.RequireFromString("120"),
		Description: "[CGM] CNSS",
		ChargeID:    "charge-1",
	}

	handler := NewPostingHandler(&postingServiceStub{
		postFn: func(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error) {
			if chargeID != "charge-1" || origin != domain.OriginOffice {
				t.Fatalf("unexpected post call: %s/%s", chargeID, origin)
			}
			return &usecase.PostResult{Origin: origin, Posting: posting, Created: true}, nil
		},
	})

	body, _ := json.Marshal(dto.PostRequest{Type: "bureau"})
	req := httptest.NewRequest(http.MethodPost, "/charges/charge-1/postings", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "charge-1")
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PostEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Type != "bureau" || !resp.Results[0].Created {
		t.Fatalf("unexpected outcome: %+v", resp.Results[0])
	}
	if resp.Results[0].Depense.Montant != "120.000" {
		t.Fatalf("expected montant 120.000, got %s", resp.Results[0].Depense.Montant)
	}
}

func TestPostingHandler_Post_Both(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		postBothFn: func(ctx context.Context, chargeID string) ([]*usecase.PostResult, error) {
			return []*usecase.PostResult{
				{Origin: domain.OriginClient, Created: true},
				{Origin: domain.OriginOffice, Created: false},
			}, nil
		},
	})

	body, _ := json.Marshal(dto.PostRequest{Type: "both"})
	req := httptest.NewRequest(http.MethodPost, "/charges/charge-1/postings", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "charge-1")
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.PostEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Type != "client" || resp.Results[1].Type != "bureau" {
		t.Fatalf("unexpected types: %+v", resp.Results)
	}
	if resp.Results[1].Created {
		t.Fatal("expected second result to report created=false")
	}
}

func TestPostingHandler_Post_UnknownType(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		postFn: func(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error) {
			t.Fatal("Post should not be called for an unknown type")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.PostRequest{Type: "fournisseur"})
	req := httptest.NewRequest(http.MethodPost, "/charges/charge-1/postings", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "charge-1")
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostingHandler_Post_CarryForwardRejected(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		postFn: func(ctx context.Context, chargeID string, origin domain.Origin) (*usecase.PostResult, error) {
			return nil, domain.ErrCarryForwardNotPostable
		},
	})

	body, _ := json.Marshal(dto.PostRequest{Type: "client"})
	req := httptest.NewRequest(http.MethodPost, "/charges/carry-1/postings", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "carry-1")
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostingHandler_State(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		stateFn: func(ctx context.Context, chargeID string) (*domain.PostingState, error) {
			return &domain.PostingState{ChargeID: chargeID, Office: true, CashWithdrawal: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/charges/charge-1/postings", nil)
	req = setChiURLParam(req, "id", "charge-1")
	rec := httptest.NewRecorder()

	handler.State(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StateEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State.Client || !resp.State.Bureau || !resp.State.RetraitCaisseEffectue {
		t.Fatalf("unexpected state: %+v", resp.State)
	}
}

func TestPostingHandler_States(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		statesFn: func(ctx context.Context, clientID string, year int) ([]domain.PostingState, error) {
			if clientID != "client-1" || year != 2026 {
				t.Fatalf("expected client-1/2026, got %s/%d", clientID, year)
			}
			return []domain.PostingState{
				{ChargeID: "charge-1", Client: true},
				{ChargeID: "charge-2"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/clients/client-1/charges/postings?annee=2026", nil)
	req = setChiURLParam(req, "id", "client-1")
	rec := httptest.NewRecorder()

	handler.States(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatesEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.States) != 2 || !resp.States[0].Client || resp.States[1].Client {
		t.Fatalf("unexpected states: %+v", resp.States)
	}
}

func TestPostingHandler_List_FilterParsing(t *testing.T) {
	var captured usecase.PostingFilter
	handler := NewPostingHandler(&postingServiceStub{
		listFn: func(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error) {
			captured = filter
			return []*domain.ExpensePosting{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/depenses/?type=bureau&annee=2026&mois=3&limit=10&offset=20", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Origin != domain.OriginOffice || captured.Year != 2026 || captured.Month != time.March {
		t.Fatalf("unexpected filter: %+v", captured)
	}
	if captured.Limit != 10 || captured.Offset != 20 {
		t.Fatalf("unexpected pagination: %+v", captured)
	}
}

func TestPostingHandler_List_UnknownType(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		listFn: func(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error) {
			t.Fatal("ListPostings should not be called for an unknown type")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/depenses/?type=interne", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostingHandler_Create_Manual(t *testing.T) {
	var captured usecase.CreatePostingInput
	handler := NewPostingHandler(&postingServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePostingInput) (*domain.ExpensePosting, error) {
			captured = input
			return &domain.ExpensePosting{
				ID:          "posting-1",
				Origin:      input.Origin,
				Date:        input.Date,
				Beneficiary: input.Beneficiary,
				Amount:      input.Amount,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.DepenseRequest{
		Type:         "client",
		Date:         "2026-04-02",
		Beneficiaire: "STEG",
		Montant:      decimal.RequireFromString("75.300"),
	})
	req := httptest.NewRequest(http.MethodPost, "/depenses/", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Origin != domain.OriginClient || captured.Beneficiary != "STEG" {
		t.Fatalf("unexpected input: %+v", captured)
	}
	var resp dto.DepenseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Depense.Montant != "75.300" || resp.Depense.ChargeID != "" {
		t.Fatalf("unexpected depense: %+v", resp.Depense)
	}
}

func TestPostingHandler_Delete_NotFound(t *testing.T) {
	handler := NewPostingHandler(&postingServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrPostingNotFound
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/depenses/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
