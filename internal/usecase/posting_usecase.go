package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
)

// PostingUseCase is the posting state tracker: it answers which downstream
// expense records exist for each charge and performs postings exactly once
// per (charge, origin) pair.
//
// The in-process inFlight set is an optimistic lock closing the
// double-invocation race (double click, slow network) inside one server. The
// real cross-session guarantee is the store's uniqueness constraint on
// (charge, origin): a duplicate rejection from the store is treated as
// "already posted", never as a user-facing failure.
type PostingUseCase struct {
	chargeRepo  ChargeRepository
	postingRepo PostingRepository
	clientRepo  ClientRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	mu       sync.Mutex
	inFlight map[postingKey]struct{}
}

type postingKey struct {
	chargeID string
	origin   domain.Origin
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	chargeRepo ChargeRepository,
	postingRepo PostingRepository,
	clientRepo ClientRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PostingUseCase {
	return &PostingUseCase{
		chargeRepo:  chargeRepo,
		postingRepo: postingRepo,
		clientRepo:  clientRepo,
		idGen:       idGen,
		metrics:     m,
		logger:      logger,
		inFlight:    make(map[postingKey]struct{}),
	}
}

// PostResult reports the outcome of one posting attempt. Created is false
// when the (charge, origin) pair was already posted; that outcome is a
// success, not an error.
type PostResult struct {
	Origin  domain.Origin
	Posting *domain.ExpensePosting
	Created bool
}

// Post posts a charge's active amount into the expense ledger named by
// origin, exactly once per (charge, origin) pair.
func (uc *PostingUseCase) Post(ctx context.Context, chargeID string, origin domain.Origin) (*PostResult, error) {
	charge, err := uc.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	if charge.CarryForward {
		return nil, domain.ErrCarryForwardNotPostable
	}

	amount := charge.ActiveAmount()
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	existing, err := uc.postingRepo.GetByChargeAndOrigin(ctx, chargeID, origin)
	if err != nil && !errors.Is(err, domain.ErrPostingNotFound) {
		return nil, err
	}

	if existing != nil {
		return &PostResult{Origin: origin, Posting: existing, Created: false}, nil
	}

	key := postingKey{chargeID: chargeID, origin: origin}
	if !uc.acquire(key) {
		// A concurrent call already marked this pair posted; report success
		// without issuing a second write.
		return &PostResult{Origin: origin, Created: false}, nil
	}

	client, err := uc.clientRepo.GetByID(ctx, charge.ClientID)
	if err != nil {
		uc.release(key)
		return nil, err
	}

	posting := &domain.ExpensePosting{
		ID:          uc.idGen.Generate(),
		Origin:      origin,
		Date:        charge.Date,
		Beneficiary: client.Name,
		Amount:      amount,
		Description: domain.BuildDescription(origin, charge.Label),
		ClientID:    charge.ClientID,
		ChargeID:    charge.ID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.postingRepo.Create(ctx, posting); err != nil {
		uc.release(key)

		if errors.Is(err, domain.ErrDuplicatePosting) {
			// Another session won the race. Logged for diagnostics, then
			// treated as an idempotent success.
			uc.logger.Warn().
				Str("charge_id", chargeID).
				Str("origin", string(origin)).
				Msg("duplicate posting rejected by store, treating as already posted")

			if uc.metrics != nil {
				uc.metrics.DuplicatePostings.Inc()
			}

			existing, getErr := uc.postingRepo.GetByChargeAndOrigin(ctx, chargeID, origin)
			if getErr != nil && !errors.Is(getErr, domain.ErrPostingNotFound) {
				return nil, getErr
			}

			return &PostResult{Origin: origin, Posting: existing, Created: false}, nil
		}

		return nil, err
	}

	uc.release(key)

	if uc.metrics != nil {
		uc.metrics.PostingsCreated.WithLabelValues(string(origin)).Inc()
	}

	return &PostResult{Origin: origin, Posting: posting, Created: true}, nil
}

// PostBoth posts a charge to both expense ledgers. Each origin is idempotent
// on its own: an already-posted origin is skipped while the other proceeds.
func (uc *PostingUseCase) PostBoth(ctx context.Context, chargeID string) ([]*PostResult, error) {
	results := make([]*PostResult, 0, 2)

	for _, origin := range []domain.Origin{domain.OriginClient, domain.OriginOffice} {
		result, err := uc.Post(ctx, chargeID, origin)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, nil
}

// States reconstructs, from the stored postings, which downstream records
// exist for each regular charge of a client's year. Postings with an explicit
// charge link are matched directly; historical postings without one go
// through the four-condition compatibility match.
func (uc *PostingUseCase) States(ctx context.Context, clientID string, year int) ([]domain.PostingState, error) {
	charges, err := uc.chargeRepo.ListByClientYear(ctx, clientID, year)
	if err != nil {
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	postings, err := uc.postingRepo.List(ctx, PostingFilter{Year: year})
	if err != nil {
		return nil, err
	}

	linked := make(map[postingKey]bool)

	var unlinked []*domain.ExpensePosting

	for _, p := range postings {
		if p.ChargeID != "" {
			linked[postingKey{chargeID: p.ChargeID, origin: p.Origin}] = true
			continue
		}

		unlinked = append(unlinked, p)
	}

	states := make([]domain.PostingState, 0, len(charges))

	for _, charge := range charges {
		if charge.CarryForward {
			continue
		}

		state := domain.PostingState{
			ChargeID:       charge.ID,
			Client:         linked[postingKey{chargeID: charge.ID, origin: domain.OriginClient}],
			Office:         linked[postingKey{chargeID: charge.ID, origin: domain.OriginOffice}],
			CashWithdrawal: charge.CashWithdrawalProcessed,
		}

		for _, p := range unlinked {
			if p.MatchesCharge(charge, client.Name) {
				switch p.Origin {
				case domain.OriginClient:
					state.Client = true
				case domain.OriginOffice:
					state.Office = true
				}
			}
		}

		states = append(states, state)
	}

	return states, nil
}

// State reconstructs the posting state of a single charge.
func (uc *PostingUseCase) State(ctx context.Context, chargeID string) (*domain.PostingState, error) {
	charge, err := uc.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	states, err := uc.States(ctx, charge.ClientID, charge.Date.Year())
	if err != nil {
		return nil, err
	}

	for i := range states {
		if states[i].ChargeID == chargeID {
			return &states[i], nil
		}
	}

	return nil, domain.ErrChargeNotFound
}

// CreatePostingInput represents input for a manually entered expense.
type CreatePostingInput struct {
	Origin      domain.Origin
	Date        time.Time
	Beneficiary string
	Amount      decimal.Decimal
	Description string
	ClientID    string
}

// CreatePosting records an expense entered directly on the expense screens,
// without a source charge.
func (uc *PostingUseCase) CreatePosting(ctx context.Context, input CreatePostingInput) (*domain.ExpensePosting, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	posting := &domain.ExpensePosting{
		ID:          uc.idGen.Generate(),
		Origin:      input.Origin,
		Date:        input.Date,
		Beneficiary: input.Beneficiary,
		Amount:      input.Amount,
		Description: input.Description,
		ClientID:    input.ClientID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.postingRepo.Create(ctx, posting); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PostingsCreated.WithLabelValues(string(input.Origin)).Inc()
	}

	return posting, nil
}

// ListPostings lists expense postings, optionally filtered by origin, year
// and month.
func (uc *PostingUseCase) ListPostings(ctx context.Context, filter PostingFilter) ([]*domain.ExpensePosting, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if filter.Limit > 500 {
		filter.Limit = 500
	}

	return uc.postingRepo.List(ctx, filter)
}

// DeletePosting removes a posting. The next States read re-derives the
// source charge as unposted; that re-derivation is the only way back from
// Posted.
func (uc *PostingUseCase) DeletePosting(ctx context.Context, id string) error {
	return uc.postingRepo.Delete(ctx, id)
}

func (uc *PostingUseCase) acquire(key postingKey) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.inFlight[key]; busy {
		return false
	}

	uc.inFlight[key] = struct{}{}

	return true
}

func (uc *PostingUseCase) release(key postingKey) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	delete(uc.inFlight, key)
}
