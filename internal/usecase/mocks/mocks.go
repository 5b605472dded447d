package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// MockChargeRepository is a mock implementation of ChargeRepository.
type MockChargeRepository struct {
	mu      sync.RWMutex
	charges map[string]*domain.Charge
	order   []string

	CreateFunc                     func(ctx context.Context, charge *domain.Charge) error
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Charge, error)
	UpdateFunc                     func(ctx context.Context, charge *domain.Charge) error
	DeleteFunc                     func(ctx context.Context, id string) error
	ListByClientYearFunc           func(ctx context.Context, clientID string, year int) ([]*domain.Charge, error)
	CarryForwardExistsFunc         func(ctx context.Context, clientID string, year int) (bool, error)
	SetCashWithdrawalProcessedFunc func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error
}

func NewMockChargeRepository() *MockChargeRepository {
	return &MockChargeRepository{
		charges: make(map[string]*domain.Charge),
	}
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges[charge.ID] = charge
	m.order = append(m.order, charge.ID)
	return nil
}

func (m *MockChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.charges[id]; ok {
		return c, nil
	}
	return nil, domain.ErrChargeNotFound
}

func (m *MockChargeRepository) Update(ctx context.Context, charge *domain.Charge) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charges[charge.ID]; !ok {
		return domain.ErrChargeNotFound
	}
	m.charges[charge.ID] = charge
	return nil
}

func (m *MockChargeRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charges[id]; !ok {
		return domain.ErrChargeNotFound
	}
	delete(m.charges, id)
	return nil
}

func (m *MockChargeRepository) ListByClientYear(ctx context.Context, clientID string, year int) ([]*domain.Charge, error) {
	if m.ListByClientYearFunc != nil {
		return m.ListByClientYearFunc(ctx, clientID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var charges []*domain.Charge
	for _, id := range m.order {
		c, ok := m.charges[id]
		if !ok {
			continue
		}
		if c.ClientID == clientID && c.Date.Year() == year {
			charges = append(charges, c)
		}
	}
	return charges, nil
}

func (m *MockChargeRepository) CarryForwardExists(ctx context.Context, clientID string, year int) (bool, error) {
	if m.CarryForwardExistsFunc != nil {
		return m.CarryForwardExistsFunc(ctx, clientID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.charges {
		if c.ClientID == clientID && c.CarryForward && c.Date.Year() == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockChargeRepository) SetCashWithdrawalProcessed(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	if m.SetCashWithdrawalProcessedFunc != nil {
		return m.SetCashWithdrawalProcessedFunc(ctx, tx, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.charges[id]
	if !ok {
		return domain.ErrChargeNotFound
	}
	if c.CashWithdrawalProcessed {
		return domain.ErrWithdrawalAlreadyProcessed
	}
	c.CashWithdrawalProcessed = true
	c.UpdatedAt = updatedAt
	return nil
}

// MockPostingRepository is a mock implementation of PostingRepository. Its
// default Create enforces the (charge, origin) uniqueness the real store
// guarantees.
type MockPostingRepository struct {
	mu       sync.RWMutex
	postings map[string]*domain.ExpensePosting
	order    []string

	CreateFunc               func(ctx context.Context, posting *domain.ExpensePosting) error
	GetByChargeAndOriginFunc func(ctx context.Context, chargeID string, origin domain.Origin) (*domain.ExpensePosting, error)
	ListFunc                 func(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error)
	DeleteFunc               func(ctx context.Context, id string) error
}

func NewMockPostingRepository() *MockPostingRepository {
	return &MockPostingRepository{
		postings: make(map[string]*domain.ExpensePosting),
	}
}

func (m *MockPostingRepository) Create(ctx context.Context, posting *domain.ExpensePosting) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, posting)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if posting.ChargeID != "" {
		for _, p := range m.postings {
			if p.ChargeID == posting.ChargeID && p.Origin == posting.Origin {
				return domain.ErrDuplicatePosting
			}
		}
	}
	m.postings[posting.ID] = posting
	m.order = append(m.order, posting.ID)
	return nil
}

func (m *MockPostingRepository) GetByChargeAndOrigin(ctx context.Context, chargeID string, origin domain.Origin) (*domain.ExpensePosting, error) {
	if m.GetByChargeAndOriginFunc != nil {
		return m.GetByChargeAndOriginFunc(ctx, chargeID, origin)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.postings {
		if p.ChargeID == chargeID && p.Origin == origin {
			return p, nil
		}
	}
	return nil, domain.ErrPostingNotFound
}

func (m *MockPostingRepository) List(ctx context.Context, filter usecase.PostingFilter) ([]*domain.ExpensePosting, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var postings []*domain.ExpensePosting
	for _, id := range m.order {
		p, ok := m.postings[id]
		if !ok {
			continue
		}
		if filter.Origin != "" && p.Origin != filter.Origin {
			continue
		}
		if filter.Year != 0 && p.Date.Year() != filter.Year {
			continue
		}
		if filter.Month != 0 && p.Date.Month() != filter.Month {
			continue
		}
		postings = append(postings, p)
	}
	return postings, nil
}

func (m *MockPostingRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.postings[id]; !ok {
		return domain.ErrPostingNotFound
	}
	delete(m.postings, id)
	return nil
}

// Count returns the number of stored postings.
func (m *MockPostingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for range m.postings {
		n++
	}
	return n
}

// MockCashOperationRepository is a mock implementation of
// CashOperationRepository.
type MockCashOperationRepository struct {
	mu    sync.RWMutex
	ops   map[string]*domain.CashOperation
	order []string

	CreateFunc   func(ctx context.Context, op *domain.CashOperation) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, op *domain.CashOperation) error
	GetByIDFunc  func(ctx context.Context, id string) (*domain.CashOperation, error)
	UpdateFunc   func(ctx context.Context, op *domain.CashOperation) error
	DeleteFunc   func(ctx context.Context, id string) error
	ListAllFunc  func(ctx context.Context) ([]*domain.CashOperation, error)
}

func NewMockCashOperationRepository() *MockCashOperationRepository {
	return &MockCashOperationRepository{
		ops: make(map[string]*domain.CashOperation),
	}
}

func (m *MockCashOperationRepository) Create(ctx context.Context, op *domain.CashOperation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op.ID] = op
	m.order = append(m.order, op.ID)
	return nil
}

func (m *MockCashOperationRepository) CreateTx(ctx context.Context, tx usecase.Transaction, op *domain.CashOperation) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, op)
	}
	return m.Create(ctx, op)
}

func (m *MockCashOperationRepository) GetByID(ctx context.Context, id string) (*domain.CashOperation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if op, ok := m.ops[id]; ok {
		return op, nil
	}
	return nil, domain.ErrOperationNotFound
}

func (m *MockCashOperationRepository) Update(ctx context.Context, op *domain.CashOperation) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ops[op.ID]; !ok {
		return domain.ErrOperationNotFound
	}
	m.ops[op.ID] = op
	return nil
}

func (m *MockCashOperationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ops[id]; !ok {
		return domain.ErrOperationNotFound
	}
	delete(m.ops, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockCashOperationRepository) ListAll(ctx context.Context) ([]*domain.CashOperation, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ops := make([]*domain.CashOperation, 0, len(m.order))
	for _, id := range m.order {
		if op, ok := m.ops[id]; ok {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client

	GetByIDFunc func(ctx context.Context, id string) (*domain.Client, error)
}

func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// Add seeds a client record.
func (m *MockClientRepository) Add(client *domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

// MockIDGenerator is a mock implementation of IDGenerator. Without an
// override it produces id-1, id-2, ...
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + itoa(m.next)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	t.RolledBack = true
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	LastTx *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.LastTx = &MockTransaction{}
	return m.LastTx, nil
}
