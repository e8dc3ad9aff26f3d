package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

// MockTransaction is a mock implementation of Transaction. Mock repositories
// register undo hooks for writes made under a transaction; Rollback before
// Commit runs them, so aborted transactions really leave the in-memory store
// unchanged.
type MockTransaction struct {
	mu        sync.Mutex
	committed bool
	undos     []func()

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.committed {
		return nil
	}
	for i := len(m.undos) - 1; i >= 0; i-- {
		m.undos[i]()
	}
	m.undos = nil
	return nil
}

func (m *MockTransaction) onRollback(undo func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undos = append(m.undos, undo)
}

func registerUndo(tx usecase.Transaction, undo func()) {
	if mt, ok := tx.(*MockTransaction); ok && mt != nil {
		mt.onRollback(undo)
	}
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc            func(ctx context.Context, code string) (*domain.Account, error)
	GetByIDsForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateCurrentBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	DefaultForScopeFunc      func(ctx context.Context, scope string) (*domain.Account, error)
	FirstActiveForScopeFunc  func(ctx context.Context, scope string) (*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.accounts, account.ID)
	})
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	prev := *m.accounts[account.ID]
	m.accounts[account.ID] = account
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		restored := prev
		m.accounts[account.ID] = &restored
	})
	return nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Status = status
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) UpdateCurrentBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateCurrentBalanceFunc != nil {
		return m.UpdateCurrentBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	prev := acc.CurrentBalance
	acc.CurrentBalance = balance
	acc.UpdatedAt = updatedAt
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if acc, ok := m.accounts[id]; ok {
			acc.CurrentBalance = prev
		}
	})
	return nil
}

func (m *MockAccountRepository) ClearDefault(ctx context.Context, tx usecase.Transaction, scope, exceptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.ManagedBy != scope || acc.ID == exceptID || !acc.IsDefault {
			continue
		}
		cleared := acc
		cleared.IsDefault = false
		registerUndo(tx, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			cleared.IsDefault = true
		})
	}
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.accounts[id] = acc
	})
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if filter.ManagedBy != "" && acc.ManagedBy != filter.ManagedBy {
			continue
		}
		if filter.Status != "" && acc.Status != filter.Status {
			continue
		}
		if filter.Type != "" && acc.Type != filter.Type {
			continue
		}
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return paginate(accounts, filter.Limit, filter.Offset), nil
}

func (m *MockAccountRepository) DefaultForScope(ctx context.Context, scope string) (*domain.Account, error) {
	if m.DefaultForScopeFunc != nil {
		return m.DefaultForScopeFunc(ctx, scope)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.ManagedBy == scope && acc.IsDefault && acc.Status == domain.AccountStatusActive {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FirstActiveForScope(ctx context.Context, scope string) (*domain.Account, error) {
	if m.FirstActiveForScopeFunc != nil {
		return m.FirstActiveForScopeFunc(ctx, scope)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var candidates []*domain.Account
	for _, acc := range m.accounts {
		if acc.ManagedBy == scope && acc.Status == domain.AccountStatusActive {
			candidates = append(candidates, acc)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates[0], nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	FindBySourceFunc func(ctx context.Context, module, sourceID string) (*domain.Entry, error)
	SumPostedFunc    func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.AutoPosted && entry.Status == domain.EntryStatusPosted {
		for _, e := range m.entries {
			if e.AutoPosted && e.Status == domain.EntryStatusPosted &&
				e.SourceModule == entry.SourceModule && e.SourceID == entry.SourceID {
				return domain.ErrDuplicatePosting
			}
		}
	}
	m.entries[entry.ID] = entry
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.entries, entry.ID)
	})
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) Find(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if filter.AccountID != "" && e.AccountID != filter.AccountID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		if filter.SourceModule != "" && e.SourceModule != filter.SourceModule {
			continue
		}
		if filter.SourceID != "" && e.SourceID != filter.SourceID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.AutoPosted != nil && e.AutoPosted != *filter.AutoPosted {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return paginate(entries, filter.Limit, filter.Offset), nil
}

func (m *MockEntryRepository) FindBySource(ctx context.Context, module, sourceID string) (*domain.Entry, error) {
	if m.FindBySourceFunc != nil {
		return m.FindBySourceFunc(ctx, module, sourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.AutoPosted && e.Status == domain.EntryStatusPosted &&
			e.SourceModule == module && e.SourceID == sourceID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *MockEntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	prev := e.Status
	e.Status = status
	e.UpdatedAt = updatedAt
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.entries[id]; ok {
			e.Status = prev
		}
	})
	return nil
}

func (m *MockEntryRepository) SetSourceRef(ctx context.Context, tx usecase.Transaction, id, module, sourceID string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.SourceModule = module
	e.SourceID = sourceID
	e.AutoPosted = true
	e.UpdatedAt = updatedAt
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.entries[id]; ok {
			e.SourceModule = ""
			e.SourceID = ""
			e.AutoPosted = false
		}
	})
	return nil
}

func (m *MockEntryRepository) SumPosted(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumPostedFunc != nil {
		return m.SumPostedFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	inflow, outflow := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.AccountID != accountID || e.Status != domain.EntryStatusPosted {
			continue
		}
		if e.Direction == domain.DirectionIn {
			inflow = inflow.Add(e.Amount)
		} else {
			outflow = outflow.Add(e.Amount)
		}
	}
	return inflow, outflow, nil
}

func (m *MockEntryRepository) CountByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, e := range m.entries {
		if e.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

// MockSourceRegistry is a mock implementation of SourceRegistry.
type MockSourceRegistry struct {
	mu      sync.RWMutex
	records map[string]bool

	RegisterFunc func(ctx context.Context, tx usecase.Transaction, module, sourceID string) error
}

func NewMockSourceRegistry() *MockSourceRegistry {
	return &MockSourceRegistry{
		records: make(map[string]bool),
	}
}

func sourceKey(module, sourceID string) string {
	return module + ":" + sourceID
}

func (m *MockSourceRegistry) Register(ctx context.Context, tx usecase.Transaction, module, sourceID string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, tx, module, sourceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sourceKey(module, sourceID)
	m.records[key] = true
	registerUndo(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.records, key)
	})
	return nil
}

func (m *MockSourceRegistry) Remove(ctx context.Context, tx usecase.Transaction, module, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sourceKey(module, sourceID)
	if m.records[key] {
		delete(m.records, key)
		registerUndo(tx, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.records[key] = true
		})
	}
	return nil
}

func (m *MockSourceRegistry) Exists(ctx context.Context, module, sourceID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[sourceKey(module, sourceID)], nil
}

// MockMonitorRepository is a mock implementation of MonitorRepository. When
// built over an entry repository and source registry it derives its answers
// from their contents, mirroring what the SQL views do.
type MockMonitorRepository struct {
	entries *MockEntryRepository
	sources *MockSourceRegistry

	FindDuplicateGroupsFunc func(ctx context.Context) ([]*domain.DuplicateGroup, error)
	FindOrphansFunc         func(ctx context.Context) ([]*domain.Entry, error)
	SummarizeAutoPostedFunc func(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error)
}

func NewMockMonitorRepository(entries *MockEntryRepository, sources *MockSourceRegistry) *MockMonitorRepository {
	return &MockMonitorRepository{entries: entries, sources: sources}
}

func (m *MockMonitorRepository) FindDuplicateGroups(ctx context.Context) ([]*domain.DuplicateGroup, error) {
	if m.FindDuplicateGroupsFunc != nil {
		return m.FindDuplicateGroupsFunc(ctx)
	}
	m.entries.mu.RLock()
	defer m.entries.mu.RUnlock()
	byKey := make(map[string]*domain.DuplicateGroup)
	for _, e := range m.entries.entries {
		if e.Status != domain.EntryStatusPosted {
			continue
		}
		day := e.Date.Truncate(24 * time.Hour)
		key := fmt.Sprintf("%s|%s|%s", e.Category, day.Format("2006-01-02"), e.Amount.String())
		group, ok := byKey[key]
		if !ok {
			group = &domain.DuplicateGroup{Category: e.Category, Date: day, Amount: e.Amount}
			byKey[key] = group
		}
		group.EntryIDs = append(group.EntryIDs, e.ID)
	}
	var groups []*domain.DuplicateGroup
	for _, g := range byKey {
		if len(g.EntryIDs) > 1 {
			sort.Strings(g.EntryIDs)
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (m *MockMonitorRepository) FindOrphans(ctx context.Context) ([]*domain.Entry, error) {
	if m.FindOrphansFunc != nil {
		return m.FindOrphansFunc(ctx)
	}
	m.entries.mu.RLock()
	defer m.entries.mu.RUnlock()
	var orphans []*domain.Entry
	for _, e := range m.entries.entries {
		if !e.AutoPosted || e.Status != domain.EntryStatusPosted {
			continue
		}
		exists, _ := m.sources.Exists(ctx, e.SourceModule, e.SourceID)
		if !exists {
			orphans = append(orphans, e)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
	return orphans, nil
}

func (m *MockMonitorRepository) SummarizeAutoPosted(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error) {
	if m.SummarizeAutoPostedFunc != nil {
		return m.SummarizeAutoPostedFunc(ctx, from, to)
	}
	m.entries.mu.RLock()
	defer m.entries.mu.RUnlock()
	byModule := make(map[string]*domain.AutoPostedSummary)
	for _, e := range m.entries.entries {
		if !e.AutoPosted || e.Status != domain.EntryStatusPosted {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		s, ok := byModule[e.SourceModule]
		if !ok {
			s = &domain.AutoPostedSummary{SourceModule: e.SourceModule, Total: decimal.Zero}
			byModule[e.SourceModule] = s
		}
		s.Count++
		s.Total = s.Total.Add(e.Signed())
	}
	var summaries []*domain.AutoPostedSummary
	for _, s := range byModule {
		s.Average = s.Total.Div(decimal.NewFromInt(s.Count))
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].SourceModule < summaries[j].SourceModule })
	return summaries, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
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
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
