package loyalty

import (
	"sort"
	"sync"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// Mock TransactionContext
// ===========================

// mockTxContext 模擬事務上下文
//
// 持有本事務取得的行鎖釋放函數，
// 事務結束時由 MockTransactionManager 統一釋放
type mockTxContext struct {
	mu      sync.Mutex
	unlocks []func()
}

func (c *mockTxContext) registerUnlock(unlock func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlocks = append(c.unlocks, unlock)
}

func (c *mockTxContext) releaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	// 後進先出釋放
	for i := len(c.unlocks) - 1; i >= 0; i-- {
		c.unlocks[i]()
	}
	c.unlocks = nil
}

// ===========================
// Mock TransactionManager
// ===========================

// MockTransactionManager 模擬事務管理器
//
// 行鎖語意：fn 執行期間持有的行鎖在 fn 返回後釋放
// （對應真實資料庫的 commit/rollback 釋放鎖）
type MockTransactionManager struct {
	mu                     sync.Mutex
	InTransactionCallCount int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	m.mu.Lock()
	m.InTransactionCallCount++
	m.mu.Unlock()

	ctx := &mockTxContext{}
	defer ctx.releaseAll()

	return fn(ctx)
}

// ===========================
// Mock LoyaltyAccountRepository
// ===========================

// MockLoyaltyAccountRepository 帳戶倉儲 Mock
//
// FindByCustomerIDForUpdate 以每客戶一把 mutex 模擬
// SELECT ... FOR UPDATE 的行鎖：同一客戶的並發事務被序列化，
// 鎖在事務結束時釋放
type MockLoyaltyAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*loyalty.LoyaltyAccount
	rowLocks map[string]*sync.Mutex

	SaveCallCount   int
	UpdateCallCount int
}

func NewMockLoyaltyAccountRepository() *MockLoyaltyAccountRepository {
	return &MockLoyaltyAccountRepository{
		accounts: make(map[string]*loyalty.LoyaltyAccount),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func (m *MockLoyaltyAccountRepository) Save(ctx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++

	key := account.CustomerID().String()
	if _, exists := m.accounts[key]; exists {
		return loyalty.ErrAccountAlreadyExists
	}

	m.accounts[key] = account
	return nil
}

func (m *MockLoyaltyAccountRepository) FindByCustomerID(ctx shared.TransactionContext, customerID loyalty.CustomerID) (*loyalty.LoyaltyAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account, exists := m.accounts[customerID.String()]; exists {
		return account, nil
	}
	return nil, loyalty.ErrAccountNotFound
}

func (m *MockLoyaltyAccountRepository) FindByCustomerIDForUpdate(ctx shared.TransactionContext, customerID loyalty.CustomerID) (*loyalty.LoyaltyAccount, error) {
	// 取得該客戶的行鎖（事務結束時釋放）
	m.mu.Lock()
	rowLock, exists := m.rowLocks[customerID.String()]
	if !exists {
		rowLock = &sync.Mutex{}
		m.rowLocks[customerID.String()] = rowLock
	}
	m.mu.Unlock()

	rowLock.Lock()
	if txCtx, ok := ctx.(*mockTxContext); ok {
		txCtx.registerUnlock(rowLock.Unlock)
	} else {
		// 無事務上下文時立即釋放（不應發生，寫操作必須在事務中）
		defer rowLock.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if account, exists := m.accounts[customerID.String()]; exists {
		return account, nil
	}
	return nil, loyalty.ErrAccountNotFound
}

func (m *MockLoyaltyAccountRepository) Update(ctx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCallCount++
	m.accounts[account.CustomerID().String()] = account
	return nil
}

// ===========================
// Mock PunchRecordRepository
// ===========================

type MockPunchRecordRepository struct {
	mu      sync.Mutex
	records []*loyalty.PunchRecord

	SaveBatchCallCount int
}

func NewMockPunchRecordRepository() *MockPunchRecordRepository {
	return &MockPunchRecordRepository{}
}

func (m *MockPunchRecordRepository) SaveBatch(ctx shared.TransactionContext, records []*loyalty.PunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveBatchCallCount++
	m.records = append(m.records, records...)
	return nil
}

func (m *MockPunchRecordRepository) FindByAccountID(ctx shared.TransactionContext, accountID loyalty.AccountID) ([]*loyalty.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []*loyalty.PunchRecord
	for _, record := range m.records {
		if record.AccountID().Equals(accountID) {
			found = append(found, record)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].CycleNumber() != found[j].CycleNumber() {
			return found[i].CycleNumber() < found[j].CycleNumber()
		}
		return found[i].PunchSequence() < found[j].PunchSequence()
	})
	return found, nil
}

func (m *MockPunchRecordRepository) CountByCycle(ctx shared.TransactionContext, accountID loyalty.AccountID, cycleNumber int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, record := range m.records {
		if record.AccountID().Equals(accountID) && record.CycleNumber() == cycleNumber {
			count++
		}
	}
	return count, nil
}

func (m *MockPunchRecordRepository) TotalAmountSpent(ctx shared.TransactionContext, accountID loyalty.AccountID) (loyalty.ServicePrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := loyalty.ZeroServicePrice()
	for _, record := range m.records {
		if record.AccountID().Equals(accountID) {
			total = total.Add(record.AmountSpent())
		}
	}
	return total, nil
}

// ===========================
// Mock RedemptionRecordRepository
// ===========================

type MockRedemptionRecordRepository struct {
	mu      sync.Mutex
	records []*loyalty.RedemptionRecord

	SaveCallCount   int
	UpdateCallCount int

	// AfterFindPendingOlderThan 在候選清單返回前調用，
	// 供測試在「快照讀取」與「條件式寫入」之間插入並發變更
	AfterFindPendingOlderThan func()
}

func NewMockRedemptionRecordRepository() *MockRedemptionRecordRepository {
	return &MockRedemptionRecordRepository{}
}

func (m *MockRedemptionRecordRepository) Save(ctx shared.TransactionContext, record *loyalty.RedemptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++

	// 唯一約束：同一帳戶同一週期至多一筆
	for _, existing := range m.records {
		if existing.AccountID().Equals(record.AccountID()) && existing.CycleNumber() == record.CycleNumber() {
			return loyalty.ErrRepositoryError.WithContext(
				"reason", "duplicate redemption for cycle",
				"cycle_number", record.CycleNumber(),
			)
		}
	}

	m.records = append(m.records, record)
	return nil
}

func (m *MockRedemptionRecordRepository) Update(ctx shared.TransactionContext, record *loyalty.RedemptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCallCount++
	return nil
}

func (m *MockRedemptionRecordRepository) FindOldestPending(ctx shared.TransactionContext, accountID loyalty.AccountID) (*loyalty.RedemptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldest *loyalty.RedemptionRecord
	for _, record := range m.records {
		if !record.AccountID().Equals(accountID) || !record.IsPending() {
			continue
		}
		if oldest == nil || record.CycleNumber() < oldest.CycleNumber() {
			oldest = record
		}
	}
	if oldest == nil {
		return nil, loyalty.ErrRedemptionNotFound
	}
	return oldest, nil
}

func (m *MockRedemptionRecordRepository) FindPendingOlderThan(ctx shared.TransactionContext, cutoff time.Time) ([]*loyalty.RedemptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []*loyalty.RedemptionRecord
	for _, record := range m.records {
		if record.IsPending() && record.EarnedAt().Before(cutoff) {
			stale = append(stale, record)
		}
	}
	if m.AfterFindPendingOlderThan != nil {
		m.AfterFindPendingOlderThan()
	}
	return stale, nil
}

func (m *MockRedemptionRecordRepository) MarkExpiredIfPending(ctx shared.TransactionContext, redemptionID loyalty.RedemptionID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range m.records {
		if !record.RedemptionID().Equals(redemptionID) {
			continue
		}
		// 狀態守衛：非 pending 的記錄不覆寫
		if !record.IsPending() {
			return false, nil
		}
		if err := record.MarkExpired(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (m *MockRedemptionRecordRepository) CountPending(ctx shared.TransactionContext, accountID loyalty.AccountID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, record := range m.records {
		if record.AccountID().Equals(accountID) && record.IsPending() {
			count++
		}
	}
	return count, nil
}

// ===========================
// Mock LoyaltySettingsRepository
// ===========================

type MockLoyaltySettingsRepository struct {
	mu       sync.Mutex
	settings loyalty.LoyaltySettings
	stored   bool

	LoadCallCount int
}

func NewMockLoyaltySettingsRepository() *MockLoyaltySettingsRepository {
	return &MockLoyaltySettingsRepository{}
}

func (m *MockLoyaltySettingsRepository) Load(ctx shared.TransactionContext) (loyalty.LoyaltySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadCallCount++
	if !m.stored {
		return loyalty.DefaultLoyaltySettings(), nil
	}
	return m.settings, nil
}

func (m *MockLoyaltySettingsRepository) Store(ctx shared.TransactionContext, settings loyalty.LoyaltySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = settings
	m.stored = true
	return nil
}
