package persistence

import (
	"errors"
	"testing"

	domainloyalty "github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	persistenceloyalty "github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ===========================
// TransactionManager Integration Tests
// ===========================
//
// 這些測試驗證 TransactionManager 的核心保證：
// 1. 事務隔離：錯誤時回滾，成功時提交
// 2. Panic 處理：panic 時自動回滾
// 3. 多操作原子性：多個操作在同一事務中成功或失敗

// setupTestDB 創建測試用的 SQLite in-memory 資料庫
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	err = db.AutoMigrate(
		&persistenceloyalty.LoyaltyAccountGORM{},
		&persistenceloyalty.PunchRecordGORM{},
		&persistenceloyalty.RedemptionRecordGORM{},
	)
	require.NoError(t, err, "failed to migrate database schema")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}

	return db, cleanup
}

// TestRollbackOnError 驗證事務回滾機制
//
// 場景：
// 1. 開啟事務
// 2. 執行操作（Save account）
// 3. 返回錯誤（模擬失敗）
// 4. 驗證事務已回滾（帳戶未保存）
func TestRollbackOnError_DoesNotCommit(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	txManager := NewGORMTransactionManager(db)
	repo := persistenceloyalty.NewLoyaltyAccountRepository(db)

	customerID := domainloyalty.NewCustomerID()

	// Act: 執行一個會失敗的事務
	err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
		// 1. 創建並保存帳戶
		account, _ := domainloyalty.NewLoyaltyAccount(customerID)
		err := repo.Save(ctx, account)
		require.NoError(t, err, "Save should succeed within transaction")

		// 2. 模擬錯誤 - 事務應該回滾
		return errors.New("simulated error - trigger rollback")
	})

	// Assert: 驗證事務返回錯誤
	require.Error(t, err)
	assert.Equal(t, "simulated error - trigger rollback", err.Error())

	// Assert: 驗證帳戶未保存（回滾成功）
	_, err = repo.FindByCustomerID(nil, customerID)
	assert.True(t, domainloyalty.ErrAccountNotFound.Is(err), "account should not exist after rollback")
}

// TestCommitOnSuccess_SavesData 驗證事務提交機制
func TestCommitOnSuccess_SavesData(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	txManager := NewGORMTransactionManager(db)
	repo := persistenceloyalty.NewLoyaltyAccountRepository(db)

	customerID := domainloyalty.NewCustomerID()
	var accountID domainloyalty.AccountID

	// Act: 執行一個成功的事務
	err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
		account, _ := domainloyalty.NewLoyaltyAccount(customerID)
		accountID = account.AccountID()
		return repo.Save(ctx, account)
	})

	// Assert: 驗證事務成功
	require.NoError(t, err)

	// Assert: 驗證帳戶已保存（提交成功）
	account, err := repo.FindByCustomerID(nil, customerID)
	require.NoError(t, err, "account should exist after commit")
	assert.Equal(t, accountID.String(), account.AccountID().String())
	assert.Equal(t, customerID.String(), account.CustomerID().String())
}

// TestPanicRecovery_RollsBackAndRepanics 驗證 panic 處理
//
// 預期結果：
// - 事務應該回滾
// - panic 應該被重新拋出（由調用者處理）
func TestPanicRecovery_RollsBackAndRepanics(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	txManager := NewGORMTransactionManager(db)
	repo := persistenceloyalty.NewLoyaltyAccountRepository(db)

	customerID := domainloyalty.NewCustomerID()

	// Act & Assert: 執行會 panic 的事務，並捕獲 panic
	assert.Panics(t, func() {
		_ = txManager.InTransaction(func(ctx shared.TransactionContext) error {
			account, _ := domainloyalty.NewLoyaltyAccount(customerID)
			err := repo.Save(ctx, account)
			require.NoError(t, err, "Save should succeed within transaction")

			panic("simulated panic - should rollback")
		})
	}, "panic should be re-thrown")

	// Assert: 驗證帳戶未保存（回滾成功）
	_, err := repo.FindByCustomerID(nil, customerID)
	assert.True(t, domainloyalty.ErrAccountNotFound.Is(err), "account should not exist after panic rollback")
}

// TestMultipleOperations_AtomicCommit 驗證多操作原子性
//
// 集點引擎的寫入模式：帳戶更新 + Ledger 追加必須同生共死
func TestMultipleOperations_AtomicCommit(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	txManager := NewGORMTransactionManager(db)
	accountRepo := persistenceloyalty.NewLoyaltyAccountRepository(db)
	punchRepo := persistenceloyalty.NewPunchRecordRepository(db)

	customerID := domainloyalty.NewCustomerID()
	var accountID domainloyalty.AccountID

	// Act: 在同一事務中保存帳戶 + 集點記錄
	err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
		account, _ := domainloyalty.NewLoyaltyAccount(customerID)
		accountID = account.AccountID()
		if err := accountRepo.Save(ctx, account); err != nil {
			return err
		}

		one, _ := domainloyalty.NewPunchCount(1)
		threshold, _ := domainloyalty.NewThreshold(9)
		outcome, err := account.AwardPunches(one, "Appointment Completed", "appt-001", domainloyalty.ZeroServicePrice(), threshold, true)
		if err != nil {
			return err
		}

		if err := accountRepo.Update(ctx, account); err != nil {
			return err
		}
		return punchRepo.SaveBatch(ctx, outcome.Records)
	})

	// Assert: 驗證事務成功
	require.NoError(t, err)

	// Assert: 帳戶與記錄都存在
	account, err := accountRepo.FindByCustomerID(nil, customerID)
	require.NoError(t, err, "account should exist")
	assert.Equal(t, 1, account.CurrentPunches().Value())

	records, err := punchRepo.FindByAccountID(nil, accountID)
	require.NoError(t, err)
	assert.Len(t, records, 1, "punch record should exist")
}

// TestMultipleOperations_AtomicRollback 驗證多操作原子回滾
//
// 預期結果：
// - 帳戶與集點記錄都不存在（即使各自的寫入成功）
// - 事務整體回滾
func TestMultipleOperations_AtomicRollback(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	txManager := NewGORMTransactionManager(db)
	accountRepo := persistenceloyalty.NewLoyaltyAccountRepository(db)
	punchRepo := persistenceloyalty.NewPunchRecordRepository(db)

	customerID := domainloyalty.NewCustomerID()
	var accountID domainloyalty.AccountID

	// Act: 在同一事務中，寫入成功後返回錯誤
	err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
		account, _ := domainloyalty.NewLoyaltyAccount(customerID)
		accountID = account.AccountID()
		if err := accountRepo.Save(ctx, account); err != nil {
			return err
		}

		one, _ := domainloyalty.NewPunchCount(1)
		threshold, _ := domainloyalty.NewThreshold(9)
		outcome, err := account.AwardPunches(one, "Appointment Completed", "appt-001", domainloyalty.ZeroServicePrice(), threshold, true)
		if err != nil {
			return err
		}
		if err := punchRepo.SaveBatch(ctx, outcome.Records); err != nil {
			return err
		}

		// 模擬後續操作失敗
		return errors.New("second operation failed")
	})

	// Assert: 驗證事務失敗
	require.Error(t, err)

	// Assert: 驗證帳戶與記錄都不存在（原子回滾）
	_, err = accountRepo.FindByCustomerID(nil, customerID)
	assert.True(t, domainloyalty.ErrAccountNotFound.Is(err), "account should not exist after rollback")

	records, err := punchRepo.FindByAccountID(nil, accountID)
	require.NoError(t, err)
	assert.Empty(t, records, "punch records should not exist after rollback")
}

// TestRepository_NilContext_AutoCommitMode 驗證 nil context 的 auto-commit 行為
//
// 這個測試驗證了 TransactionContext 文檔中的 "ctx == nil" 語義：
// 讀操作不強制要求事務參與
func TestRepository_NilContext_AutoCommitMode(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := persistenceloyalty.NewLoyaltyAccountRepository(db)

	customerID := domainloyalty.NewCustomerID()
	account, _ := domainloyalty.NewLoyaltyAccount(customerID)

	// 先在事務中保存一個帳戶（為後續查詢準備數據）
	txManager := NewGORMTransactionManager(db)
	err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
		return repo.Save(ctx, account)
	})
	require.NoError(t, err, "setup: save account should succeed")

	// Act: 使用 nil context 進行查詢（auto-commit 模式）
	foundAccount, err := repo.FindByCustomerID(nil, customerID)

	// Assert: 驗證查詢成功
	require.NoError(t, err, "FindByCustomerID with nil context should succeed")
	assert.NotNil(t, foundAccount)
	assert.Equal(t, account.AccountID().String(), foundAccount.AccountID().String())
}
