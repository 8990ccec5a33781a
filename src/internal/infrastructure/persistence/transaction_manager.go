package persistence

import (
	"fmt"

	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionManager 實作
// ===========================

// gormTransactionManager GORM 事務管理器實作
//
// 職責：
// 1. 開啟資料庫事務（Begin）
// 2. 將事務封裝為 TransactionContext 傳遞給業務函數
// 3. 業務函數返回錯誤時回滾（Rollback）
// 4. 業務函數 panic 時回滾後重新拋出（資源不洩漏）
// 5. 正常結束時提交（Commit）
//
// 行鎖生命週期：
// Repository 在事務中取得的行鎖（SELECT ... FOR UPDATE）
// 在 Commit / Rollback 時由資料庫釋放
type gormTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 創建 GORM 事務管理器
//
// 參數：
// - db: GORM 資料庫連接（根連接，非事務）
//
// 返回：
// - shared.TransactionManager: 事務管理器介面
func NewGORMTransactionManager(db *gorm.DB) shared.TransactionManager {
	return &gormTransactionManager{db: db}
}

// InTransaction 在事務中執行業務函數
//
// 使用範例：
//   err := txManager.InTransaction(func(ctx shared.TransactionContext) error {
//       account, err := accountRepo.FindByCustomerIDForUpdate(ctx, customerID)
//       if err != nil {
//           return err // 自動回滾
//       }
//       return accountRepo.Update(ctx, account) // 成功則自動提交
//   })
func (m *gormTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	tx := m.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// panic 時回滾後重新拋出，避免事務連接洩漏
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(NewGORMTransactionContext(tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
