package customer

import (
	"errors"
	"strings"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
)

// gormTransactionContext GORM 事務上下文
type gormTransactionContext interface {
	shared.TransactionContext
	GetDB() *gorm.DB
}

// ===========================
// CustomerRepositoryImpl
// ===========================

// CustomerRepositoryImpl 客戶倉儲實現（GORM）
//
// 設計原則：
// - 實作 customer.CustomerRepository 接口
// - 處理 Domain 與 GORM 模型轉換
// - 將 GORM 錯誤轉換為 Domain 錯誤
type CustomerRepositoryImpl struct {
	db *gorm.DB
}

// NewCustomerRepository 創建新的客戶倉儲實例
func NewCustomerRepository(db *gorm.DB) customer.CustomerRepository {
	return &CustomerRepositoryImpl{db: db}
}

// Save 保存客戶（新增或更新）
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例
// 2. 將 Domain 模型轉換為 GORM 模型
// 3. 使用 GORM Save (Upsert)
//
// 錯誤處理：
// - UNIQUE constraint 違反（手機號碼或推薦碼重複）→ ErrCustomerAlreadyExists
// - 其他資料庫錯誤 → 原始錯誤
func (r *CustomerRepositoryImpl) Save(ctx shared.TransactionContext, c *customer.Customer) error {
	db := r.getDB(ctx)

	gormModel := toGORM(c)

	result := db.Save(gormModel)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return customer.ErrCustomerAlreadyExists.WithContext(
				"phone_number", c.PhoneNumber().String(),
			)
		}
		return result.Error
	}

	return nil
}

// FindByCustomerID 根據客戶 ID 查找客戶
//
// 錯誤處理：
// - gorm.ErrRecordNotFound → customer.ErrCustomerNotFound
func (r *CustomerRepositoryImpl) FindByCustomerID(ctx shared.TransactionContext, id customer.CustomerID) (*customer.Customer, error) {
	db := r.getDB(ctx)

	var gormModel CustomerGORM

	result := db.Where("customer_id = ?", id.String()).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound.WithContext(
				"customer_id", id.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// FindByPhoneNumber 根據手機號碼查找客戶
//
// 業務規則：手機號碼唯一（unique index 保證）
func (r *CustomerRepositoryImpl) FindByPhoneNumber(ctx shared.TransactionContext, phoneNumber customer.PhoneNumber) (*customer.Customer, error) {
	db := r.getDB(ctx)

	var gormModel CustomerGORM

	result := db.Where("phone_number = ?", phoneNumber.String()).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound.WithContext(
				"phone_number", phoneNumber.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// FindByReferralCode 根據推薦碼查找客戶
//
// 使用場景：註冊時解析推薦碼，找出推薦人
func (r *CustomerRepositoryImpl) FindByReferralCode(ctx shared.TransactionContext, code customer.ReferralCode) (*customer.Customer, error) {
	db := r.getDB(ctx)

	var gormModel CustomerGORM

	result := db.Where("referral_code = ?", code.String()).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound.WithContext(
				"referral_code", code.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// ExistsByPhoneNumber 檢查手機號碼是否已註冊
func (r *CustomerRepositoryImpl) ExistsByPhoneNumber(ctx shared.TransactionContext, phoneNumber customer.PhoneNumber) (bool, error) {
	db := r.getDB(ctx)

	var count int64

	result := db.Model(&CustomerGORM{}).
		Where("phone_number = ?", phoneNumber.String()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// ===========================
// Helper Methods
// ===========================

// getDB 獲取 GORM DB 實例
//
// 行為：
//   - ctx != nil: 使用事務中的 DB（從 TransactionContext 獲取）
//   - ctx == nil: 使用預設 DB（auto-commit 模式）
func (r *CustomerRepositoryImpl) getDB(ctx shared.TransactionContext) *gorm.DB {
	if ctx != nil {
		if txCtx, ok := ctx.(gormTransactionContext); ok {
			return txCtx.GetDB()
		}
	}
	return r.db
}

// isUniqueConstraintError 判斷是否為唯一約束錯誤
//
// 支持的資料庫：
// - PostgreSQL: "duplicate key value violates unique constraint"
// - SQLite: "UNIQUE constraint failed"
// - MySQL: "Duplicate entry"
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())

	// PostgreSQL
	if strings.Contains(errMsg, "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite
	if strings.Contains(errMsg, "unique constraint failed") {
		return true
	}

	// MySQL
	if strings.Contains(errMsg, "duplicate entry") {
		return true
	}

	return false
}
