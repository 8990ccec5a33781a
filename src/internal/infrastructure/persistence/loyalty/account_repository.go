package loyalty

import (
	"errors"
	"strings"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTransactionContext GORM 事務上下文
type gormTransactionContext interface {
	shared.TransactionContext
	GetDB() *gorm.DB
}

// ===========================
// LoyaltyAccountRepositoryImpl
// ===========================

// LoyaltyAccountRepositoryImpl 集點帳戶倉儲實現（GORM）
//
// 設計原則：
// - 實作 loyalty.LoyaltyAccountRepository 接口
// - 處理 Domain 與 GORM 模型轉換
// - 封裝所有資料庫操作細節
// - 將 GORM 錯誤轉換為 Domain 錯誤
//
// 依賴：
// - *gorm.DB: GORM 資料庫實例（由 DI 容器注入）
type LoyaltyAccountRepositoryImpl struct {
	db *gorm.DB
}

// NewLoyaltyAccountRepository 創建新的集點帳戶倉儲實例
//
// 參數：
//   - db: GORM 資料庫實例
//
// 返回：
//   - loyalty.LoyaltyAccountRepository: 倉儲接口實例
func NewLoyaltyAccountRepository(db *gorm.DB) loyalty.LoyaltyAccountRepository {
	return &LoyaltyAccountRepositoryImpl{db: db}
}

// Save 保存新的集點帳戶
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例
// 2. 將 Domain 模型轉換為 GORM 模型
// 3. 使用 GORM Create（新增記錄）
// 4. 處理唯一約束衝突錯誤
//
// 並發行為：兩個事務同時為同一客戶懶創建帳戶時，
// customer_id 唯一索引仲裁——後到者拿到
// ErrAccountAlreadyExists，由調用方重讀重試
//
// 錯誤處理：
// - UNIQUE constraint 違反（customer_id 重複）→ ErrAccountAlreadyExists
// - 其他資料庫錯誤 → 原始錯誤
func (r *LoyaltyAccountRepositoryImpl) Save(ctx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	// 1. 獲取 DB 實例
	db := r.getDB(ctx)

	// 2. 轉換為 GORM 模型
	gormModel := accountToGORM(account)

	// 3. 執行 Create
	result := db.Create(gormModel)
	if result.Error != nil {
		// 4. 處理唯一約束錯誤
		if isUniqueConstraintError(result.Error) {
			return loyalty.ErrAccountAlreadyExists.WithContext(
				"customer_id", account.CustomerID().String(),
			)
		}
		return result.Error
	}

	return nil
}

// FindByCustomerID 根據客戶 ID 查找集點帳戶（不加鎖）
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例
// 2. 使用 GORM Where + First 查詢
// 3. 將 GORM 模型轉換為 Domain 模型
// 4. 處理 Not Found 錯誤
//
// 業務規則：一個客戶對應一個集點帳戶（1:1 關係，由 unique index 保證）
//
// 錯誤處理：
// - gorm.ErrRecordNotFound → loyalty.ErrAccountNotFound
// - 其他資料庫錯誤 → 原始錯誤
func (r *LoyaltyAccountRepositoryImpl) FindByCustomerID(ctx shared.TransactionContext, customerID loyalty.CustomerID) (*loyalty.LoyaltyAccount, error) {
	// 1. 獲取 DB 實例
	db := r.getDB(ctx)

	var gormModel LoyaltyAccountGORM

	// 2. 查詢資料庫
	result := db.Where("customer_id = ?", customerID.String()).First(&gormModel)
	if result.Error != nil {
		// 3. 處理 Not Found
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrAccountNotFound.WithContext(
				"customer_id", customerID.String(),
			)
		}
		return nil, result.Error
	}

	// 4. 轉換為 Domain 模型
	return gormModel.toDomain()
}

// FindByCustomerIDForUpdate 根據客戶 ID 查找並鎖定集點帳戶
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例（必須在事務中）
// 2. 使用 SELECT ... FOR UPDATE 取得行鎖
// 3. 將 GORM 模型轉換為 Domain 模型
//
// 行鎖語義：
// - PostgreSQL: clause.Locking 生成 FOR UPDATE，鎖在事務結束時釋放
// - SQLite: 忽略 FOR UPDATE，靠資料庫級寫鎖序列化（單機測試場景）
//
// 錯誤處理：
// - gorm.ErrRecordNotFound → loyalty.ErrAccountNotFound
// - 其他資料庫錯誤 → 原始錯誤
func (r *LoyaltyAccountRepositoryImpl) FindByCustomerIDForUpdate(ctx shared.TransactionContext, customerID loyalty.CustomerID) (*loyalty.LoyaltyAccount, error) {
	// 1. 獲取 DB 實例
	db := r.getDB(ctx)

	var gormModel LoyaltyAccountGORM

	// 2. 加鎖查詢
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID.String()).
		First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrAccountNotFound.WithContext(
				"customer_id", customerID.String(),
			)
		}
		return nil, result.Error
	}

	// 3. 轉換為 Domain 模型
	return gormModel.toDomain()
}

// Update 更新集點帳戶
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例
// 2. 將 Domain 模型轉換為 GORM 模型
// 3. 使用 GORM Save (Upsert: 存在則更新，不存在則新增)
//
// 注意：使用 Save 而非 Updates，因為：
// - Save 會更新所有字段（包括零值）
// - Updates 會忽略零值字段
// - current_punches 集滿歸零後需要正確寫回 0
//
// 錯誤處理：
// - UNIQUE constraint 違反 → ErrAccountAlreadyExists
// - 其他資料庫錯誤 → 原始錯誤
func (r *LoyaltyAccountRepositoryImpl) Update(ctx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	// 1. 獲取 DB 實例
	db := r.getDB(ctx)

	// 2. 轉換為 GORM 模型
	gormModel := accountToGORM(account)

	// 3. 執行 Save (Upsert)
	result := db.Save(gormModel)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return loyalty.ErrAccountAlreadyExists.WithContext(
				"account_id", account.AccountID().String(),
			)
		}
		return result.Error
	}

	return nil
}

// ===========================
// Helper Methods
// ===========================

// getDB 獲取 GORM DB 實例
//
// 參數：
//   - ctx: 事務上下文（可為 nil）
//
// 返回：
//   - *gorm.DB: GORM 資料庫實例
//
// 行為：
//   - ctx != nil: 使用事務中的 DB（從 TransactionContext 獲取）
//   - ctx == nil: 使用預設 DB（auto-commit 模式）
func getDB(defaultDB *gorm.DB, ctx shared.TransactionContext) *gorm.DB {
	if ctx != nil {
		if txCtx, ok := ctx.(gormTransactionContext); ok {
			return txCtx.GetDB()
		}
	}
	return defaultDB
}

func (r *LoyaltyAccountRepositoryImpl) getDB(ctx shared.TransactionContext) *gorm.DB {
	return getDB(r.db, ctx)
}

// isUniqueConstraintError 判斷是否為唯一約束錯誤
//
// 支持的資料庫：
// - PostgreSQL: "duplicate key value violates unique constraint"
// - SQLite: "UNIQUE constraint failed"
// - MySQL: "Duplicate entry"
//
// 參數：
//   - err: GORM 錯誤
//
// 返回：
//   - bool: 是否為唯一約束錯誤
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
