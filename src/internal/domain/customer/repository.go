package customer

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// CustomerRepository Interface
// ===========================

// CustomerRepository 客戶倉儲接口
//
// 設計原則：
// - 接口定義在 Domain Layer（依賴反轉原則）
// - 具體實現在 Infrastructure Layer
// - 返回 Domain 對象，不暴露資料庫細節
// - 使用 TransactionContext 支持事務管理
//
// 事務管理策略（Transaction Management Strategy）：
//
// Write Operations (寫操作) - ctx 必須 non-nil (強制事務)：
//   - Save(): 創建或更新客戶（必須在事務中保證原子性）
//
// Read Operations (讀操作) - ctx 可為 nil (可選事務參與)：
//   - FindByCustomerID(): 根據 ID 查詢
//   - FindByPhoneNumber(): 根據手機號碼查詢
//   - FindByReferralCode(): 根據推薦碼查詢（註冊時解析推薦人）
//   - ExistsByPhoneNumber(): 檢查手機號碼是否存在（效能優化：COUNT 查詢）
//
// 如果 ctx != nil，讀操作參與當前事務（保證一致性）
// 如果 ctx == nil，讀操作使用獨立連接（提升性能）
//
// 使用場景範例：
//
// 1. 註冊流程（所有操作在同一事務中）：
//    txManager.InTransaction(func(ctx shared.TransactionContext) error {
//        exists, _ := repo.ExistsByPhoneNumber(ctx, phoneNumber)
//        if exists {
//            return ErrCustomerAlreadyExists
//        }
//        return repo.Save(ctx, customer)
//    })
//
// 2. 獨立查詢（不需要事務）：
//    customer, err := repo.FindByPhoneNumber(nil, phoneNumber)
//
// 注意事項：
// - Save() 用於新增和更新（Upsert 模式，基於 CustomerID）
// - FindByXXX() 找不到時返回 ErrCustomerNotFound
// - PhoneNumber 與 ReferralCode 唯一性由資料庫約束保證
type CustomerRepository interface {
	// Save 保存客戶（新增或更新）
	//
	// 參數：
	// - ctx: 事務上下文（必須 non-nil，寫操作需要事務）
	// - customer: 客戶聚合
	//
	// 返回：
	// - error: 手機號碼重複時返回 ErrCustomerAlreadyExists
	Save(ctx shared.TransactionContext, customer *Customer) error

	// FindByCustomerID 根據客戶 ID 查找客戶
	//
	// 返回：
	// - *Customer: 找到的客戶聚合
	// - error: 找不到時返回 ErrCustomerNotFound
	FindByCustomerID(ctx shared.TransactionContext, id CustomerID) (*Customer, error)

	// FindByPhoneNumber 根據手機號碼查找客戶
	//
	// 使用場景：
	// - 店員以手機號碼查詢客戶資料
	FindByPhoneNumber(ctx shared.TransactionContext, phoneNumber PhoneNumber) (*Customer, error)

	// FindByReferralCode 根據推薦碼查找客戶
	//
	// 使用場景：
	// - 新客戶註冊時解析推薦人
	FindByReferralCode(ctx shared.TransactionContext, code ReferralCode) (*Customer, error)

	// ExistsByPhoneNumber 檢查手機號碼是否已被註冊
	//
	// 使用場景：
	// - 註冊前檢查手機號碼是否重複
	// - 效能優化：比 Find 更輕量（只需 COUNT）
	ExistsByPhoneNumber(ctx shared.TransactionContext, phoneNumber PhoneNumber) (bool, error)
}
