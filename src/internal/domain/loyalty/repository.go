package loyalty

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// LoyaltyAccount Repository 介面
// ===========================

// LoyaltyAccountRepository 集點帳戶倉儲介面
//
// 設計原則：
// 1. 依賴倒置原則（DIP）：Domain Layer 定義介面，Infrastructure Layer 實作
// 2. 聚合根持久化：每個聚合根一個 Repository
// 3. 事務支持：使用 TransactionContext 封裝事務，避免基礎設施洩漏
//
// 行鎖約定（集點引擎的唯一並發控制手段）：
//   txManager.InTransaction(func(ctx shared.TransactionContext) error {
//       account, _ := repo.FindByCustomerIDForUpdate(ctx, customerID)
//       outcome, _ := account.AwardPunches(...)
//       _ = repo.Update(ctx, account)
//       _ = punchRepo.SaveBatch(ctx, outcome.Records)
//       ...
//   })
// 同一客戶的集點操作被行鎖序列化；不同客戶互不阻塞
type LoyaltyAccountRepository interface {
	// Save 保存新的集點帳戶
	// 前置條件：帳戶不存在（CustomerID 唯一）；ctx 必須 non-nil
	// 錯誤：ErrAccountAlreadyExists（如果 CustomerID 已存在）
	Save(ctx shared.TransactionContext, account *LoyaltyAccount) error

	// FindByCustomerID 根據客戶 ID 查找集點帳戶（不加鎖）
	// ctx 可為 nil（獨立讀，auto-commit）
	// 返回：找到的帳戶，或 ErrAccountNotFound
	FindByCustomerID(ctx shared.TransactionContext, customerID CustomerID) (*LoyaltyAccount, error)

	// FindByCustomerIDForUpdate 根據客戶 ID 查找並鎖定集點帳戶
	//
	// 以 SELECT ... FOR UPDATE 取得行鎖，序列化同一客戶的
	// 讀-算-寫序列；鎖在事務提交/回滾時釋放
	//
	// 前置條件：ctx 必須 non-nil（行鎖只在事務中有意義）
	// 返回：找到的帳戶，或 ErrAccountNotFound
	FindByCustomerIDForUpdate(ctx shared.TransactionContext, customerID CustomerID) (*LoyaltyAccount, error)

	// Update 更新集點帳戶
	// 前置條件：帳戶已存在；ctx 必須 non-nil
	Update(ctx shared.TransactionContext, account *LoyaltyAccount) error
}

// ===========================
// PunchRecord Repository 介面
// ===========================

// PunchRecordRepository 集點記錄倉儲介面
//
// Append-only 約定：介面刻意不提供 Update / Delete——
// Punch Ledger 是不可變的稽核日誌
type PunchRecordRepository interface {
	// SaveBatch 批次追加集點記錄
	// 一次發放的多點（1 + 加碼）在同一事務中一起寫入
	// 前置條件：ctx 必須 non-nil（必須與帳戶更新同一事務）
	SaveBatch(ctx shared.TransactionContext, records []*PunchRecord) error

	// FindByAccountID 查詢帳戶的全部集點記錄（按時間、序號排序）
	// ctx 可為 nil
	FindByAccountID(ctx shared.TransactionContext, accountID AccountID) ([]*PunchRecord, error)

	// CountByCycle 統計某週期的集點記錄數
	// 使用場景：稽核檢查（週期記錄數不得超過當時門檻）
	// ctx 可為 nil
	CountByCycle(ctx shared.TransactionContext, accountID AccountID, cycleNumber int) (int64, error)

	// TotalAmountSpent 統計帳戶的累計消費金額（字串表示的 decimal 總和）
	// 使用場景：集點摘要報表
	// ctx 可為 nil
	TotalAmountSpent(ctx shared.TransactionContext, accountID AccountID) (ServicePrice, error)
}

// ===========================
// RedemptionRecord Repository 介面
// ===========================

// RedemptionRecordRepository 兌換記錄倉儲介面
//
// 狀態轉換是唯一的修改：Update 只應在 MarkRedeemed / MarkExpired
// 之後調用，創建後的其他欄位不可變
type RedemptionRecordRepository interface {
	// Save 保存新的兌換記錄（集滿門檻時由集點引擎創建）
	// 前置條件：ctx 必須 non-nil
	// 錯誤：唯一約束違反（同一帳戶同一週期重複）原樣傳遞
	Save(ctx shared.TransactionContext, record *RedemptionRecord) error

	// Update 更新兌換記錄狀態（核銷 / 過期）
	// 前置條件：ctx 必須 non-nil；記錄已在本事務中以行鎖讀出
	Update(ctx shared.TransactionContext, record *RedemptionRecord) error

	// MarkExpiredIfPending 條件式過期標記（pending → expired）
	//
	// 原子的「僅當仍為 pending 時標記」：清掃的候選清單可能已
	// 過時（讀取後被並發核銷），不可憑記憶體副本覆寫終態。
	// 返回 false 表示記錄已非 pending，該筆跳過
	//
	// 前置條件：ctx 必須 non-nil
	MarkExpiredIfPending(ctx shared.TransactionContext, redemptionID RedemptionID) (bool, error)

	// FindOldestPending 查找帳戶最早的待兌換記錄（週期編號最小者）
	// 使用場景：核銷時先兌早期獎勵
	// 返回：找到的記錄，或 ErrRedemptionNotFound
	FindOldestPending(ctx shared.TransactionContext, accountID AccountID) (*RedemptionRecord, error)

	// FindPendingOlderThan 查找所有早於 cutoff 獲得且仍 pending 的記錄
	// 使用場景：定時清掃（過期標記）
	// ctx 可為 nil
	FindPendingOlderThan(ctx shared.TransactionContext, cutoff time.Time) ([]*RedemptionRecord, error)

	// CountPending 統計帳戶的待兌換記錄數
	// ctx 可為 nil
	CountPending(ctx shared.TransactionContext, accountID AccountID) (int64, error)
}

// ===========================
// LoyaltySettings Repository 介面
// ===========================

// LoyaltySettingsRepository 集點設定倉儲介面
//
// 設計決策：集點引擎每次操作時讀取（不快取），
// 管理員調整門檻/加碼後下一筆集點立即生效
type LoyaltySettingsRepository interface {
	// Load 讀取當前集點設定
	// 設定資料列不存在時返回 DefaultLoyaltySettings()（首次部署）
	// ctx 可為 nil；在集點事務中傳入 ctx 保證一致性
	Load(ctx shared.TransactionContext) (LoyaltySettings, error)

	// Store 寫入集點設定（管理員操作）
	// 前置條件：ctx 必須 non-nil
	Store(ctx shared.TransactionContext, settings LoyaltySettings) error
}

// ===========================
// Repository 錯誤定義
// ===========================

// Repository 相關錯誤代碼
const (
	ErrCodeAccountNotFound      ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountAlreadyExists ErrorCode = "ACCOUNT_ALREADY_EXISTS"
	ErrCodeRedemptionNotFound   ErrorCode = "REDEMPTION_NOT_FOUND"
	ErrCodeRepositoryError      ErrorCode = "REPOSITORY_ERROR"
)

// Repository 錯誤實例
var (
	// ErrAccountNotFound 帳戶不存在
	ErrAccountNotFound = &DomainError{
		Code:    ErrCodeAccountNotFound,
		Message: "集點帳戶不存在",
	}

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = &DomainError{
		Code:    ErrCodeAccountAlreadyExists,
		Message: "集點帳戶已存在",
	}

	// ErrRedemptionNotFound 兌換記錄不存在
	ErrRedemptionNotFound = &DomainError{
		Code:    ErrCodeRedemptionNotFound,
		Message: "兌換記錄不存在",
	}

	// ErrRepositoryError 倉儲操作錯誤（通用）
	ErrRepositoryError = &DomainError{
		Code:    ErrCodeRepositoryError,
		Message: "倉儲操作失敗",
	}
)
