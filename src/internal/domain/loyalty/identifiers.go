package loyalty

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// 設計原則：使用泛型 EntityID[T] 消除重複代碼
//
// 類型安全保證：
// - AccountID、CustomerID、PunchRecordID、RedemptionID 是不同類型（編譯器強制檢查）
// - 不能將 AccountID 賦值給 CustomerID 變量
// - 不能比較不同類型的 ID（編譯錯誤）
//
// 注意：loyalty 的 CustomerID 與 customer bounded context 的 CustomerID
// 各自定義（共享同一個 UUID 字串表示）。跨 context 只傳遞字串，
// 避免 bounded context 之間的類型耦合。

// ===========================
// AccountID - 集點帳戶 ID
// ===========================

// AccountMarker 是 AccountID 的標記類型
type AccountMarker struct{}

// AccountID 集點帳戶的唯一標識符
type AccountID = shared.EntityID[AccountMarker]

// NewAccountID 生成新的集點帳戶 ID（UUID v4）
//
// 使用場景：首次集點時延遲創建帳戶
func NewAccountID() AccountID {
	return shared.NewEntityID[AccountMarker]()
}

// AccountIDFromString 從字串解析集點帳戶 ID
func AccountIDFromString(s string) (AccountID, error) {
	return shared.EntityIDFromString[AccountMarker](s, ErrInvalidAccountID)
}

// ===========================
// CustomerID - 客戶 ID
// ===========================

// CustomerMarker 是 CustomerID 的標記類型
type CustomerMarker struct{}

// CustomerID 客戶的唯一標識符
type CustomerID = shared.EntityID[CustomerMarker]

// NewCustomerID 生成新的客戶 ID（UUID v4）
//
// 使用場景：測試構建；正式流程中客戶 ID 由 customer context 發出
func NewCustomerID() CustomerID {
	return shared.NewEntityID[CustomerMarker]()
}

// CustomerIDFromString 從字串解析客戶 ID
//
// 使用場景：
// - 從 HTTP 請求解析客戶 ID
// - 從資料庫讀取 ID
func CustomerIDFromString(s string) (CustomerID, error) {
	return shared.EntityIDFromString[CustomerMarker](s, ErrInvalidCustomerID)
}

// ===========================
// PunchRecordID - 集點記錄 ID
// ===========================

// PunchRecordMarker 是 PunchRecordID 的標記類型
type PunchRecordMarker struct{}

// PunchRecordID 集點記錄（Punch Ledger 行）的唯一標識符
type PunchRecordID = shared.EntityID[PunchRecordMarker]

// NewPunchRecordID 生成新的集點記錄 ID（UUID v4）
func NewPunchRecordID() PunchRecordID {
	return shared.NewEntityID[PunchRecordMarker]()
}

// PunchRecordIDFromString 從字串解析集點記錄 ID
func PunchRecordIDFromString(s string) (PunchRecordID, error) {
	return shared.EntityIDFromString[PunchRecordMarker](s, ErrInvalidPunchRecordID)
}

// ===========================
// RedemptionID - 兌換記錄 ID
// ===========================

// RedemptionMarker 是 RedemptionID 的標記類型
type RedemptionMarker struct{}

// RedemptionID 兌換記錄（Redemption Ledger 行）的唯一標識符
type RedemptionID = shared.EntityID[RedemptionMarker]

// NewRedemptionID 生成新的兌換記錄 ID（UUID v4）
func NewRedemptionID() RedemptionID {
	return shared.NewEntityID[RedemptionMarker]()
}

// RedemptionIDFromString 從字串解析兌換記錄 ID
func RedemptionIDFromString(s string) (RedemptionID, error) {
	return shared.EntityIDFromString[RedemptionMarker](s, ErrInvalidRedemptionID)
}
