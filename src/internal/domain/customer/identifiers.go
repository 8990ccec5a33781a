package customer

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// 設計原則：使用泛型 EntityID[T] 消除重複代碼
//
// 類型安全保證：
// - CustomerID 是獨立類型（編譯器強制檢查）
// - 不能與其他 Bounded Context 的 ID 混用

// ===========================
// CustomerID - 客戶 ID
// ===========================

// CustomerMarker 是 CustomerID 的標記類型
type CustomerMarker struct{}

// CustomerID 客戶的唯一標識符
//
// 實現：EntityID[CustomerMarker] 的類型別名
// 使用：id := NewCustomerID() 或 CustomerIDFromString(s)
type CustomerID = shared.EntityID[CustomerMarker]

// NewCustomerID 生成新的客戶 ID（UUID v4）
//
// 返回：新生成的 CustomerID
//
// 使用場景：客戶註冊時
func NewCustomerID() CustomerID {
	return shared.NewEntityID[CustomerMarker]()
}

// CustomerIDFromString 從字串解析客戶 ID
//
// 參數：
//   s - UUID 字串
//
// 返回：
//   CustomerID - 解析成功的 ID
//   error - 解析失敗（返回 ErrInvalidCustomerID）
//
// 使用場景：
// - 從數據庫讀取客戶信息
// - API 請求解析
func CustomerIDFromString(s string) (CustomerID, error) {
	return shared.EntityIDFromString[CustomerMarker](s, ErrInvalidCustomerID)
}
