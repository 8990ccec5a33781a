package loyalty

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
type ErrorCode string

// 錯誤代碼常量
//
// 錯誤分類（對應集點引擎的三類失敗）：
// 1. 配置錯誤（configuration）：門檻/設定無效，不可重試，需人工修正
// 2. 參照錯誤（referential）：引用的客戶/事件不存在
// 3. 倉儲/事務錯誤（transaction）：由 Infrastructure 層原樣傳遞，調用者決定重試
const (
	// 集點數量相關
	ErrCodeNegativePunchCount ErrorCode = "PUNCH_COUNT_NEGATIVE"
	ErrCodeNoPunchesToAward   ErrorCode = "PUNCH_GRANT_EMPTY"

	// 門檻相關（配置錯誤）
	ErrCodeInvalidThreshold ErrorCode = "THRESHOLD_INVALID"
	ErrCodeInvalidSettings  ErrorCode = "LOYALTY_SETTINGS_INVALID"

	// 消費金額相關
	ErrCodeNegativeServicePrice ErrorCode = "SERVICE_PRICE_NEGATIVE"

	// 參照錯誤
	ErrCodeInvalidAwardEvent ErrorCode = "AWARD_EVENT_INVALID"

	// 兌換相關
	ErrCodeNoRewardToRedeem      ErrorCode = "REWARD_NONE_REDEEMABLE"
	ErrCodeRedemptionNotPending  ErrorCode = "REDEMPTION_NOT_PENDING"
	ErrCodeInvalidRedemptionCycle ErrorCode = "REDEMPTION_CYCLE_INVALID"

	// ID 相關
	ErrCodeInvalidAccountID     ErrorCode = "ACCOUNT_ID_INVALID"
	ErrCodeInvalidCustomerID    ErrorCode = "CUSTOMER_ID_INVALID"
	ErrCodeInvalidPunchRecordID ErrorCode = "PUNCH_RECORD_ID_INVALID"
	ErrCodeInvalidRedemptionID  ErrorCode = "REDEMPTION_ID_INVALID"

	// 資料損壞（Reconstruct 驗證失敗）
	ErrCodeCorruptedAccountState ErrorCode = "ACCOUNT_STATE_CORRUPTED"
)

// ===========================
// DomainError 結構
// ===========================

// DomainError 領域錯誤
// 設計原則：
// 1. 包含結構化的錯誤代碼（用於 HTTP 狀態碼映射）
// 2. 支持上下文信息（用於調試和日誌）
// 3. 不可變性（創建後不可修改）
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實現 error 接口
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文信息（返回新的錯誤實例，保持不可變性）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)

	// 複製現有上下文
	for k, v := range e.Context {
		ctx[k] = v
	}

	// 添加新上下文
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 實現 errors.Is 接口（用於錯誤類型判斷）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ===========================
// 預定義錯誤
// ===========================

// 集點數量相關錯誤
var (
	ErrNegativePunchCount = &DomainError{
		Code:    ErrCodeNegativePunchCount,
		Message: "集點數量不能為負數",
	}

	ErrNoPunchesToAward = &DomainError{
		Code:    ErrCodeNoPunchesToAward,
		Message: "至少需要發放 1 點",
	}
)

// 門檻/設定相關錯誤（配置錯誤，不可重試）
var (
	ErrInvalidThreshold = &DomainError{
		Code:    ErrCodeInvalidThreshold,
		Message: "集點門檻必須在 1-100 之間",
	}

	ErrInvalidSettings = &DomainError{
		Code:    ErrCodeInvalidSettings,
		Message: "無效的集點設定",
	}
)

// 消費金額相關錯誤
var (
	ErrNegativeServicePrice = &DomainError{
		Code:    ErrCodeNegativeServicePrice,
		Message: "服務金額不能為負數",
	}
)

// 參照錯誤
var (
	ErrInvalidAwardEvent = &DomainError{
		Code:    ErrCodeInvalidAwardEvent,
		Message: "集點事件參照無效",
	}
)

// 兌換相關錯誤
var (
	ErrNoRewardToRedeem = &DomainError{
		Code:    ErrCodeNoRewardToRedeem,
		Message: "沒有可兌換的獎勵",
	}

	ErrRedemptionNotPending = &DomainError{
		Code:    ErrCodeRedemptionNotPending,
		Message: "兌換記錄不在待兌換狀態",
	}

	ErrInvalidRedemptionCycle = &DomainError{
		Code:    ErrCodeInvalidRedemptionCycle,
		Message: "無效的獎勵週期編號",
	}
)

// ID 相關錯誤
var (
	ErrInvalidAccountID = &DomainError{
		Code:    ErrCodeInvalidAccountID,
		Message: "無效的帳戶 ID",
	}

	ErrInvalidCustomerID = &DomainError{
		Code:    ErrCodeInvalidCustomerID,
		Message: "無效的客戶 ID",
	}

	ErrInvalidPunchRecordID = &DomainError{
		Code:    ErrCodeInvalidPunchRecordID,
		Message: "無效的集點記錄 ID",
	}

	ErrInvalidRedemptionID = &DomainError{
		Code:    ErrCodeInvalidRedemptionID,
		Message: "無效的兌換記錄 ID",
	}
)

// 資料損壞錯誤
var (
	ErrCorruptedAccountState = &DomainError{
		Code:    ErrCodeCorruptedAccountState,
		Message: "帳戶資料違反不變條件",
	}
)
