package customer

// ===========================
// Customer Domain 錯誤定義
// ===========================

// ErrorCode Customer Domain 錯誤代碼
type ErrorCode string

// Customer Domain 錯誤代碼常量
const (
	ErrCodeInvalidPhoneNumberFormat ErrorCode = "INVALID_PHONE_NUMBER_FORMAT"
	ErrCodeInvalidReferralCode      ErrorCode = "INVALID_REFERRAL_CODE"
	ErrCodeCustomerAlreadyExists    ErrorCode = "CUSTOMER_ALREADY_EXISTS"
	ErrCodeCustomerNotFound         ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeInvalidCustomerID        ErrorCode = "INVALID_CUSTOMER_ID"
	ErrCodeInvalidCustomerName      ErrorCode = "INVALID_CUSTOMER_NAME"
	ErrCodeReferrerAlreadySet       ErrorCode = "REFERRER_ALREADY_SET"
	ErrCodeSelfReferral             ErrorCode = "SELF_REFERRAL"
)

// DomainError Customer Domain 錯誤結構
//
// 設計原則：
// 1. 不使用 fmt.Errorf 或 errors.New（避免字串錯誤）
// 2. 使用結構化錯誤（ErrorCode + Message + Context）
// 3. 支援錯誤包裝（errors.Is 檢查）
// 4. 提供上下文信息（WithContext 方法）
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實作 error 介面
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}

	// 包含上下文信息
	return e.Message + " (context: " + formatContext(e.Context) + ")"
}

// WithContext 添加上下文信息
//
// 使用範例：
//   return ErrInvalidPhoneNumberFormat.WithContext("phone", phoneNumber, "reason", "不是10位數字")
func (e *DomainError) WithContext(keyValues ...interface{}) *DomainError {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	newErr := &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: make(map[string]interface{}),
	}

	// 複製現有上下文
	for k, v := range e.Context {
		newErr.Context[k] = v
	}

	// 添加新上下文
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic("WithContext keys must be strings")
		}
		newErr.Context[key] = keyValues[i+1]
	}

	return newErr
}

// Is 實作 errors.Is 比較
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// formatContext 格式化上下文信息
func formatContext(context map[string]interface{}) string {
	if len(context) == 0 {
		return ""
	}

	result := ""
	for k, v := range context {
		if result != "" {
			result += ", "
		}
		result += k + "=" + formatValue(v)
	}
	return result
}

// formatValue 格式化單個值
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return "<value>"
	}
}

// ===========================
// Customer Domain 錯誤實例
// ===========================

var (
	// ErrInvalidPhoneNumberFormat 手機號碼格式無效
	//
	// 觸發條件：
	// - 不是10位數字
	// - 不是以 "09" 開頭
	// - 包含非數字字符
	ErrInvalidPhoneNumberFormat = &DomainError{
		Code:    ErrCodeInvalidPhoneNumberFormat,
		Message: "手機號碼格式無效（必須是10位數字，且以09開頭）",
	}

	// ErrInvalidReferralCode 推薦碼格式無效
	//
	// 觸發條件：
	// - 長度不是 8 位
	// - 包含易混淆字符以外的非法字符
	ErrInvalidReferralCode = &DomainError{
		Code:    ErrCodeInvalidReferralCode,
		Message: "推薦碼格式無效（必須是 8 位大寫英數字）",
	}

	// ErrCustomerAlreadyExists 客戶已存在（手機號碼重複）
	ErrCustomerAlreadyExists = &DomainError{
		Code:    ErrCodeCustomerAlreadyExists,
		Message: "客戶已存在",
	}

	// ErrCustomerNotFound 客戶不存在
	ErrCustomerNotFound = &DomainError{
		Code:    ErrCodeCustomerNotFound,
		Message: "客戶不存在",
	}

	// ErrInvalidCustomerID 客戶 ID 無效
	ErrInvalidCustomerID = &DomainError{
		Code:    ErrCodeInvalidCustomerID,
		Message: "客戶 ID 格式無效",
	}

	// ErrInvalidCustomerName 客戶姓名無效
	//
	// 觸發條件：
	// - 姓名為空字串
	ErrInvalidCustomerName = &DomainError{
		Code:    ErrCodeInvalidCustomerName,
		Message: "客戶姓名不能為空",
	}

	// ErrReferrerAlreadySet 推薦人已設定
	//
	// 觸發條件：
	// - 嘗試修改已設定的推薦人
	//
	// 業務規則：
	// - 推薦關係在註冊時建立，之後不可變更
	ErrReferrerAlreadySet = &DomainError{
		Code:    ErrCodeReferrerAlreadySet,
		Message: "推薦人已設定，無法修改",
	}

	// ErrSelfReferral 不允許自我推薦
	ErrSelfReferral = &DomainError{
		Code:    ErrCodeSelfReferral,
		Message: "不允許使用自己的推薦碼",
	}
)
