package customer

import (
	"crypto/rand"
	"regexp"
)

// ===========================
// ReferralCode Value Object
// ===========================

// ReferralCode 推薦碼值對象
//
// 業務規則：
// 1. 固定 8 位長度
// 2. 由大寫英文字母與數字組成
// 3. 排除易混淆字符（0/O、1/I/L），方便店員口頭轉達與輸入
//
// 設計原則：
// - 不可變性（Immutability）：所有欄位為 unexported
// - 自我驗證（Self-validation）：建構函數強制驗證
//
// 使用範例：
//   code := GenerateReferralCode()          // 註冊時自動生成
//   code, err := NewReferralCode("ABCD2345") // 從輸入解析
type ReferralCode struct {
	value string
}

// referralCodeAlphabet 推薦碼字符集（排除 0/O/1/I/L）
const referralCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// referralCodeLength 推薦碼固定長度
const referralCodeLength = 8

// referralCodePattern 推薦碼格式正則表達式
var referralCodePattern = regexp.MustCompile(`^[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{8}$`)

// NewReferralCode 從字串創建推薦碼值對象（Checked Constructor)
//
// 參數：
// - value: 原始推薦碼字串
//
// 返回：
// - ReferralCode: 驗證通過的推薦碼值對象
// - error: 驗證失敗時返回 ErrInvalidReferralCode
//
// 錯誤範例：
// - "ABC" (長度不足) → ErrInvalidReferralCode
// - "ABCD23O5" (包含易混淆字符 O) → ErrInvalidReferralCode
// - "abcd2345" (小寫) → ErrInvalidReferralCode
func NewReferralCode(value string) (ReferralCode, error) {
	if !referralCodePattern.MatchString(value) {
		return ReferralCode{}, ErrInvalidReferralCode.WithContext(
			"code", value,
			"reason", "must be 8 uppercase alphanumeric characters",
		)
	}

	return ReferralCode{value: value}, nil
}

// GenerateReferralCode 生成新的隨機推薦碼
//
// 使用場景：客戶註冊時自動分配
//
// 唯一性：由資料庫唯一索引保證，碰撞時由調用方重試
// （31^8 ≈ 8500 億組合，實務上碰撞機率極低）
func GenerateReferralCode() ReferralCode {
	buf := make([]byte, referralCodeLength)
	// crypto/rand.Read 在所有支援平台上不會失敗
	_, _ = rand.Read(buf)

	for i, b := range buf {
		buf[i] = referralCodeAlphabet[int(b)%len(referralCodeAlphabet)]
	}

	return ReferralCode{value: string(buf)}
}

// String 返回推薦碼字串表示
func (r ReferralCode) String() string {
	return r.value
}

// Equals 比較兩個推薦碼是否相等
func (r ReferralCode) Equals(other ReferralCode) bool {
	return r.value == other.value
}

// IsZero 檢查是否為零值
func (r ReferralCode) IsZero() bool {
	return r.value == ""
}
