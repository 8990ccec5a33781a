package loyalty

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ===========================
// PunchCount 值對象
// ===========================

// PunchCount 集點數量值對象
// 設計原則：值對象不可變、自我驗證
type PunchCount struct {
	value int
}

// NewPunchCount 建構函數（checked 版本）
// 對外部輸入進行完整驗證
//
// 建構約束：集點數量必須 >= 0（不存在負數集點的概念）
func NewPunchCount(value int) (PunchCount, error) {
	if value < 0 {
		return PunchCount{}, fmt.Errorf(
			"%w: attempted to create PunchCount with value %d",
			ErrNegativePunchCount,
			value,
		)
	}
	return PunchCount{value: value}, nil
}

// newPunchCountUnchecked 內部建構函數（unchecked 版本）
// 僅供內部使用，當我們確定值有效時使用（性能優化）
//
// 前提條件：調用者必須保證 value >= 0
func newPunchCountUnchecked(value int) PunchCount {
	return PunchCount{value: value}
}

// Value 獲取集點數量
func (p PunchCount) Value() int {
	return p.value
}

// Add 相加（返回新的 PunchCount，保持不變性）
//
// 設計假設：
// 集點受業務規則限制（單次發放 = 1 + 少量 bonus，帳戶餘額 < 門檻）
// 因此整數溢位在實際業務場景中不會發生
func (p PunchCount) Add(other PunchCount) PunchCount {
	return newPunchCountUnchecked(p.value + other.value)
}

// IsZero 判斷是否為零點
func (p PunchCount) IsZero() bool {
	return p.value == 0
}

// Equals 比較兩個 PunchCount 是否相等
func (p PunchCount) Equals(other PunchCount) bool {
	return p.value == other.value
}

// GreaterThan 判斷是否大於另一個 PunchCount
func (p PunchCount) GreaterThan(other PunchCount) bool {
	return p.value > other.value
}

// ===========================
// Threshold 值對象
// ===========================

// Threshold 集點門檻值對象
//
// 業務規則：
// - 集滿 Threshold 點獲得一次免費服務獎勵
// - 門檻必須在 1-100 之間（0 或負數門檻會讓每次集點無限觸發獎勵）
// - 可全域設定（Settings），亦可由單一帳戶覆寫（threshold_override）
type Threshold struct {
	value int
}

// thresholdMax 門檻上限
// 超過 100 點的集點卡在業務上不存在（產品約束，而非技術限制）
const thresholdMax = 100

// NewThreshold 建構函數（checked 版本）
//
// 建構約束：1 <= value <= 100
// 違反時返回 ErrInvalidThreshold（配置錯誤，不可重試）
func NewThreshold(value int) (Threshold, error) {
	if value < 1 || value > thresholdMax {
		return Threshold{}, ErrInvalidThreshold.WithContext(
			"value", value,
		)
	}
	return Threshold{value: value}, nil
}

// Value 獲取門檻值
func (t Threshold) Value() int {
	return t.value
}

// IsZero 判斷是否為零值（未設定）
//
// 使用場景：threshold_override 未設定時為零值
func (t Threshold) IsZero() bool {
	return t.value == 0
}

// Equals 比較兩個 Threshold 是否相等
func (t Threshold) Equals(other Threshold) bool {
	return t.value == other.value
}

// ===========================
// ServicePrice 值對象
// ===========================

// ServicePrice 服務金額值對象
//
// 設計原則：
// - 使用 decimal.Decimal 確保金額精確計算（避免浮點誤差）
// - 集點記錄上保存當次消費金額，供消費統計報表使用
// - 金額不參與集點判斷（集點按次數，不按金額）
type ServicePrice struct {
	amount decimal.Decimal
}

// NewServicePrice 建構函數（checked 版本）
//
// 建構約束：金額必須 >= 0（零元服務存在：招待、兌換免費服務）
func NewServicePrice(amount decimal.Decimal) (ServicePrice, error) {
	if amount.IsNegative() {
		return ServicePrice{}, ErrNegativeServicePrice.WithContext(
			"amount", amount.String(),
		)
	}
	return ServicePrice{amount: amount}, nil
}

// ServicePriceFromString 從字串解析服務金額
//
// 使用場景：
// - HTTP 請求以字串傳遞金額（避免 JSON number 精度問題）
// - 從資料庫讀取金額欄位
func ServicePriceFromString(s string) (ServicePrice, error) {
	if s == "" {
		// 未帶金額視為零元（金額是輔助資訊，不是集點前提）
		return ServicePrice{amount: decimal.Zero}, nil
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return ServicePrice{}, ErrNegativeServicePrice.WithContext(
			"input", s,
			"parse_error", err.Error(),
		)
	}

	return NewServicePrice(amount)
}

// ZeroServicePrice 零元金額
func ZeroServicePrice() ServicePrice {
	return ServicePrice{amount: decimal.Zero}
}

// Amount 獲取金額
func (p ServicePrice) Amount() decimal.Decimal {
	return p.amount
}

// Add 相加（返回新的 ServicePrice）
//
// 使用場景：集點摘要中的累計消費金額
func (p ServicePrice) Add(other ServicePrice) ServicePrice {
	return ServicePrice{amount: p.amount.Add(other.amount)}
}

// String 轉換為字串表示（例如 "1200" 或 "680.5"）
func (p ServicePrice) String() string {
	return p.amount.String()
}

// IsZero 判斷是否為零元
func (p ServicePrice) IsZero() bool {
	return p.amount.IsZero()
}

// Equals 比較兩個 ServicePrice 是否相等
func (p ServicePrice) Equals(other ServicePrice) bool {
	return p.amount.Equal(other.amount)
}
