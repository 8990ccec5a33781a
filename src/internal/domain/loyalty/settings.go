package loyalty

// ===========================
// LoyaltySettings 值對象
// ===========================

// LoyaltySettings 集點設定值對象
//
// 內容：
// - defaultThreshold: 全域預設門檻（集滿幾點獲得獎勵，例如 9）
// - firstVisitBonus: 首次來店加碼點數（0 表示不加碼）
// - referrerBonus: 推薦人獎勵點數
// - refereeBonus: 被推薦人獎勵點數
//
// 設計原則：
// - 值對象不可變、自我驗證
// - 集點引擎在每次操作時讀取（不快取），設定變更即時生效
// - 帳戶層級的 threshold_override 優先於 defaultThreshold
type LoyaltySettings struct {
	defaultThreshold Threshold
	firstVisitBonus  PunchCount
	referrerBonus    PunchCount
	refereeBonus     PunchCount
}

// NewLoyaltySettings 建構函數（checked 版本）
//
// 參數：
//   defaultThreshold - 預設門檻（1-100）
//   firstVisitBonus - 首次來店加碼點數（>= 0）
//   referrerBonus - 推薦人獎勵點數（>= 0）
//   refereeBonus - 被推薦人獎勵點數（>= 0）
//
// 返回：
//   LoyaltySettings - 驗證通過的設定
//   error - ErrInvalidThreshold / ErrNegativePunchCount
//
// 錯誤分類：配置錯誤（不可重試，需人工修正設定）
func NewLoyaltySettings(
	defaultThreshold int,
	firstVisitBonus int,
	referrerBonus int,
	refereeBonus int,
) (LoyaltySettings, error) {
	threshold, err := NewThreshold(defaultThreshold)
	if err != nil {
		return LoyaltySettings{}, err
	}

	firstVisit, err := NewPunchCount(firstVisitBonus)
	if err != nil {
		return LoyaltySettings{}, ErrInvalidSettings.WithContext(
			"field", "first_visit_bonus",
			"value", firstVisitBonus,
		)
	}

	referrer, err := NewPunchCount(referrerBonus)
	if err != nil {
		return LoyaltySettings{}, ErrInvalidSettings.WithContext(
			"field", "referrer_bonus",
			"value", referrerBonus,
		)
	}

	referee, err := NewPunchCount(refereeBonus)
	if err != nil {
		return LoyaltySettings{}, ErrInvalidSettings.WithContext(
			"field", "referee_bonus",
			"value", refereeBonus,
		)
	}

	return LoyaltySettings{
		defaultThreshold: threshold,
		firstVisitBonus:  firstVisit,
		referrerBonus:    referrer,
		refereeBonus:     referee,
	}, nil
}

// DefaultLoyaltySettings 預設設定
//
// 門檻 9 點、首次來店不加碼、推薦雙方各 1 點
// 使用場景：settings 資料表尚未初始化時的 fallback
func DefaultLoyaltySettings() LoyaltySettings {
	settings, _ := NewLoyaltySettings(9, 0, 1, 1)
	return settings
}

// DefaultThreshold 獲取預設門檻
func (s LoyaltySettings) DefaultThreshold() Threshold {
	return s.defaultThreshold
}

// FirstVisitBonus 獲取首次來店加碼點數
func (s LoyaltySettings) FirstVisitBonus() PunchCount {
	return s.firstVisitBonus
}

// ReferrerBonus 獲取推薦人獎勵點數
func (s LoyaltySettings) ReferrerBonus() PunchCount {
	return s.referrerBonus
}

// RefereeBonus 獲取被推薦人獎勵點數
func (s LoyaltySettings) RefereeBonus() PunchCount {
	return s.refereeBonus
}
