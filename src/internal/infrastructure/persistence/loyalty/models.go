package loyalty

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
)

// ===========================
// GORM Models
// ===========================

// LoyaltyAccountGORM 集點帳戶資料表模型
//
// 設計原則：
// - 僅用於 Infrastructure Layer（不暴露給 Domain Layer）
// - 使用 GORM 標籤定義資料庫結構
// - 與 Domain LoyaltyAccount 聚合分離（Mapper 轉換）
//
// 資料庫約束：
// - account_id: 主鍵（UUID）
// - customer_id: 唯一索引（一個客戶對應一個集點帳戶）
// - 計數欄位非負（check 約束攔截損壞寫入）
// - threshold_override: NULL 表示使用全域預設門檻
type LoyaltyAccountGORM struct {
	// 識別欄位
	AccountID  string `gorm:"column:account_id;type:varchar(36);primaryKey"`
	CustomerID string `gorm:"column:customer_id;type:varchar(36);uniqueIndex;not null"`

	// 集點數據
	CurrentPunches  int `gorm:"column:current_punches;not null;default:0;check:current_punches >= 0"`
	TotalVisits     int `gorm:"column:total_visits;not null;default:0;check:total_visits >= 0"`
	RewardsEarned   int `gorm:"column:rewards_earned;not null;default:0;check:rewards_earned >= 0"`
	RewardsRedeemed int `gorm:"column:rewards_redeemed;not null;default:0;check:rewards_redeemed >= 0"`

	// 個別門檻覆寫（NULL = 使用全域預設）
	ThresholdOverride *int `gorm:"column:threshold_override"`

	// 審計欄位
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (LoyaltyAccountGORM) TableName() string {
	return "loyalty_accounts"
}

// PunchRecordGORM 集點記錄資料表模型（Punch Ledger）
//
// Append-only：應用層永不 UPDATE / DELETE 此表
//
// 資料庫約束：
// - record_id: 主鍵（UUID）
// - (account_id, cycle_number, punch_sequence): 複合索引（查詢與稽核）
// - amount_spent: 以字串保存 decimal，避免浮點誤差
type PunchRecordGORM struct {
	RecordID   string `gorm:"column:record_id;type:varchar(36);primaryKey"`
	AccountID  string `gorm:"column:account_id;type:varchar(36);not null;index:idx_punch_account_cycle,priority:1"`
	CustomerID string `gorm:"column:customer_id;type:varchar(36);not null;index"`
	EventID    string `gorm:"column:event_id;type:varchar(64);not null"`

	CycleNumber   int    `gorm:"column:cycle_number;not null;index:idx_punch_account_cycle,priority:2;check:cycle_number >= 1"`
	PunchSequence int    `gorm:"column:punch_sequence;not null;check:punch_sequence >= 1"`
	Reason        string `gorm:"column:reason;type:varchar(128);not null"`
	AmountSpent   string `gorm:"column:amount_spent;type:varchar(32);not null;default:'0'"`

	GrantedAt time.Time `gorm:"column:granted_at;not null"`
}

// TableName 指定資料表名稱
func (PunchRecordGORM) TableName() string {
	return "punch_records"
}

// RedemptionRecordGORM 兌換記錄資料表模型（Redemption Ledger）
//
// 資料庫約束：
// - redemption_id: 主鍵（UUID）
// - (account_id, cycle_number): 唯一索引——同一帳戶同一週期
//   至多一筆兌換記錄（業務不變條件的最後防線）
// - status: pending / redeemed / expired
type RedemptionRecordGORM struct {
	RedemptionID string `gorm:"column:redemption_id;type:varchar(36);primaryKey"`
	AccountID    string `gorm:"column:account_id;type:varchar(36);not null;uniqueIndex:idx_redemption_account_cycle,priority:1"`
	CycleNumber  int    `gorm:"column:cycle_number;not null;uniqueIndex:idx_redemption_account_cycle,priority:2;check:cycle_number >= 1"`
	Status       string `gorm:"column:status;type:varchar(16);not null;index"`

	EarnedAt   time.Time  `gorm:"column:earned_at;not null;index"`
	RedeemedAt *time.Time `gorm:"column:redeemed_at"`
}

// TableName 指定資料表名稱
func (RedemptionRecordGORM) TableName() string {
	return "redemption_records"
}

// LoyaltySettingsGORM 集點設定資料表模型
//
// 單列表：id 固定為 1，Store 以 Upsert 寫入
type LoyaltySettingsGORM struct {
	ID               int `gorm:"column:id;primaryKey"`
	DefaultThreshold int `gorm:"column:default_threshold;not null;check:default_threshold >= 1"`
	FirstVisitBonus  int `gorm:"column:first_visit_bonus;not null;default:0;check:first_visit_bonus >= 0"`
	ReferrerBonus    int `gorm:"column:referrer_bonus;not null;default:0;check:referrer_bonus >= 0"`
	RefereeBonus     int `gorm:"column:referee_bonus;not null;default:0;check:referee_bonus >= 0"`

	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (LoyaltySettingsGORM) TableName() string {
	return "loyalty_settings"
}

// ===========================
// Mapper Functions
// ===========================

// toDomain 將帳戶 GORM 模型轉換為 Domain 聚合
//
// 重建時驗證不變條件：損壞資料在此被攔截，
// 不會以非法狀態進入 Domain Layer
func (g *LoyaltyAccountGORM) toDomain() (*loyalty.LoyaltyAccount, error) {
	accountID, err := loyalty.AccountIDFromString(g.AccountID)
	if err != nil {
		return nil, err
	}

	customerID, err := loyalty.CustomerIDFromString(g.CustomerID)
	if err != nil {
		return nil, err
	}

	return loyalty.ReconstructLoyaltyAccount(
		accountID,
		customerID,
		g.CurrentPunches,
		g.TotalVisits,
		g.RewardsEarned,
		g.RewardsRedeemed,
		g.ThresholdOverride,
		g.CreatedAt,
		g.UpdatedAt,
	)
}

// accountToGORM 將 Domain 聚合轉換為帳戶 GORM 模型
func accountToGORM(account *loyalty.LoyaltyAccount) *LoyaltyAccountGORM {
	var override *int
	if account.HasThresholdOverride() {
		value := account.ThresholdOverride().Value()
		override = &value
	}

	return &LoyaltyAccountGORM{
		AccountID:         account.AccountID().String(),
		CustomerID:        account.CustomerID().String(),
		CurrentPunches:    account.CurrentPunches().Value(),
		TotalVisits:       account.TotalVisits(),
		RewardsEarned:     account.RewardsEarned(),
		RewardsRedeemed:   account.RewardsRedeemed(),
		ThresholdOverride: override,
		CreatedAt:         account.CreatedAt(),
		UpdatedAt:         account.UpdatedAt(),
	}
}

// toDomain 將集點記錄 GORM 模型轉換為 Domain 實體
func (g *PunchRecordGORM) toDomain() (*loyalty.PunchRecord, error) {
	recordID, err := loyalty.PunchRecordIDFromString(g.RecordID)
	if err != nil {
		return nil, err
	}

	accountID, err := loyalty.AccountIDFromString(g.AccountID)
	if err != nil {
		return nil, err
	}

	customerID, err := loyalty.CustomerIDFromString(g.CustomerID)
	if err != nil {
		return nil, err
	}

	amountSpent, err := loyalty.ServicePriceFromString(g.AmountSpent)
	if err != nil {
		return nil, err
	}

	return loyalty.ReconstructPunchRecord(
		recordID,
		accountID,
		customerID,
		g.EventID,
		g.CycleNumber,
		g.PunchSequence,
		g.Reason,
		amountSpent,
		g.GrantedAt,
	)
}

// punchToGORM 將 Domain 實體轉換為集點記錄 GORM 模型
func punchToGORM(record *loyalty.PunchRecord) *PunchRecordGORM {
	return &PunchRecordGORM{
		RecordID:      record.RecordID().String(),
		AccountID:     record.AccountID().String(),
		CustomerID:    record.CustomerID().String(),
		EventID:       record.EventID(),
		CycleNumber:   record.CycleNumber(),
		PunchSequence: record.PunchSequence(),
		Reason:        record.Reason(),
		AmountSpent:   record.AmountSpent().String(),
		GrantedAt:     record.GrantedAt(),
	}
}

// toDomain 將兌換記錄 GORM 模型轉換為 Domain 實體
func (g *RedemptionRecordGORM) toDomain() (*loyalty.RedemptionRecord, error) {
	redemptionID, err := loyalty.RedemptionIDFromString(g.RedemptionID)
	if err != nil {
		return nil, err
	}

	accountID, err := loyalty.AccountIDFromString(g.AccountID)
	if err != nil {
		return nil, err
	}

	return loyalty.ReconstructRedemptionRecord(
		redemptionID,
		accountID,
		g.CycleNumber,
		loyalty.RedemptionStatus(g.Status),
		g.EarnedAt,
		g.RedeemedAt,
	)
}

// redemptionToGORM 將 Domain 實體轉換為兌換記錄 GORM 模型
func redemptionToGORM(record *loyalty.RedemptionRecord) *RedemptionRecordGORM {
	return &RedemptionRecordGORM{
		RedemptionID: record.RedemptionID().String(),
		AccountID:    record.AccountID().String(),
		CycleNumber:  record.CycleNumber(),
		Status:       string(record.Status()),
		EarnedAt:     record.EarnedAt(),
		RedeemedAt:   record.RedeemedAt(),
	}
}

// settingsToDomain 將設定 GORM 模型轉換為 Domain 值對象
func (g *LoyaltySettingsGORM) toDomain() (loyalty.LoyaltySettings, error) {
	return loyalty.NewLoyaltySettings(
		g.DefaultThreshold,
		g.FirstVisitBonus,
		g.ReferrerBonus,
		g.RefereeBonus,
	)
}

// settingsToGORM 將 Domain 值對象轉換為設定 GORM 模型
func settingsToGORM(settings loyalty.LoyaltySettings) *LoyaltySettingsGORM {
	return &LoyaltySettingsGORM{
		ID:               settingsRowID,
		DefaultThreshold: settings.DefaultThreshold().Value(),
		FirstVisitBonus:  settings.FirstVisitBonus().Value(),
		ReferrerBonus:    settings.ReferrerBonus().Value(),
		RefereeBonus:     settings.RefereeBonus().Value(),
	}
}
