package loyalty

import (
	"time"
)

// ===========================
// PunchRecord 實體
// ===========================

// PunchRecord 集點記錄（Punch Ledger 的一行）
//
// 設計原則：
// 1. Append-only：記錄一旦寫入，永不修改、永不刪除
// 2. 稽核性：每一點的來源（事件、原因、金額）都可追溯
// 3. 唯一創建者：只有 LoyaltyAccount.AwardPunches 能創建新記錄
//    （建構函數為 package-private，Repository 透過 Reconstruct 重建）
//
// 不變條件：
// - 同一 (accountID, cycleNumber) 的記錄數不超過當時生效的門檻
// - punchSequence 在週期內從 1 遞增
//
// 修正策略：
// 記錄寫錯不做 UPDATE/DELETE（沒有對應的 Repository 方法），
// 必要時由管理員以反向事件補償（目前業務上未發生過）
type PunchRecord struct {
	recordID      PunchRecordID
	accountID     AccountID
	customerID    CustomerID
	eventID       string // 來源事件（預約 ID 或推薦 ID）
	cycleNumber   int    // 所屬獎勵週期（從 1 起算）
	punchSequence int    // 週期內的第幾點（從 1 起算）
	reason        string // 服務名稱或 "Referral Bonus"
	amountSpent   ServicePrice
	grantedAt     time.Time
}

// newPunchRecord 創建新的集點記錄（package-private）
//
// 僅供 LoyaltyAccount.AwardPunches 使用——集點引擎是
// Punch Ledger 的唯一寫入者，外部無法繞過聚合根直接造點
func newPunchRecord(
	accountID AccountID,
	customerID CustomerID,
	eventID string,
	cycleNumber int,
	punchSequence int,
	reason string,
	amountSpent ServicePrice,
	grantedAt time.Time,
) *PunchRecord {
	return &PunchRecord{
		recordID:      NewPunchRecordID(),
		accountID:     accountID,
		customerID:    customerID,
		eventID:       eventID,
		cycleNumber:   cycleNumber,
		punchSequence: punchSequence,
		reason:        reason,
		amountSpent:   amountSpent,
		grantedAt:     grantedAt,
	}
}

// ReconstructPunchRecord 從持久化存儲重建集點記錄
//
// 僅供 Repository 使用。即使來自資料庫也做基本驗證，
// 防止損壞資料污染領域層
func ReconstructPunchRecord(
	recordID PunchRecordID,
	accountID AccountID,
	customerID CustomerID,
	eventID string,
	cycleNumber int,
	punchSequence int,
	reason string,
	amountSpent ServicePrice,
	grantedAt time.Time,
) (*PunchRecord, error) {
	if recordID.IsEmpty() {
		return nil, ErrInvalidPunchRecordID.WithContext(
			"reason", "invalid punch record ID in database",
		)
	}
	if accountID.IsEmpty() {
		return nil, ErrInvalidAccountID.WithContext(
			"reason", "invalid account ID in punch record",
		)
	}
	if cycleNumber < 1 || punchSequence < 1 {
		return nil, ErrCorruptedAccountState.WithContext(
			"record_id", recordID.String(),
			"cycle_number", cycleNumber,
			"punch_sequence", punchSequence,
		)
	}

	return &PunchRecord{
		recordID:      recordID,
		accountID:     accountID,
		customerID:    customerID,
		eventID:       eventID,
		cycleNumber:   cycleNumber,
		punchSequence: punchSequence,
		reason:        reason,
		amountSpent:   amountSpent,
		grantedAt:     grantedAt,
	}, nil
}

// ===========================
// 查詢方法（Getters）
// ===========================

// RecordID 獲取記錄 ID
func (r *PunchRecord) RecordID() PunchRecordID {
	return r.recordID
}

// AccountID 獲取所屬帳戶 ID
func (r *PunchRecord) AccountID() AccountID {
	return r.accountID
}

// CustomerID 獲取客戶 ID
func (r *PunchRecord) CustomerID() CustomerID {
	return r.customerID
}

// EventID 獲取來源事件 ID（預約或推薦）
func (r *PunchRecord) EventID() string {
	return r.eventID
}

// CycleNumber 獲取所屬獎勵週期編號
func (r *PunchRecord) CycleNumber() int {
	return r.cycleNumber
}

// PunchSequence 獲取週期內序號
func (r *PunchRecord) PunchSequence() int {
	return r.punchSequence
}

// Reason 獲取集點原因（服務名稱或 "Referral Bonus"）
func (r *PunchRecord) Reason() string {
	return r.reason
}

// AmountSpent 獲取當次消費金額
func (r *PunchRecord) AmountSpent() ServicePrice {
	return r.amountSpent
}

// GrantedAt 獲取集點時間
func (r *PunchRecord) GrantedAt() time.Time {
	return r.grantedAt
}
