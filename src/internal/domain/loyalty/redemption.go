package loyalty

import (
	"time"
)

// ===========================
// RedemptionStatus 值對象
// ===========================

// RedemptionStatus 兌換記錄狀態
//
// 生命週期：pending → redeemed（終態）或 pending → expired（終態）
type RedemptionStatus string

const (
	// RedemptionPending 待兌換（集滿門檻時創建的初始狀態）
	RedemptionPending RedemptionStatus = "pending"
	// RedemptionRedeemed 已兌換（店員核銷，終態）
	RedemptionRedeemed RedemptionStatus = "redeemed"
	// RedemptionExpired 已過期（定時清掃標記，終態）
	RedemptionExpired RedemptionStatus = "expired"
)

// IsValid 判斷是否為合法狀態值
func (s RedemptionStatus) IsValid() bool {
	switch s {
	case RedemptionPending, RedemptionRedeemed, RedemptionExpired:
		return true
	}
	return false
}

// IsTerminal 判斷是否為終態
func (s RedemptionStatus) IsTerminal() bool {
	return s == RedemptionRedeemed || s == RedemptionExpired
}

// ===========================
// RedemptionRecord 實體
// ===========================

// RedemptionRecord 兌換記錄（Redemption Ledger 的一行）
//
// 一筆 pending 記錄代表「一次免費服務」的承諾：
// - 集點引擎在帳戶集滿門檻時創建（status = pending）
// - 店員核銷時轉為 redeemed（MarkRedeemed）
// - 定時清掃將過期的 pending 轉為 expired（MarkExpired）
//
// 不變條件：
// - 同一 (accountID, cycleNumber) 至多一筆記錄（資料庫唯一索引）
// - status 只能從 pending 出發做單次轉換；終態不可再變
// - 創建後除 status/redeemedAt 外的欄位不可變
//
// 集點引擎只創建 pending 記錄，永不讀取或回應兌換狀態
type RedemptionRecord struct {
	redemptionID RedemptionID
	accountID    AccountID
	cycleNumber  int
	status       RedemptionStatus
	earnedAt     time.Time
	redeemedAt   *time.Time
}

// newRedemptionRecord 創建新的兌換記錄（package-private）
//
// 僅供 LoyaltyAccount.AwardPunches 在集滿門檻時使用
func newRedemptionRecord(
	accountID AccountID,
	cycleNumber int,
	earnedAt time.Time,
) *RedemptionRecord {
	return &RedemptionRecord{
		redemptionID: NewRedemptionID(),
		accountID:    accountID,
		cycleNumber:  cycleNumber,
		status:       RedemptionPending,
		earnedAt:     earnedAt,
	}
}

// ReconstructRedemptionRecord 從持久化存儲重建兌換記錄
//
// 僅供 Repository 使用
func ReconstructRedemptionRecord(
	redemptionID RedemptionID,
	accountID AccountID,
	cycleNumber int,
	status RedemptionStatus,
	earnedAt time.Time,
	redeemedAt *time.Time,
) (*RedemptionRecord, error) {
	if redemptionID.IsEmpty() {
		return nil, ErrInvalidRedemptionID.WithContext(
			"reason", "invalid redemption ID in database",
		)
	}
	if accountID.IsEmpty() {
		return nil, ErrInvalidAccountID.WithContext(
			"reason", "invalid account ID in redemption record",
		)
	}
	if cycleNumber < 1 {
		return nil, ErrInvalidRedemptionCycle.WithContext(
			"cycle_number", cycleNumber,
		)
	}
	if !status.IsValid() {
		return nil, ErrCorruptedAccountState.WithContext(
			"redemption_id", redemptionID.String(),
			"status", string(status),
		)
	}

	return &RedemptionRecord{
		redemptionID: redemptionID,
		accountID:    accountID,
		cycleNumber:  cycleNumber,
		status:       status,
		earnedAt:     earnedAt,
		redeemedAt:   redeemedAt,
	}, nil
}

// ===========================
// 命令方法（狀態轉換）
// ===========================

// MarkRedeemed 標記為已兌換（店員核銷）
//
// 業務規則：
// - 只有 pending 狀態可以核銷
// - 核銷時間記錄在 redeemedAt
//
// 返回：
// - error: 非 pending 狀態時返回 ErrRedemptionNotPending
func (r *RedemptionRecord) MarkRedeemed() error {
	if r.status != RedemptionPending {
		return ErrRedemptionNotPending.WithContext(
			"redemption_id", r.redemptionID.String(),
			"current_status", string(r.status),
		)
	}

	now := time.Now()
	r.status = RedemptionRedeemed
	r.redeemedAt = &now

	return nil
}

// MarkExpired 標記為已過期（定時清掃）
//
// 業務規則：
// - 只有 pending 狀態可以過期
// - 過期不記錄 redeemedAt（獎勵未被使用）
//
// 返回：
// - error: 非 pending 狀態時返回 ErrRedemptionNotPending
func (r *RedemptionRecord) MarkExpired() error {
	if r.status != RedemptionPending {
		return ErrRedemptionNotPending.WithContext(
			"redemption_id", r.redemptionID.String(),
			"current_status", string(r.status),
		)
	}

	r.status = RedemptionExpired

	return nil
}

// ===========================
// 查詢方法（Getters）
// ===========================

// RedemptionID 獲取兌換記錄 ID
func (r *RedemptionRecord) RedemptionID() RedemptionID {
	return r.redemptionID
}

// AccountID 獲取所屬帳戶 ID
func (r *RedemptionRecord) AccountID() AccountID {
	return r.accountID
}

// CycleNumber 獲取對應的獎勵週期編號
func (r *RedemptionRecord) CycleNumber() int {
	return r.cycleNumber
}

// Status 獲取當前狀態
func (r *RedemptionRecord) Status() RedemptionStatus {
	return r.status
}

// IsPending 判斷是否為待兌換狀態
func (r *RedemptionRecord) IsPending() bool {
	return r.status == RedemptionPending
}

// EarnedAt 獲取獲得獎勵的時間
func (r *RedemptionRecord) EarnedAt() time.Time {
	return r.earnedAt
}

// RedeemedAt 獲取核銷時間（未核銷時為 nil）
func (r *RedemptionRecord) RedeemedAt() *time.Time {
	return r.redeemedAt
}
