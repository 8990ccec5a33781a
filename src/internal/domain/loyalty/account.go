package loyalty

import (
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// LoyaltyAccount 聚合根
// ===========================

// LoyaltyAccount 集點帳戶聚合根
//
// 設計原則：
// 1. 輕量級聚合：不包含無界集合（集點/兌換記錄儲存在獨立表）
// 2. 不變條件：必須在每個修改方法末尾依然成立
// 3. 事件驅動：所有狀態變更都發布領域事件
// 4. Tell, Don't Ask：封裝集點結算邏輯，不暴露內部狀態供外部判斷
//
// 業務不變條件：
// - currentPunches >= 0 且 currentPunches < 生效門檻（集滿立即結算，餘額永遠小於門檻）
// - totalVisits >= 0（單調遞增的來店次數）
// - rewardsRedeemed <= rewardsEarned（兌換不能超過獲得）
// - thresholdOverride 若設定，必須是合法門檻（1-100）
//
// 並發控制：
// 聚合本身不做鎖定。Repository 的 FindByCustomerIDForUpdate 以資料庫
// 行鎖（SELECT ... FOR UPDATE）序列化同一客戶的讀-算-寫序列；
// 不同客戶的帳戶互不阻塞
type LoyaltyAccount struct {
	// 聚合根識別符
	accountID  AccountID
	customerID CustomerID

	// 集點數據
	currentPunches  PunchCount // 當前週期已集點數（< 生效門檻）
	totalVisits     int        // 累計來店次數（推薦獎勵不計入）
	rewardsEarned   int        // 累計獲得獎勵次數（= 已完成的週期數）
	rewardsRedeemed int        // 累計核銷獎勵次數

	// 個別門檻覆寫（零值表示使用全域預設）
	thresholdOverride Threshold

	// 審計字段
	createdAt time.Time
	updatedAt time.Time

	// 待發布的領域事件
	events []shared.DomainEvent
}

// ===========================
// 建構函數（工廠方法）
// ===========================

// NewLoyaltyAccount 創建新的集點帳戶
//
// 參數：
//   customerID - 客戶 ID（必填）
//
// 返回：
//   *LoyaltyAccount - 新創建的帳戶（所有計數為 0）
//   error - 如果 customerID 無效
//
// 業務規則：
// - 帳戶在首次符合條件的集點事件時延遲創建（不隨客戶註冊創建）
// - 自動生成唯一的 AccountID
// - 發布 AccountCreated 事件
func NewLoyaltyAccount(customerID CustomerID) (*LoyaltyAccount, error) {
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID.WithContext(
			"reason", "customerID cannot be empty",
		)
	}

	now := time.Now()

	account := &LoyaltyAccount{
		accountID:       NewAccountID(),
		customerID:      customerID,
		currentPunches:  newPunchCountUnchecked(0),
		totalVisits:     0,
		rewardsEarned:   0,
		rewardsRedeemed: 0,
		createdAt:       now,
		updatedAt:       now,
		events:          make([]shared.DomainEvent, 0),
	}

	account.addEvent(NewAccountCreatedEvent(account.accountID, customerID))

	return account, nil
}

// ===========================
// 查詢方法（Getters）
// ===========================

// AccountID 獲取帳戶 ID
func (a *LoyaltyAccount) AccountID() AccountID {
	return a.accountID
}

// CustomerID 獲取客戶 ID
func (a *LoyaltyAccount) CustomerID() CustomerID {
	return a.customerID
}

// CurrentPunches 獲取當前週期已集點數
func (a *LoyaltyAccount) CurrentPunches() PunchCount {
	return a.currentPunches
}

// TotalVisits 獲取累計來店次數
func (a *LoyaltyAccount) TotalVisits() int {
	return a.totalVisits
}

// RewardsEarned 獲取累計獲得獎勵次數
func (a *LoyaltyAccount) RewardsEarned() int {
	return a.rewardsEarned
}

// RewardsRedeemed 獲取累計核銷獎勵次數
func (a *LoyaltyAccount) RewardsRedeemed() int {
	return a.rewardsRedeemed
}

// HasThresholdOverride 判斷是否設定了個別門檻
func (a *LoyaltyAccount) HasThresholdOverride() bool {
	return !a.thresholdOverride.IsZero()
}

// ThresholdOverride 獲取個別門檻（未設定時為零值）
func (a *LoyaltyAccount) ThresholdOverride() Threshold {
	return a.thresholdOverride
}

// CreatedAt 獲取創建時間
func (a *LoyaltyAccount) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt 獲取最後更新時間
func (a *LoyaltyAccount) UpdatedAt() time.Time {
	return a.updatedAt
}

// EffectiveThreshold 計算生效門檻（派生值）
//
// 業務規則：
// - 設定了 thresholdOverride 時使用覆寫值
// - 否則使用傳入的全域預設門檻
//
// 設定在每次集點時讀取並傳入，聚合不快取全域設定
func (a *LoyaltyAccount) EffectiveThreshold(defaultThreshold Threshold) Threshold {
	if a.HasThresholdOverride() {
		return a.thresholdOverride
	}
	return defaultThreshold
}

// IsFirstVisit 判斷下一次來店是否為首次來店
//
// 使用場景：集點引擎決定是否發放首次來店加碼
// 必須在 totalVisits 遞增前判斷
func (a *LoyaltyAccount) IsFirstVisit() bool {
	return a.totalVisits == 0
}

// PendingRewards 獲取尚未核銷的獎勵數（帳戶計數派生值）
//
// 注意：過期清掃不回沖 rewardsEarned，此值把已過期的獎勵
// 也算在內。可核銷數以兌換記錄的 CountPending 為準
func (a *LoyaltyAccount) PendingRewards() int {
	return a.rewardsEarned - a.rewardsRedeemed
}

// ===========================
// 事件管理
// ===========================

// addEvent 添加領域事件到待發布列表（私有方法）
func (a *LoyaltyAccount) addEvent(event shared.DomainEvent) {
	a.events = append(a.events, event)
}

// PullEvents 獲取所有待發布事件並清空列表
//
// 使用場景：
// - Repository 保存成功後，調用此方法獲取事件並發布
//
// 設計原則：
// - Pull 模式（而非 Push）：聚合根不依賴 EventPublisher
// - 只讀取一次：獲取後清空，避免重複發布
func (a *LoyaltyAccount) PullEvents() []shared.DomainEvent {
	events := a.events
	a.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// AwardOutcome 結算結果
// ===========================

// AwardOutcome 一次集點發放的結構化結算結果
//
// 設計決策：以具體類型取代鬆散的 JSON 返回值，
// 調用方（通知、UI）直接消費字段，不做字串解析
type AwardOutcome struct {
	PunchesAwarded int  // 本次發放的點數
	CurrentPunches int  // 結算後的當前週期點數
	RewardEarned   bool // 本次是否集滿門檻獲得獎勵
	CycleNumber    int  // 獲得獎勵的週期編號（未獲得時為 0）
	IsFirstVisit   bool // 本次是否為首次來店

	// 本次新增的 Ledger 記錄（由 Use Case 持久化，與帳戶更新同一事務）
	Records     []*PunchRecord
	Redemptions []*RedemptionRecord
}

// ===========================
// AwardPunches 命令方法（集點引擎核心）
// ===========================

// AwardPunches 發放集點並結算門檻（核心業務邏輯）
//
// 參數：
//   punches - 發放點數（>= 1；1 + 加碼，由 Use Case 依設定計算）
//   reason - 集點原因（服務名稱或 "Referral Bonus"）
//   eventID - 來源事件 ID（預約 ID 或推薦 ID，必填）
//   amountSpent - 當次消費金額（推薦獎勵傳零元）
//   defaultThreshold - 全域預設門檻（生效門檻 = override 或此值）
//   countsAsVisit - 是否計入來店次數（預約集點 true，推薦獎勵 false）
//
// 返回：
//   *AwardOutcome - 結算結果（含新增的 Ledger 記錄）
//   error - ErrNoPunchesToAward / ErrInvalidAwardEvent / ErrInvalidThreshold
//
// 結算規則（逐點結算）：
// 1. 每一點落入當前週期（週期編號 = 已獲得獎勵數 + 1），
//    週期內序號 = 結算前點數 + 1 起遞增
// 2. 集滿生效門檻時：創建一筆 pending 兌換記錄、rewardsEarned + 1、
//    點數歸零，溢出的點自動落入下一週期（「減去門檻」而非「歸零」——
//    例如 8 點時一次發 3 點，集滿後剩 2 點掛在新週期）
// 3. 一次發放可能跨越多個門檻（加碼點數大於門檻時），每個集滿的
//    週期各創建一筆兌換記錄
// 4. countsAsVisit 時 totalVisits + 1（推薦獎勵不是來店，不計次）
//
// 不變條件維護：
// - 逐點結算保證結束時 currentPunches < 生效門檻
// - 每個週期的記錄數不超過門檻（序號在集滿時重新從 1 起算）
//
// 注意：此方法只變更聚合記憶體狀態並產生 Ledger 記錄，
// 持久化（帳戶更新 + 記錄追加）由 Use Case 在同一事務中完成；
// 事務失敗時整體回滾，不會出現部分集點
func (a *LoyaltyAccount) AwardPunches(
	punches PunchCount,
	reason string,
	eventID string,
	amountSpent ServicePrice,
	defaultThreshold Threshold,
	countsAsVisit bool,
) (*AwardOutcome, error) {
	// 1. 前置驗證
	if punches.IsZero() {
		return nil, ErrNoPunchesToAward.WithContext(
			"account_id", a.accountID.String(),
		)
	}
	if eventID == "" {
		return nil, ErrInvalidAwardEvent.WithContext(
			"reason", "eventID cannot be empty",
		)
	}

	effective := a.EffectiveThreshold(defaultThreshold)
	if effective.IsZero() {
		// 全域門檻未設定且無覆寫：配置錯誤
		return nil, ErrInvalidThreshold.WithContext(
			"reason", "no effective threshold configured",
		)
	}

	// 2. 記錄結算前狀態（首次來店判斷使用更新前的值）
	wasFirstVisit := countsAsVisit && a.IsFirstVisit()
	now := time.Now()

	// 3. 逐點結算
	records := make([]*PunchRecord, 0, punches.Value())
	redemptions := make([]*RedemptionRecord, 0, 1)
	firstEarnedCycle := 0

	for i := 0; i < punches.Value(); i++ {
		cycle := a.rewardsEarned + 1
		sequence := a.currentPunches.Value() + 1

		// 消費金額只掛在第一點（加碼點不代表額外消費，金額守恆）
		recordAmount := ZeroServicePrice()
		if i == 0 {
			recordAmount = amountSpent
		}

		records = append(records, newPunchRecord(
			a.accountID,
			a.customerID,
			eventID,
			cycle,
			sequence,
			reason,
			recordAmount,
			now,
		))

		a.currentPunches = newPunchCountUnchecked(sequence)

		// 集滿門檻：結算獎勵、開啟新週期
		if a.currentPunches.Value() >= effective.Value() {
			redemptions = append(redemptions, newRedemptionRecord(a.accountID, cycle, now))
			a.rewardsEarned++
			a.currentPunches = newPunchCountUnchecked(0)

			if firstEarnedCycle == 0 {
				firstEarnedCycle = cycle
			}

			a.addEvent(NewRewardEarnedEvent(a.accountID, a.customerID, cycle))
		}
	}

	// 4. 來店次數
	if countsAsVisit {
		a.totalVisits++
	}

	a.updatedAt = now

	// 5. 發布集點事件
	a.addEvent(NewPunchesAwardedEvent(
		a.accountID,
		a.customerID,
		punches,
		reason,
		eventID,
	))

	// 6. 返回結算結果
	return &AwardOutcome{
		PunchesAwarded: punches.Value(),
		CurrentPunches: a.currentPunches.Value(),
		RewardEarned:   len(redemptions) > 0,
		CycleNumber:    firstEarnedCycle,
		IsFirstVisit:   wasFirstVisit,
		Records:        records,
		Redemptions:    redemptions,
	}, nil
}

// ===========================
// ConsumeReward 命令方法
// ===========================

// ConsumeReward 核銷一次獎勵（店員為客戶兌換免費服務）
//
// 業務規則：
// - 必須有尚未核銷的獎勵（rewardsRedeemed < rewardsEarned）
// - 對應的 RedemptionRecord 狀態轉換由 Use Case 在同一事務中處理
//   （record.MarkRedeemed + 帳戶計數在同一個行鎖範圍內）
//
// 返回：
// - error: 沒有可兌換獎勵時返回 ErrNoRewardToRedeem
//
// 不變條件維護：
// - 前置檢查確保核銷後 rewardsRedeemed <= rewardsEarned
func (a *LoyaltyAccount) ConsumeReward() error {
	if a.rewardsRedeemed >= a.rewardsEarned {
		return ErrNoRewardToRedeem.WithContext(
			"rewards_earned", a.rewardsEarned,
			"rewards_redeemed", a.rewardsRedeemed,
		)
	}

	a.rewardsRedeemed++
	a.updatedAt = time.Now()

	a.addEvent(NewRewardRedeemedEvent(a.accountID, a.customerID))

	return nil
}

// ===========================
// SetThresholdOverride 命令方法
// ===========================

// SetThresholdOverride 設定個別門檻（管理員操作）
//
// 使用場景：
// - VIP 客戶使用較低門檻（例如全域 9 點、VIP 5 點）
// - 行銷活動期間調整特定客戶門檻
//
// 業務規則：
// - 門檻必須合法（1-100，由 Threshold 值對象保證）
// - 變更即時生效：下一次集點即使用新門檻
// - 已集的點數不重算：調降後 currentPunches 可能暫時 >= 新門檻，
//   帳戶維持原狀直到下一次集點才結算。該次結算關閉的週期
//   含超過新門檻的記錄數（已集的點留在該週期，餘額歸零），
//   稽核時以集點當下的生效門檻解讀週期長度
func (a *LoyaltyAccount) SetThresholdOverride(threshold Threshold) error {
	if threshold.IsZero() {
		return ErrInvalidThreshold.WithContext(
			"reason", "override threshold cannot be zero",
		)
	}

	a.thresholdOverride = threshold
	a.updatedAt = time.Now()

	return nil
}

// ClearThresholdOverride 清除個別門檻（回到全域預設）
func (a *LoyaltyAccount) ClearThresholdOverride() {
	a.thresholdOverride = Threshold{}
	a.updatedAt = time.Now()
}

// ===========================
// 聚合重建方法（僅供 Infrastructure Layer 使用）
// ===========================

// ReconstructLoyaltyAccount 從持久化存儲重建聚合根
//
// 設計原則：
// - 僅供 Repository 使用，不對外暴露
// - 與 NewLoyaltyAccount 的區別：
//   * New: 創建新聚合，發布 AccountCreated 事件
//   * Reconstruct: 重建已存在的聚合，不發布事件（事件已發生過）
//
// 重要：即使是從資料庫重建，也必須驗證不變條件，
// 防止損壞資料污染領域層
func ReconstructLoyaltyAccount(
	accountID AccountID,
	customerID CustomerID,
	currentPunches int,
	totalVisits int,
	rewardsEarned int,
	rewardsRedeemed int,
	thresholdOverride *int,
	createdAt time.Time,
	updatedAt time.Time,
) (*LoyaltyAccount, error) {
	// 1. 驗證 ID 有效性
	if accountID.IsEmpty() {
		return nil, ErrInvalidAccountID.WithContext(
			"reason", "invalid account ID in database",
		)
	}
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID.WithContext(
			"reason", "invalid customer ID in database",
		)
	}

	// 2. 驗證計數（防止負數）
	punches, err := NewPunchCount(currentPunches)
	if err != nil {
		return nil, ErrCorruptedAccountState.WithContext(
			"field", "current_punches",
			"value", currentPunches,
			"underlying_error", err.Error(),
		)
	}
	if totalVisits < 0 || rewardsEarned < 0 || rewardsRedeemed < 0 {
		return nil, ErrCorruptedAccountState.WithContext(
			"total_visits", totalVisits,
			"rewards_earned", rewardsEarned,
			"rewards_redeemed", rewardsRedeemed,
		)
	}

	// 3. 驗證關鍵不變條件：rewardsRedeemed <= rewardsEarned
	if rewardsRedeemed > rewardsEarned {
		return nil, ErrCorruptedAccountState.WithContext(
			"rewards_earned", rewardsEarned,
			"rewards_redeemed", rewardsRedeemed,
		)
	}

	// 4. 驗證門檻覆寫（若有）
	var override Threshold
	if thresholdOverride != nil {
		override, err = NewThreshold(*thresholdOverride)
		if err != nil {
			return nil, ErrCorruptedAccountState.WithContext(
				"field", "threshold_override",
				"value", *thresholdOverride,
				"underlying_error", err.Error(),
			)
		}
	}

	// 5. 重建聚合（重建時不包含事件）
	return &LoyaltyAccount{
		accountID:         accountID,
		customerID:        customerID,
		currentPunches:    punches,
		totalVisits:       totalVisits,
		rewardsEarned:     rewardsEarned,
		rewardsRedeemed:   rewardsRedeemed,
		thresholdOverride: override,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
		events:            make([]shared.DomainEvent, 0),
	}, nil
}

// ===========================
// 不變條件檢查（調試用）
// ===========================

// assertInvariants 斷言聚合根的不變條件（僅用於開發和調試）
//
// 不變條件：
// 1. currentPunches >= 0（由 PunchCount 值對象保證）
// 2. rewardsRedeemed <= rewardsEarned（由命令方法的前置驗證保證）
//
// 如果觸發，表示某個命令方法有 bug，需要修復該方法
func (a *LoyaltyAccount) assertInvariants() {
	if a.rewardsRedeemed > a.rewardsEarned {
		panic(fmt.Sprintf(
			"INVARIANT VIOLATION: rewardsRedeemed (%d) > rewardsEarned (%d) for account %s - FIX THE BUG IN COMMAND METHOD",
			a.rewardsRedeemed,
			a.rewardsEarned,
			a.accountID.String(),
		))
	}
}
