package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// ===========================
// AccountCreated 領域事件
// ===========================

// AccountCreatedEvent 集點帳戶創建事件
type AccountCreatedEvent struct {
	eventID    string
	accountID  AccountID
	customerID CustomerID
	occurredAt time.Time
}

// NewAccountCreatedEvent 創建帳戶創建事件
func NewAccountCreatedEvent(accountID AccountID, customerID CustomerID) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		eventID:    uuid.New().String(),
		accountID:  accountID,
		customerID: customerID,
		occurredAt: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *AccountCreatedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *AccountCreatedEvent) EventType() string {
	return "loyalty.account_created"
}

// OccurredAt 實現 DomainEvent 介面
func (e *AccountCreatedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *AccountCreatedEvent) AggregateID() string {
	return e.accountID.String()
}

// AccountID 獲取帳戶 ID
func (e *AccountCreatedEvent) AccountID() AccountID {
	return e.accountID
}

// CustomerID 獲取客戶 ID
func (e *AccountCreatedEvent) CustomerID() CustomerID {
	return e.customerID
}

// ===========================
// PunchesAwarded 領域事件
// ===========================

// PunchesAwardedEvent 集點已發放事件
type PunchesAwardedEvent struct {
	eventID    string
	accountID  AccountID
	customerID CustomerID
	punches    PunchCount
	reason     string
	sourceID   string
	occurredAt time.Time
}

// NewPunchesAwardedEvent 創建集點已發放事件
func NewPunchesAwardedEvent(
	accountID AccountID,
	customerID CustomerID,
	punches PunchCount,
	reason string,
	sourceID string,
) *PunchesAwardedEvent {
	return &PunchesAwardedEvent{
		eventID:    uuid.New().String(),
		accountID:  accountID,
		customerID: customerID,
		punches:    punches,
		reason:     reason,
		sourceID:   sourceID,
		occurredAt: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *PunchesAwardedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *PunchesAwardedEvent) EventType() string {
	return "loyalty.punches_awarded"
}

// OccurredAt 實現 DomainEvent 介面
func (e *PunchesAwardedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *PunchesAwardedEvent) AggregateID() string {
	return e.accountID.String()
}

// AccountID 獲取帳戶 ID
func (e *PunchesAwardedEvent) AccountID() AccountID {
	return e.accountID
}

// CustomerID 獲取客戶 ID
func (e *PunchesAwardedEvent) CustomerID() CustomerID {
	return e.customerID
}

// Punches 獲取發放點數
func (e *PunchesAwardedEvent) Punches() PunchCount {
	return e.punches
}

// Reason 獲取集點原因
func (e *PunchesAwardedEvent) Reason() string {
	return e.reason
}

// SourceID 獲取來源事件 ID
func (e *PunchesAwardedEvent) SourceID() string {
	return e.sourceID
}

// ===========================
// RewardEarned 領域事件
// ===========================

// RewardEarnedEvent 集滿門檻獲得獎勵事件
//
// 使用場景：通知系統監聽此事件發送「獲得免費服務」訊息
// （通知投遞本身不在此 context 範圍內）
type RewardEarnedEvent struct {
	eventID     string
	accountID   AccountID
	customerID  CustomerID
	cycleNumber int
	occurredAt  time.Time
}

// NewRewardEarnedEvent 創建獲得獎勵事件
func NewRewardEarnedEvent(
	accountID AccountID,
	customerID CustomerID,
	cycleNumber int,
) *RewardEarnedEvent {
	return &RewardEarnedEvent{
		eventID:     uuid.New().String(),
		accountID:   accountID,
		customerID:  customerID,
		cycleNumber: cycleNumber,
		occurredAt:  time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *RewardEarnedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *RewardEarnedEvent) EventType() string {
	return "loyalty.reward_earned"
}

// OccurredAt 實現 DomainEvent 介面
func (e *RewardEarnedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *RewardEarnedEvent) AggregateID() string {
	return e.accountID.String()
}

// AccountID 獲取帳戶 ID
func (e *RewardEarnedEvent) AccountID() AccountID {
	return e.accountID
}

// CustomerID 獲取客戶 ID
func (e *RewardEarnedEvent) CustomerID() CustomerID {
	return e.customerID
}

// CycleNumber 獲取獲得獎勵的週期編號
func (e *RewardEarnedEvent) CycleNumber() int {
	return e.cycleNumber
}

// ===========================
// RewardRedeemed 領域事件
// ===========================

// RewardRedeemedEvent 獎勵已核銷事件
type RewardRedeemedEvent struct {
	eventID    string
	accountID  AccountID
	customerID CustomerID
	occurredAt time.Time
}

// NewRewardRedeemedEvent 創建獎勵已核銷事件
func NewRewardRedeemedEvent(accountID AccountID, customerID CustomerID) *RewardRedeemedEvent {
	return &RewardRedeemedEvent{
		eventID:    uuid.New().String(),
		accountID:  accountID,
		customerID: customerID,
		occurredAt: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *RewardRedeemedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *RewardRedeemedEvent) EventType() string {
	return "loyalty.reward_redeemed"
}

// OccurredAt 實現 DomainEvent 介面
func (e *RewardRedeemedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *RewardRedeemedEvent) AggregateID() string {
	return e.accountID.String()
}

// AccountID 獲取帳戶 ID
func (e *RewardRedeemedEvent) AccountID() AccountID {
	return e.accountID
}

// CustomerID 獲取客戶 ID
func (e *RewardRedeemedEvent) CustomerID() CustomerID {
	return e.customerID
}
