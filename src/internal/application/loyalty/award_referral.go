package loyalty

import (
	"errors"
	"fmt"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// AwardReferralBonuses Use Case
// ===========================

// referralBonusReason 推薦獎勵在 Punch Ledger 中的固定 reason
const referralBonusReason = "Referral Bonus"

// AwardReferralBonusesCommand 發放推薦獎勵的命令
//
// 輸入：
// - ReferrerCustomerID: 推薦人客戶 ID（UUID 字串）
// - RefereeCustomerID: 被推薦人客戶 ID（UUID 字串）
// - ReferralEventID: 來源推薦事件 ID（稽核用）
//
// 觸發時機：被推薦的新客戶完成首次預約後，由調用方觸發一次
type AwardReferralBonusesCommand struct {
	ReferrerCustomerID string
	RefereeCustomerID  string
	ReferralEventID    string
}

// ReferralBonusOutcome 單方的推薦獎勵結果
type ReferralBonusOutcome struct {
	CustomerID     string
	PunchesAwarded int
	CurrentPunches int
	RewardEarned   bool
}

// AwardReferralBonusesResult 推薦獎勵發放結果
//
// Referrer / Referee 為 nil 表示該方未發放：
// 獎勵點數設為 0，或該方沒有集點帳戶（從未完成過預約）
type AwardReferralBonusesResult struct {
	Referrer *ReferralBonusOutcome
	Referee  *ReferralBonusOutcome
}

// AwardReferralBonusesUseCase 推薦獎勵 Use Case
//
// 職責：
// 1. 驗證輸入（雙方 ID 格式、不可相同）
// 2. 在單一事務中為推薦人與被推薦人各發放獎勵點數
// 3. 推薦獎勵不計入來店次數（countsAsVisit = false）
//
// 並發安全（雙帳戶鎖定）：
// - 兩個帳戶都以 FindByCustomerIDForUpdate 鎖定
// - 固定以 CustomerID 升序取鎖，消除交錯取鎖造成的死鎖
//   （兩個並發推薦涉及同一對客戶時，取鎖順序一致）
//
// 原子性：
// - 雙方獎勵在同一事務中發放，要麼都成功要麼都回滾，
//   不會出現只有一方拿到點數的中間狀態
type AwardReferralBonusesUseCase struct {
	accountRepo    loyalty.LoyaltyAccountRepository
	punchRepo      loyalty.PunchRecordRepository
	redemptionRepo loyalty.RedemptionRecordRepository
	settingsRepo   loyalty.LoyaltySettingsRepository
	txManager      shared.TransactionManager
}

// NewAwardReferralBonusesUseCase 創建 Use Case 實例
func NewAwardReferralBonusesUseCase(
	accountRepo loyalty.LoyaltyAccountRepository,
	punchRepo loyalty.PunchRecordRepository,
	redemptionRepo loyalty.RedemptionRecordRepository,
	settingsRepo loyalty.LoyaltySettingsRepository,
	txManager shared.TransactionManager,
) *AwardReferralBonusesUseCase {
	return &AwardReferralBonusesUseCase{
		accountRepo:    accountRepo,
		punchRepo:      punchRepo,
		redemptionRepo: redemptionRepo,
		settingsRepo:   settingsRepo,
		txManager:      txManager,
	}
}

// Execute 執行推薦獎勵發放
//
// 執行流程：
// 1. 驗證並轉換雙方 CustomerID（不可相同）
// 2. 在事務中：
//    a. 讀取集點設定
//    b. 以 CustomerID 升序鎖定雙方帳戶
//    c. 依設定分別發放 referrerBonus / refereeBonus
//       （設為 0 或帳戶不存在的一方跳過，不產生 Ledger 記錄）
//    d. 持久化雙方帳戶與 Ledger 記錄
//
// 業務規則：推薦獎勵是 best-effort 的優惠，不是保證的權益——
// 沒有集點帳戶的一方（從未完成過預約）靜默跳過，不延遲創建帳戶
//
// 錯誤處理：
// - ErrInvalidCustomerID: ID 格式無效或雙方相同
// - ErrInvalidAwardEvent: ReferralEventID 為空
func (uc *AwardReferralBonusesUseCase) Execute(cmd AwardReferralBonusesCommand) (*AwardReferralBonusesResult, error) {
	// 1. 驗證並轉換雙方 ID
	referrerID, err := loyalty.CustomerIDFromString(cmd.ReferrerCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse referrer customer ID: %w", err)
	}
	refereeID, err := loyalty.CustomerIDFromString(cmd.RefereeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse referee customer ID: %w", err)
	}
	if referrerID.Equals(refereeID) {
		return nil, loyalty.ErrInvalidCustomerID.WithContext(
			"reason", "referrer and referee cannot be the same customer",
		)
	}
	if cmd.ReferralEventID == "" {
		return nil, loyalty.ErrInvalidAwardEvent.WithContext(
			"reason", "referral event ID cannot be empty",
		)
	}

	// 2. 在事務中發放雙方獎勵
	result := &AwardReferralBonusesResult{}
	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		settings, err := uc.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load loyalty settings: %w", err)
		}

		// a. 固定以 CustomerID 升序取鎖（死鎖預防）
		parties := []struct {
			customerID loyalty.CustomerID
			bonus      loyalty.PunchCount
			outcome    **ReferralBonusOutcome
		}{
			{referrerID, settings.ReferrerBonus(), &result.Referrer},
			{refereeID, settings.RefereeBonus(), &result.Referee},
		}
		if parties[1].customerID.Less(parties[0].customerID) {
			parties[0], parties[1] = parties[1], parties[0]
		}

		for _, party := range parties {
			// b. 獎勵設為 0 的一方跳過（AwardPunches 要求至少 1 點）
			if party.bonus.IsZero() {
				continue
			}

			outcome, err := uc.awardBonus(ctx, party.customerID, party.bonus, settings, cmd.ReferralEventID)
			if err != nil {
				return err
			}
			*party.outcome = outcome
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// awardBonus 為單方發放推薦獎勵（在調用者的事務中執行）
//
// 返回 (nil, nil) 表示該方沒有集點帳戶，獎勵靜默跳過
func (uc *AwardReferralBonusesUseCase) awardBonus(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	bonus loyalty.PunchCount,
	settings loyalty.LoyaltySettings,
	eventID string,
) (*ReferralBonusOutcome, error) {
	// 鎖定帳戶；不存在則跳過（不像預約路徑，推薦獎勵不延遲創建帳戶）
	account, err := uc.accountRepo.FindByCustomerIDForUpdate(ctx, customerID)
	if errors.Is(err, loyalty.ErrAccountNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	// 推薦獎勵：不計入來店次數、零元消費
	outcome, err := account.AwardPunches(
		bonus,
		referralBonusReason,
		eventID,
		loyalty.ZeroServicePrice(),
		settings.DefaultThreshold(),
		false,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to award referral bonus: %w", err)
	}

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := uc.punchRepo.SaveBatch(ctx, outcome.Records); err != nil {
		return nil, fmt.Errorf("failed to save punch records: %w", err)
	}
	for _, redemption := range outcome.Redemptions {
		if err := uc.redemptionRepo.Save(ctx, redemption); err != nil {
			return nil, fmt.Errorf("failed to save redemption record: %w", err)
		}
	}

	return &ReferralBonusOutcome{
		CustomerID:     customerID.String(),
		PunchesAwarded: outcome.PunchesAwarded,
		CurrentPunches: outcome.CurrentPunches,
		RewardEarned:   outcome.RewardEarned,
	}, nil
}
