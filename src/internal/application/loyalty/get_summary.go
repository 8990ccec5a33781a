package loyalty

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
)

// ===========================
// GetLoyaltySummary Use Case
// ===========================

// GetLoyaltySummaryQuery 查詢集點摘要的查詢對象
type GetLoyaltySummaryQuery struct {
	CustomerID string
}

// GetLoyaltySummaryResult 集點摘要
//
// 使用場景：店員查詢客戶的集點卡狀態（UI 顯示）
type GetLoyaltySummaryResult struct {
	AccountID        string
	CustomerID       string
	CurrentPunches   int
	Threshold        int
	HasOverride      bool
	TotalVisits      int
	RewardsEarned    int
	RewardsRedeemed  int
	PendingRewards   int
	TotalAmountSpent string
	CreatedAt        time.Time
}

// GetLoyaltySummaryUseCase 集點摘要查詢 Use Case
//
// 職責：
// 1. 查詢集點帳戶與 Ledger 統計
// 2. 組合為 UI 可直接消費的摘要
//
// 設計原則：
// - 只讀操作：所有查詢傳 nil ctx（auto-commit，不佔用事務連接）
// - 客戶存在但無帳戶（從未集點）返回零值摘要，而非錯誤
type GetLoyaltySummaryUseCase struct {
	accountRepo    loyalty.LoyaltyAccountRepository
	punchRepo      loyalty.PunchRecordRepository
	redemptionRepo loyalty.RedemptionRecordRepository
	settingsRepo   loyalty.LoyaltySettingsRepository
}

// NewGetLoyaltySummaryUseCase 創建 Use Case 實例
func NewGetLoyaltySummaryUseCase(
	accountRepo loyalty.LoyaltyAccountRepository,
	punchRepo loyalty.PunchRecordRepository,
	redemptionRepo loyalty.RedemptionRecordRepository,
	settingsRepo loyalty.LoyaltySettingsRepository,
) *GetLoyaltySummaryUseCase {
	return &GetLoyaltySummaryUseCase{
		accountRepo:    accountRepo,
		punchRepo:      punchRepo,
		redemptionRepo: redemptionRepo,
		settingsRepo:   settingsRepo,
	}
}

// Execute 執行摘要查詢
//
// 執行流程：
// 1. 驗證並轉換 CustomerID
// 2. 讀取集點設定（計算生效門檻用）
// 3. 查詢帳戶；不存在時返回零值摘要（客戶尚未開始集點）
// 4. 統計累計消費金額與待兌換獎勵數
//
// PendingRewards 以兌換記錄的實際狀態統計，不從帳戶計數
// 推導：過期清掃不回沖 rewardsEarned，earned − redeemed 會把
// 已過期、不可核銷的獎勵也算進去
//
// 注意：只讀查詢不加鎖，摘要是瞬時快照，
// 並發集點下的輕微滯後可以接受
func (uc *GetLoyaltySummaryUseCase) Execute(query GetLoyaltySummaryQuery) (*GetLoyaltySummaryResult, error) {
	customerID, err := loyalty.CustomerIDFromString(query.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	settings, err := uc.settingsRepo.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty settings: %w", err)
	}

	account, err := uc.accountRepo.FindByCustomerID(nil, customerID)
	if err != nil {
		// 帳戶延遲創建：從未集點的客戶沒有帳戶，返回零值摘要
		if errors.Is(err, loyalty.ErrAccountNotFound) {
			return &GetLoyaltySummaryResult{
				CustomerID:       customerID.String(),
				Threshold:        settings.DefaultThreshold().Value(),
				TotalAmountSpent: loyalty.ZeroServicePrice().String(),
			}, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	totalSpent, err := uc.punchRepo.TotalAmountSpent(nil, account.AccountID())
	if err != nil {
		return nil, fmt.Errorf("failed to sum amount spent: %w", err)
	}

	pendingCount, err := uc.redemptionRepo.CountPending(nil, account.AccountID())
	if err != nil {
		return nil, fmt.Errorf("failed to count pending redemptions: %w", err)
	}

	return &GetLoyaltySummaryResult{
		AccountID:        account.AccountID().String(),
		CustomerID:       account.CustomerID().String(),
		CurrentPunches:   account.CurrentPunches().Value(),
		Threshold:        account.EffectiveThreshold(settings.DefaultThreshold()).Value(),
		HasOverride:      account.HasThresholdOverride(),
		TotalVisits:      account.TotalVisits(),
		RewardsEarned:    account.RewardsEarned(),
		RewardsRedeemed:  account.RewardsRedeemed(),
		PendingRewards:   int(pendingCount),
		TotalAmountSpent: totalSpent.String(),
		CreatedAt:        account.CreatedAt(),
	}, nil
}
