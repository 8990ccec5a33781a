package loyalty

import (
	"errors"
	"fmt"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// AwardAppointmentPunch Use Case
// ===========================

// AwardAppointmentPunchCommand 為完成的預約發放集點的命令
//
// 輸入：
// - CustomerID: 客戶 ID（UUID 字串）
// - AppointmentID: 來源預約 ID（稽核用，引擎不做去重）
// - ServiceName: 服務名稱（記錄在 Ledger 的 reason 欄位）
// - AmountSpent: 當次消費金額（十進位字串，可為空）
type AwardAppointmentPunchCommand struct {
	CustomerID    string
	AppointmentID string
	ServiceName   string
	AmountSpent   string
}

// AwardAppointmentPunchResult 集點發放結果
type AwardAppointmentPunchResult struct {
	AccountID      string
	CustomerID     string
	PunchesAwarded int
	CurrentPunches int
	Threshold      int
	RewardEarned   bool
	CycleNumber    int
	IsFirstVisit   bool
}

// AwardAppointmentPunchUseCase 預約集點 Use Case
//
// 職責：
// 1. 驗證輸入（CustomerID 格式、AppointmentID 必填）
// 2. 在事務中鎖定（或延遲創建）集點帳戶
// 3. 讀取集點設定、計算發放點數（1 基礎 + 首次來店加碼）
// 4. 執行聚合的集點結算，持久化帳戶與 Ledger 記錄
//
// 設計原則：
// - 單一職責：只負責協調預約集點的流程
// - 依賴倒置：依賴 Repository 介面和 TransactionManager 介面
// - 事務管理：Use Case 管理事務（不依賴調用者）
//
// 並發安全：
// - FindByCustomerIDForUpdate 以行鎖序列化同一客戶的讀-算-寫序列
// - 帳戶不存在時在同一事務中創建；並發首次集點由資料庫
//   唯一約束裁決，輸掉的事務回滾後由調用者重試
type AwardAppointmentPunchUseCase struct {
	accountRepo    loyalty.LoyaltyAccountRepository
	punchRepo      loyalty.PunchRecordRepository
	redemptionRepo loyalty.RedemptionRecordRepository
	settingsRepo   loyalty.LoyaltySettingsRepository
	txManager      shared.TransactionManager
}

// NewAwardAppointmentPunchUseCase 創建 Use Case 實例
func NewAwardAppointmentPunchUseCase(
	accountRepo loyalty.LoyaltyAccountRepository,
	punchRepo loyalty.PunchRecordRepository,
	redemptionRepo loyalty.RedemptionRecordRepository,
	settingsRepo loyalty.LoyaltySettingsRepository,
	txManager shared.TransactionManager,
) *AwardAppointmentPunchUseCase {
	return &AwardAppointmentPunchUseCase{
		accountRepo:    accountRepo,
		punchRepo:      punchRepo,
		redemptionRepo: redemptionRepo,
		settingsRepo:   settingsRepo,
		txManager:      txManager,
	}
}

// Execute 執行預約集點
//
// 執行流程：
// 1. 驗證並轉換 CustomerID
// 2. 解析消費金額
// 3. 在事務中：
//    a. 鎖定帳戶（不存在則創建）
//    b. 讀取集點設定（同一事務，保證一致性）
//    c. 計算點數：1 + 首次來店加碼（僅當帳戶從未來店）
//    d. AwardPunches 結算（countsAsVisit = true）
//    e. 持久化帳戶、集點記錄、兌換記錄
//
// 錯誤處理：
// - ErrInvalidCustomerID: CustomerID 格式無效
// - ErrInvalidAwardEvent: AppointmentID 為空
// - ErrNegativeServicePrice: 金額格式無效或為負
// - ErrInvalidThreshold: 設定損壞（配置錯誤，不可重試）
func (uc *AwardAppointmentPunchUseCase) Execute(cmd AwardAppointmentPunchCommand) (*AwardAppointmentPunchResult, error) {
	// 1. 驗證並轉換 CustomerID
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	// 2. 解析消費金額（空字串視為零元）
	amountSpent, err := loyalty.ServicePriceFromString(cmd.AmountSpent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount spent: %w", err)
	}

	// 3. 在事務中執行集點結算
	var result *AwardAppointmentPunchResult
	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		// a. 鎖定帳戶（不存在則延遲創建）
		account, err := uc.lockOrCreateAccount(ctx, customerID)
		if err != nil {
			return err
		}

		// b. 讀取集點設定（同一事務中讀取，設定變更即時生效）
		settings, err := uc.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load loyalty settings: %w", err)
		}

		// c. 計算發放點數：1 基礎 + 首次來店加碼
		punchValue := 1
		if account.IsFirstVisit() {
			punchValue += settings.FirstVisitBonus().Value()
		}
		punches, err := loyalty.NewPunchCount(punchValue)
		if err != nil {
			return fmt.Errorf("failed to compute punches: %w", err)
		}

		// d. 聚合結算（countsAsVisit = true：預約集點計入來店次數）
		outcome, err := account.AwardPunches(
			punches,
			cmd.ServiceName,
			cmd.AppointmentID,
			amountSpent,
			settings.DefaultThreshold(),
			true,
		)
		if err != nil {
			return fmt.Errorf("failed to award punches: %w", err)
		}

		// e. 持久化：帳戶更新 + Ledger 追加在同一事務
		if err := uc.accountRepo.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		if err := uc.punchRepo.SaveBatch(ctx, outcome.Records); err != nil {
			return fmt.Errorf("failed to save punch records: %w", err)
		}
		for _, redemption := range outcome.Redemptions {
			if err := uc.redemptionRepo.Save(ctx, redemption); err != nil {
				return fmt.Errorf("failed to save redemption record: %w", err)
			}
		}

		result = &AwardAppointmentPunchResult{
			AccountID:      account.AccountID().String(),
			CustomerID:     account.CustomerID().String(),
			PunchesAwarded: outcome.PunchesAwarded,
			CurrentPunches: outcome.CurrentPunches,
			Threshold:      account.EffectiveThreshold(settings.DefaultThreshold()).Value(),
			RewardEarned:   outcome.RewardEarned,
			CycleNumber:    outcome.CycleNumber,
			IsFirstVisit:   outcome.IsFirstVisit,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// lockOrCreateAccount 鎖定集點帳戶，不存在時延遲創建
//
// 帳戶在首次符合條件的集點事件時創建（不隨客戶註冊創建）。
// 新創建的帳戶由 INSERT 持有行鎖，效果等同 FOR UPDATE
func (uc *AwardAppointmentPunchUseCase) lockOrCreateAccount(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
) (*loyalty.LoyaltyAccount, error) {
	account, err := uc.accountRepo.FindByCustomerIDForUpdate(ctx, customerID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, loyalty.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	account, err = loyalty.NewLoyaltyAccount(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if err := uc.accountRepo.Save(ctx, account); err != nil {
		// 並發首次集點：另一個事務搶先創建，本事務回滾後重試
		if errors.Is(err, loyalty.ErrAccountAlreadyExists) {
			return nil, fmt.Errorf("concurrent account creation, retry: %w", err)
		}
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	return account, nil
}
