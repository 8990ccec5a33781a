package loyalty

import (
	"fmt"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// SetThresholdOverride Use Case
// ===========================

// SetThresholdOverrideCommand 設定個別門檻的命令
//
// 輸入：
// - CustomerID: 客戶 ID（UUID 字串）
// - Threshold: 覆寫門檻；nil 表示清除覆寫（回到全域預設）
type SetThresholdOverrideCommand struct {
	CustomerID string
	Threshold  *int
}

// SetThresholdOverrideResult 設定結果
type SetThresholdOverrideResult struct {
	AccountID          string
	CustomerID         string
	EffectiveThreshold int
	HasOverride        bool
}

// SetThresholdOverrideUseCase 個別門檻設定 Use Case（管理員操作）
//
// 業務規則：
// - 變更即時生效：下一次集點即使用新門檻
// - 已集的點數不重算（currentPunches 可能暫時 >= 新門檻，
//   下一次集點時立即結算掉）
// - 只能對已存在的帳戶設定（帳戶隨首次集點創建）
type SetThresholdOverrideUseCase struct {
	accountRepo  loyalty.LoyaltyAccountRepository
	settingsRepo loyalty.LoyaltySettingsRepository
	txManager    shared.TransactionManager
}

// NewSetThresholdOverrideUseCase 創建 Use Case 實例
func NewSetThresholdOverrideUseCase(
	accountRepo loyalty.LoyaltyAccountRepository,
	settingsRepo loyalty.LoyaltySettingsRepository,
	txManager shared.TransactionManager,
) *SetThresholdOverrideUseCase {
	return &SetThresholdOverrideUseCase{
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		txManager:    txManager,
	}
}

// Execute 執行門檻覆寫設定
//
// 錯誤處理：
// - ErrInvalidCustomerID: CustomerID 格式無效
// - ErrInvalidThreshold: 門檻超出 1-100 範圍
// - ErrAccountNotFound: 客戶沒有集點帳戶
func (uc *SetThresholdOverrideUseCase) Execute(cmd SetThresholdOverrideCommand) (*SetThresholdOverrideResult, error) {
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	// 先驗證門檻值（配置錯誤在開事務前擋下）
	var override loyalty.Threshold
	if cmd.Threshold != nil {
		override, err = loyalty.NewThreshold(*cmd.Threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold override: %w", err)
		}
	}

	var result *SetThresholdOverrideResult
	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		// 行鎖：與並發集點的 EffectiveThreshold 讀取序列化
		account, err := uc.accountRepo.FindByCustomerIDForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		if cmd.Threshold == nil {
			account.ClearThresholdOverride()
		} else {
			if err := account.SetThresholdOverride(override); err != nil {
				return fmt.Errorf("failed to set threshold override: %w", err)
			}
		}

		if err := uc.accountRepo.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		settings, err := uc.settingsRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load loyalty settings: %w", err)
		}

		result = &SetThresholdOverrideResult{
			AccountID:          account.AccountID().String(),
			CustomerID:         customerID.String(),
			EffectiveThreshold: account.EffectiveThreshold(settings.DefaultThreshold()).Value(),
			HasOverride:        account.HasThresholdOverride(),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
