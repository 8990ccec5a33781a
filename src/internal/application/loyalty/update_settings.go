package loyalty

import (
	"fmt"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// UpdateLoyaltySettings Use Case
// ===========================

// UpdateLoyaltySettingsCommand 更新全域集點設定的命令（管理員操作）
type UpdateLoyaltySettingsCommand struct {
	DefaultThreshold int
	FirstVisitBonus  int
	ReferrerBonus    int
	RefereeBonus     int
}

// UpdateLoyaltySettingsResult 更新結果
type UpdateLoyaltySettingsResult struct {
	DefaultThreshold int
	FirstVisitBonus  int
	ReferrerBonus    int
	RefereeBonus     int
}

// UpdateLoyaltySettingsUseCase 全域集點設定 Use Case
//
// 業務規則：
// - 設定變更即時生效：集點引擎每次操作時重新讀取設定
// - 已集的點數不重算；門檻調低時，currentPunches 暫時超過
//   新門檻的帳戶在下一次集點時立即結算
type UpdateLoyaltySettingsUseCase struct {
	settingsRepo loyalty.LoyaltySettingsRepository
	txManager    shared.TransactionManager
}

// NewUpdateLoyaltySettingsUseCase 創建 Use Case 實例
func NewUpdateLoyaltySettingsUseCase(
	settingsRepo loyalty.LoyaltySettingsRepository,
	txManager shared.TransactionManager,
) *UpdateLoyaltySettingsUseCase {
	return &UpdateLoyaltySettingsUseCase{
		settingsRepo: settingsRepo,
		txManager:    txManager,
	}
}

// Execute 執行設定更新
//
// 錯誤處理：
// - ErrInvalidThreshold: 門檻超出 1-100 範圍
// - ErrInvalidSettings: 加碼/獎勵點數為負
func (uc *UpdateLoyaltySettingsUseCase) Execute(cmd UpdateLoyaltySettingsCommand) (*UpdateLoyaltySettingsResult, error) {
	// 值對象驗證（配置錯誤，不可重試）
	settings, err := loyalty.NewLoyaltySettings(
		cmd.DefaultThreshold,
		cmd.FirstVisitBonus,
		cmd.ReferrerBonus,
		cmd.RefereeBonus,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid loyalty settings: %w", err)
	}

	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		return uc.settingsRepo.Store(ctx, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store loyalty settings: %w", err)
	}

	return &UpdateLoyaltySettingsResult{
		DefaultThreshold: settings.DefaultThreshold().Value(),
		FirstVisitBonus:  settings.FirstVisitBonus().Value(),
		ReferrerBonus:    settings.ReferrerBonus().Value(),
		RefereeBonus:     settings.RefereeBonus().Value(),
	}, nil
}
