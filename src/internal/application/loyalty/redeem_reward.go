package loyalty

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// RedeemReward Use Case
// ===========================

// RedeemRewardCommand 核銷獎勵的命令
//
// 輸入：
// - CustomerID: 客戶 ID（UUID 字串）
//
// 使用場景：店員為客戶兌換免費服務時操作
type RedeemRewardCommand struct {
	CustomerID string
}

// RedeemRewardResult 核銷結果
type RedeemRewardResult struct {
	RedemptionID    string
	CustomerID      string
	CycleNumber     int
	RedeemedAt      time.Time
	PendingRewards  int
	RewardsRedeemed int
}

// RedeemRewardUseCase 獎勵核銷 Use Case
//
// 職責：
// 1. 在事務中鎖定帳戶、查找最早的待兌換記錄
// 2. 兌換記錄狀態轉換（pending → redeemed）與帳戶計數
//    在同一事務中原子完成
//
// 業務規則：
// - 先兌早期獎勵（週期編號最小的 pending 記錄）
// - 沒有待兌換記錄時返回 ErrNoRewardToRedeem
//
// 並發安全：
// - 行鎖序列化同一客戶的核銷與集點操作，
//   防止同一筆獎勵被並發核銷兩次
type RedeemRewardUseCase struct {
	accountRepo    loyalty.LoyaltyAccountRepository
	redemptionRepo loyalty.RedemptionRecordRepository
	txManager      shared.TransactionManager
}

// NewRedeemRewardUseCase 創建 Use Case 實例
func NewRedeemRewardUseCase(
	accountRepo loyalty.LoyaltyAccountRepository,
	redemptionRepo loyalty.RedemptionRecordRepository,
	txManager shared.TransactionManager,
) *RedeemRewardUseCase {
	return &RedeemRewardUseCase{
		accountRepo:    accountRepo,
		redemptionRepo: redemptionRepo,
		txManager:      txManager,
	}
}

// Execute 執行獎勵核銷
//
// 執行流程：
// 1. 驗證並轉換 CustomerID
// 2. 在事務中：
//    a. 鎖定帳戶（序列化與其他核銷/集點的競爭）
//    b. 查找最早的待兌換記錄（在事務中，看到行鎖保護的最新狀態）
//    c. MarkRedeemed + ConsumeReward（記錄與帳戶計數一起變更）
//    d. 持久化
//
// 錯誤處理：
// - ErrInvalidCustomerID: CustomerID 格式無效
// - ErrAccountNotFound: 客戶沒有集點帳戶
// - ErrNoRewardToRedeem: 沒有待兌換的獎勵（含全部已過期的情況）
func (uc *RedeemRewardUseCase) Execute(cmd RedeemRewardCommand) (*RedeemRewardResult, error) {
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	var result *RedeemRewardResult
	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		// a. 鎖定帳戶
		account, err := uc.accountRepo.FindByCustomerIDForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		// b. 查找最早的 pending 兌換記錄
		//    先查記錄再動帳戶計數：全部過期時帳戶計數不被污染
		redemption, err := uc.redemptionRepo.FindOldestPending(ctx, account.AccountID())
		if err != nil {
			if errors.Is(err, loyalty.ErrRedemptionNotFound) {
				return loyalty.ErrNoRewardToRedeem.WithContext(
					"customer_id", customerID.String(),
				)
			}
			return fmt.Errorf("failed to find pending redemption: %w", err)
		}

		// c. 狀態轉換 + 帳戶計數（同一事務，原子）
		if err := redemption.MarkRedeemed(); err != nil {
			return fmt.Errorf("failed to mark redemption redeemed: %w", err)
		}
		if err := account.ConsumeReward(); err != nil {
			return fmt.Errorf("failed to consume reward: %w", err)
		}

		// d. 持久化
		if err := uc.redemptionRepo.Update(ctx, redemption); err != nil {
			return fmt.Errorf("failed to update redemption record: %w", err)
		}
		if err := uc.accountRepo.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		// 剩餘待兌換數以兌換記錄為準（過期的獎勵不計入）
		pendingCount, err := uc.redemptionRepo.CountPending(ctx, account.AccountID())
		if err != nil {
			return fmt.Errorf("failed to count pending redemptions: %w", err)
		}

		result = &RedeemRewardResult{
			RedemptionID:    redemption.RedemptionID().String(),
			CustomerID:      customerID.String(),
			CycleNumber:     redemption.CycleNumber(),
			RedeemedAt:      *redemption.RedeemedAt(),
			PendingRewards:  int(pendingCount),
			RewardsRedeemed: account.RewardsRedeemed(),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
