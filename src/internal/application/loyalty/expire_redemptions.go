package loyalty

import (
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// ExpireStaleRedemptions Use Case
// ===========================

// ExpireStaleRedemptionsCommand 過期清掃的命令
//
// 輸入：
// - MaxAge: 獎勵有效期（超過此期限的 pending 記錄標記為 expired）
type ExpireStaleRedemptionsCommand struct {
	MaxAge time.Duration
}

// ExpireStaleRedemptionsResult 清掃結果
type ExpireStaleRedemptionsResult struct {
	ExpiredCount int
	Cutoff       time.Time
}

// ExpireStaleRedemptionsUseCase 兌換記錄過期清掃 Use Case
//
// 職責：
// 1. 查找所有超過有效期的 pending 兌換記錄
// 2. 逐筆標記為 expired（pending → expired 終態轉換）
//
// 設計決策：
// - 過期不回沖帳戶計數：rewardsEarned 反映歷史事實，
//   過期只是讓該筆獎勵不再可核銷（FindOldestPending 不會返回）
// - 逐筆獨立事務：單筆失敗不阻塞其他記錄的清掃
// - 條件式標記：候選清單讀取後狀態可能已變（並發核銷搶先
//   提交），每筆以 MarkExpiredIfPending 帶狀態守衛寫入，
//   輸掉競爭的一方跳過，絕不覆寫資料庫中的終態
//
// 調度：由 gocron 定時任務週期性觸發（見 infrastructure/scheduler）
type ExpireStaleRedemptionsUseCase struct {
	redemptionRepo loyalty.RedemptionRecordRepository
	txManager      shared.TransactionManager
}

// NewExpireStaleRedemptionsUseCase 創建 Use Case 實例
func NewExpireStaleRedemptionsUseCase(
	redemptionRepo loyalty.RedemptionRecordRepository,
	txManager shared.TransactionManager,
) *ExpireStaleRedemptionsUseCase {
	return &ExpireStaleRedemptionsUseCase{
		redemptionRepo: redemptionRepo,
		txManager:      txManager,
	}
}

// Execute 執行過期清掃
//
// 執行流程：
// 1. 計算 cutoff 時間（now - MaxAge）
// 2. 查找早於 cutoff 的 pending 記錄（獨立讀，不鎖）
// 3. 逐筆在獨立事務中條件式標記為 expired
//    （僅當資料庫中仍為 pending，已核銷的記錄跳過）
//
// 錯誤處理：
// - MaxAge <= 0 為配置錯誤
// - 單筆標記失敗跳過該筆，繼續清掃其餘記錄
func (uc *ExpireStaleRedemptionsUseCase) Execute(cmd ExpireStaleRedemptionsCommand) (*ExpireStaleRedemptionsResult, error) {
	if cmd.MaxAge <= 0 {
		return nil, loyalty.ErrInvalidSettings.WithContext(
			"field", "max_age",
			"reason", "redemption max age must be positive",
		)
	}

	cutoff := time.Now().Add(-cmd.MaxAge)

	// 獨立讀（nil ctx）：清掃候選清單不需要鎖
	stale, err := uc.redemptionRepo.FindPendingOlderThan(nil, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale redemptions: %w", err)
	}

	expired := 0
	for _, redemption := range stale {
		var marked bool
		err := uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
			// 條件式標記：候選清單是無鎖快照，狀態以資料庫為準；
			// 讀取後被核銷的記錄 RowsAffected 為 0，該筆跳過
			ok, err := uc.redemptionRepo.MarkExpiredIfPending(ctx, redemption.RedemptionID())
			if err != nil {
				return fmt.Errorf("failed to mark redemption expired: %w", err)
			}
			marked = ok
			return nil
		})
		if err != nil || !marked {
			continue
		}
		expired++
	}

	return &ExpireStaleRedemptionsResult{
		ExpiredCount: expired,
		Cutoff:       cutoff,
	}, nil
}
