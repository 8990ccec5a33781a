package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	applicationloyalty "github.com/jackyeh168/salon_crm/src/internal/application/loyalty"
)

// ===========================
// RedemptionSweeper
// ===========================

// RedemptionSweeper 兌換記錄過期清掃排程器
//
// 設計原則：
// - 背景排程只負責「何時跑」，過期語義全部在 Use Case 中
// - 清掃失敗只記錄日誌，不中斷排程（下一輪重試）
// - Stop 優雅關閉，等待進行中的任務結束
type RedemptionSweeper struct {
	expireUseCase *applicationloyalty.ExpireStaleRedemptionsUseCase
	maxAge        time.Duration
	interval      time.Duration
	sched         gocron.Scheduler
}

// NewRedemptionSweeper 創建清掃排程器
//
// 參數：
//   - expireUseCase: 過期清掃 Use Case
//   - maxAge: 獎勵有效期（超過後標記 expired）
//   - interval: 清掃間隔
func NewRedemptionSweeper(
	expireUseCase *applicationloyalty.ExpireStaleRedemptionsUseCase,
	maxAge time.Duration,
	interval time.Duration,
) *RedemptionSweeper {
	return &RedemptionSweeper{
		expireUseCase: expireUseCase,
		maxAge:        maxAge,
		interval:      interval,
	}
}

// Start 啟動背景清掃
func (s *RedemptionSweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Printf("[RedemptionSweeper] started: interval=%s max_age=%s", s.interval, s.maxAge)

	return nil
}

// Stop 停止背景清掃（等待進行中的任務結束）
func (s *RedemptionSweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

// sweep 執行一輪清掃
func (s *RedemptionSweeper) sweep() {
	result, err := s.expireUseCase.Execute(applicationloyalty.ExpireStaleRedemptionsCommand{
		MaxAge: s.maxAge,
	})
	if err != nil {
		log.Printf("[RedemptionSweeper] sweep failed: %v", err)
		return
	}

	if result.ExpiredCount > 0 {
		log.Printf("[RedemptionSweeper] expired %d redemption(s) earned before %s",
			result.ExpiredCount, result.Cutoff.Format(time.RFC3339))
	}
}
