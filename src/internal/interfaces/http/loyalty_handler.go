package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	applicationloyalty "github.com/jackyeh168/salon_crm/src/internal/application/loyalty"
	domainloyalty "github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
)

// ===========================
// LoyaltyHandler
// ===========================

// LoyaltyHandler 集點 API 處理器
type LoyaltyHandler struct {
	awardUseCase    *applicationloyalty.AwardAppointmentPunchUseCase
	referralUseCase *applicationloyalty.AwardReferralBonusesUseCase
	redeemUseCase   *applicationloyalty.RedeemRewardUseCase
	summaryUseCase  *applicationloyalty.GetLoyaltySummaryUseCase
	overrideUseCase *applicationloyalty.SetThresholdOverrideUseCase
	settingsUseCase *applicationloyalty.UpdateLoyaltySettingsUseCase
}

// NewLoyaltyHandler 創建集點處理器
func NewLoyaltyHandler(
	awardUseCase *applicationloyalty.AwardAppointmentPunchUseCase,
	referralUseCase *applicationloyalty.AwardReferralBonusesUseCase,
	redeemUseCase *applicationloyalty.RedeemRewardUseCase,
	summaryUseCase *applicationloyalty.GetLoyaltySummaryUseCase,
	overrideUseCase *applicationloyalty.SetThresholdOverrideUseCase,
	settingsUseCase *applicationloyalty.UpdateLoyaltySettingsUseCase,
) *LoyaltyHandler {
	return &LoyaltyHandler{
		awardUseCase:    awardUseCase,
		referralUseCase: referralUseCase,
		redeemUseCase:   redeemUseCase,
		summaryUseCase:  summaryUseCase,
		overrideUseCase: overrideUseCase,
		settingsUseCase: settingsUseCase,
	}
}

// ===========================
// 預約集點
// ===========================

// awardPunchRequest 預約集點請求
type awardPunchRequest struct {
	CustomerID    string `json:"customer_id"`
	AppointmentID string `json:"appointment_id"`
	ServiceName   string `json:"service_name"`
	AmountSpent   string `json:"amount_spent"`
}

// awardPunchResponse 集點發放結果
type awardPunchResponse struct {
	AccountID      string `json:"account_id"`
	CustomerID     string `json:"customer_id"`
	PunchesAwarded int    `json:"punches_awarded"`
	CurrentPunches int    `json:"current_punches"`
	Threshold      int    `json:"threshold"`
	RewardEarned   bool   `json:"reward_earned"`
	CycleNumber    int    `json:"cycle_number,omitempty"`
	IsFirstVisit   bool   `json:"is_first_visit"`
}

// AwardPunch 為完成的預約發放集點
//
// POST /api/loyalty/punches
func (h *LoyaltyHandler) AwardPunch(c *fiber.Ctx) error {
	var req awardPunchRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domainloyalty.ErrInvalidAwardEvent.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.awardUseCase.Execute(applicationloyalty.AwardAppointmentPunchCommand{
		CustomerID:    req.CustomerID,
		AppointmentID: req.AppointmentID,
		ServiceName:   req.ServiceName,
		AmountSpent:   req.AmountSpent,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(awardPunchResponse{
		AccountID:      result.AccountID,
		CustomerID:     result.CustomerID,
		PunchesAwarded: result.PunchesAwarded,
		CurrentPunches: result.CurrentPunches,
		Threshold:      result.Threshold,
		RewardEarned:   result.RewardEarned,
		CycleNumber:    result.CycleNumber,
		IsFirstVisit:   result.IsFirstVisit,
	})
}

// ===========================
// 推薦獎勵
// ===========================

// referralBonusRequest 推薦獎勵請求
type referralBonusRequest struct {
	ReferrerCustomerID string `json:"referrer_customer_id"`
	RefereeCustomerID  string `json:"referee_customer_id"`
	ReferralEventID    string `json:"referral_event_id"`
}

// referralBonusOutcome 單方獎勵結果
type referralBonusOutcome struct {
	CustomerID     string `json:"customer_id"`
	PunchesAwarded int    `json:"punches_awarded"`
	CurrentPunches int    `json:"current_punches"`
	RewardEarned   bool   `json:"reward_earned"`
}

// referralBonusResponse 推薦獎勵發放結果
//
// referrer / referee 為 null 表示該方因獎勵點數設為 0 而未發放
type referralBonusResponse struct {
	Referrer *referralBonusOutcome `json:"referrer"`
	Referee  *referralBonusOutcome `json:"referee"`
}

// AwardReferralBonuses 發放推薦獎勵（被推薦人完成首次預約後觸發）
//
// POST /api/loyalty/referral-bonuses
func (h *LoyaltyHandler) AwardReferralBonuses(c *fiber.Ctx) error {
	var req referralBonusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domainloyalty.ErrInvalidAwardEvent.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.referralUseCase.Execute(applicationloyalty.AwardReferralBonusesCommand{
		ReferrerCustomerID: req.ReferrerCustomerID,
		RefereeCustomerID:  req.RefereeCustomerID,
		ReferralEventID:    req.ReferralEventID,
	})
	if err != nil {
		return respondError(c, err)
	}

	resp := referralBonusResponse{}
	if result.Referrer != nil {
		resp.Referrer = &referralBonusOutcome{
			CustomerID:     result.Referrer.CustomerID,
			PunchesAwarded: result.Referrer.PunchesAwarded,
			CurrentPunches: result.Referrer.CurrentPunches,
			RewardEarned:   result.Referrer.RewardEarned,
		}
	}
	if result.Referee != nil {
		resp.Referee = &referralBonusOutcome{
			CustomerID:     result.Referee.CustomerID,
			PunchesAwarded: result.Referee.PunchesAwarded,
			CurrentPunches: result.Referee.CurrentPunches,
			RewardEarned:   result.Referee.RewardEarned,
		}
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ===========================
// 獎勵核銷
// ===========================

// redeemRequest 核銷請求
type redeemRequest struct {
	CustomerID string `json:"customer_id"`
}

// redeemResponse 核銷結果
type redeemResponse struct {
	RedemptionID    string    `json:"redemption_id"`
	CustomerID      string    `json:"customer_id"`
	CycleNumber     int       `json:"cycle_number"`
	RedeemedAt      time.Time `json:"redeemed_at"`
	PendingRewards  int       `json:"pending_rewards"`
	RewardsRedeemed int       `json:"rewards_redeemed"`
}

// RedeemReward 核銷一筆免費美容獎勵
//
// POST /api/loyalty/redemptions
func (h *LoyaltyHandler) RedeemReward(c *fiber.Ctx) error {
	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domainloyalty.ErrInvalidCustomerID.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.redeemUseCase.Execute(applicationloyalty.RedeemRewardCommand{
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(redeemResponse{
		RedemptionID:    result.RedemptionID,
		CustomerID:      result.CustomerID,
		CycleNumber:     result.CycleNumber,
		RedeemedAt:      result.RedeemedAt,
		PendingRewards:  result.PendingRewards,
		RewardsRedeemed: result.RewardsRedeemed,
	})
}

// ===========================
// 集點摘要
// ===========================

// summaryResponse 集點卡摘要
type summaryResponse struct {
	AccountID        string    `json:"account_id,omitempty"`
	CustomerID       string    `json:"customer_id"`
	CurrentPunches   int       `json:"current_punches"`
	Threshold        int       `json:"threshold"`
	HasOverride      bool      `json:"has_override"`
	TotalVisits      int       `json:"total_visits"`
	RewardsEarned    int       `json:"rewards_earned"`
	RewardsRedeemed  int       `json:"rewards_redeemed"`
	PendingRewards   int       `json:"pending_rewards"`
	TotalAmountSpent string    `json:"total_amount_spent"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// GetSummary 查詢客戶的集點卡摘要
//
// GET /api/loyalty/summary/:customerID
func (h *LoyaltyHandler) GetSummary(c *fiber.Ctx) error {
	result, err := h.summaryUseCase.Execute(applicationloyalty.GetLoyaltySummaryQuery{
		CustomerID: c.Params("customerID"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(summaryResponse{
		AccountID:        result.AccountID,
		CustomerID:       result.CustomerID,
		CurrentPunches:   result.CurrentPunches,
		Threshold:        result.Threshold,
		HasOverride:      result.HasOverride,
		TotalVisits:      result.TotalVisits,
		RewardsEarned:    result.RewardsEarned,
		RewardsRedeemed:  result.RewardsRedeemed,
		PendingRewards:   result.PendingRewards,
		TotalAmountSpent: result.TotalAmountSpent,
		CreatedAt:        result.CreatedAt,
	})
}

// ===========================
// 門檻與全域設定（管理員操作）
// ===========================

// thresholdOverrideRequest 個別門檻設定請求
//
// threshold 為 null 表示清除覆寫（回到全域預設）
type thresholdOverrideRequest struct {
	CustomerID string `json:"customer_id"`
	Threshold  *int   `json:"threshold"`
}

// thresholdOverrideResponse 設定結果
type thresholdOverrideResponse struct {
	AccountID          string `json:"account_id"`
	CustomerID         string `json:"customer_id"`
	EffectiveThreshold int    `json:"effective_threshold"`
	HasOverride        bool   `json:"has_override"`
}

// SetThresholdOverride 設定或清除客戶的個別集點門檻
//
// PUT /api/loyalty/threshold-override
func (h *LoyaltyHandler) SetThresholdOverride(c *fiber.Ctx) error {
	var req thresholdOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domainloyalty.ErrInvalidThreshold.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.overrideUseCase.Execute(applicationloyalty.SetThresholdOverrideCommand{
		CustomerID: req.CustomerID,
		Threshold:  req.Threshold,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(thresholdOverrideResponse{
		AccountID:          result.AccountID,
		CustomerID:         result.CustomerID,
		EffectiveThreshold: result.EffectiveThreshold,
		HasOverride:        result.HasOverride,
	})
}

// settingsRequest 全域集點設定請求
type settingsRequest struct {
	DefaultThreshold int `json:"default_threshold"`
	FirstVisitBonus  int `json:"first_visit_bonus"`
	ReferrerBonus    int `json:"referrer_bonus"`
	RefereeBonus     int `json:"referee_bonus"`
}

// settingsResponse 設定結果
type settingsResponse struct {
	DefaultThreshold int `json:"default_threshold"`
	FirstVisitBonus  int `json:"first_visit_bonus"`
	ReferrerBonus    int `json:"referrer_bonus"`
	RefereeBonus     int `json:"referee_bonus"`
}

// UpdateSettings 更新全域集點設定
//
// PUT /api/loyalty/settings
func (h *LoyaltyHandler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domainloyalty.ErrInvalidSettings.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.settingsUseCase.Execute(applicationloyalty.UpdateLoyaltySettingsCommand{
		DefaultThreshold: req.DefaultThreshold,
		FirstVisitBonus:  req.FirstVisitBonus,
		ReferrerBonus:    req.ReferrerBonus,
		RefereeBonus:     req.RefereeBonus,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(settingsResponse{
		DefaultThreshold: result.DefaultThreshold,
		FirstVisitBonus:  result.FirstVisitBonus,
		ReferrerBonus:    result.ReferrerBonus,
		RefereeBonus:     result.RefereeBonus,
	})
}
