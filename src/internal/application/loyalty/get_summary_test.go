package loyalty

import (
	"errors"
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===========================
// GetLoyaltySummary Use Case 測試
// ===========================

func newSummaryFixture() (*GetLoyaltySummaryUseCase, *redeemFixture) {
	f := newRedeemFixture()
	summary := NewGetLoyaltySummaryUseCase(
		f.accountRepo,
		f.award.punchRepo,
		f.redemptionRepo,
		f.settingsRepo,
	)
	return summary, f
}

// Test 1: 有集點活動的客戶摘要
func TestGetLoyaltySummaryUseCase_WithActivity_ReturnsSummary(t *testing.T) {
	// Arrange
	summary, f := newSummaryFixture()
	customerID := loyalty.NewCustomerID()
	storeSettings(t, f.settingsRepo, 9, 0, 1, 1)

	for i, amount := range []string{"800", "1200", "680.5"} {
		_, err := f.award.Execute(AwardAppointmentPunchCommand{
			CustomerID:    customerID.String(),
			AppointmentID: loyalty.NewAccountID().String(),
			ServiceName:   "基礎洗澡",
			AmountSpent:   amount,
		})
		require.NoError(t, err, "appointment %d", i+1)
	}

	// Act
	result, err := summary.Execute(GetLoyaltySummaryQuery{
		CustomerID: customerID.String(),
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccountID)
	assert.Equal(t, 3, result.CurrentPunches)
	assert.Equal(t, 9, result.Threshold)
	assert.False(t, result.HasOverride)
	assert.Equal(t, 3, result.TotalVisits)
	assert.Equal(t, 0, result.RewardsEarned)
	assert.Equal(t, 0, result.PendingRewards)
	assert.Equal(t, "2680.5", result.TotalAmountSpent, "消費金額精確累加")
	assert.False(t, result.CreatedAt.IsZero())
}

// Test 2: 從未集點的客戶返回零值摘要（不是錯誤）
func TestGetLoyaltySummaryUseCase_NoAccount_ReturnsZeroSummary(t *testing.T) {
	// Arrange
	summary, _ := newSummaryFixture()
	customerID := loyalty.NewCustomerID()

	// Act
	result, err := summary.Execute(GetLoyaltySummaryQuery{
		CustomerID: customerID.String(),
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result.AccountID)
	assert.Equal(t, customerID.String(), result.CustomerID)
	assert.Equal(t, 0, result.CurrentPunches)
	assert.Equal(t, 9, result.Threshold, "零值摘要仍帶出全域門檻供 UI 顯示")
	assert.Equal(t, "0", result.TotalAmountSpent)
}

// Test 3: 過期後的摘要——待兌換數以兌換記錄為準
func TestGetLoyaltySummaryUseCase_AfterExpiry_PendingExcludesExpired(t *testing.T) {
	// Arrange
	summary, f := newSummaryFixture()
	expire := NewExpireStaleRedemptionsUseCase(f.redemptionRepo, NewMockTransactionManager())

	customerID := loyalty.NewCustomerID()
	f.earnRewards(t, customerID, 1)
	time.Sleep(20 * time.Millisecond)

	result, err := expire.Execute(ExpireStaleRedemptionsCommand{
		MaxAge: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.ExpiredCount)

	// Act
	got, err := summary.Execute(GetLoyaltySummaryQuery{
		CustomerID: customerID.String(),
	})

	// Assert: 歷史計數保留，但過期的獎勵不再是待兌換
	require.NoError(t, err)
	assert.Equal(t, 1, got.RewardsEarned, "rewardsEarned 反映歷史事實，不回沖")
	assert.Equal(t, 0, got.RewardsRedeemed)
	assert.Equal(t, 0, got.PendingRewards, "過期的獎勵不計入待兌換")
}

// Test 4: 無效的 CustomerID 格式
func TestGetLoyaltySummaryUseCase_InvalidCustomerID_ReturnsError(t *testing.T) {
	// Arrange
	summary, _ := newSummaryFixture()

	// Act
	result, err := summary.Execute(GetLoyaltySummaryQuery{CustomerID: "bogus"})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, loyalty.ErrInvalidCustomerID))
}
