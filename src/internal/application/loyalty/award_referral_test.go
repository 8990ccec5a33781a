package loyalty

import (
	"errors"
	"sync"
	"testing"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===========================
// AwardReferralBonuses Use Case 測試
// ===========================

func newAwardReferralFixture() (
	*AwardReferralBonusesUseCase,
	*MockLoyaltyAccountRepository,
	*MockPunchRecordRepository,
	*MockLoyaltySettingsRepository,
) {
	accountRepo := NewMockLoyaltyAccountRepository()
	punchRepo := NewMockPunchRecordRepository()
	redemptionRepo := NewMockRedemptionRecordRepository()
	settingsRepo := NewMockLoyaltySettingsRepository()
	useCase := NewAwardReferralBonusesUseCase(
		accountRepo, punchRepo, redemptionRepo, settingsRepo,
		NewMockTransactionManager(),
	)
	return useCase, accountRepo, punchRepo, settingsRepo
}

// seedAccount 預先創建集點帳戶（推薦獎勵不延遲創建，帳戶必須已存在）
func seedAccount(t *testing.T, repo *MockLoyaltyAccountRepository, customerID loyalty.CustomerID) {
	t.Helper()
	account, err := loyalty.NewLoyaltyAccount(customerID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(nil, account))
}

// Test 1: 雙方各獲得獎勵點數（預設各 1 點）
func TestAwardReferralBonusesUseCase_BothPartiesAwarded(t *testing.T) {
	// Arrange
	useCase, accountRepo, punchRepo, _ := newAwardReferralFixture()
	referrerID := loyalty.NewCustomerID()
	refereeID := loyalty.NewCustomerID()
	seedAccount(t, accountRepo, referrerID)
	seedAccount(t, accountRepo, refereeID)

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: referrerID.String(),
		RefereeCustomerID:  refereeID.String(),
		ReferralEventID:    "referral-001",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Referrer)
	require.NotNil(t, result.Referee)
	assert.Equal(t, 1, result.Referrer.PunchesAwarded)
	assert.Equal(t, 1, result.Referee.PunchesAwarded)

	referrerAccount, err := accountRepo.FindByCustomerID(nil, referrerID)
	require.NoError(t, err)
	refereeAccount, err := accountRepo.FindByCustomerID(nil, refereeID)
	require.NoError(t, err)

	// 推薦獎勵不計入來店次數
	assert.Equal(t, 0, referrerAccount.TotalVisits())
	assert.Equal(t, 0, refereeAccount.TotalVisits())
	assert.Equal(t, 1, referrerAccount.CurrentPunches().Value())
	assert.Equal(t, 1, refereeAccount.CurrentPunches().Value())

	// Ledger 記錄的 reason 固定為 Referral Bonus、零元消費
	records, _ := punchRepo.FindByAccountID(nil, referrerAccount.AccountID())
	require.Len(t, records, 1)
	assert.Equal(t, "Referral Bonus", records[0].Reason())
	assert.True(t, records[0].AmountSpent().IsZero())
	assert.Equal(t, "referral-001", records[0].EventID())
}

// Test 2: 獎勵點數設為 0 的一方跳過
func TestAwardReferralBonusesUseCase_ZeroBonus_SkipsParty(t *testing.T) {
	// Arrange
	useCase, accountRepo, _, settingsRepo := newAwardReferralFixture()
	storeSettings(t, settingsRepo, 9, 0, 0, 2) // 推薦人 0 點、被推薦人 2 點
	referrerID := loyalty.NewCustomerID()
	refereeID := loyalty.NewCustomerID()
	seedAccount(t, accountRepo, referrerID)
	seedAccount(t, accountRepo, refereeID)

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: referrerID.String(),
		RefereeCustomerID:  refereeID.String(),
		ReferralEventID:    "referral-001",
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, result.Referrer, "0 點獎勵的一方不發放")
	require.NotNil(t, result.Referee)
	assert.Equal(t, 2, result.Referee.PunchesAwarded)

	// 跳過的一方帳戶維持原狀
	referrerAccount, err := accountRepo.FindByCustomerID(nil, referrerID)
	require.NoError(t, err)
	assert.Equal(t, 0, referrerAccount.CurrentPunches().Value())
}

// Test 3: 沒有集點帳戶的一方靜默跳過（不延遲創建）
func TestAwardReferralBonusesUseCase_MissingAccount_SkipsParty(t *testing.T) {
	// Arrange
	useCase, accountRepo, _, _ := newAwardReferralFixture()
	referrerID := loyalty.NewCustomerID()
	refereeID := loyalty.NewCustomerID()
	seedAccount(t, accountRepo, referrerID) // 被推薦人從未完成過預約，沒有帳戶

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: referrerID.String(),
		RefereeCustomerID:  refereeID.String(),
		ReferralEventID:    "referral-001",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Referrer)
	assert.Equal(t, 1, result.Referrer.PunchesAwarded)
	assert.Nil(t, result.Referee, "沒有帳戶的一方跳過，不視為錯誤")

	// 被推薦人的帳戶不會被創建
	_, err = accountRepo.FindByCustomerID(nil, refereeID)
	assert.True(t, errors.Is(err, loyalty.ErrAccountNotFound))
}

// Test 4: 推薦獎勵可以觸發集滿門檻
func TestAwardReferralBonusesUseCase_BonusCanCrossThreshold(t *testing.T) {
	// Arrange
	useCase, accountRepo, _, settingsRepo := newAwardReferralFixture()
	storeSettings(t, settingsRepo, 2, 0, 2, 1) // 門檻 2、推薦人獎勵 2 點
	referrerID := loyalty.NewCustomerID()
	refereeID := loyalty.NewCustomerID()
	seedAccount(t, accountRepo, referrerID)
	seedAccount(t, accountRepo, refereeID)

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: referrerID.String(),
		RefereeCustomerID:  refereeID.String(),
		ReferralEventID:    "referral-001",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Referrer.RewardEarned, "2 點獎勵集滿門檻 2")
	assert.Equal(t, 0, result.Referrer.CurrentPunches)

	account, _ := accountRepo.FindByCustomerID(nil, referrerID)
	assert.Equal(t, 1, account.RewardsEarned())
	assert.Equal(t, 0, account.TotalVisits(), "即使集滿，推薦獎勵仍不計來店")
}

// Test 5: 雙方相同返回錯誤
func TestAwardReferralBonusesUseCase_SameCustomer_ReturnsError(t *testing.T) {
	// Arrange
	useCase, _, _, _ := newAwardReferralFixture()
	customerID := loyalty.NewCustomerID()

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: customerID.String(),
		RefereeCustomerID:  customerID.String(),
		ReferralEventID:    "referral-001",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, loyalty.ErrInvalidCustomerID))
}

// Test 6: 空的推薦事件 ID 返回錯誤
func TestAwardReferralBonusesUseCase_EmptyEventID_ReturnsError(t *testing.T) {
	// Arrange
	useCase, accountRepo, _, _ := newAwardReferralFixture()

	// Act
	result, err := useCase.Execute(AwardReferralBonusesCommand{
		ReferrerCustomerID: loyalty.NewCustomerID().String(),
		RefereeCustomerID:  loyalty.NewCustomerID().String(),
		ReferralEventID:    "",
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, loyalty.ErrInvalidAwardEvent))
	assert.Equal(t, 0, accountRepo.SaveCallCount)
}

// Test 7: 並發推薦涉及同一對客戶——固定取鎖順序不死鎖
func TestAwardReferralBonusesUseCase_ConcurrentReferrals_NoDeadlock(t *testing.T) {
	// Arrange
	useCase, accountRepo, _, _ := newAwardReferralFixture()
	customerA := loyalty.NewCustomerID()
	customerB := loyalty.NewCustomerID()
	seedAccount(t, accountRepo, customerA)
	seedAccount(t, accountRepo, customerB)

	// Act: A 推薦 B 與 B 推薦 A 並發執行
	// （業務上不會同時成立，但取鎖順序必須撐得住）
	var wg sync.WaitGroup
	const rounds = 10
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, err := useCase.Execute(AwardReferralBonusesCommand{
				ReferrerCustomerID: customerA.String(),
				RefereeCustomerID:  customerB.String(),
				ReferralEventID:    loyalty.NewAccountID().String(),
			})
			assert.NoError(t, err)
		}(i)
		go func(n int) {
			defer wg.Done()
			_, err := useCase.Execute(AwardReferralBonusesCommand{
				ReferrerCustomerID: customerB.String(),
				RefereeCustomerID:  customerA.String(),
				ReferralEventID:    loyalty.NewAccountID().String(),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Assert: 守恆——雙方各拿到 rounds × (1+1) = 20 點中屬於自己的 10+10
	accountA, err := accountRepo.FindByCustomerID(nil, customerA)
	require.NoError(t, err)
	accountB, err := accountRepo.FindByCustomerID(nil, customerB)
	require.NoError(t, err)

	totalA := accountA.RewardsEarned()*9 + accountA.CurrentPunches().Value()
	totalB := accountB.RewardsEarned()*9 + accountB.CurrentPunches().Value()
	assert.Equal(t, 2*rounds, totalA, "A 共獲得 20 點（每輪推薦人 1 + 被推薦人 1）")
	assert.Equal(t, 2*rounds, totalB, "B 共獲得 20 點")
}
