package loyalty

import (
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===========================
// RedemptionRecordRepository Integration Tests
// ===========================

// earnTestRedemption 集滿一個週期，返回帳戶與待兌換記錄
func earnTestRedemption(t *testing.T) (*loyalty.LoyaltyAccount, *loyalty.RedemptionRecord) {
	t.Helper()

	account := createTestAccount(t)
	outcome := awardTestPunches(t, account, 9, "appt-earn")
	require.True(t, outcome.RewardEarned)
	require.Len(t, outcome.Redemptions, 1)

	return account, outcome.Redemptions[0]
}

// reconstructPendingAt 重建一筆指定獲得時間的待兌換記錄（模擬歷史資料）
func reconstructPendingAt(t *testing.T, accountID loyalty.AccountID, cycle int, earnedAt time.Time) *loyalty.RedemptionRecord {
	t.Helper()

	record, err := loyalty.ReconstructRedemptionRecord(
		loyalty.NewRedemptionID(),
		accountID,
		cycle,
		loyalty.RedemptionPending,
		earnedAt,
		nil,
	)
	require.NoError(t, err)

	return record
}

// Test 1: Save persists a pending redemption
func TestRedemptionRecordRepository_Save_PendingRecord_Success(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	_, redemption := earnTestRedemption(t)

	// Act
	err := repo.Save(nil, redemption)

	// Assert
	require.NoError(t, err)

	var gormModel RedemptionRecordGORM
	result := db.First(&gormModel, "redemption_id = ?", redemption.RedemptionID().String())
	require.NoError(t, result.Error)
	assert.Equal(t, string(loyalty.RedemptionPending), gormModel.Status)
	assert.Equal(t, 1, gormModel.CycleNumber)
	assert.Nil(t, gormModel.RedeemedAt)
}

// Test 2: Save fails for duplicate (account, cycle) pair
func TestRedemptionRecordRepository_Save_DuplicateCycle_ReturnsError(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	_, redemption := earnTestRedemption(t)
	require.NoError(t, repo.Save(nil, redemption))

	// 同一帳戶同一週期的第二筆記錄
	duplicate := reconstructPendingAt(t, redemption.AccountID(), redemption.CycleNumber(), time.Now())

	// Act
	err := repo.Save(nil, duplicate)

	// Assert
	require.Error(t, err)
	assert.True(t, loyalty.ErrRepositoryError.Is(err))
}

// Test 3: Update persists redeemed status and timestamp
func TestRedemptionRecordRepository_Update_MarkRedeemed_PersistsTimestamp(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	_, redemption := earnTestRedemption(t)
	require.NoError(t, repo.Save(nil, redemption))

	require.NoError(t, redemption.MarkRedeemed())

	// Act
	err := repo.Update(nil, redemption)

	// Assert
	require.NoError(t, err)

	found, err := repo.FindPendingOlderThan(nil, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, found, "redeemed record must no longer be pending")

	var gormModel RedemptionRecordGORM
	db.First(&gormModel, "redemption_id = ?", redemption.RedemptionID().String())
	assert.Equal(t, string(loyalty.RedemptionRedeemed), gormModel.Status)
	require.NotNil(t, gormModel.RedeemedAt)
}

// Test 4: FindOldestPending returns the smallest cycle number
func TestRedemptionRecordRepository_FindOldestPending_ReturnsSmallestCycle(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	accountID := loyalty.NewAccountID()

	// 倒序寫入三個週期的待兌換記錄
	for _, cycle := range []int{3, 1, 2} {
		record := reconstructPendingAt(t, accountID, cycle, time.Now())
		require.NoError(t, repo.Save(nil, record))
	}

	// Act
	oldest, err := repo.FindOldestPending(nil, accountID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, oldest.CycleNumber())
}

// Test 5: FindOldestPending skips redeemed cycles
func TestRedemptionRecordRepository_FindOldestPending_SkipsRedeemed(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	accountID := loyalty.NewAccountID()

	first := reconstructPendingAt(t, accountID, 1, time.Now())
	require.NoError(t, repo.Save(nil, first))
	second := reconstructPendingAt(t, accountID, 2, time.Now())
	require.NoError(t, repo.Save(nil, second))

	// 核銷週期 1
	require.NoError(t, first.MarkRedeemed())
	require.NoError(t, repo.Update(nil, first))

	// Act
	oldest, err := repo.FindOldestPending(nil, accountID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, oldest.CycleNumber())
}

// Test 6: FindOldestPending returns ErrRedemptionNotFound when nothing pending
func TestRedemptionRecordRepository_FindOldestPending_NonePending_ReturnsError(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)

	// Act
	oldest, err := repo.FindOldestPending(nil, loyalty.NewAccountID())

	// Assert
	require.Error(t, err)
	assert.Nil(t, oldest)
	assert.True(t, loyalty.ErrRedemptionNotFound.Is(err))
}

// Test 7: FindPendingOlderThan returns only stale pending records
func TestRedemptionRecordRepository_FindPendingOlderThan_FiltersByCutoffAndStatus(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)

	staleAccount := loyalty.NewAccountID()
	stale := reconstructPendingAt(t, staleAccount, 1, time.Now().Add(-48*time.Hour))
	require.NoError(t, repo.Save(nil, stale))

	freshAccount := loyalty.NewAccountID()
	fresh := reconstructPendingAt(t, freshAccount, 1, time.Now())
	require.NoError(t, repo.Save(nil, fresh))

	redeemedAccount := loyalty.NewAccountID()
	redeemed := reconstructPendingAt(t, redeemedAccount, 1, time.Now().Add(-48*time.Hour))
	require.NoError(t, repo.Save(nil, redeemed))
	require.NoError(t, redeemed.MarkRedeemed())
	require.NoError(t, repo.Update(nil, redeemed))

	// Act
	found, err := repo.FindPendingOlderThan(nil, time.Now().Add(-24*time.Hour))

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 1, "only the stale pending record qualifies")
	assert.True(t, found[0].RedemptionID().Equals(stale.RedemptionID()))
}

// Test 8: CountPending counts only pending records of one account
func TestRedemptionRecordRepository_CountPending_PerAccount(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	accountID := loyalty.NewAccountID()

	for cycle := 1; cycle <= 3; cycle++ {
		record := reconstructPendingAt(t, accountID, cycle, time.Now())
		require.NoError(t, repo.Save(nil, record))
	}

	// 另一個帳戶的記錄不應計入
	other := reconstructPendingAt(t, loyalty.NewAccountID(), 1, time.Now())
	require.NoError(t, repo.Save(nil, other))

	// Act
	count, err := repo.CountPending(nil, accountID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

// Test 9: MarkExpiredIfPending flips a pending record to expired
func TestRedemptionRecordRepository_MarkExpiredIfPending_FlipsPending(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	record := reconstructPendingAt(t, loyalty.NewAccountID(), 1, time.Now().Add(-48*time.Hour))
	require.NoError(t, repo.Save(nil, record))

	// Act
	marked, err := repo.MarkExpiredIfPending(nil, record.RedemptionID())

	// Assert
	require.NoError(t, err)
	assert.True(t, marked)

	var gormModel RedemptionRecordGORM
	require.NoError(t, db.First(&gormModel, "redemption_id = ?", record.RedemptionID().String()).Error)
	assert.Equal(t, string(loyalty.RedemptionExpired), gormModel.Status)
}

// Test 10: MarkExpiredIfPending does not overwrite a concurrently redeemed record
func TestRedemptionRecordRepository_MarkExpiredIfPending_LosesRaceToRedeem_KeepsRedeemedRow(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRedemptionRecordRepository(db)
	record := reconstructPendingAt(t, loyalty.NewAccountID(), 1, time.Now().Add(-48*time.Hour))
	require.NoError(t, repo.Save(nil, record))

	// 清掃先讀快照，核銷隨後提交
	stale, err := repo.FindPendingOlderThan(nil, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, record.MarkRedeemed())
	require.NoError(t, repo.Update(nil, record))

	// Act: 清掃用過時的快照嘗試標記
	marked, err := repo.MarkExpiredIfPending(nil, stale[0].RedemptionID())

	// Assert: 狀態守衛擋下，終態與核銷時間戳原封不動
	require.NoError(t, err)
	assert.False(t, marked)

	var gormModel RedemptionRecordGORM
	require.NoError(t, db.First(&gormModel, "redemption_id = ?", record.RedemptionID().String()).Error)
	assert.Equal(t, string(loyalty.RedemptionRedeemed), gormModel.Status)
	assert.NotNil(t, gormModel.RedeemedAt)
}
