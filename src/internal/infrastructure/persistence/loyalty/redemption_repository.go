package loyalty

import (
	"errors"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// RedemptionRecordRepositoryImpl
// ===========================

// RedemptionRecordRepositoryImpl 兌換記錄倉儲實現（GORM）
type RedemptionRecordRepositoryImpl struct {
	db *gorm.DB
}

// NewRedemptionRecordRepository 創建新的兌換記錄倉儲實例
func NewRedemptionRecordRepository(db *gorm.DB) loyalty.RedemptionRecordRepository {
	return &RedemptionRecordRepositoryImpl{db: db}
}

// Save 保存新的兌換記錄
//
// (account_id, cycle_number) 唯一索引是「同一週期至多一筆獎勵」
// 不變條件的最後防線——違反時原樣傳遞給調用方，
// 該事務整體回滾
func (r *RedemptionRecordRepositoryImpl) Save(ctx shared.TransactionContext, record *loyalty.RedemptionRecord) error {
	db := r.getDB(ctx)

	gormModel := redemptionToGORM(record)

	result := db.Create(gormModel)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return loyalty.ErrRepositoryError.WithContext(
				"reason", "duplicate redemption for cycle",
				"account_id", record.AccountID().String(),
				"cycle_number", record.CycleNumber(),
			)
		}
		return result.Error
	}

	return nil
}

// Update 更新兌換記錄狀態（核銷 / 過期）
//
// 使用 Save 更新所有字段（redeemed_at 可能由 NULL 變為時間戳）
func (r *RedemptionRecordRepositoryImpl) Update(ctx shared.TransactionContext, record *loyalty.RedemptionRecord) error {
	db := r.getDB(ctx)

	gormModel := redemptionToGORM(record)

	result := db.Save(gormModel)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// MarkExpiredIfPending 條件式過期標記（pending → expired）
//
// 單條 UPDATE 帶狀態守衛：已被並發核銷（或已過期）的記錄
// RowsAffected 為 0，返回 false 讓調用方跳過，不覆寫終態
func (r *RedemptionRecordRepositoryImpl) MarkExpiredIfPending(ctx shared.TransactionContext, redemptionID loyalty.RedemptionID) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&RedemptionRecordGORM{}).
		Where("redemption_id = ? AND status = ?", redemptionID.String(), string(loyalty.RedemptionPending)).
		Update("status", string(loyalty.RedemptionExpired))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// FindOldestPending 查找帳戶最早的待兌換記錄
//
// 排序：週期編號最小者優先（先兌早期獎勵）
//
// 錯誤處理：
// - gorm.ErrRecordNotFound → loyalty.ErrRedemptionNotFound
func (r *RedemptionRecordRepositoryImpl) FindOldestPending(ctx shared.TransactionContext, accountID loyalty.AccountID) (*loyalty.RedemptionRecord, error) {
	db := r.getDB(ctx)

	var gormModel RedemptionRecordGORM

	result := db.Where("account_id = ? AND status = ?", accountID.String(), string(loyalty.RedemptionPending)).
		Order("cycle_number ASC").
		First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrRedemptionNotFound.WithContext(
				"account_id", accountID.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// FindPendingOlderThan 查找所有早於 cutoff 獲得且仍 pending 的記錄
//
// 使用場景：定時清掃（過期標記），跨所有帳戶
func (r *RedemptionRecordRepositoryImpl) FindPendingOlderThan(ctx shared.TransactionContext, cutoff time.Time) ([]*loyalty.RedemptionRecord, error) {
	db := r.getDB(ctx)

	var gormModels []RedemptionRecordGORM

	result := db.Where("status = ? AND earned_at < ?", string(loyalty.RedemptionPending), cutoff).
		Order("earned_at ASC").
		Find(&gormModels)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]*loyalty.RedemptionRecord, 0, len(gormModels))
	for i := range gormModels {
		record, err := gormModels[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// CountPending 統計帳戶的待兌換記錄數
func (r *RedemptionRecordRepositoryImpl) CountPending(ctx shared.TransactionContext, accountID loyalty.AccountID) (int64, error) {
	db := r.getDB(ctx)

	var count int64

	result := db.Model(&RedemptionRecordGORM{}).
		Where("account_id = ? AND status = ?", accountID.String(), string(loyalty.RedemptionPending)).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// getDB 獲取 GORM DB 實例（ctx 可為 nil）
func (r *RedemptionRecordRepositoryImpl) getDB(ctx shared.TransactionContext) *gorm.DB {
	return getDB(r.db, ctx)
}
