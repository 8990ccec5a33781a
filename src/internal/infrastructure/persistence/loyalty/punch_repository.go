package loyalty

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// PunchRecordRepositoryImpl
// ===========================

// PunchRecordRepositoryImpl 集點記錄倉儲實現（GORM）
//
// Append-only：只有 SaveBatch 寫入，永不 UPDATE / DELETE
type PunchRecordRepositoryImpl struct {
	db *gorm.DB
}

// NewPunchRecordRepository 創建新的集點記錄倉儲實例
func NewPunchRecordRepository(db *gorm.DB) loyalty.PunchRecordRepository {
	return &PunchRecordRepositoryImpl{db: db}
}

// SaveBatch 批次追加集點記錄
//
// 實作邏輯：
// 1. 從 TransactionContext 獲取 DB 實例（必須在事務中）
// 2. 將 Domain 實體轉換為 GORM 模型
// 3. 使用 GORM Create 批次寫入
//
// 一次發放的多點（1 + 加碼）在同一事務中一起寫入，
// 與帳戶計數更新同生共死
func (r *PunchRecordRepositoryImpl) SaveBatch(ctx shared.TransactionContext, records []*loyalty.PunchRecord) error {
	if len(records) == 0 {
		return nil
	}

	// 1. 獲取 DB 實例
	db := r.getDB(ctx)

	// 2. 轉換為 GORM 模型
	gormModels := make([]*PunchRecordGORM, 0, len(records))
	for _, record := range records {
		gormModels = append(gormModels, punchToGORM(record))
	}

	// 3. 批次寫入
	result := db.Create(&gormModels)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// FindByAccountID 查詢帳戶的全部集點記錄
//
// 排序：週期編號升序、週期內序號升序（稽核閱讀順序）
func (r *PunchRecordRepositoryImpl) FindByAccountID(ctx shared.TransactionContext, accountID loyalty.AccountID) ([]*loyalty.PunchRecord, error) {
	db := r.getDB(ctx)

	var gormModels []PunchRecordGORM

	result := db.Where("account_id = ?", accountID.String()).
		Order("cycle_number ASC, punch_sequence ASC").
		Find(&gormModels)
	if result.Error != nil {
		return nil, result.Error
	}

	// 轉換為 Domain 模型（損壞資料在重建時被攔截）
	records := make([]*loyalty.PunchRecord, 0, len(gormModels))
	for i := range gormModels {
		record, err := gormModels[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// CountByCycle 統計某週期的集點記錄數
//
// 使用場景：稽核檢查（週期記錄數不得超過當時門檻）
func (r *PunchRecordRepositoryImpl) CountByCycle(ctx shared.TransactionContext, accountID loyalty.AccountID, cycleNumber int) (int64, error) {
	db := r.getDB(ctx)

	var count int64

	result := db.Model(&PunchRecordGORM{}).
		Where("account_id = ? AND cycle_number = ?", accountID.String(), cycleNumber).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// TotalAmountSpent 統計帳戶的累計消費金額
//
// 金額以字串保存 decimal，不能用 SQL SUM（浮點誤差），
// 在應用層逐筆累加
func (r *PunchRecordRepositoryImpl) TotalAmountSpent(ctx shared.TransactionContext, accountID loyalty.AccountID) (loyalty.ServicePrice, error) {
	db := r.getDB(ctx)

	var amounts []string

	result := db.Model(&PunchRecordGORM{}).
		Where("account_id = ?", accountID.String()).
		Pluck("amount_spent", &amounts)
	if result.Error != nil {
		return loyalty.ZeroServicePrice(), result.Error
	}

	total := loyalty.ZeroServicePrice()
	for _, raw := range amounts {
		amount, err := loyalty.ServicePriceFromString(raw)
		if err != nil {
			return loyalty.ZeroServicePrice(), err
		}
		total = total.Add(amount)
	}

	return total, nil
}

// getDB 獲取 GORM DB 實例（ctx 可為 nil）
func (r *PunchRecordRepositoryImpl) getDB(ctx shared.TransactionContext) *gorm.DB {
	return getDB(r.db, ctx)
}
