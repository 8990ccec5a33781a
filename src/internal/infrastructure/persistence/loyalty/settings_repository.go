package loyalty

import (
	"errors"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRowID 設定單列表的固定主鍵
const settingsRowID = 1

// ===========================
// LoyaltySettingsRepositoryImpl
// ===========================

// LoyaltySettingsRepositoryImpl 集點設定倉儲實現（GORM）
//
// 單列表：所有讀寫都針對 id = 1 的那一列
type LoyaltySettingsRepositoryImpl struct {
	db *gorm.DB
}

// NewLoyaltySettingsRepository 創建新的集點設定倉儲實例
func NewLoyaltySettingsRepository(db *gorm.DB) loyalty.LoyaltySettingsRepository {
	return &LoyaltySettingsRepositoryImpl{db: db}
}

// Load 讀取當前集點設定
//
// 設定資料列不存在時（首次部署）返回 DefaultLoyaltySettings()，
// 不視為錯誤
func (r *LoyaltySettingsRepositoryImpl) Load(ctx shared.TransactionContext) (loyalty.LoyaltySettings, error) {
	db := r.getDB(ctx)

	var gormModel LoyaltySettingsGORM

	result := db.Where("id = ?", settingsRowID).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return loyalty.DefaultLoyaltySettings(), nil
		}
		return loyalty.LoyaltySettings{}, result.Error
	}

	return gormModel.toDomain()
}

// Store 寫入集點設定（管理員操作）
//
// Upsert：id = 1 的列存在則覆寫，不存在則新增
func (r *LoyaltySettingsRepositoryImpl) Store(ctx shared.TransactionContext, settings loyalty.LoyaltySettings) error {
	db := r.getDB(ctx)

	gormModel := settingsToGORM(settings)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(gormModel)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// getDB 獲取 GORM DB 實例（ctx 可為 nil）
func (r *LoyaltySettingsRepositoryImpl) getDB(ctx shared.TransactionContext) *gorm.DB {
	return getDB(r.db, ctx)
}
