package customer

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// ===========================
// GORM Models
// ===========================

// CustomerGORM 客戶資料表模型
//
// 資料庫約束：
// - customer_id: 主鍵（UUID）
// - phone_number: 唯一索引（手機號碼是業務識別碼）
// - referral_code: 唯一索引（推薦碼全域唯一）
// - referred_by: 可為 NULL（未綁定推薦人）
type CustomerGORM struct {
	CustomerID   string  `gorm:"column:customer_id;type:varchar(36);primaryKey"`
	Name         string  `gorm:"column:name;type:varchar(100);not null"`
	PhoneNumber  string  `gorm:"column:phone_number;type:varchar(10);uniqueIndex;not null"`
	PetName      string  `gorm:"column:pet_name;type:varchar(100)"`
	ReferralCode string  `gorm:"column:referral_code;type:varchar(8);uniqueIndex;not null"`
	ReferredBy   *string `gorm:"column:referred_by;type:varchar(36)"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
	Version   int       `gorm:"column:version;not null;default:1"`
}

// TableName 指定資料表名稱
func (CustomerGORM) TableName() string {
	return "customers"
}

// ===========================
// Mapper Functions
// ===========================

// toDomain 將 GORM 模型轉換為 Domain 聚合
func (g *CustomerGORM) toDomain() (*customer.Customer, error) {
	customerID, err := customer.CustomerIDFromString(g.CustomerID)
	if err != nil {
		return nil, err
	}

	phoneNumber, err := customer.NewPhoneNumber(g.PhoneNumber)
	if err != nil {
		return nil, err
	}

	referralCode, err := customer.NewReferralCode(g.ReferralCode)
	if err != nil {
		return nil, err
	}

	// referred_by 為 NULL 時保持零值（未綁定推薦人）
	var referredBy customer.CustomerID
	if g.ReferredBy != nil {
		referredBy, err = customer.CustomerIDFromString(*g.ReferredBy)
		if err != nil {
			return nil, err
		}
	}

	return customer.ReconstructCustomer(
		customerID,
		g.Name,
		phoneNumber,
		g.PetName,
		referralCode,
		referredBy,
		g.CreatedAt,
		g.UpdatedAt,
		g.Version,
	)
}

// toGORM 將 Domain 聚合轉換為 GORM 模型
func toGORM(c *customer.Customer) *CustomerGORM {
	var referredBy *string
	if c.HasReferrer() {
		value := c.ReferredBy().String()
		referredBy = &value
	}

	return &CustomerGORM{
		CustomerID:   c.CustomerID().String(),
		Name:         c.Name(),
		PhoneNumber:  c.PhoneNumber().String(),
		PetName:      c.PetName(),
		ReferralCode: c.ReferralCode().String(),
		ReferredBy:   referredBy,
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
		Version:      c.Version(),
	}
}
