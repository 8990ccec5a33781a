package customer

import (
	"time"
)

// ===========================
// Customer Aggregate Root
// ===========================

// Customer 客戶聚合根
//
// 聚合邊界：
// - 客戶基本信息（ID, Name, PhoneNumber）
// - 寵物信息（PetName）
// - 推薦關係（ReferralCode, ReferredBy）
// - 註冊狀態（CreatedAt, UpdatedAt）
//
// 不變量（Invariants）：
// 1. 客戶必須有姓名
// 2. 客戶必須有手機號碼（唯一識別，資料庫唯一索引保證）
// 3. 推薦碼在註冊時生成，之後不可變更
// 4. 推薦人（ReferredBy）設定後不可變更，且不能是自己
// 5. CreatedAt 不可變更
//
// 設計原則：
// - Tell, Don't Ask：通過方法封裝行為，而非暴露狀態
// - 聚合內一致性：所有狀態變更通過方法執行
// - 不可變性：所有欄位為 unexported
//
// 集點帳戶不在此聚合內：LoyaltyAccount 是獨立聚合，
// 在首次符合條件的集點事件時延遲創建
type Customer struct {
	// 識別欄位
	customerID  CustomerID
	name        string
	phoneNumber PhoneNumber

	// 寵物信息
	petName string

	// 推薦關係
	referralCode ReferralCode
	referredBy   CustomerID // 零值表示無推薦人

	// 審計欄位
	createdAt time.Time
	updatedAt time.Time
	version   int // 樂觀鎖版本號（Optimistic Locking）
}

// NewCustomer 創建新客戶（Checked Constructor）
//
// 參數：
// - name: 客戶姓名
// - phoneNumber: 手機號碼（已在 PhoneNumber VO 中驗證）
// - petName: 寵物名稱（可為空）
//
// 返回：
// - Customer: 新創建的客戶聚合
// - error: 驗證失敗時返回錯誤
//
// 業務規則：
// 1. 姓名不能為空
// 2. 自動生成 CustomerID（UUID）
// 3. 自動生成推薦碼
// 4. 初始狀態：無推薦人
func NewCustomer(name string, phoneNumber PhoneNumber, petName string) (*Customer, error) {
	// 1. 驗證姓名
	if name == "" {
		return nil, ErrInvalidCustomerName
	}

	// 2. 驗證手機號碼（必填）
	if phoneNumber.IsZero() {
		return nil, ErrInvalidPhoneNumberFormat.WithContext(
			"reason", "phone number is required",
		)
	}

	now := time.Now()

	return &Customer{
		customerID:   NewCustomerID(),
		name:         name,
		phoneNumber:  phoneNumber,
		petName:      petName,
		referralCode: GenerateReferralCode(),
		createdAt:    now,
		updatedAt:    now,
		version:      1, // 初始版本為 1
	}, nil
}

// ReconstructCustomer 重建客戶聚合（用於從資料庫載入）
//
// 使用場景：
// - Repository 從資料庫載入客戶
// - 只做基本驗證（假設資料庫中的數據已驗證）
func ReconstructCustomer(
	customerID CustomerID,
	name string,
	phoneNumber PhoneNumber,
	petName string,
	referralCode ReferralCode,
	referredBy CustomerID,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) (*Customer, error) {
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID
	}
	if name == "" {
		return nil, ErrInvalidCustomerName
	}

	return &Customer{
		customerID:   customerID,
		name:         name,
		phoneNumber:  phoneNumber,
		petName:      petName,
		referralCode: referralCode,
		referredBy:   referredBy,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		version:      version,
	}, nil
}

// ===========================
// Customer Aggregate Behavior Methods
// ===========================

// BindReferrer 綁定推薦人
//
// 參數：
// - referrerID: 推薦人的客戶 ID
//
// 業務規則：
// 1. 推薦人只能在註冊流程中綁定一次
// 2. 不允許自我推薦
// 3. 綁定成功後更新 UpdatedAt
//
// 返回：
// - error: 已有推薦人返回 ErrReferrerAlreadySet；
//          自我推薦返回 ErrSelfReferral
func (c *Customer) BindReferrer(referrerID CustomerID) error {
	// 1. 檢查是否已綁定
	if !c.referredBy.IsEmpty() {
		return ErrReferrerAlreadySet.WithContext(
			"current_referrer", c.referredBy.String(),
			"new_referrer", referrerID.String(),
		)
	}

	// 2. 禁止自我推薦
	if referrerID.Equals(c.customerID) {
		return ErrSelfReferral.WithContext(
			"customer_id", c.customerID.String(),
		)
	}

	// 3. 綁定推薦人
	c.referredBy = referrerID

	// 4. 更新時間戳和版本號
	c.updatedAt = time.Now()
	c.version++

	return nil
}

// UpdatePetName 更新寵物名稱
//
// 使用場景：
// - 店員補登或修正寵物資料
func (c *Customer) UpdatePetName(petName string) {
	c.petName = petName
	c.updatedAt = time.Now()
	c.version++
}

// ===========================
// Customer Aggregate Getters
// ===========================

// CustomerID 返回客戶 ID
func (c *Customer) CustomerID() CustomerID {
	return c.customerID
}

// Name 返回客戶姓名
func (c *Customer) Name() string {
	return c.name
}

// PhoneNumber 返回手機號碼
func (c *Customer) PhoneNumber() PhoneNumber {
	return c.phoneNumber
}

// PetName 返回寵物名稱
func (c *Customer) PetName() string {
	return c.petName
}

// ReferralCode 返回推薦碼
func (c *Customer) ReferralCode() ReferralCode {
	return c.referralCode
}

// ReferredBy 返回推薦人 ID（無推薦人時為零值）
func (c *Customer) ReferredBy() CustomerID {
	return c.referredBy
}

// HasReferrer 檢查是否有推薦人
func (c *Customer) HasReferrer() bool {
	return !c.referredBy.IsEmpty()
}

// CreatedAt 返回創建時間
func (c *Customer) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt 返回更新時間
func (c *Customer) UpdatedAt() time.Time {
	return c.updatedAt
}

// Version 返回版本號（用於樂觀鎖）
func (c *Customer) Version() int {
	return c.version
}
