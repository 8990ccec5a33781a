package customer

import (
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// ===========================
// GetCustomer Use Case
// ===========================

// GetCustomerQuery 查詢客戶的查詢對象
//
// CustomerID 與 PhoneNumber 擇一提供；兩者都提供時以 CustomerID 為準
type GetCustomerQuery struct {
	CustomerID  string
	PhoneNumber string
}

// GetCustomerResult 客戶資料
type GetCustomerResult struct {
	CustomerID   string
	Name         string
	PhoneNumber  string
	PetName      string
	ReferralCode string
	ReferrerID   string
	CreatedAt    time.Time
}

// GetCustomerUseCase 客戶查詢 Use Case
//
// 使用場景：店員以手機號碼或 ID 查詢客戶資料
//
// 設計原則：
// - 只讀操作：查詢傳 nil ctx（auto-commit）
type GetCustomerUseCase struct {
	customerRepo customer.CustomerRepository
}

// NewGetCustomerUseCase 創建 Use Case 實例
func NewGetCustomerUseCase(repo customer.CustomerRepository) *GetCustomerUseCase {
	return &GetCustomerUseCase{customerRepo: repo}
}

// Execute 執行客戶查詢
//
// 錯誤處理：
// - ErrInvalidCustomerID: CustomerID 格式無效
// - ErrInvalidPhoneNumberFormat: 手機號碼格式無效
// - ErrCustomerNotFound: 查無此客戶，或兩個條件都沒提供
func (uc *GetCustomerUseCase) Execute(query GetCustomerQuery) (*GetCustomerResult, error) {
	found, err := uc.find(query)
	if err != nil {
		return nil, err
	}

	referrerID := ""
	if found.HasReferrer() {
		referrerID = found.ReferredBy().String()
	}

	return &GetCustomerResult{
		CustomerID:   found.CustomerID().String(),
		Name:         found.Name(),
		PhoneNumber:  found.PhoneNumber().String(),
		PetName:      found.PetName(),
		ReferralCode: found.ReferralCode().String(),
		ReferrerID:   referrerID,
		CreatedAt:    found.CreatedAt(),
	}, nil
}

func (uc *GetCustomerUseCase) find(query GetCustomerQuery) (*customer.Customer, error) {
	if query.CustomerID != "" {
		customerID, err := customer.CustomerIDFromString(query.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse customer ID: %w", err)
		}
		return uc.customerRepo.FindByCustomerID(nil, customerID)
	}

	if query.PhoneNumber != "" {
		phoneNumber, err := customer.NewPhoneNumber(query.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to parse phone number: %w", err)
		}
		return uc.customerRepo.FindByPhoneNumber(nil, phoneNumber)
	}

	return nil, customer.ErrCustomerNotFound.WithContext(
		"reason", "either customer ID or phone number is required",
	)
}
