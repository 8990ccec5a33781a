package customer

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// RegisterCustomer Use Case
// ===========================

// RegisterCustomerCommand 註冊客戶的命令
//
// 輸入：
// - Name: 客戶姓名（必填）
// - PhoneNumber: 手機號碼（必填，台灣格式）
// - PetName: 寵物名稱（可為空）
// - ReferralCode: 推薦碼（可為空；無效推薦碼靜默忽略）
type RegisterCustomerCommand struct {
	Name         string
	PhoneNumber  string
	PetName      string
	ReferralCode string
}

// RegisterCustomerResult 註冊結果
type RegisterCustomerResult struct {
	CustomerID   string
	Name         string
	PhoneNumber  string
	PetName      string
	ReferralCode string
	ReferrerID   string // 空字串表示無推薦人
	CreatedAt    time.Time
}

// RegisterCustomerUseCase 客戶註冊 Use Case
//
// 職責：
// 1. 驗證輸入（姓名、手機號碼格式）
// 2. 檢查手機號碼重複性（在事務中）
// 3. 解析推薦碼、綁定推薦人
// 4. 保存客戶
//
// 設計原則：
// - 推薦碼找不到對應客戶時靜默忽略（不阻斷註冊流程，
//   店員口頭轉達的推薦碼常有抄錯的情況）
// - 推薦獎勵點數不在註冊時發放：被推薦人完成首次預約後，
//   由調用方觸發推薦獎勵發放
// - 手機號碼唯一性最終由資料庫唯一約束保證
//   （事務中的 Exists 檢查提供友好錯誤，約束擋住競爭窗口）
type RegisterCustomerUseCase struct {
	customerRepo customer.CustomerRepository
	txManager    shared.TransactionManager
}

// NewRegisterCustomerUseCase 創建 Use Case 實例
func NewRegisterCustomerUseCase(
	repo customer.CustomerRepository,
	txManager shared.TransactionManager,
) *RegisterCustomerUseCase {
	return &RegisterCustomerUseCase{
		customerRepo: repo,
		txManager:    txManager,
	}
}

// Execute 執行客戶註冊
//
// 執行流程：
// 1. 驗證手機號碼格式（值對象驗證）
// 2. 創建客戶聚合（自動生成推薦碼）
// 3. 在事務中：
//    a. 檢查手機號碼重複性
//    b. 解析推薦碼 → 綁定推薦人（找不到時忽略）
//    c. 保存客戶
//
// 錯誤處理：
// - ErrInvalidCustomerName: 姓名為空
// - ErrInvalidPhoneNumberFormat: 手機號碼格式無效
// - ErrCustomerAlreadyExists: 手機號碼已註冊
// - ErrSelfReferral: 使用自己的推薦碼（理論上不可能：註冊時
//   推薦碼尚未發出；防禦性保留聚合層檢查）
func (uc *RegisterCustomerUseCase) Execute(cmd RegisterCustomerCommand) (*RegisterCustomerResult, error) {
	// 1. 驗證手機號碼
	phoneNumber, err := customer.NewPhoneNumber(cmd.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	// 2. 創建客戶聚合
	newCustomer, err := customer.NewCustomer(cmd.Name, phoneNumber, cmd.PetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	// 3. 在事務中執行註冊
	var result *RegisterCustomerResult
	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		// a. 檢查手機號碼重複性（在事務中）
		exists, err := uc.customerRepo.ExistsByPhoneNumber(ctx, phoneNumber)
		if err != nil {
			return fmt.Errorf("failed to check phone number: %w", err)
		}
		if exists {
			return customer.ErrCustomerAlreadyExists.WithContext(
				"phone", phoneNumber.String(),
			)
		}

		// b. 解析推薦碼並綁定推薦人
		referrerID := ""
		if cmd.ReferralCode != "" {
			referrer, err := uc.resolveReferrer(ctx, cmd.ReferralCode)
			if err != nil {
				return err
			}
			if referrer != nil {
				if err := newCustomer.BindReferrer(referrer.CustomerID()); err != nil {
					return fmt.Errorf("failed to bind referrer: %w", err)
				}
				referrerID = referrer.CustomerID().String()
			}
		}

		// c. 保存客戶
		if err := uc.customerRepo.Save(ctx, newCustomer); err != nil {
			if errors.Is(err, customer.ErrCustomerAlreadyExists) {
				return fmt.Errorf("phone number already registered: %w", err)
			}
			return fmt.Errorf("failed to save customer: %w", err)
		}

		result = &RegisterCustomerResult{
			CustomerID:   newCustomer.CustomerID().String(),
			Name:         newCustomer.Name(),
			PhoneNumber:  newCustomer.PhoneNumber().String(),
			PetName:      newCustomer.PetName(),
			ReferralCode: newCustomer.ReferralCode().String(),
			ReferrerID:   referrerID,
			CreatedAt:    newCustomer.CreatedAt(),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// resolveReferrer 解析推薦碼
//
// 返回 nil（無錯誤）的情況：
// - 推薦碼格式無效
// - 推薦碼找不到對應客戶
// 兩者都靜默忽略，註冊流程照常進行
func (uc *RegisterCustomerUseCase) resolveReferrer(
	ctx shared.TransactionContext,
	rawCode string,
) (*customer.Customer, error) {
	code, err := customer.NewReferralCode(rawCode)
	if err != nil {
		return nil, nil
	}

	referrer, err := uc.customerRepo.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}

	return referrer, nil
}
