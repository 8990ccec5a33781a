package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	applicationcustomer "github.com/jackyeh168/salon_crm/src/internal/application/customer"
	domaincustomer "github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// ===========================
// CustomerHandler
// ===========================

// CustomerHandler 客戶 API 處理器
//
// 職責：
// - HTTP 請求解析與回應序列化
// - 業務邏輯全部委派給 Application Layer Use Case
type CustomerHandler struct {
	registerUseCase *applicationcustomer.RegisterCustomerUseCase
	getUseCase      *applicationcustomer.GetCustomerUseCase
}

// NewCustomerHandler 創建客戶處理器
func NewCustomerHandler(
	registerUseCase *applicationcustomer.RegisterCustomerUseCase,
	getUseCase *applicationcustomer.GetCustomerUseCase,
) *CustomerHandler {
	return &CustomerHandler{
		registerUseCase: registerUseCase,
		getUseCase:      getUseCase,
	}
}

// registerCustomerRequest 註冊請求
type registerCustomerRequest struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	PetName      string `json:"pet_name"`
	ReferralCode string `json:"referral_code"`
}

// customerResponse 客戶回應
type customerResponse struct {
	CustomerID   string    `json:"customer_id"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	PetName      string    `json:"pet_name"`
	ReferralCode string    `json:"referral_code"`
	ReferrerID   string    `json:"referrer_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Register 註冊新客戶
//
// POST /api/customers
func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req registerCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, domaincustomer.ErrInvalidCustomerName.WithContext(
			"reason", "invalid request body",
		))
	}

	result, err := h.registerUseCase.Execute(applicationcustomer.RegisterCustomerCommand{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PetName:      req.PetName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(customerResponse{
		CustomerID:   result.CustomerID,
		Name:         result.Name,
		PhoneNumber:  result.PhoneNumber,
		PetName:      result.PetName,
		ReferralCode: result.ReferralCode,
		ReferrerID:   result.ReferrerID,
		CreatedAt:    result.CreatedAt,
	})
}

// Get 查詢客戶資料
//
// GET /api/customers?customer_id=...&phone_number=...
// CustomerID 與 PhoneNumber 擇一提供；兩者都提供時以 CustomerID 為準
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	result, err := h.getUseCase.Execute(applicationcustomer.GetCustomerQuery{
		CustomerID:  c.Query("customer_id"),
		PhoneNumber: c.Query("phone_number"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(customerResponse{
		CustomerID:   result.CustomerID,
		Name:         result.Name,
		PhoneNumber:  result.PhoneNumber,
		PetName:      result.PetName,
		ReferralCode: result.ReferralCode,
		ReferrerID:   result.ReferrerID,
		CreatedAt:    result.CreatedAt,
	})
}
