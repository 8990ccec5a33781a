package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	domaincustomer "github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	domainloyalty "github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
)

// ===========================
// Domain 錯誤 → HTTP 狀態碼映射
// ===========================

// errorResponse 統一的錯誤回應格式
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusCodeFor 將 Domain 錯誤映射為 HTTP 狀態碼
//
// 映射規則：
// - 找不到資源 → 404
// - 資源衝突（重複註冊、重複帳戶、無獎勵可兌）→ 409
// - 其他 Domain 錯誤（輸入驗證失敗）→ 400
// - 非 Domain 錯誤 → 500
func statusCodeFor(err error) int {
	// Use Case 以 fmt.Errorf("%w") 包裝 Domain 錯誤，
	// 用 errors.Is 沿包裝鏈比對
	switch {
	case errors.Is(err, domaincustomer.ErrCustomerNotFound),
		errors.Is(err, domainloyalty.ErrAccountNotFound),
		errors.Is(err, domainloyalty.ErrRedemptionNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, domaincustomer.ErrCustomerAlreadyExists),
		errors.Is(err, domainloyalty.ErrAccountAlreadyExists),
		errors.Is(err, domainloyalty.ErrNoRewardToRedeem):
		return fiber.StatusConflict
	}

	var loyaltyErr *domainloyalty.DomainError
	if errors.As(err, &loyaltyErr) {
		return fiber.StatusBadRequest
	}

	var customerErr *domaincustomer.DomainError
	if errors.As(err, &customerErr) {
		return fiber.StatusBadRequest
	}

	return fiber.StatusInternalServerError
}

// respondError 輸出統一格式的錯誤回應
func respondError(c *fiber.Ctx, err error) error {
	status := statusCodeFor(err)

	code := "INTERNAL_ERROR"
	message := "internal server error"

	var loyaltyErr *domainloyalty.DomainError
	var customerErr *domaincustomer.DomainError
	switch {
	case errors.As(err, &loyaltyErr):
		code = string(loyaltyErr.Code)
		message = loyaltyErr.Message
	case errors.As(err, &customerErr):
		code = string(customerErr.Code)
		message = customerErr.Message
	}

	return c.Status(status).JSON(errorResponse{
		Error: errorBody{Code: code, Message: message},
	})
}
