package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// ===========================
// Router
// ===========================

// NewApp 創建並配置 Fiber 應用
//
// 參數：
//   - allowedOrigins: CORS 允許的來源（逗號分隔）
//   - customerHandler: 客戶 API 處理器
//   - loyaltyHandler: 集點 API 處理器
func NewApp(
	allowedOrigins string,
	customerHandler *CustomerHandler,
	loyaltyHandler *LoyaltyHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "salon_crm",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	SetupRoutes(app, customerHandler, loyaltyHandler)

	return app
}

// SetupRoutes 註冊所有 API 路由
func SetupRoutes(
	app *fiber.App,
	customerHandler *CustomerHandler,
	loyaltyHandler *LoyaltyHandler,
) {
	api := app.Group("/api")

	// 健康檢查
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 客戶
	api.Post("/customers", customerHandler.Register)
	api.Get("/customers", customerHandler.Get)

	// 集點
	api.Post("/loyalty/punches", loyaltyHandler.AwardPunch)
	api.Post("/loyalty/referral-bonuses", loyaltyHandler.AwardReferralBonuses)
	api.Post("/loyalty/redemptions", loyaltyHandler.RedeemReward)
	api.Get("/loyalty/summary/:customerID", loyaltyHandler.GetSummary)

	// 管理員操作
	api.Put("/loyalty/threshold-override", loyaltyHandler.SetThresholdOverride)
	api.Put("/loyalty/settings", loyaltyHandler.UpdateSettings)
}
