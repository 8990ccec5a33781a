package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	applicationcustomer "github.com/jackyeh168/salon_crm/src/internal/application/customer"
	applicationloyalty "github.com/jackyeh168/salon_crm/src/internal/application/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence"
	persistencecustomer "github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence/customer"
	persistenceloyalty "github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/scheduler"
	httpinterface "github.com/jackyeh168/salon_crm/src/internal/interfaces/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	// ===========================
	// 資料庫
	// ===========================
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&persistencecustomer.CustomerGORM{},
		&persistenceloyalty.LoyaltyAccountGORM{},
		&persistenceloyalty.PunchRecordGORM{},
		&persistenceloyalty.RedemptionRecordGORM{},
		&persistenceloyalty.LoyaltySettingsGORM{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	// ===========================
	// 依賴組裝
	// ===========================
	txManager := persistence.NewGORMTransactionManager(db)
	customerRepo := persistencecustomer.NewCustomerRepository(db)
	accountRepo := persistenceloyalty.NewLoyaltyAccountRepository(db)
	punchRepo := persistenceloyalty.NewPunchRecordRepository(db)
	redemptionRepo := persistenceloyalty.NewRedemptionRecordRepository(db)
	settingsRepo := persistenceloyalty.NewLoyaltySettingsRepository(db)

	customerHandler := httpinterface.NewCustomerHandler(
		applicationcustomer.NewRegisterCustomerUseCase(customerRepo, txManager),
		applicationcustomer.NewGetCustomerUseCase(customerRepo),
	)
	loyaltyHandler := httpinterface.NewLoyaltyHandler(
		applicationloyalty.NewAwardAppointmentPunchUseCase(accountRepo, punchRepo, redemptionRepo, settingsRepo, txManager),
		applicationloyalty.NewAwardReferralBonusesUseCase(accountRepo, punchRepo, redemptionRepo, settingsRepo, txManager),
		applicationloyalty.NewRedeemRewardUseCase(accountRepo, redemptionRepo, txManager),
		applicationloyalty.NewGetLoyaltySummaryUseCase(accountRepo, punchRepo, redemptionRepo, settingsRepo),
		applicationloyalty.NewSetThresholdOverrideUseCase(accountRepo, settingsRepo, txManager),
		applicationloyalty.NewUpdateLoyaltySettingsUseCase(settingsRepo, txManager),
	)

	// ===========================
	// 背景清掃：過期未兌換的獎勵
	// ===========================
	sweeper := scheduler.NewRedemptionSweeper(
		applicationloyalty.NewExpireStaleRedemptionsUseCase(redemptionRepo, txManager),
		envDuration("REDEMPTION_MAX_AGE", 180*24*time.Hour),
		envDuration("REDEMPTION_SWEEP_INTERVAL", time.Hour),
	)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start redemption sweeper: %v", err)
	}

	// ===========================
	// HTTP
	// ===========================
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	app := httpinterface.NewApp(allowedOrigins, customerHandler, loyaltyHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// 優雅關閉：等待進行中的請求與清掃任務結束
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("shutting down...")
		if err := sweeper.Stop(); err != nil {
			log.Printf("sweeper shutdown error: %v", err)
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openDatabase 依環境變數選擇資料庫
//
// DATABASE_URL 設定時使用 PostgreSQL（生產），
// 否則使用本機 SQLite 檔案（開發/單店部署）
func openDatabase() (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "salon_crm.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// envDuration 讀取 duration 環境變數，未設定或無效時用預設值
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, raw, fallback)
		return fallback
	}
	return d
}
