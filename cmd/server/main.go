package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"solar-backend/internal/auth"
	"solar-backend/internal/cache"
	"solar-backend/internal/config"
	"solar-backend/internal/database"
	"solar-backend/internal/db"
	"solar-backend/internal/handlers"
	"solar-backend/internal/health"
	h "solar-backend/internal/http"
	"solar-backend/internal/middleware"
	"solar-backend/internal/monitoring"
	"solar-backend/internal/repositories"
	"solar-backend/internal/services"
	"solar-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; every cache call degrades to the database
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	} else {
		log.Println("[Redis] Cache connected")
	}

	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	objectStore, err := storage.NewS3Store(cfg)
	if err != nil {
		log.Fatalf("Object storage init failed: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	// Ops dashboard on its own port, cluster-internal only
	go monitoring.NewMonitoringServer(pool, 9090).Start()

	tokens := auth.NewTokenManager(cfg)

	// Repositories
	accountRepo := repositories.NewAccountRepository(pool)
	employeeRepo := repositories.NewEmployeeRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	leadEventRepo := repositories.NewLeadEventRepository(pool)
	transactionRepo := repositories.NewOnlineTransactionRepository(pool)
	systemSettingRepo := repositories.NewSystemSettingRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)

	// Services
	accountService := services.NewAccountService(accountRepo, employeeRepo, tokens, loginLogRepo)
	employeeService := services.NewEmployeeService(employeeRepo, objectStore)
	leadService := services.NewLeadService(leadRepo, leadEventRepo, objectStore)
	dashboardService := services.NewDashboardService(leadRepo, employeeRepo, transactionRepo)
	systemSettingService := services.NewSystemSettingService(systemSettingRepo)
	totpService := services.NewTOTPService(accountRepo, totpRepo)
	reportService := services.NewReportService(leadRepo, leadEventRepo)
	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		transactionRepo,
		systemSettingRepo,
		leadService,
	)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens, accountRepo, employeeRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(accountService)
	accountHandler := handlers.NewAccountHandler(accountService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	leadHandler := handlers.NewLeadHandler(leadService, employeeService)
	compiledFileHandler := handlers.NewCompiledFileHandler(leadService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	reportHandler := handlers.NewReportHandler(reportService)
	totpHandler := handlers.NewTOTPHandler(totpService, accountService, tokens)
	systemSettingHandler := handlers.NewSystemSettingHandler(systemSettingService)
	loginLogHandler := handlers.NewLoginLogHandler(loginLogRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		accountHandler,
		employeeHandler,
		leadHandler,
		compiledFileHandler,
		dashboardHandler,
		razorpayHandler,
		reportHandler,
		totpHandler,
		systemSettingHandler,
		loginLogHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
