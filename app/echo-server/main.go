package main

import (
	"context"
	"fmt"
	"log"
	"myFoodHub/app/echo-server/router"
	"myFoodHub/business/account"
	"myFoodHub/business/deletion"
	"myFoodHub/business/ledger"
	"myFoodHub/business/menu"
	"myFoodHub/business/orders"
	"myFoodHub/business/rating"
	"myFoodHub/internal/middleware"
	psqlRepo "myFoodHub/internal/repository/postgres"
	redisRepo "myFoodHub/internal/repository/redis"
	"myFoodHub/internal/rest"
	"myFoodHub/pkg/config"
	"myFoodHub/pkg/database"
	redisClient "myFoodHub/pkg/database/redis"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"myFoodHub/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting MyFoodHub ledger", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully", "driver", cfg.Database.Driver)

	metrics.Init()

	// The reconcile lock is only needed when several instances share the
	// database.
	var locker ledger.Locker
	if cfg.Redis.Enabled {
		rdb, err := redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer rdb.Close()

		locker = redisRepo.NewLockRepository(rdb)
		logger.Info("Redis connected successfully")
	}

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	balanceRepo := psqlRepo.NewBalanceRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	menuRepo := psqlRepo.NewMenuRepository(db)
	ratingRepo := psqlRepo.NewRatingRepository(db)
	deletionRepo := psqlRepo.NewDeletionRepository(db)

	// Init service
	accountService := account.NewAccountService(userRepo, validate, cfg.Ledger.OnboardingCredit)
	ledgerService := ledger.NewLedgerService(balanceRepo, locker, cfg.Ledger.ReconcileLockTTL)
	ordersService := orders.NewOrdersService(ordersRepo, userRepo, ledgerService)
	ratingService := rating.NewRatingService(ratingRepo, ordersRepo)
	deletionService := deletion.NewDeletionService(deletionRepo, userRepo)
	menuService := menu.NewMenuService(menuRepo, userRepo, validate)

	// Init handler
	accountHandler := rest.NewAccountHandler(accountService, deletionService)
	ledgerHandler := rest.NewLedgerHandler(ledgerService)
	ordersHandler := rest.NewOrdersHandler(ordersService, ratingService)
	menuHandler := rest.NewMenuHandler(menuService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	api := e.Group("/api/v1")
	router.SetupAccountRoutes(api, accountHandler, authRequired, adminOnly)
	router.SetupLedgerRoutes(api, ledgerHandler, authRequired, adminOnly)
	router.SetupMenuRoutes(api, menuHandler, authRequired)
	router.SetOrdersRoutes(api, ordersHandler, authRequired)

	// Reconcile sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Ledger.ReconcileInterval > 0 {
		go ledgerService.RunReconcileLoop(sweepCtx, cfg.Ledger.ReconcileInterval)
		logger.Info("Reconcile sweep scheduled", "interval", cfg.Ledger.ReconcileInterval.String())
	}

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("Server stopped")
}
