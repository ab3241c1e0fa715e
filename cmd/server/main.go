package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
	"tailorbooks-backend/internal/cache"
	"tailorbooks-backend/internal/config"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/handler"
	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/server"
	"tailorbooks-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx, logger); err != nil {
			logger.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
	}

	// Redis (optional): settings cache, payment locks
	var (
		settingsCache ports.SettingsCache
		locker        ports.Locker
		cacheHealth   ports.HealthChecker
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect redis", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		settingsCache = cache.NewSettingsCache(rdb, cfg.SettingsCacheTTL, logger)
		locker = cache.NewLocker(rdb)
		cacheHealth = cache.Pinger{Client: rdb}
	} else {
		logger.Warn("REDIS_URL not set; settings are read from postgres and payments are not locked")
	}

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	clock := service.Clock{Location: cfg.Location()}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	customerRepo := repository.CustomerRepository{DB: pg}
	jobRepo := repository.JobRepository{DB: pg}
	inventoryRepo := repository.InventoryRepository{DB: pg}
	saleRepo := repository.SaleRepository{DB: pg}
	collectionRepo := repository.CollectionRepository{DB: pg}
	expenseRepo := repository.ExpenseRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	activityRepo := repository.ActivityLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}
	ledger := repository.Ledger{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	jobSvc := service.JobService{Ledger: ledger, Logger: logger, Clock: clock}
	receivableSvc := service.ReceivableService{
		Reader: repository.Receivables{Sales: saleRepo, Customers: customerRepo},
		Ledger: ledger,
		Locker: locker,
		Logger: logger,
		Clock:  clock,
	}
	reportSvc := service.ReportService{
		Reader: repository.ReportSource{Sales: saleRepo, Expenses: expenseRepo, Jobs: jobRepo},
		Clock:  clock,
	}
	dashboardSvc := service.DashboardService{Source: dashboardRepo, Clock: clock}
	settingsSvc := service.SettingsService{Store: settingsRepo, Cache: settingsCache, DefaultCurrency: cfg.DefaultCurrency, Clock: clock}

	// handlers
	handlers := server.Handlers{
		Health:      handler.HealthHandler{DB: pg, Cache: cacheHealth},
		Auth:        handler.AuthHandler{Service: &authSvc, Users: userRepo},
		Home:        handler.HomeHandler{Env: cfg.Env},
		Docs:        handler.DocsHandler{},
		Customers:   handler.CustomerHandler{Repo: customerRepo, Jobs: jobRepo, Sales: saleRepo, PhoneRegion: cfg.PhoneRegion},
		Jobs:        handler.JobHandler{Service: jobSvc, Repo: jobRepo, Customers: customerRepo},
		Inventory:   handler.InventoryHandler{Repo: inventoryRepo},
		Sales:       handler.SaleHandler{Repo: saleRepo, Customers: customerRepo, Clock: clock},
		Collections: handler.CollectionHandler{Repo: collectionRepo, Clock: clock},
		Receivables: handler.ReceivableHandler{Service: receivableSvc},
		Expenses:    handler.ExpenseHandler{Repo: expenseRepo, Clock: clock},
		Reports:     handler.ReportHandler{Service: reportSvc, Settings: settingsSvc},
		Dashboard:   handler.DashboardHandler{Service: dashboardSvc, Settings: settingsSvc},
		Settings:    handler.SettingsHandler{Service: settingsSvc},
		Activity:    handler.ActivityLogHandler{Repo: activityRepo},
	}
	router := server.NewRouter(cfg, logger, handlers)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.Env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Inline JSON or base64-encoded JSON is accepted as well as a path.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
