package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callmeter/internal/audit"
	"callmeter/internal/auth"
	"callmeter/internal/balance"
	"callmeter/internal/config"
	"callmeter/internal/directory"
	"callmeter/internal/httpapi"
	"callmeter/internal/liveupdate"
	"callmeter/internal/metering"
	"callmeter/internal/reporting"
	"callmeter/internal/telephony"
	"callmeter/pkg/logger"
	"callmeter/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var store balance.Store
	switch cfg.Billing.BalanceBackend {
	case "redis":
		store = balance.NewRedisStore(rdb)
	default:
		store = balance.NewPostgresStore(db)
	}

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	dirSvc := directory.NewService(directory.NewPostgresRepo(db))
	hub := liveupdate.NewHub(log)
	gateway := telephony.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)

	controller, err := metering.NewController(metering.ControllerConfig{
		Store:        store,
		Gateway:      gateway,
		Sink:         hub,
		Recorder:     metering.AuditRecorder{Audit: auditSvc, Log: log},
		WarnAssetURL: cfg.Billing.WarnAssetURL,
		Logger:       log,
	})
	if err != nil {
		log.Error("metering init failed", "err", err)
		os.Exit(1)
	}

	webhooks := &telephony.WebhookHandler{
		Directory:          dirSvc,
		Balance:            store,
		Meter:              controller,
		CallerNumber:       cfg.Twilio.CallerNumber,
		DialStatusURL:      cfg.Twilio.PublicBaseURL + "/webhooks/voice/dial-status",
		DefaultRateMinor:   cfg.Billing.DefaultRateMinor,
		TickInterval:       cfg.Billing.TickInterval,
		WarnThresholdMinor: cfg.Billing.WarnThresholdMinor,
	}

	api := httpapi.Handlers{
		Auth:    authManager,
		Balance: store,
		Audit:   auditSvc,
		Reports: reporting.NewService(reporting.NewPostgresRepo(db)),
		Meter:   controller,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Auth:       authManager,
		API:        api,
		Webhooks:   webhooks,
		Hub:        hub,
		Controller: controller,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Stop metering timers after the listener is drained so in-flight
	// webhooks still see a live controller.
	controller.Shutdown()

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
