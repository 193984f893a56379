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

	"github.com/careerdeck/gatekeeper/internal/background"
	"github.com/careerdeck/gatekeeper/internal/config"
	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/handlers"
	"github.com/careerdeck/gatekeeper/internal/identity"
	middlewareCustom "github.com/careerdeck/gatekeeper/internal/middleware"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/repositories"
	"github.com/careerdeck/gatekeeper/internal/routes"
	"github.com/careerdeck/gatekeeper/internal/services"
	"github.com/careerdeck/gatekeeper/pkg/checkout"
	pkghttp "github.com/careerdeck/gatekeeper/pkg/http"
	pkglogger "github.com/careerdeck/gatekeeper/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	location, err := time.LoadLocation(cfg.Policy.Timezone)
	if err != nil {
		logger.Error("failed to load policy timezone", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Repositories
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	challengeRepo := repositories.NewChallengeRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)

	clock := models.RealClock{}
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Outbound collaborators
	emailSender, err := services.NewAWSSESEmailSender(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email sender", slog.Any("error", err))
		os.Exit(1)
	}
	gateway := checkout.NewClient(cfg.Checkout.BaseURL, cfg.Checkout.KeyID, cfg.Checkout.KeySecret, cfg.Checkout.CallTimeout)

	// Fixed-window issuance caps over Redis
	day := 24 * time.Hour
	challengeLimiter := services.NewRedisIssueLimiter(redisClient, "challenge:", day, cfg.Policy.ChallengesPerDay)
	resetLimiter := services.NewRedisIssueLimiter(redisClient, "pwreset:", day, cfg.Policy.ResetRequestsPerDay)

	// Services
	sessions := identity.NewSessionManager(cfg.Session.JWTSecret, cfg.Session.TokenExpiry)
	authenticator := identity.NewJWTAuthenticator(cfg.Session.IdentitySecret)
	registry := services.NewStaticPlanRegistry()

	auditService := services.NewAuditService(loginAttemptRepo, logger, auditLogger)
	challengeService := services.NewChallengeService(challengeRepo, emailSender, challengeLimiter, clock, logger, auditLogger)
	accountService := services.NewAccountService(profileRepo, challengeService, emailSender, resetLimiter, clock, logger)
	loginService := services.NewLoginService(
		authenticator, accountService, auditService, challengeService, sessions,
		clock, location, cfg.Policy.MobileLoginStartHour, cfg.Policy.MobileLoginEndHour, logger,
	)
	quotaService := services.NewQuotaService(activityRepo, profileRepo, registry, services.DefaultGrantRules(), clock, location, logger)
	subscriptionService := services.NewSubscriptionService(
		profileRepo, paymentRepo, registry, challengeService, gateway, emailSender,
		clock, location, cfg.Policy.PaymentWindowStart, cfg.Policy.PaymentWindowEnd, logger, auditLogger,
	)
	resumeService := services.NewResumeService(
		profileRepo, paymentRepo, resumeRepo, challengeService, gateway, emailSender,
		clock, location, cfg.Policy.PaymentWindowStart, cfg.Policy.PaymentWindowEnd, logger, auditLogger,
	)

	// Background sweep of stale challenges and old audit rows
	retention := time.Duration(cfg.Policy.AttemptRetentionDays) * day
	cleanupManager := background.NewCleanupManager(challengeRepo, loginAttemptRepo, clock, retention, cfg.Session.CleanupPeriod, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(loginService, accountService, ipConfig)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	activityHandler := handlers.NewActivityHandler(quotaService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	resumeHandler := handlers.NewResumeHandler(resumeService)

	// Router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, accountHandler, activityHandler, subscriptionHandler, resumeHandler, sessions)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("server starting", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	cancelCleanup()
	cleanupManager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
