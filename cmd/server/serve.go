package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/api/validation"
	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/email"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/metrics"
	"github.com/osa911/portfolio/internal/ratelimit"
	"github.com/osa911/portfolio/internal/server"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/tasks"
	"github.com/osa911/portfolio/internal/telemetry"
	"github.com/osa911/portfolio/internal/version"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logging.InitLogger(logging.DefaultConfig(cfg.LogLevel, cfg.LogFile)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger := logging.GetGlobalLogger()
	defer logger.Close()
	logger.SetRequestLogging(cfg.LogRequests)

	logger.Info("Starting portfolio-api %s in %s mode", version.GetVersionString(), cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Tracer shutdown failed: %v", err)
		}
	}()

	var m *metrics.Metrics
	reg := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	healthChecks := map[string]handlers.Pinger{}
	var store ratelimit.Store
	switch cfg.RateLimitBackend {
	case config.RateLimitBackendRedis:
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		redisStore := ratelimit.NewRedisStore(rdb, ratelimit.WithKeyPrefix(cfg.RedisKeyPrefix))
		healthChecks["redis"] = redisStore
		store = redisStore
		logger.Info("Rate limit state stored in redis")
	default:
		store = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(store, cfg.RateLimitWindow, cfg.RateLimitMax)

	mailer, err := email.NewMailer(cfg, logger)
	if err != nil {
		return err
	}

	if !cfg.RecaptchaEnabled {
		logger.Warn("RECAPTCHA_ENABLED=false: contact submissions are not bot checked")
	}
	recaptcha := service.NewRecaptchaService(service.RecaptchaConfig{
		Secret:     cfg.RecaptchaSecret,
		VerifyURL:  cfg.RecaptchaVerifyURL,
		MinScore:   cfg.RecaptchaMinScore,
		Timeout:    cfg.RecaptchaTimeout,
		Production: cfg.IsProduction(),
	}, logger)

	if cfg.ContactFromEmail == "" || cfg.ContactToEmail == "" {
		logger.Error("CONTACT_FROM_EMAIL or CONTACT_TO_EMAIL is not set: submissions will fail")
	}
	var notifyOpts []service.NotificationOption
	telegram := service.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramAPIURL)
	if telegram.Enabled() {
		notifyOpts = append(notifyOpts, service.WithMirror(telegram))
		logger.Info("Contact notifications are mirrored to Telegram")
	}
	notifications := service.NewNotificationService(mailer, service.NotificationConfig{
		From:     cfg.ContactFromEmail,
		FromName: cfg.ContactFromName,
		To:       cfg.ContactToEmail,
		Timeout:  cfg.MailTimeout,
	}, logger, notifyOpts...)

	contactService := service.NewContactService(service.ContactServiceOptions{
		Limiter:    limiter,
		Validator:  validation.New(),
		Bot:        recaptcha,
		Dispatcher: notifications,
		BotCheck:   cfg.RecaptchaEnabled,
		Metrics:    m,
		Logger:     logger,
	})

	throttle := middleware.NewClientThrottle(middleware.RateLimitConfig{
		RPS:   cfg.GlobalRPS,
		Burst: cfg.GlobalBurst,
	})
	go throttle.Run(ctx, time.Minute)

	tasks.NewRateLimitSweep(limiter, cfg.RateLimitSweepInterval, m, logger).Start(ctx)
	logger.Info("Started rate limit sweep task")

	srv, err := server.NewServer(cfg, server.Dependencies{
		Contact:      contactService,
		Throttle:     throttle,
		HealthChecks: healthChecks,
		Gatherer:     reg,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("Server error: %v", err)
		return err
	}
	notifications.Wait()

	logger.Info("Server stopped")
	return nil
}
