package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dataroom/docs"
	"dataroom/internal/auth"
	"dataroom/internal/config"
	"dataroom/internal/database"
	"dataroom/internal/database/migration"
	handlers "dataroom/internal/http/handler"
	"dataroom/internal/http/middleware"
	"dataroom/internal/logger"
	"dataroom/internal/metrics"
	"dataroom/internal/notify"
	"dataroom/internal/otel"
	"dataroom/internal/repository/postgres"
	"dataroom/internal/service"
	"dataroom/internal/storage"
	"dataroom/internal/throttle"
	"dataroom/internal/watermark"
)

// @title Data Room API
// @version 1.0
// @description Permission resolution, watermarked delivery, share links, access requests and audit for virtual data rooms.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		fatal(log, "db_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "db_migration_failed", err)
	}

	// S3-compatible object storage holds originals and temporary renditions
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		fatal(log, "storage_init_failed", err)
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		fatal(log, "auth_init_failed", err)
	}

	var limiter throttle.Limiter = throttle.Unlimited{}
	if cfg.Redis.Addr != "" {
		rdb, err := throttle.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			fatal(log, "redis_connect_failed", err)
		}
		defer rdb.Close()
		limiter = throttle.NewRedisLimiter(rdb, cfg.Share.MaxAttempts, cfg.Share.AttemptWindow)
	} else {
		log.Warn("share_throttle_disabled", slog.String("reason", "REDIS_ADDR is empty"))
	}

	notifier, closeNotifier, err := notify.New(cfg.RabbitMQ, log)
	if err != nil {
		fatal(log, "notify_init_failed", err)
	}
	defer closeNotifier()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}

	// Repositories
	rooms := postgres.NewRoomPostgres(db)
	access := postgres.NewAccessPostgres(db)
	rules := postgres.NewFolderRulePostgres(db)
	documents := postgres.NewDocumentPostgres(db)
	links := postgres.NewShareLinkPostgres(db)
	requests := postgres.NewAccessRequestPostgres(db)
	artifacts := postgres.NewArtifactPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	// Services
	engineOpts := watermark.Options{Opacity: cfg.Watermark.OverlayOpacity}
	engines := watermark.Engines{watermark.NewPDF(engineOpts), watermark.NewRaster(engineOpts)}

	resolver := service.NewPermissionResolver(rooms, access, documents, rules, m, log)
	trail := service.NewAuditTrail(auditRepo, resolver, log)
	renderer := service.NewWatermarkRenderer(objStore, artifacts, trail, engines, cfg.Watermark, m, log)
	gateway := service.NewContentGateway(documents, rooms, resolver, renderer, trail, log)
	shareLinks := service.NewShareLinkService(links, documents, rooms, resolver, renderer, trail, limiter, notifier, cfg.Share, m, log)
	workflow := service.NewAccessRequestWorkflow(requests, rooms, access, documents, resolver, trail, notifier, log)

	sweeper := service.NewArtifactSweeper(artifacts, objStore, cfg.Watermark.SweepInterval, cfg.Watermark.SweepBatchSize, m, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler:            handlers.ErrorHandler(),
		ProxyHeader:             cfg.ProxyHeader,
		EnableTrustedProxyCheck: len(cfg.TrustedProxies) > 0,
		TrustedProxies:          cfg.TrustedProxies,
		DisableStartupMessage:   true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// Edge country is taken only from trusted proxies; without it country allow-lists fail closed
	app.Use(middleware.ClientCountry(cfg.CountryHeader))
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(cfg.Log.Location))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, verifier, handlers.Services{
		Content:        gateway,
		ShareLinks:     shareLinks,
		AccessRequests: workflow,
		Audit:          trail,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("server_listening", slog.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Error("server_failed", slog.String("error_message", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server_shutdown_failed", slog.String("error_message", err.Error()))
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error_message", err.Error()))
	os.Exit(1)
}
