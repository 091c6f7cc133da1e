package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/t1tandr/uevent/docs"
	catalogapp "github.com/t1tandr/uevent/internal/application/catalog"
	companyapp "github.com/t1tandr/uevent/internal/application/company"
	eventapp "github.com/t1tandr/uevent/internal/application/event"
	identityapp "github.com/t1tandr/uevent/internal/application/identity"
	notificationapp "github.com/t1tandr/uevent/internal/application/notification"
	ticketingapp "github.com/t1tandr/uevent/internal/application/ticketing"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/auth"
	"github.com/t1tandr/uevent/internal/infrastructure/cache"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
	eventbus "github.com/t1tandr/uevent/internal/infrastructure/event"
	"github.com/t1tandr/uevent/internal/infrastructure/export"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
	"github.com/t1tandr/uevent/internal/infrastructure/mail"
	"github.com/t1tandr/uevent/internal/infrastructure/messaging"
	"github.com/t1tandr/uevent/internal/infrastructure/metrics"
	"github.com/t1tandr/uevent/internal/infrastructure/oauth"
	"github.com/t1tandr/uevent/internal/infrastructure/payment"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence"
	"github.com/t1tandr/uevent/internal/infrastructure/printing"
	"github.com/t1tandr/uevent/internal/infrastructure/realtime"
	"github.com/t1tandr/uevent/internal/infrastructure/scheduler"
	"github.com/t1tandr/uevent/internal/infrastructure/storage"
	"github.com/t1tandr/uevent/internal/infrastructure/telemetry"
	"github.com/t1tandr/uevent/internal/interfaces/http/handler"
	"github.com/t1tandr/uevent/internal/interfaces/http/middleware"
	"github.com/t1tandr/uevent/internal/interfaces/http/router"
)

//	@title			UEvent API
//	@version		1.0
//	@description	Events marketplace: companies publish events, users buy tickets, subscribe and get notified.

//	@contact.name	UEvent Team
//	@contact.url	https://github.com/t1tandr/uevent

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

var version = "dev"

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: timeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}

	// OpenTelemetry logs: rebuild the logger with the OTLP bridge teed in
	logsProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logsProvider.IsEnabled() {
		bridged, err := logger.New(logCfg, logger.WithCore(telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    serviceName,
			LoggerProvider: logsProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})))
		if err != nil {
			log.Fatal("Failed to bridge logger", zap.Error(err))
		}
		log = bridged
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting UEvent",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	httpMeter, err := telemetry.NewHTTPMeter(meterProvider)
	if err != nil {
		log.Fatal("Failed to create HTTP instruments", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   serviceName,
		BasicAuthPassword: cfg.Profiling.AuthToken,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled && cfg.Telemetry.Enabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.Open(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	// Redis is optional; without it every store falls back to memory
	var redisClient redis.UniversalClient
	rc, err := cache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err == nil:
		redisClient = rc
		defer func() { _ = rc.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	case errors.Is(err, cache.ErrRedisDisabled):
		log.Info("Redis disabled, using in-memory stores")
	default:
		log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	publisherCfg := scheduler.PublisherConfigFrom(cfg.Publisher)
	var jobStore scheduler.JobStore = scheduler.NewMemoryJobStore(scheduler.WithLease(publisherCfg.Lease))
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		jobStore = scheduler.NewRedisJobStore(redisClient, scheduler.WithLease(publisherCfg.Lease))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(redisClient,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	subscriberRepo := persistence.NewGormSubscriberRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	eventRepo := persistence.NewGormEventRepository(db.DB)
	promoCodeRepo := persistence.NewGormPromoCodeRepository(db.DB)
	commentRepo := persistence.NewGormCommentRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Object storage
	var objectStorage shared.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
		objectStorage = s3
	} else {
		log.Warn("Object storage disabled, uploads are kept in memory")
		objectStorage = storage.NewStubObjectStorage()
	}

	mailer, err := mail.NewMailer(cfg.Mail, cfg.App.FrontendURL, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	pdfRenderer := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(cfg.Printing, log))
	defer func() { _ = pdfRenderer.Close() }()
	ticketRenderer := printing.NewTicketRenderer(pdfRenderer, log)

	appMetrics := metrics.New()
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := appMetrics.RegisterDB(cfg.Database.DBName, sqlDB); err != nil {
			log.Warn("Connection pool metrics unavailable", zap.Error(err))
		}
	}

	// Domain event bus
	bus := eventbus.NewInMemoryEventBus(log, eventbus.WithAsyncDispatch())

	hub := realtime.NewHub(log, realtime.WithConnectionGauge(appMetrics.WSConnected))

	notificationService := notificationapp.NewNotificationService(notificationRepo, eventRepo, companyRepo, hub, log)
	notificationRepos := notificationapp.Repositories{
		Users:       userRepo,
		Events:      eventRepo,
		Tickets:     ticketRepo,
		Companies:   companyRepo,
		Subscribers: subscriberRepo,
	}
	domainEventHandler := notificationapp.NewDomainEventHandler(
		notificationRepos, notificationService, mailer, ticketRenderer, cfg.Mail.From, log)

	bus.Subscribe(eventbus.NewIdempotentHandler("notifications", domainEventHandler, idempotencyStore, log,
		eventbus.WithOutcomeObserver(appMetrics)))
	bus.Subscribe(appMetrics)

	if cfg.Kafka.Enabled {
		writer, err := messaging.NewKafkaWriter(cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to configure Kafka", zap.Error(err))
		}
		forwarder := messaging.NewKafkaForwarder(writer, log)
		defer func() { _ = forwarder.Close() }()
		bus.Subscribe(forwarder)
		log.Info("Forwarding domain events to Kafka", zap.String("topic", cfg.Kafka.Topic))
	}

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Delayed publishing of scheduled events
	publisher := scheduler.NewDelayedPublisher(jobStore, publisherCfg, log,
		scheduler.WithOutcomeHook(appMetrics.PublishOutcome))
	publisher.SetHandler(eventapp.NewPublishHandler(eventRepo, bus, log).Handle)
	if err := publisher.Start(ctx); err != nil {
		log.Fatal("Failed to start event publisher", zap.Error(err))
	}

	var reminderTask *scheduler.PeriodicTask
	if cfg.Reminder.Enabled {
		sweeper := notificationapp.NewReminderSweeper(notificationRepos, notificationService, mailer, log)
		sweeper.SetWindow(cfg.Reminder.LeadTime)
		reminderTask = scheduler.NewPeriodicTask("event-reminders", cfg.Reminder.Interval, sweeper.Sweep, log)
		if err := reminderTask.Start(ctx); err != nil {
			log.Fatal("Failed to start reminder task", zap.Error(err))
		}
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	googleProvider := oauth.NewGoogleProvider(cfg.Google, oauth.DefaultGoogleEndpoints(), log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, googleProvider, bus, log)
	userService := identityapp.NewUserService(
		userRepo, eventRepo, ticketRepo, companyRepo, memberRepo, subscriberRepo, objectStorage, log)

	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	if created, err := categoryService.EnsureDefaults(ctx); err != nil {
		log.Warn("Failed to seed default categories", zap.Error(err))
	} else if created > 0 {
		log.Info("Seeded default categories", zap.Int("count", created))
	}

	companyRepos := companyapp.Repositories{
		Companies:   companyRepo,
		Members:     memberRepo,
		Subscribers: subscriberRepo,
		Users:       userRepo,
		Events:      eventRepo,
		Tickets:     ticketRepo,
		Categories:  categoryRepo,
	}
	companyService := companyapp.NewCompanyService(
		companyRepos, persistence.NewGormCompanyScope(db.DB), objectStorage, bus, log)
	subscriptionService := companyapp.NewSubscriptionService(companyRepos, log)

	eventRepos := eventapp.Repositories{
		Events:     eventRepo,
		PromoCodes: promoCodeRepo,
		Comments:   commentRepo,
		Tickets:    ticketRepo,
		Payments:   paymentRepo,
		Users:      userRepo,
		Companies:  companyRepo,
		Members:    memberRepo,
		Categories: categoryRepo,
	}
	eventService := eventapp.NewEventService(
		eventRepos, persistence.NewGormEventScope(db.DB), publisher, objectStorage, bus, log)
	promoCodeService := eventapp.NewPromoCodeService(eventRepos, log)
	attendeeService := eventapp.NewAttendeeService(eventRepos, export.NewXLSXExporter(), log)
	commentService := eventapp.NewCommentService(eventRepos, log)

	ticketOpts := []ticketingapp.TicketServiceOption{
		ticketingapp.WithIdempotencyStore(idempotencyStore),
		ticketingapp.WithCheckoutRecorder(appMetrics),
	}
	if cfg.Stripe.SecretKey != "" {
		gateway, err := payment.NewStripeGateway(payment.StripeConfigFrom(cfg.Stripe), log)
		if err != nil {
			log.Fatal("Failed to configure Stripe", zap.Error(err))
		}
		ticketOpts = append(ticketOpts, ticketingapp.WithPaymentGateway(gateway))
	} else {
		log.Warn("Stripe is not configured, paid checkout is disabled")
	}
	ticketService := ticketingapp.NewTicketService(ticketingapp.Repositories{
		Events:     eventRepo,
		PromoCodes: promoCodeRepo,
		Tickets:    ticketRepo,
		Payments:   paymentRepo,
		Users:      userRepo,
	}, persistence.NewGormTicketingScope(db.DB), ticketRenderer, bus, log, ticketOpts...)

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	observers := []middleware.RequestObserver{appMetrics}
	if httpMeter != nil {
		observers = append(observers, httpMeter)
	}

	// 1. Request ID first so every later log line carries it
	engine.Use(middleware.RequestID())
	// 2. Panic recovery
	engine.Use(logger.Recovery(log))
	// 3. Request logging
	engine.Use(logger.GinMiddleware(log))
	// 4. Tracing
	engine.Use(middleware.Tracing(serviceName, "/api/health", "/metrics", "/swagger"))
	// 5. Profiling labels
	engine.Use(middleware.Profiling("/api/health", "/metrics", "/swagger"))
	// 6. Request metrics
	engine.Use(middleware.HTTPMetrics(observers...))
	// 7. Security headers; Swagger UI needs inline scripts
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig(), "/swagger"))
	// 8. CORS
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
		AllowCredentials: true,
		MaxAge:           cfg.HTTP.CORSMaxAge,
	}))
	// 9. Request body size
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	// 10. Global rate limit
	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		global := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, global)
		engine.Use(middleware.RateLimit(global, middleware.WithRejectHook("global", appMetrics.RateLimitHit)))
	}

	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Auth:         jwtAuth,
		OptionalAuth: middleware.OptionalJWTAuthMiddleware(jwtService),
		StreamAuth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:      jwtService,
			TokenBlacklist:  blacklist,
			AllowQueryToken: true,
			Logger:          log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, authLimiter)
		guards.AuthLimit = middleware.RateLimit(authLimiter, middleware.WithRejectHook("auth", appMetrics.RateLimitHit))
	}
	if cfg.HTTP.UploadRateLimitRequests > 0 {
		uploadLimiter := middleware.NewRateLimiter(cfg.HTTP.UploadRateLimitRequests, cfg.HTTP.UploadRateLimitWindow)
		limiters = append(limiters, uploadLimiter)
		guards.UploadLimit = middleware.RateLimit(uploadLimiter, middleware.WithRejectHook("upload", appMetrics.RateLimitHit))
	}

	maxUpload := cfg.HTTP.MaxUploadSize
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.Cookie, cfg.App.FrontendURL),
		User:         handler.NewUserHandler(userService, maxUpload),
		Company:      handler.NewCompanyHandler(companyService, subscriptionService, maxUpload),
		Subscriber:   handler.NewSubscriberHandler(subscriptionService),
		Category:     handler.NewCategoryHandler(categoryService),
		Event:        handler.NewEventHandler(eventService, maxUpload),
		PromoCode:    handler.NewPromoCodeHandler(promoCodeService),
		Attendee:     handler.NewAttendeeHandler(attendeeService),
		Comment:      handler.NewCommentHandler(commentService),
		Ticket:       handler.NewTicketHandler(ticketService),
		Webhook:      handler.NewStripeWebhookHandler(ticketService),
		Notification: handler.NewNotificationHandler(notificationService, hub, cfg.HTTP.CORSAllowOrigins, log),
		System:       handler.NewSystemHandler(cfg.App.Name, version, healthChecks(db, redisClient)),
	}

	r := router.NewRouter(engine).Use(middleware.TracingAttributeInjector())
	for _, group := range router.DomainGroups(handlers, guards) {
		r.Register(group)
	}
	r.Setup()

	engine.GET("/metrics", gin.WrapH(appMetrics.Handler()))
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if reminderTask != nil {
		if err := reminderTask.Stop(shutdownCtx); err != nil {
			log.Warn("Reminder task did not stop cleanly", zap.Error(err))
		}
	}
	if err := publisher.Stop(shutdownCtx); err != nil {
		log.Warn("Event publisher did not stop cleanly", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	for _, l := range limiters {
		l.Stop()
	}
	cancel()

	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthChecks lists the dependencies probed by /api/health
func healthChecks(db *persistence.Database, redisClient redis.UniversalClient) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": db,
	}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	return checks
}
