package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	appcheckout "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/checkout"
	appsession "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/auth"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/cache"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/config"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/logger"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/payment"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/persistence"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/storage"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/telemetry"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/handler"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration. Missing Stripe keys fail here.
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger, then attach the OTLP log bridge once its provider exists
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	tel, log, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Jack Mack storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	meter := tel.meters.Meter(telemetry.TracerName)
	metrics, err := telemetry.NewStorefrontMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create storefront metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
		TracerProvider:  tel.tracer.Provider(),
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	if reg, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
		log.Warn("Database pool metrics disabled", zap.Error(err))
	} else {
		defer func() { _ = reg.Unregister() }()
	}

	// Redis backs token revocation and the shared catalog cache tier
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = auth.NewRedisClient(ctx, auth.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var revocations appsession.RevocationList
	if redisClient != nil {
		revocations = auth.NewRedisRevocationList(redisClient, cfg.Redis.KeyPrefix)
	} else {
		revocations = auth.NewInMemoryRevocationList()
		log.Warn("Redis disabled, token revocation is kept in memory")
	}

	// Payment provider
	stripeAdapter, err := payment.NewStripeIntentAdapter(&payment.StripeConfig{
		SecretKey:      cfg.Stripe.SecretKey,
		PublishableKey: cfg.Stripe.PublishableKey,
		Currency:       cfg.Stripe.Currency,
	}, log)
	if err != nil {
		log.Fatal("Invalid Stripe configuration", zap.Error(err))
	}

	// Product images
	var images appcatalog.ImageResolver
	if cfg.Storage.Enabled {
		s3Images, err := storage.NewS3ImageResolver(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		images = s3Images
	} else {
		images = storage.NewPublicImageResolver(publicStorageURL(cfg), cfg.Storage.Bucket)
	}

	// Application services
	var products catalog.ProductReader = persistence.NewGormProductRepository(db.DB)
	if cfg.Cache.Enabled {
		l1 := cache.NewInMemoryProductCache(cfg.Cache.L1TTL, cache.WithInMemoryLogger(log))
		defer l1.Stop()
		readerOpts := []cache.CachedProductReaderOption{
			cache.WithReaderLogger(log),
			cache.WithLoadTimeout(cfg.Cache.LoadTimeout),
		}
		if redisClient != nil {
			readerOpts = append(readerOpts, cache.WithRedisTier(
				cache.NewRedisProductCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.L2TTL)))
		}
		products = cache.NewCachedProductReader(products, l1, readerOpts...)
		log.Info("Catalog cache enabled",
			zap.Duration("l1_ttl", cfg.Cache.L1TTL),
			zap.Bool("redis_tier", redisClient != nil),
		)
	}
	fetcher := appcatalog.NewFetcher(products, log, appcatalog.WithFetchRecorder(metrics))
	storefront := appcatalog.NewStorefrontService(fetcher, images, log)
	checkoutService := appcheckout.NewService(stripeAdapter, log,
		appcheckout.WithCurrency(cfg.Stripe.Currency),
		appcheckout.WithRecorder(metrics))

	hub := appsession.NewHub(
		appsession.WithHubLogger(log),
		appsession.WithSubscriberBuffer(cfg.Session.SubscriberBuffer),
	)
	sessionService := appsession.NewService(
		auth.NewSupabaseVerifier(cfg.Supabase.JWTSecret, cfg.Supabase.JWTAudience),
		revocations,
		hub,
		log,
		appsession.WithSignOutClient(auth.NewSupabaseLogoutClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)),
	)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	tmpl, err := handler.Templates()
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}
	engine.SetHTMLTemplate(tmpl)

	cookieOpts := middleware.CookieOptions{
		Domain:   cfg.Cookie.Domain,
		Path:     cfg.Cookie.Path,
		Secure:   cfg.Cookie.Secure,
		SameSite: middleware.ParseSameSite(cfg.Cookie.SameSite),
	}
	securityCfg := middleware.DefaultSecurityConfig(cfg.Supabase.URL)
	securityCfg.HSTSEnabled = cfg.Cookie.Secure

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        tel.tracer.IsEnabled(),
			TracerProvider: tel.tracer.Provider(),
			SkipPaths:      []string{"/health"},
		}),
		logger.GinMiddleware(log, logger.WithSkipPaths("/health")),
		logger.Recovery(log),
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(meter, log),
		middleware.Session(sessionService, cookieOpts),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
	)
	middleware.SetupValidator()

	var checkoutGuard []gin.HandlerFunc
	if cfg.HTTP.CheckoutRateLimit > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.HTTP.CheckoutRateLimit, cfg.HTTP.CheckoutRateWindow)
		checkoutGuard = append(checkoutGuard, middleware.RateLimit(limiter))
	}

	events := handler.NewSessionEventsHandler(hub, sessionService,
		handler.WithEventsLogger(log),
		handler.WithHeartbeat(cfg.Session.HeartbeatInterval),
		handler.WithMaxStreams(cfg.Session.MaxStreams),
		handler.WithStreamRecorder(metrics),
	)

	router.Mount(engine, router.Handlers{
		Catalog:       handler.NewCatalogHandler(storefront),
		Checkout:      handler.NewCheckoutHandler(checkoutService, stripeAdapter.PublishableKey(), log),
		Session:       handler.NewSessionHandler(sessionService, cookieOpts, log),
		Events:        events,
		System:        handler.NewSystemHandler(cfg.App.Name, version, sqlDB, log),
		Pages:         handler.NewPageHandler(storefront),
		CheckoutGuard: checkoutGuard,
	})

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

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Streams never end on their own, so close them before draining the server
	events.Stop()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	sessionService.Wait()
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

// publicStorageURL returns the public object URL prefix of the Supabase
// Storage bucket
func publicStorageURL(cfg *config.Config) string {
	if cfg.Storage.PublicURL != "" {
		return cfg.Storage.PublicURL
	}
	if cfg.Supabase.URL == "" {
		return ""
	}
	return cfg.Supabase.URL + "/storage/v1/object/public/" + cfg.Storage.Bucket
}
