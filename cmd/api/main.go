package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/analytics"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/auth"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/checkout"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/config"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/events"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/health"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/menu"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/notify"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/payment"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/ratelimit"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/resilience"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/security"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics("kiosk", nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "kiosk-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool := mustPool(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	taskClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()

	menuSvc := &menu.Service{
		Repo:     &menu.Repo{Pool: pool},
		Cache:    menu.NewCache(redisClient, cfg.MenuCacheTTL),
		Validate: validate,
		Log:      logger,
	}
	menuHandler := &menu.Handler{Svc: menuSvc}

	cartSvc := &cart.Service{
		Catalog: menuSvc,
		Store:   &cart.Store{Client: redisClient, TTL: cfg.CartTTL},
	}
	cartHandler := &cart.Handler{Svc: cartSvc}

	enqueuer := &notify.Enqueuer{Client: taskClient, Log: logger}
	bus := &events.Bus{Notifiers: []events.Notifier{enqueuer}, Log: logger}

	orderSvc := &order.Service{
		Store:  &order.Repo{Pool: pool},
		Events: bus,
		Log:    logger,
	}
	orderHandler := &order.Handler{Svc: orderSvc}

	checkoutSvc := &checkout.Service{Carts: cartSvc, Orders: orderSvc, Log: logger}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	paymentHandler := &payment.Handler{
		PayFast: payment.PayFast{
			MerchantID:  cfg.PayFastMerchantID,
			MerchantKey: cfg.PayFastMerchantKey,
			Passphrase:  cfg.PayFastPassphrase,
			Sandbox:     cfg.PayFastSandbox,
		},
		Stripe: payment.Stripe{
			SecretKey: cfg.StripeSecretKey,
			Currency:  cfg.Currency,
			Client: &resilience.HTTPClient{
				Client:      &http.Client{Timeout: 10 * time.Second},
				Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("stripe").WithLogger(logger),
				MaxAttempts: 3,
				BaseBackoff: 200 * time.Millisecond,
			},
		},
		Orders:  orderSvc,
		BaseURL: cfg.PublicBaseURL,
		Log:     logger,
	}

	authSvc, err := auth.NewService(auth.Config{
		Store:          &auth.Repo{Pool: pool},
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Svc: authSvc}
	authMw := auth.Middleware{Service: authSvc}

	settingsHandler := &settings.Handler{Svc: &settings.Service{
		Store:    &settings.Repo{Pool: pool},
		Validate: validate,
	}}

	analyticsHandler := &analytics.Handler{Svc: &analytics.Service{
		Q:   &analytics.Repo{Pool: pool},
		R:   redisClient,
		TTL: cfg.AnalyticsCacheTTL,
	}}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Limiter{Client: redisClient, Prefix: "kiosk:rl:"}
	checkoutLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.PerIP("checkout"), Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		Log:     logger,
	}
	paymentLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.PerIP("payment"), Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		Log:     logger,
	}

	httpMetrics := obs.NewHTTPMetrics("kiosk", nil, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{Checker: health.Probes{DB: pool, Redis: redisClient}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Mount("/", menuHandler.Routes())
		v.Mount("/settings", settingsHandler.Routes())
		v.Mount("/cart", cartHandler.Routes())
		v.Mount("/orders", orderHandler.Routes())
		v.Mount("/auth", authHandler.Routes())

		v.Group(func(g chi.Router) {
			g.Use(checkoutLimit.Middleware)
			g.Use(idem.Middleware)
			g.Mount("/checkout", checkoutHandler.Routes())
		})

		v.Group(func(g chi.Router) {
			g.Use(paymentLimit.Middleware)
			g.Mount("/payments", paymentHandler.Routes())
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMw.RequireAdmin)
			admin.Mount("/", menuHandler.AdminRoutes())
			admin.Mount("/orders", orderHandler.AdminRoutes())
			admin.Mount("/settings", settingsHandler.AdminRoutes())
			admin.Mount("/analytics", analyticsHandler.AdminRoutes())
			admin.Mount("/auth", authHandler.AdminRoutes())
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	health.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func mustPool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "kiosk-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
