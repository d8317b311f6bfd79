package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/config"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/notify"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	orders := &order.Service{Store: &order.Repo{Pool: pool}, Log: logger}

	processor := &notify.Processor{
		Orders: orders,
		Email:  notify.LogSender{Log: logger},
		SMS:    notify.LogSender{Log: logger},
		Log:    logger,
	}

	mux := asynq.NewServeMux()
	processor.Register(mux)

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
		Logger:      asynqLogger{logger},
	})

	logger.Info().Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	srv.Shutdown()
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "kiosk-worker"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

// asynqLogger adapts zerolog to the asynq logger interface.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msgf("%v", args) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msgf("%v", args) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msgf("%v", args) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msgf("%v", args) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msgf("%v", args) }
