// Package main runs the reward reconciler service.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/actions"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/gateway"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/history"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/logging"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/metrics"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/publisher"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/reconciler"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/registry"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/transport"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

var config struct {
	HTTPAddr string `long:"http-addr" env:"RECONCILER_HTTP_ADDR" description:"http listen addr" default:":8000"`
	GRPCAddr string `long:"grpc-addr" env:"RECONCILER_GRPC_ADDR" description:"grpc health listen addr" default:":8001"`

	LogLevel      string `long:"log-level" env:"RECONCILER_LOG_LEVEL" description:"log level" default:"info"`
	LogEncoding   string `long:"log-encoding" env:"RECONCILER_LOG_ENCODING" description:"json or console" default:"json"`
	LogFile       string `long:"log-file" env:"RECONCILER_LOG_FILE" description:"optional rotated log file"`
	LogMaxSizeMB  int    `long:"log-max-size-mb" env:"RECONCILER_LOG_MAX_SIZE_MB" description:"log file size before rotation" default:"100"`
	LogMaxBackups int    `long:"log-max-backups" env:"RECONCILER_LOG_MAX_BACKUPS" description:"rotated log files to keep" default:"5"`
	LogMaxAgeDays int    `long:"log-max-age-days" env:"RECONCILER_LOG_MAX_AGE_DAYS" description:"days to keep rotated log files" default:"14"`

	GatewayEndpoints       []string      `long:"gateway-endpoint" env:"RECONCILER_GATEWAY_ENDPOINTS" env-delim:"," description:"contract gateway base url" required:"true"`
	GatewayTimeout         time.Duration `long:"gateway-timeout" env:"RECONCILER_GATEWAY_TIMEOUT" description:"gateway request timeout" default:"15s"`
	GatewayRPS             int           `long:"gateway-rps" env:"RECONCILER_GATEWAY_RPS" description:"gateway requests per second" default:"20"`
	GatewayBreakerFailures int           `long:"gateway-breaker-failures" env:"RECONCILER_GATEWAY_BREAKER_FAILURES" description:"failures before an endpoint is skipped" default:"3"`
	GatewayBreakerCooldown time.Duration `long:"gateway-breaker-cooldown" env:"RECONCILER_GATEWAY_BREAKER_COOLDOWN" description:"how long a failing endpoint is skipped" default:"5s"`

	GameContract         string `long:"game-contract" env:"RECONCILER_GAME_CONTRACT" description:"game contract address" required:"true"`
	PaymentTokenContract string `long:"payment-token-contract" env:"RECONCILER_PAYMENT_TOKEN_CONTRACT" description:"payment token address" required:"true"`
	RewardTokenContract  string `long:"reward-token-contract" env:"RECONCILER_REWARD_TOKEN_CONTRACT" description:"reward token address" required:"true"`
	Decimals             int32  `long:"decimals" env:"RECONCILER_DECIMALS" description:"reward token decimals" default:"18"`

	SlowInterval      time.Duration `long:"slow-interval" env:"RECONCILER_SLOW_INTERVAL" description:"full reconciliation period" default:"30s"`
	FastInterval      time.Duration `long:"fast-interval" env:"RECONCILER_FAST_INTERVAL" description:"aggregate reconciliation period" default:"5s"`
	RedisplayInterval time.Duration `long:"redisplay-interval" env:"RECONCILER_REDISPLAY_INTERVAL" description:"live estimate push period" default:"500ms"`
	PassTimeout       time.Duration `long:"pass-timeout" env:"RECONCILER_PASS_TIMEOUT" description:"deadline of one reconciliation pass" default:"20s"`
	PropagationDelay  time.Duration `long:"propagation-delay" env:"RECONCILER_PROPAGATION_DELAY" description:"delay of the follow-up pass after a write" default:"3s"`
	RegistryWorkers   int           `long:"registry-workers" env:"RECONCILER_REGISTRY_WORKERS" description:"parallel unit detail reads" default:"8"`
	TriggerWorkers    int           `long:"trigger-workers" env:"RECONCILER_TRIGGER_WORKERS" description:"workers for on-demand reconciliation" default:"16"`

	ClickhouseDSN      string        `long:"clickhouse-dsn" env:"RECONCILER_CLICKHOUSE_DSN" description:"clickhouse dsn, history is disabled when empty"`
	HistoryFlushSize   int           `long:"history-flush-size" env:"RECONCILER_HISTORY_FLUSH_SIZE" description:"snapshots per insert" default:"256"`
	HistoryFlushPeriod time.Duration `long:"history-flush-period" env:"RECONCILER_HISTORY_FLUSH_PERIOD" description:"max delay before insert" default:"2s"`
	HistoryFlushRPS    int           `long:"history-flush-rps" env:"RECONCILER_HISTORY_FLUSH_RPS" description:"inserts per second" default:"10"`

	RedisAddr     string        `long:"redis-addr" env:"RECONCILER_REDIS_ADDR" description:"redis addr, publishing is disabled when empty"`
	RedisPassword string        `long:"redis-password" env:"RECONCILER_REDIS_PASSWORD" description:"redis password"`
	RedisDB       int           `long:"redis-db" env:"RECONCILER_REDIS_DB" description:"redis database" default:"0"`
	RedisTTL      time.Duration `long:"redis-ttl" env:"RECONCILER_REDIS_TTL" description:"ttl of published snapshots" default:"10m"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		panic("failed to parse arguments: " + err.Error())
	}

	logger, err := logging.New(logging.Opts{
		Level:      config.LogLevel,
		Encoding:   config.LogEncoding,
		File:       config.LogFile,
		MaxSizeMB:  config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAgeDays: config.LogMaxAgeDays,
	})
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	contracts := gateway.Contracts{
		Game:         config.GameContract,
		PaymentToken: config.PaymentTokenContract,
		RewardToken:  config.RewardTokenContract,
	}
	entryPoints := gateway.DefaultEntryPoints()
	client := gateway.NewClient(gateway.Opts{
		Endpoints:       config.GatewayEndpoints,
		Timeout:         config.GatewayTimeout,
		RPS:             config.GatewayRPS,
		BreakerFailures: config.GatewayBreakerFailures,
		BreakerCooldown: config.GatewayBreakerCooldown,
	})
	rpcMetrics := metrics.NewRPCClient("gateway")
	reader := gateway.NewObservedReader(gateway.NewReader(client, contracts, entryPoints), rpcMetrics)
	executor := gateway.NewObservedExecutor(client, rpcMetrics)

	builder := registry.NewBuilder(reader, metrics.NewRegistry(), logger, config.RegistryWorkers)

	var observers []reconciler.Observer
	var historyRepo transport.History

	if config.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(config.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			logger.Fatal("Open clickhouse repository", zap.Error(err))
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Close clickhouse repository", zap.Error(err))
			}
		}()

		recorder := history.NewRecorder(repo, history.Opts{
			FlushSize:     config.HistoryFlushSize,
			FlushInterval: config.HistoryFlushPeriod,
			FlushRPS:      config.HistoryFlushRPS,
		}, logger)
		recorder.Start(context.WithoutCancel(ctx))
		defer recorder.Stop()

		observers = append(observers, recorder)
		historyRepo = repo
	} else {
		logger.Info("Snapshot history disabled")
	}

	if config.RedisAddr != "" {
		rdb, err := publisher.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			logger.Fatal("Connect redis", zap.Error(err))
		}
		defer func() {
			_ = rdb.Close()
		}()
		observers = append(observers, publisher.NewPublisher(rdb, metrics.NewPublisher(), publisher.Opts{
			TTL:      config.RedisTTL,
			Decimals: config.Decimals,
		}, logger))
		logger.Info("Publishing snapshots to redis", zap.String("addr", config.RedisAddr))
	}

	manager := reconciler.NewManager(reconciler.Config{
		SlowInterval:      config.SlowInterval,
		FastInterval:      config.FastInterval,
		RedisplayInterval: config.RedisplayInterval,
		PassTimeout:       config.PassTimeout,
		PropagationDelay:  config.PropagationDelay,
		Decimals:          config.Decimals,
		PaymentToken:      config.PaymentTokenContract,
		RewardToken:       config.RewardTokenContract,
		TriggerWorkers:    config.TriggerWorkers,
	}, builder, reader, observers, metrics.NewReconciler(), logger)
	// Deferred after the recorder, so sessions stop before the last history batch is flushed.
	defer manager.Close()

	actionService := actions.NewService(executor, manager, metrics.NewActions(), contracts, entryPoints, logger)

	grpcServer := transport.NewGRPCServer(transport.NewHealthHandler(manager), logger)
	socket, err := net.Listen("tcp", config.GRPCAddr)
	if err != nil {
		logger.Fatal("net.Listen error", zap.Error(err))
	}
	go func() {
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Fatal("Start GRPC server", zap.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	handler := transport.NewHTTPHandler(manager, actionService, historyRepo, config.Decimals, logger)
	s := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		manager.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.HTTPAddr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
