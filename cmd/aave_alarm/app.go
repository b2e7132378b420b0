package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/app/service"
	"aave_alarm/internal/app/session"
	"aave_alarm/internal/client"
	"aave_alarm/internal/infrastructure/accountstore"
	"aave_alarm/internal/infrastructure/configloader"
	"aave_alarm/internal/infrastructure/kvcache"
	netclient "aave_alarm/internal/infrastructure/network/client"
	networkdefinition "aave_alarm/internal/infrastructure/network/definition"
	"aave_alarm/internal/infrastructure/rpcresolver"
	"aave_alarm/internal/pkg/logger"
	"aave_alarm/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *configloader.Config
	logger    *zap.Logger
	promReg   *prometheus.Registry
	metrics   *metrics.Metrics
	cache     port.KeyValueCache
	registry  port.MarketRegistry
	resolver  *rpcresolver.Resolver
	callers   *netclient.EVMClientProvider
	gateway   port.ProtocolGateway
	positions port.PositionService
	session   *session.Session

	closers []func()
}

// loadConfig reads --config, else $CONFIG_PATH, else the built-in defaults.
// A .env file in the working directory, if present, is loaded first.
func loadConfig(cmd *cobra.Command) (*configloader.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = configloader.PathFromEnv("")
	}
	var cfg *configloader.Config
	if path == "" {
		cfg = configloader.Default()
	} else {
		loaded, err := configloader.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.InstallGlobal(zapLogger)

	a := &app{cfg: cfg, logger: zapLogger}
	a.closers = append(a.closers, func() { _ = zapLogger.Sync() })

	a.promReg = prometheus.NewRegistry()
	a.promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.promReg)

	a.cache = a.newCache()
	a.registry = networkdefinition.NewRegistry(cfg.Chains, zapLogger)

	remote := client.NewRPCConfigClient(
		cfg.RPCResolver.RemoteURL,
		time.Duration(cfg.RPCResolver.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	a.resolver = rpcresolver.NewResolver(a.registry, a.cache, remote,
		time.Duration(cfg.RPCResolver.RefreshIntervalMinutes)*time.Minute, a.metrics, zapLogger)

	a.callers = netclient.NewEVMClientProvider(cfg, zapLogger)
	a.closers = append(a.closers, a.callers.Close)

	a.gateway = netclient.NewAaveGateway(cfg.Gateway, a.resolver, a.callers, a.metrics, zapLogger)
	a.positions = service.NewPositionService(a.registry, a.gateway, cfg.Positions, a.metrics, zapLogger)
	a.session = session.New(a.cache, zapLogger)

	zapLogger.Info("Application initialized",
		zap.String("cache", cfg.Cache.Backend),
		zap.Int("markets", len(a.registry.Markets())))
	return a, nil
}

func (a *app) newCache() port.KeyValueCache {
	ttl := time.Duration(a.cfg.Cache.DefaultExpirationMinutes) * time.Minute
	if a.cfg.Cache.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Cache.RedisAddr,
			Password: a.cfg.Cache.RedisPassword,
			DB:       a.cfg.Cache.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		return kvcache.NewRedisCache(rdb, a.cfg.Cache.KeyPrefix, ttl)
	}
	return kvcache.NewMemoryCache(ttl, time.Duration(a.cfg.Cache.CleanupIntervalMinutes)*time.Minute)
}

// newAccountStore opens the configured account store.
func (a *app) newAccountStore(ctx context.Context) (port.AccountStore, error) {
	if a.cfg.Database.Driver != "postgres" {
		return accountstore.NewMemoryStore(), nil
	}
	store, err := accountstore.NewPostgresStore(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
