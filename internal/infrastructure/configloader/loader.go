package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRemoteRPCURL is the versioned override document fetched at start.
const DefaultRemoteRPCURL = "https://raw.githubusercontent.com/aavealarm/rpc-config/main/v1/rpcs.json"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int      `yaml:"idleTimeoutSeconds"`
	AllowOrigins        []string `yaml:"allowOrigins"`
	EnablePprof         bool     `yaml:"enablePprof"`
}

// DBConfig selects the account store. Driver is "memory" or "postgres".
type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CacheConfig selects the key-value cache. Backend is "memory" or "redis".
type CacheConfig struct {
	Backend                  string `yaml:"backend"`
	RedisAddr                string `yaml:"redisAddr"`
	RedisPassword            string `yaml:"redisPassword"`
	RedisDB                  int    `yaml:"redisDB"`
	KeyPrefix                string `yaml:"keyPrefix"`
	DefaultExpirationMinutes int    `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int    `yaml:"cleanupIntervalMinutes"`
}

// ChainConfig overrides the default RPC endpoints of one chain.
type ChainConfig struct {
	Name            string   `yaml:"name"`
	PrimaryRPCURL   string   `yaml:"primaryRpcUrl"`
	FallbackRPCURLs []string `yaml:"fallbackRpcUrls"`
}

// RPCResolverConfig controls the remote override refresh.
type RPCResolverConfig struct {
	RemoteURL              string `yaml:"remoteURL"`
	RequestTimeoutMillis   int64  `yaml:"requestTimeoutMillis"`
	RefreshIntervalMinutes int    `yaml:"refreshIntervalMinutes"`
}

// GatewayConfig holds the contract call limits.
type GatewayConfig struct {
	CallTimeoutMillis        int64   `yaml:"callTimeoutMillis"`
	ConnectionTimeoutSeconds int     `yaml:"connectionTimeoutSeconds"`
	MaxRetries               int     `yaml:"maxRetries"`
	RetryBaseDelayMillis     int64   `yaml:"retryBaseDelayMillis"`
	RateLimitPerSecond       float64 `yaml:"rateLimitPerSecond"`
	BurstLimit               int     `yaml:"burstLimit"`
	HealthFactorBatchSize    int     `yaml:"healthFactorBatchSize"`
	Multicall3Address        string  `yaml:"multicall3Address"`
}

// PositionsConfig holds aggregation settings.
type PositionsConfig struct {
	MaxConcurrentSnapshots int    `yaml:"maxConcurrentSnapshots"`
	PromotedSymbol         string `yaml:"promotedSymbol"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DBConfig          `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Cache       CacheConfig       `yaml:"cache"`
	Chains      []ChainConfig     `yaml:"chains"`
	RPCResolver RPCResolverConfig `yaml:"rpcResolver"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Positions   PositionsConfig   `yaml:"positions"`
}

// PathFromEnv returns CONFIG_PATH or the given fallback.
func PathFromEnv(fallback string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return fallback
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 60
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 120
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "memory"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "aave_alarm:"
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}

	if cfg.RPCResolver.RemoteURL == "" {
		cfg.RPCResolver.RemoteURL = DefaultRemoteRPCURL
	}
	if cfg.RPCResolver.RequestTimeoutMillis <= 0 {
		cfg.RPCResolver.RequestTimeoutMillis = 10000
	}

	if cfg.Gateway.CallTimeoutMillis <= 0 {
		cfg.Gateway.CallTimeoutMillis = 10000
	}
	if cfg.Gateway.ConnectionTimeoutSeconds <= 0 {
		cfg.Gateway.ConnectionTimeoutSeconds = 10
	}
	if cfg.Gateway.MaxRetries < 0 {
		cfg.Gateway.MaxRetries = 0
	} else if cfg.Gateway.MaxRetries == 0 {
		cfg.Gateway.MaxRetries = 2
	}
	if cfg.Gateway.RetryBaseDelayMillis <= 0 {
		cfg.Gateway.RetryBaseDelayMillis = 200
	}
	if cfg.Gateway.RateLimitPerSecond <= 0 {
		cfg.Gateway.RateLimitPerSecond = 20
	}
	if cfg.Gateway.BurstLimit <= 0 {
		cfg.Gateway.BurstLimit = 10
	}
	if cfg.Gateway.HealthFactorBatchSize <= 0 {
		cfg.Gateway.HealthFactorBatchSize = 100
	}
	if cfg.Gateway.Multicall3Address == "" {
		cfg.Gateway.Multicall3Address = "0xcA11bde05977b3631167028862bE2a173976CA11"
	}

	if cfg.Positions.MaxConcurrentSnapshots <= 0 {
		cfg.Positions.MaxConcurrentSnapshots = 8
	}
	if cfg.Positions.PromotedSymbol == "" {
		cfg.Positions.PromotedSymbol = "GHO"
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "memory":
	case "postgres":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redisAddr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	for i, c := range cfg.Chains {
		if c.Name == "" {
			return fmt.Errorf("chains[%d]: name is required", i)
		}
	}
	return nil
}
