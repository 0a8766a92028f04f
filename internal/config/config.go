package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Clob     ClobConfig     `mapstructure:"clob"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Market   MarketConfig   `mapstructure:"market"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string  `mapstructure:"port"`
	OrdersPerSecond float64 `mapstructure:"orders_per_second"`
	OrdersBurst     int     `mapstructure:"orders_burst"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
}

type ChainConfig struct {
	RPCURL            string `mapstructure:"rpc_url"`
	ChainID           int64  `mapstructure:"chain_id"`
	ClassifyTimeoutMs int    `mapstructure:"classify_timeout_ms"`
}

type ClobConfig struct {
	// Order-venue base URL, e.g. https://clob.polymarket.com
	Host string `mapstructure:"host"`

	// L1 private key used by the bridge for order signing and by the
	// credential provider for L1 auth. Never logged.
	PrivateKey string `mapstructure:"private_key"`

	// Proxy (funder) wallet address; derived from the key when empty.
	ProxyWallet string `mapstructure:"proxy_wallet"`

	// Explicit signature-type override: EOA or POLY_PROXY. When set it
	// wins over on-chain wallet classification.
	SignatureType string `mapstructure:"signature_type"`
}

type BridgeConfig struct {
	Runtime        string `mapstructure:"runtime"`
	Script         string `mapstructure:"script"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type MarketConfig struct {
	StreamEnabled bool `mapstructure:"stream_enabled"`
	// Books older than this are re-fetched over HTTP.
	StalenessSeconds int `mapstructure:"staleness_seconds"`
}

type RedisConfig struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	SubmissionsKey string `mapstructure:"submissions_key"`
	SubmissionsMax int    `mapstructure:"submissions_max"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. POLYEXEC_CLOB_PRIVATE_KEY
	viper.SetEnvPrefix("polyexec")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Legacy env names kept for operators migrating from the Python stack
	_ = viper.BindEnv("clob.signature_type", "POLYEXEC_CLOB_SIGNATURE_TYPE", "CLOB_SIGNATURE_TYPE")
	_ = viper.BindEnv("clob.host", "POLYEXEC_CLOB_HOST", "CLOB_HTTP_URL")
	_ = viper.BindEnv("clob.private_key", "POLYEXEC_CLOB_PRIVATE_KEY", "PRIVATE_KEY")
	_ = viper.BindEnv("clob.proxy_wallet", "POLYEXEC_CLOB_PROXY_WALLET", "PROXY_WALLET")
	_ = viper.BindEnv("chain.rpc_url", "POLYEXEC_CHAIN_RPC_URL", "RPC_URL")

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.orders_per_second", 10.0)
	viper.SetDefault("server.orders_burst", 20)
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("chain.chain_id", 137) // Polygon
	viper.SetDefault("chain.classify_timeout_ms", 5000)
	viper.SetDefault("clob.host", "https://clob.polymarket.com")
	viper.SetDefault("bridge.runtime", "node")
	viper.SetDefault("bridge.script", "scripts/clob_bridge.mjs")
	viper.SetDefault("bridge.timeout_seconds", 30)
	viper.SetDefault("market.stream_enabled", false)
	viper.SetDefault("market.staleness_seconds", 10)
	viper.SetDefault("redis.submissions_key", "polyexec:submissions")
	viper.SetDefault("redis.submissions_max", 10000)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.dir", "./logs")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
