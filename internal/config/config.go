// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Hermes    HermesConfig    `mapstructure:"hermes"`
	Prep      PrepConfig      `mapstructure:"prep"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RatePerMinute   int           `mapstructure:"rate_per_minute"`
}

// ChainConfig holds Flow EVM node and contract configuration.
type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	ChainID        uint64        `mapstructure:"chain_id"`
	AppContract    string        `mapstructure:"app_contract"`
	PythContract   string        `mapstructure:"pyth_contract"` // optional override; resolved via pyth() when empty
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AppContractHex returns the basket contract address as common.Address.
func (c *ChainConfig) AppContractHex() common.Address {
	return common.HexToAddress(c.AppContract)
}

// PythContractHex returns the Pyth verifier address override as common.Address.
func (c *ChainConfig) PythContractHex() common.Address {
	return common.HexToAddress(c.PythContract)
}

// HermesConfig holds the Pyth Hermes oracle endpoint configuration.
type HermesConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	WSURL        string        `mapstructure:"ws_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	EnableStream bool          `mapstructure:"enable_stream"`
}

// PrepConfig holds transaction-preparation parameters.
type PrepConfig struct {
	FeeMarginPct   int64         `mapstructure:"fee_margin_pct"`   // fee safety margin, percent
	SlippagePct    int64         `mapstructure:"slippage_pct"`     // liquidity slippage tolerance, percent
	BuyWeiBuffer   int64         `mapstructure:"buy_wei_buffer"`   // flat wei buffer added to buy value
	FeedCacheTTL   time.Duration `mapstructure:"feed_cache_ttl"`   // nameToId resolution cache
	SnapshotMaxAge time.Duration `mapstructure:"snapshot_max_age"` // streamed price snapshot freshness bound
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TXPREP")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "TXPREP_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TXPREP_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TXPREP_LOG_LEVEL", "LOG_LEVEL")

	// Server
	v.BindEnv("server.listen_addr", "TXPREP_LISTEN_ADDR", "LISTEN_ADDR")

	// Chain
	v.BindEnv("chain.rpc_url", "TXPREP_RPC_URL", "RPC_URL")
	v.BindEnv("chain.chain_id", "TXPREP_CHAIN_ID", "CHAIN_ID")
	v.BindEnv("chain.app_contract", "TXPREP_APP_CONTRACT", "APP_CONTRACT")
	v.BindEnv("chain.pyth_contract", "TXPREP_PYTH_CONTRACT", "PYTH_CONTRACT")

	// Hermes
	v.BindEnv("hermes.base_url", "TXPREP_HERMES_URL", "HERMES_URL")
	v.BindEnv("hermes.ws_url", "TXPREP_HERMES_WS_URL", "HERMES_WS_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "TXPREP_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "TXPREP_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "TXPREP_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "txprep")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_per_minute", 300)

	// Flow EVM Testnet defaults
	v.SetDefault("chain.rpc_url", "https://testnet.evm.nodes.onflow.org")
	v.SetDefault("chain.chain_id", 545)
	v.SetDefault("chain.request_timeout", "10s")

	// Hermes defaults
	v.SetDefault("hermes.base_url", "https://hermes.pyth.network")
	v.SetDefault("hermes.ws_url", "wss://hermes.pyth.network/ws")
	v.SetDefault("hermes.timeout", "10s")
	v.SetDefault("hermes.enable_stream", false)

	// Preparation defaults
	v.SetDefault("prep.fee_margin_pct", 10)
	v.SetDefault("prep.slippage_pct", 2)
	v.SetDefault("prep.buy_wei_buffer", 100)
	v.SetDefault("prep.feed_cache_ttl", "30s")
	v.SetDefault("prep.snapshot_max_age", "15s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "txprep")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if !common.IsHexAddress(c.Chain.AppContract) {
		return fmt.Errorf("invalid chain.app_contract: %s", c.Chain.AppContract)
	}
	if c.Chain.PythContract != "" && !common.IsHexAddress(c.Chain.PythContract) {
		return fmt.Errorf("invalid chain.pyth_contract: %s", c.Chain.PythContract)
	}
	if c.Hermes.BaseURL == "" {
		return fmt.Errorf("hermes.base_url is required")
	}
	if c.Prep.FeeMarginPct < 0 || c.Prep.FeeMarginPct > 100 {
		return fmt.Errorf("prep.fee_margin_pct out of range: %d", c.Prep.FeeMarginPct)
	}
	if c.Prep.SlippagePct < 0 || c.Prep.SlippagePct > 100 {
		return fmt.Errorf("prep.slippage_pct out of range: %d", c.Prep.SlippagePct)
	}
	if c.Prep.BuyWeiBuffer < 0 {
		return fmt.Errorf("prep.buy_wei_buffer must be non-negative")
	}
	return nil
}
