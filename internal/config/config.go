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
	App        AppConfig        `mapstructure:"app"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Swap       SwapConfig       `mapstructure:"swap"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds node configuration. PrivateKey is the hex-encoded
// signing key for the trading account; leave it unset to run quote-only.
type EthereumConfig struct {
	HTTPURL    string `mapstructure:"http_url"`
	ChainID    uint64 `mapstructure:"chain_id"`
	PrivateKey string `mapstructure:"private_key"`
}

// AggregatorConfig holds price-aggregation provider configuration.
type AggregatorConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Partner        string        `mapstructure:"partner"`
	IncludeDEXs    string        `mapstructure:"include_dexs"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestsPerMin int           `mapstructure:"requests_per_min"`
}

// SwapConfig holds trade execution configuration.
type SwapConfig struct {
	SlippageBps    int64  `mapstructure:"slippage_bps"`
	MaxImpactBps   int64  `mapstructure:"max_impact_bps"`
	ExpertMode     bool   `mapstructure:"expert_mode"`
	SpenderAddress string `mapstructure:"spender_address"`
}

// SpenderAddressHex returns the approval spender as common.Address.
func (c *SwapConfig) SpenderAddressHex() common.Address {
	return common.HexToAddress(c.SpenderAddress)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SWAP")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
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
	v.BindEnv("app.name", "SWAP_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SWAP_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SWAP_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "SWAP_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "SWAP_ETH_CHAIN_ID", "ETH_CHAIN_ID")
	v.BindEnv("ethereum.private_key", "SWAP_ETH_PRIVATE_KEY", "ETH_PRIVATE_KEY")

	// Aggregator
	v.BindEnv("aggregator.base_url", "SWAP_AGGREGATOR_URL")
	v.BindEnv("aggregator.partner", "SWAP_AGGREGATOR_PARTNER")
	v.BindEnv("aggregator.include_dexs", "SWAP_AGGREGATOR_INCLUDE_DEXS")

	// Swap
	v.BindEnv("swap.slippage_bps", "SWAP_SLIPPAGE_BPS")
	v.BindEnv("swap.max_impact_bps", "SWAP_MAX_IMPACT_BPS")
	v.BindEnv("swap.expert_mode", "SWAP_EXPERT_MODE")
	v.BindEnv("swap.spender_address", "SWAP_SPENDER_ADDRESS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SWAP_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SWAP_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SWAP_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "swapengine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults (Polygon mainnet)
	v.SetDefault("ethereum.chain_id", 137)

	// Aggregator defaults
	v.SetDefault("aggregator.base_url", "https://apiv5.paraswap.io")
	v.SetDefault("aggregator.partner", "swapengine")
	v.SetDefault("aggregator.include_dexs", "")
	v.SetDefault("aggregator.poll_interval", "1s")
	v.SetDefault("aggregator.request_timeout", "10s")
	v.SetDefault("aggregator.requests_per_min", 120)

	// Swap defaults: 50 bps slippage, 3% impact ceiling outside expert mode.
	v.SetDefault("swap.slippage_bps", 50)
	v.SetDefault("swap.max_impact_bps", 300)
	v.SetDefault("swap.expert_mode", false)
	// Paraswap TokenTransferProxy on Polygon
	v.SetDefault("swap.spender_address", "0x216B4B4Ba9F3e719726886d34a177484278Bfcae")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "swapengine")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if c.Aggregator.BaseURL == "" {
		return fmt.Errorf("aggregator.base_url is required")
	}
	if c.Aggregator.PollInterval <= 0 {
		return fmt.Errorf("aggregator.poll_interval must be positive")
	}
	if c.Swap.SlippageBps < 0 {
		return fmt.Errorf("swap.slippage_bps cannot be negative")
	}
	if !common.IsHexAddress(c.Swap.SpenderAddress) {
		return fmt.Errorf("invalid swap.spender_address: %s", c.Swap.SpenderAddress)
	}
	return nil
}
