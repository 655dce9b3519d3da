// Package config provides configuration loading and validation.
package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EngineConfig holds swap-engine protocol settings.
type EngineConfig struct {
	ChainID              uint64  `mapstructure:"chain_id"`
	Owner                string  `mapstructure:"owner"`
	ProtocolFee          float64 `mapstructure:"protocol_fee"`
	ProtocolFeeRecipient string  `mapstructure:"protocol_fee_recipient"`
	RouterAddress        string  `mapstructure:"router_address"`
}

// OwnerHex returns the protocol owner as common.Address.
func (c *EngineConfig) OwnerHex() common.Address {
	return common.HexToAddress(c.Owner)
}

// ProtocolFeeRecipientHex returns the fee recipient as common.Address.
func (c *EngineConfig) ProtocolFeeRecipientHex() common.Address {
	return common.HexToAddress(c.ProtocolFeeRecipient)
}

// RouterAddressHex returns the router account as common.Address.
func (c *EngineConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// ProtocolFeeDecimal returns the protocol fee as decimal.Decimal.
func (c *EngineConfig) ProtocolFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ProtocolFee)
}

// FeedConfig holds the websocket event feed settings.
type FeedConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	Port             int  `mapstructure:"port"`
	EventsPerMinute  int  `mapstructure:"events_per_minute"`
	ClientBufferSize int  `mapstructure:"client_buffer_size"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
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
	v.SetEnvPrefix("AMM")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
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
	v.BindEnv("app.name", "AMM_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "AMM_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "AMM_LOG_LEVEL", "LOG_LEVEL")

	// Engine
	v.BindEnv("engine.chain_id", "AMM_CHAIN_ID")
	v.BindEnv("engine.owner", "AMM_OWNER")
	v.BindEnv("engine.protocol_fee", "AMM_PROTOCOL_FEE")
	v.BindEnv("engine.protocol_fee_recipient", "AMM_PROTOCOL_FEE_RECIPIENT")
	v.BindEnv("engine.router_address", "AMM_ROUTER_ADDRESS")

	// Feed
	v.BindEnv("feed.enabled", "AMM_FEED_ENABLED")
	v.BindEnv("feed.port", "AMM_FEED_PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "AMM_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "AMM_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "AMM_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "nftswap-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Engine defaults
	v.SetDefault("engine.chain_id", 1)
	v.SetDefault("engine.owner", "0x00000000000000000000000000000000000000a1")
	v.SetDefault("engine.protocol_fee", 0.005) // 0.5%
	v.SetDefault("engine.protocol_fee_recipient", "0x00000000000000000000000000000000000000fe")
	v.SetDefault("engine.router_address", "0x00000000000000000000000000000000000000e1")

	// Feed defaults
	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.port", 8081)
	v.SetDefault("feed.events_per_minute", 600)
	v.SetDefault("feed.client_buffer_size", 64)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "nftswap-engine")
	v.SetDefault("telemetry.trace_provider", "EMPTY_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8082)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.ProtocolFee < 0 || c.Engine.ProtocolFee > 0.1 {
		return fmt.Errorf("engine.protocol_fee must be in [0, 0.1], got %v", c.Engine.ProtocolFee)
	}
	if !common.IsHexAddress(c.Engine.Owner) {
		return fmt.Errorf("invalid engine.owner: %s", c.Engine.Owner)
	}
	if !common.IsHexAddress(c.Engine.ProtocolFeeRecipient) {
		return fmt.Errorf("invalid engine.protocol_fee_recipient: %s", c.Engine.ProtocolFeeRecipient)
	}
	if !common.IsHexAddress(c.Engine.RouterAddress) {
		return fmt.Errorf("invalid engine.router_address: %s", c.Engine.RouterAddress)
	}
	if c.Feed.Enabled && (c.Feed.Port <= 0 || c.Feed.Port > 65535) {
		return fmt.Errorf("invalid feed.port: %d", c.Feed.Port)
	}
	return nil
}
