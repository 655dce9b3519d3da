package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "nftswap-engine" {
		t.Errorf("app.name = %s, want nftswap-engine", cfg.App.Name)
	}
	if cfg.Engine.ChainID != 1 {
		t.Errorf("engine.chain_id = %d, want 1", cfg.Engine.ChainID)
	}
	if cfg.Engine.ProtocolFee != 0.005 {
		t.Errorf("engine.protocol_fee = %v, want 0.005", cfg.Engine.ProtocolFee)
	}
	if cfg.Feed.Port != 8081 {
		t.Errorf("feed.port = %d, want 8081", cfg.Feed.Port)
	}
	if cfg.Telemetry.TraceProvider != "EMPTY_PROVIDER" {
		t.Errorf("telemetry.trace_provider = %s, want EMPTY_PROVIDER", cfg.Telemetry.TraceProvider)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AMM_PROTOCOL_FEE", "0.02")
	t.Setenv("AMM_FEED_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.ProtocolFee != 0.02 {
		t.Errorf("engine.protocol_fee = %v, want 0.02", cfg.Engine.ProtocolFee)
	}
	if !cfg.Feed.Enabled {
		t.Error("feed.enabled should be true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Engine: EngineConfig{
				ChainID:              1,
				Owner:                "0x00000000000000000000000000000000000000a1",
				ProtocolFee:          0.005,
				ProtocolFeeRecipient: "0x00000000000000000000000000000000000000fe",
				RouterAddress:        "0x00000000000000000000000000000000000000e1",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"fee too high", func(c *Config) { c.Engine.ProtocolFee = 0.5 }, true},
		{"fee negative", func(c *Config) { c.Engine.ProtocolFee = -0.01 }, true},
		{"bad owner", func(c *Config) { c.Engine.Owner = "not-an-address" }, true},
		{"bad router", func(c *Config) { c.Engine.RouterAddress = "0x123" }, true},
		{"feed enabled bad port", func(c *Config) { c.Feed.Enabled = true; c.Feed.Port = 0 }, true},
		{"feed disabled bad port", func(c *Config) { c.Feed.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
