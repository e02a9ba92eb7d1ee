package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.GRPCPort != Default().Server.GRPCPort {
		t.Errorf("port = %d, want default %d", cfg.Server.GRPCPort, Default().Server.GRPCPort)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kestrel.yaml")
	body := `
server:
  grpc_port: 6000
derivatives:
  ema_alpha: 0.25
  funding_cap: 0.002
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.GRPCPort != 6000 {
		t.Errorf("port = %d, want 6000", cfg.Server.GRPCPort)
	}
	if cfg.Derivatives.EmaAlpha != 0.25 {
		t.Errorf("alpha = %f, want 0.25", cfg.Derivatives.EmaAlpha)
	}
	// untouched keys keep their defaults
	if cfg.Derivatives.MaintenanceMargin != 0.005 {
		t.Errorf("maintenance = %f, want default", cfg.Derivatives.MaintenanceMargin)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("KESTREL_GRPC_PORT", "7123")
	t.Setenv("KESTREL_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.GRPCPort != 7123 {
		t.Errorf("port = %d, want env override 7123", cfg.Server.GRPCPort)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %s, want debug", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha above one", func(c *Config) { c.Derivatives.EmaAlpha = 1.5 }},
		{"inverted price bounds", func(c *Config) { c.Engine.MaxPrice = 0 }},
		{"negative funding cap", func(c *Config) { c.Derivatives.FundingCap = -1 }},
		{"initial below maintenance", func(c *Config) { c.Derivatives.InitialMargin = 0.001 }},
		{"zero max leverage", func(c *Config) { c.Derivatives.MaxLeverage = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
