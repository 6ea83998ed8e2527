package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Database.SSLMode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Database.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("Database.ConnMaxLifetime = %v, want 5m", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Simulation.IrradianceWm2 != 1000 {
		t.Errorf("Simulation.IrradianceWm2 = %v, want 1000", cfg.Simulation.IrradianceWm2)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PVCYCLE_SERVER_PORT", "9090")
	t.Setenv("PVCYCLE_DATABASE_HOST", "db.internal")
	t.Setenv("PVCYCLE_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad server port", func(c *Config) { c.Server.Port = 0 }},
		{"empty database host", func(c *Config) { c.Database.Host = "" }},
		{"empty database name", func(c *Config) { c.Database.Database = "" }},
		{"zero open conns", func(c *Config) { c.Database.MaxOpenConns = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"negative workers", func(c *Config) { c.Simulation.MaxWorkers = -1 }},
		{"negative run timeout", func(c *Config) { c.Simulation.RunTimeout = -time.Second }},
		{"zero irradiance", func(c *Config) { c.Simulation.IrradianceWm2 = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() returned nil error")
			}
		})
	}
}
