package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8081",
		ShutdownTimeout:    30 * time.Second,
		LogLevel:           "info",
		LogFormat:          "text",
		RateLimitPerMinute: 120,
		ChartWeekOrder:     WeekOrderSorted,
		MetricsEnabled:     true,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "first-seen week order",
			mutate:  func(c *Config) { c.ChartWeekOrder = WeekOrderFirstSeen },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			wantErr:     true,
			errorString: "invalid log level 'trace'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "rate limit too small",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1",
		},
		{
			name:        "invalid week order",
			mutate:      func(c *Config) { c.ChartWeekOrder = "random" },
			wantErr:     true,
			errorString: "invalid chart week order 'random'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "x"
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Fatalf("expected two problems, got %q", err.Error())
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "RATE_LIMIT_PER_MINUTE", "CHART_WEEK_ORDER", "METRICS_ENABLED"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()
		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
			t.Errorf("Load() log = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}
		if cfg.ChartWeekOrder != WeekOrderSorted || !cfg.MetricsEnabled {
			t.Errorf("Load() chart/metrics = %s/%v", cfg.ChartWeekOrder, cfg.MetricsEnabled)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults must validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
		t.Setenv("CHART_WEEK_ORDER", "first-seen")
		t.Setenv("METRICS_ENABLED", "false")
		t.Setenv("SHUTDOWN_TIMEOUT", "10s")

		cfg := Load()
		if cfg.Port != "9090" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("unexpected cfg %+v", cfg)
		}
		if cfg.RateLimitPerMinute != 30 || cfg.ChartWeekOrder != WeekOrderFirstSeen || cfg.MetricsEnabled {
			t.Errorf("unexpected cfg %+v", cfg)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "many")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		t.Setenv("METRICS_ENABLED", "perhaps")

		cfg := Load()
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120 (default for invalid input)", cfg.RateLimitPerMinute)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
		if !cfg.MetricsEnabled {
			t.Errorf("Load() MetricsEnabled = false, want true (default for invalid input)")
		}
	})
}
