package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "CORS_ORIGINS", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "TIMEZONE",
	"AMQP_URL", "AMQP_EXCHANGE", "CLOUDINARY_URL", "CLOUDINARY_FOLDER", "LOG_LEVEL",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func validConfig(t *testing.T) Config {
	return Config{
		Port:         "8080",
		DBPath:       filepath.Join(t.TempDir(), "natiapp.db"),
		JWTSecret:    "0123456789abcdef",
		TokenTTL:     time.Hour,
		Timezone:     "America/Bogota",
		AMQPExchange: "natiapp",
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port: expected 8080, got %s", cfg.Port)
	}
	if cfg.Timezone != "America/Bogota" {
		t.Errorf("timezone: expected America/Bogota, got %s", cfg.Timezone)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("token TTL: expected 24h, got %v", cfg.TokenTTL)
	}
	if cfg.AMQPURL != "" || cfg.CloudinaryURL != "" {
		t.Error("expected optional integrations to be disabled by default")
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("expected one default CORS origin, got %v", cfg.CORSOrigins)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), "test.env")
	content := strings.Join([]string{
		"PORT=7070",
		"JWT_SECRET=from-file-secret-value",
		"TOKEN_TTL=2h",
		"CORS_ORIGINS=https://natiapp.co, http://localhost:3000 ,",
		"TIMEZONE=UTC",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected environment to win over file, got port %s", cfg.Port)
	}
	if cfg.JWTSecret != "from-file-secret-value" {
		t.Errorf("unexpected secret %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("token TTL: expected 2h, got %v", cfg.TokenTTL)
	}
	want := []string{"https://natiapp.co", "http://localhost:3000"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORS origins: expected %v, got %v", want, cfg.CORSOrigins)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Errorf("CORS origin %d: expected %s, got %s", i, want[i], cfg.CORSOrigins[i])
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		errorString string
	}{
		{name: "valid config", modify: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			modify:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			modify:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "short secret",
			modify:      func(c *Config) { c.JWTSecret = "short" },
			errorString: "JWT_SECRET must be at least 16 characters",
		},
		{
			name:        "unknown timezone",
			modify:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "bad AMQP scheme",
			modify:      func(c *Config) { c.AMQPURL = "http://localhost:5672" },
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "bad Cloudinary URL",
			modify:      func(c *Config) { c.CloudinaryURL = "https://api.cloudinary.com" },
			errorString: "invalid Cloudinary URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("expected error containing %q, got %q", tt.errorString, err.Error())
			}
		})
	}
}

func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "0"
	cfg.JWTSecret = ""
	cfg.TokenTTL = time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if n := strings.Count(err.Error(), "\n- "); n != 3 {
		t.Errorf("expected 3 problems, got %d: %s", n, err)
	}
}
