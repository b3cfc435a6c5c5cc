package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AppPort:            8080,
		LogLevel:           "info",
		LogFormat:          "json",
		MongoURI:           "mongodb://localhost:27017",
		MongoDBName:        "inkwell",
		JWTSecret:          "test-jwt-secret-key-with-32-plus-characters",
		JWTAlgorithm:       "HS256",
		AccessTokenMinutes: 15,
		BcryptCost:         12,
		SignInRatePerMin:   5,
		AIRatePerMin:       10,
		NotesCipherSecret:  "test-cipher-secret",
		AIBaseURL:          "http://localhost:1234",
		AIModel:            "test-model",
		OCRBaseURL:         "http://localhost:9090",
		OCRLang:            "eng",
		WSMaxSessionSec:    900,
		WSOutboxBuffer:     256,
	}
}

func TestLoadDefaults(t *testing.T) {
	ResetCache()
	t.Cleanup(ResetCache)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "inkwell", cfg.MongoDBName)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 15, cfg.AccessTokenMinutes)
	assert.Equal(t, "eng", cfg.OCRLang)
	assert.True(t, cfg.RouteMetricsEnabled)
}

func TestLoadIsCached(t *testing.T) {
	ResetCache()
	t.Cleanup(ResetCache)

	first, err := Load()
	require.NoError(t, err)

	t.Setenv("APP_PORT", "9999")

	second, err := Load()
	require.NoError(t, err)
	assert.Equal(t, first.AppPort, second.AppPort)
}

func TestLoadEnvOverride(t *testing.T) {
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("APP_PORT", "3000")
	t.Setenv("MONGO_DB_NAME", "inkwell_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.AppPort)
	assert.Equal(t, "inkwell_test", cfg.MongoDBName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.AppPort = 0 }, "APP_PORT"},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, "LOG_LEVEL"},
		{"empty mongo uri", func(c *Config) { c.MongoURI = "" }, "MONGO_URI"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "32 characters"},
		{"bad algorithm", func(c *Config) { c.JWTAlgorithm = "RS512" }, "JWT_ALGORITHM"},
		{"bad bcrypt cost", func(c *Config) { c.BcryptCost = 4 }, "BCRYPT_COST"},
		{"empty cipher secret", func(c *Config) { c.NotesCipherSecret = "" }, "NOTES_CIPHER_SECRET"},
		{"empty ai base url", func(c *Config) { c.AIBaseURL = "" }, "AI_BASE_URL"},
		{"empty ocr base url", func(c *Config) { c.OCRBaseURL = "" }, "OCR_BASE_URL"},
		{"zero ws buffer", func(c *Config) { c.WSOutboxBuffer = 0 }, "WS_OUTBOX_BUFFER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}
