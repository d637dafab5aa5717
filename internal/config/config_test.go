package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "DATABASE_NAME", "SMTP_PORT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "ti2project", cfg.DatabaseName)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_SECRET", "secret-from-env")

	cfg := LoadConfig()
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "secret-from-env", cfg.JWTSecret)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SMTP_PORT", "2525")
	assert.Equal(t, 2525, getEnvInt("SMTP_PORT", 587))

	t.Setenv("SMTP_PORT", "not-a-number")
	assert.Equal(t, 587, getEnvInt("SMTP_PORT", 587))
}
