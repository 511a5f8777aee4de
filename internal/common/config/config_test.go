package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "FEED_PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "JOURNAL_DB_PATH", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "3001", cfg.FeedPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10, cfg.ReadTimeout)
	assert.Equal(t, "data/db/journal.db", cfg.JournalDBPath)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("READ_TIMEOUT", "30")
	t.Setenv("WRITE_TIMEOUT", "soon")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://plans.example.com,,")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.WriteTimeout, "unparsable value falls back to default")
	assert.Equal(t, []string{"http://localhost:5173", "https://plans.example.com"}, cfg.CORSOrigins)
}
