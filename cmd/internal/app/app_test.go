package app

import (
	"context"
	"testing"

	"slotbook/cmd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:  "test",
		Port: "0",
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   ":memory:",
		},
		Index: config.IndexConfig{Backend: config.IndexChromem},
		LLM: config.LLMConfig{
			BaseURL:   "http://127.0.0.1:1/v1",
			Model:     "mixtral-8x7b-32768",
			MaxTokens: 500,
		},
		Embedding: config.EmbeddingConfig{
			BaseURL: "http://127.0.0.1:1/v1",
			Model:   "text-embedding-3-small",
		},
	}
}

func TestNew_WiresServices(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Appointments)
	require.NotNil(t, a.Suggestions)
	assert.Nil(t, a.Suggestions.Cache, "no cache without redis")

	appts, apierr := a.Appointments.GetAppointments(context.Background(), "")
	require.Nil(t, apierr)
	assert.Empty(t, appts)
}

func TestNew_RejectsUnknownIndexBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Index.Backend = "pinecone"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported index backend")
}

func TestNew_FailsOnUnreachableCache(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion cache")
}
