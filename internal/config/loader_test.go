package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")

		cfg, err := Load(writeConfigFile(t, ""))
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 60*time.Second, cfg.Server.AnalyzeTimeout)
		assert.Equal(t, "https://api.deepseek.com", cfg.LLM.BaseURL)
		assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
		assert.Equal(t, "gpt-5-nano", cfg.Confession.PrimaryModel)
		assert.Equal(t, "gpt-4o-mini", cfg.Confession.FallbackModel)
		assert.Equal(t, time.Hour, cfg.ObjectStore.SignedURLTTL)
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")

		path := writeConfigFile(t, "server:\n  port: 8081\nllm:\n  model: deepseek-reasoner\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, "deepseek-reasoner", cfg.LLM.Model)
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")
		t.Setenv("SERVER_PORT", "8082")

		path := writeConfigFile(t, "server:\n  port: 8081\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8082, cfg.Server.Port)
	})

	t.Run("missing llm api key fails validation", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "")

		_, err := Load(writeConfigFile(t, ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm api_key is required")
	})

	t.Run("rejects world-readable config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insecure config file permissions")
	})

	t.Run("identical confession models rejected", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")

		path := writeConfigFile(t, "confession:\n  primary_model: gpt-4o-mini\n  fallback_model: gpt-4o-mini\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must differ")
	})
}
