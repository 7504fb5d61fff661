package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/causewayd/internal/config"
	"github.com/fyrsmithlabs/causewayd/internal/llm"
)

func TestInitStore(t *testing.T) {
	t.Run("unconfigured store is a noop", func(t *testing.T) {
		cfg := &config.Config{}
		s, err := initStore(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, s.Enabled())
	})

	t.Run("configured store is a real client", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Store.BaseURL = "https://rows.example"
		cfg.Store.ServiceKey = "key"
		cfg.Store.Timeout = 5 * time.Second

		s, err := initStore(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.True(t, s.Enabled())
	})

	t.Run("configured store requires a key", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Store.BaseURL = "https://rows.example"

		_, err := initStore(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestInitConfessionChat(t *testing.T) {
	primary, err := llm.NewClient(llm.Config{
		APIKey:  "k",
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	})
	require.NoError(t, err)

	t.Run("without a key the main client serves confessions", func(t *testing.T) {
		cfg := &config.Config{}
		chat, err := initConfessionChat(cfg, primary, zap.NewNop())
		require.NoError(t, err)
		assert.Same(t, llm.Chatter(primary), chat)
	})

	t.Run("with a key a fallback pair is built", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Confession.APIKey = "sk-conf"
		cfg.Confession.BaseURL = "https://api.openai.com"
		cfg.Confession.PrimaryModel = "gpt-5-nano"
		cfg.Confession.FallbackModel = "gpt-4o-mini"

		chat, err := initConfessionChat(cfg, primary, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &llm.Fallback{}, chat)
	})
}
