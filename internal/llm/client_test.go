package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "deepseek-chat",
		RateLimit: 1000, // no throttling in tests
		Burst:     1000,
	})
	require.NoError(t, err)
	return client
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestNewClient(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewClient(Config{BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"})
		assert.Error(t, err)
	})

	t.Run("requires model", func(t *testing.T) {
		_, err := NewClient(Config{APIKey: "k", BaseURL: "https://api.deepseek.com"})
		assert.Error(t, err)
	})
}

func TestClientChat(t *testing.T) {
	t.Run("returns assistant content", func(t *testing.T) {
		var gotReq chatRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(completionBody(`{"actor":"ACTOR_TRASH"}`)))
		})

		content, err := client.Chat(context.Background(), Request{
			Messages:    []Message{{Role: "user", Content: "asdasd"}},
			Temperature: 0.1,
			JSONMode:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"actor":"ACTOR_TRASH"}`, content)
		assert.Equal(t, "deepseek-chat", gotReq.Model)
		require.NotNil(t, gotReq.ResponseFormat)
		assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	})

	t.Run("model override", func(t *testing.T) {
		var gotReq chatRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Write([]byte(completionBody("ok")))
		})

		_, err := client.Chat(context.Background(), Request{
			Model:    "deepseek-reasoner",
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "deepseek-reasoner", gotReq.Model)
	})

	t.Run("server error is retryable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Chat(context.Background(), Request{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, IsRetryable(err))
	})

	t.Run("client error is not retryable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"invalid model"}}`))
		})

		_, err := client.Chat(context.Background(), Request{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		require.Error(t, err)
		assert.False(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "invalid model")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		})

		_, err := client.Chat(context.Background(), Request{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})
}

type scriptedChatter struct {
	content string
	err     error
	calls   int
}

func (s *scriptedChatter) Chat(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.content, s.err
}

func TestFallback(t *testing.T) {
	t.Run("primary success skips fallback", func(t *testing.T) {
		primary := &scriptedChatter{content: "primary"}
		fallback := &scriptedChatter{content: "fallback"}

		f := NewFallback(primary, fallback, zap.NewNop())
		content, err := f.Chat(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "primary", content)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("primary failure triggers exactly one fallback attempt", func(t *testing.T) {
		primary := &scriptedChatter{err: errors.New("model unavailable")}
		fallback := &scriptedChatter{content: "fallback"}

		f := NewFallback(primary, fallback, zap.NewNop())
		content, err := f.Chat(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", content)
		assert.Equal(t, 1, primary.calls)
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("both failing surfaces fallback error", func(t *testing.T) {
		primary := &scriptedChatter{err: errors.New("primary down")}
		fallback := &scriptedChatter{err: errors.New("fallback down")}

		f := NewFallback(primary, fallback, zap.NewNop())
		_, err := f.Chat(context.Background(), Request{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallback down")
	})
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
	assert.Equal(t, "", StripFences("```"))
}
