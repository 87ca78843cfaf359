package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"groq-relay/internal/config"
	"groq-relay/internal/integrations/groq"
	"groq-relay/internal/usecase"
)

func TestNewLogger_JSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.Config{LogLevel: slog.LevelWarn})

	logger.Info("dropped")
	logger.Warn("kept", "err", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "boom", line["err"])
}

func TestKeySource_StaticKeyWarnsWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	keys, err := keySource(context.Background(), config.Config{}, NewLogger(&buf, config.Config{}))
	require.NoError(t, err)
	require.Equal(t, groq.StaticKey(""), keys)
	require.Contains(t, buf.String(), "GROQ_API_KEY is not set")
}

func TestNewRelayService_UsesConfiguredUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`))
	}))
	defer upstream.Close()

	cfg := config.Config{APIKey: "gsk-test", Model: "llama3-8b-8192", BaseURL: upstream.URL + "/v1"}
	svc, err := NewRelayService(context.Background(), cfg, NewLogger(&bytes.Buffer{}, cfg))
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), usecase.ChatInput{Message: "ping"})
	require.NoError(t, err)
	require.Equal(t, "pong", out.Response)
	require.Equal(t, "llama3-8b-8192", out.Model)
}
