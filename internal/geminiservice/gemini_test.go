package geminiservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FitPlanPro/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.GeminiConfig{
		APIKey:    "test-key",
		Model:     "gemini-test",
		BaseURL:   srv.URL + "/v1beta/",
		Transport: config.TransportREST,
		Timeout:   2 * time.Second,
	}
	return NewRESTClient(cfg, "be brief", testLogger())
}

func TestGenerateTextSuccess(t *testing.T) {
	var got GeminiPayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"| Day |"},{"text":" Monday |"}]},"finishReason":"STOP"}]}`))
	})

	text, err := client.GenerateText(context.Background(), "make a plan")
	require.NoError(t, err)
	assert.Equal(t, "| Day | Monday |", text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "make a plan", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
}

func TestGenerateTextNon200IsNotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	})

	_, err := client.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.NotContains(t, err.Error(), "quota", "upstream body stays out of the error")
	assert.Equal(t, 1, calls)
}

func TestGenerateTextEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateTextBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := client.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrBlocked)
	assert.True(t, strings.Contains(err.Error(), "SAFETY"))
}

func TestGenerateTextMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestGenerateTextHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateText(ctx, "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewFromConfigWithoutKey(t *testing.T) {
	gen, err := NewFromConfig(context.Background(), config.GeminiConfig{Model: "gemini-test"}, "", testLogger())
	require.NoError(t, err)

	_, err = gen.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, "none", gen.Describe()["transport"])
}

func TestNewFromConfigREST(t *testing.T) {
	cfg := config.Default().Gemini
	cfg.APIKey = "k"

	gen, err := NewFromConfig(context.Background(), cfg, "system", testLogger())
	require.NoError(t, err)

	_, ok := gen.(*RESTClient)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"transport": "rest", "model": cfg.Model}, gen.Describe())
}
