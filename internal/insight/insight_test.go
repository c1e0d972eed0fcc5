package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/internal/engine"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
)

func rankedFixture(t *testing.T) *contracts.RankedResult {
	t.Helper()
	expiry := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	batch := []contracts.OptionContract{
		{Symbol: "O:SPY260918C00650000", Expiry: expiry, Strike: 650, Type: contracts.Call,
			Volume: 81188, OpenInterest: 2908, IV: 0.09, Delta: 0.69, Premium: 1.88},
		{Symbol: "O:SPY260918C00660000", Expiry: expiry, Strike: 660, Type: contracts.Call,
			Volume: 1200, OpenInterest: 400, IV: 0.11, Delta: 0.55, Premium: 1.10},
	}

	result, err := engine.RankTopContracts(batch, 2)
	require.NoError(t, err)
	return result
}

func TestTemplateExplainerDeterministic(t *testing.T) {
	e := NewTemplateExplainer()
	result := rankedFixture(t)

	first, err := e.Explain(context.Background(), "SPY", result)
	require.NoError(t, err)
	second, err := e.Explain(context.Background(), "SPY", result)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "SPY")
	assert.Contains(t, first, "O:SPY260918C00650000")
	assert.Contains(t, first, "81188 contracts traded")
	assert.Contains(t, first, "Also ranked: O:SPY260918C00660000.")
	// 81188 volume against 2908 OI crosses the surge callout threshold.
	assert.Contains(t, first, "volume surge")
}

func TestTemplateExplainerEmptyResult(t *testing.T) {
	e := NewTemplateExplainer()

	out, err := e.Explain(context.Background(), "SPY", &contracts.RankedResult{})
	require.NoError(t, err)
	assert.Equal(t, "No option contracts stood out for SPY in this snapshot.", out)
}

func TestModelExplainer(t *testing.T) {
	result := rankedFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		// The digest travels verbatim as the user content.
		assert.Contains(t, req.Messages[1].Content, result.Digest)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Call buyers dominate."}},
			},
		})
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Insight: config.InsightConfig{
			Provider: "model",
			APIKey:   "sk-test",
			BaseURL:  server.URL,
			Model:    "gpt-4o-mini",
		},
	}
	log := logger.New(cfg)
	e := NewModelExplainer(cfg, httputil.New(cfg, log).DisableRetry(), log)

	out, err := e.Explain(context.Background(), "SPY", result)
	require.NoError(t, err)
	assert.Equal(t, "Call buyers dominate.", out)
}

func TestModelExplainerProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Insight:  config.InsightConfig{Provider: "model", APIKey: "sk-test", BaseURL: server.URL},
	}
	log := logger.New(cfg)
	e := NewModelExplainer(cfg, httputil.New(cfg, log).DisableRetry(), log)

	_, err := e.Explain(context.Background(), "SPY", rankedFixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.New(cfg)
	client := httputil.New(cfg, log)

	cfg.Insight.Provider = "template"
	assert.Equal(t, "template", New(cfg, client, log).Provider())

	cfg.Insight.Provider = "model"
	assert.Equal(t, "model", New(cfg, client, log).Provider())
}
