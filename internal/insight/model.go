package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
)

// systemPrompt is fixed so two runs over the same digest stay comparable.
const systemPrompt = "You are an options-flow analyst. Given a ranked digest of option contracts, " +
	"write a concise two-to-three sentence insight about what the activity suggests. " +
	"Mention the leading contract by symbol. Do not give financial advice."

// ModelExplainer asks an OpenAI-compatible chat-completions endpoint for
// prose. The engine's digest is the entire user content; the model never
// sees raw snapshot data.
type ModelExplainer struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	model      string
}

// NewModelExplainer creates a model-backed explainer from config.
func NewModelExplainer(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *ModelExplainer {
	return &ModelExplainer{
		httpClient: httpClient,
		logger:     log.WithComponent("insight"),
		apiKey:     cfg.Insight.APIKey,
		baseURL:    cfg.Insight.BaseURL,
		model:      cfg.Insight.Model,
	}
}

// Provider names the implementation for logs and metrics labels.
func (e *ModelExplainer) Provider() string {
	return "model"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Explain sends the digest to the chat-completions endpoint and returns the
// first choice verbatim.
func (e *ModelExplainer) Explain(ctx context.Context, underlying string, result *contracts.RankedResult) (string, error) {
	payload := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Underlying: %s\n\n%s", underlying, result.Digest)},
		},
	}

	resp, err := e.httpClient.PostJSON(ctx, e.baseURL+"/chat/completions", payload, map[string]string{
		"Authorization": "Bearer " + e.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("insight: chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("insight: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("insight: decode response: %w", err)
	}

	if out.Error != nil {
		return "", fmt.Errorf("insight: provider error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("insight: empty choices in response")
	}

	e.logger.WithFields(map[string]interface{}{
		"underlying": underlying,
		"model":      e.model,
	}).Debug("Generated model insight")

	return out.Choices[0].Message.Content, nil
}

// New builds the configured Explainer. Unknown providers are rejected at
// config validation, so this only sees "template" or "model".
func New(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) contracts.Explainer {
	if cfg.Insight.Provider == "model" {
		return NewModelExplainer(cfg, httpClient, log)
	}
	return NewTemplateExplainer()
}
