package massive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
)

// Client handles communication with the Massive options snapshot API. It is
// the only place Massive is called from: every request passes the in-process
// token bucket and the circuit breaker before going on the wire.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	limit      int

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new Massive API client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("massive"),
		apiKey:     cfg.Massive.APIKey,
		baseURL:    cfg.Massive.BaseURL,
		limit:      cfg.Massive.Limit,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Massive.RatePerSec), cfg.Massive.Burst),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "massive",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return c
}

// IsBreakerOpen reports whether the circuit breaker is refusing requests.
func (c *Client) IsBreakerOpen() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

// FetchChain fetches the options-chain snapshot for one underlying and maps
// it to OptionContract rows. Rows without a ticker or a parseable expiry are
// skipped; everything else is the engine's problem.
func (c *Client) FetchChain(ctx context.Context, underlying string) ([]contracts.OptionContract, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("massive: rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v3/snapshot/options/%s?limit=%d&apiKey=%s",
		c.baseURL, url.PathEscape(underlying), c.limit, url.QueryEscape(c.apiKey))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchSnapshot(ctx, reqURL)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("massive: %w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("massive: fetch chain for %s: %w", underlying, err)
	}

	resp := result.(*snapshotResponse)
	chain := mapRows(resp.Results)

	c.logger.WithFields(map[string]interface{}{
		"underlying": underlying,
		"raw_rows":   len(resp.Results),
		"mapped":     len(chain),
	}).Debug("Fetched options chain")

	return chain, nil
}

// fetchSnapshot performs the HTTP exchange and decodes the envelope.
func (c *Client) fetchSnapshot(ctx context.Context, reqURL string) (*snapshotResponse, error) {
	httpResp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(body))
	}

	var resp snapshotResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.Status != "" && resp.Status != "OK" {
		return nil, fmt.Errorf("api status %q: %s", resp.Status, resp.Message)
	}

	return &resp, nil
}
