package movers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

// Mover is one row of the most-active underlyings table.
type Mover struct {
	Rank   int    `json:"rank"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Volume int64  `json:"volume"`
}

// Cache is the slice of the redis cache the client uses.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Client scrapes the most-active underlyings page. The page is plain HTML;
// rows live in the first table with a symbol cell per row.
type Client struct {
	httpClient *httputil.Client
	cache      Cache
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new movers client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("movers"),
		baseURL:    cfg.Movers.BaseURL,
	}
}

// WithCache caches the scraped table per day. The most-active page changes
// slowly; one scrape per cache window is plenty.
func (c *Client) WithCache(cache Cache) *Client {
	c.cache = cache
	return c
}

var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

// MostActive returns up to limit movers in page order. limit <= 0 means no
// cap. The full table is loaded through the cache and truncated afterwards,
// so callers with different limits share one scrape.
func (c *Client) MostActive(ctx context.Context, limit int) ([]Mover, error) {
	rows, err := c.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// loadTable fetches and parses the whole most-active table, consulting the
// day-keyed cache first.
func (c *Client) loadTable(ctx context.Context) ([]Mover, error) {
	cacheKey := redis.MoversKey(time.Now().UTC().Format("2006-01-02"))

	if c.cache != nil {
		var cached []Mover
		found, err := c.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			c.logger.WithError(err).Warn("Movers cache read failed")
		}
		if found && len(cached) > 0 {
			return cached, nil
		}
	}

	pageURL := c.baseURL + "/markets/most-active"

	resp, err := c.httpClient.GetWithHeaders(ctx, pageURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("movers: fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("movers: unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("movers: parse page: %w", err)
	}

	out := parseMoversTable(doc, 0)
	if len(out) == 0 {
		return nil, fmt.Errorf("movers: no rows found in most-active table")
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, out, redis.TTLMovers); err != nil {
			c.logger.WithError(err).Warn("Movers cache write failed")
		}
	}

	c.logger.WithField("count", len(out)).Debug("Fetched most-active underlyings")
	return out, nil
}

// parseMoversTable extracts movers from the document. Rows whose first cell
// does not look like a ticker are skipped (header rows, ads, separators).
func parseMoversTable(doc *goquery.Document, limit int) []Mover {
	var out []Mover

	doc.Find("table tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}

		symbol := strings.ToUpper(strings.TrimSpace(cells.Eq(0).Text()))
		if !symbolRe.MatchString(symbol) {
			return true
		}

		out = append(out, Mover{
			Rank:   len(out) + 1,
			Symbol: symbol,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
			Volume: parseVolume(cells.Eq(2).Text()),
		})

		return limit <= 0 || len(out) < limit
	})

	return out
}

// parseVolume parses a human-formatted share count ("81,188", "1.2M").
func parseVolume(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "B"):
		mult = 1_000_000_000
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1_000
		s = strings.TrimSuffix(s, "K")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f * float64(mult))
}
