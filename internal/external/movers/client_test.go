package movers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
)

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

const moversHTML = `<html><body>
<table>
<thead><tr><th>Symbol</th><th>Name</th><th>Volume</th></tr></thead>
<tbody>
<tr><td>SPY</td><td>SPDR S&amp;P 500 ETF</td><td>81,188,000</td></tr>
<tr><td>TSLA</td><td>Tesla Inc</td><td>45.2M</td></tr>
<tr><td colspan="3">sponsored</td></tr>
<tr><td>NVDA</td><td>NVIDIA Corp</td><td>1.1B</td></tr>
<tr><td>brk.b</td><td>Berkshire Hathaway</td><td>3,100</td></tr>
</tbody>
</table>
</body></html>`

func TestMostActive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets/most-active", r.URL.Path)
		w.Write([]byte(moversHTML))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Movers:   config.MoversConfig{BaseURL: server.URL},
	}
	log := logger.New(cfg)
	client := NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)

	out, err := client.MostActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, Mover{Rank: 1, Symbol: "SPY", Name: "SPDR S&P 500 ETF", Volume: 81_188_000}, out[0])
	assert.Equal(t, "TSLA", out[1].Symbol)
	assert.Equal(t, int64(45_200_000), out[1].Volume)
	assert.Equal(t, int64(1_100_000_000), out[2].Volume)
	// Lower-case class shares are upper-cased on the way in.
	assert.Equal(t, "BRK.B", out[3].Symbol)
}

func TestMostActiveLimit(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(moversHTML))
	require.NoError(t, err)

	out := parseMoversTable(doc, 2)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"SPY", "TSLA"}, []string{out[0].Symbol, out[1].Symbol})
}

func TestMostActiveUsesCache(t *testing.T) {
	var scrapes int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scrapes++
		w.Write([]byte(moversHTML))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Movers:   config.MoversConfig{BaseURL: server.URL},
	}
	log := logger.New(cfg)
	client := NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log).WithCache(newFakeCache())

	first, err := client.MostActive(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// The full table is cached; a smaller limit is served by truncation.
	second, err := client.MostActive(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, 1, scrapes)
}

func TestMostActiveEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Movers:   config.MoversConfig{BaseURL: server.URL},
	}
	log := logger.New(cfg)
	client := NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)

	_, err := client.MostActive(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"81,188", 81188},
		{"1.5M", 1_500_000},
		{"2K", 2_000},
		{"1.1B", 1_100_000_000},
		{"-", 0},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVolume(tt.in))
		})
	}
}
