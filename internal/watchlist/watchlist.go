package watchlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/optionscout/optionscout/pkg/logger"
)

// DefaultSymbols is what a missing watchlist file resolves to.
var DefaultSymbols = []string{"SPY"}

// Watchlist is a newline-delimited symbols file. Lines starting with '#'
// and blank lines are skipped; symbols are upper-cased and deduped, first
// occurrence wins. Writes go through a temp file and rename so a crashed
// refresh never leaves a half-written list.
type Watchlist struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
}

// New creates a watchlist over the given file path.
func New(path string, log *logger.Logger) *Watchlist {
	return &Watchlist{
		path:   path,
		logger: log.WithComponent("watchlist"),
	}
}

// Path returns the backing file path.
func (w *Watchlist) Path() string {
	return w.path
}

// Load reads the symbols file. A missing file is not an error; it yields
// the default symbols so a fresh checkout screens something.
func (w *Watchlist) Load() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.WithField("path", w.path).Debug("Watchlist file missing, using defaults")
			return append([]string(nil), DefaultSymbols...), nil
		}
		return nil, fmt.Errorf("watchlist: read %s: %w", w.path, err)
	}

	symbols := parseSymbols(string(data))
	if len(symbols) == 0 {
		return append([]string(nil), DefaultSymbols...), nil
	}
	return symbols, nil
}

// Replace atomically rewrites the watchlist with the given symbols.
func (w *Watchlist) Replace(symbols []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cleaned := parseSymbols(strings.Join(symbols, "\n"))
	if len(cleaned) == 0 {
		return fmt.Errorf("watchlist: refusing to replace with zero symbols")
	}

	var b strings.Builder
	b.WriteString("# OptionScout watchlist, one underlying per line.\n")
	for _, s := range cleaned {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".symbols-*.tmp")
	if err != nil {
		return fmt.Errorf("watchlist: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("watchlist: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("watchlist: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("watchlist: replace %s: %w", w.path, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path":  w.path,
		"count": len(cleaned),
	}).Info("Watchlist replaced")

	return nil
}

// Contains reports whether the watchlist currently holds the symbol.
func (w *Watchlist) Contains(symbol string) (bool, error) {
	symbols, err := w.Load()
	if err != nil {
		return false, err
	}

	needle := strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range symbols {
		if s == needle {
			return true, nil
		}
	}
	return false, nil
}

// parseSymbols normalizes raw file content into an ordered, deduped list.
func parseSymbols(raw string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbol := strings.ToUpper(line)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, symbol)
	}

	return out
}
