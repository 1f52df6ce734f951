// Package testutil provides shared test helpers: config fixtures, deck slot fixtures,
// and deterministic clocks, id generators and tickers.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a minimal config file using a file slot under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	storageDir := filepath.Join(tmpDir, "storage")
	require.NoError(t, os.MkdirAll(storageDir, 0755))

	configContent := fmt.Sprintf(`user:
  id: test-user
storage:
  backend: file
  path: %s
gateway:
  backend: rpc
  rpc:
    base_url: http://localhost:8080
shares:
  backend: gateway
  origin: https://pobcards.example.com
`, storageDir)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// CreateDeckSlot writes decks as the JSON content of the deck slot file inside dir.
// decks may be any JSON-serializable value so malformed shapes can be stored too.
func CreateDeckSlot(t *testing.T, dir string, decks any) string {
	t.Helper()

	data, err := json.Marshal(decks)
	require.NoError(t, err)
	path := filepath.Join(dir, "safmeds_sets.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// StubClock returns a fixed time that tests can move forward.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(now time.Time) *StubClock {
	return &StubClock{now: now}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator returns id-1, id-2, ... in order.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *StubIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

// ManualTicker records its callback and only fires when Tick is called.
type ManualTicker struct {
	mu       sync.Mutex
	fn       func()
	interval time.Duration
	starts   int
	stops    int
}

func (t *ManualTicker) Start(interval time.Duration, fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fn = fn
	t.interval = interval
	t.starts++
	return nil
}

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fn != nil {
		t.stops++
	}
	t.fn = nil
}

// Tick runs the callback if the ticker is running.
func (t *ManualTicker) Tick() {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (t *ManualTicker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fn != nil
}

func (t *ManualTicker) Starts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.starts
}

func (t *ManualTicker) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

func (t *ManualTicker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}
