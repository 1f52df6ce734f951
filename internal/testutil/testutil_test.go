package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := SetupTestConfig(t, tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, "config.yml"), configPath)
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), filepath.Join(tmpDir, "storage"))
	assert.DirExists(t, filepath.Join(tmpDir, "storage"))
}

func TestCreateDeckSlot(t *testing.T) {
	tmpDir := t.TempDir()

	path := CreateDeckSlot(t, tmpDir, []map[string]any{{"id": "a", "title": "A"}})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "A", got[0]["title"])
}

func TestStubClock(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewStubClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestStubIDGenerator(t *testing.T) {
	var g StubIDGenerator
	assert.Equal(t, "id-1", g.NewID())
	assert.Equal(t, "id-2", g.NewID())
}

func TestManualTicker(t *testing.T) {
	var ticker ManualTicker
	calls := 0

	ticker.Tick()
	assert.Equal(t, 0, calls)

	require.NoError(t, ticker.Start(time.Second, func() { calls++ }))
	ticker.Tick()
	ticker.Tick()
	assert.Equal(t, 2, calls)
	assert.True(t, ticker.Running())
	assert.Equal(t, time.Second, ticker.Interval())

	ticker.Stop()
	ticker.Stop()
	ticker.Tick()
	assert.Equal(t, 2, calls)
	assert.False(t, ticker.Running())
	assert.Equal(t, 1, ticker.Starts())
	assert.Equal(t, 1, ticker.Stops())
}
