package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugSilentByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("refreshing token for account %d", 7)
	Info("sync dispatched")
	Warn("snapshot missing")

	assert.Empty(t, buf.String())
}

func TestVerboseToggle(t *testing.T) {
	buf := capture(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	Debug("cache hit for ga4/7d")
	assert.Equal(t, "[DEBUG] cache hit for ga4/7d\n", buf.String())

	buf.Reset()
	SetVerbose(false)
	assert.False(t, IsVerbose())
	Debug("cache hit for ga4/7d")
	assert.Empty(t, buf.String())
}

func TestLevelPrefixes(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("fetching %s rows", "gsc")
	Info("synced %d accounts", 3)
	Warn("account %d has no token", 9)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] fetching gsc rows\n")
	assert.Contains(t, out, "[INFO] synced 3 accounts\n")
	assert.Contains(t, out, "[WARN] account 9 has no token\n")
}

func TestSectionHeader(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Sync")
	assert.Equal(t, "\n=== Sync ===\n", buf.String())

	buf.Reset()
	SetVerbose(false)
	Section("Sync")
	assert.Empty(t, buf.String())
}

func TestConcurrentLogging(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Debug("worker tick")
			IsVerbose()
		}()
	}
	wg.Wait()

	assert.Contains(t, buf.String(), "[DEBUG] worker tick\n")
}
