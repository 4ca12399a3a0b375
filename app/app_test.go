package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labserve/config"
)

// syncBuffer is a bytes.Buffer safe to read while Run writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "labs.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
host = "0.0.0.0"

[[labs]]
name = "vite-vue"
port = 9102
dir = "vite-vue/dist"
`)

	cfg, err := LoadConfig(Options{
		ConfigFile: path,
		BaseDir:    dir,
		Host:       "127.0.0.1",
		LogFile:    filepath.Join(dir, "labserve.log"),
	})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, filepath.Join(dir, "labserve.log"), cfg.LogFile)
	assert.Equal(t, []config.LabEntry{{Name: "vite-vue", Port: 9102, Dir: "vite-vue/dist"}}, cfg.Labs)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(Options{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLabs(), cfg.Labs)
	assert.True(t, filepath.IsAbs(cfg.BaseDir))
	assert.Empty(t, cfg.Host)
}

func TestRunUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "parcel-react", "dist"), 0755))
	path := writeConfig(t, dir, `
host = "127.0.0.1"

[[labs]]
name = "parcel-react"
port = 0
dir = "parcel-react/dist"

[[labs]]
name = "obfuscated"
port = 0
dir = "obfuscated/dist"
`)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			ConfigFile: path,
			LogFile:    filepath.Join(dir, "labserve.log"),
			Out:        out,
		})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "labs serving")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	console := out.String()
	assert.Contains(t, console, "Starting test lab servers...")
	assert.Contains(t, console, "SKIP obfuscated")
	assert.Contains(t, console, "parcel-react")
	assert.Contains(t, console, "1 of 2 labs serving")
	assert.Contains(t, console, "Shutting down...")
	assert.Contains(t, console, "wrote logs to "+filepath.Join(dir, "labserve.log"))

	logData, err := os.ReadFile(filepath.Join(dir, "labserve.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "all labs stopped")
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[labs]]
name = "a"
port = 9001
dir = "a"

[[labs]]
name = "b"
port = 9001
dir = "b"
`)

	err := Run(context.Background(), Options{ConfigFile: path, Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, config.ErrInvalidTable)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vite-vue", "dist"), 0755))

	var out bytes.Buffer
	require.NoError(t, List(Options{BaseDir: dir, Out: &out}))

	listing := out.String()
	for _, lab := range config.DefaultLabs() {
		assert.Contains(t, listing, lab.Name)
	}
	assert.Equal(t, 1, strings.Count(listing, " ok "))
	assert.Equal(t, 8, strings.Count(listing, " missing "))
}
