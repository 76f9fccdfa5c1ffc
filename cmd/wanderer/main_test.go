package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SirWilliamIII/wanderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMain returns a Main backed by a temp database.
func newTestMain(t *testing.T) *Main {
	t.Helper()

	m := NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	return m
}

func runCLI(t *testing.T, m *Main, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := m.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_no_command_is_an_error(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, newTestMain(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestRun_help(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, newTestMain(t), "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "crawl")
	assert.Contains(t, stdout, "stats")
}

func TestCrawlCommand_requires_seeds(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, newTestMain(t), "crawl")
	require.Error(t, err)
	assert.Equal(t, wanderer.EINVALID, wanderer.ErrorCode(err))
}

func TestCrawlCommand_rejects_unknown_mode(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, newTestMain(t), "crawl", "-m", "turbo", "https://example.com")
	require.Error(t, err)
}

func TestCrawlCommand_end_to_end(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/child">Child</a></body></html>`)
		case "/child":
			fmt.Fprint(w, `<html><head><title>Child</title></head><body><p>Leaf page.</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m := newTestMain(t)
	stdout, stderr, err := runCLI(t, m, "crawl", "-m", "wander", "-d", "1", server.URL)
	require.NoError(t, err, "stderr: %s", stderr)

	assert.Contains(t, stdout, "Crawl finished (wander mode)")
	assert.Contains(t, stdout, "succeeded 2")

	// The same database must now report the stored documents.
	stdout, _, err = runCLI(t, m, "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wander")
	assert.Contains(t, stdout, "total")
}

func TestStatsCommand_empty_database(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, newTestMain(t), "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No documents found")
}

func TestRun_invalid_config_path(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, newTestMain(t), "-c", "/nonexistent/config.yml", "stats")
	require.Error(t, err)
	assert.Equal(t, wanderer.ECONFIG, wanderer.ErrorCode(err))
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("parses fields and keeps defaults for the rest", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte(`
seeds:
  - https://example.com
proxies:
  basic:
    - http://proxy-1:8080
batch:
  size: 50
collection_threshold: 500
`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://example.com"}, cfg.Seeds)
		assert.Equal(t, []string{"http://proxy-1:8080"}, cfg.Proxies.Basic)
		assert.Equal(t, 50, cfg.Batch.Size)
		assert.Equal(t, 500, cfg.CollectionThreshold)
		assert.Equal(t, 24, cfg.FreshnessHours, "default survives partial config")
		assert.Equal(t, "wanderer/1.0", cfg.UserAgent)
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("seeds: [unclosed"), 0644))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Equal(t, wanderer.ECONFIG, wanderer.ErrorCode(err))
	})
}
