package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/portdex/portdex"
	"github.com/portdex/portdex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain_Run_ConfigMaxAge verifies the config file's max_age drives the
// freshness policy when the flag is not given, and that an explicit flag
// still wins.
func TestMain_Run_ConfigMaxAge(t *testing.T) {
	cacheDir := t.TempDir()
	t.Setenv("PORTDEX_CACHE_DIR", cacheDir)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("max_age: 1m\n"), 0644))

	// Seed a cache envelope built an hour ago: fresh under the built-in
	// 168h default, stale under the file's 1m.
	store := fs.NewStore(filepath.Join(cacheDir, "registry.json"))
	registry := portdex.BuildRegistry(
		[]*portdex.PortAssignment{httpAssignment()}, "fp", time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(context.Background(), registry))

	newMain := func() *Main {
		m := NewMain()
		m.ConfigPath = configPath
		return m
	}

	t.Run("cache command evaluates freshness against the file max_age", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		m := newMain()
		defer m.Close()

		require.NoError(t, m.Run(context.Background(), []string{"cache"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "stale")
		assert.Contains(t, stdout.String(), "max age 1m0s")
	})

	t.Run("offline lookup past the file max_age warns about staleness", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		m := newMain()
		defer m.Close()

		require.NoError(t, m.Run(context.Background(), []string{"80", "--offline"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "Port 80 is a well-known port with 1 known use case")
		assert.Contains(t, stderr.String(), "previously cached registry")
	})

	t.Run("explicit --max-age flag overrides the file value", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		m := newMain()
		defer m.Close()

		require.NoError(t, m.Run(context.Background(), []string{"cache", "--max-age", "168h"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "fresh")
	})
}
