package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "client.json", map[string]any{
		"server_url":            "https://backend.example",
		"wallet_rpc":            "http://127.0.0.1:8545",
		"request_timeout":       "10s",
		"account_poll_interval": 2000000000,
		"verbose":               true,
	})

	t.Run("overlays present fields", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://backend.example", cfg.ServerURL)
		assert.Equal(t, "http://127.0.0.1:8545", cfg.WalletRPC)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 2*time.Second, cfg.AccountPollInterval)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "onboarding.db", cfg.DatabasePath, "absent fields keep defaults")
	})

	t.Run("no config flag leaves config alone", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{ServerURL: "http://defaults"}
		parseJson(cfg)

		assert.Equal(t, "http://defaults", cfg.ServerURL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
