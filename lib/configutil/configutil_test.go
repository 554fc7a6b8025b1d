package configutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `json:"port"`
	BaseUrl string        `json:"base_url"`
	Redis   string        `json:"redis"`
	Timeout time.Duration `json:"timeout"`
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// defaults checked into the repo
		port: 5000,
		base_url: "https://e-consultaruc.sunat.gob.pe",
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{redis: "redis://localhost:6379/0"}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, "https://e-consultaruc.sunat.gob.pe", cfg.BaseUrl)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestWithDefaults(t *testing.T) {
	cfg, err := WithDefaults(
		testConfig{Port: 8080},
		testConfig{Port: 5000, Timeout: 30 * time.Second},
	)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*time.Second, cfg.Timeout)
}
