package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string            `json:"name"`
	Timeout  int               `json:"timeout"`
	Verify   *bool             `json:"verify"`
	Headers  map[string]string `json:"headers"`
	Endpoint string            `json:"endpoint"`
}

func writeFile(t *testing.T, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments and trailing commas are allowed
		name: "base",
		timeout: 10,
		verify: true,
		endpoint: "https://portal.sejong.ac.kr",
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		timeout: 3,
		verify: false,
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Name)
	require.Equal(t, 3, cfg.Timeout)
	require.NotNil(t, cfg.Verify)
	require.False(t, *cfg.Verify)
	require.Equal(t, "https://portal.sejong.ac.kr", cfg.Endpoint)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigWithDefaults(t *testing.T) {
	verify := true
	defaults := testConfig{
		Name:     "default",
		Timeout:  10,
		Verify:   &verify,
		Endpoint: "https://portal.sejong.ac.kr",
	}

	dir := t.TempDir()
	cfg, err := ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	writeFile(t, filepath.Join(dir, "config.json5"), `{
		timeout: 5,
		verify: false,
	}`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
	require.Equal(t, 5, cfg.Timeout)
	require.NotNil(t, cfg.Verify)
	require.False(t, *cfg.Verify)
	require.Equal(t, "https://portal.sejong.ac.kr", cfg.Endpoint)
}
