package viper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyfileSection struct {
	Compress        bool `mapstructure:"compress"`
	MinCompressSize int  `mapstructure:"min_compress_size"`
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "collate.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("keyfile:\n  compress: true\n  min_compress_size: 64\n"), 0o644))

	c := New()
	require.NoError(t, c.LoadFile(yamlPath))
	assert.Equal(t, yamlPath, c.ConfigFileUsed())

	var kf keyfileSection
	require.NoError(t, c.UnmarshalKey("keyfile", &kf))
	assert.True(t, kf.Compress)
	assert.Equal(t, 64, kf.MinCompressSize)

	jsonPath := filepath.Join(dir, "collate.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"keyset":{"workers":3}}`), 0o644))
	c = New()
	require.NoError(t, c.LoadFile(jsonPath))
	assert.Equal(t, 3, c.GetInt("keyset.workers"))
}

func TestLoadOptionalFile(t *testing.T) {
	c := New()
	ok, err := c.LoadOptionalFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("keyset: [\n"), 0o644))
	_, err = c.LoadOptionalFile(bad)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("COLLATETEST_KEYSET_WORKERS", "7")
	t.Setenv("COLLATETEST_LOG_DISABLE_CALLER", "true")

	c := NewWithEnv("COLLATETEST")
	c.SetDefault("keyset.workers", 0)
	c.SetDefault("log.disable-caller", false)
	assert.Equal(t, 7, c.GetInt("keyset.workers"))
	assert.True(t, c.GetBool("log.disable-caller"))
	assert.True(t, c.IsSet("keyset.workers"))

	c.Set("keyset.workers", 2)
	assert.Equal(t, 2, c.GetInt("keyset.workers"))
}
