package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"CSVASK_API_KEY", "GEMMA_API_KEY", "CSVASK_PIE_MAX_SLICES", "CSVASK_CORS_ORIGINS", "CSVASK_ROUTER_MODEL"} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1", c.BaseURL)
	assert.Equal(t, "google/gemma-3-27b-it", c.RouterModel)
	assert.Equal(t, 0.7, c.RouterTemperature)
	assert.Equal(t, 15*time.Second, c.RouterTimeout())
	assert.Equal(t, 1, c.RetryMaxAttempts)
	assert.Equal(t, "gemma:2b", c.AssistModel)
	assert.False(t, c.AssistEnabled)
	assert.Equal(t, 10, c.PieMaxSlices)
	assert.Equal(t, 20, c.SubgroupMaxUnique)
	assert.Equal(t, ":8005", c.ListenAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
	assert.Empty(t, c.APIKey)
}

func TestLoadKeyFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GEMMA_API_KEY", "legacy-key")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", c.APIKey)

	t.Setenv("CSVASK_API_KEY", "new-key")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "new-key", c.APIKey)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".csvask")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("router_model: local/model\npie_max_slices: 5\ncors_origins:\n  - http://a\n  - http://b\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local/model", c.RouterModel)
	assert.Equal(t, 5, c.PieMaxSlices)
	assert.Equal(t, []string{"http://a", "http://b"}, c.CORSOrigins)

	t.Setenv("CSVASK_PIE_MAX_SLICES", "7")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.PieMaxSlices)
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	in, err := Load("")
	require.NoError(t, err)
	in.RouterModel = "x/y"
	in.ChartsDir = "/tmp/charts"
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x/y", out.RouterModel)
	assert.Equal(t, "/tmp/charts", out.ChartsDir)
}

func TestSaveDefaultPath(t *testing.T) {
	home := isolate(t)
	require.NoError(t, Save(&Global{RouterModel: "m"}, ""))
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".csvask", "config.yaml"), p)
	_, err = os.Stat(p)
	assert.NoError(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("router_model: [unterminated\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestMaskedKey(t *testing.T) {
	assert.Equal(t, "(not set)", (&Global{}).MaskedKey())
	assert.Equal(t, "****", (&Global{APIKey: "short"}).MaskedKey())
	assert.Equal(t, "sk-o****wxyz", (&Global{APIKey: "sk-or-abcdefwxyz"}).MaskedKey())
}
