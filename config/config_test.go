package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTargets(t *testing.T) {
	t.Parallel()

	targets := config.BuiltinTargets()
	require.NotEmpty(t, targets)

	seen := make(map[string]bool)
	for _, target := range targets {
		assert.NoError(t, target.Validate(), "target %q", target.Key)
		assert.False(t, seen[target.Key], "duplicate key %q", target.Key)
		seen[target.Key] = true
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 15, cfg.RequestsPerMinute)
	assert.Len(t, cfg.AllTargets(), len(config.BuiltinTargets()))
}

func TestLoad_FileOverridesAndAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `provider: anthropic
concurrency: 2
targets:
  - key: xenia
    site_name: Xenia Clinic
    base_url: https://xenia.clinic
    strategy: static
    static_urls:
      - https://xenia.clinic/ko/pricing
  - key: custom
    site_name: Custom Clinic
    base_url: https://custom.example.com
    strategy: sitemap
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 2, cfg.Concurrency)

	// Overridden builtin keeps its table position and new strategy.
	xenia, err := cfg.Target("xenia")
	require.NoError(t, err)
	assert.Equal(t, clinscrape.SourceStatic, xenia.Strategy)
	assert.Equal(t, []string{"https://xenia.clinic/ko/pricing"}, xenia.StaticURLs)

	custom, err := cfg.Target("custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom Clinic", custom.SiteName)
	assert.Len(t, cfg.AllTargets(), len(config.BuiltinTargets())+1)
}

func TestLoad_InvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o644))

	_, err := config.Load(path)
	assert.Equal(t, clinscrape.EINVALID, clinscrape.ErrorCode(err))
}

func TestLoad_InvalidTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `targets:
  - key: broken
    site_name: Broken
    base_url: https://broken.example.com
    strategy: spa
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := config.Load(path)
	assert.Equal(t, clinscrape.EINVALID, clinscrape.ErrorCode(err))
}

func TestConfig_Target_NotFound(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	_, err = cfg.Target("no-such-target")
	assert.Equal(t, clinscrape.ENOTFOUND, clinscrape.ErrorCode(err))
}

func TestConfig_APIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.APIKey())

	t.Setenv("CLINSCRAPE_PROVIDER", "anthropic")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "a-key", cfg.APIKey())
}
