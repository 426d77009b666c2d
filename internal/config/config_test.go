package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Greater(t, cfg.Workers, 0)
	assert.False(t, cfg.CaseSensitive)
	assert.True(t, cfg.ExternalOnly)
	assert.Equal(t, language.English, cfg.Locale)
	assert.Empty(t, cfg.DBPath)
}

func TestLoad(t *testing.T) {
	cfg, err := load(Default(), env(map[string]string{
		EnvDBPath:        "/tmp/c.db",
		EnvDebounceMs:    "40",
		EnvWorkers:       "3",
		EnvCaseSensitive: "true",
		EnvLocale:        "sv",
		EnvExternalOnly:  "0",
		EnvWatch:         "1",
		EnvExtensions:    "php, PHP5 ,",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c.db", cfg.DBPath)
	assert.Equal(t, 40*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, "sv", cfg.Locale.String())
	assert.False(t, cfg.ExternalOnly)
	assert.True(t, cfg.Watch)
	assert.Equal(t, []string{".php", ".php5"}, cfg.Extensions)
}

func TestLoad_Invalid(t *testing.T) {
	cfg, err := load(Default(), env(map[string]string{
		EnvDebounceMs:   "-1",
		EnvWorkers:      "many",
		EnvExternalOnly: "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDebounceMs)
	assert.Contains(t, err.Error(), EnvWorkers)
	assert.Contains(t, err.Error(), EnvExternalOnly)

	def := Default()
	assert.Equal(t, def.Debounce, cfg.Debounce)
	assert.Equal(t, def.Workers, cfg.Workers)
	assert.True(t, cfg.ExternalOnly)
}

func TestIsSourceAndIgnoredDir(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsSource("a/b/User.php"))
	assert.True(t, cfg.IsSource("view.PHTML"))
	assert.False(t, cfg.IsSource("main.go"))

	assert.True(t, cfg.IsIgnoredDir("vendor"))
	assert.True(t, cfg.IsIgnoredDir(".cache"))
	assert.True(t, cfg.IsIgnoredDir("node_modules"))
	assert.False(t, cfg.IsIgnoredDir("src"))
	assert.False(t, cfg.IsIgnoredDir("."))
}

func TestResolveDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath(), resolveDBPath("default"))
	assert.Equal(t, filepath.Join(home, "idx", "c.db"), resolveDBPath("~/idx/c.db"))
	assert.Equal(t, "/abs/c.db", resolveDBPath("/abs/c.db"))
}
