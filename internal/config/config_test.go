package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	t.Run("missing_files_use_defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.json5"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("empty_name_uses_defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "british-airways", cfg.Airline)
	})

	t.Run("local_overrides_base", func(t *testing.T) {
		dir := t.TempDir()
		name := filepath.Join(dir, "config.json5")
		writeFile(t, name, `{
			// コメントと末尾カンマを許容
			airline: "virgin-atlantic",
			max_pages: 3,
			extra_stopwords: ["lhr"],
		}`)
		writeFile(t, filepath.Join(dir, "config.local.json5"), `{max_pages: 5, spell_check: false}`)

		cfg, err := Load(name)
		require.NoError(t, err)
		assert.Equal(t, "virgin-atlantic", cfg.Airline)
		assert.Equal(t, 5, cfg.MaxPages)
		assert.Equal(t, []string{"lhr"}, cfg.ExtraStopwords)
		assert.False(t, cfg.SpellCheckEnabled())
		assert.Equal(t, "https://www.airlinequality.com", cfg.BaseURL)
		assert.Equal(t, 1000, cfg.RateLimitMs)
	})

	t.Run("invalid_file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "config.json5")
		writeFile(t, name, `{max_pages: `)
		_, err := Load(name)
		assert.Error(t, err)
	})
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, filepath.Join("conf", "app.local.json5"), localPath(filepath.Join("conf", "app.json5")))
	assert.Equal(t, "config.local.json5", localPath("config.json5"))
}
