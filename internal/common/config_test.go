package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "eng", cfg.OCR.Languages)
	assert.Equal(t, "cards.db", cfg.Store.Path)
	assert.Equal(t, "Cards", cfg.Export.SheetName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CARDSCAN_LANGS", "eng+rus")
	t.Setenv("CARDSCAN_DPI", "300")
	t.Setenv("OPENAI_TIMEOUT", "90s")

	cfg := LoadConfig()
	assert.Equal(t, "eng+rus", cfg.OCR.Languages)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfigBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("CARDSCAN_DPI", "many")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 0, cfg.OCR.DPI)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfigFileMissingIsDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardscan.yaml")
	content := `
ocr:
  languages: eng+rus
  dpi: 300
store:
  path: /tmp/cards.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "eng+rus", cfg.OCR.Languages)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "/tmp/cards.db", cfg.Store.Path)
	// untouched sections keep env/default values
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
}

func TestLoadConfigFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr: ["), 0o600))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.OCR.Languages = ""
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Store.Path = ""
	assert.Error(t, cfg.Validate())
}
