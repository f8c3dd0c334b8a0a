package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factoryledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "", cfg.Catalog.Dir)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
catalog:
  dir: ./catalog
store:
  path: /tmp/ledger.db
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./catalog", cfg.Catalog.Dir)
	assert.Equal(t, "/tmp/ledger.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store:\n  path: from-file.db\n")
	t.Setenv("FACTORYLEDGER_STORE_PATH", "from-env.db")
	t.Setenv("FACTORYLEDGER_CATALOG_DIR", "/srv/catalog")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.Equal(t, "/srv/catalog", cfg.Catalog.Dir)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "Config.Logging.Level")
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "code", "X")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "X", entry["code"])
}

func TestLoggingConfig_NewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LoggingConfig{Level: "debug", Format: "text"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestLoggingConfig_NewLoggerErrors(t *testing.T) {
	_, err := LoggingConfig{Level: "loud", Format: "text"}.NewLogger(&bytes.Buffer{})
	assert.Error(t, err)

	_, err = LoggingConfig{Level: "info", Format: "xml"}.NewLogger(&bytes.Buffer{})
	assert.Error(t, err)
}
