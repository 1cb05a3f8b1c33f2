// ABOUTME: Tests for configuration loading
// ABOUTME: Covers parsing, env expansion, duration fields and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emotia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
database:
  path: /tmp/emotia/chat.db
memory:
  path: /tmp/emotia/memory.bolt
user:
  id: user-1
  display_name: Test User
reply:
  min_think_delay: 100ms
  max_think_delay: 250ms
logging:
  level: debug
  format: text
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/emotia/chat.db", cfg.Database.Path)
	assert.Equal(t, "/tmp/emotia/memory.bolt", cfg.Memory.Path)
	assert.Equal(t, "user-1", cfg.User.ID)
	assert.Equal(t, 100*time.Millisecond, cfg.Reply.MinThinkDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Reply.MaxThinkDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("EMOTIA_TEST_DB", "/data/expanded.db")

	cfg, err := Load(writeConfig(t, `
database:
  path: ${EMOTIA_TEST_DB}
memory:
  path: /tmp/memory.bolt
user:
  id: user-1
`))
	require.NoError(t, err)
	assert.Equal(t, "/data/expanded.db", cfg.Database.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	_, err := Load(writeConfig(t, `
memory:
  path: /tmp/memory.bolt
user:
  id: user-1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path")
}

func TestLoad_MissingUserID(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  path: /tmp/chat.db
memory:
  path: /tmp/memory.bolt
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.id")
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  path: /tmp/chat.db
memory:
  path: /tmp/memory.bolt
user:
  id: user-1
reply:
  min_think_delay: soon
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_think_delay")
}

func TestLoad_InvertedDelayRange(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  path: /tmp/chat.db
memory:
  path: /tmp/memory.bolt
user:
  id: user-1
reply:
  min_think_delay: 2s
  max_think_delay: 1s
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_think_delay")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
