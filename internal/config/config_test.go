package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/swasti"},
	}
	require.NoError(t, valid.Validate())

	t.Run("bad environment", func(t *testing.T) {
		cfg := *valid
		cfg.App.Environment = "prod"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := *valid
		cfg.Logger.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty data path", func(t *testing.T) {
		cfg := *valid
		cfg.Data.BasePath = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("SWASTI_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SWASTI_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "SWASTI_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SWASTI_TEST_MISSING", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("SWASTI_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "SWASTI_TEST_INT", 7))

	t.Setenv("SWASTI_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getIntConfigValue("", "SWASTI_TEST_INT", 7))
}

func TestGetFloatConfigValue(t *testing.T) {
	t.Setenv("SWASTI_TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, getFloatConfigValue("", "SWASTI_TEST_FLOAT", 1))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nSWASTI_ENVFILE_A=hello\nSWASTI_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SWASTI_ENVFILE_A")
		os.Unsetenv("SWASTI_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("SWASTI_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("SWASTI_ENVFILE_B"))
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestDatabasePath(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "/var/lib/swasti"}}
	assert.Equal(t, "/var/lib/swasti/swasti.db", cfg.DatabasePath())
}
