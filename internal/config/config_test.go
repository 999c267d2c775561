package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			BasePath: "/some/path",
		},
		Auth: AuthConfig{
			AccessTokenDuration: 24 * time.Hour,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.BasePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data base path")
}

func TestValidate_NonPositiveTokenDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AccessTokenDuration = 0

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}
	err := cfg.expandDataPath()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "Shelftalk", "data"), cfg.Storage.BasePath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{BasePath: "~/shelftalk-data"}}
	err := cfg.expandDataPath()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "shelftalk-data"), cfg.Storage.BasePath)
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{BasePath: "/data"}}
	assert.Equal(t, "/data/db", cfg.DatabasePath())
	assert.Equal(t, "/data/search", cfg.SearchIndexPath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	// Default when nothing else is set.
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_UNSET", "default"))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")

	content := "# comment\nTEST_ENVFILE_A=hello\nTEST_ENVFILE_B=\"quoted\"\n\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("TEST_ENVFILE_A")
		os.Unsetenv("TEST_ENVFILE_B")
	})

	err := loadEnvFile(envPath)
	require.NoError(t, err)

	assert.Equal(t, "hello", os.Getenv("TEST_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("TEST_ENVFILE_B"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOEQUALS\n"), 0o600))

	err := loadEnvFile(envPath)
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TEST_ENVFILE_KEEP=file\n"), 0o600))

	t.Setenv("TEST_ENVFILE_KEEP", "env")

	err := loadEnvFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, "env", os.Getenv("TEST_ENVFILE_KEEP"))
}
