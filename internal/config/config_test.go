package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, descriptorPath string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.ini")
	content := "[credentials]\npath = " + descriptorPath + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func writeDescriptor(t *testing.T, dir, content string) string {
	t.Helper()
	descriptorPath := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(descriptorPath, []byte(content), 0o644))
	return descriptorPath
}

func TestLoad_WhenConfigFileAbsent_ThenReturnsDefault(t *testing.T) {
	creds, err := Load(filepath.Join(t.TempDir(), "missing.ini"))

	require.NoError(t, err)
	assert.Equal(t, EngineSQLite, creds.Engine)
	assert.Equal(t, DefaultSQLitePath, creds.SQLite.DatabasePath)
}

func TestLoad_WhenEmptyPath_ThenReturnsDefault(t *testing.T) {
	creds, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), creds)
}

func TestLoad_WhenConfigDeclaresNoDescriptor_ThenReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(configPath, []byte("[credentials]\n"), 0o644))

	creds, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, Default(), creds)
}

func TestLoad_WhenDescriptorFileAbsent_ThenReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "does-not-exist.json")

	creds, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, Default(), creds)
}

func TestLoad_WhenSQLiteDescriptor_ThenReturnsEmbeddedCredentials(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, `{
		"engine": "sqlite",
		"sqlite": {"database_path": "/var/lib/reliability/events.db"}
	}`)
	configPath := writeConfig(t, dir, descriptorPath)

	creds, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, EngineSQLite, creds.Engine)
	assert.Equal(t, "/var/lib/reliability/events.db", creds.SQLite.DatabasePath)
}

func TestLoad_WhenMySQLDescriptor_ThenReturnsNetworkedCredentials(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{
		"engine": "mysql",
		"mysql": {
			"host": "db.internal:3306",
			"user": "reliability",
			"password": "secret",
			"database": "reliability_events"
		}
	}`)
	// Relative descriptor paths resolve against the config file's directory.
	configPath := writeConfig(t, dir, "credentials.json")

	creds, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, EngineMySQL, creds.Engine)
	assert.Equal(t, "db.internal:3306", creds.MySQL.Host)
	assert.Equal(t, "reliability", creds.MySQL.User)
	assert.Equal(t, "secret", creds.MySQL.Password)
	assert.Equal(t, "reliability_events", creds.MySQL.Database)
}

func TestLoad_WhenDescriptorReferencesEnv_ThenResolvesFromEnvironment(t *testing.T) {
	t.Setenv("RELIABILITY_DB_PASSWORD", "from-env")

	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, `{
		"engine": "mysql",
		"mysql": {
			"host": "db.internal:3306",
			"user": "reliability",
			"password": "$RELIABILITY_DB_PASSWORD",
			"database": "reliability_events"
		}
	}`)
	configPath := writeConfig(t, dir, descriptorPath)

	creds, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, "from-env", creds.MySQL.Password)
}

func TestLoad_WhenMySQLParamsMissing_ThenConfigurationError(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, `{
		"engine": "mysql",
		"mysql": {"host": "db.internal:3306"}
	}`)
	configPath := writeConfig(t, dir, descriptorPath)

	_, err := Load(configPath)

	require.Error(t, err)
	var confErr ConfigurationError
	assert.True(t, errors.As(err, &confErr))
	assert.Contains(t, err.Error(), "user")
	assert.Contains(t, err.Error(), "password")
	assert.Contains(t, err.Error(), "database")
}

func TestLoad_WhenUnknownEngine_ThenConfigurationError(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, `{"engine": "postgres"}`)
	configPath := writeConfig(t, dir, descriptorPath)

	_, err := Load(configPath)

	require.Error(t, err)
	var confErr ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestLoad_WhenDescriptorNotJSON_ThenConfigurationError(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, "not json at all")
	configPath := writeConfig(t, dir, descriptorPath)

	_, err := Load(configPath)

	require.Error(t, err)
	var confErr ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestValidate_WhenSQLitePathEmpty_ThenConfigurationError(t *testing.T) {
	creds := Credentials{Engine: EngineSQLite}

	err := creds.Validate()

	require.Error(t, err)
	var confErr ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}
