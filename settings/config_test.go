package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigUserOverridesSystem(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.yaml", `
api_server_name: casper.example.com
api_server_port: 8443
db_server_name: db.example.com
`)
	user := writeFile(t, dir, "user.yaml", `
api_server_name: casper-dev.example.com
db_server_port: 3307
`)

	cfg, err := LoadConfig(system, user)
	require.NoError(t, err)

	assert.Equal(t, "casper.example.com", cfg.System.APIServerName)
	assert.Equal(t, FileConfig{
		APIServerName: "casper-dev.example.com",
		APIServerPort: 8443,
		DBServerName:  "db.example.com",
		DBServerPort:  3307,
	}, cfg.Merged)
}

func TestLoadConfigMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "none.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg.System)
	assert.Equal(t, FileConfig{}, cfg.Merged)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.yaml", "api_server_name: casper.example.com\napi_server_port: 8443\n")
	t.Setenv("JSS_API_SERVER_PORT", "9443")

	cfg, err := LoadConfig(system, filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "casper.example.com", cfg.Merged.APIServerName)
	assert.Equal(t, 9443, cfg.Merged.APIServerPort)
}

func TestLoadConfigBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "api_server_port: [not, a, port]\n")

	_, err := LoadConfig(bad, "")
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestEnvironmentDoesNotChangeProductionServer(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.yaml", "api_server_name: casper.example.com\n")
	t.Setenv("JSS_API_SERVER_NAME", "casper-dev.example.com")

	cfg, err := LoadConfig(system, filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "casper.example.com", cfg.System.APIServerName)
	assert.Equal(t, "casper-dev.example.com", cfg.Merged.APIServerName)
	assert.True(t, IsProduction("casper.example.com", cfg.System))
	assert.False(t, IsProduction("casper-dev.example.com", cfg.System))
}

func TestEnvironmentDoesNotCreateProductionServer(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JSS_API_SERVER_NAME", "casper-dev.example.com")

	cfg, err := LoadConfig(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "none-either.yaml"))
	require.NoError(t, err)

	assert.Equal(t, FileConfig{}, cfg.System)
	assert.Equal(t, "casper-dev.example.com", cfg.Merged.APIServerName)
	assert.False(t, IsProduction("casper-dev.example.com", cfg.System))
}

func TestLoadConfigEmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.yaml", "")

	cfg, err := LoadConfig(empty, "")
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg.System)
}
