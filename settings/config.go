// Package settings resolves where and as whom the harness connects: config files,
// the OS keychain, command line overrides, and the guards that run before any test.
package settings

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

const (
	SystemConfigPath   = "/etc/jss-contract-tests.yaml"
	userConfigFileName = ".jss-contract-tests.yaml"
)

// FileConfig is the content of one config file. Zero values mean "not set".
type FileConfig struct {
	APIServerName string `yaml:"api_server_name" env:"JSS_API_SERVER_NAME"`
	APIServerPort int    `yaml:"api_server_port" env:"JSS_API_SERVER_PORT"`
	DBServerName  string `yaml:"db_server_name" env:"JSS_DB_SERVER_NAME"`
	DBServerPort  int    `yaml:"db_server_port" env:"JSS_DB_SERVER_PORT"`
}

// Config holds the system-wide file on its own, for the production check, and the
// merged view where the user file overrides the system file.
type Config struct {
	System FileConfig
	Merged FileConfig
}

// UserConfigPath returns the per-user config file path.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "finding home directory")
	}
	return filepath.Join(home, userConfigFileName), nil
}

// LoadConfig reads both config files. Either may be missing. JSS_* environment
// variables override the merged view only; System is exactly what the system-wide
// file records.
func LoadConfig(systemPath, userPath string) (*Config, error) {
	system, err := readConfigFile(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readConfigFile(userPath)
	if err != nil {
		return nil, err
	}

	merged := system
	if user.APIServerName != "" {
		merged.APIServerName = user.APIServerName
	}
	if user.APIServerPort != 0 {
		merged.APIServerPort = user.APIServerPort
	}
	if user.DBServerName != "" {
		merged.DBServerName = user.DBServerName
	}
	if user.DBServerPort != 0 {
		merged.DBServerPort = user.DBServerPort
	}
	if err := cleanenv.ReadEnv(&merged); err != nil {
		return nil, errors.Wrap(err, "reading config from environment")
	}

	return &Config{System: system, Merged: merged}, nil
}

// readConfigFile decodes one file without applying the environment. A missing
// file or an empty path reads as an empty FileConfig.
func readConfigFile(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := cleanenv.ParseYAML(f, &cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}
	return cfg, nil
}
