package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/xakep666/license/pkg/license"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml"
)

// Name is used as a directory name inside OS-specific data and config directories
const Name = "license"

// MaskedString is a string that will be always represented as "****" in json
type MaskedString string

func (m MaskedString) MarshalJSON() ([]byte, error) {
	return []byte(`"****"`), nil
}

// MaskedURL is an url that will be represented with masked password in json
type MaskedURL string

func (m MaskedURL) MarshalJSON() ([]byte, error) {
	u, err := url.Parse(string(m))
	if err != nil {
		return nil, err
	}

	if _, hasPass := u.User.Password(); hasPass {
		u.User = url.UserPassword(u.User.Username(), "****")
	}

	return []byte(fmt.Sprintf(`"%s"`, u.String())), nil
}

func ConfigFromFile(cfgFilePath string) (Config, error) {
	var cfg Config

	cfgFile, err := os.OpenFile(cfgFilePath, os.O_RDONLY, os.ModePerm)
	if err != nil {
		return cfg, fmt.Errorf("config open failed: %w", err)
	}

	defer cfgFile.Close()

	if err := toml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config parse failed: %w", err)
	}

	return cfg, nil
}

// DefaultConfigPath returns a config location inside per-user config directory
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, Name, "config.toml")
}

// ConfigFromFileIfExists acts like ConfigFromFile but returns empty config if file not exists
func ConfigFromFileIfExists(cfgFilePath string) (Config, error) {
	cfg, err := ConfigFromFile(cfgFilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}

	return cfg, err
}

// DataDir returns configured data directory or a per-user data directory of the OS
func DataDir(cfg *Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}

	if xdg.DataHome == "" {
		return "", license.ErrNoDataDir
	}

	return filepath.Join(xdg.DataHome, Name), nil
}
