// Package config loads the process-wide UserConfig and the per-remote
// API token file from the user's home directory.
package config

import (
	"errors"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/ndlib/scidataflow/manifest"
)

const (
	userConfigFilename = ".scidataflow_config"
	authKeysFilename   = ".scidataflow_authkeys.yml"
)

// UserConfig holds attribution metadata attached to remote depositions
// (e.g. the default Zenodo creator name the `metadata` command sends),
// per spec.md §3 and §6.
type UserConfig struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Affiliation string `yaml:"affiliation"`
}

// AuthKeys maps a remote kind to its API token. It is kept entirely
// separate from the manifest file: spec.md §4.E "link" explicitly says
// the token is persisted here, not in the manifest.
type AuthKeys map[manifest.Kind]string

// UserConfigPath returns the path to the user config file.
func UserConfigPath() (string, error) {
	return homePath(userConfigFilename)
}

// AuthKeysPath returns the path to the auth-keys file.
func AuthKeysPath() (string, error) {
	return homePath(authKeysFilename)
}

func homePath(name string) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, name), nil
}

// LoadUserConfig reads the user config file. A missing file is not an
// error: it returns a zero-value UserConfig, since `config` (the CLI
// verb) is what creates the file on first use (spec.md §4.F).
func LoadUserConfig() (UserConfig, error) {
	var cfg UserConfig
	path, err := UserConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveUserConfig writes the user config file, creating it if absent.
func SaveUserConfig(cfg UserConfig) error {
	path, err := UserConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadAuthKeys reads the auth-keys file. A missing file yields an empty
// map rather than an error.
func LoadAuthKeys() (AuthKeys, error) {
	keys := make(AuthKeys)
	path, err := AuthKeysPath()
	if err != nil {
		return keys, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return keys, nil
	} else if err != nil {
		return keys, err
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return keys, err
	}
	return keys, nil
}

// SaveAuthKeys writes the auth-keys file with owner-only permissions,
// since it holds bearer tokens.
func SaveAuthKeys(keys AuthKeys) error {
	path, err := AuthKeysPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(keys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SetToken updates keys in place and persists the result. Used by the
// `link` operation (spec.md §4.E) to store a freshly supplied token.
func SetToken(kind manifest.Kind, token string) error {
	keys, err := LoadAuthKeys()
	if err != nil {
		return err
	}
	keys[kind] = token
	return SaveAuthKeys(keys)
}
