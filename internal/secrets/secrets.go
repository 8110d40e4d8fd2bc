// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Scopus API key. The key may come from a direct
// argument, a config file holding an [Authentication] section with an APIKey
// entry, the environment, or a directory of plain-text key files where the
// filename is the key name and the trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// ErrNoAPIKey is returned when no source provides a Scopus API key.
var ErrNoAPIKey = errors.New("no Scopus API key configured")

const (
	// KeyFile is the file name looked up in the secrets directory.
	KeyFile = "scopus-api-key"

	authSection = "Authentication"
	apiKeyName  = "APIKey"
)

// Sources lists the places ResolveAPIKey consults, highest priority first.
type Sources struct {
	// Direct is a key passed on the command line.
	Direct string

	// ConfigFile is an INI (.config, .ini) or YAML/JSON/TOML file.
	ConfigFile string

	// Env is the value of the key's environment variable.
	Env string

	// SecretsDir is a directory of key files (see Load).
	SecretsDir string
}

// ResolveAPIKey returns the first non-empty key from src. A configured but
// unreadable or misspecified ConfigFile is an error; a missing SecretsDir
// is not.
func ResolveAPIKey(src Sources) (string, error) {
	if k := strings.TrimSpace(src.Direct); k != "" {
		return k, nil
	}

	if src.ConfigFile != "" {
		k, err := LoadConfigKey(src.ConfigFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if k != "" {
			return k, nil
		}
	}

	if k := strings.TrimSpace(src.Env); k != "" {
		return k, nil
	}

	if src.SecretsDir != "" {
		s, err := Load(src.SecretsDir)
		if err != nil {
			return "", err
		}
		if k, ok := s[KeyFile]; ok {
			return k, nil
		}
	}

	return "", ErrNoAPIKey
}

// LoadConfigKey reads the API key from the Authentication section of path.
// Files ending in .yaml, .yml, .json or .toml are read with viper under the
// key authentication.apikey; anything else is parsed as INI.
func LoadConfigKey(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("reading key config %s: %w", path, err)
	}

	var key string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("parsing key config %s: %w", path, err)
		}
		key = v.GetString(strings.ToLower(authSection + "." + apiKeyName))
	default:
		cfg, err := ini.Load(path)
		if err != nil {
			return "", fmt.Errorf("parsing key config %s: %w", path, err)
		}
		key = cfg.Section(authSection).Key(apiKeyName).String()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("config file %s misspecified: it must contain an %s section with entry %s: %w",
			path, authSection, apiKeyName, ErrNoAPIKey)
	}
	return key, nil
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
