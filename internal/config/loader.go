package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
// Sections are separated by a double underscore: RUNNER_DDA__SMOOTHING.
const EnvPrefix = "RUNNER_"

// Load builds a Config by layering defaults, an optional file and env vars.
// File search order: customPath -> ~/.lane-runner/config.yaml -> ./configs/runner.yaml.
// A missing custom file is an error; missing search-path files are skipped.
func Load(customPath string) (Config, error) {
	cfg := embeddedDefaults()

	k := koanf.New(".")

	path, err := resolveConfigFile(customPath)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Dump renders the configuration as YAML.
func Dump(cfg Config) ([]byte, error) {
	return yamlv3.Marshal(cfg)
}

// embeddedDefaults decodes defaults/runner.yaml, falling back to Default().
func embeddedDefaults() Config {
	var cfg Config
	if err := yamlv3.Unmarshal(defaultRunnerYAML, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// resolveConfigFile returns the first config file that exists, or "" if none.
func resolveConfigFile(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err != nil {
			return "", fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return customPath, nil
	}

	candidates := []string{userConfigPath("config.yaml"), filepath.Join("configs", "runner.yaml")}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lane-runner", filename)
}
