package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// DefaultConfigFile is the config file looked up in the working directory
// when neither an explicit path nor SWEXP_CONFIG is set.
const DefaultConfigFile = "swexp.yaml"

// EnvConfigPath names the environment variable overriding the config file
// location.
const EnvConfigPath = "SWEXP_CONFIG"

// Load resolves and loads the pipeline configuration: explicit path if given,
// else $SWEXP_CONFIG, else ./swexp.yaml, else pure defaults. Environment
// overrides are applied after the file, defaults fill remaining gaps, and the
// result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	resolved := resolvePath(path)
	if resolved != "" {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.MissingArtifact, "failed to read config file"),
				errors.Fields{"path": resolved})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
				errors.Fields{"path": resolved})
		}
	}

	applyEnvironment(cfg)
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath picks the config file to read. An empty return means no file,
// run on defaults alone.
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// applyEnvironment layers environment overrides on top of file values.
func applyEnvironment(cfg *Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if level := os.Getenv("SWEXP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if store := os.Getenv("SWEXP_RECORD_STORE"); store != "" {
		cfg.Paths.RecordStore = store
	}
}
