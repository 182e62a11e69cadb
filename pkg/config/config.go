// Package config holds the engine's runtime options, loaded from an optional
// YAML file. Secrets never live here; they come from the credentials package.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the engine's runtime configuration.
type Config struct {
	// Headless controls whether browsers run without a visible window.
	Headless bool `yaml:"headless"`

	// OutputDir is where lead tables and outreach bundles are written.
	OutputDir string `yaml:"output_dir"`

	// EnvFile optionally points at a .env file with credentials.
	EnvFile string `yaml:"env_file"`

	// MaxResults caps extraction per platform.
	MaxResults int `yaml:"max_results"`

	// OutreachLimit caps how many leads get an outreach message.
	OutreachLimit int `yaml:"outreach_limit"`

	// Sender signs rendered outreach messages.
	Sender string `yaml:"sender"`

	// Keywords scores extracted leads during filtering.
	Keywords []string `yaml:"keywords"`

	// SettleDelay is the pause after each scroll pass during extraction,
	// e.g. "500ms". Zero keeps the extraction pipeline's default.
	SettleDelay Duration `yaml:"settle_delay"`

	// GraphURL overrides the Meta Graph API endpoint. Empty means
	// production.
	GraphURL string `yaml:"graph_url"`

	// Debug switches logging to the verbose development encoder.
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Headless:      true,
		OutputDir:     ".",
		MaxResults:    50,
		OutreachLimit: 20,
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}

	if cfg.MaxResults <= 0 {
		cfg.MaxResults = Default().MaxResults
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}
