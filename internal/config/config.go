// Package config provides unified configuration loading for polisim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/polisim/internal/sim"
	"github.com/nvandessel/polisim/internal/vecmath"
	"gopkg.in/yaml.v3"
)

// PolisimConfig contains all polisim configuration settings.
type PolisimConfig struct {
	// Simulation contains the default simulation parameters. CLI flags
	// override these per invocation.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Archive contains settings for the run archive.
	Archive ArchiveConfig `json:"archive" yaml:"archive"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures default simulation parameters.
type SimulationConfig struct {
	// Rounds is the number of propagation rounds. Must be positive.
	Rounds int `json:"rounds" yaml:"rounds"`

	// Theta is the abstention half-width for finalization.
	Theta float64 `json:"theta" yaml:"theta"`

	// Metric selects the similarity function: "cosine" or "euclidean".
	Metric string `json:"metric" yaml:"metric"`

	// Order selects the visitation order: "random" or "fixed".
	Order string `json:"order" yaml:"order"`

	// PartyMean selects the party-mean signal: "discrete" or "continuous".
	PartyMean string `json:"party_mean" yaml:"party_mean"`

	// Epsilon enables early convergence when positive.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

// ArchiveConfig configures the SQLite run archive.
type ArchiveConfig struct {
	// Enabled turns run archiving on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the archive directory. Defaults to ~/.polisim.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// LoggingConfig configures polisim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables trace logging to .polisim/trace.jsonl.
	// "trace" additionally includes full per-round score snapshots.
	Level string `json:"level" yaml:"level"`
}

// Default returns a PolisimConfig with sensible defaults.
func Default() *PolisimConfig {
	simDefaults := sim.DefaultConfig()
	return &PolisimConfig{
		Simulation: SimulationConfig{
			Rounds:    simDefaults.MaxRounds,
			Theta:     simDefaults.Theta,
			Metric:    string(simDefaults.Metric),
			Order:     string(simDefaults.Order),
			PartyMean: string(simDefaults.PartyMean),
		},
		Archive: ArchiveConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.polisim/config.yaml -> environment variables
func Load() (*PolisimConfig, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".polisim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*PolisimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *PolisimConfig) Validate() error {
	if _, err := c.SimConfig(0); err != nil {
		return err
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// SimConfig converts the simulation section into a validated sim.Config
// with the given seed.
func (c *PolisimConfig) SimConfig(seed int64) (sim.Config, error) {
	metric, err := vecmath.ParseMetric(c.Simulation.Metric)
	if err != nil {
		return sim.Config{}, err
	}

	cfg := sim.Config{
		MaxRounds:          c.Simulation.Rounds,
		Theta:              c.Simulation.Theta,
		Metric:             metric,
		Order:              sim.OrderStrategy(c.Simulation.Order),
		Seed:               seed,
		ConvergenceEpsilon: c.Simulation.Epsilon,
		PartyMean:          sim.PartyMeanMode(c.Simulation.PartyMean),
	}
	if cfg.Order == "" {
		cfg.Order = sim.OrderRandom
	}
	if cfg.PartyMean == "" {
		cfg.PartyMean = sim.PartyMeanDiscrete
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// ArchiveDir returns the archive directory, defaulting to ~/.polisim.
func (c *PolisimConfig) ArchiveDir() (string, error) {
	if c.Archive.Dir != "" {
		return c.Archive.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving archive directory: %w", err)
	}
	return filepath.Join(homeDir, ".polisim"), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *PolisimConfig) {
	if v := os.Getenv("POLISIM_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Rounds = n
		}
	}
	if v := os.Getenv("POLISIM_THETA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Theta = f
		}
	}
	if v := os.Getenv("POLISIM_METRIC"); v != "" {
		config.Simulation.Metric = v
	}
	if v := os.Getenv("POLISIM_ORDER"); v != "" {
		config.Simulation.Order = v
	}
	if v := os.Getenv("POLISIM_PARTY_MEAN"); v != "" {
		config.Simulation.PartyMean = v
	}
	if v := os.Getenv("POLISIM_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Epsilon = f
		}
	}

	if v := os.Getenv("POLISIM_ARCHIVE"); v != "" {
		config.Archive.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("POLISIM_ARCHIVE_DIR"); v != "" {
		config.Archive.Dir = v
	}

	if v := os.Getenv("POLISIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
