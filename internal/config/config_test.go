package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/polisim/internal/sim"
	"github.com/nvandessel/polisim/internal/vecmath"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Simulation.Rounds != 5 {
		t.Errorf("Rounds = %d, want 5", cfg.Simulation.Rounds)
	}
	if cfg.Simulation.Theta != 0.1 {
		t.Errorf("Theta = %v, want 0.1", cfg.Simulation.Theta)
	}
	if cfg.Simulation.Metric != "cosine" {
		t.Errorf("Metric = %q, want cosine", cfg.Simulation.Metric)
	}
	if cfg.Simulation.Order != "random" {
		t.Errorf("Order = %q, want random", cfg.Simulation.Order)
	}
	if cfg.Simulation.PartyMean != "discrete" {
		t.Errorf("PartyMean = %q, want discrete", cfg.Simulation.PartyMean)
	}
	if cfg.Archive.Enabled {
		t.Error("Archive.Enabled should default to false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
simulation:
  rounds: 12
  theta: 0.25
  metric: euclidean
  epsilon: 0.001
archive:
  enabled: true
  dir: /tmp/polisim-archive
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Simulation.Rounds != 12 {
		t.Errorf("Rounds = %d, want 12", cfg.Simulation.Rounds)
	}
	if cfg.Simulation.Theta != 0.25 {
		t.Errorf("Theta = %v, want 0.25", cfg.Simulation.Theta)
	}
	if cfg.Simulation.Metric != "euclidean" {
		t.Errorf("Metric = %q, want euclidean", cfg.Simulation.Metric)
	}
	if cfg.Simulation.Epsilon != 0.001 {
		t.Errorf("Epsilon = %v, want 0.001", cfg.Simulation.Epsilon)
	}
	// Unset fields keep defaults
	if cfg.Simulation.Order != "random" {
		t.Errorf("Order = %q, want random (default)", cfg.Simulation.Order)
	}
	if !cfg.Archive.Enabled {
		t.Error("Archive.Enabled should be true")
	}
	if cfg.Archive.Dir != "/tmp/polisim-archive" {
		t.Errorf("Archive.Dir = %q", cfg.Archive.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("simulation: [not a map"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLISIM_ROUNDS", "20")
	t.Setenv("POLISIM_THETA", "0.3")
	t.Setenv("POLISIM_METRIC", "euclidean")
	t.Setenv("POLISIM_ORDER", "fixed")
	t.Setenv("POLISIM_PARTY_MEAN", "continuous")
	t.Setenv("POLISIM_EPSILON", "0.01")
	t.Setenv("POLISIM_ARCHIVE", "true")
	t.Setenv("POLISIM_ARCHIVE_DIR", "/var/lib/polisim")
	t.Setenv("POLISIM_LOG_LEVEL", "trace")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Simulation.Rounds != 20 {
		t.Errorf("Rounds = %d, want 20", cfg.Simulation.Rounds)
	}
	if cfg.Simulation.Theta != 0.3 {
		t.Errorf("Theta = %v, want 0.3", cfg.Simulation.Theta)
	}
	if cfg.Simulation.Metric != "euclidean" {
		t.Errorf("Metric = %q, want euclidean", cfg.Simulation.Metric)
	}
	if cfg.Simulation.Order != "fixed" {
		t.Errorf("Order = %q, want fixed", cfg.Simulation.Order)
	}
	if cfg.Simulation.PartyMean != "continuous" {
		t.Errorf("PartyMean = %q, want continuous", cfg.Simulation.PartyMean)
	}
	if cfg.Simulation.Epsilon != 0.01 {
		t.Errorf("Epsilon = %v, want 0.01", cfg.Simulation.Epsilon)
	}
	if !cfg.Archive.Enabled {
		t.Error("Archive.Enabled should be true")
	}
	if cfg.Archive.Dir != "/var/lib/polisim" {
		t.Errorf("Archive.Dir = %q", cfg.Archive.Dir)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q, want trace", cfg.Logging.Level)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("POLISIM_ROUNDS", "not-a-number")
	t.Setenv("POLISIM_THETA", "also-not")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Simulation.Rounds != 5 {
		t.Errorf("Rounds = %d, want default 5", cfg.Simulation.Rounds)
	}
	if cfg.Simulation.Theta != 0.1 {
		t.Errorf("Theta = %v, want default 0.1", cfg.Simulation.Theta)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PolisimConfig)
		wantErr bool
	}{
		{"default valid", func(c *PolisimConfig) {}, false},
		{"zero rounds", func(c *PolisimConfig) { c.Simulation.Rounds = 0 }, true},
		{"negative theta", func(c *PolisimConfig) { c.Simulation.Theta = -0.1 }, true},
		{"bad metric", func(c *PolisimConfig) { c.Simulation.Metric = "manhattan" }, true},
		{"bad order", func(c *PolisimConfig) { c.Simulation.Order = "sorted" }, true},
		{"bad party mean", func(c *PolisimConfig) { c.Simulation.PartyMean = "median" }, true},
		{"bad log level", func(c *PolisimConfig) { c.Logging.Level = "verbose" }, true},
		{"empty log level ok", func(c *PolisimConfig) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimConfig(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Metric = "euclidean"
	cfg.Simulation.Epsilon = 0.005

	sc, err := cfg.SimConfig(99)
	if err != nil {
		t.Fatalf("SimConfig: %v", err)
	}
	if sc.Seed != 99 {
		t.Errorf("Seed = %d, want 99", sc.Seed)
	}
	if sc.Metric != vecmath.MetricEuclidean {
		t.Errorf("Metric = %v, want euclidean", sc.Metric)
	}
	if sc.ConvergenceEpsilon != 0.005 {
		t.Errorf("ConvergenceEpsilon = %v", sc.ConvergenceEpsilon)
	}
	if sc.Order != sim.OrderRandom {
		t.Errorf("Order = %v, want random", sc.Order)
	}
}

func TestArchiveDir(t *testing.T) {
	cfg := Default()
	cfg.Archive.Dir = "/explicit/dir"

	dir, err := cfg.ArchiveDir()
	if err != nil {
		t.Fatalf("ArchiveDir: %v", err)
	}
	if dir != "/explicit/dir" {
		t.Errorf("ArchiveDir = %q, want /explicit/dir", dir)
	}

	cfg.Archive.Dir = ""
	dir, err = cfg.ArchiveDir()
	if err != nil {
		t.Fatalf("ArchiveDir (default): %v", err)
	}
	if filepath.Base(dir) != ".polisim" {
		t.Errorf("default ArchiveDir = %q, want ~/.polisim", dir)
	}
}
