package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/eth2030/pairing/crypto"
	"github.com/eth2030/pairing/keystore"
	"github.com/eth2030/pairing/log"
)

// Config holds all settings of the ibe command. Values come from defaults,
// then the YAML file named by --config, then command-line flags.
type Config struct {
	// Curve names the pairing curve used by setup (e.g. BN254, BLS12_381).
	Curve string `yaml:"curve"`

	// DataDir is the root directory for the keystore database.
	DataDir string `yaml:"datadir"`

	// Seed is hashed to G1 to obtain the system generator P.
	Seed string `yaml:"seed"`

	// Verbosity is the log level 0-5 (0=silent, 5=trace).
	Verbosity int `yaml:"verbosity"`

	// LogLevel names the log level (trace, debug, info, warn, error, crit)
	// and takes precedence over Verbosity when set.
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, receives JSON logs with size-based rotation.
	LogFile string `yaml:"log_file"`

	// ScryptN is the scrypt cost used to seal keystore records.
	ScryptN int `yaml:"scrypt_n"`

	// BenchIterations is the number of pairings per bench phase.
	BenchIterations int `yaml:"bench_iterations"`

	// BenchParallel is the number of goroutines sharing one table in bench.
	BenchParallel int `yaml:"bench_parallel"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Curve:           "BN254",
		DataDir:         defaultDataDir(),
		Seed:            "1",
		Verbosity:       3,
		ScryptN:         262144,
		BenchIterations: 100,
		BenchParallel:   4,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	id, err := crypto.ParseCurveID(c.Curve)
	if err != nil {
		return fmt.Errorf("config: unknown curve %q", c.Curve)
	}
	if curve, err := crypto.Init(id); err != nil || !curve.HasPairing() {
		return fmt.Errorf("config: curve %q has no pairing", c.Curve)
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: invalid verbosity: %d", c.Verbosity)
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: log_level: %w", err)
		}
	}
	// scrypt requires N > 1 and a power of two.
	if c.ScryptN < 2 || c.ScryptN&(c.ScryptN-1) != 0 {
		return fmt.Errorf("config: scrypt_n must be a power of two > 1: %d", c.ScryptN)
	}
	if c.ScryptN > keystore.MaxScryptN {
		return fmt.Errorf("config: scrypt_n above %d: %d", keystore.MaxScryptN, c.ScryptN)
	}
	if c.BenchIterations <= 0 {
		return fmt.Errorf("config: invalid bench iterations: %d", c.BenchIterations)
	}
	if c.BenchParallel <= 0 {
		return fmt.Errorf("config: invalid bench parallelism: %d", c.BenchParallel)
	}
	return nil
}

// Level returns the configured log level. LogLevel wins over Verbosity;
// call Validate first.
func (c *Config) Level() slog.Level {
	if c.LogLevel != "" {
		if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
			return lvl
		}
	}
	return log.LevelForVerbosity(c.Verbosity)
}

// KeystorePath returns the keystore database directory.
func (c *Config) KeystorePath() string {
	return filepath.Join(c.DataDir, "keystore")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ibe"
	}
	return filepath.Join(home, ".ibe")
}
