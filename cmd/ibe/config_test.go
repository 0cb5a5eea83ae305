package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Curve != "BN254" || cfg.Seed != "1" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ibe.yaml")
	content := `curve: bls12-381
datadir: /data/pkg
verbosity: 4
scrypt_n: 1024
bench_parallel: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Curve != "bls12-381" {
		t.Errorf("Curve = %q, want bls12-381", cfg.Curve)
	}
	if cfg.DataDir != "/data/pkg" {
		t.Errorf("DataDir = %q, want /data/pkg", cfg.DataDir)
	}
	if cfg.Verbosity != 4 || cfg.ScryptN != 1024 || cfg.BenchParallel != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Keys absent from the file keep defaults.
	if cfg.Seed != "1" || cfg.BenchIterations != DefaultConfig().BenchIterations {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if got, want := cfg.KeystorePath(), filepath.Join("/data/pkg", "keystore"); got != want {
		t.Errorf("KeystorePath = %q, want %q", got, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("curv: BN254\n"), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty datadir", func(c *Config) { c.DataDir = "" }, "datadir"},
		{"unknown curve", func(c *Config) { c.Curve = "ed25519" }, "unknown curve"},
		{"plain curve", func(c *Config) { c.Curve = "secp256k1" }, "no pairing"},
		{"verbosity", func(c *Config) { c.Verbosity = 9 }, "verbosity"},
		{"scrypt not power of two", func(c *Config) { c.ScryptN = 1000 }, "scrypt_n"},
		{"scrypt one", func(c *Config) { c.ScryptN = 1 }, "scrypt_n"},
		{"scrypt above cap", func(c *Config) { c.ScryptN = 1 << 22 }, "scrypt_n"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"iterations", func(c *Config) { c.BenchIterations = 0 }, "iterations"},
		{"parallel", func(c *Config) { c.BenchParallel = -1 }, "parallelism"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: Validate() = %v, want error containing %q", tt.name, err, tt.want)
		}
	}
}

func TestConfigLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ibe.yaml")
	if err := os.WriteFile(path, []byte("verbosity: 1\nlog_level: Debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.Level(); got != slog.LevelDebug {
		t.Fatalf("Level() = %v, want DEBUG", got)
	}
	cfg.LogLevel = ""
	if got := cfg.Level(); got != slog.LevelError {
		t.Fatalf("Level() from verbosity 1 = %v, want ERROR", got)
	}
}
