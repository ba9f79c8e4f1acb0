// Package daemon hosts the long-running simulator process: configuration,
// service wiring, and the HTTP server lifecycle.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rbxsim/rbxsim/internal/app/funzone"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StorageConfig controls where the state database lives.
type StorageConfig struct {
	// Dir overrides the default state directory (~/.rbxsim).
	Dir string `toml:"dir"`
}

// WalletConfig controls ledger policy.
type WalletConfig struct {
	// ManualCeiling is the largest amount accepted for manual transactions.
	ManualCeiling int64 `toml:"manual_ceiling"`
}

// Config is the full daemon configuration, loaded from
// ~/.rbxsim/config.toml when present.
type Config struct {
	API     APIConfig      `toml:"api"`
	Storage StorageConfig  `toml:"storage"`
	Wallet  WalletConfig   `toml:"wallet"`
	FunZone funzone.Config `toml:"funzone"`
}

// DefaultConfig returns the out-of-box configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8787,
			Metrics: true,
		},
		Wallet: WalletConfig{
			ManualCeiling: 100000,
		},
		FunZone: funzone.DefaultConfig(),
	}
}

// Load reads the configuration file at path, overlaying the defaults.
// A missing file is not an error — the defaults apply.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Home returns the state directory, creating it if needed. RBXSIM_HOME
// overrides the default ~/.rbxsim.
func Home() (string, error) {
	dir := os.Getenv("RBXSIM_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".rbxsim")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// ConfigPath returns the configuration file location inside the state dir.
func ConfigPath(stateDir string) string {
	return filepath.Join(stateDir, "config.toml")
}
