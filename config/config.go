// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Protocol parameters: fee constants in params.go, identical for every node
//   - Node settings: runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime, per-node settings)
// =============================================================================

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Ledger runtime and contract policy
	Ledger LedgerConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// DiscoveryFeeMode controls the minimum-fee check on wallet discovery.
type DiscoveryFeeMode string

const (
	DiscoveryFeeAuto DiscoveryFeeMode = "auto" // enforced for base, skipped for governance
	DiscoveryFeeOn   DiscoveryFeeMode = "on"
	DiscoveryFeeOff  DiscoveryFeeMode = "off"
)

// LedgerConfig holds settings of the message-delivery runtime.
type LedgerConfig struct {
	Variant          string           `conf:"ledger.variant"`      // base or governance, for deployMinter defaults
	DiscoveryFee     DiscoveryFeeMode `conf:"ledger.discoveryfee"` // auto, on, off
	InMemory         bool             `conf:"ledger.inmemory"`     // keep state in memory only
	MaxSteps         int              `conf:"ledger.maxsteps"`     // per Run call
	AddressCacheSize int              `conf:"ledger.addrcache"`    // derived wallet address cache entries
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.jetton
//	macOS:   ~/Library/Application Support/Jetton
//	Windows: %APPDATA%\Jetton
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jetton"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Jetton")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Jetton")
		}
		return filepath.Join(home, "AppData", "Roaming", "Jetton")
	default:
		return filepath.Join(home, ".jetton")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.ChainDataDir(), "ledger")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "jetton.conf")
}
