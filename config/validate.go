package config

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}

	if _, err := jetton.ParseVariant(cfg.Ledger.Variant); err != nil {
		return fmt.Errorf("ledger.variant: %w", err)
	}

	if cfg.Ledger.DiscoveryFee == "" {
		cfg.Ledger.DiscoveryFee = DiscoveryFeeAuto
	}
	switch cfg.Ledger.DiscoveryFee {
	case DiscoveryFeeAuto, DiscoveryFeeOn, DiscoveryFeeOff:
	default:
		return fmt.Errorf("ledger.discoveryfee must be auto, on, or off")
	}

	if cfg.Ledger.MaxSteps <= 0 {
		cfg.Ledger.MaxSteps = DefaultMaxSteps
	}
	if cfg.Ledger.AddressCacheSize < 0 {
		return fmt.Errorf("ledger.addrcache must not be negative")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}

	return nil
}
