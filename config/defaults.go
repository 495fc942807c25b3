package config

// DefaultMaxSteps bounds the number of transactions a single Run executes.
const DefaultMaxSteps = 10000

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8547,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Ledger: LedgerConfig{
			Variant:          "base",
			DiscoveryFee:     DiscoveryFeeAuto,
			MaxSteps:         DefaultMaxSteps,
			AddressCacheSize: 4096,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.RPC.Port = 8647
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
