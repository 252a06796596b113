// Package config holds the reserve engine's environment constants, loaded
// with spf13/viper the way cmd/minter/cmd/root.go unmarshals its config,
// but trimmed to fee/logging knobs only: there is no P2P, consensus, RPC,
// or mempool layer here.
package config

import "github.com/vrsc-reserve/engine/types"

// Config is the set of environment constants as loaded from a config
// file; the conversion engine and import processor read the types
// package's compile-time constants, not a Config. Everything a full
// node's config.Config also
// carries (networking, consensus, mempool, RPC) has no counterpart in a
// pure reserve engine.
type Config struct {
	SatoshiDen             int64            `mapstructure:"satoshi_den"`
	MaxReserveCurrencies   int              `mapstructure:"max_reserve_currencies"`
	DefaultPerStepFee      int64            `mapstructure:"default_per_step_fee"`
	DestinationByteDivisor int64            `mapstructure:"destination_byte_divisor"`
	SuccessFee             int64            `mapstructure:"success_fee"`
	MinSuccessFee          int64            `mapstructure:"min_success_fee"`
	ChainID                types.CurrencyID `mapstructure:"-"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogPath   string `mapstructure:"log_path"`
}

// DefaultConfig returns a Config populated from the engine's compiled-in
// constants, the values a fresh RootCmd invocation falls back to before
// any TOML/YAML file is unmarshaled over it.
func DefaultConfig() *Config {
	return &Config{
		SatoshiDen:             types.SatoshiDen,
		MaxReserveCurrencies:   types.MaxReserveCurrencies,
		DefaultPerStepFee:      types.DefaultPerStepFee,
		DestinationByteDivisor: types.DestinationByteDivisor,
		SuccessFee:             types.SuccessFee,
		MinSuccessFee:          types.MinSuccessFee,

		LogLevel:  "info",
		LogFormat: "plain",
		LogPath:   "stdout",
	}
}
