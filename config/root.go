package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loaded is the process-wide Config populated by RootCmd's
// PersistentPreRun, mirroring cmd/minter/cmd/root.go's package-level cfg
// variable.
var loaded = DefaultConfig()

// Loaded returns the process-wide Config. Outside of RootCmd it is just
// DefaultConfig().
func Loaded() *Config { return loaded }

// RootCmd is the demo CLI's root command. Its PersistentPreRun reads an
// optional config file path from the --config flag, viper-unmarshals it
// over DefaultConfig(), and panics on a malformed file the same way
// cmd/minter/cmd/root.go does for an unreadable node config.
var RootCmd = &cobra.Command{
	Use:   "reserveengine",
	Short: "Reserve currency conversion and transfer engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		loaded = DefaultConfig()
		if path == "" {
			return
		}

		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic(err)
		}
		if err := v.Unmarshal(loaded); err != nil {
			panic(err)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "path to a TOML/YAML config file")
}
