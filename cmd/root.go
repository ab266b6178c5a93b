// Package cmd contains the lsh-core command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lsh-core",
	Short: "Smart home wall panel controller",
	Long: `lsh-core drives a wall panel: it samples the panel buttons, classifies
clicks, switches the local relays and talks to the home gateway over a
serial or WebSocket link. Network-mediated clicks are delegated to the
gateway and fall back to local action when it does not answer in time.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/lsh/panel.toml", "Configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
