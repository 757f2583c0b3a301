// Package cli provides the certauth command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "certauth",
	Short: "Certificate-chain passwordless authentication tooling",
	Long: `Certificate-chain passwordless authentication tooling.

Certauth validates compact signed tokens whose headers carry an x5c
certificate chain: the signature is checked against the chain's leaf key,
the chain is validated to a trusted root, and a stable account identity is
derived from the leaf public key. Use this CLI to inspect tokens and
diagnose trust configuration.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}
