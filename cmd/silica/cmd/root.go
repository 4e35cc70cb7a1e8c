// Package cmd provides the command-line interface for Silica.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "silica",
	Short: "Silica CLI tool can perform common tasks related to running " +
		"and inspecting simulations built with Silica.",
	Long: `Silica CLI tool can perform common tasks related to running ` +
		`and inspecting simulations built with Silica. Currently, it ` +
		`supports inspecting simulation recording files.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
