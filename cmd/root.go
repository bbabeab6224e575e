package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd runs the API server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront REST API",
	Long:          "Storefront serves the catalog, cart and checkout JSON API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
