package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "salesops",
	Short: "Order and inventory management for the card resale operation",
	Long: `salesops manages customers, orders, stock allocation and the
analysis export feed for the card resale operation. Run the "api"
subcommand for the HTTP server or "worker" for the background jobs.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
