package cmd

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the allocation API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
