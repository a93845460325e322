package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modserve",
	Short: "Modserve runs and inspects fieldbus server devices.",
	Long: `Modserve runs and inspects fieldbus server devices. The serve ` +
		`subcommand starts a demonstration device that publishes data into ` +
		`its process image and serves loopback requests, with the HTTP ` +
		`monitor attached.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
