package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldsim",
	Short: "Energy-aware sensor field simulation toolkit",
	Long:  "fieldsim simulates a wireless sensor network on an agricultural field: discrete sense-transmit cycles with an energy model, a continuous animation loop, and replay utilities for recorded readings.",
}

// fieldID returns the field identity used to tag rows and events.
func fieldID() string {
	if id := os.Getenv("FIELD_ID"); id != "" {
		return id
	}
	return "field-01"
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(animateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(latestCmd)
}
