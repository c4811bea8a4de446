package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleetbringup/internal/config"
)

// errValidationFailed marks a run where at least one server finished FAIL.
// Distinguished from config errors by exit code.
var errValidationFailed = errors.New("validation failed")

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fleetbringup",
	Short: "Server hardware validation toolkit",
	Long:  "fleetbringup runs config-driven hardware validation plans against simulated server subsystems, on one server or across a fleet.",
}

// Execute runs the root command. Exit codes: 1 for a FAIL verdict,
// 2 for configuration errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, config.ErrConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fleetCmd)
	rootCmd.AddCommand(summarizeCmd)
}
