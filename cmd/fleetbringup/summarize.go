package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fleetbringup/internal/report"
)

var summarizeInput string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a report log file",
	Long:  "summarize reads validation reports from a JSONL file and prints the aggregated fleet snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if summarizeInput == "" {
			return fmt.Errorf("input file required")
		}
		reports, err := report.ReadReportsFile(summarizeInput)
		if err != nil {
			return err
		}
		snapshot := report.Summarize(reports, time.Now().UTC())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeInput, "input", "", "Path to report log file (JSONL)")
	summarizeCmd.MarkFlagRequired("input")
}
