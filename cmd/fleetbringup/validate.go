package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fleetbringup/internal/config"
	"fleetbringup/internal/logging"
	"fleetbringup/internal/report"
	"fleetbringup/internal/runner"
)

var (
	validateConfigPath string
	validateSchemaPath string
	validateServerID   string
	validateSeed       int64
	validatePrintOnly  bool
	validateReportFile string
	validateCSVFile    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a single server",
	Long:  "validate runs the configured test plan against one server and reports PASS, WARN, or FAIL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logging.NewContext(context.Background(), logging.New(verbose))

		cfg, err := config.Load(validateConfigPath, validateSchemaPath)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(validatePrintOnly, validateReportFile, validateCSVFile)
		if err != nil {
			return err
		}
		defer cleanup()

		orch := runner.NewOrchestrator(validateServerID, cfg, runner.WithSeed(validateSeed))
		rep, err := orch.Run(ctx)
		if err != nil {
			return err
		}
		if err := writer.Write(rep); err != nil {
			return err
		}
		if rep.OverallStatus == report.StatusFail {
			return fmt.Errorf("%w: %s is %s", errValidationFailed, rep.ServerID, rep.OverallStatus)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "config/basic.yaml", "Path to run configuration YAML")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "schemas/testplan.cue", "Path to CUE schema file")
	validateCmd.Flags().StringVar(&validateServerID, "server", "svr-001", "Server ID to validate")
	validateCmd.Flags().Int64Var(&validateSeed, "seed", 0, "Base seed for reproducible telemetry")
	validateCmd.Flags().BoolVar(&validatePrintOnly, "print-only", false, "Print reports to STDOUT instead of writing to DB")
	validateCmd.Flags().StringVar(&validateReportFile, "report-file", "", "Path to export reports (JSONL)")
	validateCmd.Flags().StringVar(&validateCSVFile, "csv-file", "", "Path to export per-test results (CSV)")
}
