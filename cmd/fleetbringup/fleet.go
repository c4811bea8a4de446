package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fleetbringup/internal/admin"
	"fleetbringup/internal/config"
	"fleetbringup/internal/logging"
	"fleetbringup/internal/report"
	"fleetbringup/internal/runner"
)

var (
	fleetConfigPath  string
	fleetSchemaPath  string
	fleetServersPath string
	fleetConcurrency int
	fleetSeed        int64
	fleetListenAddr  string
	fleetPrintOnly   bool
	fleetReportFile  string
	fleetCSVFile     string
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Validate a fleet of servers",
	Long:  "fleet runs the configured test plan against every server in a list, bounded by a worker pool, and emits a ranked fleet snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		cfg, err := config.Load(fleetConfigPath, fleetSchemaPath)
		if err != nil {
			return err
		}
		servers, err := readServers(fleetServersPath)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(fleetPrintOnly, fleetReportFile, fleetCSVFile)
		if err != nil {
			return err
		}
		defer cleanup()

		var adminSrv *admin.Server
		if fleetListenAddr != "" {
			adminSrv = admin.NewServer()
			writer = report.NewMultiWriter(writer, adminSrv)
			go func() {
				if err := adminSrv.Start(ctx, fleetListenAddr); err != nil && err != http.ErrServerClosed {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		opts := []runner.FleetOption{
			runner.WithWriter(writer),
			runner.WithFleetSeed(fleetSeed),
		}
		if fleetConcurrency > 0 {
			opts = append(opts, runner.WithConcurrency(fleetConcurrency))
		}
		fleet := runner.NewFleet(cfg, opts...)

		snapshot, err := fleet.Run(ctx, servers)
		if err != nil {
			return err
		}
		if sw, ok := writer.(report.SnapshotWriter); ok {
			if err := sw.WriteSnapshot(snapshot); err != nil {
				return err
			}
		}

		if adminSrv != nil {
			log.Info("fleet run complete, admin server still serving", "addr", fleetListenAddr)
			<-ctx.Done()
		}
		for _, r := range snapshot.Reports {
			if r.OverallStatus == report.StatusFail {
				return fmt.Errorf("%w: at least one server is FAIL", errValidationFailed)
			}
		}
		return nil
	},
}

// readServers parses a server list: one ID per line, blank lines and
// #-comments skipped.
func readServers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var servers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		servers = append(servers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w: server list %q is empty", config.ErrConfig, path)
	}
	return servers, nil
}

func init() {
	fleetCmd.Flags().StringVar(&fleetConfigPath, "config", "config/basic.yaml", "Path to run configuration YAML")
	fleetCmd.Flags().StringVar(&fleetSchemaPath, "schema", "schemas/testplan.cue", "Path to CUE schema file")
	fleetCmd.Flags().StringVar(&fleetServersPath, "servers", "config/servers.txt", "Path to server list file")
	fleetCmd.Flags().IntVar(&fleetConcurrency, "concurrency", 0, "Worker pool size (0 uses the config value or default)")
	fleetCmd.Flags().Int64Var(&fleetSeed, "seed", 0, "Base seed for reproducible telemetry")
	fleetCmd.Flags().StringVar(&fleetListenAddr, "listen", "", "Serve fleet status over HTTP on this address (e.g. :8080)")
	fleetCmd.Flags().BoolVar(&fleetPrintOnly, "print-only", false, "Print reports to STDOUT instead of writing to DB")
	fleetCmd.Flags().StringVar(&fleetReportFile, "report-file", "", "Path to export reports (JSONL)")
	fleetCmd.Flags().StringVar(&fleetCSVFile, "csv-file", "", "Path to export per-test results (CSV)")
}
