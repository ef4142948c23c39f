package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fieldsim/internal/admin"
	"fieldsim/internal/config"
	"fieldsim/internal/logging"
	"fieldsim/internal/sim"
)

var (
	simPrintOnly  bool
	simColor      bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simCSVFile    string
	simAdminAddr  string
	simCycles     int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the discrete cycle scheduler",
	Long:  "simulate runs sense-transmit-log cycles until the cycle budget is reached or every node has depleted its battery, then prints a run summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if simCycles > 0 {
			cfg.MaxCycles = simCycles
		}

		writer, events, cleanup, err := newWriters(cfg, writerOptions{
			printOnly: simPrintOnly,
			color:     simColor,
			tui:       simTUI,
			logFile:   simLogFile,
			csvFile:   simCSVFile,
		})
		if err != nil {
			return err
		}

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				cleanup()
				return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
			}
			tickInterval = d
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := logging.New()
		ctx = logging.NewContext(ctx, log)

		simulator := sim.NewSimulator(fieldID(), cfg, writer, events, tickInterval)

		if simAdminAddr != "" {
			srv := admin.NewServer(simulator)
			go func() {
				log.Info("admin server listening", "addr", simAdminAddr)
				if err := srv.Start(simAdminAddr); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		done := make(chan struct{})
		go func() {
			simulator.Run(ctx)
			close(done)
		}()
		<-done

		cleanup()
		printSummary(simulator.Summary())
		return nil
	},
}

func printSummary(s sim.Summary) {
	fmt.Printf("\nSimulation %s after %d cycles\n", s.Status, s.Cycles)
	fmt.Printf("  records collected: %d\n", s.Records)
	fmt.Printf("  nodes depleted:    %d of %d\n", s.DeadNodes, s.TotalNodes)
	if len(s.LastRecords) > 0 {
		fmt.Println("  last records:")
		for _, rec := range s.LastRecords {
			fmt.Printf("    [%s] node %d: %v\n", rec.Timestamp.Format(time.TimeOnly), rec.NodeID, rec.Readings)
		}
	}
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print readings to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simColor, "color", false, "Colorized human-readable STDOUT output")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Live terminal dashboard")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 2*time.Second, "Cycle tick interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export reading/event logs (JSONL)")
	simulateCmd.Flags().StringVar(&simCSVFile, "csv", "", "Path to export readings as CSV")
	simulateCmd.Flags().IntVar(&simCycles, "cycles", 0, "Override the configured cycle budget (0 uses config)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin", "", "Admin server listen address (e.g. :8080, empty disables)")
}
