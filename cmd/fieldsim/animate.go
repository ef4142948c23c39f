package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fieldsim/internal/config"
	"fieldsim/internal/logging"
	"fieldsim/internal/sim"
)

var (
	animConfigPath string
	animSchemaPath string
	animPrintOnly  bool
	animColor      bool
	animTUI        bool
	animLogFile    string
	animDuration   time.Duration
	animFPS        int
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Run the continuous frame loop",
	Long:  "animate runs the continuous variant: nodes refresh readings on a timer and send packets that travel to the base station at a fixed speed. There is no energy model, so it runs until interrupted or the duration elapses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(animConfigPath, animSchemaPath)
		if err != nil {
			return err
		}
		if animFPS > 0 {
			cfg.Animation.FrameRate = animFPS
		}

		writer, _, cleanup, err := newWriters(cfg, writerOptions{
			printOnly: animPrintOnly,
			color:     animColor,
			tui:       animTUI,
			logFile:   animLogFile,
		})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if animDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, animDuration)
			defer cancel()
		}
		ctx = logging.NewContext(ctx, logging.New())

		loop := sim.NewLoop(fieldID(), cfg, writer)
		loop.Run(ctx)
		return nil
	},
}

func init() {
	animateCmd.Flags().StringVar(&animConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	animateCmd.Flags().StringVar(&animSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	animateCmd.Flags().BoolVar(&animPrintOnly, "print-only", false, "Print readings to STDOUT instead of writing to DB")
	animateCmd.Flags().BoolVar(&animColor, "color", false, "Colorized human-readable STDOUT output")
	animateCmd.Flags().BoolVar(&animTUI, "tui", false, "Live terminal dashboard")
	animateCmd.Flags().IntVar(&animFPS, "fps", 0, "Override the configured frame rate (0 uses config)")
	animateCmd.Flags().StringVar(&animLogFile, "log-file", "", "Path to export reading logs (JSONL)")
	animateCmd.Flags().DurationVar(&animDuration, "duration", 0, "Stop after this duration (0 runs until interrupted)")
}
