package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldsim/internal/sim"
)

var latestInput string

// Display columns of the CSV contract, paired with their reading keys.
var latestColumns = []struct {
	Label string
	Key   string
}{
	{"Temperature", "temperature"},
	{"Moisture", "moisture"},
	{"Humidity", "humidity"},
	{"Light", "light"},
	{"Ph", "ph"},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent reading from a CSV export",
	Long:  "latest loads a CSV reading log and prints the row with the newest timestamp. Columns the latest row never reported show N/A.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := sim.LoadCSV(latestInput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot read %s: %v\n", latestInput, err)
			return nil
		}
		rec, ok := sim.LatestRecord(records)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: %s holds no readings yet\n", latestInput)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Timestamp:\t%s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
		for _, col := range latestColumns {
			if v, found := rec.Readings[col.Key]; found {
				fmt.Fprintf(tw, "%s:\t%.2f\n", col.Label, v)
			} else {
				fmt.Fprintf(tw, "%s:\tN/A\n", col.Label)
			}
		}
		return tw.Flush()
	},
}

func init() {
	latestCmd.Flags().StringVar(&latestInput, "input", "readings.csv", "Path to CSV reading log")
}
