package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cxg1987/specbench/internal/report"
	"github.com/cxg1987/specbench/internal/speccpu"
	"github.com/spf13/cobra"
)

var (
	flagMachineType string
	flagCPUs        int
	flagParseFormat string
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [result-log]",
		Short: "Parse a result log pulled off a host by hand",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text []byte
			var err error
			if len(args) > 0 {
				text, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading result log: %w", err)
				}
			} else {
				text, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			samples, err := speccpu.ParseReport(string(text), parseMetadata(flagMachineType, flagCPUs))
			if err != nil {
				return err
			}

			if flagParseFormat == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(samples)
			}
			return report.PrintSamples(os.Stdout, samples)
		},
	}
	cmd.Flags().StringVar(&flagMachineType, "machine-type", "", "machine type recorded in sample metadata")
	cmd.Flags().IntVar(&flagCPUs, "cpus", 0, "cpu count recorded in sample metadata")
	cmd.Flags().StringVar(&flagParseFormat, "format", "table", "output format (table, json)")
	return cmd
}

func parseMetadata(machineType string, cpus int) map[string]string {
	if machineType == "" {
		machineType = "unknown"
	}
	return map[string]string{
		"machine_type": machineType,
		"num_cpus":     strconv.Itoa(cpus),
	}
}
