package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cxg1987/specbench/internal/config"
	"github.com/cxg1987/specbench/internal/report"
	"github.com/cxg1987/specbench/internal/sample"
	"github.com/cxg1987/specbench/internal/speccpu"
	"github.com/cxg1987/specbench/internal/vm"
	"github.com/spf13/cobra"
)

var (
	flagSubset string
	flagKeep   bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the suite on the configured target",
		RunE:  runSuite,
	}
	cmd.Flags().StringVar(&flagSubset, "subset", "", "benchmark subset (int, fp, all)")
	cmd.Flags().BoolVar(&flagKeep, "keep", false, "leave the suite on the target after the run")
	return cmd
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagSubset != "" {
		cfg.Benchmark.Subset = flagSubset
	}
	subset, err := speccpu.ParseSubset(cfg.Benchmark.Subset)
	if err != nil {
		return err
	}

	ctx := context.Background()

	machine, err := vm.Connect(ctx, &cfg.Target)
	if err != nil {
		return fmt.Errorf("connecting to target: %w", err)
	}
	defer machine.Close()

	bench := &speccpu.Benchmark{
		DataDir: cfg.Benchmark.DataDir,
		Subset:  subset,
	}

	fmt.Printf("Preparing SPEC CPU2006 on %s...\n", machine.MachineType())
	if err := bench.Prepare(ctx, machine); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	fmt.Printf("Running subset %q with %d threads (this takes hours at reference size)...\n",
		subset, machine.NumCPUs())
	start := time.Now()
	samples, err := bench.Run(ctx, machine)
	if err != nil {
		// The suite stays on the target for inspection; rerun with a
		// fixed setup or clean up by hand.
		return fmt.Errorf("run: %w", err)
	}
	duration := time.Since(start)

	runDir, err := sample.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	meta := &sample.RunMeta{
		MachineType: machine.MachineType(),
		NumCPUs:     machine.NumCPUs(),
		Subset:      string(subset),
		DurationS:   int(duration.Seconds()),
	}
	if err := sample.WriteRun(runDir, meta, samples); err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	if flagKeep {
		log.Printf("keeping suite on target (--keep)")
	} else if err := bench.Cleanup(ctx, machine); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fmt.Println("\n--- Samples ---")
	return report.PrintSamples(os.Stdout, samples)
}
