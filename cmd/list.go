package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cxg1987/specbench/internal/config"
	"github.com/cxg1987/specbench/internal/speccpu"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the configured target and what a run would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			subset, err := speccpu.ParseSubset(cfg.Benchmark.Subset)
			if err != nil {
				return err
			}

			fmt.Println("Target:")
			switch cfg.Target.Kind {
			case "ssh":
				fmt.Printf("  ssh %s@%s:%d (scratch: %s)\n",
					cfg.Target.SSH.User, cfg.Target.SSH.Host, cfg.Target.SSH.Port, cfg.Target.SSH.ScratchDir)
			case "docker":
				fmt.Printf("  docker %s (scratch: %s)\n", cfg.Target.Docker.Image, cfg.Target.Docker.ScratchDir)
			}

			fmt.Printf("\nSubset: %s\n", subset)
			fmt.Println("Result logs:")
			for _, log := range subset.LogFiles() {
				fmt.Printf("  - %s\n", log)
			}

			archive := filepath.Join(cfg.Benchmark.DataDir, speccpu.Tarball)
			if _, err := os.Stat(archive); err != nil {
				fmt.Printf("\nSuite archive: %s (missing, stage it before running)\n", archive)
			} else {
				fmt.Printf("\nSuite archive: %s (staged)\n", archive)
			}
			return nil
		},
	}
}
