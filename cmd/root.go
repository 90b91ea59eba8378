package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "specbench",
		Short: "Run SPEC CPU2006 on a remote machine and collect its scores",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "specbench.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newListCmd())
	return root
}
