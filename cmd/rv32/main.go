// Command rv32 is the reference CLI host for the toolchain: assemble,
// link, run, and interactively debug RV32I assembly files. It is a
// consumer of pkg/isa, pkg/asm, pkg/link, and pkg/sim exactly like any
// other host — it holds no core state of its own.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rv32edu/toolchain/internal/config"
	"github.com/rv32edu/toolchain/internal/rvlog"
)

var (
	log        *logrus.Logger
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	root := &cobra.Command{
		Use:   "rv32",
		Short: "assemble, link, and run RV32I programs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = rvlog.New(verbose)
			if configPath == "" {
				cfg = config.Default()
				return nil
			}
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(newAsmCmd(), newLinkCmd(), newRunCmd(), newDebugCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
