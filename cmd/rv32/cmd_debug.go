package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rv32edu/toolchain/internal/debugtui"
	"github.com/rv32edu/toolchain/pkg/device"
	"github.com/rv32edu/toolchain/pkg/link"
	"github.com/rv32edu/toolchain/pkg/sim"
)

// newDebugCmd builds `rv32 debug <files...>`: assemble, link, and hand
// the resulting Simulator to the interactive Bubble Tea debugger —
// the generalized replacement for the teacher's cmd/interp `-d` flag,
// which only paused on fmt.Scanln() between steps.
func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file.s> [file.s ...]",
		Short: "assemble, link, and interactively step a program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programs, err := assembleFiles(args)
			if err != nil {
				return err
			}
			linked, err := link.Link(programs, cfg)
			if err != nil {
				return fmt.Errorf("link failed: %w", err)
			}
			m := sim.New(linked, device.NewConsole(os.Stdout), cfg)
			return debugtui.Run(m, linked)
		},
	}
}
