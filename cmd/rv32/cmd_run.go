package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rv32edu/toolchain/pkg/device"
	"github.com/rv32edu/toolchain/pkg/isa"
	"github.com/rv32edu/toolchain/pkg/link"
	"github.com/rv32edu/toolchain/pkg/sim"
)

// newRunCmd builds `rv32 run <files...>`: assemble, link, and run a
// program to completion in cfg.HostBatchStep-sized batches — the
// generalized, library-backed descendant of the teacher's cmd/interp
// fetch/execute loop, minus its -d flag (the debug TUI at `rv32 debug`
// replaces single-stepping here). -remote replaces -tty: ecall output
// streams to a loopback console instead of stdout.
func newRunCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "run <file.s> [file.s ...]",
		Short: "assemble, link, and run a program to completion",
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
			return runLinked(linked, remote)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "stream ecall output to a loopback TCP console instead of stdout")
	return cmd
}

func runLinked(linked *link.LinkedProgram, remote bool) error {
	sink := device.Sink(device.NewConsole(os.Stdout))
	if remote {
		rc, err := device.Listen(log)
		if err != nil {
			return fmt.Errorf("remote console: %w", err)
		}
		defer rc.Close()
		log.Infof("waiting for a console to attach at %s", rc.Addr())
		sink = rc
	}
	m := sim.New(linked, sink, cfg)
	traceLabel := color.New(color.FgCyan)
	traceReg := color.New(color.FgYellow)

	for !m.IsDone() {
		for i := 0; i < cfg.HostBatchStep && !m.IsDone(); i++ {
			pc := m.GetPC()
			if verbose {
				w, ferr := m.LoadWord(pc)
				if ferr == nil {
					traceLabel.Fprintf(os.Stderr, "%08x: ", pc)
					fmt.Fprintln(os.Stderr, isa.Disassemble(isa.Word(w)))
				}
			}
			m.Step()
			if verbose {
				traceReg.Fprintf(os.Stderr, "  pc -> %08x\n", m.GetPC())
			}
		}
	}

	if err := m.LastError(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}
