package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rv32edu/toolchain/pkg/asm"
)

// newAsmCmd builds `rv32 asm <files...>`, the generalized form of the
// teacher's `cmd/asm` (which streamed one file through StartAssembler):
// this assembles each file independently and prints a listing, without
// linking them together.
func newAsmCmd() *cobra.Command {
	var listing bool
	cmd := &cobra.Command{
		Use:   "asm <file.s> [file.s ...]",
		Short: "assemble one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					failed = true
					continue
				}
				prog, errs := asm.Assemble(string(src))
				if len(errs) > 0 {
					for _, e := range errs {
						fmt.Fprintf(os.Stderr, "%s: %s\n", path, e)
					}
					failed = true
					continue
				}
				if listing {
					fmt.Printf("%s:\n%s", path, prog.Listing())
				} else {
					fmt.Printf("%s: ok\n", path)
				}
			}
			if failed {
				return fmt.Errorf("assembly failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listing, "listing", true, "print each instruction's address, encoding, and disassembly")
	return cmd
}
