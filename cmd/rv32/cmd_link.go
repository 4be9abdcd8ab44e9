package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rv32edu/toolchain/pkg/link"
)

// newLinkCmd builds `rv32 link <files...> -o out`: assemble every file
// (concurrently, via assembleFiles — the relocated form of the teacher's
// StartAssembler goroutine-over-channel shape), link the results, and
// write the LinkedProgram to outPath.
func newLinkCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "link <file.s> [file.s ...]",
		Short: "assemble and link one or more files into a single program",
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
			if outPath == "" {
				outPath = "a.out.json"
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			if err := enc.Encode(linked); err != nil {
				return err
			}
			log.Infof("wrote %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (default a.out.json)")
	return cmd
}
