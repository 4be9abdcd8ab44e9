package main

import (
	"fmt"
	"os"

	"github.com/rv32edu/toolchain/pkg/asm"
)

// unitResult is one file's assembly outcome, kept alongside its input
// index so results can be fanned back in program order.
type unitResult struct {
	index int
	path  string
	prog  *asm.Program
	errs  []error
}

// assembleFiles assembles every file concurrently — the teacher's
// assembler-as-goroutine-over-a-channel shape (pkg/asm.StartAssembler),
// relocated here since spec.md's assemble seam is a direct synchronous
// call, not a stream (SPEC_FULL.md §5) — and returns results in the
// order the files were given.
func assembleFiles(paths []string) ([]*asm.Program, error) {
	results := make(chan unitResult, len(paths))
	for i, p := range paths {
		go func(i int, path string) {
			src, err := os.ReadFile(path)
			if err != nil {
				results <- unitResult{index: i, path: path, errs: []error{err}}
				return
			}
			prog, errs := asm.Assemble(string(src))
			results <- unitResult{index: i, path: path, prog: prog, errs: errs}
		}(i, p)
	}

	ordered := make([]unitResult, len(paths))
	for range paths {
		r := <-results
		ordered[r.index] = r
	}

	programs := make([]*asm.Program, len(paths))
	var failed bool
	for i, r := range ordered {
		if len(r.errs) > 0 {
			failed = true
			for _, e := range r.errs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", r.path, e)
			}
			continue
		}
		r.prog.Unit = i
		programs[i] = r.prog
	}
	if failed {
		return nil, fmt.Errorf("assembly failed for one or more files")
	}
	return programs, nil
}
