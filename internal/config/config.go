// Package config holds the toolchain's runtime-tunable constants: memory
// segment base addresses, stack/heap sizing, and the CLI host's batch-step
// cap. Everything has a compiled-in default and is optionally overridden
// by a TOML file (spec.md §6's "default values, adjustable at build
// time" — this expansion makes them adjustable at run time too).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Segments names the four fixed memory regions spec.md §3/§4.5 assume.
type Segments struct {
	TextBegin   uint32 `toml:"text_begin"`
	StaticBegin uint32 `toml:"static_begin"`
	HeapBegin   uint32 `toml:"heap_begin"`
	StackBegin  uint32 `toml:"stack_begin"`
}

// Config is the toolchain's full set of runtime tunables.
type Config struct {
	Segments Segments `toml:"segments"`

	// StackGuardBytes is the minimum gap sbrk must leave between the
	// heap pointer and StackBegin (Open Question decision, DESIGN.md).
	StackGuardBytes uint32 `toml:"stack_guard_bytes"`

	// HostBatchStep caps how many steps `rv32 run` executes per batch
	// before yielding back to the host loop
	// (spec.md §5's host-owned stepping loop).
	HostBatchStep int `toml:"host_batch_step"`
}

// Default returns the toolchain's compiled-in configuration.
func Default() *Config {
	return &Config{
		Segments: Segments{
			TextBegin:   0x00000000,
			StaticBegin: 0x10000000,
			HeapBegin:   0x10040000,
			StackBegin:  0x7FFFFFF0,
		},
		StackGuardBytes: 64 * 1024,
		HostBatchStep:   10000,
	}
}

// Load reads a TOML file at path and overlays it on top of Default(),
// so a file only needs to set the fields it wants to change.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// OrDefault returns cfg, or a fresh Default() if cfg is nil — the "nil
// means use defaults" convention shared by pkg/link and pkg/sim.
func OrDefault(cfg *Config) *Config {
	if cfg == nil {
		return Default()
	}
	return cfg
}
