package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrDefaultReturnsDefaultForNil(t *testing.T) {
	cfg := OrDefault(nil)
	require.Equal(t, Default(), cfg)
}

func TestOrDefaultPassesThroughNonNil(t *testing.T) {
	custom := &Config{StackGuardBytes: 1}
	require.Same(t, custom, OrDefault(custom))
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rv32.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
		stack_guard_bytes = 4096

		[segments]
		heap_begin = 0x20000000
	`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(4096), cfg.StackGuardBytes)
	require.Equal(t, uint32(0x20000000), cfg.Segments.HeapBegin)
	require.Equal(t, Default().Segments.StackBegin, cfg.Segments.StackBegin)
	require.Equal(t, Default().HostBatchStep, cfg.HostBatchStep)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
