package device

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsolePrintsToUnderlyingWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.PrintString("hello ")
	c.PrintInt(42)
	c.PrintChar('!')
	require.Equal(t, "hello 42!", buf.String())
}

func TestDiscardDropsEverything(t *testing.T) {
	require.NotPanics(t, func() {
		Discard.PrintString("x")
		Discard.PrintInt(1)
		Discard.PrintChar('z')
	})
}
