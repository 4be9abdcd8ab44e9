package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandNop(t *testing.T) {
	out, err := expandPseudo(1, "nop", nil)
	require.NoError(t, err)
	require.Equal(t, []realInstr{{Line: 1, Mnemonic: "addi", Args: []string{"x0", "x0", "0"}}}, out)
}

func TestExpandMv(t *testing.T) {
	out, err := expandPseudo(1, "mv", []string{"x1", "x2"})
	require.NoError(t, err)
	require.Equal(t, "addi", out[0].Mnemonic)
	require.Equal(t, []string{"x1", "x2", "0"}, out[0].Args)
}

func TestExpandLiSmallFitsSingleAddi(t *testing.T) {
	out, err := expandLi(1, "x1", "5")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "addi", out[0].Mnemonic)
}

func TestExpandLiLargeNeedsLuiAddi(t *testing.T) {
	out, err := expandLi(1, "x1", "0x12345678")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "lui", out[0].Mnemonic)
	require.Equal(t, "addi", out[1].Mnemonic)
}

func TestExpandWrongOperandCountErrors(t *testing.T) {
	_, err := expandPseudo(1, "mv", []string{"x1"})
	require.Error(t, err)
}

func TestUnknownMnemonicPassesThrough(t *testing.T) {
	out, err := expandPseudo(1, "add", []string{"x1", "x2", "x3"})
	require.NoError(t, err)
	require.Equal(t, []realInstr{{Line: 1, Mnemonic: "add", Args: []string{"x1", "x2", "x3"}}}, out)
}
