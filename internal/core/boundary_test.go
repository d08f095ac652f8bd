package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanBoundaryELF64(t *testing.T) {
	raw := buildELF64(62, 256)
	ident, err := ReadIdentity("test", bytes.NewReader(raw[:16]))
	require.NoError(t, err)

	layout, err := ScanBoundary("test", bytes.NewReader(raw), ident)
	require.NoError(t, err)
	require.Equal(t, uint16(62), layout.ElfMach)
	require.GreaterOrEqual(t, layout.PostElfEnd, uint64(256))
}
