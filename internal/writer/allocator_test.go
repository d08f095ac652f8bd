package writer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatorFirstAllocationAtZero(t *testing.T) {
	a := NewAllocator(0)

	off, pad := a.Allocate(100)
	require.Equal(t, uint64(0), off)
	require.Equal(t, uint64(0), pad)
	require.Equal(t, uint64(100), a.EndOfFile())
}

func TestAllocatorPadsToNextPage(t *testing.T) {
	a := NewAllocator(32) // e.g. a 1-record header

	off, pad := a.Allocate(10)
	require.Equal(t, uint64(4096), off)
	require.Equal(t, uint64(4096-32), pad)
}

func TestAllocatorMultipleBlocksPageAligned(t *testing.T) {
	a := NewAllocator(0)

	off1, _ := a.Allocate(10)
	require.Equal(t, uint64(0), off1)

	off2, _ := a.Allocate(20)
	require.Equal(t, uint64(4096), off2)

	require.NoError(t, a.ValidateNoOverlaps())
	blocks := a.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, uint64(0), blocks[0].Offset)
	require.Equal(t, uint64(4096), blocks[1].Offset)
}
