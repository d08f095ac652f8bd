// Package writer assembles FatELF containers: page-aligned allocation,
// the scoped unlink-on-fatal guard, and the container write driver
// itself, adapted from scigolib/hdf5's internal/writer allocator and
// file-writer types.
package writer

import (
	"fmt"
	"sort"

	"github.com/haikuarch/fatelf/internal/core"
)

// AllocatedBlock tracks one payload's placement inside the container
// being assembled.
type AllocatedBlock struct {
	Offset uint64
	Size   uint64
}

// Allocator hands out page-aligned, end-of-file offsets for each
// embedded payload (spec.md §4.6 step 3a) and tracks the placed blocks
// so ValidateNoOverlaps can confirm invariant 5 (no overlapping
// records) once assembly finishes.
type Allocator struct {
	blocks     []AllocatedBlock
	nextOffset uint64
}

// NewAllocator starts allocation at initialOffset, which for a FatELF
// container is the header size reserved in step 2.
func NewAllocator(initialOffset uint64) *Allocator {
	return &Allocator{nextOffset: initialOffset}
}

// Allocate reserves size bytes at the next page-aligned offset at or
// past the current end of file, returning that offset and the amount
// of zero padding the caller must write before the payload starts.
func (a *Allocator) Allocate(size uint64) (offset uint64, pad uint64) {
	aligned := core.AlignPage(a.nextOffset)
	pad = aligned - a.nextOffset

	a.blocks = append(a.blocks, AllocatedBlock{Offset: aligned, Size: size})
	a.nextOffset = aligned + size
	return aligned, pad
}

// EndOfFile returns the offset one past the last allocated block.
func (a *Allocator) EndOfFile() uint64 {
	return a.nextOffset
}

// Blocks returns the allocated blocks sorted by offset.
func (a *Allocator) Blocks() []AllocatedBlock {
	blocks := make([]AllocatedBlock, len(a.blocks))
	copy(blocks, a.blocks)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks
}

// ValidateNoOverlaps reports an error if any two allocated blocks
// overlap (invariant 5); adjacent blocks sharing a boundary are fine.
func (a *Allocator) ValidateNoOverlaps() error {
	blocks := a.Blocks()
	for i := 0; i < len(blocks)-1; i++ {
		cur, next := blocks[i], blocks[i+1]
		if cur.Offset+cur.Size > next.Offset {
			return fmt.Errorf("overlap: block at %d size %d overlaps block at %d", cur.Offset, cur.Size, next.Offset)
		}
	}
	return nil
}
