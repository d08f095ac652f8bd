// Package haiku detects and locates the opaque resource blob Haiku's
// linker appends past the end of an ELF or FatELF image, grounded on
// _examples/original_source/fatelf/utils/fatelf-haiku.c.
package haiku

import (
	"encoding/binary"
	"io"

	"github.com/haikuarch/fatelf/internal/core"
)

// HeaderMagic is the 32-bit value a Haiku resource table begins with,
// read in either byte order (fatelf-haiku.c's haiku_parse_rsrc_header
// checked both without caring which the host is).
const HeaderMagic uint32 = 0x444F1000

// elf32MinAlign and elf64Align mirror haiku_elf_rsrc_offset's alignment
// rules; fatAlign mirrors haiku_fat_rsrc_offset's.
const (
	elf32MinAlign uint64 = 32
	elf64Align    uint64 = 8
	fatAlign      uint64 = 8
)

// ResourceOffset computes the alignment-correct offset at which resource
// data may begin, per spec.md §4.5. kind must already be known to the
// caller (via core.Classify) since the alignment rule differs by file
// kind.
func ResourceOffset(path string, r io.ReaderAt, kind core.FileKind) (uint64, error) {
	switch kind {
	case core.KindELFFile:
		return elfResourceOffset(path, r)
	case core.KindFatELFFile:
		return fatResourceOffset(path, r)
	default:
		return 0, core.Fail(core.KindResourceParseFailed, path, "resource offset only defined for ELF or FatELF files", nil)
	}
}

func elfResourceOffset(path string, r io.ReaderAt) (uint64, error) {
	ident, err := core.ReadIdentity(path, io.NewSectionReader(r, 0, 16))
	if err != nil {
		return 0, err
	}
	layout, err := core.ScanBoundary(path, r, ident)
	if err != nil {
		return 0, err
	}

	align := elf64Align
	if ident.Class == core.Class32 {
		align = layout.MaxPheaderAlign
		if align < elf32MinAlign {
			align = elf32MinAlign
		}
	}
	return ceilTo(layout.PostElfEnd, align), nil
}

func fatResourceOffset(path string, r io.ReaderAt) (uint64, error) {
	buf := make([]byte, 8)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return 0, core.Fail(core.KindIo, path, "reading FatELF header", err)
	}
	n := int(buf[6])
	full := make([]byte, core.HeaderSize(n))
	if _, err := r.ReadAt(full, 0); err != nil {
		return 0, core.Fail(core.KindIo, path, "reading FatELF record table", err)
	}
	hdr, err := core.DecodeHeader(path, full)
	if err != nil {
		return 0, err
	}

	var rawEnd uint64
	for _, rec := range hdr.Records {
		end := rec.Offset + rec.Size
		if end > rawEnd {
			rawEnd = end
		}
	}
	return ceilTo(rawEnd, fatAlign), nil
}

// FindResource locates a trailing resource blob, per spec.md §4.5's
// find_resource. ok is false when the file is too short to hold one at
// the computed offset, or the magic doesn't match in either byte order
// — neither case is an error, matching ResourceParseFailure's "never
// fatal" policy.
func FindResource(path string, r io.ReaderAt, fileSize int64, kind core.FileKind) (offset uint64, size int64, ok bool, err error) {
	off, err := ResourceOffset(path, r, kind)
	if err != nil {
		return 0, 0, false, err
	}
	if fileSize <= int64(off) {
		return 0, 0, false, nil
	}

	var word [4]byte
	if _, err := r.ReadAt(word[:], int64(off)); err != nil {
		return 0, 0, false, nil
	}
	le := binary.LittleEndian.Uint32(word[:])
	be := binary.BigEndian.Uint32(word[:])
	if le != HeaderMagic && be != HeaderMagic {
		return 0, 0, false, nil
	}
	return off, fileSize - int64(off), true, nil
}

func ceilTo(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return ((v + align - 1) / align) * align
}
