package core

import (
	"io"
)

// Layout is the ELF layout snapshot spec.md's Data Model calls for:
// the post-ELF-end offset plus everything the Haiku Resource Detector
// needs without re-parsing the file.
type Layout struct {
	ElfMach         uint16
	PostElfEnd      uint64
	MaxPheaderAlign uint64
}

// rangeEntry is the subset of a section/program header this scanner
// needs, already promoted to 64-bit regardless of source class.
type rangeEntry struct {
	kind   uint32
	offset uint64
	size   uint64
	align  uint64
}

// ScanBoundary walks the program and section header tables of an ELF
// file (already positioned at offset 0, with ident already read by
// ReadIdentity) and computes post_elf_end and max_pheader_align exactly
// per spec.md §4.4. r must support ReadAt so headers can be read at
// arbitrary file offsets without disturbing a caller's position.
func ScanBoundary(path string, r io.ReaderAt, ident Identity) (Layout, error) {
	order := orderFor(ident.Endian)

	var ehsize, phoff, phentsize, phnum, shoff, shentsize, shnum uint64
	var elfMach uint16

	if ident.Class == Class64 {
		buf := make([]byte, ehdr64Size)
		if _, err := r.ReadAt(buf, EINident); err != nil {
			return Layout{}, Fail(KindIo, path, "reading ELF64 header", err)
		}
		elfMach = order.Uint16(buf[2:4])
		ehsize = uint64(order.Uint16(buf[36:38]))
		phoff = order.Uint64(buf[16:24])
		phentsize = uint64(order.Uint16(buf[38:40]))
		phnum = uint64(order.Uint16(buf[40:42]))
		shoff = order.Uint64(buf[24:32])
		shentsize = uint64(order.Uint16(buf[42:44]))
		shnum = uint64(order.Uint16(buf[44:46]))
	} else {
		buf := make([]byte, ehdr32Size)
		if _, err := r.ReadAt(buf, EINident); err != nil {
			return Layout{}, Fail(KindIo, path, "reading ELF32 header", err)
		}
		elfMach = order.Uint16(buf[2:4])
		ehsize = uint64(order.Uint16(buf[24:26]))
		phoff = uint64(order.Uint32(buf[12:16]))
		phentsize = uint64(order.Uint16(buf[26:28]))
		phnum = uint64(order.Uint16(buf[28:30]))
		shoff = uint64(order.Uint32(buf[16:20]))
		shentsize = uint64(order.Uint16(buf[30:32]))
		shnum = uint64(order.Uint16(buf[32:34]))
	}

	postElfEnd := ehsize
	if phoff != 0 {
		postElfEnd = maxU64(postElfEnd, phoff+phentsize*phnum)
	}
	if shoff != 0 {
		postElfEnd = maxU64(postElfEnd, shoff+shentsize*shnum)
	}

	var maxAlign uint64
	for i := uint64(0); i < phnum; i++ {
		entry, err := readPhdr(path, r, ident, order, phoff+i*phentsize)
		if err != nil {
			return Layout{}, err
		}
		if entry.kind == PTNull {
			continue
		}
		postElfEnd = maxU64(postElfEnd, entry.offset+entry.size)
		maxAlign = maxU64(maxAlign, entry.align)
	}

	for i := uint64(0); i < shnum; i++ {
		entry, err := readShdr(path, r, ident, order, shoff+i*shentsize)
		if err != nil {
			return Layout{}, err
		}
		if entry.kind == SHTNull || entry.kind == SHTNoBits {
			continue
		}
		postElfEnd = maxU64(postElfEnd, entry.offset+entry.size)
	}

	return Layout{ElfMach: elfMach, PostElfEnd: postElfEnd, MaxPheaderAlign: maxAlign}, nil
}

func readPhdr(path string, r io.ReaderAt, ident Identity, order byteOrder, at uint64) (rangeEntry, error) {
	if ident.Class == Class64 {
		buf := make([]byte, phdr64Size)
		if _, err := r.ReadAt(buf, int64(at)); err != nil {
			return rangeEntry{}, Fail(KindIo, path, "reading Phdr64", err)
		}
		return rangeEntry{
			kind:   order.Uint32(buf[0:4]),
			offset: order.Uint64(buf[8:16]),
			size:   order.Uint64(buf[32:40]),
			align:  order.Uint64(buf[48:56]),
		}, nil
	}
	buf := make([]byte, phdr32Size)
	if _, err := r.ReadAt(buf, int64(at)); err != nil {
		return rangeEntry{}, Fail(KindIo, path, "reading Phdr32", err)
	}
	return rangeEntry{
		kind:   order.Uint32(buf[0:4]),
		offset: uint64(order.Uint32(buf[4:8])),
		size:   uint64(order.Uint32(buf[16:20])),
		align:  uint64(order.Uint32(buf[28:32])),
	}, nil
}

func readShdr(path string, r io.ReaderAt, ident Identity, order byteOrder, at uint64) (rangeEntry, error) {
	if ident.Class == Class64 {
		buf := make([]byte, shdr64Size)
		if _, err := r.ReadAt(buf, int64(at)); err != nil {
			return rangeEntry{}, Fail(KindIo, path, "reading Shdr64", err)
		}
		return rangeEntry{
			kind:   order.Uint32(buf[4:8]),
			offset: order.Uint64(buf[24:32]),
			size:   order.Uint64(buf[32:40]),
		}, nil
	}
	buf := make([]byte, shdr32Size)
	if _, err := r.ReadAt(buf, int64(at)); err != nil {
		return rangeEntry{}, Fail(KindIo, path, "reading Shdr32", err)
	}
	return rangeEntry{
		kind:   order.Uint32(buf[4:8]),
		offset: uint64(order.Uint32(buf[16:20])),
		size:   uint64(order.Uint32(buf[20:24])),
	}, nil
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
