package core

import (
	"encoding/binary"
	"fmt"
)

// FatelfMagic and FatelfFormatVersion are the two fixed fields every
// well-formed container's header must carry (spec.md invariant 1).
const (
	FatelfMagic         uint32 = 0x1F0E70FA
	FatelfFormatVersion uint16 = 1

	// PageAlign is the FatELF payload alignment, fixed at 4096
	// regardless of the host's actual page size (spec.md §6).
	PageAlign = 4096

	// MaxRecords is the largest num_records a container may carry
	// (spec.md invariant 2 / Non-goals).
	MaxRecords = 255

	headerFixedSize = 8
)

// Header is the in-memory form of a FatELF header: the ordered record
// list (spec Data Model §3). Magic and version are not stored; Encode
// writes the fixed constants and DecodeHeader checks them.
type Header struct {
	Records []Record
}

// HeaderSize returns 8 + 24*n, the on-disk size of a header with n
// records.
func HeaderSize(n int) int64 {
	return headerFixedSize + RecordSize*int64(n)
}

// Validate checks invariants 1-3 against the header in isolation
// (invariants 4-6 depend on container placement and are checked by the
// writer as it assigns offsets).
func (h Header) Validate() error {
	n := len(h.Records)
	if n == 0 {
		return Fail(KindNothingToDo, "", "no records to write", nil)
	}
	if n > MaxRecords {
		return Fail(KindTooManyRecords, "", fmt.Sprintf("%d records exceeds maximum of %d", n, MaxRecords), nil)
	}
	for i := range h.Records {
		for j := 0; j < i; j++ {
			if h.Records[i].Matches(h.Records[j]) {
				return Fail(KindDuplicateTarget, "", "two inputs share the same target identity", nil)
			}
		}
	}
	return nil
}

// Encode renders the header to its on-disk little-endian byte form.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize(len(h.Records)))
	binary.LittleEndian.PutUint32(buf[0:4], FatelfMagic)
	binary.LittleEndian.PutUint16(buf[4:6], FatelfFormatVersion)
	buf[6] = uint8(len(h.Records))
	buf[7] = 0

	for i, rec := range h.Records {
		off := headerFixedSize + i*RecordSize
		binary.LittleEndian.PutUint16(buf[off:off+2], rec.ElfMach)
		buf[off+2] = rec.Osabi
		buf[off+3] = rec.OsabiVer
		buf[off+4] = rec.Wordsize
		buf[off+5] = uint8(rec.Endian)
		buf[off+6] = 0
		buf[off+7] = 0
		binary.LittleEndian.PutUint64(buf[off+8:off+16], rec.Offset)
		binary.LittleEndian.PutUint64(buf[off+16:off+24], rec.Size)
	}
	return buf
}

// DecodeHeader parses a FatELF header from buf, which must hold at
// least the 8 fixed bytes; the caller is responsible for having read
// enough bytes to cover num_records once the count is known (callers
// typically read 8 bytes, take num_records from byte 6, then read the
// full HeaderSize(num_records) bytes and call DecodeHeader on that).
func DecodeHeader(path string, buf []byte) (Header, error) {
	if len(buf) < headerFixedSize {
		return Header{}, Fail(KindNotFatELF, path, "truncated FatELF header", nil)
	}
	magic := binary.LittleEndian.Uint32(buf[0:4])
	version := binary.LittleEndian.Uint16(buf[4:6])
	if magic != FatelfMagic {
		return Header{}, Fail(KindNotFatELF, path, "bad FatELF magic", nil)
	}
	if version != FatelfFormatVersion {
		return Header{}, Fail(KindNotFatELF, path, "unsupported FatELF version", nil)
	}
	n := int(buf[6])
	want := int(HeaderSize(n))
	if len(buf) < want {
		return Header{}, Fail(KindNotFatELF, path, "truncated FatELF record table", nil)
	}

	records := make([]Record, n)
	for i := 0; i < n; i++ {
		off := headerFixedSize + i*RecordSize
		records[i] = Record{
			ElfMach:  binary.LittleEndian.Uint16(buf[off : off+2]),
			Osabi:    buf[off+2],
			OsabiVer: buf[off+3],
			Wordsize: buf[off+4],
			Endian:   Endian(buf[off+5]),
			Offset:   binary.LittleEndian.Uint64(buf[off+8 : off+16]),
			Size:     binary.LittleEndian.Uint64(buf[off+16 : off+24]),
		}
	}
	return Header{Records: records}, nil
}

// AlignPage rounds off up to the next multiple of PageAlign.
func AlignPage(off uint64) uint64 {
	return ((off + PageAlign - 1) / PageAlign) * PageAlign
}
