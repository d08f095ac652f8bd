package core

import (
	"io"
)

// Record is the FatELF on-disk record (spec Data Model §3), minus the
// reserved padding bytes which are always zero and never round-tripped
// through this type.
type Record struct {
	ElfMach  uint16
	Osabi    uint8
	OsabiVer uint8
	Wordsize uint8
	Endian   Endian
	Offset   uint64
	Size     uint64
}

// RecordSize is the fixed on-disk width of one FatELF record.
const RecordSize = 24

// Matches reports whether two records describe the same target: the
// five identity fields are pairwise equal. Offset and Size never
// participate in a match comparison.
func (r Record) Matches(o Record) bool {
	return r.ElfMach == o.ElfMach &&
		r.Osabi == o.Osabi &&
		r.OsabiVer == o.OsabiVer &&
		r.Wordsize == o.Wordsize &&
		r.Endian == o.Endian
}

// Identity is the ELF identity vector read from the first 16 bytes of a
// candidate file, promoted into machine-registry terms.
type Identity struct {
	Class    Class
	Endian   Endian
	Wordsize uint8
	Osabi    uint8
	OsabiVer uint8
}

// ReadIdentity reads exactly the 16-byte e_ident vector from r (which
// must be positioned at offset 0 of the candidate file) and classifies
// it. It consumes no more than 16 bytes; the caller's file position
// afterward sits right past e_ident, ready for ehdr fields to follow.
func ReadIdentity(path string, r io.Reader) (Identity, error) {
	var ident [EINident]byte
	if _, err := io.ReadFull(r, ident[:]); err != nil {
		return Identity{}, Fail(KindIo, path, "reading ELF identity", err)
	}
	if string(ident[:4]) != ELFMagic {
		return Identity{}, Fail(KindNotELF, path, "missing ELF magic", nil)
	}

	class := Class(ident[eiClass])
	endian := Endian(ident[eiData])
	if endian != EndianLittle && endian != EndianBig {
		return Identity{}, Fail(KindMalformedELF, path, "invalid EI_DATA byte", nil)
	}

	var wordsize uint8
	switch class {
	case Class32:
		wordsize = Wordsize32
	case Class64:
		wordsize = Wordsize64
	default:
		return Identity{}, Fail(KindMalformedELF, path, "invalid EI_CLASS byte", nil)
	}

	return Identity{
		Class:    class,
		Endian:   endian,
		Wordsize: wordsize,
		Osabi:    ident[eiOsabi],
		OsabiVer: ident[eiAbiVersion],
	}, nil
}

// ToRecord produces the partial FatELF record this identity implies,
// combined with the ehdr's e_machine code found by the boundary
// scanner. Offset and Size are left zero for the caller to fill in once
// the payload's container placement is known.
func (id Identity) ToRecord(elfMach uint16) Record {
	return Record{
		ElfMach:  elfMach,
		Osabi:    id.Osabi,
		OsabiVer: id.OsabiVer,
		Wordsize: id.Wordsize,
		Endian:   id.Endian,
	}
}
