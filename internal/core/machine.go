package core

import "runtime"

// Machine describes one entry in the machine registry: the tuple of
// values spec.md's Data Model calls the "machine descriptor"
// (name, ELF e_machine code, OSABI, OSABI version, word size, endianness).
type Machine struct {
	Name     string
	ElfMach  uint16
	Osabi    uint8
	OsabiVer uint8
	Wordsize uint8
	Endian   Endian
}

// Word sizes as recorded in a FatELF record, mirroring the original's
// FATELF_32BIT/FATELF_64BIT constants.
const (
	Wordsize32 uint8 = 1
	Wordsize64 uint8 = 2
)

// registry is the fixed table of machine descriptors this module knows
// how to name. It is intentionally small: spec.md's scope is the
// container format, not an exhaustive ELF machine-code database.
var registry = []Machine{
	{Name: "i386", ElfMach: 3, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize32, Endian: EndianLittle},
	{Name: "x86-64", ElfMach: 62, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize64, Endian: EndianLittle},
	{Name: "arm64", ElfMach: 183, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize64, Endian: EndianLittle},
	{Name: "arm", ElfMach: 40, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize32, Endian: EndianLittle},
	{Name: "ppc", ElfMach: 20, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize32, Endian: EndianBig},
	{Name: "ppc64", ElfMach: 21, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize64, Endian: EndianBig},
	{Name: "sparc", ElfMach: 2, Osabi: 0, OsabiVer: 0, Wordsize: Wordsize32, Endian: EndianBig},
}

// LookupByName finds a machine descriptor by its canonical name
// ("x86-64", "i386", ...). ok is false for an unrecognized name.
func LookupByName(name string) (m Machine, ok bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return Machine{}, false
}

// LookupByElfCodes finds a machine descriptor matching the e_machine
// value and word size observed in a scanned ELF identity. ok is false
// when no registry entry matches, which is not itself an error: the
// caller records the raw codes in the FatELF record regardless.
func LookupByElfCodes(elfMach uint16, wordsize uint8) (m Machine, ok bool) {
	for _, e := range registry {
		if e.ElfMach == elfMach && e.Wordsize == wordsize {
			return e, true
		}
	}
	return Machine{}, false
}

// HostDescriptor returns the machine descriptor matching the running
// process's own architecture, used by the CLI to pick sensible
// defaults. It returns ok=false on a host architecture this registry
// does not name, which the caller must handle rather than guess at.
func HostDescriptor() (m Machine, ok bool) {
	switch runtime.GOARCH {
	case "386":
		return LookupByName("i386")
	case "amd64":
		return LookupByName("x86-64")
	case "arm64":
		return LookupByName("arm64")
	case "arm":
		return LookupByName("arm")
	default:
		return Machine{}, false
	}
}
