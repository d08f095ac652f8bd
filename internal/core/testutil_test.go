package core

import "encoding/binary"

// buildELF64 synthesizes a minimal valid little-endian ELF64 file with
// one PT_LOAD program header covering [0, size) and no sections, for
// use across this package's tests.
func buildELF64(machine uint16, size uint64) []byte {
	const phOff = EINident + ehdr64Size
	buf := make([]byte, phOff+phdr64Size)

	copy(buf[0:4], ELFMagic)
	buf[eiClass] = uint8(Class64)
	buf[eiData] = uint8(EndianLittle)

	e := buf[EINident:]
	binary.LittleEndian.PutUint16(e[2:4], machine)
	binary.LittleEndian.PutUint64(e[16:24], phOff) // e_phoff
	binary.LittleEndian.PutUint16(e[36:38], EINident+ehdr64Size) // e_ehsize
	binary.LittleEndian.PutUint16(e[38:40], phdr64Size)          // e_phentsize
	binary.LittleEndian.PutUint16(e[40:42], 1)                   // e_phnum

	p := buf[phOff:]
	binary.LittleEndian.PutUint32(p[0:4], 1) // p_type = PT_LOAD
	binary.LittleEndian.PutUint64(p[8:16], 0)
	binary.LittleEndian.PutUint64(p[32:40], size) // p_filesz
	binary.LittleEndian.PutUint64(p[48:56], 0)    // p_align

	if uint64(len(buf)) < size {
		buf = append(buf, make([]byte, size-uint64(len(buf)))...)
	}
	return buf
}
