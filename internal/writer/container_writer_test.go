package writer

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haikuarch/fatelf/internal/core"
)

// buildELF64 synthesizes a minimal ELF64 file: one PT_LOAD header
// covering [0, size), optionally followed by a Haiku resource blob.
func buildELF64(t *testing.T, machine uint16, size uint64, resource []byte) string {
	t.Helper()

	const ehsize = core.EINident + 48
	const phentsize = 56
	const phOff = ehsize
	buf := make([]byte, phOff+phentsize)

	copy(buf[0:4], core.ELFMagic)
	buf[4] = uint8(core.Class64)
	buf[5] = uint8(core.EndianLittle)

	e := buf[core.EINident:]
	binary.LittleEndian.PutUint16(e[2:4], machine)
	binary.LittleEndian.PutUint64(e[16:24], uint64(phOff))
	binary.LittleEndian.PutUint16(e[36:38], uint16(ehsize))
	binary.LittleEndian.PutUint16(e[38:40], phentsize)
	binary.LittleEndian.PutUint16(e[40:42], 1)

	p := buf[phOff:]
	binary.LittleEndian.PutUint32(p[0:4], 1)
	binary.LittleEndian.PutUint64(p[8:16], 0)
	binary.LittleEndian.PutUint64(p[32:40], size)

	if uint64(len(buf)) < size {
		buf = append(buf, make([]byte, size-uint64(len(buf)))...)
	}
	buf = append(buf, resource...)

	path := filepath.Join(t.TempDir(), "in.elf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func buildELF32(t *testing.T, machine uint16, size uint64) string {
	t.Helper()

	const ehsize = core.EINident + 36
	buf := make([]byte, ehsize)
	copy(buf[0:4], core.ELFMagic)
	buf[4] = uint8(core.Class32)
	buf[5] = uint8(core.EndianLittle)

	e := buf[core.EINident:]
	binary.LittleEndian.PutUint16(e[2:4], machine)
	binary.LittleEndian.PutUint16(e[24:26], uint16(ehsize))

	if uint64(len(buf)) < size {
		buf = append(buf, make([]byte, size-uint64(len(buf)))...)
	}

	path := filepath.Join(t.TempDir(), "in32.elf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestWriteContainerTwoArch(t *testing.T) {
	e64 := buildELF64(t, 62, 300, nil)
	e32 := buildELF32(t, 3, 200)

	out := filepath.Join(t.TempDir(), "out.fat")
	err := WriteContainer(out, []string{e64, e32})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	n := int(data[6])
	require.Equal(t, 2, n)

	hdr, err := core.DecodeHeader(out, data[:core.HeaderSize(n)])
	require.NoError(t, err)
	for _, rec := range hdr.Records {
		require.Equal(t, uint64(0), rec.Offset%core.PageAlign)
	}
	require.True(t, hdr.Records[0].Offset+hdr.Records[0].Size <= hdr.Records[1].Offset)
}

func TestWriteContainerDuplicateRefused(t *testing.T) {
	a := buildELF64(t, 62, 300, nil)
	b := buildELF64(t, 62, 300, nil)

	out := filepath.Join(t.TempDir(), "out.fat")
	err := WriteContainer(out, []string{a, b})
	require.Error(t, err)
	require.True(t, core.IsKind(err, core.KindDuplicateTarget))

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestWriteContainerResourcePassthrough(t *testing.T) {
	resource := make([]byte, 512)
	resource[0], resource[1], resource[2], resource[3] = 0x00, 0x10, 0x4F, 0x44
	e := buildELF64(t, 62, 256, resource)

	out := filepath.Join(t.TempDir(), "out.fat")
	require.NoError(t, WriteContainer(out, []string{e}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, resource, data[len(data)-512:])
}

func TestWriteContainerDonorIsLowestIndexedInput(t *testing.T) {
	r0 := make([]byte, 64)
	r0[0], r0[1], r0[2], r0[3] = 0x00, 0x10, 0x4F, 0x44
	r0[10] = 0xAA // distinguishes r0 from r1

	r1 := make([]byte, 64)
	r1[0], r1[1], r1[2], r1[3] = 0x00, 0x10, 0x4F, 0x44
	r1[10] = 0xBB

	e0 := buildELF64(t, 62, 256, r0)
	e1 := buildELF32(t, 3, 64)
	// give e1 a trailing resource too, at its own alignment-correct offset.
	data, err := os.ReadFile(e1)
	require.NoError(t, err)
	data = append(data, r1...)
	require.NoError(t, os.WriteFile(e1, data, 0o644))

	out := filepath.Join(t.TempDir(), "out.fat")
	require.NoError(t, WriteContainer(out, []string{e0, e1}))

	outData, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, r0, outData[len(outData)-64:])
}

func TestWriteContainerNothingToDo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.fat")
	err := WriteContainer(out, nil)
	require.True(t, core.IsKind(err, core.KindNothingToDo))
}

func TestWriteContainerTooManyRecords(t *testing.T) {
	inputs := make([]string, core.MaxRecords+1)
	for i := range inputs {
		inputs[i] = buildELF64(t, uint16(1000+i), 64, nil)
	}

	out := filepath.Join(t.TempDir(), "out.fat")
	err := WriteContainer(out, inputs)
	require.True(t, core.IsKind(err, core.KindTooManyRecords))
}
