package fatelf

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haikuarch/fatelf/internal/core"
)

func buildELF64(t *testing.T, machine uint16, size uint64) string {
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

	path := filepath.Join(t.TempDir(), "in.elf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestWriteContainerThenOpen(t *testing.T) {
	e64 := buildELF64(t, 62, 300)
	out := filepath.Join(t.TempDir(), "out.fat")

	require.NoError(t, WriteContainer(out, []string{e64}))

	c, err := Open(out)
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.Records(), 1)
	require.Equal(t, uint16(62), c.Records()[0].ElfMach)
	require.Equal(t, uint64(0), c.Records()[0].Offset%core.PageAlign)
}

func TestOpenRejectsNonFatELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	require.True(t, core.IsKind(err, core.KindNotFatELF))
}
