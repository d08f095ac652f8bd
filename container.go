package fatelf

import (
	"os"

	"github.com/haikuarch/fatelf/internal/core"
	"github.com/haikuarch/fatelf/internal/haiku"
)

// Container represents an opened FatELF file: its decoded header plus
// whether a Haiku resource blob trails the last record.
type Container struct {
	osFile *os.File
	header core.Header

	hasResource  bool
	resourceOff  uint64
	resourceSize int64
}

// Open opens path, validates the FatELF magic and version, and decodes
// its record table. The returned Container owns the file handle; call
// Close when done.
func Open(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Fail(core.KindIo, path, "opening file", err)
	}

	kind, err := core.Classify(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if kind != core.KindFatELFFile {
		_ = f.Close()
		return nil, core.Fail(core.KindNotFatELF, path, "not a FatELF container", nil)
	}

	var head [8]byte
	if _, err := f.ReadAt(head[:], 0); err != nil {
		_ = f.Close()
		return nil, core.Fail(core.KindIo, path, "reading header", err)
	}
	n := int(head[6])
	full := make([]byte, core.HeaderSize(n))
	if _, err := f.ReadAt(full, 0); err != nil {
		_ = f.Close()
		return nil, core.Fail(core.KindIo, path, "reading record table", err)
	}
	hdr, err := core.DecodeHeader(path, full)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	c := &Container{osFile: f, header: hdr}

	fi, err := f.Stat()
	if err == nil {
		if off, size, ok, rerr := haiku.FindResource(path, f, fi.Size(), core.KindFatELFFile); rerr == nil && ok {
			c.hasResource = true
			c.resourceOff = off
			c.resourceSize = size
		}
	}

	return c, nil
}

// Close closes the underlying file. Safe to call more than once.
func (c *Container) Close() error {
	if c.osFile == nil {
		return nil
	}
	err := c.osFile.Close()
	c.osFile = nil
	return err
}

// Header returns the decoded FatELF header.
func (c *Container) Header() core.Header {
	return c.header
}

// Records returns the container's record list.
func (c *Container) Records() []core.Record {
	return c.header.Records
}

// Resource reports the trailing Haiku resource blob's location, if any.
func (c *Container) Resource() (offset uint64, size int64, ok bool) {
	return c.resourceOff, c.resourceSize, c.hasResource
}
