package writer

import (
	"io"
	"os"

	"github.com/haikuarch/fatelf/internal/core"
	"github.com/haikuarch/fatelf/internal/diag"
	"github.com/haikuarch/fatelf/internal/haiku"
)

const outMode = 0o755

// WriteContainer assembles inputs into a single FatELF container at
// outPath, following spec.md §4.6 steps 1-6.
func WriteContainer(outPath string, inputs []string) error {
	if len(inputs) == 0 {
		return core.Fail(core.KindNothingToDo, outPath, "no inputs given", nil)
	}
	if len(inputs) > core.MaxRecords {
		return core.Fail(core.KindTooManyRecords, outPath, "too many inputs", nil)
	}

	out, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, outMode)
	if err != nil {
		return core.Fail(core.KindIo, outPath, "creating output", err)
	}
	guard := armUnlinkGuard(outPath)
	defer guard.Release()
	defer out.Close()

	n := len(inputs)
	headerSize := uint64(core.HeaderSize(n))
	if err := zeroFill(out, 0, headerSize); err != nil {
		return core.Fail(core.KindIo, outPath, "reserving header space", err)
	}

	alloc := NewAllocator(headerSize)
	records := make([]core.Record, n)
	donorIdx := -1
	var donorOffset uint64
	var donorSize int64

	for i, inPath := range inputs {
		rec, resOff, resSize, hasRes, err := inspectInput(inPath)
		if err != nil {
			diag.Errorf(inPath, "%v", err)
			return err
		}

		for j := 0; j < i; j++ {
			if rec.Matches(records[j]) {
				diag.Errorf(outPath, "duplicate target between %s and %s", inputs[j], inPath)
				return core.Fail(core.KindDuplicateTarget, outPath, "inputs "+inputs[j]+" and "+inPath+" share a target identity", nil)
			}
		}

		inFile, err := os.Open(inPath)
		if err != nil {
			return core.Fail(core.KindIo, inPath, "opening input", err)
		}

		// resOff doubles as "bytes to copy from this input": the
		// resource offset when a donor blob was found, or the full
		// file size otherwise (see inspectInput).
		payloadSize := uint64(resOff)
		offset, pad := alloc.Allocate(payloadSize)
		if err := zeroFill(out, int64(offset-pad), pad); err != nil {
			inFile.Close()
			return core.Fail(core.KindIo, outPath, "page padding", err)
		}
		if err := copyRange(out, int64(offset), inFile, payloadSize); err != nil {
			inFile.Close()
			return core.Fail(core.KindIo, outPath, "copying payload", err)
		}
		inFile.Close()

		rec.Offset = offset
		rec.Size = payloadSize
		records[i] = rec

		if hasRes && donorIdx == -1 {
			donorIdx = i
			donorOffset = uint64(resOff)
			donorSize = resSize
		}
	}

	if err := alloc.ValidateNoOverlaps(); err != nil {
		return core.Fail(core.KindIo, outPath, "internal allocator invariant violated", err)
	}

	hdr := core.Header{Records: records}
	if err := hdr.Validate(); err != nil {
		diag.Errorf(outPath, "%v", err)
		return err
	}
	if _, err := out.WriteAt(hdr.Encode(), 0); err != nil {
		return core.Fail(core.KindIo, outPath, "writing header", err)
	}

	if donorIdx >= 0 {
		if err := relocateResource(out, outPath, inputs[donorIdx], donorOffset, donorSize); err != nil {
			return err
		}
	}

	if err := out.Close(); err != nil {
		return core.Fail(core.KindIo, outPath, "closing output", err)
	}
	guard.Disarm()
	return nil
}

// inspectInput reads an input's ELF identity and boundary, and checks
// for a trailing Haiku resource. It returns the partial record (offset
// and size still zero) plus resource location when present.
func inspectInput(path string) (core.Record, int64, int64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Record{}, 0, 0, false, core.Fail(core.KindIo, path, "opening input", err)
	}
	defer f.Close()

	kind, err := core.Classify(f)
	if err != nil {
		return core.Record{}, 0, 0, false, core.Fail(core.KindIo, path, "classifying input", err)
	}
	if kind != core.KindELFFile {
		return core.Record{}, 0, 0, false, core.Fail(core.KindNotELF, path, "container writer requires ELF inputs", nil)
	}

	ident, err := core.ReadIdentity(path, io.NewSectionReader(f, 0, 16))
	if err != nil {
		return core.Record{}, 0, 0, false, err
	}
	layout, err := core.ScanBoundary(path, f, ident)
	if err != nil {
		return core.Record{}, 0, 0, false, err
	}
	rec := ident.ToRecord(layout.ElfMach)

	fi, err := f.Stat()
	if err != nil {
		return core.Record{}, 0, 0, false, core.Fail(core.KindIo, path, "stat", err)
	}

	resOff, resSize, ok, err := haiku.FindResource(path, f, fi.Size(), core.KindELFFile)
	if err != nil {
		diag.Warnf(path, "resource scan failed: %v", err)
		return rec, fi.Size(), 0, false, nil
	}
	if !ok {
		return rec, fi.Size(), 0, false, nil
	}
	return rec, int64(resOff), resSize, true, nil
}

func relocateResource(out *os.File, outPath, donorPath string, donorResOff uint64, donorResSize int64) error {
	donor, err := os.Open(donorPath)
	if err != nil {
		return core.Fail(core.KindIo, donorPath, "reopening resource donor", err)
	}
	defer donor.Close()

	fi, err := out.Stat()
	if err != nil {
		return core.Fail(core.KindIo, outPath, "stat output", err)
	}
	outOffset, err := haiku.ResourceOffset(outPath, out, core.KindFatELFFile)
	if err != nil {
		diag.Warnf(outPath, "could not locate resource offset in output: %v", err)
		return nil
	}
	if int64(outOffset) < fi.Size() {
		outOffset = uint64(fi.Size())
	}
	if err := zeroFill(out, fi.Size(), int64(outOffset)-fi.Size()); err != nil {
		return core.Fail(core.KindIo, outPath, "padding resource region", err)
	}

	section := io.NewSectionReader(donor, int64(donorResOff), donorResSize)
	if err := copyRange(out, int64(outOffset), section, uint64(donorResSize)); err != nil {
		return core.Fail(core.KindIo, outPath, "copying resource blob", err)
	}
	return nil
}

func zeroFill(w io.WriterAt, at int64, n uint64) error {
	if n == 0 {
		return nil
	}
	const chunk = 64 * 1024
	buf := make([]byte, chunk)
	var written uint64
	for written < n {
		take := n - written
		if take > chunk {
			take = chunk
		}
		if _, err := w.WriteAt(buf[:take], at+int64(written)); err != nil {
			return err
		}
		written += take
	}
	return nil
}

func copyRange(w io.WriterAt, at int64, r io.Reader, n uint64) error {
	const chunk = 64 * 1024
	buf := make([]byte, chunk)
	var written uint64
	for written < n {
		take := n - written
		if take > chunk {
			take = chunk
		}
		read, err := io.ReadFull(r, buf[:take])
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return err
		}
		if _, err := w.WriteAt(buf[:read], at+int64(written)); err != nil {
			return err
		}
		written += uint64(read)
		if uint64(read) < take {
			break
		}
	}
	return nil
}
