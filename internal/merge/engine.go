package merge

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/xattr"
	"golang.org/x/sys/unix"

	"github.com/haikuarch/fatelf/internal/ar"
	"github.com/haikuarch/fatelf/internal/core"
	"github.com/haikuarch/fatelf/internal/diag"
	"github.com/haikuarch/fatelf/internal/writer"
)

const dirMode = 0o700

// MergeLeaf applies the per-leaf merge policy to one relative path,
// given every input that carries it (spec.md §4.8). All inputs must
// share the same leaf type; the caller (Tree Walker) guarantees this.
func MergeLeaf(outPath string, inPaths []string) error {
	if len(inPaths) == 0 {
		return core.Fail(core.KindConfiguration, outPath, "no inputs for leaf merge", nil)
	}

	leafType, err := ClassifyLeaf(inPaths[0])
	if err != nil {
		return err
	}

	switch leafType {
	case LeafDirectory:
		if err := mergeDirectory(outPath); err != nil {
			return err
		}
	case LeafSymlink:
		if err := mergeSymlink(outPath, inPaths[0]); err != nil {
			return err
		}
	case LeafRegular:
		if err := mergeRegular(outPath, inPaths); err != nil {
			return err
		}
	default:
		return core.Fail(core.KindUnsupportedFileType, inPaths[0], "leaf is not a directory, symlink, or regular file", nil)
	}

	return carryAttributes(inPaths[0], outPath)
}

func mergeDirectory(outPath string) error {
	if err := unix.Mkdir(outPath, dirMode); err != nil {
		if err != unix.EEXIST {
			return core.Fail(core.KindIo, outPath, "mkdir", err)
		}
		lt, err := ClassifyLeaf(outPath)
		if err != nil {
			return err
		}
		if lt != LeafDirectory {
			return core.Fail(core.KindUnsupportedFileType, outPath, "existing target is not a directory", nil)
		}
	}
	return nil
}

func mergeSymlink(outPath, inPath string) error {
	buf := make([]byte, 4096)
	n, err := unix.Readlink(inPath, buf)
	if err != nil {
		return core.Fail(core.KindIo, inPath, "readlink", err)
	}
	target := string(buf[:n])
	if err := unix.Symlink(target, outPath); err != nil {
		if err != unix.EEXIST {
			return core.Fail(core.KindIo, outPath, "symlink", err)
		}
		lt, err := ClassifyLeaf(outPath)
		if err != nil {
			return err
		}
		if lt != LeafSymlink {
			return core.Fail(core.KindUnsupportedFileType, outPath, "existing target is not a symlink", nil)
		}
	}
	return nil
}

func mergeRegular(outPath string, inPaths []string) error {
	f, err := os.Open(inPaths[0])
	if err != nil {
		return core.Fail(core.KindIo, inPaths[0], "opening input", err)
	}
	kind, err := core.Classify(f)
	f.Close()
	if err != nil {
		return err
	}

	switch kind {
	case core.KindELFFile:
		if len(inPaths) > 1 {
			return writer.WriteContainer(outPath, inPaths)
		}
		return copyFile(outPath, inPaths[0])

	case core.KindArFile:
		return mergeArchive(outPath, inPaths[0])

	case core.KindFatELFFile:
		return core.Fail(core.KindUnsupportedMerge, inPaths[0], "merging pre-existing FatELF inputs is not supported", nil)

	default:
		return equalityMerge(outPath, inPaths)
	}
}

// mergeArchive scans the member headers of an ar archive (the Open
// Question in the design notes treats per-member FatELF packing as an
// extension, not required behavior) and copies the archive verbatim
// from input 0.
func mergeArchive(outPath, inPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return core.Fail(core.KindIo, inPath, "opening archive", err)
	}
	defer f.Close()

	rdr, err := ar.NewReader(inPath, f)
	if err != nil {
		return core.Fail(core.KindIo, inPath, "opening archive", err)
	}
	for {
		if _, err := rdr.Next(); err == io.EOF {
			break
		} else if err != nil {
			diag.Warnf(inPath, "ar member scan: %v", err)
			break
		}
	}

	return copyFile(outPath, inPath)
}

// equalityMerge reads every input in lock-step 4096-byte chunks; any
// input that differs from input 0 in length or content is dropped from
// the comparison with a diagnostic, but the run continues and input 0's
// bytes are written to outPath (spec.md §4.8's "majority-ignorant"
// equality rule).
func equalityMerge(outPath string, inPaths []string) error {
	const chunkSize = 4096

	files := make([]*os.File, len(inPaths))
	var merr *multierror.Error
	for i, p := range inPaths {
		f, err := os.Open(p)
		if err != nil {
			return core.Fail(core.KindIo, p, "opening input", err)
		}
		files[i] = f
	}
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()

	ref := make([]byte, chunkSize)
	cmp := make([]byte, chunkSize)
	alive := make([]bool, len(files))
	for i := range alive {
		alive[i] = true
	}

	out, err := os.Create(outPath)
	if err != nil {
		return core.Fail(core.KindIo, outPath, "creating output", err)
	}
	defer out.Close()

	for {
		refN, refErr := io.ReadFull(files[0], ref)
		if refErr != nil && refErr != io.ErrUnexpectedEOF && refErr != io.EOF {
			return core.Fail(core.KindIo, inPaths[0], "reading input", refErr)
		}

		atEnd := refErr == io.EOF || refErr == io.ErrUnexpectedEOF

		for i := 1; i < len(files); i++ {
			if !alive[i] {
				continue
			}
			n, err := io.ReadFull(files[i], cmp[:refN])
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return core.Fail(core.KindIo, inPaths[i], "reading input", err)
			}
			mismatch := n != refN || !bytes.Equal(cmp[:n], ref[:refN])

			// Input 0 has no more bytes after this chunk: any byte left in
			// this input past the matched prefix makes it longer, which is
			// itself a mismatch even though every byte read so far agreed.
			if !mismatch && atEnd {
				var probe [1]byte
				pn, perr := files[i].Read(probe[:])
				if perr != nil && perr != io.EOF {
					return core.Fail(core.KindIo, inPaths[i], "reading input", perr)
				}
				if pn > 0 {
					mismatch = true
				}
			}

			if mismatch {
				diag.Warnf(inPaths[i], "content differs from %s, dropping from merge", inPaths[0])
				merr = multierror.Append(merr, core.Fail(core.KindFileMismatch, inPaths[i], "content differs from "+inPaths[0], nil))
				alive[i] = false
			}
		}

		if refN > 0 {
			if _, err := out.Write(ref[:refN]); err != nil {
				return core.Fail(core.KindIo, outPath, "writing output", err)
			}
		}
		if refErr == io.EOF || refErr == io.ErrUnexpectedEOF {
			break
		}
	}

	if merr != nil {
		diag.Warnf(outPath, "merge completed with mismatches: %v", merr)
	}
	return nil
}

func copyFile(outPath, inPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return core.Fail(core.KindIo, inPath, "opening input", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return core.Fail(core.KindIo, outPath, "creating output", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return core.Fail(core.KindIo, outPath, "copying file", err)
	}
	return nil
}

// carryAttributes copies mode, mtime, owner (where permitted), and
// extended attributes from inPath to outPath.
func carryAttributes(inPath, outPath string) error {
	st, err := os.Lstat(inPath)
	if err != nil {
		return core.Fail(core.KindIo, inPath, "stat", err)
	}
	if st.Mode()&os.ModeSymlink != 0 {
		return nil
	}

	if err := os.Chmod(outPath, st.Mode()); err != nil {
		diag.Warnf(outPath, "chmod: %v", err)
	}
	if err := os.Chtimes(outPath, time.Now(), st.ModTime()); err != nil {
		diag.Warnf(outPath, "chtimes: %v", err)
	}
	var raw unix.Stat_t
	if err := unix.Lstat(inPath, &raw); err == nil {
		_ = os.Chown(outPath, int(raw.Uid), int(raw.Gid))
	}

	names, err := xattr.List(inPath)
	if err == nil {
		for _, name := range names {
			val, err := xattr.Get(inPath, name)
			if err != nil {
				continue
			}
			if err := xattr.Set(outPath, name, val); err != nil {
				diag.Warnf(outPath, "xattr %s: %v", name, err)
			}
		}
	}
	return nil
}
