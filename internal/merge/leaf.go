// Package merge implements the per-path leaf merge policy: FatELF-pack
// ELF leaves, equality-verify non-ELF regular leaves, reproduce
// symlinks, and create directories, grounded on
// _examples/original_source/fatelf/utils/fatelf-glue.c's
// fatelf_merge_files.
package merge

import (
	"golang.org/x/sys/unix"

	"github.com/haikuarch/fatelf/internal/core"
)

// LeafType is the merge leaf type from spec.md's Data Model.
type LeafType int

const (
	LeafOther LeafType = iota
	LeafDirectory
	LeafRegular
	LeafSymlink
)

// ClassifyLeaf lstats path (never following a terminal symlink) and
// reports its merge leaf type.
func ClassifyLeaf(path string) (LeafType, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return LeafOther, core.Fail(core.KindIo, path, "lstat", err)
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return LeafDirectory, nil
	case unix.S_IFLNK:
		return LeafSymlink, nil
	case unix.S_IFREG:
		return LeafRegular, nil
	default:
		return LeafOther, nil
	}
}
