// Package walk merges one or more parallel filesystem roots into a
// single output tree, grounded on
// _examples/original_source/fatelf/utils/fatelf-glue.c's
// fatelf_recursive_glue. Unlike the original's FTS-based walk, which
// decides duplicate suppression by lstat-ing the output path, this
// walker accumulates a plain set of relative paths already merged as it
// visits each root in turn (the design notes' recommended replacement
// for "the fragile existence-check chain").
package walk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/haikuarch/fatelf/internal/core"
	"github.com/haikuarch/fatelf/internal/merge"
)

const outDirMode = 0o700

// MergeTrees walks roots in the given order and materializes one
// merged tree at outDir, per spec.md §4.9.
func MergeTrees(outDir string, roots []string) error {
	if len(roots) == 0 {
		return core.Fail(core.KindNothingToDo, outDir, "no roots given", nil)
	}
	for _, r := range roots {
		fi, err := os.Lstat(r)
		if err != nil {
			return core.Fail(core.KindIo, r, "stat root", err)
		}
		if !fi.IsDir() {
			return core.Fail(core.KindConfiguration, r, "root is not a directory", nil)
		}
	}
	if err := os.MkdirAll(outDir, outDirMode); err != nil {
		return core.Fail(core.KindIo, outDir, "creating output root", err)
	}

	merged := make(map[string]bool)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return core.Fail(core.KindIo, path, "walking tree", err)
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return core.Fail(core.KindIo, path, "computing relative path", err)
			}
			if rel == "." {
				return nil
			}
			if merged[rel] {
				return nil
			}
			merged[rel] = true

			inputs := inputsFor(roots, rel)
			want, err := merge.ClassifyLeaf(inputs[0])
			if err != nil {
				return err
			}
			for _, in := range inputs[1:] {
				got, err := merge.ClassifyLeaf(in)
				if err != nil {
					return err
				}
				if got != want {
					return core.Fail(core.KindUnsupportedMerge, in, "file type differs from "+inputs[0], nil)
				}
			}
			return merge.MergeLeaf(filepath.Join(outDir, rel), inputs)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// inputsFor returns, in root order, every root's candidate path for rel
// that actually exists (via lstat, never following a terminal symlink).
func inputsFor(roots []string, rel string) []string {
	var inputs []string
	for _, root := range roots {
		candidate := filepath.Join(root, rel)
		if _, err := os.Lstat(candidate); err == nil {
			inputs = append(inputs, candidate)
		}
	}
	return inputs
}
