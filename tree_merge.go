package fatelf

import "github.com/haikuarch/fatelf/internal/walk"

// MergeTrees walks each of roots, in order, into a single merged output
// tree at outDir. ELF leaves present in more than one root are
// FatELF-packed; other leaf types are reproduced or equality-verified.
// See spec.md §4.9.
func MergeTrees(outDir string, roots []string) error {
	return walk.MergeTrees(outDir, roots)
}
