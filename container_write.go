package fatelf

import "github.com/haikuarch/fatelf/internal/writer"

// WriteContainer assembles inputs (ELF files) into a single FatELF
// container at outPath, per spec.md §4.6. On any fatal error the
// partial output file is removed before returning.
func WriteContainer(outPath string, inputs []string) error {
	return writer.WriteContainer(outPath, inputs)
}
