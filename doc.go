// Package fatelf reads and writes FatELF containers: a single file
// that packages multiple ELF binaries, each targeting a different
// machine/ABI variant, behind one discriminator header. It also merges
// parallel filesystem trees into a combined output tree, FatELF-packing
// any ELF leaves found in more than one root.
package fatelf
