// Package main provides a command-line utility to dump a FatELF
// container's header table, grounded on the teacher's dump_hdf5 tool.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/haikuarch/fatelf"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: fatelf-dump <file>")
		return
	}

	c, err := fatelf.Open(args[0])
	if err != nil {
		log.Fatalf("opening %s: %v", args[0], err)
	}
	defer c.Close()

	hdr := c.Header()
	fmt.Printf("%s: FatELF container, %d record(s)\n", args[0], len(hdr.Records))
	for i, rec := range hdr.Records {
		fmt.Printf("  [%d] machine=%d osabi=%d osabi_ver=%d wordsize=%d endian=%d offset=0x%x size=%d\n",
			i, rec.ElfMach, rec.Osabi, rec.OsabiVer, rec.Wordsize, rec.Endian, rec.Offset, rec.Size)
	}

	if off, size, ok := c.Resource(); ok {
		fmt.Printf("  resource: offset=0x%x size=%d\n", off, size)
	} else {
		fmt.Println("  resource: none")
	}
}
