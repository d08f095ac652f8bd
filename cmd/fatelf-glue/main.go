// Command fatelf-glue assembles ELF binaries into a FatELF container,
// or (with -r) merges parallel directory trees, grounded on
// _examples/original_source/fatelf/utils/fatelf-glue.c's main/xusage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/haikuarch/fatelf"
	"github.com/haikuarch/fatelf/internal/diag"
)

func usage(argv0 string) {
	fmt.Fprintf(os.Stderr, "USAGE:\n  %s <out> <bin1> [bin2 ... binN]\n  %s -r <out> <dir1> [dir2 ... dirN]\n", argv0, argv0)
	os.Exit(1)
}

func main() {
	recursive := pflag.BoolP("recursive", "r", false, "merge directory trees instead of gluing ELF binaries")
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 2 {
		usage(os.Args[0])
	}

	out := args[0]
	inputs := args[1:]

	var err error
	if *recursive {
		err = fatelf.MergeTrees(out, inputs)
	} else {
		err = fatelf.WriteContainer(out, inputs)
	}
	if err != nil {
		diag.Errorf(out, "%v", err)
		os.Exit(1)
	}
}
