// Command zcc is the compiler's CLI entry point: a single
// `compile` subcommand that reads a translation unit from a file (or
// stdin) and writes Z80 assembly to a file (or stdout), running the
// full lexer → parser → lowering → codegen → regalloc → asmprint
// pipeline in one process.
//
// Unlike a driver that shells out to five separate pass binaries over a
// pipe (`ylex | yparse | ysem | ygen | yasm`), this collapses everything
// into one binary and one in-process pipeline, built with cobra rather
// than stdlib `flag`.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use: "zcc",
		Short: "A subset-of-C to Z80 assembly compiler",
	}
	root.AddCommand(newCompileCmd())
	return root
}
