package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jxsvoboda/sycek-sub004/internal/asmprint"
	"github.com/jxsvoboda/sycek-sub004/internal/codegen"
	"github.com/jxsvoboda/sycek-sub004/internal/diag"
	"github.com/jxsvoboda/sycek-sub004/internal/lexer"
	"github.com/jxsvoboda/sycek-sub004/internal/lower"
	"github.com/jxsvoboda/sycek-sub004/internal/parser"
	"github.com/jxsvoboda/sycek-sub004/internal/regalloc"
	"github.com/jxsvoboda/sycek-sub004/internal/trace"
)

// compileOptions holds the compile subcommand's flags, one field per
// CLI surface item.
type compileOptions struct {
	output string
	verbosity int
	emitIR bool
	emitZ80IC bool
}

func newCompileCmd() *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use: "compile [input]",
		Short: "Compile one translation unit to Z80 assembly",
		Long: "Compile reads a single translation unit (from the given file, or from\n" +
			"stdin if no file is given) and writes Z80 assembly text to --output\n" +
			"(or stdout if --output is unset).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runCompile(cmd, input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().CountVarP(&opts.verbosity, "verbose", "v", "increase trace verbosity (-v, -vv)")
	cmd.Flags().BoolVar(&opts.emitIR, "emit-ir", false, "print the lowered IR to stderr before codegen (development aid)")
	cmd.Flags().BoolVar(&opts.emitZ80IC, "emit-z80ic", false, "print the virtual-register Z80 IC to stderr before allocation (development aid)")

	return cmd
}

// runCompile drives the pipeline: lex → parse → lower → codegen →
// regalloc → print. The parser and the lowering pass post to one shared
// *diag.Bag; a lex/parse error is fatal immediately (the
// parser's own panic-mode recovery keeps going within one pass, but a
// lowering pass never runs over a malformed AST), while lowering errors
// accumulate and are reported together once the whole unit is walked.
func runCompile(cmd *cobra.Command, inputPath string, opts *compileOptions) error {
	log, err := trace.New(trace.LevelFromCount(opts.verbosity))
	if err != nil {
		return diag.NewFatal(err)
	}
	defer log.Sync() //nolint:errcheck // best-effort flush of a CLI's final log line

	src, closer, fileName, err := openInput(inputPath)
	if err != nil {
		return diag.NewFatal(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	diags := diag.New()
	lex := lexer.Create(src, fileName)
	p := parser.New(lex, diags)
	unit := p.Parse()

	if diags.HasErrors() {
		diags.WriteTo(cmd.ErrOrStderr())
		return fmt.Errorf("%d parse error(s) in %s", diags.Len(), fileName)
	}

	lw := lower.NewWithLogger(diags, log)
	mod := lw.Lower(unit)

	if opts.emitIR {
		fmt.Fprintf(cmd.ErrOrStderr(), "--- IR for %s ---\n", fileName)
		for _, proc := range mod.Procs {
			fmt.Fprintf(cmd.ErrOrStderr(), "proc %s:\n", proc.Name)
			for _, in := range proc.Instrs {
				fmt.Fprintf(cmd.ErrOrStderr(), " %s = %s %v\n", in.Dest, in.Op, in.Args)
			}
		}
	}

	if diags.HasErrors() {
		diags.WriteTo(cmd.ErrOrStderr())
		return fmt.Errorf("%d semantic error(s) in %s", diags.Len(), fileName)
	}

	cg := codegen.NewWithLogger(log)
	z80mod := cg.Generate(mod)

	if opts.emitZ80IC {
		fmt.Fprintf(cmd.ErrOrStderr(), "--- Z80 IC (virtual registers) for %s ---\n", fileName)
		for _, proc := range z80mod.Procs {
			fmt.Fprintf(cmd.ErrOrStderr(), "proc %s:\n", proc.Name)
			for _, in := range proc.Instrs {
				fmt.Fprintf(cmd.ErrOrStderr(), " %s %s, %s\n", in.Op, in.Dst, in.Src)
			}
		}
	}

	ra := regalloc.NewWithLogger(log)
	z80mod = ra.AllocateModule(z80mod)

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return diag.NewFatal(err)
	}
	if closeOut != nil {
		defer closeOut.Close()
	}

	if err := asmprint.New(out).Print(z80mod); err != nil {
		return diag.NewFatal(err)
	}

	diags.WriteTo(cmd.ErrOrStderr()) // flush accumulated warnings/notes even on success

	return nil
}

func openInput(path string) (lexer.Source, io.Closer, string, error) {
	if path == "" {
		return lexer.NewSource(os.Stdin, "<stdin>"), nil, "<stdin>", nil
	}
	src, closer, err := lexer.NewFileSource(path)
	return src, closer, path, err
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
