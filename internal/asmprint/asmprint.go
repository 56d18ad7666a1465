// Package asmprint walks a fully-allocated internal/z80ic Module and
// prints it as Z80 assembly text. Every virtual
// register has already been rewritten to a physical register or an
// `(ix+d)` stack slot by internal/regalloc by the time this package
// sees the module, so — unlike every earlier stage — this one never
// invents a register or a label; it only formats what it's given.
// Grounded on ygen/emit.go's Emitter: its direct-to-bufio.Writer
// Label/Directive/Instr0/Instr1/Instr2/Words/Bytes/Space helpers are
// kept in the same shape, re-targeted from wut4's `.code`/`.data`/
// `.words`/`.bytes`/`.space` directive set to the Z80 mnemonic and
// `defb`/`defw`/`defs` directive grammar.
package asmprint

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

// Printer writes one Module as assembly text to an io.Writer.
type Printer struct {
	out *bufio.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{out: bufio.NewWriter(w)}
}

// Print renders mod in full and flushes the underlying writer.
func (p *Printer) Print(mod *z80ic.Module) error {
	if mod.SourceFile != "" {
		p.comment("generated from %s", mod.SourceFile)
		p.blank()
	}

	for _, name := range mod.Externs {
		fmt.Fprintf(p.out, "\textern\t%s\n", name)
	}
	if len(mod.Externs) > 0 {
		p.blank()
	}

	if len(mod.Data) > 0 {
		fmt.Fprintln(p.out, "\tsection\tdata")
		for _, d := range mod.Data {
			p.printData(d)
		}
		p.blank()
	}

	if len(mod.Procs) > 0 {
		fmt.Fprintln(p.out, "\tsection\tcode")
		for _, proc := range mod.Procs {
			p.printProc(proc)
			p.blank()
		}
	}

	for _, block := range mod.AsmBlocks {
		fmt.Fprintln(p.out, block)
	}

	return p.out.Flush()
}

func (p *Printer) comment(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "; %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) blank() { fmt.Fprintln(p.out) }

func (p *Printer) label(name string) { fmt.Fprintf(p.out, "%s:\n", name) }

func (p *Printer) printData(d z80ic.Data) {
	if d.Public {
		fmt.Fprintf(p.out, "\tpublic\t%s\n", d.Name)
	}
	p.label(d.Name)
	switch d.Kind {
	case z80ic.DataBytes:
		p.printByteLine(d.Bytes)
	case z80ic.DataWords:
		p.printWordLine(d.Words)
	default:
		fmt.Fprintf(p.out, "\tdefs\t%d\n", d.Size)
	}
}

// printByteLine chunks a byte initializer into defb lines of at most 8
// values, matching ygen/emit.go's Words helper chunking its.words line.
func (p *Printer) printByteLine(data []byte) {
	const perLine = 8
	for i := 0; i < len(data); i += perLine {
		end := i + perLine
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprint(p.out, "\tdefb\t")
		for j, b := range data[i:end] {
			if j > 0 {
				fmt.Fprint(p.out, ", ")
			}
			fmt.Fprintf(p.out, "0%02Xh", b)
		}
		fmt.Fprintln(p.out)
	}
}

func (p *Printer) printWordLine(words []int) {
	const perLine = 8
	for i := 0; i < len(words); i += perLine {
		end := i + perLine
		if end > len(words) {
			end = len(words)
		}
		fmt.Fprint(p.out, "\tdefw\t")
		for j, w := range words[i:end] {
			if j > 0 {
				fmt.Fprint(p.out, ", ")
			}
			fmt.Fprintf(p.out, "0%04Xh", uint16(w))
		}
		fmt.Fprintln(p.out)
	}
}

func (p *Printer) printProc(proc z80ic.Proc) {
	if proc.Public {
		fmt.Fprintf(p.out, "\tpublic\t%s\n", proc.Name)
	}
	if proc.FrameSize > 0 {
		fmt.Fprintf(p.out, "%s.frame\tequ\t0%04Xh\n", proc.Name, uint16(proc.FrameSize))
	}
	p.label(proc.Name)
	for _, in := range proc.Instrs {
		p.printInstr(in)
	}
}

func (p *Printer) printInstr(in z80ic.Instr) {
	switch in.Op {
	case z80ic.MnLabel:
		p.label(in.Label)
	case z80ic.MnAsm:
		fmt.Fprintln(p.out, in.Text)
	case z80ic.MnNone:
		// no-op placeholder; never emitted by internal/codegen
	default:
		p.printMnemonic(in)
	}
}

func (p *Printer) printMnemonic(in z80ic.Instr) {
	name := in.Op.String()
	if in.Cond != z80ic.CondNone {
		switch in.Op {
		case z80ic.MnJp, z80ic.MnJr, z80ic.MnCall:
			fmt.Fprintf(p.out, "\t%s\t%s,%s\n", name, in.Cond, in.Src)
			return
		case z80ic.MnRet:
			fmt.Fprintf(p.out, "\t%s\t%s\n", name, in.Cond)
			return
		}
	}

	switch operandCount(in) {
	case 0:
		fmt.Fprintf(p.out, "\t%s\n", name)
	case 1:
		fmt.Fprintf(p.out, "\t%s\t%s\n", name, soleOperand(in))
	default:
		fmt.Fprintf(p.out, "\t%s\t%s,%s\n", name, in.Dst, in.Src)
	}
}

// operandCount distinguishes a zero/one/two-operand instruction by
// which of Dst/Src is the zero Operand value (OperandNone).
func operandCount(in z80ic.Instr) int {
	hasDst := in.Dst.Kind != z80ic.OperandNone
	hasSrc := in.Src.Kind != z80ic.OperandNone
	switch {
	case hasDst && hasSrc:
		return 2
	case hasDst || hasSrc:
		return 1
	default:
		return 0
	}
}

// soleOperand picks whichever of Dst/Src is populated on a one-operand
// instruction (push/pop/inc/dec/neg/cpl/unconditional jump-or-call).
func soleOperand(in z80ic.Instr) z80ic.Operand {
	if in.Dst.Kind != z80ic.OperandNone {
		return in.Dst
	}
	return in.Src
}
