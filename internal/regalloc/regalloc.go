// Package regalloc assigns every internal/z80ic virtual register a fixed
// stack-frame slot and rewrites each instruction to load its operands
// from — and store its result back to — that slot through a small,
// fixed set of scratch registers. This deliberately
// trades code density for a uniform, easy-to-verify rewrite: unlike
// lang/gen/regalloc.go's linear-scan allocator, which keeps a virtual
// register resident in a physical register across as much of a basic
// block as it can and only spills under register pressure, this
// allocator never leaves a virtual register resident — every reference
// round-trips through its slot: a simple, unconditional spill-everything
// allocator with no coloring and no live-range splitting.
package regalloc

import (
	"go.uber.org/zap"

	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

// Allocator holds the per-procedure virtual-register-to-slot map built
// up while rewriting one Proc, mirroring lang/gen/regalloc.go's
// RegAllocator (virtToPhys/spillSlots/nextSpill), narrowed to the single
// "every virtual register spills" strategy.
type Allocator struct {
	log *zap.Logger
	slots map[z80ic.VReg]int
	frameSize int
	spillCount int
}

// New returns an Allocator that discards trace output.
func New() *Allocator { return &Allocator{log: zap.NewNop()} }

// NewWithLogger returns an Allocator that reports its spill-slot
// assignments and per-instruction rewrites to log, for the CLI's -vv
// tracing.
func NewWithLogger(log *zap.Logger) *Allocator { return &Allocator{log: log} }

// AllocateModule rewrites every Proc in mod in place, returning mod for
// convenience.
func (a *Allocator) AllocateModule(mod *z80ic.Module) *z80ic.Module {
	for i := range mod.Procs {
		mod.Procs[i] = a.AllocateProc(mod.Procs[i])
	}
	return mod
}

// AllocateProc assigns a frame slot to every virtual register p's
// instructions reference, rewrites every instruction to go through
// scratch registers instead, and synthesizes the entry/exit sequence
// that reserves the frame and copies stack-passed parameters into their
// slots.
func (a *Allocator) AllocateProc(p z80ic.Proc) z80ic.Proc {
	a.slots = make(map[z80ic.VReg]int)
	a.frameSize = 0
	a.spillCount = 0

	a.collectSlots(p.Instrs)
	a.log.Debug("assigned spill slots", zap.String("proc", p.Name),
		zap.Int("count", a.spillCount), zap.Int("frameSize", a.frameSize))

	var out []z80ic.Instr
	out = append(out, a.prologue(p)...)
	for _, in := range p.Instrs {
		out = append(out, a.rewriteInstr(in)...)
	}

	p.Instrs = out
	p.FrameSize = a.frameSize
	return p
}

// collectSlots walks every operand of every instruction, assigning a
// fresh, growing-downward frame offset the first time it sees each
// distinct virtual register. A `vr` (8-bit) costs one byte; a `vrr`
// (16-bit) costs two.
func (a *Allocator) collectSlots(instrs []z80ic.Instr) {
	assign := func(o z80ic.Operand) {
		if !o.IsVirtual() {
			return
		}
		if _, ok := a.slots[o.Virt]; ok {
			return
		}
		size := 1
		if o.Virt.Wide {
			size = 2
		}
		a.frameSize += size
		a.slots[o.Virt] = a.frameSize // offset counts down from ix, so (ix-offset)
		a.spillCount++
	}
	for _, in := range instrs {
		assign(in.Dst)
		assign(in.Src)
	}
}

func (a *Allocator) slotOperand(v z80ic.VReg) z80ic.Operand {
	return z80ic.IndirectDisp(z80ic.RegIX, -a.slots[v])
}

// halves returns the high, low 8-bit halves of a 16-bit pair register.
func halves(pair z80ic.PhysReg) (hi, lo z80ic.PhysReg) {
	switch pair {
	case z80ic.RegHL:
		return z80ic.RegH, z80ic.RegL
	case z80ic.RegDE:
		return z80ic.RegD, z80ic.RegE
	case z80ic.RegBC:
		return z80ic.RegB, z80ic.RegC
	default:
		return z80ic.RegNone, z80ic.RegNone
	}
}

// loadFromSlot emits the 1 or 2 byte loads that copy v's slot into the
// scratch register (a single 8-bit register, or a pair's two halves).
func loadFromSlot(out *[]z80ic.Instr, v z80ic.VReg, slot z80ic.Operand, scratch z80ic.PhysReg) {
	if !v.Wide {
		*out = append(*out, z80ic.Two(z80ic.MnLd, z80ic.Phys(scratch), slot))
		return
	}
	hi, lo := halves(scratch)
	loSlot := slot
	hiSlot := z80ic.IndirectDisp(slot.Phys, slot.Disp+1)
	*out = append(*out, z80ic.Two(z80ic.MnLd, z80ic.Phys(lo), loSlot))
	*out = append(*out, z80ic.Two(z80ic.MnLd, z80ic.Phys(hi), hiSlot))
}

// storeToSlot is loadFromSlot's mirror: it writes scratch back to v's slot.
func storeToSlot(out *[]z80ic.Instr, v z80ic.VReg, slot z80ic.Operand, scratch z80ic.PhysReg) {
	if !v.Wide {
		*out = append(*out, z80ic.Two(z80ic.MnLd, slot, z80ic.Phys(scratch)))
		return
	}
	hi, lo := halves(scratch)
	loSlot := slot
	hiSlot := z80ic.IndirectDisp(slot.Phys, slot.Disp+1)
	*out = append(*out, z80ic.Two(z80ic.MnLd, loSlot, z80ic.Phys(lo)))
	*out = append(*out, z80ic.Two(z80ic.MnLd, hiSlot, z80ic.Phys(hi)))
}

// scratchFor returns the fixed scratch register this allocator always
// uses for a virtual register of the given width: the primary (A/HL)
// for a destination operand, the secondary (B/DE) for a source operand.
func scratchFor(wide, primary bool) z80ic.PhysReg {
	switch {
	case wide && primary:
		return z80ic.RegHL
	case wide && !primary:
		return z80ic.RegDE
	case !wide && primary:
		return z80ic.RegA
	default:
		return z80ic.RegB
	}
}

// resolve replaces a virtual operand with its scratch register,
// emitting the load (and, for a write, deferring a store) needed to
// keep that scratch register's value in sync with the operand's slot.
func (a *Allocator) resolve(out *[]z80ic.Instr, o z80ic.Operand, primary, needsPreload bool) (z80ic.Operand, func(*[]z80ic.Instr)) {
	if !o.IsVirtual() {
		return o, func(*[]z80ic.Instr) {}
	}
	scratch := scratchFor(o.Virt.Wide, primary)
	slot := a.slotOperand(o.Virt)
	if needsPreload {
		loadFromSlot(out, o.Virt, slot, scratch)
	}
	v := o.Virt
	storeBack := func(dst *[]z80ic.Instr) { storeToSlot(dst, v, slot, scratch) }
	return z80ic.Phys(scratch), storeBack
}

// rewriteInstr expands one virtual-register instruction into a sequence
// over physical scratch registers plus the original opcode, or passes
// the instruction through unchanged when it has no virtual operand
// (labels, unconditional/conditional jumps and calls, conditional ret, asm
// passthrough). An unconditional ret is preceded by the exit sequence
// that undoes the prologue: `ld sp, ix` then `pop ix`.
func (a *Allocator) rewriteInstr(in z80ic.Instr) []z80ic.Instr {
	var out []z80ic.Instr

	switch in.Op {
	case z80ic.MnRet:
		if in.Cond != z80ic.CondNone {
			return []z80ic.Instr{in}
		}
		return []z80ic.Instr{
			z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegSP), z80ic.Phys(z80ic.RegIX)),
			z80ic.One(z80ic.MnPop, z80ic.Phys(z80ic.RegIX)),
			in,
		}
	case z80ic.MnLabel, z80ic.MnAsm, z80ic.MnHalt, z80ic.MnNop,
		z80ic.MnDi, z80ic.MnEi, z80ic.MnExx, z80ic.MnExDEHL:
		return []z80ic.Instr{in}
	case z80ic.MnJp, z80ic.MnJr, z80ic.MnCall:
		if !in.Src.IsVirtual() {
			return []z80ic.Instr{in}
		}
	case z80ic.MnPush:
		dst, _ := a.resolve(&out, in.Dst, true, true)
		out = append(out, z80ic.One(z80ic.MnPush, dst))
		return out
	case z80ic.MnPop:
		dst, store := a.resolve(&out, in.Dst, true, false)
		out = append(out, z80ic.One(z80ic.MnPop, dst))
		store(&out)
		return out
	case z80ic.MnInc, z80ic.MnDec, z80ic.MnNeg, z80ic.MnCpl, z80ic.MnSla, z80ic.MnSra, z80ic.MnSrl:
		dst, store := a.resolve(&out, in.Dst, true, true)
		out = append(out, z80ic.One(in.Op, dst))
		store(&out)
		return out
	}

	// Two-operand form: ld needs no dest preload (it's a pure write);
	// every other ALU op reads the old Dst value as its left operand.
	needsPreload := in.Op != z80ic.MnLd
	src, _ := a.resolve(&out, in.Src, false, true)
	dst, store := a.resolve(&out, in.Dst, true, needsPreload)
	out = append(out, z80ic.Two(in.Op, dst, src))
	store(&out)
	return out
}

// prologue builds the standard ix-frame entry sequence: save the
// caller's ix, point ix at it, reserve FrameSize bytes of locals below
// it, and copy each stack-passed parameter (pushed by the caller in
// reverse, rightmost-first OpArg order, per internal/lower, so the
// first parameter ends up closest to the saved return address) into
// its slot.
//
// Every call argument is pushed as a 16-bit value regardless of its C
// type's width (the lowering widens a `char` argument the same
// way C's own default argument promotions would), so every parameter
// here is addressed as a 2-byte stack cell above the saved ix/return
// address pair.
func (a *Allocator) prologue(p z80ic.Proc) []z80ic.Instr {
	var out []z80ic.Instr
	out = append(out, z80ic.One(z80ic.MnPush, z80ic.Phys(z80ic.RegIX)))
	out = append(out, z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegIX), z80ic.Imm(0)))
	out = append(out, z80ic.Two(z80ic.MnAdd, z80ic.Phys(z80ic.RegIX), z80ic.Phys(z80ic.RegSP)))

	if a.frameSize > 0 {
		out = append(out, z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegHL), z80ic.Imm(int64(-a.frameSize))))
		out = append(out, z80ic.Two(z80ic.MnAdd, z80ic.Phys(z80ic.RegHL), z80ic.Phys(z80ic.RegSP)))
		out = append(out, z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegSP), z80ic.Phys(z80ic.RegHL)))
	}

	for i, v := range p.Params {
		if _, ok := a.slots[v]; !ok {
			continue // parameter never referenced in the body; nothing to copy in
		}
		argOffset := 4 + 2*i
		srcSlot := z80ic.IndirectDisp(z80ic.RegIX, argOffset)
		srcSlotHi := z80ic.IndirectDisp(z80ic.RegIX, argOffset+1)
		out = append(out, z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegE), srcSlot))
		if v.Wide {
			out = append(out, z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegD), srcSlotHi))
			storeToSlot(&out, v, a.slotOperand(v), z80ic.RegDE)
			continue
		}
		// Narrow parameter: every argument arrives promoted to 16 bits,
		// so only the low byte (already in e) is the real value.
		out = append(out, z80ic.Two(z80ic.MnLd, a.slotOperand(v), z80ic.Phys(z80ic.RegE)))
	}

	return out
}
