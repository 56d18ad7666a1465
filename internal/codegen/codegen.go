// Package codegen lowers internal/ir's typed three-address IR into
// internal/z80ic instructions over virtual registers:
// one or more Z80 IC instructions per IR instruction, widening every
// operand to either an 8-bit `vr` or a 16-bit `vrr` virtual register
// depending on its IR type's width. It generalizes ygen/emit.go's
// per-opcode emission (one Emitter call per IRInstr case) from directly
// printing WUT-4 text to building a z80ic.Instr value internal/regalloc
// can still rewrite, since the allocator runs as a distinct pass
// a single-pass generator would never need.
package codegen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jxsvoboda/sycek-sub004/internal/ir"
	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

// runtimeHelper names the library routine calls out for a Z80
// operation with no native opcode (16-bit multiply/divide/shift-by-variable).
var runtimeHelper = map[ir.Op]string{
	ir.OpMul: "__mul16",
	ir.OpDivS: "__divs16",
	ir.OpDivU: "__divu16",
	ir.OpModS: "__mods16",
	ir.OpModU: "__modu16",
	ir.OpShl: "__shl16",
	ir.OpShrS: "__shrs16",
	ir.OpShrU: "__shru16",
}

// nativeBinOp maps an IR opcode with a direct Z80 two-operand form
// (`op dst, src`, dst implicitly accumulated into) to its mnemonic.
var nativeBinOp = map[ir.Op]z80ic.Mnemonic{
	ir.OpAdd: z80ic.MnAdd,
	ir.OpSub: z80ic.MnSub,
	ir.OpAnd: z80ic.MnAnd,
	ir.OpOr: z80ic.MnOr,
	ir.OpXor: z80ic.MnXor,
}

// CodeGen turns one ir.Module into a z80ic.Module, assigning a fresh
// virtual register to every IR name it first encounters.
type CodeGen struct {
	vregs map[string]z80ic.VReg
	nextID int
	instrs []z80ic.Instr
	labelPfx int
	log *zap.Logger
}

// New returns an empty CodeGen that discards trace output.
func New() *CodeGen {
	return &CodeGen{vregs: make(map[string]z80ic.VReg), log: zap.NewNop()}
}

// NewWithLogger returns a CodeGen that reports one line per lowered
// procedure/instruction to log, for the CLI's -vv tracing.
func NewWithLogger(log *zap.Logger) *CodeGen {
	return &CodeGen{vregs: make(map[string]z80ic.VReg), log: log}
}

// Generate lowers mod to Z80 IC.
func (c *CodeGen) Generate(mod *ir.Module) *z80ic.Module {
	out := &z80ic.Module{SourceFile: mod.SourceFile, AsmBlocks: mod.AsmBlocks}
	for _, d := range mod.Data {
		out.Data = append(out.Data, c.lowerData(d))
	}
	for _, p := range mod.Procs {
		c.log.Debug("lowering proc", zap.String("proc", p.Name), zap.Int("instrs", len(p.Instrs)))
		out.Procs = append(out.Procs, c.lowerProc(p))
	}
	return out
}

func (c *CodeGen) lowerData(d ir.Data) z80ic.Data {
	out := z80ic.Data{Name: d.Name, Public: d.Public, Size: d.Size}
	switch d.Kind {
	case ir.DataBytes:
		out.Kind = z80ic.DataBytes
		out.Bytes = d.Bytes
	default:
		out.Kind = z80ic.DataSpace
	}
	return out
}

func (c *CodeGen) lowerProc(p ir.Proc) z80ic.Proc {
	c.vregs = make(map[string]z80ic.VReg)
	c.nextID = 0
	c.instrs = nil

	paramRegs := make([]z80ic.VReg, len(p.Params))
	for i, param := range p.Params {
		paramRegs[i] = c.vregFor(param.Name, param.Type)
	}
	for _, local := range p.Locals {
		c.vregFor(local.Name, local.Type)
	}

	for _, instr := range p.Instrs {
		c.lowerInstr(instr)
	}

	return z80ic.Proc{Name: p.Name, Public: p.Public, Params: paramRegs, Instrs: c.instrs}
}

func (c *CodeGen) vregFor(name string, t ir.Type) z80ic.VReg {
	if v, ok := c.vregs[name]; ok {
		return v
	}
	v := z80ic.VReg{ID: c.nextID, Wide: isWide(t)}
	c.nextID++
	c.vregs[name] = v
	return v
}

func isWide(t ir.Type) bool {
	switch t.Kind {
	case ir.TPtr:
		return true
	case ir.TInt:
		return t.Width > 1
	default:
		return true
	}
}

func (c *CodeGen) emit(i z80ic.Instr) { c.instrs = append(c.instrs, i) }

// operand converts an IR operand into a Z80 IC one, allocating a virtual
// register for a variable the first time it's referenced (this can
// happen for a parameter or local codegen hasn't walked yet, e.g. a
// forward reference across a goto).
func (c *CodeGen) operand(o ir.Operand) z80ic.Operand {
	switch o.Kind {
	case ir.OpndImmediate:
		return z80ic.Imm(o.Imm)
	case ir.OpndVar:
		return z80ic.Virt(c.vregFor(o.Name, o.Type))
	case ir.OpndLabel:
		return z80ic.Lbl(o.Name)
	default:
		return z80ic.Imm(0)
	}
}

func (c *CodeGen) lowerInstr(in ir.Instr) {
	c.log.Debug("lowering instr", zap.String("op", in.Op.String()), zap.Int("line", in.Line))
	switch in.Op {
	case ir.OpConst, ir.OpCopy:
		c.lowerCopy(in)
	case ir.OpAddr:
		c.emit(z80ic.Two(z80ic.MnLd, c.destOperand(in), z80ic.Lbl(in.Args[0].Name)))
	case ir.OpLoad:
		c.lowerLoad(in)
	case ir.OpStore:
		c.lowerStore(in)
	case ir.OpAdd, ir.OpSub, ir.OpAnd, ir.OpOr, ir.OpXor:
		c.lowerNativeBinOp(in)
	case ir.OpMul, ir.OpDivS, ir.OpDivU, ir.OpModS, ir.OpModU, ir.OpShl, ir.OpShrS, ir.OpShrU:
		c.lowerRuntimeBinOp(in)
	case ir.OpNeg:
		c.lowerUnary(in, z80ic.MnNeg)
	case ir.OpNot:
		c.lowerUnary(in, z80ic.MnCpl)
	case ir.OpEq, ir.OpNe, ir.OpLtS, ir.OpLeS, ir.OpGtS, ir.OpGeS, ir.OpLtU, ir.OpLeU, ir.OpGtU, ir.OpGeU:
		c.lowerCompare(in)
	case ir.OpTrunc, ir.OpExt:
		c.lowerConvert(in)
	case ir.OpLabel:
		c.emit(z80ic.LabelInstr(in.Args[0].Name))
	case ir.OpJump:
		c.emit(z80ic.Jump(z80ic.MnJp, in.Args[0].Name))
	case ir.OpJumpIfZero:
		c.lowerCondJump(in, z80ic.CondZ)
	case ir.OpJumpIfNotZero:
		c.lowerCondJump(in, z80ic.CondNZ)
	case ir.OpArg:
		c.lowerArg(in)
	case ir.OpCall:
		c.lowerCall(in)
	case ir.OpReturn:
		c.lowerReturn(in)
	case ir.OpAsm:
		c.emit(z80ic.AsmText(in.AsmText))
	}
}

func (c *CodeGen) destOperand(in ir.Instr) z80ic.Operand {
	return z80ic.Virt(c.vregFor(in.Dest, in.DestType))
}

func (c *CodeGen) lowerCopy(in ir.Instr) {
	dst := c.destOperand(in)
	src := c.operand(in.Args[0])
	c.emit(z80ic.Two(z80ic.MnLd, dst, src))
}

func (c *CodeGen) lowerLoad(in ir.Instr) {
	dst := c.destOperand(in)
	addr := c.operand(in.Args[0])
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegHL), addr))
	c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Indirect(z80ic.RegHL)))
}

func (c *CodeGen) lowerStore(in ir.Instr) {
	addr := c.operand(in.Args[0])
	val := c.operand(in.Args[1])
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegHL), addr))
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Indirect(z80ic.RegHL), val))
}

// lowerNativeBinOp emits the classic two-instruction Z80 shape for an
// opcode with a direct `op dst, src` form: move the first operand into
// dst if it isn't already there, then accumulate the second into it.
func (c *CodeGen) lowerNativeBinOp(in ir.Instr) {
	dst := c.destOperand(in)
	a := c.operand(in.Args[0])
	b := c.operand(in.Args[1])
	if dst != a {
		c.emit(z80ic.Two(z80ic.MnLd, dst, a))
	}
	c.emit(z80ic.Two(nativeBinOp[in.Op], dst, b))
}

// lowerRuntimeBinOp lowers an operator with no native Z80 opcode (16-bit
// multiply, divide, variable shift) to a call into a small runtime
// support library, the note that these route through helpers
// rather than inline bit-twiddling sequences.
func (c *CodeGen) lowerRuntimeBinOp(in ir.Instr) {
	a := c.operand(in.Args[0])
	b := c.operand(in.Args[1])
	c.emit(z80ic.One(z80ic.MnPush, b))
	c.emit(z80ic.One(z80ic.MnPush, a))
	c.emit(z80ic.Jump(z80ic.MnCall, runtimeHelper[in.Op]))
	dst := c.destOperand(in)
	c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegBC)))
}

func (c *CodeGen) lowerUnary(in ir.Instr, mn z80ic.Mnemonic) {
	dst := c.destOperand(in)
	src := c.operand(in.Args[0])
	if dst != src {
		c.emit(z80ic.Two(z80ic.MnLd, dst, src))
	}
	c.emit(z80ic.One(mn, dst))
}

// lowerCompare routes every comparison through a runtime helper that
// normalizes the Z80's flag-based result into a 0/1 value in dst, since
// a 16-bit virtual-register compare has no single native instruction.
func (c *CodeGen) lowerCompare(in ir.Instr) {
	helper := map[ir.Op]string{
		ir.OpEq: "__cmpeq16", ir.OpNe: "__cmpne16",
		ir.OpLtS: "__cmplts16", ir.OpLeS: "__cmples16",
		ir.OpGtS: "__cmpgts16", ir.OpGeS: "__cmpges16",
		ir.OpLtU: "__cmpltu16", ir.OpLeU: "__cmpleu16",
		ir.OpGtU: "__cmpgtu16", ir.OpGeU: "__cmpgeu16",
	}[in.Op]
	a := c.operand(in.Args[0])
	b := c.operand(in.Args[1])
	c.emit(z80ic.One(z80ic.MnPush, b))
	c.emit(z80ic.One(z80ic.MnPush, a))
	c.emit(z80ic.Jump(z80ic.MnCall, helper))
	dst := c.destOperand(in)
	c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegBC)))
}

// lowerConvert lowers a width change: narrowing is a single `ld dst, src`
// copy into the narrower destination register, and widening
// zero/sign-extends the source into the destination vrr.
func (c *CodeGen) lowerConvert(in ir.Instr) {
	dst := c.destOperand(in)
	src := c.operand(in.Args[0])
	if in.Op == ir.OpTrunc {
		c.emit(z80ic.Two(z80ic.MnLd, dst, src))
		return
	}
	if in.DestType.Unsigned {
		c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegH), z80ic.Imm(0)))
		c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegL), src))
		c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegHL)))
		return
	}
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegA), src))
	c.emit(z80ic.Jump(z80ic.MnCall, "__sext8to16"))
	c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegHL)))
}

func (c *CodeGen) lowerCondJump(in ir.Instr, cond z80ic.Cond) {
	cv := c.operand(in.Args[0])
	target := in.Args[1].Name
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegHL), cv))
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegA), z80ic.Phys(z80ic.RegH)))
	c.emit(z80ic.Two(z80ic.MnOr, z80ic.Phys(z80ic.RegA), z80ic.Phys(z80ic.RegL)))
	c.emit(z80ic.CondJump(z80ic.MnJp, cond, target))
}

// freshVReg allocates a virtual register with no corresponding named IR
// variable, for a value that only exists transiently inside codegen's
// own expansion of one IR instruction (e.g. the widened copy of a
// narrow argument pushed for a call).
func (c *CodeGen) freshVReg(wide bool) z80ic.VReg {
	v := z80ic.VReg{ID: c.nextID, Wide: wide}
	c.nextID++
	return v
}

// widen zero/sign-extends an 8-bit operand to a fresh 16-bit virtual
// register, the same expansion lowerConvert uses for an explicit
// OpExt, factored out so a call argument can share it.
func (c *CodeGen) widen(op z80ic.Operand, unsigned bool) z80ic.Operand {
	dst := z80ic.Virt(c.freshVReg(true))
	if unsigned {
		c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegH), z80ic.Imm(0)))
		c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegL), op))
		c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegHL)))
		return dst
	}
	c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegA), op))
	c.emit(z80ic.Jump(z80ic.MnCall, "__sext8to16"))
	c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegHL)))
	return dst
}

// lowerArg pushes one call argument. internal/regalloc's prologue reads
// every incoming parameter as a 16-bit stack cell (the default
// argument promotion), so a narrower argument is widened here before
// the push rather than pushed as an 8-bit value the Z80's PUSH opcode
// can't even encode (PUSH only takes a register pair).
func (c *CodeGen) lowerArg(in ir.Instr) {
	argT := in.Args[0].Type
	val := c.operand(in.Args[0])
	if argT.Kind == ir.TInt && argT.Width < 2 {
		val = c.widen(val, argT.Unsigned)
	}
	c.emit(z80ic.One(z80ic.MnPush, val))
}

func (c *CodeGen) lowerCall(in ir.Instr) {
	callee := in.Args[0].Name
	c.emit(z80ic.Jump(z80ic.MnCall, callee))
	if in.Dest != "" {
		dst := c.destOperand(in)
		c.emit(z80ic.Two(z80ic.MnLd, dst, z80ic.Phys(z80ic.RegBC)))
	}
}

func (c *CodeGen) lowerReturn(in ir.Instr) {
	if len(in.Args) > 0 {
		c.emit(z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegBC), c.operand(in.Args[0])))
	}
	c.emit(z80ic.Zero(z80ic.MnRet))
}

// newLocalLabel is reserved for future passes (e.g. peephole) that need
// to invent their own labels distinct from internal/lower's.
func (c *CodeGen) newLocalLabel(prefix string) string {
	l := fmt.Sprintf(".LG%s%d", prefix, c.labelPfx)
	c.labelPfx++
	return l
}
