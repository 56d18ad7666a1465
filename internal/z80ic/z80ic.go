// Package z80ic is the compiler's second, target-specific intermediate
// form: Z80 instructions over virtual-register operands, the way
// internal/codegen produces them, and over physical-register/stack-slot
// operands, the way internal/regalloc rewrites them in place. It
// generalizes ygen/emit.go's Emitter — a set of per-mnemonic methods that
// print directly to a *bufio.Writer (Ldw/Stw/Add/Br/...) — into a
// structured Instr value internal/asmprint walks later, so the allocator
// has something to rewrite between codegen and text emission that a
// single-pass emitter would never need.
package z80ic

import "fmt"

// PhysReg names one of the Z80's real registers, the physical
// register file: the 8-bit halves plus the 16-bit pairs codegen and the
// allocator address.
type PhysReg int

const (
	RegNone PhysReg = iota
	RegA
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegBC
	RegDE
	RegHL
	RegSP
	RegIX
	RegIY
)

var physNames = map[PhysReg]string{
	RegA: "a", RegB: "b", RegC: "c", RegD: "d", RegE: "e", RegH: "h", RegL: "l",
	RegBC: "bc", RegDE: "de", RegHL: "hl", RegSP: "sp", RegIX: "ix", RegIY: "iy",
}

func (r PhysReg) String() string { return physNames[r] }

// Wide reports whether r is a 16-bit register pair.
func (r PhysReg) Wide() bool {
	switch r {
	case RegBC, RegDE, RegHL, RegSP, RegIX, RegIY:
		return true
	default:
		return false
	}
}

// VReg is a virtual register: an unbounded name codegen invents freely,
// narrowed to a physical register or a stack slot only by
// internal/regalloc. Wide distinguishes an 8-bit "vr"
// from a 16-bit register-pair "vrr", mirroring how the Z80's own register
// file mixes single registers and pairs.
type VReg struct {
	ID int
	Wide bool
}

func (v VReg) String() string {
	if v.Wide {
		return fmt.Sprintf("vrr%d", v.ID)
	}
	return fmt.Sprintf("vr%d", v.ID)
}

// OperandKind tags an Operand's form.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandPhys
	OperandVirtual
	OperandImm
	OperandLabel
	OperandIndirectPhys // (HL), (IX+d)
	OperandIndirectLabel // (label), for a direct load/store to a data symbol
)

// Operand is one instruction operand: a physical or virtual register, an
// immediate, a label reference, or a memory reference through a register
// (with an optional (IX+d)-style displacement) or through a data label.
type Operand struct {
	Kind OperandKind
	Phys PhysReg
	Virt VReg
	Imm int64
	Label string
	Disp int
}

func Phys(r PhysReg) Operand { return Operand{Kind: OperandPhys, Phys: r} }
func Virt(v VReg) Operand { return Operand{Kind: OperandVirtual, Virt: v} }
func Imm(v int64) Operand { return Operand{Kind: OperandImm, Imm: v} }
func Lbl(name string) Operand { return Operand{Kind: OperandLabel, Label: name} }
func Indirect(r PhysReg) Operand { return Operand{Kind: OperandIndirectPhys, Phys: r} }
func IndirectDisp(r PhysReg, d int) Operand {
	return Operand{Kind: OperandIndirectPhys, Phys: r, Disp: d}
}
func IndirectLabel(name string) Operand { return Operand{Kind: OperandIndirectLabel, Label: name} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandPhys:
		return o.Phys.String()
	case OperandVirtual:
		return o.Virt.String()
	case OperandImm:
		return fmt.Sprintf("%d", o.Imm)
	case OperandLabel:
		return o.Label
	case OperandIndirectPhys:
		if o.Disp == 0 {
			return "(" + o.Phys.String() + ")"
		}
		if o.Disp > 0 {
			return fmt.Sprintf("(%s+%d)", o.Phys, o.Disp)
		}
		return fmt.Sprintf("(%s%d)", o.Phys, o.Disp)
	case OperandIndirectLabel:
		return "(" + o.Label + ")"
	default:
		return "?"
	}
}

// IsVirtual reports whether o still names a virtual register, used by
// internal/regalloc to find every operand it must rewrite.
func (o Operand) IsVirtual() bool { return o.Kind == OperandVirtual }

// Mnemonic is a Z80 opcode or assembler pseudo-op.
type Mnemonic int

const (
	MnNone Mnemonic = iota
	MnLd
	MnAdd
	MnAdc
	MnSub
	MnSbc
	MnAnd
	MnOr
	MnXor
	MnCp
	MnInc
	MnDec
	MnNeg
	MnCpl
	MnRlca
	MnRrca
	MnRla
	MnRra
	MnSla
	MnSra
	MnSrl
	MnPush
	MnPop
	MnExDEHL
	MnExx
	MnJp
	MnJr
	MnCall
	MnRet
	MnHalt
	MnNop
	MnDi
	MnEi
	MnLabel // pseudo: emit a code label
	MnAsm // pseudo: verbatim inline text
)

var mnemonicNames = map[Mnemonic]string{
	MnLd: "ld", MnAdd: "add", MnAdc: "adc", MnSub: "sub", MnSbc: "sbc",
	MnAnd: "and", MnOr: "or", MnXor: "xor", MnCp: "cp",
	MnInc: "inc", MnDec: "dec", MnNeg: "neg", MnCpl: "cpl",
	MnRlca: "rlca", MnRrca: "rrca", MnRla: "rla", MnRra: "rra",
	MnSla: "sla", MnSra: "sra", MnSrl: "srl",
	MnPush: "push", MnPop: "pop", MnExDEHL: "ex de,hl", MnExx: "exx",
	MnJp: "jp", MnJr: "jr", MnCall: "call", MnRet: "ret",
	MnHalt: "halt", MnNop: "nop", MnDi: "di", MnEi: "ei",
}

func (m Mnemonic) String() string { return mnemonicNames[m] }

// Cond is a Z80 condition code, used by conditional jumps/calls/rets
// (`jp z, label`, `jp nz, label`,...), the branch lowering.
type Cond int

const (
	CondNone Cond = iota
	CondZ
	CondNZ
	CondC
	CondNC
)

var condNames = map[Cond]string{CondZ: "z", CondNZ: "nz", CondC: "c", CondNC: "nc"}

func (c Cond) String() string { return condNames[c] }

// Instr is one Z80 instruction or assembler pseudo-op. Only the fields
// relevant to Op are meaningful: zero-operand ops leave Dst/Src as their
// zero value, MnLabel uses Label, MnAsm uses Text.
type Instr struct {
	Op Mnemonic
	Dst Operand
	Src Operand
	Cond Cond
	Label string // MnLabel's name, or a jump/call target carried in Src instead
	Text string // MnAsm's verbatim text
}

// Two/One/Zero build common instruction shapes, mirroring
// ygen/emit.go's Instr2/Instr1/Instr0 helpers but returning a value
// instead of writing text immediately.
func Two(op Mnemonic, dst, src Operand) Instr { return Instr{Op: op, Dst: dst, Src: src} }
func One(op Mnemonic, dst Operand) Instr { return Instr{Op: op, Dst: dst} }
func Zero(op Mnemonic) Instr { return Instr{Op: op} }

// CondJump builds a conditional jump/call to label.
func CondJump(op Mnemonic, cond Cond, label string) Instr {
	return Instr{Op: op, Cond: cond, Src: Lbl(label)}
}

// Jump builds an unconditional jump/call to label.
func Jump(op Mnemonic, label string) Instr {
	return Instr{Op: op, Src: Lbl(label)}
}

// LabelInstr emits a code label pseudo-instruction.
func LabelInstr(name string) Instr { return Instr{Op: MnLabel, Label: name} }

// AsmText emits verbatim inline assembly text.
func AsmText(text string) Instr { return Instr{Op: MnAsm, Text: text} }

// DataKind tags a Data item's storage form.
type DataKind int

const (
	DataSpace DataKind = iota // zero-initialized reservation (`defs`)
	DataBytes // explicit byte initializer (`defb`)
	DataWords // explicit word initializer (`defw`)
)

// Data is one file-scope object lowered to its final Z80 storage form.
type Data struct {
	Name string
	Public bool
	Kind DataKind
	Size int
	Bytes []byte
	Words []int
}

// Proc is one function's lowered, allocated instruction stream plus its
// final stack-frame size. Params carries the virtual
// register internal/codegen assigned to each formal parameter, in
// declaration order, so internal/regalloc can synthesize the
// stack-argument copy-in sequence without needing the source-level
// parameter names (which the virtual-register instruction stream no
// longer carries).
type Proc struct {
	Name string
	Public bool
	FrameSize int
	Params []VReg
	Instrs []Instr
}

// Module is a whole translation unit's Z80 IC: its externs (referenced
// but not defined here), its data objects, its procedures, and any
// passthrough file-scope asm blocks, the lowering of an extern
// declaration with no local definition.
type Module struct {
	SourceFile string
	Externs []string
	Data []Data
	Procs []Proc
	AsmBlocks []string
}
