package asmprint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/z80ic"
)

func render(t *testing.T, mod *z80ic.Module) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Print(mod))
	return buf.String()
}

func Test_ProcWithPhysicalOperandsPrintsPlainMnemonics(t *testing.T) {
	mod := &z80ic.Module{
		Procs: []z80ic.Proc{{
			Name:   "main",
			Public: true,
			Instrs: []z80ic.Instr{
				z80ic.Two(z80ic.MnLd, z80ic.Phys(z80ic.RegA), z80ic.Imm(5)),
				z80ic.Zero(z80ic.MnRet),
			},
		}},
	}

	out := render(t, mod)
	assert.Contains(t, out, "public\tmain")
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "ld\ta,5")
	assert.Contains(t, out, "ret")
}

func Test_ConditionalJumpPrintsConditionBeforeLabel(t *testing.T) {
	mod := &z80ic.Module{
		Procs: []z80ic.Proc{{
			Name: "branchy",
			Instrs: []z80ic.Instr{
				z80ic.CondJump(z80ic.MnJp, z80ic.CondZ, ".Lend"),
				z80ic.LabelInstr(".Lend"),
				z80ic.Zero(z80ic.MnRet),
			},
		}},
	}

	out := render(t, mod)
	assert.Contains(t, out, "jp\tz,.Lend")
	assert.Contains(t, out, ".Lend:")
}

func Test_DataBytesChunkedIntoDefbLines(t *testing.T) {
	mod := &z80ic.Module{
		Data: []z80ic.Data{
			{Name: "greeting", Public: true, Kind: z80ic.DataBytes, Bytes: []byte("hi")},
		},
	}

	out := render(t, mod)
	assert.Contains(t, out, "public\tgreeting")
	assert.Contains(t, out, "greeting:")
	assert.Contains(t, out, "defb\t068h, 069h")
}

func Test_DataSpaceReservation(t *testing.T) {
	mod := &z80ic.Module{
		Data: []z80ic.Data{
			{Name: "counter", Kind: z80ic.DataSpace, Size: 2},
		},
	}

	out := render(t, mod)
	assert.Contains(t, out, "counter:")
	assert.Contains(t, out, "defs\t2")
}

func Test_FrameSizeEquPrecedesLabel(t *testing.T) {
	mod := &z80ic.Module{
		Procs: []z80ic.Proc{{
			Name:      "withframe",
			FrameSize: 4,
			Instrs:    []z80ic.Instr{z80ic.Zero(z80ic.MnRet)},
		}},
	}

	out := render(t, mod)
	lines := strings.Split(out, "\n")
	var equIdx, labelIdx int
	for i, l := range lines {
		if strings.Contains(l, "withframe.frame") {
			equIdx = i
		}
		if l == "withframe:" {
			labelIdx = i
		}
	}
	assert.Less(t, equIdx, labelIdx)
}
