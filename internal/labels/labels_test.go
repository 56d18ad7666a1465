package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
)

func Test_ForwardGotoIsNotUndefinedUntilChecked(t *testing.T) {
	tab := New()
	tab.Use("done", srcpos.Start("f.c"))
	assert.Len(t, tab.Undefined(), 1)

	tab.Define("done", srcpos.Start("f.c"))
	assert.Len(t, tab.Undefined(), 0)
}

func Test_DuplicateDefineFails(t *testing.T) {
	tab := New()
	assert.True(t, tab.Define("l1", srcpos.Start("f.c")))
	assert.False(t, tab.Define("l1", srcpos.Start("f.c")))
}

func Test_UnusedLabelDetected(t *testing.T) {
	tab := New()
	tab.Define("skip", srcpos.Start("f.c"))
	unused := tab.Unused()
	assert.Len(t, unused, 1)
	assert.Equal(t, "skip", unused[0].Name)
}
