package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxsvoboda/sycek-sub004/internal/srcpos"
)

func Test_HasErrorsOnlyTriggersOnErrorSeverity(t *testing.T) {
	b := New()
	b.Notef(srcpos.Start("t.c"), KindNotImplemented, "a note")
	b.Warnf(srcpos.Start("t.c"), KindLabelUnused, "a warning")
	assert.False(t, b.HasErrors())

	b.Errorf(srcpos.Start("t.c"), KindTypeMismatch, "an error")
	assert.True(t, b.HasErrors())
	assert.Equal(t, 3, b.Len())
}

func Test_SortedOrdersByPositionStableOnTies(t *testing.T) {
	b := New()
	late := srcpos.Position{File: "t.c", Offset: 10, Line: 2, Column: 1}
	early := srcpos.Position{File: "t.c", Offset: 1, Line: 1, Column: 2}
	tieA := srcpos.Position{File: "t.c", Offset: 5, Line: 1, Column: 6}
	tieB := tieA

	b.Errorf(late, KindTypeMismatch, "late")
	b.Errorf(tieA, KindTypeMismatch, "tie-a")
	b.Errorf(early, KindTypeMismatch, "early")
	b.Errorf(tieB, KindTypeMismatch, "tie-b")

	sorted := b.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, "early", sorted[0].Message)
	assert.Equal(t, "tie-a", sorted[1].Message)
	assert.Equal(t, "tie-b", sorted[2].Message)
	assert.Equal(t, "late", sorted[3].Message)
}

func Test_WriteToFormatsFileLineColSeverityMessage(t *testing.T) {
	b := New()
	b.Errorf(srcpos.Position{File: "t.c", Line: 3, Column: 5}, KindBadLvalue, "cannot assign to %q", "x")

	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf))
	assert.Equal(t, "t.c:3:5: error: cannot assign to \"x\"\n", buf.String())
}

func Test_FatalWrapsAndUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := NewFatal(cause)
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	var f *Fatal
	require.True(t, errors.As(err, &f))
	assert.Equal(t, cause.Error(), f.Error())
}

func Test_NewFatalOfNilIsNil(t *testing.T) {
	assert.Nil(t, NewFatal(nil))
}

func Test_IsFatalFalseForOrdinaryError(t *testing.T) {
	assert.False(t, IsFatal(errors.New("not fatal")))
}
