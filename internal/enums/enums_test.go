package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jxsvoboda/sycek-sub004/internal/ctype"
)

func int64p(v int64) *int64 { return &v }

func Test_AssignDefaultsFromZero(t *testing.T) {
	values := Assign([]string{"A", "B", "C"}, []*int64{nil, nil, nil})
	assert.Equal(t, []Enumerator{{"A", 0}, {"B", 1}, {"C", 2}}, values)
}

func Test_AssignExplicitOverridesThenResumes(t *testing.T) {
	values := Assign([]string{"A", "B", "C"}, []*int64{nil, int64p(10), nil})
	assert.Equal(t, []Enumerator{{"A", 0}, {"B", 10}, {"C", 11}}, values)
}

func Test_UnderlyingTypeWidensForLargeValues(t *testing.T) {
	small := []Enumerator{{"A", 0}, {"B", 100}}
	assert.True(t, UnderlyingType(small).Equal(ctype.IntType))

	large := []Enumerator{{"A", 100000}}
	assert.True(t, UnderlyingType(large).Equal(ctype.LongType))
}
