package s4vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessOrdersBySSNThenSumThenSIDThenSeq(t *testing.T) {
	base := S4Vector{SSN: 1, Sum: 5, SID: 1, Seq: 1}

	assert.True(t, base.Less(S4Vector{SSN: 2, Sum: 0, SID: 0, Seq: 0}))
	assert.True(t, base.Less(S4Vector{SSN: 1, Sum: 6, SID: 0, Seq: 0}))
	assert.True(t, base.Less(S4Vector{SSN: 1, Sum: 5, SID: 2, Seq: 0}))
	assert.True(t, base.Less(S4Vector{SSN: 1, Sum: 5, SID: 1, Seq: 2}))
	assert.False(t, base.Less(base))
}

func TestGreaterIsInverseOfLess(t *testing.T) {
	a := S4Vector{SSN: 1, Sum: 2, SID: 3, Seq: 4}
	b := S4Vector{SSN: 1, Sum: 2, SID: 3, Seq: 5}

	assert.True(t, b.Greater(a))
	assert.False(t, a.Greater(b))
}

func TestEqualRequiresAllFourComponents(t *testing.T) {
	a := S4Vector{SSN: 1, Sum: 2, SID: 3, Seq: 4}
	b := a
	assert.True(t, a.Equal(b))

	b.Seq++
	assert.False(t, a.Equal(b))
}

func TestGenerateNeitherNeighborPresent(t *testing.T) {
	g := NewGenerator(1, 7)
	id := g.Generate(Absent, Absent)

	require.Equal(t, uint64(1), id.SSN)
	require.Equal(t, uint64(7), id.SID)
	require.Equal(t, uint64(1), id.Seq)
	require.Equal(t, uint64(1), id.Sum)
}

func TestGenerateOnlyLeftPresent(t *testing.T) {
	g := NewGenerator(1, 7)
	left := S4Vector{Sum: 10}
	id := g.Generate(Present(left), Absent)
	assert.Equal(t, uint64(11), id.Sum)
}

func TestGenerateOnlyRightPresent(t *testing.T) {
	g := NewGenerator(1, 7)
	right := S4Vector{Sum: 10}
	id := g.Generate(Absent, Present(right))
	assert.Equal(t, uint64(5), id.Sum)
}

func TestGenerateBothPresentAverages(t *testing.T) {
	g := NewGenerator(1, 7)
	left := S4Vector{Sum: 4}
	right := S4Vector{Sum: 9}
	id := g.Generate(Present(left), Present(right))
	assert.Equal(t, uint64(6), id.Sum) // integer division: (4+9)/2 = 6
}

func TestGenerateIncrementsSeqMonotonically(t *testing.T) {
	g := NewGenerator(1, 1)
	first := g.Generate(Absent, Absent)
	second := g.Generate(Absent, Absent)
	assert.Less(t, first.Seq, second.Seq)
	assert.Equal(t, uint64(2), g.LocalSeq())
}

func TestObserveNeverMovesSeqBackward(t *testing.T) {
	g := NewGenerator(1, 1)
	g.Generate(Absent, Absent) // seq=1
	g.Observe(10)
	assert.Equal(t, uint64(10), g.LocalSeq())
	g.Observe(3)
	assert.Equal(t, uint64(10), g.LocalSeq())
}
