package optimization

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectiveVectorDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b ObjectiveVector
		want bool
	}{
		{"strictly better everywhere", ObjectiveVector{1, 1}, ObjectiveVector{2, 2}, true},
		{"better in one, equal in other", ObjectiveVector{1, 2}, ObjectiveVector{2, 2}, true},
		{"equal vectors", ObjectiveVector{2, 2}, ObjectiveVector{2, 2}, false},
		{"trade-off", ObjectiveVector{1, 5}, ObjectiveVector{5, 1}, false},
		{"worse", ObjectiveVector{3, 3}, ObjectiveVector{2, 2}, false},
		{"length mismatch", ObjectiveVector{1}, ObjectiveVector{2, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Dominates(tt.b))
		})
	}
}

func TestObjectiveVectorLexLess(t *testing.T) {
	a := ObjectiveVector{1, 5}
	b := ObjectiveVector{1, 3}
	c := ObjectiveVector{2, 0}

	assert.True(t, b.LexLess(a, 0, 1), "tie on objective 0 is broken by objective 1")
	assert.False(t, a.LexLess(b, 0, 1))
	assert.True(t, a.LexLess(c, 0, 1))
	assert.True(t, c.LexLess(a, 1, 0))
	assert.False(t, a.LexLess(a, 0, 1), "a vector is never less than itself")
}

func TestObjectiveVectorClone(t *testing.T) {
	v := ObjectiveVector{1, 2}
	c := v.Clone()
	c[0] = 42

	assert.Equal(t, 1.0, v[0])
	assert.True(t, v.Equal(ObjectiveVector{1, 2}))
	assert.Nil(t, ObjectiveVector(nil).Clone())
}

func TestSortedFront(t *testing.T) {
	front := []ObjectiveVector{{3, 1}, {1, 5}, {1, 4}}

	got := SortedFront(front)

	assert.Equal(t, []ObjectiveVector{{1, 4}, {1, 5}, {3, 1}}, got)
	assert.Equal(t, ObjectiveVector{3, 1}, front[0], "input must not be reordered")
}

func TestErrorWrapping(t *testing.T) {
	err := WrapErrorf(ErrPopulationTooSmall, "need at least %d solutions", 2).
		WithOperation("Run").
		WithComponent("ibmols")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPopulationTooSmall))
	assert.Equal(t, "ibmols: Run: need at least 2 solutions: population too small", err.Error())

	wrapped := fmt.Errorf("job failed: %w", err)
	e, ok := IsOptimizationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Run", e.Op)

	assert.Nil(t, WrapErrorf(nil, "ignored"))
	_, ok = IsOptimizationError(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "<nil>", (*Error)(nil).Error())
}
