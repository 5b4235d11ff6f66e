package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

func TestAdditiveEpsilon(t *testing.T) {
	tests := []struct {
		name     string
		a, b     optimization.ObjectiveVector
		expected float64
	}{
		{
			name:     "identical points",
			a:        optimization.ObjectiveVector{2, 2},
			b:        optimization.ObjectiveVector{2, 2},
			expected: 0,
		},
		{
			name:     "a dominates b",
			a:        optimization.ObjectiveVector{0, 0},
			b:        optimization.ObjectiveVector{4, 2},
			expected: -0.5, // max(-1, -0.5) after scaling by 4
		},
		{
			name:     "trade-off",
			a:        optimization.ObjectiveVector{0, 4},
			b:        optimization.ObjectiveVector{4, 0},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eps := NewAdditiveEpsilon()
			eps.Setup([]float64{0, 0}, []float64{4, 4})

			result := eps.Compute(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 1e-12)
		})
	}
}

func TestAdditiveEpsilonWithoutBounds(t *testing.T) {
	eps := NewAdditiveEpsilon()
	assert.Equal(t, 3.0, eps.Compute(optimization.ObjectiveVector{4, 1}, optimization.ObjectiveVector{1, 1}))
}

func TestAdditiveEpsilonDegenerateBounds(t *testing.T) {
	eps := NewAdditiveEpsilon()
	eps.Setup([]float64{1, 0}, []float64{1, 2})

	// a zero-width objective is scaled by one instead of dividing by zero
	result := eps.Compute(optimization.ObjectiveVector{1, 0}, optimization.ObjectiveVector{1, 2})
	assert.InDelta(t, 0.0, result, 1e-12)
	assert.False(t, math.IsNaN(result))
}

func TestHypervolume(t *testing.T) {
	tests := []struct {
		name     string
		a, b     optimization.ObjectiveVector
		expected float64
	}{
		{
			name:     "a dominates b",
			a:        optimization.ObjectiveVector{0, 0},
			b:        optimization.ObjectiveVector{0.5, 0.5},
			expected: -0.75,
		},
		{
			name:     "b has exclusive volume",
			a:        optimization.ObjectiveVector{0, 0.5},
			b:        optimization.ObjectiveVector{0.5, 0},
			expected: 0.25,
		},
		{
			name:     "b dominates a",
			a:        optimization.ObjectiveVector{0.5, 0.5},
			b:        optimization.ObjectiveVector{0, 0},
			expected: 0.75,
		},
		{
			name:     "identical points",
			a:        optimization.ObjectiveVector{0.5, 0.5},
			b:        optimization.ObjectiveVector{0.5, 0.5},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hv := NewHypervolume(1)
			hv.Setup([]float64{0, 0}, []float64{1, 1})

			assert.InDelta(t, tt.expected, hv.Compute(tt.a, tt.b), 1e-12)
		})
	}
}

func TestHypervolumeThreeObjectives(t *testing.T) {
	hv := NewHypervolume(1)
	hv.Setup([]float64{0, 0, 0}, []float64{1, 1, 1})

	// the origin dominates the whole unit cube
	result := hv.Compute(optimization.ObjectiveVector{0, 0, 0}, optimization.ObjectiveVector{1, 1, 1})
	assert.InDelta(t, -1.0, result, 1e-12)
}

func TestNewHypervolumePanics(t *testing.T) {
	assert.Panics(t, func() { NewHypervolume(0.5) })
}

func TestByName(t *testing.T) {
	ind, err := ByName("epsilon")
	require.NoError(t, err)
	assert.IsType(t, &AdditiveEpsilon{}, ind)

	ind, err = ByName("hypervolume")
	require.NoError(t, err)
	assert.IsType(t, &Hypervolume{}, ind)

	_, err = ByName("igd")
	assert.Error(t, err)
}
