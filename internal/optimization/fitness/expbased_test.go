package fitness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
	"github.com/copyleftdev/IBMOLS/internal/optimization/indicator"
	"github.com/copyleftdev/IBMOLS/internal/optimization/optimizationtest"
)

func fitnessOf(pop []*optimizationtest.Point) []float64 {
	out := make([]float64, len(pop))
	for i, p := range pop {
		out[i] = p.Fit
	}
	return out
}

func clonePop(pop []*optimizationtest.Point) []*optimizationtest.Point {
	out := make([]*optimizationtest.Point, len(pop))
	for i, p := range pop {
		out[i] = p.Clone()
	}
	return out
}

func TestAssignTwoPoints(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	pop := optimizationtest.Population([]float64{0, 1}, []float64{1, 0})

	f.Assign(pop)

	// I(a, b) = I(b, a) = 1 in normalized space
	want := -math.Exp(-1 / DefaultKappa)
	optimizationtest.AssertFloat64SlicesEqual(t, fitnessOf(pop), []float64{want, want}, 1e-15)
}

func TestAssignRanksDominatedLowest(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	pop := optimizationtest.Population(
		[]float64{1, 5}, []float64{3, 3}, []float64{5, 1}, []float64{4, 4},
	)

	f.Assign(pop)

	for i := 0; i < 3; i++ {
		assert.Less(t, pop[3].Fit, pop[i].Fit, "(4,4) is dominated and must rank below member %d", i)
	}
}

func TestUpdateByAddingMatchesFullAssignment(t *testing.T) {
	for _, name := range []string{"epsilon", "hypervolume"} {
		t.Run(name, func(t *testing.T) {
			ind, err := indicator.ByName(name)
			require.NoError(t, err)
			f := NewExpBased[*optimizationtest.Point](ind, DefaultKappa)

			pop := optimizationtest.Population(
				[]float64{1, 5}, []float64{3, 3}, []float64{5, 1}, []float64{4, 4},
			)
			f.Assign(pop)

			candidate := optimization.ObjectiveVector{2, 4} // inside the bounds
			xFit := f.UpdateByAdding(pop, candidate)

			refInd, err := indicator.ByName(name)
			require.NoError(t, err)
			ref := NewExpBased[*optimizationtest.Point](refInd, DefaultKappa)
			full := append(clonePop(pop), optimizationtest.NewPoint(candidate...))
			ref.Assign(full)

			optimizationtest.AssertFloat64SlicesEqual(t, fitnessOf(pop), fitnessOf(full[:4]), 1e-9)
			assert.InDelta(t, full[4].Fit, xFit, 1e-9)
		})
	}
}

func TestAddThenDeleteRestoresFitness(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	pop := optimizationtest.Population(
		[]float64{1, 5}, []float64{3, 3}, []float64{5, 1}, []float64{4, 4},
	)
	f.Assign(pop)
	before := fitnessOf(pop)

	candidate := optimization.ObjectiveVector{2, 4}
	f.UpdateByAdding(pop, candidate)
	f.UpdateByDeleting(pop, candidate)

	optimizationtest.AssertFloat64SlicesEqual(t, fitnessOf(pop), before, 1e-9)
}

func TestUpdateByAddingWidensBounds(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	pop := optimizationtest.Population(
		[]float64{1, 5}, []float64{3, 3}, []float64{5, 1}, []float64{4, 4},
	)
	f.Assign(pop)

	// (6,6) is outside the bounds and dominated by everyone
	xFit := f.UpdateByAdding(pop, optimization.ObjectiveVector{6, 6})

	assert.Equal(t, []float64{1, 1}, f.lower)
	assert.Equal(t, []float64{6, 6}, f.upper)
	for i, p := range pop {
		assert.Less(t, xFit, p.Fit, "candidate must rank below member %d", i)
	}

	// deleting the candidate leaves the re-scored population intact
	f.UpdateByDeleting(pop, optimization.ObjectiveVector{6, 6})
	ref := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	ref.indicator.Setup(f.lower, f.upper)
	expected := clonePop(pop)
	ref.score(expected)
	optimizationtest.AssertFloat64SlicesEqual(t, fitnessOf(pop), fitnessOf(expected), 1e-6)
}

func TestAssignEmptyPopulation(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)
	assert.NotPanics(t, func() { f.Assign(nil) })
}

func TestNewExpBasedPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), 0)
	})
}

func TestScoreReusesMatrixAcrossSizes(t *testing.T) {
	f := NewExpBased[*optimizationtest.Point](indicator.NewAdditiveEpsilon(), DefaultKappa)

	small := optimizationtest.Population([]float64{1, 5}, []float64{5, 1})
	large := optimizationtest.Population([]float64{1, 5}, []float64{3, 3}, []float64{5, 1})
	f.Assign(large)
	want := make([]float64, len(large))
	for i, p := range large {
		want[i] = p.Fit
	}

	f.Assign(small)
	f.Assign(large)

	for i, p := range large {
		assert.InDelta(t, want[i], p.Fit, 1e-12)
	}
	assert.NotPanics(t, func() { f.UpdateByAdding(nil, optimization.ObjectiveVector{9, 9}) })
}
