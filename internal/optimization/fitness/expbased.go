// Package fitness implements indicator-based fitness assignment with the
// incremental updates local search needs.
package fitness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
	"github.com/copyleftdev/IBMOLS/internal/optimization/indicator"
)

// DefaultKappa is the usual IBEA scaling factor.
const DefaultKappa = 0.05

// ExpBased assigns F(x) = sum over y != x of -exp(-I(y, x) / kappa).
// Fitness is never positive and higher is better.
type ExpBased[T optimization.Individual] struct {
	indicator indicator.Indicator
	kappa     float64

	lower []float64
	upper []float64

	// values is reused across scorings of same-sized populations
	values *mat.Dense
}

// NewExpBased creates a fitness assignment over the given indicator
func NewExpBased[T optimization.Individual](ind indicator.Indicator, kappa float64) *ExpBased[T] {
	if kappa <= 0 {
		panic(fmt.Sprintf("kappa must be positive, got %v", kappa))
	}
	return &ExpBased[T]{
		indicator: ind,
		kappa:     kappa,
	}
}

// Assign computes normalization bounds from pop and scores every member.
func (f *ExpBased[T]) Assign(pop []T) {
	if len(pop) == 0 {
		return
	}
	nObj := len(pop[0].Objectives())
	f.lower = make([]float64, nObj)
	f.upper = make([]float64, nObj)

	column := make([]float64, len(pop))
	for k := 0; k < nObj; k++ {
		for i, s := range pop {
			column[i] = s.Objectives()[k]
		}
		f.lower[k] = floats.Min(column)
		f.upper[k] = floats.Max(column)
	}
	f.indicator.Setup(f.lower, f.upper)
	f.score(pop)
}

// UpdateByAdding lowers every member's fitness as if a solution with
// objective vector v joined pop and returns the fitness v would get.
// Bounds that v widens trigger a full re-score first.
func (f *ExpBased[T]) UpdateByAdding(pop []T, v optimization.ObjectiveVector) float64 {
	if f.widen(v) {
		f.indicator.Setup(f.lower, f.upper)
		f.score(pop)
	}

	var fit float64
	for _, s := range pop {
		s.SetFitness(s.Fitness() - math.Exp(-f.indicator.Compute(v, s.Objectives())/f.kappa))
		fit -= math.Exp(-f.indicator.Compute(s.Objectives(), v) / f.kappa)
	}
	return fit
}

// UpdateByDeleting restores the contribution of a removed solution with
// objective vector v to every remaining member.
func (f *ExpBased[T]) UpdateByDeleting(pop []T, v optimization.ObjectiveVector) {
	for _, s := range pop {
		s.SetFitness(s.Fitness() + math.Exp(-f.indicator.Compute(v, s.Objectives())/f.kappa))
	}
}

// score recomputes every fitness from the pairwise indicator matrix using the
// current bounds.
func (f *ExpBased[T]) score(pop []T) {
	n := len(pop)
	if n == 0 {
		return
	}
	if f.values == nil {
		f.values = mat.NewDense(n, n, nil)
	} else if r, _ := f.values.Dims(); r != n {
		f.values.Reset()
		f.values.ReuseAs(n, n)
	}
	values := f.values
	for i := range pop {
		for j := range pop {
			if i != j {
				values.Set(i, j, f.indicator.Compute(pop[i].Objectives(), pop[j].Objectives()))
			}
		}
	}

	for i, s := range pop {
		var fit float64
		for j := 0; j < n; j++ {
			if j != i {
				fit -= math.Exp(-values.At(j, i) / f.kappa)
			}
		}
		s.SetFitness(fit)
	}
}

// widen stretches the bounds to contain v and reports whether they moved.
func (f *ExpBased[T]) widen(v optimization.ObjectiveVector) bool {
	if len(f.lower) != len(v) {
		f.lower = v.Clone()
		f.upper = v.Clone()
		return true
	}
	changed := false
	for k, x := range v {
		if x < f.lower[k] {
			f.lower[k] = x
			changed = true
		}
		if x > f.upper[k] {
			f.upper[k] = x
			changed = true
		}
	}
	return changed
}
