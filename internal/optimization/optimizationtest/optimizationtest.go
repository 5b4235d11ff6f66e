// Package optimizationtest provides solution types and assertions shared by
// the optimization tests.
package optimizationtest

import (
	"math"
	"testing"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Point is a bare solution: an objective vector and a fitness.
type Point struct {
	Obj optimization.ObjectiveVector
	Fit float64
}

// NewPoint creates a point with the given objective values.
func NewPoint(values ...float64) *Point {
	return &Point{Obj: optimization.ObjectiveVector(values)}
}

func (p *Point) Objectives() optimization.ObjectiveVector   { return p.Obj }
func (p *Point) SetObjectives(v optimization.ObjectiveVector) { p.Obj = v.Clone() }
func (p *Point) Fitness() float64                             { return p.Fit }
func (p *Point) SetFitness(f float64)                         { p.Fit = f }

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	return &Point{Obj: p.Obj.Clone(), Fit: p.Fit}
}

// Population builds points from objective vectors.
func Population(vectors ...[]float64) []*Point {
	pop := make([]*Point, len(vectors))
	for i, v := range vectors {
		pop[i] = NewPoint(v...)
	}
	return pop
}

// WithFitness builds points from objective vectors and matching fitness values.
func WithFitness(vectors [][]float64, fitness []float64) []*Point {
	pop := Population(vectors...)
	for i := range pop {
		pop[i].Fit = fitness[i]
	}
	return pop
}

// SortFront orders a front lexicographically so fronts can be compared
// regardless of insertion order.
func SortFront(front []optimization.ObjectiveVector) []optimization.ObjectiveVector {
	return optimization.SortedFront(front)
}

// AssertFrontEqual checks that two fronts hold the same vectors in any order.
func AssertFrontEqual(t *testing.T, got, want []optimization.ObjectiveVector) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("front size mismatch: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	g, w := SortFront(got), SortFront(want)
	for i := range g {
		if !g[i].Equal(w[i]) {
			t.Fatalf("front mismatch at %d: got %v, want %v", i, g, w)
		}
	}
}

// AssertFloat64SlicesEqual checks if two float64 slices are approximately equal.
func AssertFloat64SlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("at index %d: got %v, want %v (tolerance %v)", i, got[i], want[i], tol)
		}
	}
}

// AssertMutuallyNonDominated fails if any vector in front dominates another.
func AssertMutuallyNonDominated(t *testing.T, front []optimization.ObjectiveVector) {
	t.Helper()

	for i := range front {
		for j := range front {
			if i != j && front[i].Dominates(front[j]) {
				t.Fatalf("%v dominates %v", front[i], front[j])
			}
		}
	}
}
