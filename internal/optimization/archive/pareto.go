// Package archive keeps the non-dominated solutions found by a search.
package archive

import (
	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Pareto is an unbounded archive of mutually non-dominated solutions.
// It stores clones, so later changes to a population never leak in.
// Only objective vectors are consulted; fitness is carried but never read.
type Pareto[T optimization.Solution[T]] struct {
	entries []T
}

// NewPareto creates an empty archive.
func NewPareto[T optimization.Solution[T]]() *Pareto[T] {
	return &Pareto[T]{}
}

// Factory returns a constructor usable wherever a fresh archive is needed.
func Factory[T optimization.Solution[T]]() func() optimization.Archive[T] {
	return func() optimization.Archive[T] { return NewPareto[T]() }
}

// Update absorbs every solution that is neither dominated by nor equal to an
// archived one, and evicts the entries it dominates.
func (a *Pareto[T]) Update(sols []T) bool {
	changed := false
	for _, s := range sols {
		if a.add(s) {
			changed = true
		}
	}
	return changed
}

func (a *Pareto[T]) add(s T) bool {
	v := s.Objectives()
	for _, e := range a.entries {
		ev := e.Objectives()
		if ev.Dominates(v) || ev.Equal(v) {
			return false
		}
	}

	kept := a.entries[:0]
	for _, e := range a.entries {
		if !v.Dominates(e.Objectives()) {
			kept = append(kept, e)
		}
	}
	var zero T
	for i := len(kept); i < len(a.entries); i++ {
		a.entries[i] = zero
	}
	a.entries = append(kept, s.Clone())
	return true
}

// Solutions returns the archived solutions. The slice must not be modified.
func (a *Pareto[T]) Solutions() []T {
	return a.entries
}

// Len returns the number of archived solutions
func (a *Pareto[T]) Len() int {
	return len(a.entries)
}

// Equal reports whether both archives hold the same set of objective vectors.
func (a *Pareto[T]) Equal(other optimization.Archive[T]) bool {
	if other == nil || a.Len() != other.Len() {
		return false
	}
	for _, s := range other.Solutions() {
		if !a.Contains(s.Objectives()) {
			return false
		}
	}
	return true
}

// Contains reports whether an archived solution has objective vector v.
func (a *Pareto[T]) Contains(v optimization.ObjectiveVector) bool {
	for _, e := range a.entries {
		if e.Objectives().Equal(v) {
			return true
		}
	}
	return false
}

// Front returns a copy of the archived objective vectors.
func (a *Pareto[T]) Front() []optimization.ObjectiveVector {
	return optimization.Front(a.entries)
}
