package optimization

import "sort"

// ObjectiveVector holds one value per objective. Every objective is minimized.
type ObjectiveVector []float64

// Dominates reports whether v is no worse than o in every objective and
// strictly better in at least one.
func (v ObjectiveVector) Dominates(o ObjectiveVector) bool {
	if len(v) != len(o) {
		return false
	}
	better := false
	for i := range v {
		if v[i] > o[i] {
			return false
		}
		if v[i] < o[i] {
			better = true
		}
	}
	return better
}

// Equal reports whether both vectors hold the same values.
func (v ObjectiveVector) Equal(o ObjectiveVector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// LexLess compares v and o on the primary objective and breaks ties on the
// secondary one.
func (v ObjectiveVector) LexLess(o ObjectiveVector, primary, secondary int) bool {
	if v[primary] != o[primary] {
		return v[primary] < o[primary]
	}
	return v[secondary] < o[secondary]
}

// Clone returns a copy that shares no memory with v.
func (v ObjectiveVector) Clone() ObjectiveVector {
	if v == nil {
		return nil
	}
	return append(ObjectiveVector(nil), v...)
}

// Individual is a candidate solution as seen by the search algorithms:
// an objective vector plus a scalar fitness, both overwritten as a whole.
type Individual interface {
	// Objectives returns the current objective vector
	Objectives() ObjectiveVector

	// SetObjectives replaces the objective vector
	SetObjectives(v ObjectiveVector)

	// Fitness returns the current fitness (higher is better)
	Fitness() float64

	// SetFitness replaces the fitness
	SetFitness(f float64)
}

// Solution is an Individual that can copy itself. T is the concrete type,
// usually a pointer to the problem's solution struct.
type Solution[T any] interface {
	Individual

	// Clone returns a deep copy
	Clone() T
}

// Archive is a set of mutually non-dominated solutions.
type Archive[T Individual] interface {
	// Update absorbs the given solutions, evicting dominated entries.
	// It reports whether the archive changed.
	Update(sols []T) bool

	// Solutions returns the archived solutions
	Solutions() []T

	// Len returns the number of archived solutions
	Len() int

	// Equal reports whether both archives hold the same objective vectors
	Equal(other Archive[T]) bool
}

// Continuator is a stopping criterion. It is polled with either a
// population or the contents of an archive.
type Continuator[T any] interface {
	Continue(sols []T) bool
}

// Front extracts the objective vectors of the given solutions.
func Front[T Individual](sols []T) []ObjectiveVector {
	front := make([]ObjectiveVector, len(sols))
	for i, s := range sols {
		front[i] = s.Objectives().Clone()
	}
	return front
}

// SortedFront returns a copy of front in lexicographic order.
func SortedFront(front []ObjectiveVector) []ObjectiveVector {
	out := make([]ObjectiveVector, len(front))
	copy(out, front)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return out
}
