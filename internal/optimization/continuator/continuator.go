// Package continuator provides stopping criteria for the search algorithms.
//
// A criterion that never returns false lets a search run for as long as it
// keeps finding new non-dominated solutions, which is unbounded in general.
package continuator

import "time"

// Func adapts a plain function to a stopping criterion.
type Func[T any] func(sols []T) bool

// Continue calls f.
func (f Func[T]) Continue(sols []T) bool {
	return f(sols)
}

// Always never stops a search.
func Always[T any]() Func[T] {
	return func([]T) bool { return true }
}

// Never stops a search at the first poll.
func Never[T any]() Func[T] {
	return func([]T) bool { return false }
}

// MaxSteps allows a fixed number of polls. Every poll counts, whether it
// comes from a local search step or from a check of the caller's archive
// between sweeps.
type MaxSteps[T any] struct {
	max   int
	polls int
}

// NewMaxSteps creates a criterion allowing max polls.
func NewMaxSteps[T any](max int) *MaxSteps[T] {
	return &MaxSteps[T]{max: max}
}

// Continue counts the poll and reports whether the budget allows it.
func (m *MaxSteps[T]) Continue([]T) bool {
	if m.polls >= m.max {
		return false
	}
	m.polls++
	return true
}

// Deadline stops once the wall clock passes a fixed instant.
type Deadline[T any] struct {
	at  time.Time
	now func() time.Time
}

// NewDeadline creates a criterion that expires after d.
func NewDeadline[T any](d time.Duration) *Deadline[T] {
	return &Deadline[T]{at: time.Now().Add(d), now: time.Now}
}

// Continue reports whether the deadline lies ahead.
func (d *Deadline[T]) Continue([]T) bool {
	return d.now().Before(d.at)
}

// Criterion is the method set shared by all criteria in this package.
type Criterion[T any] interface {
	Continue(sols []T) bool
}

// All continues while every criterion does. Criteria are polled in order and
// polling stops at the first refusal.
func All[T any](criteria ...Criterion[T]) Func[T] {
	return func(sols []T) bool {
		for _, c := range criteria {
			if !c.Continue(sols) {
				return false
			}
		}
		return true
	}
}
