package ibmols

import (
	"fmt"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Slot designates either a population member or the candidate neighbour
// that has not been written into the population.
type Slot struct {
	index  int
	member bool
}

// Candidate returns the slot of the candidate neighbour.
func Candidate() Slot {
	return Slot{}
}

// Member returns the slot of population member i.
func Member(i int) Slot {
	return Slot{index: i, member: true}
}

// Index returns the population index and true for a member slot, and false
// for the candidate.
func (s Slot) Index() (int, bool) {
	return s.index, s.member
}

// IsCandidate reports whether s is the candidate slot.
func (s Slot) IsCandidate() bool {
	return !s.member
}

func (s Slot) String() string {
	if !s.member {
		return "candidate"
	}
	return fmt.Sprintf("member[%d]", s.index)
}

// Selection is the outcome of one worst-solution determination.
type Selection struct {
	// Ext0 is lexicographically smallest on (objective 0, objective 1)
	Ext0 Slot
	// Ext1 is lexicographically smallest on (objective 1, objective 0)
	Ext1 Slot
	// Worst has the lowest fitness among the slots that are not extremes
	Worst        Slot
	WorstFitness float64
}

// Protects reports whether slot is one of the two extremes.
func (s Selection) Protects(slot Slot) bool {
	return slot == s.Ext0 || slot == s.Ext1
}

// selector accumulates the extremes and the worst slot. The candidate is
// offered first, so it wins fitness ties and equal moves are rejected.
type selector struct {
	sel        Selection
	ext0, ext1 optimization.ObjectiveVector
	found      bool
}

func newSelector(x optimization.ObjectiveVector) *selector {
	return &selector{
		sel:  Selection{Ext0: Candidate(), Ext1: Candidate()},
		ext0: x,
		ext1: x,
	}
}

// extreme folds member k into both extremes.
func (a *selector) extreme(k int, v optimization.ObjectiveVector) {
	if v.LexLess(a.ext0, 0, 1) {
		a.sel.Ext0 = Member(k)
		a.ext0 = v
	}
	if v.LexLess(a.ext1, 1, 0) {
		a.sel.Ext1 = Member(k)
		a.ext1 = v
	}
}

// worst folds slot into the worst candidate unless it is protected.
func (a *selector) worst(slot Slot, fitness float64) {
	if a.sel.Protects(slot) {
		return
	}
	if !a.found || fitness < a.sel.WorstFitness {
		a.sel.Worst = slot
		a.sel.WorstFitness = fitness
		a.found = true
	}
}

// selectWorst finds the two extremes among pop and the candidate x, then the
// least fit slot outside of them. Member fitness values must already account
// for x. It fails when every slot is protected, which only happens for a
// population of one.
func selectWorst[T optimization.Individual](pop []T, x optimization.ObjectiveVector, xFitness float64) (Selection, error) {
	acc := newSelector(x)
	for k, s := range pop {
		acc.extreme(k, s.Objectives())
	}

	acc.worst(Candidate(), xFitness)
	for k, s := range pop {
		acc.worst(Member(k), s.Fitness())
	}

	if !acc.found {
		return Selection{}, optimization.WrapErrorf(optimization.ErrPopulationTooSmall,
			"no slot outside the extremes %s and %s among %d members", acc.sel.Ext0, acc.sel.Ext1, len(pop)).
			WithOperation("selectWorst").
			WithComponent(component)
	}
	return acc.sel, nil
}
