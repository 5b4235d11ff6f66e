// Package linear is a bi-objective binary problem with linear objectives:
// f0 = sum w0[j] x[j] and f1 = sum w1[j] (1 - x[j]), both minimized.
// Selecting an item costs w0 and saves w1, so the Pareto front follows the
// w1/w0 ratio ordering of the items.
package linear

import (
	"fmt"
	"math/rand"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Instance holds the item weights of both objectives.
type Instance struct {
	W0 []float64
	W1 []float64
}

// NewInstance creates an instance from explicit weights.
func NewInstance(w0, w1 []float64) *Instance {
	if len(w0) != len(w1) {
		panic(fmt.Sprintf("weight vectors differ in length: %d and %d", len(w0), len(w1)))
	}
	if len(w0) == 0 {
		panic("instance needs at least one item")
	}
	return &Instance{W0: w0, W1: w1}
}

// NewRandomInstance draws n weights per objective uniformly from [1, 100).
func NewRandomInstance(n int, rng *rand.Rand) *Instance {
	w0 := make([]float64, n)
	w1 := make([]float64, n)
	for j := 0; j < n; j++ {
		w0[j] = 1 + 99*rng.Float64()
		w1[j] = 1 + 99*rng.Float64()
	}
	return NewInstance(w0, w1)
}

// Size returns the number of items.
func (in *Instance) Size() int {
	return len(in.W0)
}

// Solution selects a subset of items.
type Solution struct {
	Bits []bool

	obj optimization.ObjectiveVector
	fit float64
}

func (s *Solution) Objectives() optimization.ObjectiveVector    { return s.obj }
func (s *Solution) SetObjectives(v optimization.ObjectiveVector) { s.obj = v }
func (s *Solution) Fitness() float64                            { return s.fit }
func (s *Solution) SetFitness(f float64)                        { s.fit = f }

// Clone returns a deep copy of s.
func (s *Solution) Clone() *Solution {
	return &Solution{
		Bits: append([]bool(nil), s.Bits...),
		obj:  s.obj.Clone(),
		fit:  s.fit,
	}
}

// NewSolution creates an evaluated solution from a bit vector.
func (in *Instance) NewSolution(bits []bool) *Solution {
	s := &Solution{Bits: bits}
	in.Evaluate(s)
	return s
}

// Evaluate fully recomputes the objectives of s.
func (in *Instance) Evaluate(s *Solution) {
	var f0, f1 float64
	for j, set := range s.Bits {
		if set {
			f0 += in.W0[j]
		} else {
			f1 += in.W1[j]
		}
	}
	s.obj = optimization.ObjectiveVector{f0, f1}
}

// Population creates size random evaluated solutions.
func (in *Instance) Population(size int, rng *rand.Rand) []*Solution {
	pop := make([]*Solution, size)
	for i := range pop {
		bits := make([]bool, in.Size())
		for j := range bits {
			bits[j] = rng.Intn(2) == 1
		}
		pop[i] = in.NewSolution(bits)
	}
	return pop
}

// Neighbourhood flips one bit at a time. The move is the index of the bit.
type Neighbourhood struct {
	inst *Instance
}

// NewNeighbourhood creates the bit-flip neighbourhood of in.
func NewNeighbourhood(in *Instance) *Neighbourhood {
	return &Neighbourhood{inst: in}
}

// Init starts at the first bit
func (n *Neighbourhood) Init(*Solution) int {
	return 0
}

// Next moves to the following bit
func (n *Neighbourhood) Next(move int, sol *Solution) (int, bool) {
	if move+1 >= len(sol.Bits) {
		return move, false
	}
	return move + 1, true
}

// Evaluate returns the objectives after flipping bit move, in constant time.
func (n *Neighbourhood) Evaluate(move int, sol *Solution) optimization.ObjectiveVector {
	f0, f1 := sol.obj[0], sol.obj[1]
	if sol.Bits[move] {
		f0 -= n.inst.W0[move]
		f1 += n.inst.W1[move]
	} else {
		f0 += n.inst.W0[move]
		f1 -= n.inst.W1[move]
	}
	return optimization.ObjectiveVector{f0, f1}
}

// Apply flips bit move and keeps the objectives consistent.
func (n *Neighbourhood) Apply(move int, sol *Solution) {
	sol.obj = n.Evaluate(move, sol)
	sol.Bits[move] = !sol.Bits[move]
}
