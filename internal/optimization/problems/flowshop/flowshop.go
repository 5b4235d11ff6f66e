// Package flowshop is the bi-objective permutation flow-shop problem:
// jobs visit every machine in the same order and a schedule is a job
// permutation. Objectives are the makespan and the total flow time.
package flowshop

import (
	"fmt"
	"math/rand"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Instance holds processing times indexed by machine then job.
type Instance struct {
	Processing [][]float64
}

// NewInstance creates an instance from a machine-by-job processing matrix.
func NewInstance(processing [][]float64) *Instance {
	if len(processing) == 0 {
		panic("instance needs at least one machine")
	}
	jobs := len(processing[0])
	if jobs < 2 {
		panic(fmt.Sprintf("instance needs at least 2 jobs, got %d", jobs))
	}
	for m, row := range processing {
		if len(row) != jobs {
			panic(fmt.Sprintf("machine %d has %d jobs, want %d", m, len(row), jobs))
		}
	}
	return &Instance{Processing: processing}
}

// NewRandomInstance draws integer processing times uniformly from [1, 99],
// as in Taillard's benchmark generator.
func NewRandomInstance(jobs, machines int, rng *rand.Rand) *Instance {
	p := make([][]float64, machines)
	for m := range p {
		p[m] = make([]float64, jobs)
		for j := range p[m] {
			p[m][j] = float64(1 + rng.Intn(99))
		}
	}
	return NewInstance(p)
}

// Jobs returns the number of jobs.
func (in *Instance) Jobs() int {
	return len(in.Processing[0])
}

// Machines returns the number of machines.
func (in *Instance) Machines() int {
	return len(in.Processing)
}

// objectives computes makespan and total flow time of a permutation.
func (in *Instance) objectives(perm []int) optimization.ObjectiveVector {
	completion := make([]float64, in.Machines())
	var flow float64
	for _, job := range perm {
		for m := range completion {
			start := completion[m]
			if m > 0 && completion[m-1] > start {
				start = completion[m-1]
			}
			completion[m] = start + in.Processing[m][job]
		}
		flow += completion[len(completion)-1]
	}
	return optimization.ObjectiveVector{completion[len(completion)-1], flow}
}

// Solution is a job permutation.
type Solution struct {
	Perm []int

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
		Perm: append([]int(nil), s.Perm...),
		obj:  s.obj.Clone(),
		fit:  s.fit,
	}
}

// NewSolution creates an evaluated solution from a permutation.
func (in *Instance) NewSolution(perm []int) *Solution {
	s := &Solution{Perm: perm}
	in.Evaluate(s)
	return s
}

// Evaluate recomputes the objectives of s.
func (in *Instance) Evaluate(s *Solution) {
	s.obj = in.objectives(s.Perm)
}

// Population creates size random evaluated permutations.
func (in *Instance) Population(size int, rng *rand.Rand) []*Solution {
	pop := make([]*Solution, size)
	for i := range pop {
		pop[i] = in.NewSolution(rng.Perm(in.Jobs()))
	}
	return pop
}

// Swap exchanges the jobs at positions I < J.
type Swap struct {
	I, J int
}

// Neighbourhood enumerates every swap in lexicographic order.
type Neighbourhood struct {
	inst *Instance
	perm []int
}

// NewNeighbourhood creates the swap neighbourhood of in.
func NewNeighbourhood(in *Instance) *Neighbourhood {
	return &Neighbourhood{
		inst: in,
		perm: make([]int, in.Jobs()),
	}
}

// Init starts with the first two positions
func (n *Neighbourhood) Init(*Solution) Swap {
	return Swap{I: 0, J: 1}
}

// Next moves to the following pair of positions
func (n *Neighbourhood) Next(move Swap, sol *Solution) (Swap, bool) {
	size := len(sol.Perm)
	move.J++
	if move.J == size {
		move.I++
		move.J = move.I + 1
	}
	if move.I >= size-1 {
		return move, false
	}
	return move, true
}

// Evaluate schedules a swapped copy of sol. Flow-shop objectives depend on
// every later job, so the whole schedule is recomputed.
func (n *Neighbourhood) Evaluate(move Swap, sol *Solution) optimization.ObjectiveVector {
	copy(n.perm, sol.Perm)
	n.perm[move.I], n.perm[move.J] = n.perm[move.J], n.perm[move.I]
	return n.inst.objectives(n.perm)
}

// Apply swaps the two jobs in place and re-evaluates sol.
func (n *Neighbourhood) Apply(move Swap, sol *Solution) {
	sol.Perm[move.I], sol.Perm[move.J] = sol.Perm[move.J], sol.Perm[move.I]
	n.inst.Evaluate(sol)
}
