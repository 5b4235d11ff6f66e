// Package ibmols implements Indicator-Based Multi-Objective Local Search
// (Basseur and Burke, 2007).
//
// A fixed-size population is explored member by member. Every neighbour of the
// current member is scored by an indicator-based fitness assignment as if it
// had joined the population, and the least fit solution outside of the two
// lexicographic extremes is discarded. Sweeps repeat until the local archive
// of non-dominated solutions stops changing or the stopping criterion fires.
package ibmols

import (
	"context"

	"go.uber.org/zap"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

const component = "ibmols"

// MoveInitializer produces a fresh neighbourhood cursor for a solution.
type MoveInitializer[M, T any] interface {
	Init(sol T) M
}

// MoveStepper advances a cursor to the next neighbour of sol. It returns
// false once the neighbourhood is exhausted.
type MoveStepper[M, T any] interface {
	Next(move M, sol T) (M, bool)
}

// MoveEvaluator computes the objective vector that applying move to sol would
// produce, without modifying sol.
type MoveEvaluator[M, T any] interface {
	Evaluate(move M, sol T) optimization.ObjectiveVector
}

// MoveApplier modifies sol in place according to move.
type MoveApplier[M, T any] interface {
	Apply(move M, sol T)
}

// Neighbourhood bundles the four move collaborators. Problems usually
// implement all of them on a single type.
type Neighbourhood[M, T any] interface {
	MoveInitializer[M, T]
	MoveStepper[M, T]
	MoveEvaluator[M, T]
	MoveApplier[M, T]
}

// FitnessAssigner is an indicator-based fitness assignment with incremental
// updates. UpdateByAdding must adjust member fitness values before any slot
// is overwritten, because worst-selection reads them.
type FitnessAssigner[T any] interface {
	// Assign scores the whole population
	Assign(pop []T)

	// UpdateByAdding updates pop as if v joined it and returns v's fitness
	UpdateByAdding(pop []T, v optimization.ObjectiveVector) float64

	// UpdateByDeleting updates pop after a solution with vector v left it
	UpdateByDeleting(pop []T, v optimization.ObjectiveVector)
}

// Outcome classifies one local search step.
type Outcome int

const (
	// OutcomeRejected means the candidate was the worst and the cursor moved on
	OutcomeRejected Outcome = iota
	// OutcomeExhausted means the candidate was the worst and the neighbourhood
	// of the current member has been fully explored
	OutcomeExhausted
	// OutcomeReplacedAtOrBefore means a member at or before the current index
	// was discarded
	OutcomeReplacedAtOrBefore
	// OutcomeReplacedAfter means a member after the current index was discarded
	OutcomeReplacedAfter
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeReplacedAtOrBefore:
		return "replaced_at_or_before"
	case OutcomeReplacedAfter:
		return "replaced_after"
	default:
		return "unknown"
	}
}

// Advance returns how far the exploration index moves after the step.
func (o Outcome) Advance() int {
	switch o {
	case OutcomeExhausted, OutcomeReplacedAtOrBefore:
		return 1
	case OutcomeReplacedAfter:
		return 2
	default:
		return 0
	}
}

// Accepted reports whether the candidate entered the population.
func (o Outcome) Accepted() bool {
	return o == OutcomeReplacedAtOrBefore || o == OutcomeReplacedAfter
}

// Observer is notified of search progress. Implementations must be cheap,
// they are called once per step.
type Observer interface {
	ObserveStep(outcome Outcome)
	ObserveSweep(archiveSize int)
}

type nopObserver struct{}

func (nopObserver) ObserveStep(Outcome) {}
func (nopObserver) ObserveSweep(int)    {}

// Config contains the collaborators of a local search.
type Config[M any, T optimization.Solution[T]] struct {
	Init     MoveInitializer[M, T]
	Next     MoveStepper[M, T]
	Evaluate MoveEvaluator[M, T]
	Apply    MoveApplier[M, T]

	// Fitness is the indicator-based fitness assignment
	Fitness FitnessAssigner[T]

	// Continuator is polled once per step with the population and once per
	// sweep with the caller's archive
	Continuator optimization.Continuator[T]

	// NewArchive creates the local archives of a run
	NewArchive func() optimization.Archive[T]

	// Logger is optional and defaults to a no-op logger
	Logger *zap.Logger

	// Observer is optional
	Observer Observer
}

// WithNeighbourhood returns a copy of c whose move collaborators are all n.
func (c Config[M, T]) WithNeighbourhood(n Neighbourhood[M, T]) Config[M, T] {
	c.Init = n
	c.Next = n
	c.Evaluate = n
	c.Apply = n
	return c
}

// Result summarizes a run.
type Result struct {
	// Sweeps is the number of passes over the population
	Sweeps int
	// Steps is the number of evaluated moves
	Steps int
	// Accepted is the number of moves that entered the population
	Accepted int
	// Converged is set when a complete sweep left the local archive unchanged
	Converged bool
}

// LocalSearch is an IBMOLS instance. It is not safe for concurrent use.
type LocalSearch[M any, T optimization.Solution[T]] struct {
	init        MoveInitializer[M, T]
	next        MoveStepper[M, T]
	evaluate    MoveEvaluator[M, T]
	apply       MoveApplier[M, T]
	fitness     FitnessAssigner[T]
	continuator optimization.Continuator[T]
	newArchive  func() optimization.Archive[T]
	logger      *zap.Logger
	observer    Observer
}

// New creates a local search from cfg.
func New[M any, T optimization.Solution[T]](cfg Config[M, T]) (*LocalSearch[M, T], error) {
	required := []struct {
		name string
		set  bool
	}{
		{"move initializer", cfg.Init != nil},
		{"move stepper", cfg.Next != nil},
		{"move evaluator", cfg.Evaluate != nil},
		{"move applier", cfg.Apply != nil},
		{"fitness assignment", cfg.Fitness != nil},
		{"continuator", cfg.Continuator != nil},
		{"archive factory", cfg.NewArchive != nil},
	}
	for _, r := range required {
		if !r.set {
			return nil, optimization.NewErrorf("%s is required", r.name).
				WithOperation("New").
				WithComponent(component)
		}
	}

	ls := &LocalSearch[M, T]{
		init:        cfg.Init,
		next:        cfg.Next,
		evaluate:    cfg.Evaluate,
		apply:       cfg.Apply,
		fitness:     cfg.Fitness,
		continuator: cfg.Continuator,
		newArchive:  cfg.NewArchive,
		logger:      cfg.Logger,
		observer:    cfg.Observer,
	}
	if ls.logger == nil {
		ls.logger = zap.NewNop()
	}
	if ls.observer == nil {
		ls.observer = nopObserver{}
	}
	return ls, nil
}

// Run applies the local search to pop until its local archive stops changing
// or the continuator, polled with the contents of arch, refuses to go on.
// The local archive is then merged into arch.
//
// pop is modified in place and must not be touched by anyone else during
// the run. Fitness values are not refreshed after the last sweep; arch only
// reads objective vectors.
//
// When ctx is cancelled the archive is still merged and ctx.Err() is returned
// along with the result. Precondition and collaborator errors return before
// any merge.
func (ls *LocalSearch[M, T]) Run(ctx context.Context, pop []T, arch optimization.Archive[T]) (*Result, error) {
	if err := validatePopulation(pop); err != nil {
		return nil, err.WithOperation("Run")
	}

	ls.fitness.Assign(pop)
	local := ls.newArchive()
	previous := ls.newArchive()
	local.Update(pop)

	res := &Result{}
	var runErr error
	for {
		previous.Update(local.Solutions())
		completed, err := ls.sweep(ctx, pop, res)
		if err != nil {
			return nil, err
		}
		res.Sweeps++
		local.Update(pop)
		ls.observer.ObserveSweep(local.Len())
		ls.logger.Debug("sweep completed",
			zap.Int("sweep", res.Sweeps),
			zap.Int("steps", res.Steps),
			zap.Int("accepted", res.Accepted),
			zap.Int("archive_size", local.Len()))

		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if local.Equal(previous) {
			// a sweep cut short left neighbours unexplored
			res.Converged = completed
			break
		}
		if !ls.continuator.Continue(arch.Solutions()) {
			break
		}
	}

	arch.Update(local.Solutions())
	ls.logger.Info("local search finished",
		zap.Int("sweeps", res.Sweeps),
		zap.Int("steps", res.Steps),
		zap.Bool("converged", res.Converged),
		zap.Int("archive_size", arch.Len()))
	return res, runErr
}

// sweep explores the population from left to right. It reports whether every
// member was explored before ctx or the continuator stopped it.
func (ls *LocalSearch[M, T]) sweep(ctx context.Context, pop []T, res *Result) (bool, error) {
	i := 0
	move := ls.init.Init(pop[i])
	for i < len(pop) && ctx.Err() == nil && ls.continuator.Continue(pop) {
		var (
			outcome Outcome
			err     error
		)
		move, outcome, err = ls.step(pop, i, move)
		if err != nil {
			return false, err
		}

		res.Steps++
		if outcome.Accepted() {
			res.Accepted++
		}
		ls.observer.ObserveStep(outcome)

		if adv := outcome.Advance(); adv > 0 {
			i += adv
			if i < len(pop) {
				move = ls.init.Init(pop[i])
			}
		}
	}
	return i >= len(pop), nil
}

// step evaluates move on pop[i] and applies the outcome. It returns the
// cursor to use if exploration stays on pop[i].
func (ls *LocalSearch[M, T]) step(pop []T, i int, move M) (M, Outcome, error) {
	base := pop[i]
	x := ls.evaluate.Evaluate(move, base)
	if len(x) != len(base.Objectives()) {
		return move, 0, optimization.WrapErrorf(optimization.ErrContractViolation,
			"move evaluation returned %d objectives, want %d", len(x), len(base.Objectives())).
			WithOperation("step").
			WithComponent(component)
	}

	xFitness := ls.fitness.UpdateByAdding(pop, x)
	sel, err := selectWorst(pop, x, xFitness)
	if err != nil {
		return move, 0, err
	}

	var (
		removed optimization.ObjectiveVector
		outcome Outcome
	)
	w, isMember := sel.Worst.Index()
	switch {
	case !isMember:
		removed = x
		if next, ok := ls.next.Next(move, base); ok {
			move = next
			outcome = OutcomeRejected
		} else {
			outcome = OutcomeExhausted
		}
	case w <= i:
		// pop[i] moves into the discarded slot and is replaced by its neighbour
		removed = pop[w].Objectives().Clone()
		if w != i {
			pop[w] = base.Clone()
		}
		ls.accept(move, pop[i], x, xFitness)
		outcome = OutcomeReplacedAtOrBefore
	default:
		// pop[i+1] moves into the discarded slot and the neighbour takes its place
		removed = pop[w].Objectives().Clone()
		pop[w] = pop[i+1]
		pop[i+1] = base.Clone()
		ls.accept(move, pop[i+1], x, xFitness)
		outcome = OutcomeReplacedAfter
	}

	ls.fitness.UpdateByDeleting(pop, removed)
	return move, outcome, nil
}

func (ls *LocalSearch[M, T]) accept(move M, sol T, x optimization.ObjectiveVector, fitness float64) {
	ls.apply.Apply(move, sol)
	sol.SetObjectives(x.Clone())
	sol.SetFitness(fitness)
}

func validatePopulation[T optimization.Individual](pop []T) *optimization.Error {
	if len(pop) == 0 {
		return optimization.WrapErrorf(optimization.ErrEmptyPopulation, "nothing to explore").
			WithComponent(component)
	}
	if len(pop) < 2 {
		return optimization.WrapErrorf(optimization.ErrPopulationTooSmall,
			"need at least 2 solutions, got %d", len(pop)).
			WithComponent(component)
	}
	nObj := len(pop[0].Objectives())
	if nObj < 2 {
		return optimization.WrapErrorf(optimization.ErrObjectiveCount,
			"extremes need 2 objectives, got %d", nObj).
			WithComponent(component)
	}
	for k, s := range pop {
		if len(s.Objectives()) != nObj {
			return optimization.WrapErrorf(optimization.ErrObjectiveCount,
				"member %d has %d objectives, want %d", k, len(s.Objectives()), nObj).
				WithComponent(component)
		}
	}
	return nil
}
