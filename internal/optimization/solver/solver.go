// Package solver wires a benchmark problem, the fitness assignment and the
// stopping criteria into a single IBMOLS run.
package solver

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
	"github.com/copyleftdev/IBMOLS/internal/optimization/archive"
	"github.com/copyleftdev/IBMOLS/internal/optimization/continuator"
	"github.com/copyleftdev/IBMOLS/internal/optimization/fitness"
	"github.com/copyleftdev/IBMOLS/internal/optimization/ibmols"
	"github.com/copyleftdev/IBMOLS/internal/optimization/indicator"
	"github.com/copyleftdev/IBMOLS/internal/optimization/problems/flowshop"
	"github.com/copyleftdev/IBMOLS/internal/optimization/problems/linear"
)

const component = "solver"

// Problem names accepted by Solve.
const (
	ProblemLinear   = "linear"
	ProblemFlowShop = "flowshop"
)

// ErrInvalidParams is returned when Params fail validation.
var ErrInvalidParams = errors.New("invalid search parameters")

// Params describe one search.
type Params struct {
	// Problem is ProblemLinear or ProblemFlowShop
	Problem string
	// Size is the number of items (linear) or jobs (flowshop)
	Size int
	// Machines is only used by the flow-shop problem
	Machines int

	PopulationSize int
	// MaxSteps bounds the number of continuator polls, 0 means unbounded
	MaxSteps int
	Kappa    float64
	// Indicator is "epsilon" or "hypervolume"
	Indicator string
	Seed      int64
	// Timeout stops the search gracefully, 0 means none
	Timeout time.Duration
}

// DefaultParams returns a small flow-shop search.
func DefaultParams() Params {
	return Params{
		Problem:        ProblemFlowShop,
		Size:           20,
		Machines:       5,
		PopulationSize: 20,
		MaxSteps:       100000,
		Kappa:          fitness.DefaultKappa,
		Indicator:      "epsilon",
		Seed:           1,
	}
}

// Validate checks p without running anything.
func (p Params) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return optimization.WrapErrorf(ErrInvalidParams, format, args...).
			WithOperation("Validate").
			WithComponent(component)
	}

	switch p.Problem {
	case ProblemLinear:
		if p.Size < 1 {
			return fail("linear problem needs at least 1 item, got %d", p.Size)
		}
	case ProblemFlowShop:
		if p.Size < 2 {
			return fail("flow-shop problem needs at least 2 jobs, got %d", p.Size)
		}
		if p.Machines < 1 {
			return fail("flow-shop problem needs at least 1 machine, got %d", p.Machines)
		}
	default:
		return fail("unknown problem %q", p.Problem)
	}
	if p.PopulationSize < 2 {
		return fail("population size must be at least 2, got %d", p.PopulationSize)
	}
	if p.MaxSteps < 0 {
		return fail("max steps must not be negative, got %d", p.MaxSteps)
	}
	if p.Kappa <= 0 {
		return fail("kappa must be positive, got %g", p.Kappa)
	}
	if p.Timeout < 0 {
		return fail("timeout must not be negative, got %s", p.Timeout)
	}
	if _, err := indicator.ByName(p.Indicator); err != nil {
		return fail("%v", err)
	}
	return nil
}

// Report is the outcome of Solve.
type Report struct {
	Problem string                         `json:"problem"`
	Front   []optimization.ObjectiveVector `json:"front"`
	Sweeps  int                            `json:"sweeps"`
	Steps   int                            `json:"steps"`
	// Accepted counts moves that entered the population
	Accepted  int           `json:"accepted"`
	Converged bool          `json:"converged"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Solve generates the instance and initial population from p.Seed and runs
// IBMOLS on them. A cancelled ctx still yields the report built so far along
// with ctx.Err().
func Solve(ctx context.Context, p Params, logger *zap.Logger, obs ibmols.Observer) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ind, err := indicator.ByName(p.Indicator)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	logger = logger.With(zap.String("problem", p.Problem), zap.Int64("seed", p.Seed))
	logger.Info("search started",
		zap.Int("size", p.Size),
		zap.Int("population_size", p.PopulationSize),
		zap.String("indicator", p.Indicator),
		zap.Float64("kappa", p.Kappa))

	start := time.Now()
	var report *Report
	switch p.Problem {
	case ProblemLinear:
		in := linear.NewRandomInstance(p.Size, rng)
		report, err = run[int](ctx, p, ind, linear.NewNeighbourhood(in), in.Population(p.PopulationSize, rng), logger, obs)
	default:
		in := flowshop.NewRandomInstance(p.Size, p.Machines, rng)
		report, err = run[flowshop.Swap](ctx, p, ind, flowshop.NewNeighbourhood(in), in.Population(p.PopulationSize, rng), logger, obs)
	}
	if report == nil {
		return nil, err
	}
	report.Problem = p.Problem
	report.Elapsed = time.Since(start)
	return report, err
}

func run[M any, T optimization.Solution[T]](
	ctx context.Context,
	p Params,
	ind indicator.Indicator,
	n ibmols.Neighbourhood[M, T],
	pop []T,
	logger *zap.Logger,
	obs ibmols.Observer,
) (*Report, error) {
	ls, err := ibmols.New(ibmols.Config[M, T]{
		Fitness:     fitness.NewExpBased[T](ind, p.Kappa),
		Continuator: stopCriterion[T](p),
		NewArchive:  archive.Factory[T](),
		Logger:      logger,
		Observer:    obs,
	}.WithNeighbourhood(n))
	if err != nil {
		return nil, err
	}

	arch := archive.NewPareto[T]()
	res, err := ls.Run(ctx, pop, arch)
	if res == nil {
		return nil, err
	}
	return &Report{
		Front:     optimization.SortedFront(arch.Front()),
		Sweeps:    res.Sweeps,
		Steps:     res.Steps,
		Accepted:  res.Accepted,
		Converged: res.Converged,
	}, err
}

func stopCriterion[T any](p Params) optimization.Continuator[T] {
	var criteria []continuator.Criterion[T]
	if p.MaxSteps > 0 {
		criteria = append(criteria, continuator.NewMaxSteps[T](p.MaxSteps))
	}
	if p.Timeout > 0 {
		criteria = append(criteria, continuator.NewDeadline[T](p.Timeout))
	}
	return continuator.All(criteria...)
}
