package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/IBMOLS/internal/optimization/optimizationtest"
)

func smallParams(problem string) Params {
	p := DefaultParams()
	p.Problem = problem
	p.Size = 6
	p.Machines = 3
	p.PopulationSize = 6
	p.MaxSteps = 200000
	return p
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name   string
		params func() Params
	}{
		{"linear with epsilon", func() Params { return smallParams(ProblemLinear) }},
		{"flowshop with epsilon", func() Params { return smallParams(ProblemFlowShop) }},
		{"flowshop with hypervolume", func() Params {
			p := smallParams(ProblemFlowShop)
			p.Indicator = "hypervolume"
			return p
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.params()

			report, err := Solve(context.Background(), p, nil, nil)

			require.NoError(t, err)
			assert.Equal(t, p.Problem, report.Problem)
			assert.NotEmpty(t, report.Front)
			assert.Positive(t, report.Sweeps)
			assert.Positive(t, report.Steps)
			optimizationtest.AssertMutuallyNonDominated(t, report.Front)
			assert.Equal(t, optimizationtest.SortFront(report.Front), report.Front, "front is sorted")
		})
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	p := smallParams(ProblemFlowShop)

	first, err := Solve(context.Background(), p, nil, nil)
	require.NoError(t, err)
	second, err := Solve(context.Background(), p, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Front, second.Front)
	assert.Equal(t, first.Steps, second.Steps)
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Solve(ctx, smallParams(ProblemLinear), nil, nil)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Steps)
	assert.NotEmpty(t, report.Front, "the initial front is still reported")
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
	}{
		{"unknown problem", func(p *Params) { p.Problem = "tsp" }},
		{"empty linear instance", func(p *Params) { p.Problem = ProblemLinear; p.Size = 0 }},
		{"single job", func(p *Params) { p.Size = 1 }},
		{"no machines", func(p *Params) { p.Machines = 0 }},
		{"population of one", func(p *Params) { p.PopulationSize = 1 }},
		{"negative max steps", func(p *Params) { p.MaxSteps = -1 }},
		{"zero kappa", func(p *Params) { p.Kappa = 0 }},
		{"negative timeout", func(p *Params) { p.Timeout = -time.Second }},
		{"unknown indicator", func(p *Params) { p.Indicator = "r2" }},
	}

	require.NoError(t, DefaultParams().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)

			err := p.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))

			_, err = Solve(context.Background(), p, nil, nil)
			assert.True(t, errors.Is(err, ErrInvalidParams))
		})
	}
}
