package indicator

import (
	"fmt"
	"math"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Indicator is a binary quality indicator I(a, b) computed in an objective
// space normalized to [0, 1] per objective. Negative values mean a is better
// than b.
type Indicator interface {
	// Setup fixes the normalization bounds, one entry per objective
	Setup(lower, upper []float64)

	// Compute evaluates I(a, b)
	Compute(a, b optimization.ObjectiveVector) float64
}

// ByName returns the indicator registered under name.
func ByName(name string) (Indicator, error) {
	switch name {
	case "epsilon", "":
		return NewAdditiveEpsilon(), nil
	case "hypervolume":
		return NewHypervolume(DefaultRho), nil
	default:
		return nil, fmt.Errorf("unknown indicator %q", name)
	}
}

// bounds normalizes objective values into [0, 1].
type bounds struct {
	lower []float64
	width []float64
}

func (b *bounds) setup(lower, upper []float64) {
	b.lower = append(b.lower[:0], lower...)
	b.width = b.width[:0]
	for i := range lower {
		w := upper[i] - lower[i]
		if w <= 0 {
			w = 1
		}
		b.width = append(b.width, w)
	}
}

func (b *bounds) normalize(v optimization.ObjectiveVector, k int) float64 {
	if len(b.lower) == 0 {
		return v[k]
	}
	return (v[k] - b.lower[k]) / b.width[k]
}

// AdditiveEpsilon is the additive epsilon indicator: the smallest shift that
// makes a weakly dominate b.
type AdditiveEpsilon struct {
	bounds
}

// NewAdditiveEpsilon creates an additive epsilon indicator without bounds.
// Values are used as-is until Setup is called.
func NewAdditiveEpsilon() *AdditiveEpsilon {
	return &AdditiveEpsilon{}
}

// Setup fixes the normalization bounds
func (e *AdditiveEpsilon) Setup(lower, upper []float64) {
	e.setup(lower, upper)
}

// Compute returns max_k (a_k - b_k) over normalized objectives
func (e *AdditiveEpsilon) Compute(a, b optimization.ObjectiveVector) float64 {
	result := math.Inf(-1)
	for k := range a {
		d := e.normalize(a, k) - e.normalize(b, k)
		if d > result {
			result = d
		}
	}
	return result
}

// DefaultRho places the hypervolume reference point 10% beyond the upper bound.
const DefaultRho = 1.1

// Hypervolume is the hypervolume difference indicator. The reference point
// sits at rho in every normalized objective.
type Hypervolume struct {
	bounds
	rho float64
}

// NewHypervolume creates a hypervolume indicator with the given reference factor
func NewHypervolume(rho float64) *Hypervolume {
	if rho < 1 {
		panic(fmt.Sprintf("rho must be at least 1, got %v", rho))
	}
	return &Hypervolume{rho: rho}
}

// Setup fixes the normalization bounds
func (h *Hypervolume) Setup(lower, upper []float64) {
	h.setup(lower, upper)
}

// Compute returns minus the volume a dominates exclusively when a dominates b,
// and otherwise the volume dominated by b but not by a.
func (h *Hypervolume) Compute(a, b optimization.ObjectiveVector) float64 {
	na := h.scaled(a)
	nb := h.scaled(b)
	last := len(a) - 1
	if na.Dominates(nb) {
		return -h.volume(na, nb, last, false)
	}
	return h.volume(nb, na, last, false)
}

func (h *Hypervolume) scaled(v optimization.ObjectiveVector) optimization.ObjectiveVector {
	out := make(optimization.ObjectiveVector, len(v))
	for k := range v {
		out[k] = math.Min(h.normalize(v, k), h.rho)
	}
	return out
}

// volume measures the region dominated by o1 but not by o2, restricted to
// objectives 0..obj. When outside is set, o2 covers none of the current slab.
func (h *Hypervolume) volume(o1, o2 optimization.ObjectiveVector, obj int, outside bool) float64 {
	v1 := o1[obj]
	v2 := o2[obj]
	if outside {
		v2 = h.rho
	}

	if obj == 0 {
		if v1 < v2 {
			return (v2 - v1) / h.rho
		}
		return 0
	}

	if v1 < v2 {
		return h.volume(o1, o2, obj-1, true)*(v2-v1)/h.rho +
			h.volume(o1, o2, obj-1, false)*(h.rho-v2)/h.rho
	}
	return h.volume(o1, o2, obj-1, false) * (h.rho - v1) / h.rho
}
