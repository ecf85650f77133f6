package engine

import (
	"math"

	"github.com/gogpu/spiral/internal/geom"
)

// Norm holds the radius parameter that normalization trades against the
// viewport scale.
type Norm interface {
	// Apply folds scale into [1, period) where possible, adjusting the
	// radius parameter to match, and returns the new scale.
	Apply(scale float64) float64

	// A returns the current radius parameter.
	A() float64

	// Period returns the normalization step.
	Period() float64
}

// LinearNorm keeps a directly.
type LinearNorm struct {
	a, period float64
}

// NewLinearNorm returns a LinearNorm starting at a.
func NewLinearNorm(a, period float64) *LinearNorm {
	return &LinearNorm{a: a, period: period}
}

func (n *LinearNorm) Apply(scale float64) float64 {
	scale, n.a = geom.Normalize(scale, n.a, n.period)
	return scale
}

func (n *LinearNorm) A() float64      { return n.a }
func (n *LinearNorm) Period() float64 { return n.period }

// LogNorm keeps ln(a), which stays well conditioned across many
// normalization passes in either direction.
type LogNorm struct {
	logA, period float64
}

// NewLogNorm returns a LogNorm starting at a.
func NewLogNorm(a, period float64) *LogNorm {
	return &LogNorm{logA: math.Log(a), period: period}
}

func (n *LogNorm) Apply(scale float64) float64 {
	scale, n.logA = geom.NormalizeLog(scale, n.logA, n.period)
	return scale
}

func (n *LogNorm) A() float64      { return math.Exp(n.logA) }
func (n *LogNorm) LogA() float64   { return n.logA }
func (n *LogNorm) Period() float64 { return n.period }
