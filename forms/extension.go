package forms

import (
	"errors"
)

// AssemblyLevel selects the strategy used to evaluate a linear form
type AssemblyLevel int

const (
	// Legacy evaluates integrators in a single sequential loop, skipping
	// excluded elements by branching. Reference semantics.
	Legacy AssemblyLevel = iota

	// Full evaluates every integrator over the full element range with
	// marker masking, scattering concurrently across lanes.
	Full
)

func (l AssemblyLevel) String() string {
	switch l {
	case Legacy:
		return "Legacy"
	case Full:
		return "Full"
	default:
		return "AssemblyLevel(?)"
	}
}

// RaceDiscipline selects how concurrent scatter-adds into shared dofs are
// made safe at the Full assembly level. All disciplines produce the same
// vector up to floating-point rounding.
type RaceDiscipline int

const (
	// RaceColored batches elements by a shared-dof coloring so that no two
	// concurrently processed elements write the same dof. Default.
	RaceColored RaceDiscipline = iota

	// RaceAtomic scatters the full element range concurrently using
	// atomic float64 accumulation.
	RaceAtomic

	// RaceSerial forces a single lane; no synchronization needed.
	RaceSerial
)

var (
	// ErrNilIntegrator is returned when a nil integrator is registered
	ErrNilIntegrator = errors.New("linform: nil domain integrator")

	// ErrUnsupportedIntegrator is returned when an integrator that is not
	// full-assembly capable is registered at the Full level
	ErrUnsupportedIntegrator = errors.New("linform: integrator does not support full assembly")

	// ErrSizeMismatch is returned when the target vector size does not
	// match the space dimension
	ErrSizeMismatch = errors.New("linform: vector size does not match space dimension")
)

// AssemblyExtension is the per-level assembly strategy. One live instance
// per LinearForm; the host replaces it when the level changes. The only
// observable effect of Assemble is mutation of the host's vector: a reset
// to zero followed by additive accumulation of every registered
// integrator's contribution. The extension borrows the host and never
// outlives it.
type AssemblyExtension interface {
	Assemble() error
}
