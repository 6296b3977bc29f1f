package forms

import (
	"fmt"

	"github.com/notargets/linform/mesh"
)

// integratorEntry pairs a registered integrator with its attribute filter
// and lazily resolved marker cache. Integrators are borrowed, not owned.
type integratorEntry struct {
	integ   DomainIntegrator
	filter  AttributeFilter
	markers []int // nil until first use, invalidated on registration changes
}

// Config tunes Full-level execution. Zero values select one lane and the
// colored discipline.
type Config struct {
	// Lanes is the number of concurrent execution lanes; 0 or 1 runs
	// sequentially.
	Lanes int

	// Discipline selects the shared-dof write protection strategy
	Discipline RaceDiscipline
}

// LinearForm owns the target global vector and the list of registered
// domain integrators, and delegates Assemble to the active extension.
type LinearForm struct {
	space   mesh.Space
	vec     []float64
	entries []integratorEntry
	level   AssemblyLevel
	ext     AssemblyExtension
	cfg     Config
}

// NewLinearForm creates a linear form over space at the Legacy level, with
// the target vector sized to the space dimension.
func NewLinearForm(space mesh.Space) *LinearForm {
	if space == nil {
		panic("linform: nil space")
	}
	lf := &LinearForm{
		space: space,
		vec:   make([]float64, space.Conn().NumDofs()),
	}
	lf.ext = &legacyExtension{lf: lf}
	return lf
}

// AddDomainIntegrator registers an integrator restricted to elements whose
// attribute is in filter (nil filter means all elements). Registration
// order is preserved; contributions accumulate in that order. The
// integrator is rejected here, not at first use, if it cannot serve the
// current assembly level.
func (lf *LinearForm) AddDomainIntegrator(di DomainIntegrator, filter AttributeFilter) error {
	if di == nil {
		return ErrNilIntegrator
	}
	if lf.level == Full && !di.FullAssemblyCapable() {
		return fmt.Errorf("%w: %T", ErrUnsupportedIntegrator, di)
	}
	lf.entries = append(lf.entries, integratorEntry{integ: di, filter: filter})
	lf.invalidateMarkers()
	return nil
}

// SetAssemblyLevel swaps in the extension for the given level. The old
// extension is replaced, not mutated. Moving to Full re-checks every
// registered integrator's capability.
func (lf *LinearForm) SetAssemblyLevel(level AssemblyLevel) error {
	switch level {
	case Legacy:
		lf.ext = &legacyExtension{lf: lf}
	case Full:
		for _, ent := range lf.entries {
			if !ent.integ.FullAssemblyCapable() {
				return fmt.Errorf("%w: %T", ErrUnsupportedIntegrator, ent.integ)
			}
		}
		lf.ext = newFullExtension(lf)
	default:
		return fmt.Errorf("linform: unknown assembly level %d", level)
	}
	lf.level = level
	return nil
}

// SetConfig applies lane and race-discipline configuration for the Full
// level. Takes effect on the next Assemble call.
func (lf *LinearForm) SetConfig(cfg Config) {
	lf.cfg = cfg
}

// Assemble resets the target vector to zero and accumulates every
// registered integrator's contribution through the active extension.
func (lf *LinearForm) Assemble() error {
	return lf.ext.Assemble()
}

// Vector returns the target global vector. The slice is owned by the
// LinearForm; it is reset and refilled on every Assemble call.
func (lf *LinearForm) Vector() []float64 { return lf.vec }

// Space returns the finite element space the form is defined over
func (lf *LinearForm) Space() mesh.Space { return lf.space }

// Level returns the current assembly level
func (lf *LinearForm) Level() AssemblyLevel { return lf.level }

// markersFor resolves (or reuses) the marker array for entry i
func (lf *LinearForm) markersFor(i int) []int {
	ent := &lf.entries[i]
	if ent.markers == nil {
		ent.markers = ResolveMarkers(lf.space.Conn().Attributes, ent.filter)
	}
	return ent.markers
}

func (lf *LinearForm) invalidateMarkers() {
	for i := range lf.entries {
		lf.entries[i].markers = nil
	}
}

// checkPreconditions runs the once-per-Assemble fatal checks shared by
// every extension.
func (lf *LinearForm) checkPreconditions() error {
	conn := lf.space.Conn()
	if len(lf.vec) != conn.NumDofs() {
		return fmt.Errorf("%w: vector has %d entries, space has %d dofs",
			ErrSizeMismatch, len(lf.vec), conn.NumDofs())
	}
	for i, ent := range lf.entries {
		if ent.integ == nil {
			return fmt.Errorf("%w: entry %d", ErrNilIntegrator, i)
		}
	}
	return nil
}

// zeroVector resets the target vector before accumulation. Assemble always
// starts from zero; accumulate-on-top is not supported.
func (lf *LinearForm) zeroVector() {
	for i := range lf.vec {
		lf.vec[i] = 0
	}
}
