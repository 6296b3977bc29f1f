package forms

import (
	"fmt"

	"github.com/notargets/linform/mesh"
)

// DomainIntegrator is the pluggable per-element kernel of a linear form.
// Implementations compute one element's local contribution; they never see
// the global vector. ContributeElem must add into out (it is handed a
// zeroed slice of length ed.NumDofs()) and must not retain ed or out.
type DomainIntegrator interface {
	ContributeElem(ed *mesh.ElemData, elem int, out []float64) error

	// FullAssemblyCapable reports whether this integrator's kernel is safe
	// for uniform-width lane execution (no per-element control flow that
	// depends on mutable shared state). Integrators that return false are
	// rejected when the host is at the Full assembly level.
	FullAssemblyCapable() bool
}

// Coefficient is a scalar field sampled at physical coordinates
type Coefficient func(x []float64) float64

// VectorCoefficient samples a vector field at x into v (length ed.Dim)
type VectorCoefficient func(x, v []float64)

// ConstantCoefficient returns a coefficient with the same value everywhere
func ConstantCoefficient(c float64) Coefficient {
	return func([]float64) float64 { return c }
}

// SourceIntegrator computes the domain linear form (f, phi_i): the
// integral of a scalar coefficient against each basis function.
type SourceIntegrator struct {
	Coeff Coefficient
}

func (si *SourceIntegrator) FullAssemblyCapable() bool { return true }

func (si *SourceIntegrator) ContributeElem(ed *mesh.ElemData, elem int, out []float64) error {
	if si.Coeff == nil {
		return fmt.Errorf("source integrator: element %d: nil coefficient", elem)
	}
	nq, nd := ed.NumQuad(), ed.NumDofs()
	for q := 0; q < nq; q++ {
		fq := si.Coeff(ed.QuadPoints.RawRowView(q))
		scale := ed.Weights[q] * ed.DetJ * fq
		for i := 0; i < nd; i++ {
			out[i] += scale * ed.Basis.At(q, i)
		}
	}
	return nil
}

// GradSourceIntegrator computes the domain linear form (F, grad phi_i):
// the integral of a vector coefficient against basis gradients. This is
// the right-hand side of the heat-method distance solve.
type GradSourceIntegrator struct {
	Coeff VectorCoefficient
}

func (gi *GradSourceIntegrator) FullAssemblyCapable() bool { return true }

func (gi *GradSourceIntegrator) ContributeElem(ed *mesh.ElemData, elem int, out []float64) error {
	if gi.Coeff == nil {
		return fmt.Errorf("grad source integrator: element %d: nil coefficient", elem)
	}
	if ed.GradBasis == nil {
		return fmt.Errorf("grad source integrator: element %d: space provides "+
			"no basis gradients for %s", elem, ed.Geom)
	}
	nq, nd := ed.NumQuad(), ed.NumDofs()
	v := make([]float64, ed.Dim)
	for q := 0; q < nq; q++ {
		gi.Coeff(ed.QuadPoints.RawRowView(q), v)
		scale := ed.Weights[q] * ed.DetJ
		for i := 0; i < nd; i++ {
			dot := 0.0
			for d := 0; d < ed.Dim; d++ {
				dot += v[d] * ed.GradBasis.At(q, i*ed.Dim+d)
			}
			out[i] += scale * dot
		}
	}
	return nil
}
