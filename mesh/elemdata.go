package mesh

import (
	"gonum.org/v1/gonum/mat"
)

// ElemData bundles the geometry and basis/quadrature data an integrator
// kernel needs for one element. All fields are read-only during a kernel
// invocation; the assembly loop refills one ElemData per lane rather than
// allocating per element.
type ElemData struct {
	Geom      GeomType
	Attribute int
	Dim       int

	// Basis holds basis function values at quadrature points, one row per
	// quadrature point, one column per local dof.
	Basis *mat.Dense

	// GradBasis holds physical-space basis gradients, one row per
	// quadrature point, Dim columns per local dof (slot i occupies columns
	// [i*Dim, (i+1)*Dim)). Nil when the space does not provide gradients.
	GradBasis *mat.Dense

	// QuadPoints holds physical coordinates of quadrature points, one row
	// per point, Dim columns.
	QuadPoints *mat.Dense

	// Weights are the reference quadrature weights, one per point
	Weights []float64

	// DetJ is the (constant, affine) Jacobian determinant for the element
	DetJ float64
}

// NumQuad returns the number of quadrature points
func (ed *ElemData) NumQuad() int {
	if ed.Basis == nil {
		return 0
	}
	r, _ := ed.Basis.Dims()
	return r
}

// NumDofs returns the number of local dofs
func (ed *ElemData) NumDofs() int {
	if ed.Basis == nil {
		return 0
	}
	_, c := ed.Basis.Dims()
	return c
}

// Space is the finite element space surface consumed by assembly: the
// element-to-dof connectivity plus per-element basis/quadrature data. The
// space is owned by the mesh collaborator and must not change while an
// assembly pass is in progress.
type Space interface {
	// Conn returns the element connectivity. The returned tables are
	// read-only for the caller.
	Conn() *Connectivity

	// FillElemData fills ed with element e's geometry and basis data.
	// Implementations may share backing matrices between calls with the
	// same geometry type; callers must not mutate the filled fields.
	FillElemData(e int, ed *ElemData)
}
