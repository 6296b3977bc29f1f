package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NodalSpace is a first-order nodal space over an explicit coordinate
// table. One dof per mesh node, single-point quadrature per element. It
// exists so assembly can be exercised against analytically known meshes;
// production spaces come from the basis/quadrature collaborator.
type NodalSpace struct {
	conn   *Connectivity
	coords *mat.Dense // NDofs x dim node coordinates
	dim    int
}

// NewNodalSpace builds a nodal space over the given connectivity and node
// coordinates. The connectivity is validated once here.
func NewNodalSpace(conn *Connectivity, coords *mat.Dense, dim int) (*NodalSpace, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	rows, cols := coords.Dims()
	if rows != conn.NumDofs() || cols != dim {
		return nil, fmt.Errorf("nodal space: coords are %dx%d, want %dx%d",
			rows, cols, conn.NumDofs(), dim)
	}
	return &NodalSpace{conn: conn, coords: coords, dim: dim}, nil
}

func (s *NodalSpace) Conn() *Connectivity { return s.conn }

// FillElemData fills ed with single-point quadrature data for element e
func (s *NodalSpace) FillElemData(e int, ed *ElemData) {
	geom := s.conn.GeomTypes[e]
	dofs := s.conn.ElemDofs[e]
	nd := len(dofs)

	ed.Geom = geom
	ed.Attribute = s.conn.Attributes[e]
	ed.Dim = s.dim
	ed.GradBasis = nil

	// Centroid quadrature point in physical space
	center := make([]float64, s.dim)
	for _, g := range dofs {
		for d := 0; d < s.dim; d++ {
			center[d] += s.coords.At(g, d) / float64(nd)
		}
	}
	ed.QuadPoints = mat.NewDense(1, s.dim, center)

	// Equal basis weights at the centroid for first-order nodal bases
	phi := make([]float64, nd)
	for i := range phi {
		phi[i] = 1.0 / float64(nd)
	}
	ed.Basis = mat.NewDense(1, nd, phi)

	switch geom {
	case Line:
		ed.Weights = []float64{1.0}
		length := 0.0
		for d := 0; d < s.dim; d++ {
			dx := s.coords.At(dofs[1], d) - s.coords.At(dofs[0], d)
			length += dx * dx
		}
		length = math.Sqrt(length)
		ed.DetJ = length
		if s.dim == 1 {
			ed.GradBasis = mat.NewDense(1, 2, []float64{-1.0 / length, 1.0 / length})
		}
	case Tri:
		// Reference triangle has area 1/2, so DetJ is twice the area
		ed.Weights = []float64{0.5}
		ax, ay := s.coords.At(dofs[0], 0), s.coords.At(dofs[0], 1)
		bx, by := s.coords.At(dofs[1], 0), s.coords.At(dofs[1], 1)
		cx, cy := s.coords.At(dofs[2], 0), s.coords.At(dofs[2], 1)
		det := (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
		ed.DetJ = det
		// Constant barycentric gradients
		ed.GradBasis = mat.NewDense(1, 6, []float64{
			(by - cy) / det, (cx - bx) / det,
			(cy - ay) / det, (ax - cx) / det,
			(ay - by) / det, (bx - ax) / det,
		})
	case Quad:
		// Unit reference square, weight 1, DetJ carries the area
		ed.Weights = []float64{1.0}
		ax, ay := s.coords.At(dofs[0], 0), s.coords.At(dofs[0], 1)
		cx, cy := s.coords.At(dofs[2], 0), s.coords.At(dofs[2], 1)
		ed.DetJ = (cx - ax) * (cy - ay)
	default:
		panic(fmt.Sprintf("nodal space: unsupported geometry %s", geom))
	}
}
