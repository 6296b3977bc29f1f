package mesh

import (
	"gonum.org/v1/gonum/mat"
)

// TwoTriangleMesh builds a unit square split into two triangles sharing the
// diagonal edge between dofs 0 and 2. Attributes are 1 and 2, one per
// triangle. 4 dofs total, 2 of them shared.
func TwoTriangleMesh() *NodalSpace {
	conn := &Connectivity{
		GeomTypes:  []GeomType{Tri, Tri},
		Attributes: []int{1, 2},
		ElemDofs: [][]int{
			{0, 1, 2},
			{0, 2, 3},
		},
		NDofs: 4,
	}
	coords := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		1, 1,
		0, 1,
	})
	s, err := NewNodalSpace(conn, coords, 2)
	if err != nil {
		panic(err)
	}
	return s
}

// IntervalMesh builds n unit-width segments on [0,n] with n+1 dofs;
// interior dofs are shared between adjacent segments. Attributes alternate
// between 1 and 2 along the interval.
func IntervalMesh(n int) *NodalSpace {
	conn := &Connectivity{
		GeomTypes:  make([]GeomType, n),
		Attributes: make([]int, n),
		ElemDofs:   make([][]int, n),
		NDofs:      n + 1,
	}
	coordData := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		coordData[i] = float64(i)
	}
	for e := 0; e < n; e++ {
		conn.GeomTypes[e] = Line
		conn.Attributes[e] = 1 + e%2
		conn.ElemDofs[e] = []int{e, e + 1}
	}
	s, err := NewNodalSpace(conn, mat.NewDense(n+1, 1, coordData), 1)
	if err != nil {
		panic(err)
	}
	return s
}

// QuadGridMesh builds an nx by ny grid of unit quads on [0,nx]x[0,ny].
// Every interior vertex dof is shared by four elements, which makes this
// the stress mesh for concurrent scatter-add. Attributes form a
// checkerboard of 1s and 2s.
func QuadGridMesh(nx, ny int) *NodalSpace {
	nTotal := nx * ny
	nDofs := (nx + 1) * (ny + 1)
	conn := &Connectivity{
		GeomTypes:  make([]GeomType, nTotal),
		Attributes: make([]int, nTotal),
		ElemDofs:   make([][]int, nTotal),
		NDofs:      nDofs,
	}
	coordData := make([]float64, 2*nDofs)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			node := j*(nx+1) + i
			coordData[2*node] = float64(i)
			coordData[2*node+1] = float64(j)
		}
	}
	for ey := 0; ey < ny; ey++ {
		for ex := 0; ex < nx; ex++ {
			e := ey*nx + ex
			n0 := ey*(nx+1) + ex
			conn.GeomTypes[e] = Quad
			conn.Attributes[e] = 1 + (ex+ey)%2
			// Counter-clockwise local ordering
			conn.ElemDofs[e] = []int{n0, n0 + 1, n0 + nx + 2, n0 + nx + 1}
		}
	}
	s, err := NewNodalSpace(conn, mat.NewDense(nDofs, 2, coordData), 2)
	if err != nil {
		panic(err)
	}
	return s
}
