package mesh

import (
	"fmt"
)

// GeomType identifies the shape of an element
type GeomType uint8

const (
	// 3D element types
	Tet     GeomType = iota // Tetrahedron
	Hex                     // Hexahedron
	Prism                   // Triangular prism
	Pyramid                 // Square-based pyramid

	// 2D element types
	Tri  // Triangle
	Quad // Quadrilateral

	// 1D element type
	Line // Line segment
)

func (g GeomType) String() string {
	switch g {
	case Tet:
		return "Tet"
	case Hex:
		return "Hex"
	case Prism:
		return "Prism"
	case Pyramid:
		return "Pyramid"
	case Tri:
		return "Tri"
	case Quad:
		return "Quad"
	case Line:
		return "Line"
	default:
		return fmt.Sprintf("GeomType(%d)", uint8(g))
	}
}

// Dimensions returns the spatial dimension of the geometry
func (g GeomType) Dimensions() int {
	switch g {
	case Line:
		return 1
	case Tri, Quad:
		return 2
	default:
		return 3
	}
}

// Connectivity is the read-only mesh surface consumed during assembly:
// a geometry type and attribute per element, plus the signed
// element-to-dof map used to scatter local contributions.
type Connectivity struct {
	// Per-element data, all of length NumElements
	GeomTypes  []GeomType
	Attributes []int // Integer region tags, 1-based

	// ElemDofs[e] lists the global dof indices of element e in local order.
	// ElemSigns[e], if present, carries an orientation sign (+1/-1) per
	// local slot; a nil ElemSigns means all positive.
	ElemDofs  [][]int
	ElemSigns [][]float64

	// Total number of global degrees of freedom
	NDofs int
}

// NumElements returns the number of elements in the mesh
func (c *Connectivity) NumElements() int {
	return len(c.ElemDofs)
}

// NumDofs returns the dimension of the global dof vector
func (c *Connectivity) NumDofs() int {
	return c.NDofs
}

// Dofs returns the global dof indices of element e in local order
func (c *Connectivity) Dofs(e int) []int {
	return c.ElemDofs[e]
}

// Signs returns the orientation signs of element e, or nil if all positive
func (c *Connectivity) Signs(e int) []float64 {
	if c.ElemSigns == nil {
		return nil
	}
	return c.ElemSigns[e]
}

// MaxElemDofs returns the largest local dof count across all elements.
// Used to size uniform-width scratch buffers for lane execution.
func (c *Connectivity) MaxElemDofs() int {
	maxDofs := 0
	for _, dofs := range c.ElemDofs {
		if len(dofs) > maxDofs {
			maxDofs = len(dofs)
		}
	}
	return maxDofs
}

// Validate checks internal consistency of the connectivity tables
func (c *Connectivity) Validate() error {
	ne := c.NumElements()
	if len(c.GeomTypes) != ne {
		return fmt.Errorf("connectivity: %d geometry types for %d elements",
			len(c.GeomTypes), ne)
	}
	if len(c.Attributes) != ne {
		return fmt.Errorf("connectivity: %d attributes for %d elements",
			len(c.Attributes), ne)
	}
	for e, attr := range c.Attributes {
		if attr < 1 {
			return fmt.Errorf("connectivity: element %d has attribute %d, "+
				"attributes are 1-based", e, attr)
		}
	}
	for e, dofs := range c.ElemDofs {
		if len(dofs) == 0 {
			return fmt.Errorf("connectivity: element %d has no dofs", e)
		}
		for i, g := range dofs {
			if g < 0 || g >= c.NDofs {
				return fmt.Errorf("connectivity: element %d slot %d: dof %d "+
					"out of range [0,%d)", e, i, g, c.NDofs)
			}
		}
		if c.ElemSigns != nil {
			if len(c.ElemSigns[e]) != len(dofs) {
				return fmt.Errorf("connectivity: element %d has %d signs for "+
					"%d dofs", e, len(c.ElemSigns[e]), len(dofs))
			}
		}
	}
	return nil
}
