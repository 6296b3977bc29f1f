package device

import (
	"strings"
	"testing"

	"github.com/notargets/linform/mesh"
)

func TestSizeOfType(t *testing.T) {
	cases := []struct {
		dt   DataType
		want int64
	}{
		{Float32, 4},
		{Float64, 8},
		{INT32, 4},
		{INT64, 8},
	}
	for _, tc := range cases {
		if got := SizeOfType(tc.dt); got != tc.want {
			t.Errorf("SizeOfType(%v) = %d, want %d", tc.dt, got, tc.want)
		}
	}
}

func TestPreambleGeneration(t *testing.T) {
	t.Run("Float64INT64", func(t *testing.T) {
		da := &Assembler{FloatType: Float64, IntType: INT64}
		preamble := da.GeneratePreamble(3)
		if !strings.Contains(preamble, "typedef double real_t;") {
			t.Error("Expected double real_t typedef")
		}
		if !strings.Contains(preamble, "typedef long int_t;") {
			t.Error("Expected long int_t typedef")
		}
		if !strings.Contains(preamble, "#define NDOF_MAX 3") {
			t.Error("Expected NDOF_MAX 3 macro")
		}
	})

	t.Run("Float32INT32", func(t *testing.T) {
		da := &Assembler{FloatType: Float32, IntType: INT32}
		preamble := da.GeneratePreamble(8)
		if !strings.Contains(preamble, "typedef float real_t;") {
			t.Error("Expected float real_t typedef")
		}
		if !strings.Contains(preamble, "typedef int int_t;") {
			t.Error("Expected int int_t typedef")
		}
		if !strings.Contains(preamble, "#define NDOF_MAX 8") {
			t.Error("Expected NDOF_MAX 8 macro")
		}
	})
}

func TestScatterKernelSource(t *testing.T) {
	// Structural checks on the kernel the assembler compiles
	for _, token := range []string{
		"@kernel void scatterAdd",
		"@outer", "@inner",
		"markers[e]",
		"g >= 0",
	} {
		if !strings.Contains(ScatterKernelSource, token) {
			t.Errorf("Scatter kernel source missing %q", token)
		}
	}
}

func TestPackDofTables(t *testing.T) {
	conn := &mesh.Connectivity{
		GeomTypes:  []mesh.GeomType{mesh.Tri, mesh.Line},
		Attributes: []int{1, 1},
		ElemDofs:   [][]int{{0, 1, 2}, {2, 3}},
		ElemSigns:  [][]float64{{1, 1, -1}, {1, 1}},
		NDofs:      4,
	}
	dofs, signs := packDofTables(conn)

	if len(dofs) != 6 || len(signs) != 6 {
		t.Fatalf("Expected 2x3 rectangular tables, got %d and %d", len(dofs), len(signs))
	}
	// Element 1 has 2 dofs; its third slot is padded
	if dofs[5] != -1 {
		t.Errorf("Expected padded dof slot -1, got %d", dofs[5])
	}
	if signs[5] != 0 {
		t.Errorf("Expected padded sign slot 0, got %g", signs[5])
	}
	if dofs[2] != 2 || signs[2] != -1 {
		t.Errorf("Expected signed dof (2, -1), got (%d, %g)", dofs[2], signs[2])
	}
}

func TestPackLocal(t *testing.T) {
	conn := mesh.TwoTriangleMesh().Conn()
	locals := [][]float64{{1, 2, 3}, {4, 5, 6}}
	packed := PackLocal(conn, locals)
	want := []float64{1, 2, 3, 4, 5, 6}
	for i := range want {
		if packed[i] != want[i] {
			t.Errorf("packed[%d] = %g, want %g", i, packed[i], want[i])
		}
	}
}
