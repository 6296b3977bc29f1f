package lanes

import (
	"testing"

	"github.com/notargets/linform/mesh"
)

// assertConflictFree fails if any two elements of one batch share a dof
func assertConflictFree(t *testing.T, conn *mesh.Connectivity, batches [][]int) {
	t.Helper()
	for c, batch := range batches {
		seen := make(map[int]int)
		for _, e := range batch {
			for _, g := range conn.Dofs(e) {
				if other, taken := seen[g]; taken {
					t.Errorf("Color %d: elements %d and %d both write dof %d",
						c, other, e, g)
				}
				seen[g] = e
			}
		}
	}
}

func assertCoversAll(t *testing.T, numElements int, batches [][]int) {
	t.Helper()
	covered := make([]bool, numElements)
	total := 0
	for _, batch := range batches {
		for _, e := range batch {
			if covered[e] {
				t.Errorf("Element %d appears in more than one batch", e)
			}
			covered[e] = true
			total++
		}
	}
	if total != numElements {
		t.Errorf("Batches cover %d elements, want %d", total, numElements)
	}
}

func TestColorElements(t *testing.T) {
	t.Run("TwoTriangles", func(t *testing.T) {
		conn := mesh.TwoTriangleMesh().Conn()
		batches := ColorElements(conn)
		// Both triangles share an edge, so they need separate colors
		if len(batches) != 2 {
			t.Errorf("Expected 2 colors for 2 edge-sharing triangles, got %d",
				len(batches))
		}
		assertConflictFree(t, conn, batches)
		assertCoversAll(t, conn.NumElements(), batches)
	})

	t.Run("Interval", func(t *testing.T) {
		conn := mesh.IntervalMesh(9).Conn()
		batches := ColorElements(conn)
		// A path graph is 2-colorable
		if len(batches) != 2 {
			t.Errorf("Expected 2 colors for segment chain, got %d", len(batches))
		}
		assertConflictFree(t, conn, batches)
		assertCoversAll(t, conn.NumElements(), batches)
	})

	t.Run("QuadGrid", func(t *testing.T) {
		conn := mesh.QuadGridMesh(8, 8).Conn()
		batches := ColorElements(conn)
		// Vertex-adjacent quads conflict, so a grid needs 4 colors
		if len(batches) != 4 {
			t.Errorf("Expected 4 colors for quad grid, got %d", len(batches))
		}
		assertConflictFree(t, conn, batches)
		assertCoversAll(t, conn.NumElements(), batches)
	})

	t.Run("EmptyMesh", func(t *testing.T) {
		conn := &mesh.Connectivity{NDofs: 4}
		if batches := ColorElements(conn); batches != nil {
			t.Errorf("Expected nil batches for empty mesh, got %v", batches)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		conn := mesh.QuadGridMesh(5, 4).Conn()
		first := ColorElements(conn)
		second := ColorElements(conn)
		if len(first) != len(second) {
			t.Fatalf("Color counts differ: %d vs %d", len(first), len(second))
		}
		for c := range first {
			if len(first[c]) != len(second[c]) {
				t.Fatalf("Color %d sizes differ", c)
			}
			for i := range first[c] {
				if first[c][i] != second[c][i] {
					t.Fatalf("Color %d differs at position %d", c, i)
				}
			}
		}
	})
}
