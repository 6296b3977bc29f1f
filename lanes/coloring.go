package lanes

import (
	"github.com/notargets/linform/mesh"
)

// ColorElements groups elements into batches such that no two elements in
// the same batch share a global dof. Elements of one batch can therefore
// scatter-add concurrently without synchronization; batches are processed
// in sequence with a barrier between them.
//
// Greedy smallest-available-color over the shared-dof element graph,
// visiting elements in ascending index order, so the batching is
// deterministic for a given connectivity.
func ColorElements(conn *mesh.Connectivity) [][]int {
	ne := conn.NumElements()
	if ne == 0 {
		return nil
	}

	// dofToElems: which elements touch each dof
	dofToElems := make([][]int, conn.NumDofs())
	for e := 0; e < ne; e++ {
		for _, g := range conn.Dofs(e) {
			dofToElems[g] = append(dofToElems[g], e)
		}
	}

	colorOf := make([]int, ne)
	for e := range colorOf {
		colorOf[e] = -1
	}

	numColors := 0
	used := make([]int, 0) // used[c] == e+1 when color c is taken by a neighbor of e
	for e := 0; e < ne; e++ {
		// Mark colors taken by neighbors through any shared dof
		for _, g := range conn.Dofs(e) {
			for _, nb := range dofToElems[g] {
				if nb == e {
					continue
				}
				if c := colorOf[nb]; c >= 0 {
					used[c] = e + 1
				}
			}
		}
		// Smallest free color
		c := 0
		for c < numColors && used[c] == e+1 {
			c++
		}
		if c == numColors {
			numColors++
			used = append(used, 0)
		}
		colorOf[e] = c
	}

	batches := make([][]int, numColors)
	for e, c := range colorOf {
		batches[c] = append(batches[c], e)
	}
	return batches
}
