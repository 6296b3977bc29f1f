package forms

import (
	"fmt"

	"github.com/notargets/linform/mesh"
)

// legacyExtension is the sequential reference strategy: one loop over
// elements per integrator, skipping excluded elements by branching.
// Control-flow skipping is fine here because a single lane gains nothing
// from uniform width.
type legacyExtension struct {
	lf *LinearForm // borrowed, host outlives the extension
}

func (le *legacyExtension) Assemble() error {
	lf := le.lf
	if err := lf.checkPreconditions(); err != nil {
		return err
	}
	lf.zeroVector()

	conn := lf.space.Conn()
	ne := conn.NumElements()
	if ne == 0 {
		return nil
	}

	var ed mesh.ElemData
	local := make([]float64, conn.MaxElemDofs())
	for i := range lf.entries {
		markers := lf.markersFor(i)
		integ := lf.entries[i].integ
		for e := 0; e < ne; e++ {
			if markers[e] == 0 {
				continue
			}
			lf.space.FillElemData(e, &ed)
			nd := ed.NumDofs()
			for k := 0; k < nd; k++ {
				local[k] = 0
			}
			if err := integ.ContributeElem(&ed, e, local[:nd]); err != nil {
				return fmt.Errorf("legacy assembly: %w", err)
			}
			scatterAdd(lf.vec, conn, e, local[:nd], 1.0)
		}
	}
	return nil
}

// scatterAdd accumulates element e's local contribution into vec through
// the signed dof map, scaled by mask (0 or 1 under marker masking).
func scatterAdd(vec []float64, conn *mesh.Connectivity, e int, local []float64, mask float64) {
	dofs := conn.Dofs(e)
	signs := conn.Signs(e)
	if signs == nil {
		for i, g := range dofs {
			vec[g] += mask * local[i]
		}
		return
	}
	for i, g := range dofs {
		vec[g] += mask * signs[i] * local[i]
	}
}
