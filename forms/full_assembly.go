package forms

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/notargets/linform/lanes"
	"github.com/notargets/linform/mesh"
)

// fullExtension is the Full-level strategy: every integrator is evaluated
// over the full element range with marker masking (excluded elements
// contribute an exact zero, not a skipped branch), and contributions are
// scattered concurrently across lanes. Shared-dof writes are protected by
// the configured race discipline. Stateless across calls except for the
// shared-dof coloring, which is a pure function of the connectivity.
type fullExtension struct {
	lf     *LinearForm // borrowed, host outlives the extension
	colors [][]int     // lazily built, reused across Assemble calls
}

func newFullExtension(lf *LinearForm) *fullExtension {
	return &fullExtension{lf: lf}
}

// Assemble zeroes the target vector, then accumulates all registered
// integrators in registration order. Summation order across elements
// within one integrator is unspecified beyond floating-point rounding.
func (fe *fullExtension) Assemble() error {
	lf := fe.lf
	if err := lf.checkPreconditions(); err != nil {
		return err
	}
	lf.zeroVector()

	conn := lf.space.Conn()
	if conn.NumElements() == 0 {
		return nil
	}

	numLanes := lf.cfg.Lanes
	if numLanes < 1 {
		numLanes = 1
	}
	discipline := lf.cfg.Discipline
	if numLanes == 1 {
		discipline = RaceSerial
	}

	for i := range lf.entries {
		markers := lf.markersFor(i)
		integ := lf.entries[i].integ

		var err error
		switch discipline {
		case RaceSerial:
			err = fe.assembleMasked(integ, markers, conn)
		case RaceColored:
			err = fe.assembleColored(integ, markers, conn, numLanes)
		case RaceAtomic:
			err = fe.assembleAtomic(integ, markers, conn, numLanes)
		default:
			err = fmt.Errorf("linform: unknown race discipline %d", discipline)
		}
		if err != nil {
			return fmt.Errorf("full assembly: %w", err)
		}
	}
	return nil
}

// assembleMasked is the single-lane masked pass: evaluate every element
// and scale by its marker, uniform width, no synchronization.
func (fe *fullExtension) assembleMasked(integ DomainIntegrator, markers []int,
	conn *mesh.Connectivity) error {
	var ed mesh.ElemData
	local := make([]float64, conn.MaxElemDofs())
	for e := 0; e < conn.NumElements(); e++ {
		if err := contributeMasked(fe.lf.space, integ, e, &ed, local); err != nil {
			return err
		}
		nd := len(conn.Dofs(e))
		scatterAdd(fe.lf.vec, conn, e, local[:nd], float64(markers[e]))
	}
	return nil
}

// assembleColored processes the shared-dof color batches in sequence; the
// elements of one batch never write the same dof, so each batch fans out
// across lanes with plain adds.
func (fe *fullExtension) assembleColored(integ DomainIntegrator, markers []int,
	conn *mesh.Connectivity, numLanes int) error {
	if fe.colors == nil {
		fe.colors = lanes.ColorElements(conn)
	}
	for _, batch := range fe.colors {
		if err := fe.runBatch(integ, markers, conn, batch, numLanes, false); err != nil {
			return err
		}
	}
	return nil
}

// assembleAtomic fans the full element range out across lanes and relies
// on atomic float64 accumulation for overlapping dof writes.
func (fe *fullExtension) assembleAtomic(integ DomainIntegrator, markers []int,
	conn *mesh.Connectivity, numLanes int) error {
	layout, err := lanes.Build(conn.NumElements(), lanes.Config{
		NumLanes: numLanes,
		Strategy: lanes.Block,
	})
	if err != nil {
		return err
	}
	errs := make([]error, layout.NumLanes)
	var wg sync.WaitGroup
	for l := range layout.Lanes {
		wg.Add(1)
		go func(laneID int) {
			defer wg.Done()
			errs[laneID] = fe.runElements(integ, markers, conn,
				layout.Lanes[laneID].Elements, true)
		}(l)
	}
	wg.Wait()
	return firstError(errs)
}

// runBatch splits batch into contiguous chunks, one per lane, and waits
// for all lanes before returning; the wait is the visibility barrier
// between color batches.
func (fe *fullExtension) runBatch(integ DomainIntegrator, markers []int,
	conn *mesh.Connectivity, batch []int, numLanes int, atomicAdds bool) error {
	if numLanes > len(batch) {
		numLanes = len(batch)
	}
	if numLanes <= 1 {
		return fe.runElements(integ, markers, conn, batch, atomicAdds)
	}
	chunk := (len(batch) + numLanes - 1) / numLanes
	errs := make([]error, numLanes)
	var wg sync.WaitGroup
	for l := 0; l < numLanes; l++ {
		lo := l * chunk
		if lo >= len(batch) {
			// Ceil-sized chunks can exhaust the batch before the last lane
			break
		}
		hi := lo + chunk
		if hi > len(batch) {
			hi = len(batch)
		}
		wg.Add(1)
		go func(laneID int, elems []int) {
			defer wg.Done()
			errs[laneID] = fe.runElements(integ, markers, conn, elems, atomicAdds)
		}(l, batch[lo:hi])
	}
	wg.Wait()
	return firstError(errs)
}

// runElements is one lane's work: masked evaluation and scatter over its
// element list, with lane-private scratch.
func (fe *fullExtension) runElements(integ DomainIntegrator, markers []int,
	conn *mesh.Connectivity, elems []int, atomicAdds bool) error {
	var ed mesh.ElemData
	local := make([]float64, conn.MaxElemDofs())
	for _, e := range elems {
		if err := contributeMasked(fe.lf.space, integ, e, &ed, local); err != nil {
			return err
		}
		mask := float64(markers[e])
		nd := len(conn.Dofs(e))
		if atomicAdds {
			atomicScatterAdd(fe.lf.vec, conn, e, local[:nd], mask)
		} else {
			scatterAdd(fe.lf.vec, conn, e, local[:nd], mask)
		}
	}
	return nil
}

// contributeMasked evaluates the kernel for element e into local. Every
// element is evaluated regardless of its marker; masking happens at
// scatter time so the pass has uniform width across the element range.
func contributeMasked(space mesh.Space, integ DomainIntegrator, e int,
	ed *mesh.ElemData, local []float64) error {
	space.FillElemData(e, ed)
	nd := ed.NumDofs()
	for k := 0; k < nd; k++ {
		local[k] = 0
	}
	return integ.ContributeElem(ed, e, local[:nd])
}

// atomicScatterAdd is scatterAdd with lost-update protection; used when
// concurrently processed elements may share dofs.
func atomicScatterAdd(vec []float64, conn *mesh.Connectivity, e int,
	local []float64, mask float64) {
	dofs := conn.Dofs(e)
	signs := conn.Signs(e)
	for i, g := range dofs {
		v := mask * local[i]
		if signs != nil {
			v *= signs[i]
		}
		atomicAddFloat64(&vec[g], v)
	}
}

// atomicAddFloat64 accumulates delta into *addr with a CAS loop over the
// float's bit pattern.
func atomicAddFloat64(addr *float64, delta float64) {
	bits := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(bits)
		upd := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(bits, old, upd) {
			return
		}
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
