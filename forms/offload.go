package forms

import (
	"fmt"

	"github.com/notargets/linform/lanes"
	"github.com/notargets/linform/mesh"
)

// ScatterOffload is the device-backend surface consumed by the offload
// extension. Implementations scatter-add packed local contributions into
// vec, one conflict-free color batch at a time; device.Assembler
// satisfies this.
type ScatterOffload interface {
	UploadConnectivity(conn *mesh.Connectivity) error
	AssembleVector(conn *mesh.Connectivity, packedLocal []float64,
		markers []int, colors [][]int, vec []float64) error
}

// SetScatterOffload switches the form to full assembly with the scatter
// phase delegated to a device backend. Integrator kernels still run
// host-side; the backend performs the masked, color-batched accumulation.
// The backend is borrowed, not owned.
func (lf *LinearForm) SetScatterOffload(backend ScatterOffload) error {
	if backend == nil {
		return fmt.Errorf("linform: nil scatter offload backend")
	}
	for _, ent := range lf.entries {
		if !ent.integ.FullAssemblyCapable() {
			return fmt.Errorf("%w: %T", ErrUnsupportedIntegrator, ent.integ)
		}
	}
	lf.ext = &offloadExtension{lf: lf, backend: backend}
	lf.level = Full
	return nil
}

// offloadExtension evaluates every integrator over the full element range
// host-side, packs the local contributions into the rectangular layout
// the device expects, and hands the scatter to the backend.
type offloadExtension struct {
	lf       *LinearForm // borrowed, host outlives the extension
	backend  ScatterOffload
	colors   [][]int
	uploaded bool
}

func (oe *offloadExtension) Assemble() error {
	lf := oe.lf
	if err := lf.checkPreconditions(); err != nil {
		return err
	}
	lf.zeroVector()

	conn := lf.space.Conn()
	ne := conn.NumElements()
	if ne == 0 {
		return nil
	}

	if !oe.uploaded {
		if err := oe.backend.UploadConnectivity(conn); err != nil {
			return fmt.Errorf("offload assembly: %w", err)
		}
		oe.uploaded = true
	}
	if oe.colors == nil {
		oe.colors = lanes.ColorElements(conn)
	}

	ndofMax := conn.MaxElemDofs()
	packed := make([]float64, ne*ndofMax)
	var ed mesh.ElemData
	for i := range lf.entries {
		markers := lf.markersFor(i)
		integ := lf.entries[i].integ

		for k := range packed {
			packed[k] = 0
		}
		for e := 0; e < ne; e++ {
			lf.space.FillElemData(e, &ed)
			nd := ed.NumDofs()
			if err := integ.ContributeElem(&ed, e, packed[e*ndofMax:e*ndofMax+nd]); err != nil {
				return fmt.Errorf("offload assembly: %w", err)
			}
		}
		if err := oe.backend.AssembleVector(conn, packed, markers, oe.colors, lf.vec); err != nil {
			return fmt.Errorf("offload assembly: %w", err)
		}
	}
	return nil
}
