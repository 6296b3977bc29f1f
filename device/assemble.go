package device

import (
	"fmt"

	"github.com/notargets/linform/mesh"
)

// ScatterKernelName is the registered name of the generated scatter kernel
const ScatterKernelName = "scatterAdd"

// ScatterKernelSource is the color-batched scatter-add kernel. Elements of
// one batch never share a dof, so the @outer loop over the batch is free
// of write conflicts; the @inner loop runs the uniform NDOF_MAX width with
// padded slots masked by a negative dof index.
const ScatterKernelSource = `
@kernel void scatterAdd(const int nBatch,
                        @restrict const int_t *batch,
                        @restrict const int_t *dofs,
                        @restrict const real_t *signs,
                        @restrict const int_t *markers,
                        @restrict const real_t *local,
                        real_t *vec) {
  for (int b = 0; b < nBatch; ++b; @outer) {
    for (int i = 0; i < NDOF_MAX; ++i; @inner) {
      const int_t e = batch[b];
      const int_t g = dofs[e * NDOF_MAX + i];
      if (g >= 0) {
        vec[g] += ((real_t) markers[e]) *
                  signs[e * NDOF_MAX + i] *
                  local[e * NDOF_MAX + i];
      }
    }
  }
}
`

// PackLocal lays out per-element local contributions in the rectangular
// element-major order the scatter kernel expects: NDOF_MAX slots per
// element, unused slots zero. locals[e] may be shorter than NDOF_MAX.
func PackLocal(conn *mesh.Connectivity, locals [][]float64) []float64 {
	ndofMax := conn.MaxElemDofs()
	packed := make([]float64, conn.NumElements()*ndofMax)
	for e, local := range locals {
		copy(packed[e*ndofMax:], local)
	}
	return packed
}

// packDofTables rectangularizes the signed dof map: padded dof slots get
// index -1 (masked in the kernel), padded sign slots stay zero.
func packDofTables(conn *mesh.Connectivity) (dofs []int64, signs []float64) {
	ndofMax := conn.MaxElemDofs()
	ne := conn.NumElements()
	dofs = make([]int64, ne*ndofMax)
	signs = make([]float64, ne*ndofMax)
	for i := range dofs {
		dofs[i] = -1
	}
	for e := 0; e < ne; e++ {
		elemSigns := conn.Signs(e)
		for i, g := range conn.Dofs(e) {
			dofs[e*ndofMax+i] = int64(g)
			if elemSigns != nil {
				signs[e*ndofMax+i] = elemSigns[i]
			} else {
				signs[e*ndofMax+i] = 1.0
			}
		}
	}
	return dofs, signs
}

// UploadConnectivity stages the rectangular dof map and signs on the
// device and compiles the scatter kernel. Call once per connectivity; the
// uploaded tables are reused by every AssembleVector call.
func (da *Assembler) UploadConnectivity(conn *mesh.Connectivity) error {
	if conn.NumElements() == 0 {
		return nil
	}
	dofs, signs := packDofTables(conn)
	da.allocInts("dofs", dofs)
	da.allocReals("signs", signs)

	da.GeneratePreamble(conn.MaxElemDofs())
	if _, err := da.BuildKernel(ScatterKernelSource, ScatterKernelName); err != nil {
		return err
	}
	return nil
}

// AssembleVector scatter-adds packed local contributions into vec on the
// device, one kernel launch per color batch, and copies the result back.
// vec is accumulated into, not reset; the host extension owns the
// zero-before-accumulate policy.
func (da *Assembler) AssembleVector(conn *mesh.Connectivity, packedLocal []float64,
	markers []int, colors [][]int, vec []float64) error {
	ne := conn.NumElements()
	if ne == 0 {
		return nil
	}
	if len(vec) != conn.NumDofs() {
		return fmt.Errorf("device assembly: vector has %d entries, space has %d dofs",
			len(vec), conn.NumDofs())
	}
	if len(packedLocal) != ne*conn.MaxElemDofs() {
		return fmt.Errorf("device assembly: packed local has %d entries, want %d",
			len(packedLocal), ne*conn.MaxElemDofs())
	}
	kernel, exists := da.Kernels[ScatterKernelName]
	if !exists {
		return fmt.Errorf("device assembly: connectivity not uploaded")
	}

	markers64 := make([]int64, len(markers))
	for i, m := range markers {
		markers64[i] = int64(m)
	}
	da.allocInts("markers", markers64)
	da.allocReals("local", packedLocal)
	da.allocReals("vec", vec)
	defer func() {
		da.freeMemory("markers")
		da.freeMemory("local")
		da.freeMemory("vec")
	}()

	for c, batch := range colors {
		if len(batch) == 0 {
			continue
		}
		batch64 := make([]int64, len(batch))
		for i, e := range batch {
			batch64[i] = int64(e)
		}
		batchName := fmt.Sprintf("batch%d", c)
		batchMem := da.allocInts(batchName, batch64)

		err := kernel.RunWithArgs(
			int32(len(batch)),
			batchMem,
			da.PooledMemory["dofs"],
			da.PooledMemory["signs"],
			da.PooledMemory["markers"],
			da.PooledMemory["local"],
			da.PooledMemory["vec"],
		)
		// Barrier between batches: the next color may touch dofs this
		// batch wrote.
		da.Device.Finish()
		da.freeMemory(batchName)
		if err != nil {
			return fmt.Errorf("scatter kernel failed on color %d: %w", c, err)
		}
	}

	return da.readReals("vec", vec)
}
