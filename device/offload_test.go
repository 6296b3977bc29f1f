package device

import (
	"math"
	"testing"

	"github.com/notargets/linform/forms"
	"github.com/notargets/linform/mesh"
	"github.com/notargets/linform/utils"
)

// Full pipeline: integrator kernels host-side, scatter on the device,
// checked against the sequential reference.
func TestOffloadExtensionMatchesReference(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	space := mesh.QuadGridMesh(8, 6)
	source := &forms.SourceIntegrator{
		Coeff: func(x []float64) float64 {
			return 1.0 + 0.25*x[0] - 0.125*x[1]
		},
	}

	ref := forms.NewLinearForm(space)
	if err := ref.AddDomainIntegrator(source, nil); err != nil {
		t.Fatalf("Failed to register integrator: %v", err)
	}
	if err := ref.Assemble(); err != nil {
		t.Fatalf("Reference assembly failed: %v", err)
	}

	da := NewAssembler(device, Config{})
	defer da.Free()

	lf := forms.NewLinearForm(space)
	if err := lf.AddDomainIntegrator(source, forms.AttributeFilter{1, 2}); err != nil {
		t.Fatalf("Failed to register integrator: %v", err)
	}
	if err := lf.SetScatterOffload(da); err != nil {
		t.Fatalf("Failed to set offload backend: %v", err)
	}
	if err := lf.Assemble(); err != nil {
		t.Fatalf("Offload assembly failed: %v", err)
	}

	want, got := ref.Vector(), lf.Vector()
	for g := range want {
		if math.Abs(got[g]-want[g]) > 1e-12 {
			t.Errorf("Dof %d: offload %g, reference %g", g, got[g], want[g])
		}
	}
}
