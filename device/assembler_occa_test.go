package device

import (
	"math"
	"testing"

	"github.com/notargets/linform/lanes"
	"github.com/notargets/linform/mesh"
	"github.com/notargets/linform/utils"
)

func TestAssembler_Creation(t *testing.T) {
	t.Run("NilDevice", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for nil device")
			}
		}()
		NewAssembler(nil, Config{})
	})

	t.Run("Defaults", func(t *testing.T) {
		device := utils.CreateTestDevice()
		defer device.Free()

		da := NewAssembler(device, Config{})
		defer da.Free()

		if da.FloatType != Float64 {
			t.Errorf("Expected Float64 default, got %v", da.FloatType)
		}
		if da.IntType != INT64 {
			t.Errorf("Expected INT64 default, got %v", da.IntType)
		}
	})
}

func TestDeviceScatterMatchesHost(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	space := mesh.QuadGridMesh(6, 5)
	conn := space.Conn()

	// Unit local contributions: every dof receives its element share count
	locals := make([][]float64, conn.NumElements())
	for e := range locals {
		locals[e] = []float64{1, 1, 1, 1}
	}
	markers := make([]int, conn.NumElements())
	for e := range markers {
		markers[e] = 1
	}

	// Host reference
	want := make([]float64, conn.NumDofs())
	for e := 0; e < conn.NumElements(); e++ {
		for i, g := range conn.Dofs(e) {
			want[g] += locals[e][i]
		}
	}

	da := NewAssembler(device, Config{})
	defer da.Free()

	if err := da.UploadConnectivity(conn); err != nil {
		t.Fatalf("UploadConnectivity failed: %v", err)
	}
	colors := lanes.ColorElements(conn)
	got := make([]float64, conn.NumDofs())
	if err := da.AssembleVector(conn, PackLocal(conn, locals), markers, colors, got); err != nil {
		t.Fatalf("AssembleVector failed: %v", err)
	}

	for g := range want {
		if math.Abs(got[g]-want[g]) > 1e-12 {
			t.Errorf("Dof %d: device %g, host %g", g, got[g], want[g])
		}
	}
}

func TestDeviceScatterHonorsMarkers(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	conn := mesh.TwoTriangleMesh().Conn()
	locals := [][]float64{{1, 1, 1}, {1, 1, 1}}
	markers := []int{1, 0} // second triangle masked off

	da := NewAssembler(device, Config{})
	defer da.Free()

	if err := da.UploadConnectivity(conn); err != nil {
		t.Fatalf("UploadConnectivity failed: %v", err)
	}
	got := make([]float64, conn.NumDofs())
	err := da.AssembleVector(conn, PackLocal(conn, locals), markers,
		lanes.ColorElements(conn), got)
	if err != nil {
		t.Fatalf("AssembleVector failed: %v", err)
	}

	want := []float64{1, 1, 1, 0}
	for g := range want {
		if math.Abs(got[g]-want[g]) > 1e-14 {
			t.Errorf("Dof %d: %g, want %g", g, got[g], want[g])
		}
	}
}

func TestAssembleVectorPreconditions(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	conn := mesh.TwoTriangleMesh().Conn()
	da := NewAssembler(device, Config{})
	defer da.Free()

	t.Run("ConnectivityNotUploaded", func(t *testing.T) {
		vec := make([]float64, conn.NumDofs())
		err := da.AssembleVector(conn, make([]float64, 6), []int{1, 1}, nil, vec)
		if err == nil {
			t.Error("Expected error before UploadConnectivity")
		}
	})

	if err := da.UploadConnectivity(conn); err != nil {
		t.Fatalf("UploadConnectivity failed: %v", err)
	}

	t.Run("VectorSizeMismatch", func(t *testing.T) {
		err := da.AssembleVector(conn, make([]float64, 6), []int{1, 1}, nil,
			make([]float64, 2))
		if err == nil {
			t.Error("Expected error for undersized vector")
		}
	})

	t.Run("PackedLocalSizeMismatch", func(t *testing.T) {
		err := da.AssembleVector(conn, make([]float64, 4), []int{1, 1}, nil,
			make([]float64, conn.NumDofs()))
		if err == nil {
			t.Error("Expected error for mispacked local array")
		}
	})
}
