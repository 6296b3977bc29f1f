package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// Config holds configuration for creating an Assembler
type Config struct {
	FloatType DataType
	IntType   DataType
}

// Assembler executes the full-assembly scatter on an OCCA device. Local
// element contributions are computed host-side by the integrator kernels;
// the device performs the marker-masked, color-batched scatter-add into
// the global vector, which is the bandwidth-bound part of the pass.
type Assembler struct {
	Device    *gocca.OCCADevice
	FloatType DataType
	IntType   DataType

	Kernels        map[string]*gocca.OCCAKernel
	PooledMemory   map[string]*gocca.OCCAMemory
	KernelPreamble string
}

// NewAssembler creates an Assembler on the given device
func NewAssembler(device *gocca.OCCADevice, cfg Config) *Assembler {
	if device == nil {
		panic("device assembler: nil device")
	}
	floatType := cfg.FloatType
	if floatType == 0 {
		floatType = Float64
	}
	intType := cfg.IntType
	if intType == 0 {
		intType = INT64
	}
	return &Assembler{
		Device:       device,
		FloatType:    floatType,
		IntType:      intType,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
	}
}

// GeneratePreamble emits the typedef and sizing macros shared by all
// generated kernels. NDOF_MAX fixes the @inner loop width.
func (da *Assembler) GeneratePreamble(maxElemDofs int) string {
	preamble := fmt.Sprintf(`// Generated by linform device assembler
typedef %s real_t;
typedef %s int_t;
#define NDOF_MAX %d
`, RealTypeName(da.FloatType), IntTypeName(da.IntType), maxElemDofs)
	da.KernelPreamble = preamble
	return preamble
}

// BuildKernel compiles kernelSource (appended to the current preamble)
// and registers it under kernelName.
func (da *Assembler) BuildKernel(kernelSource, kernelName string) (*gocca.OCCAKernel, error) {
	fullSource := da.KernelPreamble + "\n" + kernelSource

	var kernel *gocca.OCCAKernel
	var err error
	if da.Device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = da.Device.BuildKernelFromString(fullSource, kernelName, props)
	} else {
		kernel, err = da.Device.BuildKernelFromString(fullSource, kernelName, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", kernelName, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", kernelName)
	}
	da.Kernels[kernelName] = kernel
	return kernel, nil
}

// allocReals uploads a float64 slice as real_t device memory, converting
// when the device runs Float32
func (da *Assembler) allocReals(name string, data []float64) *gocca.OCCAMemory {
	da.freeMemory(name)
	var mem *gocca.OCCAMemory
	if da.FloatType == Float32 {
		converted := make([]float32, len(data))
		for i, v := range data {
			converted[i] = float32(v)
		}
		mem = da.Device.Malloc(int64(len(converted)*4), unsafe.Pointer(&converted[0]), nil)
	} else {
		mem = da.Device.Malloc(int64(len(data)*8), unsafe.Pointer(&data[0]), nil)
	}
	da.PooledMemory[name] = mem
	return mem
}

// allocInts uploads an int64 slice as int_t device memory, converting when
// the device runs INT32
func (da *Assembler) allocInts(name string, data []int64) *gocca.OCCAMemory {
	da.freeMemory(name)
	var mem *gocca.OCCAMemory
	if da.IntType == INT32 {
		converted := make([]int32, len(data))
		for i, v := range data {
			converted[i] = int32(v)
		}
		mem = da.Device.Malloc(int64(len(converted)*4), unsafe.Pointer(&converted[0]), nil)
	} else {
		mem = da.Device.Malloc(int64(len(data)*8), unsafe.Pointer(&data[0]), nil)
	}
	da.PooledMemory[name] = mem
	return mem
}

// readReals copies real_t device memory back into a float64 slice
func (da *Assembler) readReals(name string, out []float64) error {
	mem, exists := da.PooledMemory[name]
	if !exists {
		return fmt.Errorf("device memory %s not found", name)
	}
	if da.FloatType == Float32 {
		converted := make([]float32, len(out))
		mem.CopyTo(unsafe.Pointer(&converted[0]), int64(len(converted)*4))
		for i, v := range converted {
			out[i] = float64(v)
		}
		return nil
	}
	mem.CopyTo(unsafe.Pointer(&out[0]), int64(len(out)*8))
	return nil
}

// freeMemory releases one named allocation, if present
func (da *Assembler) freeMemory(name string) {
	if mem, exists := da.PooledMemory[name]; exists {
		mem.Free()
		delete(da.PooledMemory, name)
	}
}

// Free releases all kernels and device memory. The device itself is
// borrowed and stays alive.
func (da *Assembler) Free() {
	for _, kernel := range da.Kernels {
		kernel.Free()
	}
	for _, mem := range da.PooledMemory {
		mem.Free()
	}
	da.Kernels = make(map[string]*gocca.OCCAKernel)
	da.PooledMemory = make(map[string]*gocca.OCCAMemory)
}
