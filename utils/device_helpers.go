package utils

import (
	"strings"

	"github.com/notargets/gocca"
)

// DefaultBackends is the backend preference order for test devices:
// parallel modes first, Serial as the always-available fallback.
var DefaultBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateTestDevice creates a device for testing, trying each OCCA mode
// property string in order and returning the first that initializes.
// With no arguments the DefaultBackends preference is used.
func CreateTestDevice(backends ...string) *gocca.OCCADevice {
	if len(backends) == 0 {
		backends = DefaultBackends
	}
	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device
		}
	}
	panic("utils: no OCCA backend available, tried " + strings.Join(backends, ", "))
}
