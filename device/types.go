package device

// DataType represents the precision of numerical data on the device
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
	INT32
	INT64
)

// SizeOfType returns the size in bytes of a data type
func SizeOfType(dt DataType) int64 {
	switch dt {
	case Float32, INT32:
		return 4
	case Float64, INT64:
		return 8
	default:
		return 8
	}
}

// RealTypeName returns the C type name used for real_t
func RealTypeName(dt DataType) string {
	if dt == Float32 {
		return "float"
	}
	return "double"
}

// IntTypeName returns the C type name used for int_t
func IntTypeName(dt DataType) string {
	if dt == INT32 {
		return "int"
	}
	return "long"
}
