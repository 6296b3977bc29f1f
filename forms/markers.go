package forms

// AttributeFilter selects elements by attribute value. A nil filter
// matches every element; an empty non-nil filter matches none.
type AttributeFilter []int

// MatchAll reports whether the filter selects every element
func (f AttributeFilter) MatchAll() bool { return f == nil }

// Contains reports whether attr is in the filter
func (f AttributeFilter) Contains(attr int) bool {
	for _, a := range f {
		if a == attr {
			return true
		}
	}
	return false
}

// ResolveMarkers produces the per-element inclusion mask for one
// integrator: marker[e] == 1 iff attrs[e] is selected by filter. A zero
// element mesh yields an empty marker array. Markers are a pure function
// of (attrs, filter); callers may cache and reuse the result for as long
// as both inputs are unchanged.
func ResolveMarkers(attrs []int, filter AttributeFilter) []int {
	markers := make([]int, len(attrs))
	if filter.MatchAll() {
		for e := range markers {
			markers[e] = 1
		}
		return markers
	}
	for e, attr := range attrs {
		if filter.Contains(attr) {
			markers[e] = 1
		}
	}
	return markers
}
