package forms

import (
	"testing"
)

func TestResolveMarkers(t *testing.T) {
	attrs := []int{1, 2, 3, 2, 1}

	t.Run("MatchAll", func(t *testing.T) {
		markers := ResolveMarkers(attrs, nil)
		for e, m := range markers {
			if m != 1 {
				t.Errorf("Element %d: marker %d, want 1", e, m)
			}
		}
	})

	t.Run("Subset", func(t *testing.T) {
		markers := ResolveMarkers(attrs, AttributeFilter{2})
		want := []int{0, 1, 0, 1, 0}
		for e := range want {
			if markers[e] != want[e] {
				t.Errorf("Element %d: marker %d, want %d", e, markers[e], want[e])
			}
		}
	})

	t.Run("EmptyFilterMatchesNone", func(t *testing.T) {
		markers := ResolveMarkers(attrs, AttributeFilter{})
		for e, m := range markers {
			if m != 0 {
				t.Errorf("Element %d: marker %d, want 0 for empty filter", e, m)
			}
		}
	})

	t.Run("UnmatchedAttribute", func(t *testing.T) {
		markers := ResolveMarkers(attrs, AttributeFilter{99})
		for e, m := range markers {
			if m != 0 {
				t.Errorf("Element %d: marker %d, want 0", e, m)
			}
		}
	})

	t.Run("EmptyMesh", func(t *testing.T) {
		markers := ResolveMarkers(nil, AttributeFilter{1})
		if len(markers) != 0 {
			t.Errorf("Expected empty marker array for empty mesh, got %d entries",
				len(markers))
		}
	})
}

func TestAttributeFilter(t *testing.T) {
	if !AttributeFilter(nil).MatchAll() {
		t.Error("nil filter should match all")
	}
	if (AttributeFilter{}).MatchAll() {
		t.Error("empty non-nil filter should not match all")
	}
	f := AttributeFilter{1, 3}
	if !f.Contains(3) || f.Contains(2) {
		t.Error("Contains misreports membership")
	}
}
