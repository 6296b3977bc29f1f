package lanes

import (
	"fmt"
)

// Strategy defines how elements are distributed across lanes
type Strategy int

const (
	// Block assigns consecutive element ranges to lanes
	Block Strategy = iota

	// RoundRobin distributes elements cyclically
	RoundRobin
)

// Config holds configuration for building a lane layout
type Config struct {
	NumLanes int
	Strategy Strategy
}

// Lane is one concurrent execution unit's share of the element range
type Lane struct {
	ID int

	Elements    []int // Global element indices assigned to this lane
	NumElements int   // Actual number of active elements
	MaxElements int   // Padded size for uniform-width execution
}

// Layout is a complete decomposition of the element range into lanes
type Layout struct {
	Lanes []Lane

	KlaneMax      int // max(NumElements) across all lanes
	TotalElements int
	NumLanes      int

	// EToL maps element k to the lane that processes it
	EToL []int
}

// Build decomposes numElements elements into lanes per cfg. Lane counts
// larger than the element range collapse to one lane per element. A zero
// element range yields a valid empty layout with one idle lane.
func Build(numElements int, cfg Config) (*Layout, error) {
	if numElements < 0 {
		return nil, fmt.Errorf("lanes: negative element count %d", numElements)
	}
	numLanes := cfg.NumLanes
	if numLanes > numElements {
		numLanes = numElements
	}
	if numLanes < 1 {
		numLanes = 1
	}

	eToL := make([]int, numElements)
	switch cfg.Strategy {
	case Block:
		perLane := (numElements + numLanes - 1) / numLanes
		for e := 0; e < numElements; e++ {
			l := e / perLane
			if l >= numLanes {
				l = numLanes - 1
			}
			eToL[e] = l
		}
	case RoundRobin:
		for e := 0; e < numElements; e++ {
			eToL[e] = e % numLanes
		}
	default:
		return nil, fmt.Errorf("lanes: unknown strategy %d", cfg.Strategy)
	}

	laneList := make([]Lane, numLanes)
	for l := range laneList {
		laneList[l].ID = l
	}
	for e, l := range eToL {
		laneList[l].Elements = append(laneList[l].Elements, e)
	}

	klaneMax := 0
	for l := range laneList {
		laneList[l].NumElements = len(laneList[l].Elements)
		if laneList[l].NumElements > klaneMax {
			klaneMax = laneList[l].NumElements
		}
	}
	for l := range laneList {
		laneList[l].MaxElements = klaneMax
	}

	layout := &Layout{
		Lanes:         laneList,
		KlaneMax:      klaneMax,
		TotalElements: numElements,
		NumLanes:      numLanes,
		EToL:          eToL,
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lane layout: %w", err)
	}
	return layout, nil
}

// GetLane returns the lane processing element k, or -1 if out of range
func (lo *Layout) GetLane(elementID int) int {
	if elementID < 0 || elementID >= len(lo.EToL) {
		return -1
	}
	return lo.EToL[elementID]
}

// Validate checks lane layout consistency
func (lo *Layout) Validate() error {
	actualMax := 0
	total := 0
	for _, l := range lo.Lanes {
		if l.NumElements != len(l.Elements) {
			return fmt.Errorf("lane %d: NumElements %d != %d listed elements",
				l.ID, l.NumElements, len(l.Elements))
		}
		if l.MaxElements != lo.KlaneMax {
			return fmt.Errorf("lane %d: MaxElements %d != KlaneMax %d",
				l.ID, l.MaxElements, lo.KlaneMax)
		}
		if l.NumElements > actualMax {
			actualMax = l.NumElements
		}
		total += l.NumElements
	}
	if actualMax != lo.KlaneMax {
		return fmt.Errorf("computed KlaneMax %d != stored KlaneMax %d",
			actualMax, lo.KlaneMax)
	}
	if total != lo.TotalElements {
		return fmt.Errorf("lanes hold %d elements, layout claims %d",
			total, lo.TotalElements)
	}
	return nil
}
