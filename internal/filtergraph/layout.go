// Package filtergraph compiles a declarative layout plus ordered stream
// inputs and per-slot audio volumes into the complete argument vector for
// the media-processing subprocess (ffmpeg). Compilation is pure and
// deterministic: the same inputs always produce the same argument vector.
package filtergraph

import "sort"

// Kind is a layout kind. The set is closed.
type Kind string

const (
	KindPiP       Kind = "pip"
	KindSplitH    Kind = "split_h"
	KindSplitV    Kind = "split_v"
	KindGrid2x2   Kind = "grid_2x2"
	KindMultiPiP2 Kind = "multi_pip_2"
	KindMultiPiP3 Kind = "multi_pip_3"
	KindMultiPiP4 Kind = "multi_pip_4"
	KindDVDPiP    Kind = "dvd_pip"
	KindCustom    Kind = "custom"
)

// CanvasWidth and CanvasHeight are the fixed output frame dimensions.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// SlotOrder returns the canonical, fixed ordered list of slot names for a
// non-custom layout kind. Input URLs in a compiled command appear in this
// order (invariant 2 in the testable properties).
func SlotOrder(kind Kind) ([]string, bool) {
	switch kind {
	case KindPiP:
		return []string{"main", "inset"}, true
	case KindSplitH:
		return []string{"left", "right"}, true
	case KindSplitV:
		return []string{"top", "bottom"}, true
	case KindGrid2x2:
		return []string{"slot1", "slot2", "slot3", "slot4"}, true
	case KindMultiPiP2:
		return []string{"main", "inset1", "inset2"}, true
	case KindMultiPiP3:
		return []string{"main", "inset1", "inset2", "inset3"}, true
	case KindMultiPiP4:
		return []string{"main", "inset1", "inset2", "inset3", "inset4"}, true
	case KindDVDPiP:
		return []string{"main", "inset"}, true
	default:
		return nil, false
	}
}

// CustomSlot is one slot of a custom layout.
type CustomSlot struct {
	ID      string
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Border  bool
}

// Config is a fully-resolved layout configuration ready for compilation.
type Config struct {
	Kind           Kind
	SlotToChannel  map[string]string // slot name -> channel id
	AudioSlot      string
	PerSlotVolume  map[string]float64 // clamped to [0,1] on ingest
	CustomSlots    []CustomSlot       // only for KindCustom
}

// ClampVolume clamps v to [0, 1] (invariant 3).
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// orderedCustomSlots returns cfg.CustomSlots sorted descending by area
// (invariant 2 for custom layouts; §3's rendering-order rule: largest
// first, so smaller slots paint last and sit on top of the z-stack).
func orderedCustomSlots(slots []CustomSlot) []CustomSlot {
	out := make([]CustomSlot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Width*out[i].Height > out[j].Width*out[j].Height
	})
	return out
}
