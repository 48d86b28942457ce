package walls

import (
	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
)

// SliceCount is the fixed number of destructible segments per wall. Walls
// are sliced once at load time and never resized.
const SliceCount = 5

// Orientation names the axis a wall's slices run along, derived from its
// longer dimension.
type Orientation int

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

// Wall is one destructible obstacle split into five slices along its long
// axis. Slice health only moves through damage and repair operations so the
// vision mask always agrees with health.
type Wall struct {
	ID       string
	Bounds   geom.Rect
	Material Material

	orientation    Orientation
	sliceMaxHealth float64
	sliceHealth    [SliceCount]float64
	initialHealth  [SliceCount]float64
	visionMask     [SliceCount]bool
}

func newWall(id string, bounds geom.Rect, material Material, baseSliceHealth float64) *Wall {
	w := &Wall{
		ID:             id,
		Bounds:         bounds,
		Material:       material,
		sliceMaxHealth: baseSliceHealth * material.HealthMultiplier(),
	}
	if bounds.Height > bounds.Width {
		w.orientation = OrientationVertical
	}
	for i := range w.sliceHealth {
		w.sliceHealth[i] = w.sliceMaxHealth
		w.initialHealth[i] = w.sliceMaxHealth
		w.recomputeVision(i)
	}
	return w
}

func (w *Wall) Orientation() Orientation { return w.orientation }

// SliceMaxHealth is the full health of a single slice.
func (w *Wall) SliceMaxHealth() float64 { return w.sliceMaxHealth }

// SliceHealth returns the current health of slice i, or zero when i is out
// of range.
func (w *Wall) SliceHealth(i int) float64 {
	if i < 0 || i >= SliceCount {
		return 0
	}
	return w.sliceHealth[i]
}

// VisionOpen reports the derived vision bit for slice i.
func (w *Wall) VisionOpen(i int) bool {
	if i < 0 || i >= SliceCount {
		return false
	}
	return w.visionMask[i]
}

// PenetrationOpen reports whether rounds currently pass through slice i.
func (w *Wall) PenetrationOpen(i int) bool {
	if i < 0 || i >= SliceCount {
		return false
	}
	return AllowsPenetration(w.Material, w.sliceHealth[i], w.sliceMaxHealth)
}

// Destroyed reports whether slice i has no health left.
func (w *Wall) Destroyed(i int) bool {
	return i >= 0 && i < SliceCount && w.sliceHealth[i] <= 0
}

// SliceLength is the extent of one slice along the wall's long axis.
func (w *Wall) SliceLength() float64 {
	if w.orientation == OrientationVertical {
		return w.Bounds.Height / SliceCount
	}
	return w.Bounds.Width / SliceCount
}

// SliceRect returns the sub-rectangle covered by slice i.
func (w *Wall) SliceRect(i int) geom.Rect {
	length := w.SliceLength()
	if w.orientation == OrientationVertical {
		return geom.Rect{
			X:      w.Bounds.X,
			Y:      w.Bounds.Y + float64(i)*length,
			Width:  w.Bounds.Width,
			Height: length,
		}
	}
	return geom.Rect{
		X:      w.Bounds.X + float64(i)*length,
		Y:      w.Bounds.Y,
		Width:  length,
		Height: w.Bounds.Height,
	}
}

// SliceCenter is the midpoint of slice i, used for damage events and
// explosion distances.
func (w *Wall) SliceCenter(i int) mgl64.Vec2 {
	return w.SliceRect(i).Center()
}

// SliceIndexOf projects a point onto the wall's long axis and returns the
// slice it falls in, clamped to the valid range.
func (w *Wall) SliceIndexOf(p mgl64.Vec2) int {
	length := w.SliceLength()
	if length <= 0 {
		return 0
	}
	var offset float64
	if w.orientation == OrientationVertical {
		offset = p.Y() - w.Bounds.Y
	} else {
		offset = p.X() - w.Bounds.X
	}
	idx := int(offset / length)
	if idx < 0 {
		return 0
	}
	if idx >= SliceCount {
		return SliceCount - 1
	}
	return idx
}

func (w *Wall) recomputeVision(i int) {
	w.visionMask[i] = AllowsVision(w.Material, w.sliceHealth[i], w.sliceMaxHealth)
}
