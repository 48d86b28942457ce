package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the rectangle's midpoint.
func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Expanded grows the rectangle outward by pad on every side.
func (r Rect) Expanded(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// Contains reports whether p lies inside the rectangle, edges inclusive.
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p.X() >= r.X && p.X() <= r.MaxX() && p.Y() >= r.Y && p.Y() <= r.MaxY()
}

// ClosestPoint clamps p into the rectangle.
func (r Rect) ClosestPoint(p mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{Clamp(p.X(), r.X, r.MaxX()), Clamp(p.Y(), r.Y, r.MaxY())}
}

// CircleOverlaps reports whether a circle intersects the rectangle.
func (r Rect) CircleOverlaps(center mgl64.Vec2, radius float64) bool {
	closest := r.ClosestPoint(center)
	dx := center.X() - closest.X()
	dy := center.Y() - closest.Y()
	return dx*dx+dy*dy < radius*radius
}

// RayRect runs the slab test between a ray and a rectangle. dir must be a
// unit vector. On a hit it returns the entry and exit distances along the
// ray; a ray starting inside reports a negative entry distance.
func RayRect(origin, dir mgl64.Vec2, r Rect) (enter, exit float64, ok bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	mins := [2]float64{r.X, r.Y}
	maxs := [2]float64{r.MaxX(), r.MaxY()}
	for axis := 0; axis < 2; axis++ {
		o := origin[axis]
		d := dir[axis]
		if math.Abs(d) < 1e-12 {
			if o < mins[axis] || o > maxs[axis] {
				return 0, 0, false
			}
			continue
		}
		t1 := (mins[axis] - o) / d
		t2 := (maxs[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
	}

	if tMin > tMax || tMax < 0 {
		return 0, 0, false
	}
	return tMin, tMax, true
}

// RayCircle intersects a ray with a circle. dir must be a unit vector. It
// returns the nearest non-negative distance along the ray.
func RayCircle(origin, dir, center mgl64.Vec2, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t := -b - sqrtDisc
	if t < 0 {
		t = -b + sqrtDisc
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// ClosestPointOnSegment projects p onto the segment ab.
func ClosestPointOnSegment(a, b, p mgl64.Vec2) mgl64.Vec2 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return a
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Mul(t))
}

// Reflect mirrors v about the unit normal n.
func Reflect(v, n mgl64.Vec2) mgl64.Vec2 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Rotate turns v by angle radians.
func Rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	sin, cos := math.Sincos(angle)
	return mgl64.Vec2{v.X()*cos - v.Y()*sin, v.X()*sin + v.Y()*cos}
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
