package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRayRectHitsFrontFace(t *testing.T) {
	rect := Rect{X: 10, Y: -5, Width: 4, Height: 10}
	enter, exit, ok := RayRect(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, rect)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(enter-10) > 1e-9 {
		t.Fatalf("expected entry at 10, got %.4f", enter)
	}
	if math.Abs(exit-14) > 1e-9 {
		t.Fatalf("expected exit at 14, got %.4f", exit)
	}
}

func TestRayRectMissesParallelRay(t *testing.T) {
	rect := Rect{X: 10, Y: 5, Width: 4, Height: 10}
	if _, _, ok := RayRect(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, rect); ok {
		t.Fatalf("ray running under the rect should miss")
	}
}

func TestRayRectStartsInside(t *testing.T) {
	rect := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	enter, exit, ok := RayRect(mgl64.Vec2{5, 5}, mgl64.Vec2{1, 0}, rect)
	if !ok {
		t.Fatalf("expected hit from inside")
	}
	if enter >= 0 {
		t.Fatalf("entry from inside should be negative, got %.4f", enter)
	}
	if math.Abs(exit-5) > 1e-9 {
		t.Fatalf("expected exit at 5, got %.4f", exit)
	}
}

func TestRayRectBehindOrigin(t *testing.T) {
	rect := Rect{X: -20, Y: -5, Width: 4, Height: 10}
	if _, _, ok := RayRect(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, rect); ok {
		t.Fatalf("rect behind the origin should miss")
	}
}

func TestRayCircle(t *testing.T) {
	dist, ok := RayCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{10, 0}, 2)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(dist-8) > 1e-9 {
		t.Fatalf("expected contact at 8, got %.4f", dist)
	}

	if _, ok := RayCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{10, 5}, 2); ok {
		t.Fatalf("offset circle should miss")
	}

	if _, ok := RayCircle(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{-10, 0}, 2); ok {
		t.Fatalf("circle behind the origin should miss")
	}
}

func TestReflect(t *testing.T) {
	v := Reflect(mgl64.Vec2{1, -1}, mgl64.Vec2{0, 1})
	if math.Abs(v.X()-1) > 1e-9 || math.Abs(v.Y()-1) > 1e-9 {
		t.Fatalf("expected (1,1), got %v", v)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	v := Rotate(mgl64.Vec2{1, 0}, math.Pi/2)
	if math.Abs(v.X()) > 1e-9 || math.Abs(v.Y()-1) > 1e-9 {
		t.Fatalf("expected (0,1), got %v", v)
	}
}

func TestCircleOverlapsUsesClosestPoint(t *testing.T) {
	rect := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !rect.CircleOverlaps(mgl64.Vec2{12, 5}, 3) {
		t.Fatalf("circle touching the right edge should overlap")
	}
	if rect.CircleOverlaps(mgl64.Vec2{14, 5}, 3) {
		t.Fatalf("circle clear of the rect should not overlap")
	}
}
