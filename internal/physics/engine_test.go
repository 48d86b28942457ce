package physics

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

func newTestEngine() (*Engine, *walls.Store) {
	store := walls.NewStore(100)
	bounds := geom.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}
	return NewEngine(store, bounds, DefaultTuning()), store
}

func spawnGrenade(e *Engine, pos, vel mgl64.Vec2, fuse time.Duration, now time.Time) *Projectile {
	return e.Spawn(SpawnParams{
		Kind:            KindGrenade,
		OwnerID:         "p1",
		Pos:             pos,
		Vel:             vel,
		Radius:          4,
		Damage:          100,
		ExplosionRadius: 80,
		Curve:           weapons.CurveLinear,
		Fuse:            fuse,
		Now:             now,
	})
}

func TestGrenadeBouncesOffWallWithReducedSpeed(t *testing.T) {
	e, store := newTestEngine()
	store.Create(mgl64.Vec2{500, 500}, 20, 100, walls.MaterialConcrete)

	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{480, 550}, mgl64.Vec2{300, 0}, 10*time.Second, now)

	result := e.Advance(now, 0.1)

	if len(result.Detonations) != 0 {
		t.Fatalf("unexpected detonations: %v", result.Detonations)
	}
	if p.Vel.X() >= 0 {
		t.Fatalf("velocity should reverse off vertical wall, got %v", p.Vel)
	}
	if p.Vel.Len() >= 300 {
		t.Fatalf("bounce should shed speed, got %.2f", p.Vel.Len())
	}
	if p.Pos.X() > 500-p.Radius {
		t.Fatalf("projectile left inside wall at x=%.2f", p.Pos.X())
	}
}

func TestThrownRoundFreezesUnderFriction(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{500, 500}, mgl64.Vec2{20, 0}, 10*time.Second, now)

	result := e.Advance(now.Add(time.Second), 1.0)

	if !p.Frozen() {
		t.Fatal("slow grenade should freeze")
	}
	if p.Vel.Len() != 0 {
		t.Fatalf("frozen grenade should have zero velocity, got %v", p.Vel)
	}
	if len(result.Moved) != 0 {
		t.Fatalf("frozen grenade should not report movement")
	}
}

func TestFuseFiresWhileFrozen(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{500, 500}, mgl64.Vec2{20, 0}, 2*time.Second, now)

	e.Advance(now.Add(time.Second), 1.0)
	if !p.Frozen() {
		t.Fatal("grenade should be at rest before the fuse fires")
	}
	rest := p.Pos

	result := e.Advance(now.Add(2*time.Second), 1.0)
	if len(result.Detonations) != 1 {
		t.Fatalf("expected 1 detonation, got %d", len(result.Detonations))
	}
	det := result.Detonations[0]
	if det.Pos != rest {
		t.Fatalf("detonation should use resting position, got %v want %v", det.Pos, rest)
	}
	if det.Kind != KindGrenade || det.Radius != 80 || det.Damage != 100 {
		t.Fatalf("detonation payload mismatch: %+v", det)
	}
	if len(result.Removed) != 1 || result.Removed[0] != p.ID {
		t.Fatalf("exploded grenade should be removed, got %v", result.Removed)
	}
	if _, ok := e.Get(p.ID); ok {
		t.Fatal("exploded grenade still registered")
	}
}

func TestLauncherRoundArcsAndDetonatesOnFuse(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	p := e.Spawn(SpawnParams{
		Kind:            KindLauncherRound,
		OwnerID:         "p1",
		Pos:             mgl64.Vec2{500, 500},
		Vel:             mgl64.Vec2{100, -100},
		Radius:          3,
		Damage:          90,
		ExplosionRadius: 70,
		Curve:           weapons.CurveLinear,
		Gravity:         300,
		Fuse:            time.Second,
		Now:             now,
	})

	result := e.Advance(now.Add(250*time.Millisecond), 0.25)
	if len(result.Detonations) != 0 {
		t.Fatal("round detonated before its fuse")
	}
	if p.Vel.Y() <= -100 {
		t.Fatalf("gravity should pull the vertical velocity down, got %v", p.Vel)
	}
	if p.Pos.X() <= 500 || p.Pos.Y() >= 500 {
		t.Fatalf("round should have arced up and forward, got %v", p.Pos)
	}

	e.Advance(now.Add(500*time.Millisecond), 0.25)
	e.Advance(now.Add(750*time.Millisecond), 0.25)
	result = e.Advance(now.Add(time.Second), 0.25)
	if len(result.Detonations) != 1 {
		t.Fatalf("expected fuse detonation, got %d", len(result.Detonations))
	}
	if result.Detonations[0].Kind != KindLauncherRound {
		t.Fatalf("wrong detonation kind: %v", result.Detonations[0].Kind)
	}
}

func TestRocketDetonatesOnWallContact(t *testing.T) {
	e, store := newTestEngine()
	store.Create(mgl64.Vec2{500, 500}, 20, 100, walls.MaterialConcrete)

	now := time.Now()
	e.Spawn(SpawnParams{
		Kind:            KindRocket,
		OwnerID:         "p1",
		Pos:             mgl64.Vec2{400, 550},
		Vel:             mgl64.Vec2{600, 0},
		Radius:          3,
		Damage:          150,
		ExplosionRadius: 96,
		Curve:           weapons.CurvePower,
		Range:           900,
		Now:             now,
	})

	result := e.Advance(now, 0.5)
	if len(result.Detonations) != 1 {
		t.Fatalf("expected wall detonation, got %d", len(result.Detonations))
	}
	det := result.Detonations[0]
	if math.Abs(det.Pos.X()-500) > 30 {
		t.Fatalf("detonation should land at the wall face, got x=%.2f", det.Pos.X())
	}
	if det.Curve != weapons.CurvePower {
		t.Fatalf("rocket should carry its falloff curve, got %v", det.Curve)
	}
	if len(result.Removed) != 1 {
		t.Fatalf("rocket should be removed after detonating")
	}
}

func TestRocketDetonatesAtRangeEnd(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	e.Spawn(SpawnParams{
		Kind:            KindRocket,
		OwnerID:         "p1",
		Pos:             mgl64.Vec2{100, 500},
		Vel:             mgl64.Vec2{400, 0},
		Radius:          3,
		Damage:          150,
		ExplosionRadius: 96,
		Curve:           weapons.CurvePower,
		Range:           200,
		Now:             now,
	})

	result := e.Advance(now, 1.0)
	if len(result.Detonations) != 1 {
		t.Fatalf("expected range detonation, got %d", len(result.Detonations))
	}
	// Substep accumulation can land a hair under the exact range mark.
	got := result.Detonations[0].Pos.X()
	if got < 299.9 || got > 340 {
		t.Fatalf("range detonation should land near x=300, got %.2f", got)
	}
}

func TestDetonationReportedExactlyOnce(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{500, 500}, mgl64.Vec2{}, time.Second, now)

	first := e.Advance(now.Add(2*time.Second), 1.0)
	if len(first.Detonations) != 1 {
		t.Fatalf("expected 1 detonation, got %d", len(first.Detonations))
	}
	second := e.Advance(now.Add(3*time.Second), 1.0)
	if len(second.Detonations) != 0 || len(second.Removed) != 0 {
		t.Fatalf("second tick should be empty, got %+v", second)
	}
	if !p.Exploded {
		t.Fatal("projectile should stay marked as exploded")
	}
}

func TestBoundaryReflectsLikeAWall(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{10, 500}, mgl64.Vec2{-200, 0}, 10*time.Second, now)

	e.Advance(now, 0.1)

	if p.Vel.X() <= 0 {
		t.Fatalf("grenade should bounce off the map edge, got %v", p.Vel)
	}
	if p.Pos.X() < p.Radius {
		t.Fatalf("grenade left outside the map at x=%.2f", p.Pos.X())
	}
}

func TestGrenadeRollsThroughRuinedSlice(t *testing.T) {
	e, store := newTestEngine()
	w := store.Create(mgl64.Vec2{500, 500}, 20, 100, walls.MaterialGlass)

	// Slice 2 spans y 540..560; drop it below the glass penetration
	// threshold without destroying it.
	if err := store.Predamage(w.ID, 2, 24); err != nil {
		t.Fatalf("predamage: %v", err)
	}
	if w.Destroyed(2) {
		t.Fatal("slice should survive predamage")
	}
	if !w.PenetrationOpen(2) {
		t.Fatal("slice should be penetrable after predamage")
	}

	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{470, 550}, mgl64.Vec2{400, 0}, 10*time.Second, now)

	e.Advance(now, 0.2)

	if p.Pos.X() <= 520 {
		t.Fatalf("grenade should roll through the ruined slice, stopped at x=%.2f", p.Pos.X())
	}
	if p.Vel.X() <= 0 {
		t.Fatalf("grenade should keep its heading, got %v", p.Vel)
	}
}

func TestContactCooldownSkipsRepeatHits(t *testing.T) {
	e, store := newTestEngine()
	wall := store.Create(mgl64.Vec2{500, 500}, 20, 100, walls.MaterialConcrete)

	now := time.Now()
	p := spawnGrenade(e, mgl64.Vec2{480, 550}, mgl64.Vec2{300, 0}, 10*time.Second, now)

	e.Advance(now, 0.1)
	if p.Vel.X() >= 0 {
		t.Fatal("expected initial bounce")
	}
	stamp, ok := p.lastWallContact[wall.ID]
	if !ok {
		t.Fatal("contact timestamp missing")
	}

	// Within the cooldown window the same wall is ignored even if the
	// projectile still overlaps it.
	p.Pos = mgl64.Vec2{497, 550}
	p.Vel = mgl64.Vec2{50, 0}
	e.Advance(now.Add(50*time.Millisecond), 0.01)
	if p.lastWallContact[wall.ID] != stamp {
		t.Fatal("contact reprocessed inside the cooldown window")
	}
}
