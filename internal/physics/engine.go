package physics

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

// maxSweepSubsteps bounds the swept-collision loop for absurd velocities;
// on exhaustion the remainder of the frame's motion is dropped.
const maxSweepSubsteps = 64

// Detonation is an explosion request produced when a projectile goes off.
type Detonation struct {
	ID      string
	Kind    Kind
	OwnerID string
	Pos     mgl64.Vec2
	Radius  float64
	Damage  float64
	Curve   weapons.FalloffCurve
	At      time.Time
}

// AdvanceResult reports one tick of projectile motion.
type AdvanceResult struct {
	Moved       []*Projectile
	Detonations []Detonation
	Removed     []string
}

// Engine owns every live projectile and advances them against the wall
// store and the map boundary.
type Engine struct {
	walls  *walls.Store
	bounds geom.Rect
	tuning Tuning

	projectiles map[string]*Projectile
	order       []string
}

func NewEngine(store *walls.Store, bounds geom.Rect, tuning Tuning) *Engine {
	return &Engine{
		walls:       store,
		bounds:      bounds,
		tuning:      tuning,
		projectiles: make(map[string]*Projectile),
	}
}

// Spawn registers a new projectile.
func (e *Engine) Spawn(params SpawnParams) *Projectile {
	p := newProjectile(params)
	e.projectiles[p.ID] = p
	e.order = append(e.order, p.ID)
	return p
}

// Get looks up a live projectile.
func (e *Engine) Get(id string) (*Projectile, bool) {
	p, ok := e.projectiles[id]
	return p, ok
}

// Live returns every projectile in spawn order.
func (e *Engine) Live() []*Projectile {
	out := make([]*Projectile, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.projectiles[id])
	}
	return out
}

// Advance integrates every projectile by dt. Fuse checks run after motion
// so a round that both bounces and times out in the same tick still
// detonates exactly once.
func (e *Engine) Advance(now time.Time, dt float64) AdvanceResult {
	var result AdvanceResult

	for _, id := range e.order {
		p := e.projectiles[id]
		moved := false
		switch {
		case p.Kind.Thrown():
			moved = e.advanceThrown(p, now, dt)
		case p.Kind == KindLauncherRound:
			moved = e.advanceLauncher(p, now, dt)
		case p.Kind == KindRocket:
			moved = e.advanceRocket(p, now, dt, &result)
		}

		if !p.Exploded && p.fuseElapsed(now) {
			e.detonate(p, now, &result)
		}
		if moved && !p.Exploded {
			result.Moved = append(result.Moved, p)
		}
	}

	// Exploded rounds linger for exactly the tick that reported them.
	remaining := e.order[:0]
	for _, id := range e.order {
		if e.projectiles[id].Exploded {
			result.Removed = append(result.Removed, id)
			delete(e.projectiles, id)
			continue
		}
		remaining = append(remaining, id)
	}
	e.order = remaining

	return result
}

// advanceThrown applies exponential ground drag, freezes slow rounds in
// place, and sweeps the rest of the frame's motion.
func (e *Engine) advanceThrown(p *Projectile, now time.Time, dt float64) bool {
	if p.frozen {
		return false
	}
	p.Vel = p.Vel.Mul(math.Pow(e.tuning.Friction, dt))
	if p.Vel.Len() < e.tuning.StopSpeed {
		p.Vel = mgl64.Vec2{}
		p.frozen = true
		return false
	}
	e.sweep(p, now, dt, e.tuning.BounceDamping)
	return true
}

// advanceLauncher integrates constant downward acceleration; launcher
// rounds arc and bounce until their fuse fires.
func (e *Engine) advanceLauncher(p *Projectile, now time.Time, dt float64) bool {
	p.Vel = p.Vel.Add(mgl64.Vec2{0, p.Gravity * dt})
	e.sweep(p, now, dt, e.tuning.LauncherBounceDamping)
	return true
}

// advanceRocket steps the frame's path in fixed line segments against
// intact wall slices; the first contact, range exhaustion, or boundary
// exceed detonates the round.
func (e *Engine) advanceRocket(p *Projectile, now time.Time, dt float64, result *AdvanceResult) bool {
	displacement := p.Vel.Mul(dt)
	dist := displacement.Len()
	if dist == 0 {
		return false
	}
	steps := e.tuning.RocketSubsteps
	if steps < 1 {
		steps = 1
	}
	stepVec := displacement.Mul(1 / float64(steps))
	stepLen := dist / float64(steps)

	for i := 0; i < steps; i++ {
		p.Pos = p.Pos.Add(stepVec)
		p.Traveled += stepLen

		if !e.bounds.Contains(p.Pos) {
			e.detonate(p, now, result)
			return true
		}
		if p.Range > 0 && p.Traveled >= p.Range {
			e.detonate(p, now, result)
			return true
		}
		if e.rocketContact(p) {
			e.detonate(p, now, result)
			return true
		}
	}
	return true
}

// rocketContact tests the rocket's circle against every intact wall slice.
func (e *Engine) rocketContact(p *Projectile) bool {
	for _, w := range e.walls.Walls() {
		if !w.Bounds.Expanded(p.Radius).Contains(p.Pos) {
			continue
		}
		for slice := 0; slice < walls.SliceCount; slice++ {
			if w.Destroyed(slice) {
				continue
			}
			if w.SliceRect(slice).CircleOverlaps(p.Pos, p.Radius) {
				return true
			}
		}
	}
	return false
}

// sweep subdivides the frame's displacement into roughly radius-length
// steps and resolves the first wall or boundary contact.
func (e *Engine) sweep(p *Projectile, now time.Time, dt float64, damping float64) {
	displacement := p.Vel.Mul(dt)
	dist := displacement.Len()
	if dist == 0 {
		return
	}
	steps := int(math.Ceil(dist / math.Max(p.Radius, 1)))
	if steps < 1 {
		steps = 1
	}
	if steps > maxSweepSubsteps {
		steps = maxSweepSubsteps
	}
	stepVec := displacement.Mul(1 / float64(steps))

	for i := 0; i < steps; i++ {
		p.Pos = p.Pos.Add(stepVec)
		if e.reflectBoundary(p, damping) {
			return
		}
		if e.reflectWalls(p, now, damping) {
			return
		}
	}
}

// reflectWalls resolves the first blocking slice contact. Slices that
// currently satisfy the penetration predicate are skipped: a grenade rolls
// straight through a sufficiently ruined section of wall.
func (e *Engine) reflectWalls(p *Projectile, now time.Time, damping float64) bool {
	for _, w := range e.walls.Walls() {
		if last, ok := p.lastWallContact[w.ID]; ok && now.Sub(last) < e.tuning.ContactCooldown {
			continue
		}
		if !w.Bounds.CircleOverlaps(p.Pos, p.Radius) {
			continue
		}
		for slice := 0; slice < walls.SliceCount; slice++ {
			if w.Destroyed(slice) || w.PenetrationOpen(slice) {
				continue
			}
			rect := w.SliceRect(slice)
			if !rect.CircleOverlaps(p.Pos, p.Radius) {
				continue
			}

			contact := rect.ClosestPoint(p.Pos)
			normal := p.Pos.Sub(contact)
			if normal.Len() > 0 {
				normal = normal.Normalize()
			} else if p.Vel.Len() > 0 {
				// Dead-center edge contact: fall back to opposing the
				// velocity.
				normal = p.Vel.Normalize().Mul(-1)
			} else {
				normal = mgl64.Vec2{0, -1}
			}

			e.bounce(p, normal, contact, damping)
			p.lastWallContact[w.ID] = now
			return true
		}
	}
	return false
}

// bounce reflects velocity about the contact normal, applies bounce
// damping plus tangential wall friction, squashes micro-bounces, and pushes
// the projectile clear of the surface.
func (e *Engine) bounce(p *Projectile, normal, contact mgl64.Vec2, damping float64) {
	v := geom.Reflect(p.Vel, normal).Mul(damping)
	vn := normal.Mul(v.Dot(normal))
	vt := v.Sub(vn)
	v = vn.Add(vt.Mul(e.tuning.WallFriction))
	if v.Len() < e.tuning.MinBounceSpeed {
		v = v.Mul(e.tuning.MicroBounceDamping)
	}
	p.Vel = v
	p.Pos = contact.Add(normal.Mul(p.Radius + e.tuning.ContactEpsilon))
}

// reflectBoundary applies the identical bounce response against the four
// map edges.
func (e *Engine) reflectBoundary(p *Projectile, damping float64) bool {
	var normal mgl64.Vec2
	contact := p.Pos
	switch {
	case p.Pos.X()-p.Radius < e.bounds.X:
		normal = mgl64.Vec2{1, 0}
		contact = mgl64.Vec2{e.bounds.X, p.Pos.Y()}
	case p.Pos.X()+p.Radius > e.bounds.MaxX():
		normal = mgl64.Vec2{-1, 0}
		contact = mgl64.Vec2{e.bounds.MaxX(), p.Pos.Y()}
	case p.Pos.Y()-p.Radius < e.bounds.Y:
		normal = mgl64.Vec2{0, 1}
		contact = mgl64.Vec2{p.Pos.X(), e.bounds.Y}
	case p.Pos.Y()+p.Radius > e.bounds.MaxY():
		normal = mgl64.Vec2{0, -1}
		contact = mgl64.Vec2{p.Pos.X(), e.bounds.MaxY()}
	default:
		return false
	}
	e.bounce(p, normal, contact, damping)
	return true
}

// detonate enqueues at most one detonation per projectile.
func (e *Engine) detonate(p *Projectile, now time.Time, result *AdvanceResult) {
	if p.Exploded {
		return
	}
	p.Exploded = true
	p.Vel = mgl64.Vec2{}
	p.frozen = true
	result.Detonations = append(result.Detonations, Detonation{
		ID:      p.ID,
		Kind:    p.Kind,
		OwnerID: p.OwnerID,
		Pos:     p.Pos,
		Radius:  p.ExplosionRadius,
		Damage:  p.Damage,
		Curve:   p.Curve,
		At:      now,
	})
}
