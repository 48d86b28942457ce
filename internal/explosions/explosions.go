// Package explosions resolves queued detonations against players and
// destructible walls. Events accumulate during a tick and drain exactly
// once when the world steps.
package explosions

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

// powerExponent steepens rocket falloff relative to the linear grenades.
const powerExponent = 1.5

// Event is one pending detonation.
type Event struct {
	ID       string
	SourceID string
	Pos      mgl64.Vec2
	Radius   float64
	Damage   float64
	Curve    weapons.FalloffCurve
	At       time.Time
}

// Target is a damageable actor inside the world.
type Target struct {
	ID     string
	Pos    mgl64.Vec2
	Radius float64
	Alive  bool
}

// PlayerHit records falloff-scaled damage dealt to one target.
type PlayerHit struct {
	TargetID string
	Damage   float64
	Distance float64
}

// Result pairs a resolved event with everything it damaged.
type Result struct {
	Event      Event
	PlayerHits []PlayerHit
	WallDamage []walls.SliceDamage
}

// Resolver owns the detonation queue.
type Resolver struct {
	walls *walls.Store
	queue []Event
}

func NewResolver(store *walls.Store) *Resolver {
	return &Resolver{walls: store}
}

// Enqueue adds a detonation for the next Resolve call.
func (r *Resolver) Enqueue(ev Event) {
	r.queue = append(r.queue, ev)
}

// Pending reports the queued event count.
func (r *Resolver) Pending() int {
	return len(r.queue)
}

// Resolve drains the queue in arrival order, applying falloff damage to
// every live target in radius and distributing wall damage through the
// store. Zero-damage events (smoke, flash) still resolve so their effects
// get reported, they just damage nothing.
func (r *Resolver) Resolve(targets []Target) []Result {
	if len(r.queue) == 0 {
		return nil
	}
	pending := r.queue
	r.queue = nil

	results := make([]Result, 0, len(pending))
	for _, ev := range pending {
		res := Result{Event: ev}
		if ev.Damage > 0 && ev.Radius > 0 {
			res.PlayerHits = r.playerHits(ev, targets)
			res.WallDamage = r.walls.ExplosionDamage(ev.Pos, ev.Radius, ev.Damage)
		}
		results = append(results, res)
	}
	return results
}

func (r *Resolver) playerHits(ev Event, targets []Target) []PlayerHit {
	var hits []PlayerHit
	for _, target := range targets {
		if !target.Alive {
			continue
		}
		dist := target.Pos.Sub(ev.Pos).Len()
		if dist > ev.Radius {
			continue
		}
		damage := ev.Damage * Falloff(ev.Curve, dist, ev.Radius)
		if damage <= 0 {
			continue
		}
		hits = append(hits, PlayerHit{
			TargetID: target.ID,
			Damage:   damage,
			Distance: dist,
		})
	}
	return hits
}

// Falloff maps a distance from the blast center to a damage fraction.
// Linear decays evenly to zero at the radius edge; power drops faster the
// further out the target stands.
func Falloff(curve weapons.FalloffCurve, distance, radius float64) float64 {
	if radius <= 0 || distance >= radius {
		return 0
	}
	if distance < 0 {
		distance = 0
	}
	frac := 1 - distance/radius
	if curve == weapons.CurvePower {
		return math.Pow(frac, powerExponent)
	}
	return frac
}
