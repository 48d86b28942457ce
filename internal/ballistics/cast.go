package ballistics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

// obstacle is one candidate intersection along the current ray segment.
// distance and exit are measured from the segment's cursor.
type obstacle struct {
	kind     TargetKind
	wall     *walls.Wall
	slice    int
	target   *Target
	distance float64
	exit     float64
}

// cast walks a single ray through walls and players, spending the damage
// budget. The loop is capped; on exhaustion the ray simply stops.
func (r *Resolver) cast(origin, dir mgl64.Vec2, def *weapons.Definition, spec *weapons.HitscanSpec, shooter Shooter, targets []Target, damage float64) Chain {
	var hits Chain
	budget := damage
	cursor := origin
	traveled := 0.0
	wallPens := 0
	playerPens := 0
	penetrations := 0
	hitPlayers := make(map[string]bool)
	antiMateriel := spec.AntiMateriel()

	for step := 0; step < maxPenetrationSteps; step++ {
		if budget < minBudget {
			break
		}
		remainingRange := def.Range - traveled
		if remainingRange <= 0 {
			break
		}

		obs, ok := r.nearest(cursor, dir, remainingRange, shooter, targets, hitPlayers)
		if !ok {
			break
		}

		distance := traveled + math.Max(obs.distance, 0)
		multiplier := r.rangeMultiplier(spec, def, distance)
		if multiplier <= 0 {
			break
		}
		contact := cursor.Add(dir.Mul(math.Max(obs.distance, 0)))

		if obs.kind == TargetPlayer {
			dealt := budget * multiplier
			if !antiMateriel {
				// Standard rounds dump the whole budget into the first body.
				hits = append(hits, Hit{
					Kind:     TargetPlayer,
					TargetID: obs.target.ID,
					Point:    contact,
					Distance: distance,
					Damage:   dealt,
				})
				return hits
			}

			playerPens++
			if playerPens > spec.MaxPlayerPenetrations {
				hits = append(hits, Hit{
					Kind:     TargetPlayer,
					TargetID: obs.target.ID,
					Point:    contact,
					Distance: distance,
					Damage:   dealt,
				})
				return hits
			}

			hitPlayers[obs.target.ID] = true
			penetrations++
			budget *= spec.RetentionAt(penetrations)
			hits = append(hits, Hit{
				Kind:      TargetPlayer,
				TargetID:  obs.target.ID,
				Point:     contact,
				Distance:  distance,
				Damage:    dealt,
				Remaining: budget,
			})
			advance := obs.exit + contactEpsilon
			cursor = cursor.Add(dir.Mul(advance))
			traveled += advance
			continue
		}

		w := obs.wall
		health := w.SliceHealth(obs.slice)

		if antiMateriel {
			wallPens++
			dealt := budget * multiplier
			if wallPens > spec.MaxWallPenetrations {
				hits = append(hits, r.wallHit(w, obs.slice, contact, distance, dealt, 0))
				return hits
			}
			penetrations++
			budget *= spec.RetentionAt(penetrations)
			hits = append(hits, r.wallHit(w, obs.slice, contact, distance, dealt, budget))
			advance := obs.exit + contactEpsilon
			cursor = cursor.Add(dir.Mul(advance))
			traveled += advance
			continue
		}

		// Both predicates matter here: a slice can be vision-open yet still
		// refuse penetration at its current health.
		if !walls.AllowsPenetration(w.Material, health, w.SliceMaxHealth()) {
			dealt := budget * multiplier
			hits = append(hits, r.wallHit(w, obs.slice, contact, distance, dealt, 0))
			return hits
		}

		cost := math.Min(w.Material.PenetrationCost(), health)
		budget -= cost
		if budget < minBudget {
			hits = append(hits, r.wallHit(w, obs.slice, contact, distance, cost, 0))
			return hits
		}
		hits = append(hits, r.wallHit(w, obs.slice, contact, distance, cost, budget))
		advance := obs.exit + contactEpsilon
		cursor = cursor.Add(dir.Mul(advance))
		traveled += advance
	}

	return hits
}

// wallHit applies slice damage through the store and packages the hit.
func (r *Resolver) wallHit(w *walls.Wall, slice int, contact mgl64.Vec2, distance, dealt, remaining float64) Hit {
	hit := Hit{
		Kind:      TargetWall,
		TargetID:  w.ID,
		Slice:     slice,
		Point:     contact,
		Distance:  distance,
		Damage:    dealt,
		Remaining: remaining,
	}
	if result, err := r.walls.ApplyDamage(w.ID, slice, dealt); err == nil {
		hit.WallDamage = &result
	}
	return hit
}

// nearest scans destroyed-slice-free wall geometry and live players for the
// closest intersection within maxDist of the cursor.
func (r *Resolver) nearest(cursor, dir mgl64.Vec2, maxDist float64, shooter Shooter, targets []Target, hitPlayers map[string]bool) (obstacle, bool) {
	best := obstacle{distance: math.Inf(1)}
	found := false

	for _, w := range r.walls.Walls() {
		for slice := 0; slice < walls.SliceCount; slice++ {
			if w.Destroyed(slice) {
				continue
			}
			enter, exit, ok := geom.RayRect(cursor, dir, w.SliceRect(slice))
			if !ok || exit <= contactEpsilon {
				continue
			}
			dist := math.Max(enter, 0)
			if dist > maxDist || dist >= best.distance {
				continue
			}
			best = obstacle{kind: TargetWall, wall: w, slice: slice, distance: dist, exit: exit}
			found = true
		}
	}

	for i := range targets {
		t := &targets[i]
		if !t.Alive || t.ID == shooter.ID || hitPlayers[t.ID] {
			continue
		}
		dist, ok := geom.RayCircle(cursor, dir, t.Pos, t.Radius)
		if !ok || dist <= 0 || dist > maxDist || dist >= best.distance {
			continue
		}
		best = obstacle{kind: TargetPlayer, target: t, distance: dist, exit: dist + 2*t.Radius}
		found = true
	}

	return best, found
}
