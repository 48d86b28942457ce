// Package ballistics resolves instantaneous weapon fire against the wall
// store and the live player set: spread, multi-target penetration, and
// range falloff.
package ballistics

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

const (
	// maxPenetrationSteps bounds the worst-case penetration loop; on
	// exhaustion the ray simply stops.
	maxPenetrationSteps = 20

	// contactEpsilon is how far past a penetrated surface the ray resumes.
	contactEpsilon = 0.01

	// minBudget is the damage floor below which a ray carries nothing
	// worth resolving.
	minBudget = 0.5
)

// TargetKind discriminates what a penetration hit struck.
type TargetKind int

const (
	TargetPlayer TargetKind = iota
	TargetWall
)

// Target is the player snapshot hitscan resolves against.
type Target struct {
	ID     string
	Pos    mgl64.Vec2
	Radius float64
	Team   int
	Alive  bool
}

// Shooter describes the firing player's state that shapes accuracy and the
// muzzle origin.
type Shooter struct {
	ID      string
	Pos     mgl64.Vec2
	Radius  float64
	ADS     bool
	Moving  bool
	Running bool
}

// Hit is one link of a penetration chain, ordered by ascending distance
// from the muzzle.
type Hit struct {
	Kind      TargetKind
	TargetID  string
	Slice     int
	Point     mgl64.Vec2
	Distance  float64
	Damage    float64
	Remaining float64

	// WallDamage carries the store mutation result for wall hits.
	WallDamage *walls.SliceDamage
}

// Chain is the ordered hit list produced by a single ray.
type Chain []Hit

// Resolver performs hitscan fire. Wall damage is applied directly through
// the store; player damage is reported through hits for the simulation to
// apply.
type Resolver struct {
	walls *walls.Store
	rng   *rand.Rand
}

// NewResolver wires the resolver to the match's wall store and a seeded
// spread RNG.
func NewResolver(store *walls.Store, rng *rand.Rand) *Resolver {
	return &Resolver{walls: store, rng: rng}
}

// Fire resolves one trigger pull. Shotguns fan independent pellets; every
// other hitscan weapon casts a single jittered ray. The returned chains are
// per-ray, each ordered by distance.
func (r *Resolver) Fire(def *weapons.Definition, shooter Shooter, aim mgl64.Vec2, targets []Target) []Chain {
	spec := def.Hitscan
	if spec == nil || aim.Len() == 0 {
		return nil
	}
	aim = aim.Normalize()
	spread := r.spreadAngle(spec, shooter)

	if spec.Pellets > 1 {
		// Pellets start ahead of the shooter's own bounding circle so a
		// point-blank fan cannot clip the firer.
		origin := shooter.Pos.Add(aim.Mul(shooter.Radius + contactEpsilon))
		perPellet := def.Damage / float64(spec.Pellets)
		chains := make([]Chain, 0, spec.Pellets)
		for i := 0; i < spec.Pellets; i++ {
			dir := r.jitter(aim, spread)
			chains = append(chains, r.cast(origin, dir, def, spec, shooter, targets, perPellet))
		}
		return chains
	}

	dir := r.jitter(aim, spread)
	return []Chain{r.cast(shooter.Pos, dir, def, spec, shooter, targets, def.Damage)}
}

// spreadAngle derives the cone width from weapon accuracy and the
// shooter's stance.
func (r *Resolver) spreadAngle(spec *weapons.HitscanSpec, shooter Shooter) float64 {
	accuracy := spec.Accuracy
	if shooter.ADS {
		accuracy += spec.ADSBonus
	}
	if shooter.Moving {
		accuracy -= spec.MovePenalty
	}
	if shooter.Running {
		accuracy -= spec.RunPenalty
	}
	accuracy = geom.Clamp(accuracy, 0, 1)
	return (1 - accuracy) * spec.SpreadFactor
}

// jitter rotates the aim uniformly within the half-spread on either side.
func (r *Resolver) jitter(aim mgl64.Vec2, spread float64) mgl64.Vec2 {
	if spread <= 0 {
		return aim
	}
	angle := (r.rng.Float64() - 0.5) * spread
	return geom.Rotate(aim, angle)
}
