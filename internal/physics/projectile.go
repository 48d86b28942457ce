// Package physics advances thrown and launched projectiles each tick:
// grenade bounce dynamics, rocket line-stepped collision, launcher arc
// trajectories, and fuse-driven detonation.
package physics

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"breachpoint/server/internal/weapons"
)

// Kind names the flight model a projectile follows.
type Kind int

const (
	KindGrenade Kind = iota
	KindSmokeGrenade
	KindFlashbang
	KindRocket
	KindLauncherRound
)

var kindNames = [...]string{
	KindGrenade:       "grenade",
	KindSmokeGrenade:  "smokegrenade",
	KindFlashbang:     "flashbang",
	KindRocket:        "rocket",
	KindLauncherRound: "launcherround",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Thrown reports whether the kind follows ground-friction grenade dynamics.
func (k Kind) Thrown() bool {
	return k == KindGrenade || k == KindSmokeGrenade || k == KindFlashbang
}

// KindForWeapon maps a weapon type to its projectile kind.
func KindForWeapon(t weapons.Type) (Kind, bool) {
	switch t {
	case weapons.TypeGrenade:
		return KindGrenade, true
	case weapons.TypeSmokeGrenade:
		return KindSmokeGrenade, true
	case weapons.TypeFlashbang:
		return KindFlashbang, true
	case weapons.TypeRocketLauncher:
		return KindRocket, true
	case weapons.TypeGrenadeLauncher:
		return KindLauncherRound, true
	}
	return KindGrenade, false
}

// Projectile is one live round advanced every tick. Detonation is gated by
// Exploded so fuse and collision checks can race harmlessly within a tick.
type Projectile struct {
	ID      string
	Kind    Kind
	OwnerID string

	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Radius float64

	Damage          float64
	ExplosionRadius float64
	Curve           weapons.FalloffCurve

	Range    float64
	Traveled float64
	Charge   float64
	Gravity  float64

	CreatedAt time.Time
	Fuse      time.Duration
	Exploded  bool

	frozen          bool
	lastWallContact map[string]time.Time
}

// Frozen reports whether ground drag has stopped position integration.
// Fuse timers keep running regardless.
func (p *Projectile) Frozen() bool { return p.frozen }

// fuseElapsed reports whether the creation-relative fuse has run out.
func (p *Projectile) fuseElapsed(now time.Time) bool {
	return p.Fuse > 0 && !now.Before(p.CreatedAt.Add(p.Fuse))
}

// SpawnParams describes a new projectile.
type SpawnParams struct {
	Kind    Kind
	OwnerID string
	Pos     mgl64.Vec2
	Vel     mgl64.Vec2
	Radius  float64

	Damage          float64
	ExplosionRadius float64
	Curve           weapons.FalloffCurve
	Range           float64
	Charge          float64
	Gravity         float64
	Fuse            time.Duration

	Now time.Time
}

func newProjectile(params SpawnParams) *Projectile {
	return &Projectile{
		ID:              uuid.NewString(),
		Kind:            params.Kind,
		OwnerID:         params.OwnerID,
		Pos:             params.Pos,
		Vel:             params.Vel,
		Radius:          params.Radius,
		Damage:          params.Damage,
		ExplosionRadius: params.ExplosionRadius,
		Curve:           params.Curve,
		Range:           params.Range,
		Charge:          params.Charge,
		Gravity:         params.Gravity,
		CreatedAt:       params.Now,
		Fuse:            params.Fuse,
		lastWallContact: make(map[string]time.Time),
	}
}
