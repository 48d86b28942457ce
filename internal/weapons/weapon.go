package weapons

import (
	"fmt"
	"time"
)

// Kind buckets weapon types by how their fire is resolved.
type Kind int

const (
	// KindHitscan rounds resolve instantaneously along a ray.
	KindHitscan Kind = iota
	// KindLaunched rounds spawn a self-propelled projectile.
	KindLaunched
	// KindThrown rounds spawn a charge-scaled thrown projectile.
	KindThrown
)

// Type enumerates every weapon the simulation resolves. Dispatch is always
// on this enum and Kind, never on strings in hot paths.
type Type int

const (
	TypePistol Type = iota
	TypeRifle
	TypeAntiMateriel
	TypeShotgun
	TypeRocketLauncher
	TypeGrenadeLauncher
	TypeGrenade
	TypeSmokeGrenade
	TypeFlashbang
)

var typeNames = [...]string{
	TypePistol:          "pistol",
	TypeRifle:           "rifle",
	TypeAntiMateriel:    "antimateriel",
	TypeShotgun:         "shotgun",
	TypeRocketLauncher:  "rocketlauncher",
	TypeGrenadeLauncher: "grenadelauncher",
	TypeGrenade:         "grenade",
	TypeSmokeGrenade:    "smokegrenade",
	TypeFlashbang:       "flashbang",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType resolves a command or config string to a weapon type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return TypePistol, fmt.Errorf("weapons: unknown weapon type %q", s)
}

// RangeBucket maps a distance band to a damage multiplier. Buckets are
// ordered by ascending UpTo; distance past the last bucket scores zero.
type RangeBucket struct {
	UpTo       float64
	Multiplier float64
}

// HitscanSpec tunes instantaneous fire resolution.
type HitscanSpec struct {
	// Accuracy in [0,1]; spread angle is (1-accuracy) * SpreadFactor.
	Accuracy     float64
	ADSBonus     float64
	MovePenalty  float64
	RunPenalty   float64
	SpreadFactor float64

	// Pellets > 1 fans independent rays, each carrying Damage/Pellets.
	Pellets int

	// Continuous falloff: full damage inside Range*FalloffStart, decaying
	// linearly to Damage*FalloffMin at Range. Shotguns use PelletBuckets
	// instead.
	FalloffStart  float64
	FalloffMin    float64
	PelletBuckets []RangeBucket

	// Anti-materiel penetration caps and the remaining-damage retention
	// table indexed by completed penetration count. Zero caps select the
	// standard budget-driven penetration loop.
	MaxWallPenetrations   int
	MaxPlayerPenetrations int
	Retention             []float64
}

// AntiMateriel reports whether the spec uses capped multi-target
// penetration instead of the standard budget loop.
func (s *HitscanSpec) AntiMateriel() bool {
	return s != nil && (s.MaxWallPenetrations > 0 || s.MaxPlayerPenetrations > 0)
}

// RetentionAt returns the remaining-damage multiplier after the nth
// completed penetration.
func (s *HitscanSpec) RetentionAt(count int) float64 {
	if s == nil || len(s.Retention) == 0 {
		return 1
	}
	if count < 0 {
		count = 0
	}
	if count >= len(s.Retention) {
		count = len(s.Retention) - 1
	}
	return s.Retention[count]
}

// LaunchSpec tunes projectile spawn for launched and thrown weapons.
type LaunchSpec struct {
	// Speed is the muzzle velocity for launched rounds and the full-charge
	// throw speed for thrown weapons.
	Speed float64
	// MinThrowSpeed anchors the zero-charge end of the throw-speed range.
	MinThrowSpeed float64
	Radius        float64
	Gravity       float64
}

// FalloffCurve selects the explosion damage falloff shape.
type FalloffCurve int

const (
	CurveLinear FalloffCurve = iota
	CurvePower
)

// ExplosiveSpec tunes detonation behavior.
type ExplosiveSpec struct {
	Radius float64
	Damage float64
	Curve  FalloffCurve
	Fuse   time.Duration
}

// Definition is the static configuration of one weapon type.
type Definition struct {
	Type         Type
	Kind         Kind
	Damage       float64
	Range        float64
	FireInterval time.Duration
	MagazineSize int
	ReloadTime   time.Duration

	// Heat gating; OverheatAt <= 0 disables overheating.
	HeatPerShot  float64
	OverheatAt   float64
	CooldownTime time.Duration

	Hitscan   *HitscanSpec
	Launch    *LaunchSpec
	Explosive *ExplosiveSpec
}
