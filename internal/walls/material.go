package walls

import "fmt"

// Material classifies wall construction. Hard materials (concrete, metal)
// never let rounds through while any health remains; soft materials (wood,
// glass) open up once slice health falls below material thresholds.
type Material int

const (
	MaterialConcrete Material = iota
	MaterialMetal
	MaterialWood
	MaterialGlass
)

// materialProfile tunes one material. The vision and penetration fractions
// are deliberately independent: a slice can be see-through and still stop a
// bullet.
type materialProfile struct {
	name                string
	healthMultiplier    float64
	visionFraction      float64
	penetrationFraction float64
	penetrationCost     float64
	hard                bool
}

var profiles = [...]materialProfile{
	MaterialConcrete: {name: "concrete", healthMultiplier: 2.0, hard: true},
	MaterialMetal:    {name: "metal", healthMultiplier: 1.6, hard: true},
	MaterialWood:     {name: "wood", healthMultiplier: 1.0, visionFraction: 0.5, penetrationFraction: 0.35, penetrationCost: 25},
	MaterialGlass:    {name: "glass", healthMultiplier: 0.4, visionFraction: 0.6, penetrationFraction: 0.5, penetrationCost: 10},
}

func (m Material) valid() bool {
	return m >= MaterialConcrete && m <= MaterialGlass
}

func (m Material) String() string {
	if !m.valid() {
		return "unknown"
	}
	return profiles[m].name
}

// Hard reports whether the material blocks penetration at any health above
// zero.
func (m Material) Hard() bool {
	return m.valid() && profiles[m].hard
}

// HealthMultiplier scales the base per-slice health for this material.
func (m Material) HealthMultiplier() float64 {
	if !m.valid() {
		return 1
	}
	return profiles[m].healthMultiplier
}

// PenetrationCost is the damage budget a round spends crossing one
// penetrable slice of this material.
func (m Material) PenetrationCost() float64 {
	if !m.valid() {
		return 0
	}
	return profiles[m].penetrationCost
}

// ParseMaterial resolves a config string to a material.
func ParseMaterial(s string) (Material, error) {
	for m, profile := range profiles {
		if profile.name == s {
			return Material(m), nil
		}
	}
	return MaterialConcrete, fmt.Errorf("walls: unknown material %q", s)
}

// AllowsVision reports whether sight passes through a slice at the given
// health. Hard materials only open at zero health; soft materials open once
// health drops to the material's vision fraction.
func AllowsVision(m Material, health, maxHealth float64) bool {
	if health <= 0 {
		return true
	}
	if m.Hard() || maxHealth <= 0 {
		return false
	}
	return health <= profiles[m].visionFraction*maxHealth
}

// AllowsPenetration reports whether a round passes through a slice at the
// given health. The threshold is configured independently of the vision
// threshold; the two predicates must never be conflated.
func AllowsPenetration(m Material, health, maxHealth float64) bool {
	if health <= 0 {
		return true
	}
	if m.Hard() || maxHealth <= 0 {
		return false
	}
	return health <= profiles[m].penetrationFraction*maxHealth
}
