package physics

import "time"

// Tuning collects the integrator's coefficients. The defaults are the
// playtested values; world config may override them wholesale.
type Tuning struct {
	// Friction is the per-second ground drag base, applied as Friction^dt.
	Friction float64
	// StopSpeed freezes a thrown projectile once its speed drops below it.
	StopSpeed float64

	BounceDamping float64
	// WallFriction scales only the tangential velocity component on bounce.
	WallFriction float64
	// MinBounceSpeed triggers MicroBounceDamping to kill visible jitter.
	MinBounceSpeed     float64
	MicroBounceDamping float64

	LauncherBounceDamping float64

	// RocketSubsteps fixes the per-frame line subdivision for fast rounds.
	RocketSubsteps int

	// ContactCooldown suppresses reprocessing the same wall contact across
	// adjacent substeps and ticks.
	ContactCooldown time.Duration
	ContactEpsilon  float64
}

func DefaultTuning() Tuning {
	return Tuning{
		Friction:              0.25,
		StopSpeed:             12,
		BounceDamping:         0.6,
		WallFriction:          0.85,
		MinBounceSpeed:        40,
		MicroBounceDamping:    0.3,
		LauncherBounceDamping: 0.35,
		RocketSubsteps:        12,
		ContactCooldown:       200 * time.Millisecond,
		ContactEpsilon:        0.01,
	}
}
