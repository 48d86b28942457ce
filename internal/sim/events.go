package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/ballistics"
)

// Damage type tags carried on player damage events.
const (
	DamageHitscan   = "hitscan"
	DamageExplosion = "explosion"
)

// Shot reports one resolved trigger pull with its full penetration chains.
type Shot struct {
	ShooterID string
	Weapon    string
	Chains    []ballistics.Chain
}

// WallDamageEvent is one slice losing health, from any cause.
type WallDamageEvent struct {
	WallID    string
	Slice     int
	Damage    float64
	NewHealth float64
	Destroyed bool
	Cause     string
	SourceID  string
}

// WallRepairEvent reports a successful repair command.
type WallRepairEvent struct {
	WallID   string
	Slice    int
	Amount   float64
	SourceID string
}

// PlayerDamageEvent is one player losing health.
type PlayerDamageEvent struct {
	TargetID   string
	SourceID   string
	Damage     float64
	Health     float64
	Killed     bool
	DamageType string
	Weapon     string
}

// ProjectileEvent snapshots a projectile for broadcast.
type ProjectileEvent struct {
	ID      string
	Kind    string
	OwnerID string
	Pos     mgl64.Vec2
	Vel     mgl64.Vec2
}

// DetonationEvent reports one resolved explosion.
type DetonationEvent struct {
	ID         string
	Kind       string
	OwnerID    string
	Pos        mgl64.Vec2
	Radius     float64
	Damage     float64
	PlayersHit int
	SlicesHit  int
}

// StepOutput is everything one tick produced, in resolution order.
type StepOutput struct {
	Tick uint64

	Shots             []Shot
	WallDamage        []WallDamageEvent
	WallRepairs       []WallRepairEvent
	PlayerDamage      []PlayerDamageEvent
	ProjectileSpawns  []ProjectileEvent
	ProjectileMoves   []ProjectileEvent
	ProjectileRemoved []string
	Detonations       []DetonationEvent
	Rejections        []Rejection
}
