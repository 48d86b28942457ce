// Package combat defines the typed event emitters the simulation publishes
// during weapon resolution.
package combat

import (
	"context"

	"breachpoint/server/logging"
)

const (
	ShotFiredEventType           logging.EventType = "combat.shot_fired"
	WallSliceDestroyedEventType  logging.EventType = "combat.wall_slice_destroyed"
	ProjectileDetonatedEventType logging.EventType = "combat.projectile_detonated"
	PlayerDamagedEventType       logging.EventType = "combat.player_damaged"
	PlayerKilledEventType        logging.EventType = "combat.player_killed"
	WeaponOverheatedEventType    logging.EventType = "combat.weapon_overheated"
)

type ShotFiredPayload struct {
	Weapon      string  `json:"weapon"`
	Hits        int     `json:"hits"`
	WallsPassed int     `json:"wallsPassed,omitempty"`
	TotalDamage float64 `json:"totalDamage"`
}

func ShotFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, weapon string, hits, wallsPassed int, totalDamage float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     ShotFiredEventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload: ShotFiredPayload{
			Weapon:      weapon,
			Hits:        hits,
			WallsPassed: wallsPassed,
			TotalDamage: totalDamage,
		},
	})
}

type WallSliceDestroyedPayload struct {
	WallID   string `json:"wallId"`
	Slice    int    `json:"slice"`
	Material string `json:"material"`
	Cause    string `json:"cause"`
}

func WallSliceDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, wallID string, slice int, material, cause string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     WallSliceDestroyedEventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: wallID, Kind: logging.EntityKindWall}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload: WallSliceDestroyedPayload{
			WallID:   wallID,
			Slice:    slice,
			Material: material,
			Cause:    cause,
		},
	})
}

type ProjectileDetonatedPayload struct {
	Projectile string  `json:"projectile"`
	Kind       string  `json:"kind"`
	Radius     float64 `json:"radius"`
	Damage     float64 `json:"damage"`
	PlayersHit int     `json:"playersHit"`
	SlicesHit  int     `json:"slicesHit"`
}

func ProjectileDetonated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, projectileID, kind string, radius, damage float64, playersHit, slicesHit int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     ProjectileDetonatedEventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: projectileID, Kind: logging.EntityKindProjectile}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload: ProjectileDetonatedPayload{
			Projectile: projectileID,
			Kind:       kind,
			Radius:     radius,
			Damage:     damage,
			PlayersHit: playersHit,
			SlicesHit:  slicesHit,
		},
	})
}

type PlayerDamagedPayload struct {
	Damage     float64 `json:"damage"`
	Health     float64 `json:"health"`
	DamageType string  `json:"damageType"`
	Weapon     string  `json:"weapon,omitempty"`
}

func PlayerDamaged(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, damage, health float64, damageType, weapon string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     PlayerDamagedEventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload: PlayerDamagedPayload{
			Damage:     damage,
			Health:     health,
			DamageType: damageType,
			Weapon:     weapon,
		},
	})
}

func PlayerKilled(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, damageType string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     PlayerKilledEventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  map[string]string{"damageType": damageType},
	})
}

func WeaponOverheated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, weapon string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     WeaponOverheatedEventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  map[string]string{"weapon": weapon},
	})
}
