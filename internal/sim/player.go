package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/weapons"
)

const defaultPlayerRadius = 12.0

// Player is one combatant the world resolves fire for. Movement is owned
// by the caller; the simulation only reads stance and position.
type Player struct {
	ID        string
	Team      int
	Pos       mgl64.Vec2
	Radius    float64
	Health    float64
	MaxHealth float64

	ADS     bool
	Moving  bool
	Running bool

	Loadout weapons.Loadout
}

func (p *Player) Alive() bool {
	return p.Health > 0
}

// applyDamage lowers health toward zero and reports whether this hit
// killed the player.
func (p *Player) applyDamage(damage float64) bool {
	if !p.Alive() || damage <= 0 {
		return false
	}
	p.Health -= damage
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}
