package weapons

import (
	"errors"
	"time"
)

// Typed fire-gate failures handed back to the caller. The simulation never
// panics on bad weapon input.
var (
	ErrWeaponNotFound   = errors.New("weapons: weapon not found")
	ErrOutOfAmmo        = errors.New("weapons: insufficient ammo")
	ErrAlreadyReloading = errors.New("weapons: reload in progress")
	ErrFireRateExceeded = errors.New("weapons: fire rate exceeded")
	ErrOverheated       = errors.New("weapons: weapon overheated")
	ErrInvalidCharge    = errors.New("weapons: invalid charge level")
)

// State tracks the mutable firing state of one carried weapon. Reload and
// overheat completions arrive as deferred scheduler effects, never from
// free-running timers.
type State struct {
	Def        *Definition
	Ammo       int
	Reloading  bool
	Heat       float64
	Overheated bool

	lastShot time.Time
	hasFired bool
}

// NewState issues a weapon with a full magazine and no heat.
func NewState(def *Definition) *State {
	return &State{Def: def, Ammo: def.MagazineSize}
}

// CheckFire validates every fire gate without mutating state.
func (s *State) CheckFire(now time.Time) error {
	if s.Overheated {
		return ErrOverheated
	}
	if s.Reloading {
		return ErrAlreadyReloading
	}
	if s.Def.MagazineSize > 0 && s.Ammo <= 0 {
		return ErrOutOfAmmo
	}
	if s.hasFired && now.Sub(s.lastShot) < s.Def.FireInterval {
		return ErrFireRateExceeded
	}
	return nil
}

// RecordShot consumes ammo and heat for one shot. It reports whether the
// shot tipped the weapon into overheat so the caller can schedule the
// cooldown completion.
func (s *State) RecordShot(now time.Time) bool {
	s.lastShot = now
	s.hasFired = true
	if s.Def.MagazineSize > 0 && s.Ammo > 0 {
		s.Ammo--
	}
	if s.Def.OverheatAt > 0 {
		s.Heat += s.Def.HeatPerShot
		if s.Heat >= s.Def.OverheatAt {
			s.Overheated = true
			return true
		}
	}
	return false
}

// BeginReload starts a reload; completion is applied later via
// FinishReload.
func (s *State) BeginReload() error {
	if s.Reloading {
		return ErrAlreadyReloading
	}
	s.Reloading = true
	return nil
}

// FinishReload applies the deferred reload completion.
func (s *State) FinishReload() {
	s.Reloading = false
	s.Ammo = s.Def.MagazineSize
}

// ClearOverheat applies the deferred cooldown completion.
func (s *State) ClearOverheat() {
	s.Overheated = false
	s.Heat = 0
}

// Loadout is the set of weapons a player carries, keyed by type.
type Loadout map[Type]*State

// NewLoadout issues one weapon state per requested type. Unknown types are
// skipped.
func NewLoadout(catalog Catalog, types ...Type) Loadout {
	loadout := make(Loadout, len(types))
	for _, t := range types {
		if def, ok := catalog[t]; ok {
			loadout[t] = NewState(def)
		}
	}
	return loadout
}

// Weapon looks up a carried weapon.
func (l Loadout) Weapon(t Type) (*State, error) {
	state, ok := l[t]
	if !ok {
		return nil, ErrWeaponNotFound
	}
	return state, nil
}
