package weapons

import (
	"errors"
	"os"
	"testing"
	"time"
)

func testRifle() *State {
	catalog := DefaultCatalog()
	return NewState(catalog[TypeRifle])
}

func TestCheckFireGates(t *testing.T) {
	now := time.Unix(100, 0)
	state := testRifle()

	if err := state.CheckFire(now); err != nil {
		t.Fatalf("fresh weapon should fire: %v", err)
	}

	state.RecordShot(now)
	if err := state.CheckFire(now.Add(10 * time.Millisecond)); !errors.Is(err, ErrFireRateExceeded) {
		t.Fatalf("expected ErrFireRateExceeded, got %v", err)
	}
	if err := state.CheckFire(now.Add(state.Def.FireInterval)); err != nil {
		t.Fatalf("interval elapsed, should fire: %v", err)
	}

	state.Ammo = 0
	if err := state.CheckFire(now.Add(time.Second)); !errors.Is(err, ErrOutOfAmmo) {
		t.Fatalf("expected ErrOutOfAmmo, got %v", err)
	}

	state.Ammo = 5
	if err := state.BeginReload(); err != nil {
		t.Fatalf("begin reload: %v", err)
	}
	if err := state.CheckFire(now.Add(time.Second)); !errors.Is(err, ErrAlreadyReloading) {
		t.Fatalf("expected ErrAlreadyReloading, got %v", err)
	}
	if err := state.BeginReload(); !errors.Is(err, ErrAlreadyReloading) {
		t.Fatalf("double reload should fail, got %v", err)
	}

	state.FinishReload()
	if state.Reloading || state.Ammo != state.Def.MagazineSize {
		t.Fatalf("finished reload should refill magazine")
	}
}

func TestOverheatAccumulatesAndClears(t *testing.T) {
	now := time.Unix(100, 0)
	state := testRifle()

	shots := int(state.Def.OverheatAt/state.Def.HeatPerShot) - 1
	for i := 0; i < shots; i++ {
		if tripped := state.RecordShot(now); tripped {
			t.Fatalf("overheated after only %d shots", i+1)
		}
		now = now.Add(state.Def.FireInterval)
	}

	if tripped := state.RecordShot(now); !tripped {
		t.Fatalf("final shot should trip overheat")
	}
	if err := state.CheckFire(now.Add(time.Hour)); !errors.Is(err, ErrOverheated) {
		t.Fatalf("expected ErrOverheated, got %v", err)
	}

	state.ClearOverheat()
	if state.Overheated || state.Heat != 0 {
		t.Fatalf("cooldown should clear heat entirely")
	}
	if err := state.CheckFire(now.Add(time.Hour)); err != nil {
		t.Fatalf("cooled weapon should fire: %v", err)
	}
}

func TestLoadoutLookup(t *testing.T) {
	catalog := DefaultCatalog()
	loadout := NewLoadout(catalog, TypeRifle, TypeGrenade)

	if _, err := loadout.Weapon(TypeRifle); err != nil {
		t.Fatalf("rifle should be carried: %v", err)
	}
	if _, err := loadout.Weapon(TypeShotgun); !errors.Is(err, ErrWeaponNotFound) {
		t.Fatalf("expected ErrWeaponNotFound, got %v", err)
	}
}

func TestSchedulerDrainsInOrder(t *testing.T) {
	s := NewScheduler()
	s.Schedule(30, "p1", TypeRifle, DeferredOverheatClear)
	s.Schedule(10, "p1", TypeRifle, DeferredReloadComplete)
	s.Schedule(10, "p2", TypeShotgun, DeferredReloadComplete)
	s.Schedule(50, "p3", TypePistol, DeferredReloadComplete)

	due := s.Due(30)
	if len(due) != 3 {
		t.Fatalf("expected 3 due entries, got %d", len(due))
	}
	if due[0].OwnerID != "p1" || due[0].Kind != DeferredReloadComplete {
		t.Fatalf("earliest entry should pop first, got %+v", due[0])
	}
	if due[1].OwnerID != "p2" {
		t.Fatalf("same-tick entries should pop in insertion order, got %+v", due[1])
	}
	if due[2].Kind != DeferredOverheatClear {
		t.Fatalf("tick-30 entry should pop last, got %+v", due[2])
	}

	if s.Len() != 1 {
		t.Fatalf("one entry should remain, got %d", s.Len())
	}
	if len(s.Due(30)) != 0 {
		t.Fatalf("already-drained ticks should yield nothing")
	}
}

func TestCatalogOverrideLoad(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/weapons.yaml"
	overlay := []byte("weapons:\n  rifle:\n    damage: 40\n    magazineSize: 25\n  grenade:\n    fuseMs: 2000\n    explosionRadius: 95\n")
	if err := os.WriteFile(path, overlay, 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if catalog[TypeRifle].Damage != 40 || catalog[TypeRifle].MagazineSize != 25 {
		t.Fatalf("rifle override not applied: %+v", catalog[TypeRifle])
	}
	if catalog[TypeGrenade].Explosive.Fuse != 2*time.Second {
		t.Fatalf("grenade fuse override not applied")
	}
	if catalog[TypeGrenade].Explosive.Radius != 95 {
		t.Fatalf("grenade radius override not applied")
	}
	// Untouched weapons keep defaults.
	if catalog[TypeShotgun].Hitscan.Pellets != 8 {
		t.Fatalf("shotgun defaults should survive overlay")
	}
}

func TestCatalogLoadRejectsUnknownWeapon(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/weapons.yaml"
	if err := os.WriteFile(path, []byte("weapons:\n  railgun:\n    damage: 1\n"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown weapon name should fail the load")
	}
}
