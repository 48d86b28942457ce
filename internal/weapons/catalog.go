package weapons

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalog holds the active definition for every weapon type.
type Catalog map[Type]*Definition

// DefaultCatalog returns the built-in tuning table. Values may be adjusted
// by a YAML overlay loaded with Load.
func DefaultCatalog() Catalog {
	return Catalog{
		TypePistol: {
			Type:         TypePistol,
			Kind:         KindHitscan,
			Damage:       25,
			Range:        400,
			FireInterval: 250 * time.Millisecond,
			MagazineSize: 12,
			ReloadTime:   1200 * time.Millisecond,
			Hitscan: &HitscanSpec{
				Accuracy:     0.85,
				ADSBonus:     0.1,
				MovePenalty:  0.1,
				RunPenalty:   0.15,
				SpreadFactor: 0.35,
				FalloffStart: 0.5,
				FalloffMin:   0.4,
			},
		},
		TypeRifle: {
			Type:         TypeRifle,
			Kind:         KindHitscan,
			Damage:       32,
			Range:        900,
			FireInterval: 110 * time.Millisecond,
			MagazineSize: 30,
			ReloadTime:   1800 * time.Millisecond,
			HeatPerShot:  4,
			OverheatAt:   100,
			CooldownTime: 2500 * time.Millisecond,
			Hitscan: &HitscanSpec{
				Accuracy:     0.8,
				ADSBonus:     0.15,
				MovePenalty:  0.15,
				RunPenalty:   0.2,
				SpreadFactor: 0.3,
				FalloffStart: 0.6,
				FalloffMin:   0.5,
			},
		},
		TypeAntiMateriel: {
			Type:         TypeAntiMateriel,
			Kind:         KindHitscan,
			Damage:       180,
			Range:        1600,
			FireInterval: 1400 * time.Millisecond,
			MagazineSize: 5,
			ReloadTime:   3200 * time.Millisecond,
			Hitscan: &HitscanSpec{
				Accuracy:              0.95,
				ADSBonus:              0.05,
				MovePenalty:           0.3,
				RunPenalty:            0.3,
				SpreadFactor:          0.25,
				FalloffStart:          0.8,
				FalloffMin:            0.7,
				MaxWallPenetrations:   3,
				MaxPlayerPenetrations: 2,
				Retention:             []float64{1.0, 0.8, 0.65, 0.5},
			},
		},
		TypeShotgun: {
			Type:         TypeShotgun,
			Kind:         KindHitscan,
			Damage:       96,
			Range:        280,
			FireInterval: 800 * time.Millisecond,
			MagazineSize: 6,
			ReloadTime:   2600 * time.Millisecond,
			Hitscan: &HitscanSpec{
				Accuracy:     0.7,
				ADSBonus:     0.1,
				MovePenalty:  0.1,
				RunPenalty:   0.15,
				SpreadFactor: 0.5,
				Pellets:      8,
				PelletBuckets: []RangeBucket{
					{UpTo: 80, Multiplier: 1.0},
					{UpTo: 160, Multiplier: 0.6},
					{UpTo: 280, Multiplier: 0.25},
				},
			},
		},
		TypeRocketLauncher: {
			Type:         TypeRocketLauncher,
			Kind:         KindLaunched,
			Damage:       120,
			Range:        1200,
			FireInterval: 2000 * time.Millisecond,
			MagazineSize: 1,
			ReloadTime:   3500 * time.Millisecond,
			Launch:       &LaunchSpec{Speed: 620, Radius: 6},
			Explosive:    &ExplosiveSpec{Radius: 90, Damage: 120, Curve: CurvePower},
		},
		TypeGrenadeLauncher: {
			Type:         TypeGrenadeLauncher,
			Kind:         KindLaunched,
			Damage:       80,
			Range:        800,
			FireInterval: 1200 * time.Millisecond,
			MagazineSize: 4,
			ReloadTime:   3000 * time.Millisecond,
			Launch:       &LaunchSpec{Speed: 380, Radius: 5, Gravity: 240},
			Explosive:    &ExplosiveSpec{Radius: 70, Damage: 80, Curve: CurveLinear, Fuse: 2500 * time.Millisecond},
		},
		TypeGrenade: {
			Type:      TypeGrenade,
			Kind:      KindThrown,
			Damage:    100,
			Range:     600,
			Launch:    &LaunchSpec{Speed: 420, MinThrowSpeed: 120, Radius: 5},
			Explosive: &ExplosiveSpec{Radius: 80, Damage: 100, Curve: CurveLinear, Fuse: 3 * time.Second},
		},
		TypeSmokeGrenade: {
			Type:      TypeSmokeGrenade,
			Kind:      KindThrown,
			Range:     600,
			Launch:    &LaunchSpec{Speed: 420, MinThrowSpeed: 120, Radius: 5},
			Explosive: &ExplosiveSpec{Radius: 110, Curve: CurveLinear, Fuse: 2 * time.Second},
		},
		TypeFlashbang: {
			Type:      TypeFlashbang,
			Kind:      KindThrown,
			Range:     600,
			Launch:    &LaunchSpec{Speed: 450, MinThrowSpeed: 140, Radius: 4},
			Explosive: &ExplosiveSpec{Radius: 130, Curve: CurveLinear, Fuse: 1600 * time.Millisecond},
		},
	}
}

// catalogFile mirrors the YAML tuning overlay.
type catalogFile struct {
	Weapons map[string]weaponOverride `yaml:"weapons"`
}

// weaponOverride is a sparse per-weapon tuning patch; nil fields keep the
// built-in value.
type weaponOverride struct {
	Damage          *float64 `yaml:"damage"`
	Range           *float64 `yaml:"range"`
	FireIntervalMS  *int     `yaml:"fireIntervalMs"`
	MagazineSize    *int     `yaml:"magazineSize"`
	ReloadMS        *int     `yaml:"reloadMs"`
	Accuracy        *float64 `yaml:"accuracy"`
	Pellets         *int     `yaml:"pellets"`
	ExplosionRadius *float64 `yaml:"explosionRadius"`
	ExplosionDamage *float64 `yaml:"explosionDamage"`
	FuseMS          *int     `yaml:"fuseMs"`
}

// Load builds the catalog from defaults plus the YAML overlay at path. An
// empty path returns the defaults untouched.
func Load(path string) (Catalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read weapon catalog %s", path)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parse weapon catalog %s", path)
	}

	for name, override := range file.Weapons {
		weaponType, err := ParseType(name)
		if err != nil {
			return nil, errors.Wrapf(err, "weapon catalog %s", path)
		}
		applyOverride(catalog[weaponType], override)
	}
	return catalog, nil
}

func applyOverride(def *Definition, o weaponOverride) {
	if def == nil {
		return
	}
	if o.Damage != nil {
		def.Damage = *o.Damage
	}
	if o.Range != nil {
		def.Range = *o.Range
	}
	if o.FireIntervalMS != nil {
		def.FireInterval = time.Duration(*o.FireIntervalMS) * time.Millisecond
	}
	if o.MagazineSize != nil {
		def.MagazineSize = *o.MagazineSize
	}
	if o.ReloadMS != nil {
		def.ReloadTime = time.Duration(*o.ReloadMS) * time.Millisecond
	}
	if o.Accuracy != nil && def.Hitscan != nil {
		def.Hitscan.Accuracy = *o.Accuracy
	}
	if o.Pellets != nil && def.Hitscan != nil {
		def.Hitscan.Pellets = *o.Pellets
	}
	if def.Explosive != nil {
		if o.ExplosionRadius != nil {
			def.Explosive.Radius = *o.ExplosionRadius
		}
		if o.ExplosionDamage != nil {
			def.Explosive.Damage = *o.ExplosionDamage
		}
		if o.FuseMS != nil {
			def.Explosive.Fuse = time.Duration(*o.FuseMS) * time.Millisecond
		}
	}
}
