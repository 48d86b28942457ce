// Package config loads and validates the world definition: map size, tick
// rate, and the authored wall layout with optional pre-damage.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultWidth           = 2400.0
	defaultHeight          = 1600.0
	defaultTickRate        = 60
	defaultSeed            = "skirmish"
	defaultBaseSliceHealth = 100.0
)

// WallConfig places one authored wall. Predamage entries lower individual
// slices before the match starts; index -1 applies to every slice.
type WallConfig struct {
	X         float64           `yaml:"x" json:"x"`
	Y         float64           `yaml:"y" json:"y"`
	Width     float64           `yaml:"width" json:"width"`
	Height    float64           `yaml:"height" json:"height"`
	Material  string            `yaml:"material" json:"material"`
	Predamage []PredamageConfig `yaml:"predamage,omitempty" json:"predamage,omitempty"`
}

type PredamageConfig struct {
	Slice  int     `yaml:"slice" json:"slice"`
	Damage float64 `yaml:"damage" json:"damage"`
}

// WorldConfig captures everything needed to build a deterministic match.
type WorldConfig struct {
	Width           float64      `yaml:"width" json:"width"`
	Height          float64      `yaml:"height" json:"height"`
	TickRate        int          `yaml:"tickRate" json:"tickRate"`
	Seed            string       `yaml:"seed" json:"seed"`
	BaseSliceHealth float64      `yaml:"baseSliceHealth" json:"baseSliceHealth"`
	WeaponFile      string       `yaml:"weaponFile,omitempty" json:"weaponFile,omitempty"`
	Walls           []WallConfig `yaml:"walls,omitempty" json:"walls,omitempty"`
}

// Normalized returns a config with defaults applied.
func (cfg WorldConfig) Normalized() WorldConfig {
	normalized := cfg
	if normalized.Width <= 0 {
		normalized.Width = defaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = defaultHeight
	}
	if normalized.TickRate <= 0 {
		normalized.TickRate = defaultTickRate
	}
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultSeed
	}
	if normalized.BaseSliceHealth <= 0 {
		normalized.BaseSliceHealth = defaultBaseSliceHealth
	}
	return normalized
}

// DefaultWorldConfig is the empty-map fallback used when no file is given.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{}.Normalized()
}

// Load reads and normalizes a world file.
func Load(path string) (WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldConfig{}, errors.Wrapf(err, "read world config %s", path)
	}
	var cfg WorldConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WorldConfig{}, errors.Wrapf(err, "parse world config %s", path)
	}
	cfg = cfg.Normalized()
	if err := cfg.validate(); err != nil {
		return WorldConfig{}, errors.Wrapf(err, "validate world config %s", path)
	}
	return cfg, nil
}

func (cfg WorldConfig) validate() error {
	for i, wall := range cfg.Walls {
		if wall.Width <= 0 || wall.Height <= 0 {
			return errors.Errorf("wall %d has non-positive dimensions", i)
		}
		if wall.X < 0 || wall.Y < 0 || wall.X+wall.Width > cfg.Width || wall.Y+wall.Height > cfg.Height {
			return errors.Errorf("wall %d extends outside the map", i)
		}
		if strings.TrimSpace(wall.Material) == "" {
			return errors.Errorf("wall %d is missing a material", i)
		}
		for _, pd := range wall.Predamage {
			if pd.Slice < -1 || pd.Slice > 4 {
				return errors.Errorf("wall %d predamage slice %d out of range", i, pd.Slice)
			}
			if pd.Damage <= 0 {
				return errors.Errorf("wall %d predamage must be positive", i)
			}
		}
	}
	return nil
}
