package walls

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/geom"
)

const defaultBaseSliceHealth = 100.0

var (
	ErrUnknownWall       = errors.New("walls: unknown wall")
	ErrInvalidSliceIndex = errors.New("walls: slice index out of range")
	ErrSliceDestroyed    = errors.New("walls: slice already destroyed")
)

// SliceDamage reports the outcome of damaging one wall slice.
type SliceDamage struct {
	WallID    string
	Slice     int
	Damage    float64
	NewHealth float64
	Destroyed bool
	Position  mgl64.Vec2
}

// Store owns every wall in a match. All mutation flows through damage,
// repair, and predamage so slice health stays clamped and vision bits stay
// derived.
type Store struct {
	walls           map[string]*Wall
	order           []string
	nextID          uint64
	baseSliceHealth float64
}

// NewStore creates an empty store. baseSliceHealth <= 0 selects the default.
func NewStore(baseSliceHealth float64) *Store {
	if baseSliceHealth <= 0 {
		baseSliceHealth = defaultBaseSliceHealth
	}
	return &Store{
		walls:           make(map[string]*Wall),
		baseSliceHealth: baseSliceHealth,
	}
}

// Create allocates a wall at the given top-left position, derives its
// orientation from its dimensions, and starts every slice at full health.
func (s *Store) Create(pos mgl64.Vec2, width, height float64, material Material) *Wall {
	s.nextID++
	id := fmt.Sprintf("wall-%d", s.nextID)
	w := newWall(id, geom.Rect{X: pos.X(), Y: pos.Y(), Width: width, Height: height}, material, s.baseSliceHealth)
	s.walls[id] = w
	s.order = append(s.order, id)
	return w
}

// Get looks up a wall by ID.
func (s *Store) Get(id string) (*Wall, bool) {
	w, ok := s.walls[id]
	return w, ok
}

// Walls returns every wall in creation order.
func (s *Store) Walls() []*Wall {
	out := make([]*Wall, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.walls[id])
	}
	return out
}

// ApplyDamage subtracts damage from one slice, floored at zero, and
// recomputes the slice's vision bit. Damaging a destroyed slice or an
// out-of-range index fails without mutating anything.
func (s *Store) ApplyDamage(wallID string, slice int, damage float64) (SliceDamage, error) {
	w, ok := s.walls[wallID]
	if !ok {
		return SliceDamage{}, ErrUnknownWall
	}
	if slice < 0 || slice >= SliceCount {
		return SliceDamage{}, ErrInvalidSliceIndex
	}
	if w.sliceHealth[slice] <= 0 {
		return SliceDamage{}, ErrSliceDestroyed
	}
	if damage < 0 {
		damage = 0
	}

	newHealth := w.sliceHealth[slice] - damage
	if newHealth < 0 {
		newHealth = 0
	}
	w.sliceHealth[slice] = newHealth
	w.recomputeVision(slice)

	return SliceDamage{
		WallID:    wallID,
		Slice:     slice,
		Damage:    damage,
		NewHealth: newHealth,
		Destroyed: newHealth <= 0,
		Position:  w.SliceCenter(slice),
	}, nil
}

// Repair restores one slice (or every slice when slice < 0) toward its
// authored load-time health. Walls predamaged at load never repair past
// their authored state.
func (s *Store) Repair(wallID string, slice int, amount float64) error {
	w, ok := s.walls[wallID]
	if !ok {
		return ErrUnknownWall
	}
	if slice >= SliceCount {
		return ErrInvalidSliceIndex
	}
	if amount < 0 {
		amount = 0
	}

	repairOne := func(i int) {
		restored := w.sliceHealth[i] + amount
		if restored > w.initialHealth[i] {
			restored = w.initialHealth[i]
		}
		w.sliceHealth[i] = restored
		w.recomputeVision(i)
	}

	if slice < 0 {
		for i := 0; i < SliceCount; i++ {
			repairOne(i)
		}
		return nil
	}
	repairOne(slice)
	return nil
}

// Predamage lowers a slice's health (or every slice when slice < 0) at load
// time and captures the result as the authored snapshot repair may not
// exceed.
func (s *Store) Predamage(wallID string, slice int, damage float64) error {
	w, ok := s.walls[wallID]
	if !ok {
		return ErrUnknownWall
	}
	if slice >= SliceCount {
		return ErrInvalidSliceIndex
	}
	if damage < 0 {
		damage = 0
	}

	predamageOne := func(i int) {
		newHealth := w.sliceHealth[i] - damage
		if newHealth < 0 {
			newHealth = 0
		}
		w.sliceHealth[i] = newHealth
		w.initialHealth[i] = newHealth
		w.recomputeVision(i)
	}

	if slice < 0 {
		for i := 0; i < SliceCount; i++ {
			predamageOne(i)
		}
		return nil
	}
	predamageOne(slice)
	return nil
}

// ExplosionDamage distributes radius damage across every wall the blast
// reaches. The affected window spans ceil(radius/sliceLength) slices on each
// side of the slice nearest the blast origin; each slice takes
// baseDamage scaled by linear falloff of its own center distance, applied
// independently through ApplyDamage.
func (s *Store) ExplosionDamage(center mgl64.Vec2, radius, baseDamage float64) []SliceDamage {
	if radius <= 0 || baseDamage <= 0 {
		return nil
	}

	var out []SliceDamage
	for _, id := range s.order {
		w := s.walls[id]
		closest := w.Bounds.ClosestPoint(center)
		if closest.Sub(center).Len() > radius {
			continue
		}

		window := int(math.Ceil(radius / w.SliceLength()))
		if window < 1 {
			window = 1
		}
		nearest := w.SliceIndexOf(closest)

		for i := nearest - window; i <= nearest+window; i++ {
			if i < 0 || i >= SliceCount {
				continue
			}
			dist := w.SliceCenter(i).Sub(center).Len()
			falloff := 1 - dist/radius
			if falloff <= 0 {
				continue
			}
			result, err := s.ApplyDamage(id, i, baseDamage*falloff)
			if err != nil {
				continue
			}
			out = append(out, result)
		}
	}
	return out
}
