package ballistics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
)

// laserRifle is a perfectly accurate test weapon so rays fly exactly along
// the aim direction.
func laserRifle(damage float64) *weapons.Definition {
	return &weapons.Definition{
		Type:   weapons.TypeRifle,
		Kind:   weapons.KindHitscan,
		Damage: damage,
		Range:  1000,
		Hitscan: &weapons.HitscanSpec{
			Accuracy:     1.0,
			FalloffStart: 1.0,
			FalloffMin:   1.0,
		},
	}
}

func laserAntiMateriel(damage float64) *weapons.Definition {
	def := laserRifle(damage)
	def.Type = weapons.TypeAntiMateriel
	def.Hitscan.MaxWallPenetrations = 3
	def.Hitscan.MaxPlayerPenetrations = 2
	def.Hitscan.Retention = []float64{1.0, 0.8, 0.65, 0.5}
	return def
}

func testResolver(store *walls.Store) *Resolver {
	return NewResolver(store, rand.New(rand.NewSource(1)))
}

func TestHardWallStopsStandardRound(t *testing.T) {
	store := walls.NewStore(100)
	wall := store.Create(mgl64.Vec2{100, -30}, 10, 60, walls.MaterialConcrete)
	r := testResolver(store)

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	behind := Target{ID: "victim", Pos: mgl64.Vec2{200, 0}, Radius: 14, Alive: true}

	chains := r.Fire(laserRifle(50), shooter, mgl64.Vec2{1, 0}, []Target{behind})
	if len(chains) != 1 {
		t.Fatalf("expected one chain, got %d", len(chains))
	}
	hits := chains[0]
	if len(hits) != 1 {
		t.Fatalf("expected a single wall hit, got %d hits", len(hits))
	}
	hit := hits[0]
	if hit.Kind != TargetWall || hit.TargetID != wall.ID {
		t.Fatalf("expected wall hit, got %+v", hit)
	}
	if hit.Remaining != 0 {
		t.Fatalf("hard wall should absorb the whole budget, remaining %.2f", hit.Remaining)
	}
	if hit.WallDamage == nil || hit.WallDamage.Damage != 50 {
		t.Fatalf("wall should take the full 50 damage, got %+v", hit.WallDamage)
	}
}

func TestRuinedSoftSliceLetsRoundThrough(t *testing.T) {
	store := walls.NewStore(100)
	wall := store.Create(mgl64.Vec2{100, -30}, 10, 60, walls.MaterialWood)
	r := testResolver(store)

	// Drop the struck slice below the wood penetration threshold (35%).
	slice := wall.SliceIndexOf(mgl64.Vec2{105, 0})
	if err := store.Predamage(wall.ID, slice, 70); err != nil {
		t.Fatalf("predamage: %v", err)
	}

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	behind := Target{ID: "victim", Pos: mgl64.Vec2{200, 0}, Radius: 14, Alive: true}

	hits := r.Fire(laserRifle(50), shooter, mgl64.Vec2{1, 0}, []Target{behind})[0]
	if len(hits) != 2 {
		t.Fatalf("expected wall pass-through then player hit, got %d hits", len(hits))
	}
	if hits[0].Kind != TargetWall || hits[1].Kind != TargetPlayer {
		t.Fatalf("hit order wrong: %+v", hits)
	}
	// Crossing costs min(penetrationCost=25, health=30) = 25.
	if hits[0].Damage != 25 || hits[0].Remaining != 25 {
		t.Fatalf("pass-through should cost 25 leaving 25, got dealt %.1f remaining %.1f", hits[0].Damage, hits[0].Remaining)
	}
	if hits[1].TargetID != "victim" || hits[1].Damage != 25 {
		t.Fatalf("player should take the surviving 25 damage, got %+v", hits[1])
	}
	if hits[1].Distance <= hits[0].Distance {
		t.Fatalf("chain must be ordered by ascending distance")
	}
}

func TestVisionOpenSliceCanStillBlock(t *testing.T) {
	store := walls.NewStore(100)
	wall := store.Create(mgl64.Vec2{100, -30}, 10, 60, walls.MaterialWood)
	r := testResolver(store)

	// 45 health: see-through (<=50%) but above the 35% penetration line.
	slice := wall.SliceIndexOf(mgl64.Vec2{105, 0})
	if err := store.Predamage(wall.ID, slice, 55); err != nil {
		t.Fatalf("predamage: %v", err)
	}
	if !wall.VisionOpen(slice) || wall.PenetrationOpen(slice) {
		t.Fatalf("fixture should be vision-open and penetration-closed")
	}

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	behind := Target{ID: "victim", Pos: mgl64.Vec2{200, 0}, Radius: 14, Alive: true}

	hits := r.Fire(laserRifle(50), shooter, mgl64.Vec2{1, 0}, []Target{behind})[0]
	if len(hits) != 1 || hits[0].Kind != TargetWall || hits[0].Remaining != 0 {
		t.Fatalf("see-through slice above penetration threshold must still stop the round: %+v", hits)
	}
}

func TestDestroyedSliceIsSkipped(t *testing.T) {
	store := walls.NewStore(100)
	wall := store.Create(mgl64.Vec2{100, -30}, 10, 60, walls.MaterialConcrete)
	r := testResolver(store)

	slice := wall.SliceIndexOf(mgl64.Vec2{105, 0})
	if err := store.Predamage(wall.ID, slice, 10000); err != nil {
		t.Fatalf("predamage: %v", err)
	}

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	behind := Target{ID: "victim", Pos: mgl64.Vec2{200, 0}, Radius: 14, Alive: true}

	hits := r.Fire(laserRifle(50), shooter, mgl64.Vec2{1, 0}, []Target{behind})[0]
	if len(hits) != 1 || hits[0].Kind != TargetPlayer {
		t.Fatalf("round should sail through the destroyed slice into the player: %+v", hits)
	}
}

func TestAntiMaterielPenetratesWallsThenPlayer(t *testing.T) {
	store := walls.NewStore(100)
	for i := 0; i < 3; i++ {
		store.Create(mgl64.Vec2{100 + float64(i)*60, -30}, 10, 60, walls.MaterialConcrete)
	}
	r := testResolver(store)

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	victim := Target{ID: "victim", Pos: mgl64.Vec2{400, 0}, Radius: 14, Alive: true}

	hits := r.Fire(laserAntiMateriel(180), shooter, mgl64.Vec2{1, 0}, []Target{victim})[0]
	if len(hits) != 4 {
		t.Fatalf("expected 3 wall penetrations plus the player, got %d hits", len(hits))
	}
	for i := 0; i < 3; i++ {
		if hits[i].Kind != TargetWall {
			t.Fatalf("hit %d should be a wall, got %+v", i, hits[i])
		}
	}
	if hits[3].Kind != TargetPlayer || hits[3].TargetID != "victim" {
		t.Fatalf("final hit should be the player, got %+v", hits[3])
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Damage >= hits[i-1].Damage {
			t.Fatalf("damage must strictly decrease along the chain: %.2f then %.2f", hits[i-1].Damage, hits[i].Damage)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Remaining >= hits[i-1].Remaining {
			t.Fatalf("remaining budget must strictly decrease: %.2f then %.2f", hits[i-1].Remaining, hits[i].Remaining)
		}
	}
}

func TestAntiMaterielWallCapStopsFourthWall(t *testing.T) {
	store := walls.NewStore(100)
	for i := 0; i < 5; i++ {
		store.Create(mgl64.Vec2{100 + float64(i)*60, -30}, 10, 60, walls.MaterialConcrete)
	}
	r := testResolver(store)

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	hits := r.Fire(laserAntiMateriel(180), shooter, mgl64.Vec2{1, 0}, nil)[0]
	if len(hits) != 4 {
		t.Fatalf("expected the ray to end at the 4th wall, got %d hits", len(hits))
	}
	last := hits[len(hits)-1]
	if last.Remaining != 0 {
		t.Fatalf("cap-exceeding wall should absorb everything, remaining %.2f", last.Remaining)
	}
}

func TestShotgunFansIndependentPellets(t *testing.T) {
	store := walls.NewStore(100)
	r := testResolver(store)

	def := &weapons.Definition{
		Type:   weapons.TypeShotgun,
		Kind:   weapons.KindHitscan,
		Damage: 96,
		Range:  280,
		Hitscan: &weapons.HitscanSpec{
			Accuracy:     0.7,
			SpreadFactor: 0.5,
			Pellets:      8,
			PelletBuckets: []weapons.RangeBucket{
				{UpTo: 80, Multiplier: 1.0},
				{UpTo: 160, Multiplier: 0.6},
			},
		},
	}

	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	// A target sitting on the shooter: pellets spawn outside the shooter's
	// circle, so only the forward target may be struck, never the firer.
	self := Target{ID: "s", Pos: shooter.Pos, Radius: 14, Alive: true}
	ahead := Target{ID: "ahead", Pos: mgl64.Vec2{60, 0}, Radius: 20, Alive: true}

	chains := r.Fire(def, shooter, mgl64.Vec2{1, 0}, []Target{self, ahead})
	if len(chains) != 8 {
		t.Fatalf("expected 8 pellet chains, got %d", len(chains))
	}
	hitCount := 0
	for _, chain := range chains {
		for _, hit := range chain {
			if hit.TargetID == "s" {
				t.Fatalf("pellet struck the shooter")
			}
			if hit.Kind == TargetPlayer {
				hitCount++
				if math.Abs(hit.Damage-12) > 1e-9 {
					t.Fatalf("pellet inside first bucket should deal 96/8=12, got %.2f", hit.Damage)
				}
			}
		}
	}
	if hitCount == 0 {
		t.Fatalf("at least some pellets should hit the broad forward target")
	}
}

func TestPenetrationLoopIsCapped(t *testing.T) {
	store := walls.NewStore(100)
	r := testResolver(store)

	// A corridor of ruined glass panes, each cheap to cross; an absurd
	// budget would loop forever without the iteration cap.
	for i := 0; i < 40; i++ {
		w := store.Create(mgl64.Vec2{50 + float64(i)*20, -30}, 4, 60, walls.MaterialGlass)
		slice := w.SliceIndexOf(mgl64.Vec2{50 + float64(i)*20, 0})
		if err := store.Predamage(w.ID, slice, 25); err != nil {
			t.Fatalf("predamage: %v", err)
		}
	}

	def := laserRifle(100000)
	def.Range = 100000
	shooter := Shooter{ID: "s", Pos: mgl64.Vec2{0, 0}, Radius: 14}
	hits := r.Fire(def, shooter, mgl64.Vec2{1, 0}, nil)[0]
	if len(hits) > 20 {
		t.Fatalf("penetration loop must stop at the cap, got %d hits", len(hits))
	}
}

func TestContinuousFalloff(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{500, 1},
		{600, 1},
		{800, 0.75},
		{1000, 0.5},
		{2000, 0.5},
	}
	for _, tc := range cases {
		got := continuousMultiplier(tc.distance, 1000, 0.6, 0.5)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("distance %.0f: expected %.2f, got %.4f", tc.distance, tc.want, got)
		}
	}
}

func TestBucketFalloff(t *testing.T) {
	buckets := []weapons.RangeBucket{
		{UpTo: 80, Multiplier: 1.0},
		{UpTo: 160, Multiplier: 0.6},
		{UpTo: 280, Multiplier: 0.25},
	}
	if got := bucketMultiplier(buckets, 50); got != 1.0 {
		t.Fatalf("50 units should score 1.0, got %.2f", got)
	}
	if got := bucketMultiplier(buckets, 200); got != 0.25 {
		t.Fatalf("200 units should score 0.25, got %.2f", got)
	}
	if got := bucketMultiplier(buckets, 400); got != 0 {
		t.Fatalf("past the last bucket should score 0, got %.2f", got)
	}
}

func TestSpreadWidensWhileRunning(t *testing.T) {
	r := testResolver(walls.NewStore(0))
	spec := &weapons.HitscanSpec{Accuracy: 0.8, ADSBonus: 0.15, MovePenalty: 0.15, RunPenalty: 0.2, SpreadFactor: 0.3}

	still := r.spreadAngle(spec, Shooter{})
	ads := r.spreadAngle(spec, Shooter{ADS: true})
	running := r.spreadAngle(spec, Shooter{Moving: true, Running: true})

	if ads >= still {
		t.Fatalf("aiming down sights should tighten spread: ads %.3f still %.3f", ads, still)
	}
	if running <= still {
		t.Fatalf("running should widen spread: running %.3f still %.3f", running, still)
	}
}
