// Package sim owns the authoritative combat state: players, destructible
// walls, weapon state machines, live projectiles and the explosion queue.
// The world advances only through Step, one fixed tick at a time.
package sim

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"breachpoint/server/internal/ballistics"
	"breachpoint/server/internal/config"
	"breachpoint/server/internal/explosions"
	"breachpoint/server/internal/geom"
	"breachpoint/server/internal/physics"
	"breachpoint/server/internal/walls"
	"breachpoint/server/internal/weapons"
	"breachpoint/server/logging"
	"breachpoint/server/logging/combat"
)

// World is the authoritative simulation. It is not safe for concurrent
// use; the hub serializes all access through its tick loop.
type World struct {
	cfg      config.WorldConfig
	bounds   geom.Rect
	tick     uint64
	tickRate int

	players     map[string]*Player
	playerOrder []string

	walls      *walls.Store
	catalog    weapons.Catalog
	resolver   *ballistics.Resolver
	engine     *physics.Engine
	explosions *explosions.Resolver
	scheduler  *weapons.Scheduler

	publisher logging.Publisher
}

// NewWorld builds a world from a normalized config. Authored walls are
// created and pre-damaged before the first tick.
func NewWorld(cfg config.WorldConfig, catalog weapons.Catalog, publisher logging.Publisher) (*World, error) {
	cfg = cfg.Normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if catalog == nil {
		catalog = weapons.DefaultCatalog()
	}

	store := walls.NewStore(cfg.BaseSliceHealth)
	bounds := geom.Rect{Width: cfg.Width, Height: cfg.Height}

	w := &World{
		cfg:        cfg,
		bounds:     bounds,
		tickRate:   cfg.TickRate,
		players:    make(map[string]*Player),
		walls:      store,
		catalog:    catalog,
		resolver:   ballistics.NewResolver(store, NewDeterministicRNG(cfg.Seed, "ballistics.spread")),
		engine:     physics.NewEngine(store, bounds, physics.DefaultTuning()),
		explosions: explosions.NewResolver(store),
		scheduler:  weapons.NewScheduler(),
		publisher:  publisher,
	}

	for i, wallCfg := range cfg.Walls {
		material, err := walls.ParseMaterial(wallCfg.Material)
		if err != nil {
			return nil, errors.Wrapf(err, "wall %d", i)
		}
		wall := store.Create(mgl64.Vec2{wallCfg.X, wallCfg.Y}, wallCfg.Width, wallCfg.Height, material)
		for _, pd := range wallCfg.Predamage {
			if err := store.Predamage(wall.ID, pd.Slice, pd.Damage); err != nil {
				return nil, errors.Wrapf(err, "wall %d predamage", i)
			}
		}
	}

	return w, nil
}

// Walls exposes the wall store for snapshotting.
func (w *World) Walls() *walls.Store { return w.walls }

// Tick reports the next tick Step will run.
func (w *World) Tick() uint64 { return w.tick }

// Bounds reports the playable map rect.
func (w *World) Bounds() geom.Rect { return w.bounds }

// AddPlayer spawns a combatant with the given loadout.
func (w *World) AddPlayer(id string, pos mgl64.Vec2, team int, loadout ...weapons.Type) *Player {
	if _, exists := w.players[id]; exists {
		return w.players[id]
	}
	p := &Player{
		ID:        id,
		Team:      team,
		Pos:       pos,
		Radius:    defaultPlayerRadius,
		Health:    100,
		MaxHealth: 100,
		Loadout:   weapons.NewLoadout(w.catalog, loadout...),
	}
	w.players[id] = p
	w.playerOrder = append(w.playerOrder, id)
	return p
}

// RemovePlayer drops a combatant; their live projectiles keep flying.
func (w *World) RemovePlayer(id string) {
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	for i, pid := range w.playerOrder {
		if pid == id {
			w.playerOrder = append(w.playerOrder[:i], w.playerOrder[i+1:]...)
			break
		}
	}
}

// Player looks up a combatant.
func (w *World) Player(id string) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Players returns combatants in join order.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.playerOrder))
	for _, id := range w.playerOrder {
		out = append(out, w.players[id])
	}
	return out
}

// Step advances the world one tick: deferred completions, queued commands,
// projectile motion, then the explosion queue. The returned output lists
// every externally visible consequence in resolution order.
func (w *World) Step(ctx context.Context, now time.Time, dt float64, commands []Command) StepOutput {
	out := StepOutput{Tick: w.tick}

	w.applyDeferred()

	for _, cmd := range commands {
		w.applyCommand(ctx, cmd, now, &out)
	}

	advance := w.engine.Advance(now, dt)
	for _, p := range advance.Moved {
		out.ProjectileMoves = append(out.ProjectileMoves, projectileEvent(p))
	}
	out.ProjectileRemoved = append(out.ProjectileRemoved, advance.Removed...)
	for _, det := range advance.Detonations {
		w.explosions.Enqueue(explosions.Event{
			ID:       det.ID,
			SourceID: det.OwnerID,
			Pos:      det.Pos,
			Radius:   det.Radius,
			Damage:   det.Damage,
			Curve:    det.Curve,
			At:       det.At,
		})
	}

	w.resolveExplosions(ctx, advance.Detonations, &out)

	w.tick++
	return out
}

// applyDeferred drains scheduler completions due this tick. Entries whose
// owner or weapon vanished are dropped silently.
func (w *World) applyDeferred() {
	for _, d := range w.scheduler.Due(w.tick) {
		player, ok := w.players[d.OwnerID]
		if !ok {
			continue
		}
		state, err := player.Loadout.Weapon(d.Weapon)
		if err != nil {
			continue
		}
		switch d.Kind {
		case weapons.DeferredReloadComplete:
			state.FinishReload()
		case weapons.DeferredOverheatClear:
			state.ClearOverheat()
		}
	}
}

func (w *World) applyCommand(ctx context.Context, cmd Command, now time.Time, out *StepOutput) {
	player, ok := w.players[cmd.ActorID]
	if !ok {
		out.Rejections = append(out.Rejections, Rejection{Command: cmd, Err: ErrUnknownPlayer})
		return
	}
	if !player.Alive() {
		out.Rejections = append(out.Rejections, Rejection{Command: cmd, Err: ErrPlayerDead})
		return
	}

	var err error
	switch cmd.Kind {
	case CommandFire:
		err = w.handleFire(ctx, player, cmd, now, out)
	case CommandThrow:
		err = w.handleThrow(ctx, player, cmd, now, out)
	case CommandReload:
		err = w.handleReload(player, cmd)
	case CommandRepair:
		err = w.handleRepair(player, cmd, out)
	default:
		err = errors.Errorf("sim: unknown command kind %d", cmd.Kind)
	}
	if err != nil {
		out.Rejections = append(out.Rejections, Rejection{Command: cmd, Err: err})
	}
}

func (w *World) handleFire(ctx context.Context, player *Player, cmd Command, now time.Time, out *StepOutput) error {
	state, err := player.Loadout.Weapon(cmd.Weapon)
	if err != nil {
		return err
	}
	def := state.Def

	if def.Kind == weapons.KindThrown {
		// A bare fire on a thrown weapon is a full-charge throw.
		throwCmd := cmd
		throwCmd.Charge = 1
		return w.handleThrow(ctx, player, throwCmd, now, out)
	}
	if cmd.Aim.Len() == 0 {
		return ErrZeroAim
	}
	if err := state.CheckFire(now); err != nil {
		return err
	}
	player.ADS = cmd.ADS

	switch def.Kind {
	case weapons.KindHitscan:
		w.fireHitscan(ctx, player, state, cmd, now, out)
	case weapons.KindLaunched:
		w.fireLaunched(ctx, player, state, cmd, now, out)
	default:
		return ErrWrongWeaponKind
	}
	return nil
}

func (w *World) fireHitscan(ctx context.Context, player *Player, state *weapons.State, cmd Command, now time.Time, out *StepOutput) {
	def := state.Def
	shooter := ballistics.Shooter{
		ID:      player.ID,
		Pos:     player.Pos,
		Radius:  player.Radius,
		ADS:     player.ADS,
		Moving:  player.Moving,
		Running: player.Running,
	}
	chains := w.resolver.Fire(def, shooter, cmd.Aim, w.ballisticTargets())
	w.recordShot(ctx, player, state, now)

	wallsPassed := 0
	totalDamage := 0.0
	hitCount := 0
	for _, chain := range chains {
		for _, hit := range chain {
			hitCount++
			totalDamage += hit.Damage
			switch hit.Kind {
			case ballistics.TargetWall:
				wallsPassed++
				if hit.WallDamage != nil {
					w.recordWallDamage(ctx, player.ID, *hit.WallDamage, DamageHitscan, out)
				}
			case ballistics.TargetPlayer:
				w.damagePlayer(ctx, player.ID, hit.TargetID, hit.Damage, DamageHitscan, def.Type.String(), out)
			}
		}
	}

	out.Shots = append(out.Shots, Shot{ShooterID: player.ID, Weapon: def.Type.String(), Chains: chains})
	combat.ShotFired(ctx, w.publisher, w.tick, playerRef(player.ID), def.Type.String(), hitCount, wallsPassed, totalDamage)
}

func (w *World) fireLaunched(ctx context.Context, player *Player, state *weapons.State, cmd Command, now time.Time, out *StepOutput) {
	def := state.Def
	w.recordShot(ctx, player, state, now)

	kind, _ := physics.KindForWeapon(def.Type)
	aim := cmd.Aim.Normalize()
	params := physics.SpawnParams{
		Kind:    kind,
		OwnerID: player.ID,
		Pos:     player.Pos.Add(aim.Mul(player.Radius + 1)),
		Vel:     aim.Mul(def.Launch.Speed),
		Radius:  def.Launch.Radius,
		Range:   def.Range,
		Gravity: def.Launch.Gravity,
		Now:     now,
	}
	if def.Explosive != nil {
		params.Damage = def.Explosive.Damage
		params.ExplosionRadius = def.Explosive.Radius
		params.Curve = def.Explosive.Curve
		params.Fuse = def.Explosive.Fuse
	}
	p := w.engine.Spawn(params)
	out.ProjectileSpawns = append(out.ProjectileSpawns, projectileEvent(p))
}

func (w *World) handleThrow(ctx context.Context, player *Player, cmd Command, now time.Time, out *StepOutput) error {
	if cmd.Charge < 0 || cmd.Charge > 1 {
		return weapons.ErrInvalidCharge
	}
	if cmd.Aim.Len() == 0 {
		return ErrZeroAim
	}
	state, err := player.Loadout.Weapon(cmd.Weapon)
	if err != nil {
		return err
	}
	def := state.Def
	if def.Kind != weapons.KindThrown || def.Launch == nil {
		return ErrWrongWeaponKind
	}
	if err := state.CheckFire(now); err != nil {
		return err
	}
	w.recordShot(ctx, player, state, now)

	kind, _ := physics.KindForWeapon(def.Type)
	aim := cmd.Aim.Normalize()
	speed := def.Launch.MinThrowSpeed + cmd.Charge*(def.Launch.Speed-def.Launch.MinThrowSpeed)
	params := physics.SpawnParams{
		Kind:    kind,
		OwnerID: player.ID,
		Pos:     player.Pos.Add(aim.Mul(player.Radius + 1)),
		Vel:     aim.Mul(speed),
		Radius:  def.Launch.Radius,
		Charge:  cmd.Charge,
		Now:     now,
	}
	if def.Explosive != nil {
		params.Damage = def.Explosive.Damage
		params.ExplosionRadius = def.Explosive.Radius
		params.Curve = def.Explosive.Curve
		params.Fuse = def.Explosive.Fuse
	}
	p := w.engine.Spawn(params)
	out.ProjectileSpawns = append(out.ProjectileSpawns, projectileEvent(p))
	return nil
}

func (w *World) handleReload(player *Player, cmd Command) error {
	state, err := player.Loadout.Weapon(cmd.Weapon)
	if err != nil {
		return err
	}
	if err := state.BeginReload(); err != nil {
		return err
	}
	w.scheduler.Schedule(w.tick+w.durationTicks(state.Def.ReloadTime), player.ID, cmd.Weapon, weapons.DeferredReloadComplete)
	return nil
}

func (w *World) handleRepair(player *Player, cmd Command, out *StepOutput) error {
	if err := w.walls.Repair(cmd.WallID, cmd.Slice, cmd.Amount); err != nil {
		return err
	}
	out.WallRepairs = append(out.WallRepairs, WallRepairEvent{
		WallID:   cmd.WallID,
		Slice:    cmd.Slice,
		Amount:   cmd.Amount,
		SourceID: player.ID,
	})
	return nil
}

// recordShot consumes ammo and heat; an overheat trip schedules the
// cooldown completion.
func (w *World) recordShot(ctx context.Context, player *Player, state *weapons.State, now time.Time) {
	if state.RecordShot(now) {
		w.scheduler.Schedule(w.tick+w.durationTicks(state.Def.CooldownTime), player.ID, state.Def.Type, weapons.DeferredOverheatClear)
		combat.WeaponOverheated(ctx, w.publisher, w.tick, playerRef(player.ID), state.Def.Type.String())
	}
}

// resolveExplosions drains the detonation queue and applies radius damage.
func (w *World) resolveExplosions(ctx context.Context, detonations []physics.Detonation, out *StepOutput) {
	results := w.explosions.Resolve(w.explosionTargets())
	detByID := make(map[string]physics.Detonation, len(detonations))
	for _, det := range detonations {
		detByID[det.ID] = det
	}

	for _, res := range results {
		ev := res.Event
		for _, dmg := range res.WallDamage {
			w.recordWallDamage(ctx, ev.SourceID, dmg, DamageExplosion, out)
		}
		for _, hit := range res.PlayerHits {
			w.damagePlayer(ctx, ev.SourceID, hit.TargetID, hit.Damage, DamageExplosion, "", out)
		}

		kind := ""
		if det, ok := detByID[ev.ID]; ok {
			kind = det.Kind.String()
		}
		out.Detonations = append(out.Detonations, DetonationEvent{
			ID:         ev.ID,
			Kind:       kind,
			OwnerID:    ev.SourceID,
			Pos:        ev.Pos,
			Radius:     ev.Radius,
			Damage:     ev.Damage,
			PlayersHit: len(res.PlayerHits),
			SlicesHit:  len(res.WallDamage),
		})
		combat.ProjectileDetonated(ctx, w.publisher, w.tick, playerRef(ev.SourceID), ev.ID, kind, ev.Radius, ev.Damage, len(res.PlayerHits), len(res.WallDamage))
	}
}

func (w *World) recordWallDamage(ctx context.Context, sourceID string, dmg walls.SliceDamage, cause string, out *StepOutput) {
	out.WallDamage = append(out.WallDamage, WallDamageEvent{
		WallID:    dmg.WallID,
		Slice:     dmg.Slice,
		Damage:    dmg.Damage,
		NewHealth: dmg.NewHealth,
		Destroyed: dmg.Destroyed,
		Cause:     cause,
		SourceID:  sourceID,
	})
	if dmg.Destroyed {
		material := ""
		if wall, ok := w.walls.Get(dmg.WallID); ok {
			material = wall.Material.String()
		}
		combat.WallSliceDestroyed(ctx, w.publisher, w.tick, playerRef(sourceID), dmg.WallID, dmg.Slice, material, cause)
	}
}

func (w *World) damagePlayer(ctx context.Context, sourceID, targetID string, damage float64, damageType, weapon string, out *StepOutput) {
	target, ok := w.players[targetID]
	if !ok || !target.Alive() {
		return
	}
	killed := target.applyDamage(damage)
	out.PlayerDamage = append(out.PlayerDamage, PlayerDamageEvent{
		TargetID:   targetID,
		SourceID:   sourceID,
		Damage:     damage,
		Health:     target.Health,
		Killed:     killed,
		DamageType: damageType,
		Weapon:     weapon,
	})
	combat.PlayerDamaged(ctx, w.publisher, w.tick, playerRef(sourceID), playerRef(targetID), damage, target.Health, damageType, weapon)
	if killed {
		combat.PlayerKilled(ctx, w.publisher, w.tick, playerRef(sourceID), playerRef(targetID), damageType)
	}
}

func (w *World) ballisticTargets() []ballistics.Target {
	targets := make([]ballistics.Target, 0, len(w.playerOrder))
	for _, id := range w.playerOrder {
		p := w.players[id]
		targets = append(targets, ballistics.Target{
			ID:     p.ID,
			Pos:    p.Pos,
			Radius: p.Radius,
			Team:   p.Team,
			Alive:  p.Alive(),
		})
	}
	return targets
}

func (w *World) explosionTargets() []explosions.Target {
	targets := make([]explosions.Target, 0, len(w.playerOrder))
	for _, id := range w.playerOrder {
		p := w.players[id]
		targets = append(targets, explosions.Target{
			ID:     p.ID,
			Pos:    p.Pos,
			Radius: p.Radius,
			Alive:  p.Alive(),
		})
	}
	return targets
}

// durationTicks converts a duration to whole ticks, rounding up so a
// completion never lands early.
func (w *World) durationTicks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	ticks := math.Ceil(d.Seconds() * float64(w.tickRate))
	return uint64(ticks)
}

func projectileEvent(p *physics.Projectile) ProjectileEvent {
	return ProjectileEvent{
		ID:      p.ID,
		Kind:    p.Kind.String(),
		OwnerID: p.OwnerID,
		Pos:     p.Pos,
		Vel:     p.Vel,
	}
}

func playerRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}
