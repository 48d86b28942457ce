package main

import (
	"breachpoint/server/internal/sim"
	"breachpoint/server/internal/walls"
)

type playerSnapshot struct {
	ID     string  `json:"id"`
	Team   int     `json:"team"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Alive  bool    `json:"alive"`
}

type wallSnapshot struct {
	ID          string    `json:"id"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Material    string    `json:"material"`
	SliceHealth []float64 `json:"sliceHealth"`
}

type joinResponse struct {
	ID       string           `json:"id"`
	TickRate int              `json:"tickRate"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Players  []playerSnapshot `json:"players"`
	Walls    []wallSnapshot   `json:"walls"`
}

type stateMessage struct {
	Type       string           `json:"type"`
	Tick       uint64           `json:"t"`
	ServerTime int64            `json:"serverTime"`
	Players    []playerSnapshot `json:"players"`
	Events     *wireEvents      `json:"events,omitempty"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// clientMessage is the single inbound frame shape; Type selects which
// fields matter.
type clientMessage struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Weapon string  `json:"weapon"`
	Charge float64 `json:"charge"`
	ADS    bool    `json:"ads,omitempty"`
	WallID string  `json:"wallId"`
	Slice  int     `json:"slice"`
	Amount float64 `json:"amount"`
	SentAt int64   `json:"sentAt"`
}

type wireShot struct {
	ShooterID string  `json:"shooterId"`
	Weapon    string  `json:"weapon"`
	Hits      int     `json:"hits"`
	Damage    float64 `json:"damage"`
}

type wireRejection struct {
	ActorID string `json:"actorId"`
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// wireEvents is the broadcastable subset of one tick's StepOutput.
type wireEvents struct {
	Shots             []wireShot              `json:"shots,omitempty"`
	WallDamage        []sim.WallDamageEvent   `json:"wallDamage,omitempty"`
	WallRepairs       []sim.WallRepairEvent   `json:"wallRepairs,omitempty"`
	PlayerDamage      []sim.PlayerDamageEvent `json:"playerDamage,omitempty"`
	ProjectileSpawns  []sim.ProjectileEvent   `json:"projectileSpawns,omitempty"`
	ProjectileMoves   []sim.ProjectileEvent   `json:"projectileMoves,omitempty"`
	ProjectileRemoved []string                `json:"projectileRemoved,omitempty"`
	Detonations       []sim.DetonationEvent   `json:"detonations,omitempty"`
	Rejections        []wireRejection         `json:"rejections,omitempty"`
}

func toWireEvents(out sim.StepOutput) *wireEvents {
	events := &wireEvents{
		WallDamage:        out.WallDamage,
		WallRepairs:       out.WallRepairs,
		PlayerDamage:      out.PlayerDamage,
		ProjectileSpawns:  out.ProjectileSpawns,
		ProjectileMoves:   out.ProjectileMoves,
		ProjectileRemoved: out.ProjectileRemoved,
		Detonations:       out.Detonations,
	}
	for _, shot := range out.Shots {
		hits := 0
		damage := 0.0
		for _, chain := range shot.Chains {
			hits += len(chain)
			for _, hit := range chain {
				damage += hit.Damage
			}
		}
		events.Shots = append(events.Shots, wireShot{
			ShooterID: shot.ShooterID,
			Weapon:    shot.Weapon,
			Hits:      hits,
			Damage:    damage,
		})
	}
	for _, rej := range out.Rejections {
		events.Rejections = append(events.Rejections, wireRejection{
			ActorID: rej.Command.ActorID,
			Command: rej.Command.Kind.String(),
			Reason:  rej.Err.Error(),
		})
	}
	if events.empty() {
		return nil
	}
	return events
}

func (e *wireEvents) empty() bool {
	return len(e.Shots) == 0 && len(e.WallDamage) == 0 && len(e.WallRepairs) == 0 &&
		len(e.PlayerDamage) == 0 && len(e.ProjectileSpawns) == 0 && len(e.ProjectileMoves) == 0 &&
		len(e.ProjectileRemoved) == 0 && len(e.Detonations) == 0 && len(e.Rejections) == 0
}

func snapshotPlayers(players []*sim.Player) []playerSnapshot {
	out := make([]playerSnapshot, 0, len(players))
	for _, p := range players {
		out = append(out, playerSnapshot{
			ID:     p.ID,
			Team:   p.Team,
			X:      p.Pos.X(),
			Y:      p.Pos.Y(),
			Health: p.Health,
			Alive:  p.Alive(),
		})
	}
	return out
}

func snapshotWalls(store *walls.Store) []wallSnapshot {
	list := store.Walls()
	out := make([]wallSnapshot, 0, len(list))
	for _, w := range list {
		health := make([]float64, walls.SliceCount)
		for i := range health {
			health[i] = w.SliceHealth(i)
		}
		out = append(out, wallSnapshot{
			ID:          w.ID,
			X:           w.Bounds.X,
			Y:           w.Bounds.Y,
			Width:       w.Bounds.Width,
			Height:      w.Bounds.Height,
			Material:    w.Material.String(),
			SliceHealth: health,
		})
	}
	return out
}
