package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"breachpoint/server/internal/sim"
	"breachpoint/server/internal/weapons"
	"breachpoint/server/logging"
)

const (
	writeWait         = 10 * time.Second
	moveSpeed         = 160.0 // pixels per second
	runThreshold      = 0.9   // intent magnitude above which the player counts as running
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

var defaultLoadout = []weapons.Type{
	weapons.TypeRifle,
	weapons.TypeShotgun,
	weapons.TypeGrenade,
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type clientState struct {
	intent        mgl64.Vec2
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type diagnosticsPlayer struct {
	ID            string  `json:"id"`
	Health        float64 `json:"health"`
	LastHeartbeat int64   `json:"lastHeartbeat"`
	RTTMillis     int64   `json:"rttMillis"`
}

// Hub owns the subscriber set and the tick loop. All world access is
// serialized under its mutex; the simulation itself is single-threaded.
type Hub struct {
	mu          sync.Mutex
	world       *sim.World
	clients     map[string]*clientState
	subscribers map[string]*subscriber
	commands    []sim.Command
	nextID      atomic.Uint64
	tickRate    int
	publisher   logging.Publisher
}

func newHub(world *sim.World, tickRate int, publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		world:       world,
		clients:     make(map[string]*clientState),
		subscribers: make(map[string]*subscriber),
		tickRate:    tickRate,
		publisher:   publisher,
	}
}

// Join spawns a player with the default loadout and returns the initial
// world snapshot.
func (h *Hub) Join() joinResponse {
	id := h.nextID.Add(1)
	playerID := fmt.Sprintf("player-%d", id)

	h.mu.Lock()
	bounds := h.world.Bounds()
	spawn := mgl64.Vec2{bounds.Width * 0.1, bounds.Height * 0.5}
	team := int(id % 2)
	h.world.AddPlayer(playerID, spawn, team, defaultLoadout...)
	h.clients[playerID] = &clientState{lastHeartbeat: time.Now()}
	players := snapshotPlayers(h.world.Players())
	wallList := snapshotWalls(h.world.Walls())
	tick := h.world.Tick()
	h.mu.Unlock()

	h.publisher.Publish(context.Background(), logging.Event{
		Type:     "world.player_joined",
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorld,
	})

	return joinResponse{
		ID:       playerID,
		TickRate: h.tickRate,
		Width:    bounds.Width,
		Height:   bounds.Height,
		Players:  players,
		Walls:    wallList,
	}
}

// Subscribe attaches a websocket to an existing player.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[playerID]
	if !ok {
		return nil, false
	}
	client.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub, true
}

// Disconnect removes the player and closes their socket.
func (h *Hub) Disconnect(playerID string) {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	if subOK {
		delete(h.subscribers, playerID)
	}
	delete(h.clients, playerID)
	h.world.RemovePlayer(playerID)
	tick := h.world.Tick()
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	h.publisher.Publish(context.Background(), logging.Event{
		Type:     "world.player_left",
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorld,
	})
}

// UpdateIntent stores a movement intent applied on the next tick.
func (h *Hub) UpdateIntent(playerID string, dx, dy float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[playerID]
	if !ok {
		return false
	}
	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}
	client.intent = mgl64.Vec2{dx, dy}
	return true
}

// QueueCommand enqueues a combat command for the next tick.
func (h *Hub) QueueCommand(cmd sim.Command) {
	h.mu.Lock()
	h.commands = append(h.commands, cmd)
	h.mu.Unlock()
}

// UpdateHeartbeat refreshes liveness and computes the round trip time.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[playerID]
	if !ok {
		return 0, false
	}
	client.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			client.lastRTT = rtt
		}
	}
	return client.lastRTT, true
}

// advance runs one tick: heartbeat reaping, movement intents, then the
// combat step.
func (h *Hub) advance(ctx context.Context, now time.Time, dt float64) (stateMessage, []*subscriber) {
	h.mu.Lock()

	toClose := make([]*subscriber, 0)
	for id, client := range h.clients {
		if now.Sub(client.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			delete(h.clients, id)
			h.world.RemovePlayer(id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
			continue
		}
		h.applyIntent(id, client, dt)
	}

	commands := h.commands
	h.commands = nil
	out := h.world.Step(ctx, now, dt, commands)
	msg := stateMessage{
		Type:       "state",
		Tick:       out.Tick,
		ServerTime: now.UnixMilli(),
		Players:    snapshotPlayers(h.world.Players()),
		Events:     toWireEvents(out),
	}
	h.mu.Unlock()

	return msg, toClose
}

// applyIntent moves the player and updates the stance flags ballistics
// reads for spread.
func (h *Hub) applyIntent(id string, client *clientState, dt float64) {
	player, ok := h.world.Player(id)
	if !ok {
		return
	}
	speed := client.intent.Len()
	player.Moving = speed > 0
	player.Running = speed > runThreshold
	if speed == 0 || !player.Alive() {
		return
	}

	dir := client.intent.Mul(1 / speed)
	pos := player.Pos.Add(dir.Mul(moveSpeed * dt * math.Min(speed, 1)))
	bounds := h.world.Bounds()
	player.Pos = mgl64.Vec2{
		math.Max(bounds.X+player.Radius, math.Min(bounds.MaxX()-player.Radius, pos.X())),
		math.Max(bounds.Y+player.Radius, math.Min(bounds.MaxY()-player.Radius, pos.Y())),
	}
}

// RunSimulation drives the fixed tick loop until stop closes.
func (h *Hub) RunSimulation(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(h.tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.tickRate)
			}
			last = now

			msg, toClose := h.advance(ctx, now, dt)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(msg)
		}
	}
}

func (h *Hub) broadcastState(msg stateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// DiagnosticsSnapshot reports liveness and world counts for /diagnostics.
func (h *Hub) DiagnosticsSnapshot() (uint64, int, []diagnosticsPlayer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.clients))
	for id, client := range h.clients {
		entry := diagnosticsPlayer{
			ID:            id,
			LastHeartbeat: client.lastHeartbeat.UnixMilli(),
			RTTMillis:     client.lastRTT.Milliseconds(),
		}
		if p, ok := h.world.Player(id); ok {
			entry.Health = p.Health
		}
		players = append(players, entry)
	}
	return h.world.Tick(), len(h.world.Walls().Walls()), players
}
