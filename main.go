package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"breachpoint/server/internal/config"
	"breachpoint/server/internal/sim"
	"breachpoint/server/internal/weapons"
	"breachpoint/server/logging"
	"breachpoint/server/logging/sinks"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		worldFile  = flag.String("world", "", "world YAML file (optional)")
		weaponFile = flag.String("weapons", "", "weapon tuning YAML file (optional)")
		logSink    = flag.String("log", "console", "log sink: console or json")
	)
	flag.Parse()

	cfg := config.DefaultWorldConfig()
	if *worldFile != "" {
		loaded, err := config.Load(*worldFile)
		if err != nil {
			log.Fatalf("world config: %v", err)
		}
		cfg = loaded
	}

	catalog := weapons.DefaultCatalog()
	weaponPath := *weaponFile
	if weaponPath == "" {
		weaponPath = cfg.WeaponFile
	}
	if weaponPath != "" {
		loaded, err := weapons.Load(weaponPath)
		if err != nil {
			log.Fatalf("weapon catalog: %v", err)
		}
		catalog = loaded
	}

	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = []string{*logSink}
	var named []logging.NamedSink
	switch *logSink {
	case "json":
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(os.Stdout, logCfg.JSON.FlushInterval)})
	default:
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsoleSink(os.Stderr, logCfg.Console)})
	}
	router, err := logging.NewRouter(nil, logCfg, named)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	world, err := sim.NewWorld(cfg, catalog, router)
	if err != nil {
		log.Fatalf("world: %v", err)
	}

	hub := newHub(world, cfg.TickRate, router)
	stop := make(chan struct{})
	go hub.RunSimulation(context.Background(), stop)
	defer close(stop)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		tick, wallCount, players := hub.DiagnosticsSnapshot()
		stats := router.Stats()
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Tick       uint64              `json:"tick"`
			TickRate   int                 `json:"tickRate"`
			Walls      int                 `json:"walls"`
			Players    []diagnosticsPlayer `json:"players"`
			Heartbeat  int64               `json:"heartbeatMillis"`
			Events     uint64              `json:"eventsTotal"`
			Dropped    uint64              `json:"eventsDropped"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Tick:       tick,
			TickRate:   cfg.TickRate,
			Walls:      wallCount,
			Players:    players,
			Heartbeat:  heartbeatInterval.Milliseconds(),
			Events:     stats.EventsTotal,
			Dropped:    stats.DroppedTotal,
		}

		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	http.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", playerID, err)
			return
		}

		sub, ok := hub.Subscribe(playerID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		readLoop(hub, sub, playerID, conn)
	})

	log.Printf("server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// readLoop translates inbound frames into hub calls until the socket dies.
func readLoop(hub *Hub, sub *subscriber, playerID string, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(playerID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "input":
			if !hub.UpdateIntent(playerID, msg.DX, msg.DY) {
				log.Printf("input ignored for unknown player %s", playerID)
			}
		case "fire", "throw", "reload":
			cmd, err := combatCommand(playerID, msg)
			if err != nil {
				log.Printf("discarding %s from %s: %v", msg.Type, playerID, err)
				continue
			}
			hub.QueueCommand(cmd)
		case "repair":
			hub.QueueCommand(sim.Command{
				Kind:    sim.CommandRepair,
				ActorID: playerID,
				WallID:  msg.WallID,
				Slice:   msg.Slice,
				Amount:  msg.Amount,
			})
		case "heartbeat":
			now := time.Now()
			rtt, ok := hub.UpdateHeartbeat(playerID, now, msg.SentAt)
			if !ok {
				continue
			}
			ack := heartbeatMessage{
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			data, err := json.Marshal(ack)
			if err != nil {
				log.Printf("failed to marshal heartbeat ack for %s: %v", playerID, err)
				continue
			}
			sub.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				sub.mu.Unlock()
				hub.Disconnect(playerID)
				return
			}
			sub.mu.Unlock()
		default:
			log.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}

// combatCommand maps a fire/throw/reload frame to a typed command.
func combatCommand(playerID string, msg clientMessage) (sim.Command, error) {
	weapon, err := weapons.ParseType(msg.Weapon)
	if err != nil {
		return sim.Command{}, err
	}
	cmd := sim.Command{
		ActorID: playerID,
		Weapon:  weapon,
		Charge:  msg.Charge,
		ADS:     msg.ADS,
	}
	cmd.Aim[0] = msg.DX
	cmd.Aim[1] = msg.DY
	switch msg.Type {
	case "throw":
		cmd.Kind = sim.CommandThrow
	case "reload":
		cmd.Kind = sim.CommandReload
	default:
		cmd.Kind = sim.CommandFire
	}
	return cmd, nil
}
