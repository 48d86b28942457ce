package sim

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"breachpoint/server/internal/weapons"
)

// Typed command failures surfaced through StepOutput rejections.
var (
	ErrUnknownPlayer   = errors.New("sim: unknown player")
	ErrPlayerDead      = errors.New("sim: player is dead")
	ErrWrongWeaponKind = errors.New("sim: weapon kind cannot serve this command")
	ErrZeroAim         = errors.New("sim: aim vector has no direction")
)

type CommandKind int

const (
	CommandFire CommandKind = iota
	CommandThrow
	CommandReload
	CommandRepair
)

var commandNames = [...]string{
	CommandFire:   "fire",
	CommandThrow:  "throw",
	CommandReload: "reload",
	CommandRepair: "repair",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[k]
}

// Command is one queued player intent, applied in arrival order during the
// next Step.
type Command struct {
	Kind    CommandKind
	ActorID string
	Weapon  weapons.Type

	// Fire and throw.
	Aim    mgl64.Vec2
	Charge float64
	ADS    bool

	// Repair. Slice -1 repairs the whole wall.
	WallID string
	Slice  int
	Amount float64
}

// Rejection reports a command the world refused, with the typed cause.
type Rejection struct {
	Command Command
	Err     error
}
