package sinks

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"breachpoint/server/logging"
)

func TestMemorySinkCapturesCopies(t *testing.T) {
	sink := NewMemorySink()

	event := logging.Event{
		Type:  "combat.shot_fired",
		Tick:  3,
		Extra: map[string]any{"weapon": "rifle"},
	}
	if err := sink.Write(event); err != nil {
		t.Fatalf("Write: %v", err)
	}
	event.Extra["weapon"] = "mutated"

	got := sink.Events()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Extra["weapon"] != "rifle" {
		t.Fatal("stored event should not share maps with the caller")
	}

	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatal("reset should clear the buffer")
	}
}

func TestJSONSinkEmitsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)

	err := sink.Write(logging.Event{
		Type: "combat.player_killed",
		Tick: 42,
		Time: time.Unix(100, 0).UTC(),
		Actor: logging.EntityRef{
			ID:   "p1",
			Kind: logging.EntityKindPlayer,
		},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected a single line, got %q", out)
	}
	for _, want := range []string{"combat.player_killed", `"tick":42`, `"p1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestConsoleSinkFormatsActorAndTargets(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})

	err := sink.Write(logging.Event{
		Type:     "combat.player_damaged",
		Tick:     7,
		Severity: logging.SeverityWarn,
		Actor:    logging.EntityRef{ID: "p1", Kind: logging.EntityKindPlayer},
		Targets:  []logging.EntityRef{{ID: "p2", Kind: logging.EntityKindPlayer}},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"combat.player_damaged", "tick=7", "player:p1", "severity=warn", "targets=player:p2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}
