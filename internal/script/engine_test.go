package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMissingDirAndAbsentHooks(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "no-such-dir"), zap.NewNop())
	if err != nil {
		t.Fatalf("missing dir must not be an error: %v", err)
	}
	defer e.Close()

	// No hooks loaded: every call is a no-op and Tick requests no move.
	e.EntityAdded(1, "rat")
	e.EntityRemoved(1, "rat")
	e.EntityDeath(1, "rat", 2, "cat")
	e.CombatHit(2, "cat", 1, "rat", 3)
	if dir, ok := e.Tick(); ok || dir != (protocol.Vec{}) {
		t.Errorf("tick = %+v, %v, want no move", dir, ok)
	}
}

func TestTickDrivenByHooks(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bot.lua", `
seen = 0
function on_entity_added(id, name)
    seen = seen + 1
end
function on_tick()
    return seen, 0
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	// Zero vector from on_tick means "no move".
	if _, ok := e.Tick(); ok {
		t.Error("tick requested a move before any entity appeared")
	}

	e.EntityAdded(1, "rat")
	e.EntityAdded(2, "bat")
	d, ok := e.Tick()
	if !ok || d != (protocol.Vec{X: 2}) {
		t.Errorf("tick = %+v, %v, want {2 0}, true", d, ok)
	}
}

func TestHookErrorContained(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", `
function on_entity_death(victim_id, victim_name, killer_id, killer_name)
    error("boom")
end
function on_tick()
    return 1, 0
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	// The failing hook must not propagate, and the VM stays usable.
	e.EntityDeath(1, "rat", 2, "cat")
	d, ok := e.Tick()
	if !ok || d != (protocol.Vec{X: 1}) {
		t.Errorf("tick after hook error = %+v, %v", d, ok)
	}
}

func TestTickNonNumericReturnIgnored(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad_tick.lua", `
function on_tick()
    return "north", "east"
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if _, ok := e.Tick(); ok {
		t.Error("non-numeric tick return requested a move")
	}
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", `function on_tick( -- not lua`)
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("expected error loading a broken script")
	}
}

func TestNonLuaFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "notes.txt", "this is not a script")
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("non-lua file must be ignored: %v", err)
	}
	e.Close()
}
