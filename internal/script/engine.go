// Package script runs optional Lua plugins against client events: entity
// add/remove, combat, death, and a per-tick hook that may steer the player
// (the usual use is headless bots and soak tests).
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghack/client/internal/protocol"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook function names looked up in the Lua globals. Absent hooks are
// skipped; a hook error is logged and never fatal.
const (
	hookEntityAdded   = "on_entity_added"
	hookEntityRemoved = "on_entity_removed"
	hookEntityDeath   = "on_entity_death"
	hookCombatHit     = "on_combat_hit"
	hookTick          = "on_tick"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only — all
// hooks fire from the client's dispatch loop.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// A missing directory is not an error; the engine just has no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scripts dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// call invokes a global hook if it exists, returning nret values. Hook
// failures are contained here.
func (e *Engine) call(name string, nret int, args ...lua.LValue) []lua.LValue {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		e.log.Warn("script hook failed", zap.String("hook", name), zap.Error(err))
		return nil
	}
	rets := make([]lua.LValue, nret)
	for i := nret - 1; i >= 0; i-- {
		rets[i] = e.vm.Get(-1)
		e.vm.Pop(1)
	}
	return rets
}

func (e *Engine) EntityAdded(id int32, name string) {
	e.call(hookEntityAdded, 0, lua.LNumber(id), lua.LString(name))
}

func (e *Engine) EntityRemoved(id int32, name string) {
	e.call(hookEntityRemoved, 0, lua.LNumber(id), lua.LString(name))
}

func (e *Engine) EntityDeath(victimID int32, victimName string, killerID int32, killerName string) {
	e.call(hookEntityDeath, 0,
		lua.LNumber(victimID), lua.LString(victimName),
		lua.LNumber(killerID), lua.LString(killerName))
}

func (e *Engine) CombatHit(attackerID int32, attackerName string, victimID int32, victimName string, damage int32) {
	e.call(hookCombatHit, 0,
		lua.LNumber(attackerID), lua.LString(attackerName),
		lua.LNumber(victimID), lua.LString(victimName),
		lua.LNumber(damage))
}

// Tick calls on_tick, which may return two numbers (dx, dy) to request a
// move. A missing hook, an error, or a zero vector all mean "no move".
func (e *Engine) Tick() (protocol.Vec, bool) {
	rets := e.call(hookTick, 2)
	if rets == nil {
		return protocol.Vec{}, false
	}
	x, xok := rets[0].(lua.LNumber)
	y, yok := rets[1].(lua.LNumber)
	if !xok || !yok {
		return protocol.Vec{}, false
	}
	dir := protocol.Vec{X: int32(x), Y: int32(y)}
	if dir.X == 0 && dir.Y == 0 {
		return protocol.Vec{}, false
	}
	return dir, true
}
