package game

import "github.com/ghack/client/internal/protocol"

// Entity is the local copy of one server-reported entity. The server is
// authoritative; the client only mirrors what it is told.
type Entity struct {
	ID     int32
	Name   string
	States map[string]protocol.StateValue
}

func newEntity(id int32, name string) *Entity {
	return &Entity{
		ID:     id,
		Name:   name,
		States: make(map[string]protocol.StateValue),
	}
}

// State returns the value for key, if the server has reported one.
func (e *Entity) State(key string) (protocol.StateValue, bool) {
	v, ok := e.States[key]
	return v, ok
}

// IntState returns the int value for key, or def when the state is absent
// or not an int.
func (e *Entity) IntState(key string, def int32) int32 {
	v, ok := e.States[key]
	if !ok || v.Kind != protocol.ValueInt {
		return def
	}
	return v.Int
}
