package game

import "github.com/ghack/client/internal/protocol"

// Intent is the pending-movement slot. The presentation layer sets it from
// key input; the protocol client drains it once per tick. Later writes in
// the same tick replace earlier ones, matching how key repeat behaves.
type Intent struct {
	dir protocol.Vec
}

// Set replaces the pending direction.
func (i *Intent) Set(dx, dy int32) {
	i.dir = protocol.Vec{X: dx, Y: dy}
}

// Take returns the pending direction and resets it to zero.
func (i *Intent) Take() protocol.Vec {
	d := i.dir
	i.dir = protocol.Vec{}
	return d
}
