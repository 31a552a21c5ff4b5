// Package client implements the ghack protocol client: the handshake and
// login state machine, per-state message dispatch, and the tick/receive
// loop that bridges the server to the local entity store.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gamenet "github.com/ghack/client/internal/net"
	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

// EntityStore receives typed notifications for server-reported entity
// events. The client never reads entity state back; the store is
// authoritative locally and the server globally.
type EntityStore interface {
	Add(id int32, name string)
	Remove(id int32, name string)
	Update(id int32, key string, value protocol.StateValue)
	AssignControl(id int32, revoked bool)
	Death(victimID int32, victimName string, killerID int32, killerName string)
	CombatHit(attackerID int32, attackerName string, victimID int32, victimName string, damage int32)
}

// MovementIntent is the pending-direction slot the presentation layer
// writes and the client drains once per tick.
type MovementIntent interface {
	Set(dx, dy int32)
	Take() protocol.Vec
}

// Hooks are optional script callbacks fired after entity-store
// notifications. Tick runs once per update and may return a movement
// direction to feed into the intent slot.
type Hooks interface {
	EntityAdded(id int32, name string)
	EntityRemoved(id int32, name string)
	EntityDeath(victimID int32, victimName string, killerID int32, killerName string)
	CombatHit(attackerID int32, attackerName string, victimID int32, victimName string, damage int32)
	Tick() (protocol.Vec, bool)
}

// Client drives one session against the game server. One goroutine runs
// the update/receive loop; all session and store mutation happens there.
// Disconnect and Close may be called from other goroutines (signal
// handling), which is why state is atomic and rule swaps are guarded.
type Client struct {
	conn   *gamenet.Conn
	store  EntityStore
	intent MovementIntent
	hooks  Hooks
	log    *zap.Logger

	version int32
	name    string

	state     atomic.Int32
	connected atomic.Bool

	mu    sync.Mutex // protects rules
	rules []rule

	runErr   error // first fatal error, read after the loop exits
	discOnce sync.Once
}

// New creates a client for an established connection. The session starts
// in Connecting; no traffic flows until Start.
func New(conn *gamenet.Conn, store EntityStore, intent MovementIntent, name string, log *zap.Logger) *Client {
	c := &Client{
		conn:    conn,
		store:   store,
		intent:  intent,
		log:     log,
		version: protocol.Version,
		name:    name,
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// SetHooks attaches optional script hooks. Call before Run.
func (c *Client) SetHooks(h Hooks) {
	c.hooks = h
}

// State returns the current session state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Connected reports whether login completed.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// PlayerName returns the login name, as normalized for the wire.
func (c *Client) PlayerName() string {
	return c.name
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Client) setRules(rules []rule) {
	c.mu.Lock()
	c.rules = rules
	c.mu.Unlock()
}

func (c *Client) getRules() []rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules
}

// Start opens the handshake: install the Connecting rules and send CONNECT
// with our protocol version.
func (c *Client) Start() error {
	c.setRules(connectingRules())
	if err := c.conn.Send(protocol.NewConnect(c.version)); err != nil {
		c.fail(fmt.Errorf("send connect: %w", err))
		return c.runErr
	}
	c.log.Info("handshake started",
		zap.Int32("version", c.version),
		zap.String("player", c.name),
	)
	return nil
}

// Update runs once per tick: fire the script tick hook, then flush the
// pending movement direction if it is non-zero. Runs in any state — before
// InGame nothing drives the intent slot, so it is a no-op there.
func (c *Client) Update() error {
	if c.State() == StateDisconnected {
		return nil
	}
	if c.hooks != nil {
		if dir, ok := c.hooks.Tick(); ok {
			c.intent.Set(dir.X, dir.Y)
		}
	}
	dir := c.intent.Take()
	if dir.X == 0 && dir.Y == 0 {
		return nil
	}
	if err := c.conn.Send(protocol.NewMove(dir)); err != nil {
		c.fail(fmt.Errorf("send move: %w", err))
		return c.runErr
	}
	return nil
}

// Pump blocks for one inbound message and dispatches it. Malformed
// payloads inside a valid frame are logged and discarded — framing stays
// synchronized, so the session continues. Transport failure transitions to
// Disconnected and returns the error. A fatal handshake outcome recorded
// by a handler is returned after its dispatch completes.
func (c *Client) Pump() error {
	m, err := c.conn.Receive()
	if err != nil {
		var mal *protocol.MalformedError
		if errors.As(err, &mal) {
			c.log.Warn("discarding malformed message", zap.Error(mal))
			return nil
		}
		c.connected.Store(false)
		c.setState(StateDisconnected)
		if c.runErr != nil {
			return c.runErr
		}
		return err
	}

	c.dispatch(m)

	if c.State() == StateDisconnected && c.runErr != nil {
		return c.runErr
	}
	return nil
}

// Run drives the session to completion: Start, then alternate Update and
// Pump until the session reaches Disconnected. Receive is the sole
// suspension point; cancelling ctx closes the connection, which unblocks
// it promptly.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-stop:
		}
	}()

	for c.State() != StateDisconnected {
		if err := c.Update(); err != nil {
			return err
		}
		if err := c.Pump(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
	return nil
}

// Disconnect ends the session on purpose: send one DISCONNECT with a QUIT
// reason, clear the active rules, close the connection. Idempotent — a
// second call does nothing, and at most one DISCONNECT goes out.
func (c *Client) Disconnect(text string) {
	c.discOnce.Do(func() {
		if c.State() != StateDisconnected {
			if err := c.conn.Send(protocol.NewDisconnect(protocol.ReasonQuit, text)); err != nil {
				c.log.Debug("disconnect send failed", zap.Error(err))
			}
		}
		c.setRules(nil)
		c.connected.Store(false)
		c.setState(StateDisconnected)
		c.conn.Close()
		c.log.Info("disconnected", zap.String("reason", text))
	})
}

// fail records the first fatal error, tears the session down, and closes
// the connection. Called only from the dispatch goroutine.
func (c *Client) fail(err error) {
	if c.runErr == nil {
		c.runErr = err
	}
	c.setRules(nil)
	c.connected.Store(false)
	c.setState(StateDisconnected)
	c.conn.Close()
	c.log.Error("session ended", zap.Error(err))
}
