// Package game holds the client-side mirror of server game state: the
// entity store the protocol client notifies, and the movement-intent slot
// the presentation layer writes.
package game

import (
	"fmt"

	"github.com/ghack/client/internal/data"
	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

// maxMessages bounds the combat/kill message feed, most recent first.
const maxMessages = 3

// Store tracks the entities the server has reported. All mutation happens
// synchronously from dispatch; there is no locking because there is only
// one driving goroutine.
type Store struct {
	log  *zap.Logger
	keys *data.StateKeyTable

	entities map[int32]*Entity

	controlled    int32
	hasControlled bool

	messages  []string
	onRefresh func()
}

// NewStore creates an empty store validating state values against keys.
func NewStore(keys *data.StateKeyTable, log *zap.Logger) *Store {
	return &Store{
		log:      log,
		keys:     keys,
		entities: make(map[int32]*Entity),
	}
}

// SetRefresh registers a callback fired whenever entity state changes in a
// way the display should pick up.
func (s *Store) SetRefresh(fn func()) {
	s.onRefresh = fn
}

func (s *Store) refresh() {
	if s.onRefresh != nil {
		s.onRefresh()
	}
}

// Add tracks a new entity. A duplicate id is logged and replaces the old
// entry, mirroring the server's authority.
func (s *Store) Add(id int32, name string) {
	if _, ok := s.entities[id]; ok {
		s.log.Warn("entity added twice", zap.Int32("id", id), zap.String("name", name))
	}
	s.entities[id] = newEntity(id, name)
	s.refresh()
}

// Remove drops a tracked entity. An unknown id is logged and ignored.
func (s *Store) Remove(id int32, name string) {
	if _, ok := s.entities[id]; !ok {
		s.log.Warn("entity removed without being added", zap.Int32("id", id), zap.String("name", name))
		return
	}
	delete(s.entities, id)
	s.refresh()
}

// Update sets one state value on a tracked entity. An unknown id is logged
// and ignored; a value whose kind contradicts the state-key table is logged
// but stored anyway, since the server is authoritative.
func (s *Store) Update(id int32, key string, value protocol.StateValue) {
	e, ok := s.entities[id]
	if !ok {
		s.log.Warn("entity updated without being added", zap.Int32("id", id), zap.String("key", key))
		return
	}
	if !s.keys.Validate(key, value) {
		s.log.Warn("state value kind mismatch",
			zap.Int32("id", id),
			zap.String("key", key),
			zap.Uint8("kind", byte(value.Kind)),
		)
	}
	e.States[key] = value
	s.refresh()
}

// AssignControl marks which entity the local player controls. Revocation
// clears the reference.
func (s *Store) AssignControl(id int32, revoked bool) {
	if revoked {
		s.controlled = 0
		s.hasControlled = false
		return
	}
	s.controlled = id
	s.hasControlled = true
}

// Death records an entity death in the message feed. Attribution is by id
// equality against the controlled entity.
func (s *Store) Death(victimID int32, victimName string, killerID int32, killerName string) {
	switch {
	case s.hasControlled && victimID == s.controlled:
		s.addMessage(fmt.Sprintf("You were slain by %s!", killerName))
	case s.hasControlled && killerID == s.controlled:
		s.addMessage(fmt.Sprintf("You slew %s!", victimName))
	default:
		s.addMessage(fmt.Sprintf("%s was slain by %s", victimName, killerName))
	}
	s.refresh()
}

// CombatHit records a hit in the message feed.
func (s *Store) CombatHit(attackerID int32, attackerName string, victimID int32, victimName string, damage int32) {
	switch {
	case s.hasControlled && attackerID == s.controlled:
		s.addMessage(fmt.Sprintf("You hit %s for %d", victimName, damage))
	case s.hasControlled && victimID == s.controlled:
		s.addMessage(fmt.Sprintf("%s hit you for %d", attackerName, damage))
	default:
		s.addMessage(fmt.Sprintf("%s hit %s for %d", attackerName, victimName, damage))
	}
	s.refresh()
}

func (s *Store) addMessage(msg string) {
	s.messages = append([]string{msg}, s.messages...)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[:maxMessages]
	}
}

// Messages returns the feed, most recent first.
func (s *Store) Messages() []string {
	return s.messages
}

// Entity returns a tracked entity by id.
func (s *Store) Entity(id int32) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Len returns the number of tracked entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// Each calls fn for every tracked entity, in no particular order.
func (s *Store) Each(fn func(*Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

// Player returns the controlled entity, or nil when control is unassigned,
// revoked, or points at an entity not yet tracked.
func (s *Store) Player() *Entity {
	if !s.hasControlled {
		return nil
	}
	return s.entities[s.controlled]
}

// Health returns the controlled entity's current and max health, zero when
// unknown.
func (s *Store) Health() (hp, maxHP int32) {
	p := s.Player()
	if p == nil {
		return 0, 0
	}
	return p.IntState(data.KeyHealth, 0), p.IntState(data.KeyMaxHealth, 0)
}

// KillCount returns the controlled entity's kill count.
func (s *Store) KillCount() int32 {
	p := s.Player()
	if p == nil {
		return 0
	}
	return p.IntState(data.KeyKillCount, 0)
}
