package client

import (
	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

// A rule routes one message type within a session state. Exactly one of the
// two handler kinds is set:
//   - typed: receives the unwrapped variant body, for steady-state
//     gameplay events;
//   - raw: receives the whole message, for state-machine transition logic
//     that inspects the reply as delivered.
type rule struct {
	typ   protocol.MsgType
	typed func(*Client, any)
	raw   func(*Client, *protocol.Message)
}

func typedRule(typ protocol.MsgType, fn func(*Client, any)) rule {
	return rule{typ: typ, typed: fn}
}

func rawRule(typ protocol.MsgType, fn func(*Client, *protocol.Message)) rule {
	return rule{typ: typ, raw: fn}
}

// dispatch routes one decoded message through the current state's rules, in
// order: first matching typed rule, then first matching raw rule. A type no
// rule covers is logged and dropped — protocol evolution or server bugs
// must not take the client down. Dispatch itself performs no mutation
// beyond routing; handlers own all state changes.
func (c *Client) dispatch(m *protocol.Message) {
	rules := c.getRules()
	for _, r := range rules {
		if r.typ == m.Type && r.typed != nil {
			r.typed(c, m.Unwrap())
			return
		}
	}
	for _, r := range rules {
		if r.typ == m.Type && r.raw != nil {
			r.raw(c, m)
			return
		}
	}
	c.log.Warn("unexpected message",
		zap.Stringer("type", m.Type),
		zap.Stringer("state", c.State()),
	)
}
