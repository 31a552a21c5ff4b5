package client

import (
	"fmt"

	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

// The handshake states use raw rules: transition logic wants the reply as
// delivered. The decision itself lives in pure eval functions so the state
// machine is testable without a socket.

func connectingRules() []rule {
	return []rule{
		rawRule(protocol.MsgConnect, handleConnectReply),
	}
}

func loggingInRules() []rule {
	return []rule{
		rawRule(protocol.MsgLoginResult, handleLoginResult),
	}
}

// evalConnectReply decides the transition out of Connecting.
func evalConnectReply(clientVersion, serverVersion int32) (State, error) {
	if serverVersion != clientVersion {
		return StateDisconnected, fmt.Errorf("%w: client %d, server %d",
			ErrVersionMismatch, clientVersion, serverVersion)
	}
	return StateLoggingIn, nil
}

// evalLoginResult decides the transition out of LoggingIn.
func evalLoginResult(lr *protocol.LoginResult) (State, error) {
	if !lr.Succeeded {
		return StateDisconnected, &LoginError{Reason: lr.Reason}
	}
	return StateInGame, nil
}

// handleConnectReply processes the server's CONNECT reply: check versions,
// then send LOGIN and move to LoggingIn. A mismatch is fatal before any
// LOGIN goes out.
func handleConnectReply(c *Client, m *protocol.Message) {
	reply := m.Connect

	next, err := evalConnectReply(c.version, reply.Version)
	if err != nil {
		c.fail(err)
		return
	}

	if err := c.conn.Send(protocol.NewLogin(c.name)); err != nil {
		c.fail(fmt.Errorf("send login: %w", err))
		return
	}
	c.setRules(loggingInRules())
	c.setState(next)
	c.log.Debug("versions matched, logging in", zap.Int32("version", reply.Version))
}

// handleLoginResult processes LOGINRESULT: rejection is fatal with the
// server's reason; success marks the session connected and installs the
// in-game rules.
func handleLoginResult(c *Client, m *protocol.Message) {
	next, err := evalLoginResult(m.LoginResult)
	if err != nil {
		c.fail(err)
		return
	}

	c.setRules(inGameRules())
	c.setState(next)
	c.connected.Store(true)
	c.log.Info("connection established", zap.String("player", c.name))
}
