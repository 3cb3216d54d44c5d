package overlay

import (
	"context"

	"github.com/drep-project/robot/internal/transport"
)

// adopt registers conn (closing it instead if RegisterIfAbsent loses the
// glare race) and, on success, spawns the reader goroutine that
// forwards every inbound frame onto the shared Manager.inbound queue until
// the connection errors out, at which point it deregisters itself.
//
// adopt blocks until either conn is installed into the register or loses the
// race; it never blocks on the reader goroutine itself.
func (m *Manager) adopt(ctx context.Context, conn *transport.Connection) (accepted bool) {
	if err := m.register.RegisterIfAbsent(conn.RemoteKey, conn); err != nil {
		m.log.WithFields(logFields(conn)).Debug("losing glare race, dropping redundant connection")
		conn.Close()
		return false
	}

	m.log.WithFields(logFields(conn)).Info("peer connected")
	go m.pumpInbound(ctx, conn)
	return true
}

func (m *Manager) pumpInbound(ctx context.Context, conn *transport.Connection) {
	defer func() {
		m.register.Deregister(conn.RemoteKey, conn)
		conn.Close()
		m.log.WithFields(logFields(conn)).Info("peer disconnected")
	}()

	for {
		msg, err := conn.NextMessage(ctx)
		if err != nil {
			return
		}
		envelope := Envelope{From: conn.RemoteKey, Payload: msg.Payload}
		select {
		case m.inbound <- envelope:
		case <-ctx.Done():
			return
		}
	}
}

func logFields(conn *transport.Connection) map[string]interface{} {
	return map[string]interface{}{
		"peer":      conn.RemoteKey.String(),
		"direction": conn.Direction.String(),
	}
}
