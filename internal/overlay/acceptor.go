package overlay

import "context"

// acceptLoop drains the provider's accepted connections, rejecting anything
// from outside the federation table and otherwise handing the connection to
// adopt for glare resolution and registration.
func (m *Manager) acceptLoop(ctx context.Context) {
	for {
		conn, err, ok := m.provider.NextIncoming(ctx)
		if !ok {
			return
		}
		if err != nil {
			m.log.WithError(err).Debug("rejected inbound handshake")
			continue
		}

		addr, known := m.federation[conn.RemoteKey]
		if !known {
			m.log.WithField("peer", conn.RemoteKey.String()).Warn("rejecting connection from unknown peer")
			conn.Close()
			continue
		}
		// Inbound connections carry no self-reported server address; it is
		// looked up from the federation table by the now-authenticated key.
		conn.RemoteServerAddr = addr

		m.adopt(ctx, conn)
	}
}
