package overlay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drep-project/robot/internal/types"
)

// dialLoop is one independent, serialized dial-and-reconnect loop per
// federation peer. Each loop holds its own backoff timer so a slow or
// unreachable peer never delays retries to any other peer.
func (m *Manager) dialLoop(ctx context.Context, peer types.PeerKey, addr types.PeerAddress) {
	b := newBackoff(m.backoffCfg.Initial, m.backoffCfg.Factor, m.backoffCfg.Max)

	for {
		if ctx.Err() != nil {
			return
		}

		attemptID := uuid.New()
		conn, err := m.provider.DialTo(ctx, peer, addr)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.WithError(err).WithFields(map[string]interface{}{
				"peer":       peer.String(),
				"attempt_id": attemptID.String(),
			}).Debug("dial attempt failed")
			if !sleep(ctx, b.next()) {
				return
			}
			continue
		}

		if !m.adopt(ctx, conn) {
			// Lost the glare race: an inbound connection for this peer won.
			// Wait for it to end before attempting to redial.
			if existing, ok := m.register.Get(peer); ok {
				select {
				case <-existing.Done():
				case <-ctx.Done():
					return
				}
			}
			b.reset()
			continue
		}

		b.reset()

		// Block until this connection terminates, then retry from scratch.
		select {
		case <-conn.Done():
		case <-ctx.Done():
			return
		}
	}
}

// sleep waits for d or ctx cancellation, reporting whether it completed the
// full wait (false means ctx was cancelled first).
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
