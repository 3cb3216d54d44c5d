// Package overlay implements the static-topology peer-to-peer mesh built on
// top of internal/transport's encrypted channels. A Manager dials every
// configured peer, accepts inbound connections from the rest, resolves
// simultaneous dial/accept races for the same peer (glare), and multiplexes
// all connections' inbound frames onto a single consumer queue.
package overlay

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/drep-project/robot/internal/transport"
	"github.com/drep-project/robot/internal/types"
)

// BackoffConfig parameterizes the dialer's retry timer.
type BackoffConfig struct {
	Initial time.Duration
	Factor  float64
	Max     time.Duration
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{Initial: 500 * time.Millisecond, Factor: 2, Max: 30 * time.Second}
}

// Envelope is one inbound frame together with the peer it arrived from,
// the unit the multiplexer delivers to consumers.
type Envelope struct {
	From    types.PeerKey
	Payload []byte
}

// Manager wires the Register, the dialer, the acceptor and the multiplexer
// together under one errgroup-supervised lifetime.
type Manager struct {
	provider *transport.Provider
	register *Register
	log      *logrus.Entry

	federation map[types.PeerKey]types.PeerAddress
	localKey   types.PeerKey
	backoffCfg BackoffConfig

	inbound chan Envelope
}

// NewManager builds a Manager. federation lists every other federation
// member this node should reach; it must not include the local key.
func NewManager(provider *transport.Provider, localKey types.PeerKey, federation map[types.PeerKey]types.PeerAddress, backoffCfg BackoffConfig, log *logrus.Entry) *Manager {
	return &Manager{
		provider:   provider,
		register:   NewRegister(),
		log:        log,
		federation: federation,
		localKey:   localKey,
		backoffCfg: backoffCfg,
		inbound:    make(chan Envelope, 256),
	}
}

// Run drives the mesh until ctx is cancelled: one dial loop per federation
// peer plus the shared acceptor loop, all under a single errgroup so that a
// cancellation propagates uniformly and Run returns once every goroutine has
// unwound.
func (m *Manager) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		m.acceptLoop(ctx)
		return nil
	})

	for key, addr := range m.federation {
		key, addr := key, addr
		group.Go(func() error {
			m.dialLoop(ctx, key, addr)
			return nil
		})
	}

	<-ctx.Done()
	m.register.CloseAll()
	return group.Wait()
}

// Inbound exposes the shared multiplexed frame queue.
func (m *Manager) Inbound() <-chan Envelope {
	return m.inbound
}

// Send transmits payload to peer, if currently connected.
func (m *Manager) Send(peer types.PeerKey, payload []byte) error {
	conn, ok := m.register.Get(peer)
	if !ok {
		return ErrUnknownPeer
	}
	return conn.Send(transport.Message{Payload: payload})
}

// Peers reports the currently connected federation members.
func (m *Manager) Peers() []types.PeerKey {
	return m.register.Keys()
}
