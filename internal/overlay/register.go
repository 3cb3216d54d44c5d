package overlay

import (
	"sync"

	"github.com/drep-project/robot/internal/transport"
	"github.com/drep-project/robot/internal/types"
)

// Register is the single source of truth for "which peers are currently
// connected". At most one transport.Connection is ever registered per
// types.PeerKey. RegisterIfAbsent is the only entry point that installs a
// connection, and it is atomic with respect to the presence check — this is
// what resolves the glare race between a simultaneous inbound accept and
// outbound dial for the same peer: whichever side calls RegisterIfAbsent
// first wins, and the loser must close its own connection.
type Register struct {
	mu    sync.Mutex
	peers map[types.PeerKey]*transport.Connection
}

func NewRegister() *Register {
	return &Register{peers: make(map[types.PeerKey]*transport.Connection)}
}

// RegisterIfAbsent installs conn for key iff no connection is currently
// registered for key. Returns ErrAlreadyConnected otherwise, in which case
// the caller owns conn and must close it.
func (r *Register) RegisterIfAbsent(key types.PeerKey, conn *transport.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[key]; ok {
		return ErrAlreadyConnected
	}
	r.peers[key] = conn
	return nil
}

// Deregister removes key's connection iff it is still conn (an older,
// already-replaced connection for the same key is not accidentally evicted).
func (r *Register) Deregister(key types.PeerKey, conn *transport.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.peers[key]; ok && current == conn {
		delete(r.peers, key)
	}
}

func (r *Register) Get(key types.PeerKey) (*transport.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.peers[key]
	return conn, ok
}

// Keys returns a snapshot of the currently connected peer set.
func (r *Register) Keys() []types.PeerKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]types.PeerKey, 0, len(r.peers))
	for k := range r.peers {
		keys = append(keys, k)
	}
	return keys
}

// Connections returns a snapshot of all currently registered connections.
func (r *Register) Connections() []*transport.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]*transport.Connection, 0, len(r.peers))
	for _, c := range r.peers {
		conns = append(conns, c)
	}
	return conns
}

// CloseAll closes every registered connection and empties the register.
func (r *Register) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, c := range r.peers {
		c.Close()
		delete(r.peers, k)
	}
}
