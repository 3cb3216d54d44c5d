package overlay

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/drep-project/robot/internal/transport"
	"github.com/drep-project/robot/internal/types"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.FatalLevel)
	return logrus.NewEntry(l)
}

func newTestNode(t *testing.T) (*transport.Provider, types.PeerKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	key, err := types.PeerKeyFromBytes(pub)
	require.NoError(t, err)
	provider, err := transport.NewProvider(key, priv, types.PeerAddress{Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return provider, key, priv
}

// TestGlareRaceLeavesExactlyOneConnection has both nodes dial each other at
// the same time. Whichever RegisterIfAbsent call wins keeps its connection;
// the loser's connection is closed. Either outcome is acceptable, but there
// must be exactly one connection standing at the end.
func TestGlareRaceLeavesExactlyOneConnection(t *testing.T) {
	providerA, keyA, _ := newTestNode(t)
	providerB, keyB, _ := newTestNode(t)
	_, addrA := providerA.LocalInfo()
	_, addrB := providerB.LocalInfo()

	managerA := NewManager(providerA, keyA, map[types.PeerKey]types.PeerAddress{keyB: addrB}, DefaultBackoffConfig(), testLogger())
	managerB := NewManager(providerB, keyB, map[types.PeerKey]types.PeerAddress{keyA: addrA}, DefaultBackoffConfig(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go managerA.Run(ctx)
	go managerB.Run(ctx)

	require.Eventually(t, func() bool {
		return len(managerA.Peers()) == 1 && len(managerB.Peers()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Stays stable: no flapping between redundant connections.
	time.Sleep(200 * time.Millisecond)
	require.Len(t, managerA.Peers(), 1)
	require.Len(t, managerB.Peers(), 1)
}

// TestUnknownPeerIsRejected has a node outside the federation table dial in;
// it must be refused.
func TestUnknownPeerIsRejected(t *testing.T) {
	providerA, keyA, _ := newTestNode(t)
	providerStranger, _, _ := newTestNode(t)
	_, addrA := providerA.LocalInfo()

	managerA := NewManager(providerA, keyA, map[types.PeerKey]types.PeerAddress{}, DefaultBackoffConfig(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go managerA.Run(ctx)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()
	conn, err := providerStranger.DialTo(dialCtx, keyA, addrA)
	require.NoError(t, err)

	// The handshake succeeds at the TLS layer (mutual auth only checks key
	// possession); the acceptor then finds the key absent from the
	// federation table and drops it. The connection should observe a close.
	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected stranger connection to be closed by acceptor")
	}

	require.Empty(t, managerA.Peers())
}
