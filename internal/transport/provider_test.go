package transport

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drep-project/robot/internal/types"
)

func newTestIdentity(t *testing.T) (types.PeerKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	key, err := types.PeerKeyFromBytes(pub)
	require.NoError(t, err)
	return key, priv
}

func newTestProvider(t *testing.T) (*Provider, types.PeerKey) {
	t.Helper()
	key, priv := newTestIdentity(t)
	p, err := NewProvider(key, priv, types.PeerAddress{Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, key
}

func TestDialAndAcceptRoundTrip(t *testing.T) {
	server, serverKey := newTestProvider(t)
	client, clientKey := newTestProvider(t)

	_, serverAddr := server.LocalInfo()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientConn, err := client.DialTo(ctx, serverKey, serverAddr)
	require.NoError(t, err)
	defer clientConn.Close()
	require.Equal(t, serverKey, clientConn.RemoteKey)
	require.Equal(t, types.Outgoing, clientConn.Direction)

	serverConn, err, ok := server.NextIncoming(ctx)
	require.True(t, ok)
	require.NoError(t, err)
	defer serverConn.Close()
	require.Equal(t, clientKey, serverConn.RemoteKey)
	require.Equal(t, types.Incoming, serverConn.Direction)

	require.NoError(t, clientConn.Send(Message{Payload: []byte("hello")}))
	msg, err := serverConn.NextMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), msg.Payload)

	require.NoError(t, serverConn.Send(Message{Payload: []byte("world")}))
	msg, err = clientConn.NextMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), msg.Payload)
}

func TestDialToWrongKeyFails(t *testing.T) {
	server, _ := newTestProvider(t)
	client, _ := newTestProvider(t)
	_, otherKey := newTestIdentity(t)

	_, serverAddr := server.LocalInfo()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.DialTo(ctx, otherKey, serverAddr)
	require.ErrorIs(t, err, ErrRemoteKeyMismatch)
}

func TestConnectionCloseUnblocksNextMessage(t *testing.T) {
	server, serverKey := newTestProvider(t)
	client, _ := newTestProvider(t)
	_, serverAddr := server.LocalInfo()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientConn, err := client.DialTo(ctx, serverKey, serverAddr)
	require.NoError(t, err)

	serverConn, err, ok := server.NextIncoming(ctx)
	require.True(t, ok)
	require.NoError(t, err)
	defer serverConn.Close()

	require.NoError(t, clientConn.Close())

	_, err = serverConn.NextMessage(ctx)
	require.Error(t, err)
}
