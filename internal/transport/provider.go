// Package transport implements the encrypted connection provider:
// dial/accept mutually authenticated, framed, length-prefixed channels
// keyed by peer public key, over TLS 1.3 with self-signed certificates
// bound to each node's Ed25519 key pair.
package transport

import (
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/drep-project/robot/internal/types"
)

// AcceptResult is the outcome of one accepted TLS handshake: either a fresh
// Connection, or a HandshakeFailure the acceptor must drop silently.
type AcceptResult struct {
	Conn *Connection
	Err  error
}

// Provider owns the listening socket and produces outbound and inbound
// Connections.
type Provider struct {
	localKey  types.PeerKey
	localAddr types.PeerAddress
	tlsConfig *tls.Config

	listener net.Listener
	incoming chan AcceptResult
	closed   chan struct{}
}

// NewProvider binds a TLS listener on addr using a self-signed certificate
// derived from priv. Mutual authentication is enforced by requiring and
// verifying the peer's client certificate on every accepted connection.
func NewProvider(localKey types.PeerKey, priv ed25519.PrivateKey, addr types.PeerAddress) (*Provider, error) {
	cert, err := selfSignedCertificate(priv)
	if err != nil {
		return nil, fmt.Errorf("transport: generating identity certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates:       []tls.Certificate{cert},
		MinVersion:         tls.VersionTLS13,
		ClientAuth:         tls.RequireAnyClientCert,
		InsecureSkipVerify: true, // identity is verified explicitly via the certificate's embedded public key, not a CA chain
	}

	rawListener, err := net.Listen("tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	if addr.Port == 0 {
		addr.Port = rawListener.Addr().(*net.TCPAddr).Port
	}

	p := &Provider{
		localKey:  localKey,
		localAddr: addr,
		tlsConfig: tlsConfig,
		listener:  tls.NewListener(rawListener, tlsConfig),
		incoming:  make(chan AcceptResult),
		closed:    make(chan struct{}),
	}
	go p.acceptLoop()
	return p, nil
}

func (p *Provider) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return // listener closed
		}
		go p.handleAccepted(conn)
	}
}

func (p *Provider) handleAccepted(conn net.Conn) {
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		conn.Close()
		return
	}
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		p.offerIncoming(AcceptResult{Err: fmt.Errorf("%w: %v", ErrHandshakeFailed, err)})
		return
	}

	remoteKey, err := remoteKeyFromState(tlsConn.ConnectionState())
	if err != nil {
		conn.Close()
		p.offerIncoming(AcceptResult{Err: fmt.Errorf("%w: %v", ErrHandshakeFailed, err)})
		return
	}

	// Server address for an inbound connection is not the socket's peer
	// address — it is looked up by the acceptor from the federation table
	// once it knows the authenticated key. Leave it zero here.
	c := newConnection(tlsConn, remoteKey, types.PeerAddress{}, types.Incoming)
	p.offerIncoming(AcceptResult{Conn: c})
}

func (p *Provider) offerIncoming(res AcceptResult) {
	select {
	case p.incoming <- res:
	case <-p.closed:
	}
}

// NextIncoming yields the next accepted server-side connection, or
// (_, _, false) once the provider is shut down or ctx is cancelled —
// both are terminal for the caller's accept loop.
func (p *Provider) NextIncoming(ctx context.Context) (*Connection, error, bool) {
	select {
	case res := <-p.incoming:
		return res.Conn, res.Err, true
	case <-p.closed:
		return nil, nil, false
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}

// DialTo establishes a fresh outbound channel to key at address. The
// handshake must prove the remote's possession of the private key matching
// key; DialTo fails with ErrRemoteKeyMismatch otherwise.
func (p *Provider) DialTo(ctx context.Context, key types.PeerKey, addr types.PeerAddress) (*Connection, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, err
	}

	tlsConn := tls.Client(rawConn, p.tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}

	remoteKey, err := remoteKeyFromState(tlsConn.ConnectionState())
	if err != nil {
		tlsConn.Close()
		return nil, err
	}
	if remoteKey != key {
		tlsConn.Close()
		return nil, ErrRemoteKeyMismatch
	}

	return newConnection(tlsConn, remoteKey, addr, types.Outgoing), nil
}

func (p *Provider) LocalInfo() (types.PeerKey, types.PeerAddress) {
	return p.localKey, p.localAddr
}

func (p *Provider) Close() error {
	select {
	case <-p.closed:
		return nil
	default:
	}
	close(p.closed)
	return p.listener.Close()
}

func remoteKeyFromState(state tls.ConnectionState) (types.PeerKey, error) {
	if len(state.PeerCertificates) == 0 {
		return types.PeerKey{}, fmt.Errorf("%w: no peer certificate presented", ErrHandshakeFailed)
	}
	pub, ok := peerKeyFromCertificate(state.PeerCertificates[0])
	if !ok {
		return types.PeerKey{}, fmt.Errorf("%w: non-Ed25519 peer certificate", ErrHandshakeFailed)
	}
	return types.PeerKeyFromBytes(pub)
}
