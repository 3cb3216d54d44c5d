package transport

import (
	"context"
	"net"
	"sync"

	"github.com/drep-project/robot/internal/types"
)

// inboundQueueSize is the per-peer bounded inbound frame queue depth.
const inboundQueueSize = 100

// Message is a single application-level payload exchanged over a Connection.
type Message struct {
	Payload []byte
}

type inboundItem struct {
	msg Message
	err error
}

// Connection is a bidirectional, encrypted, length-prefixed frame channel
// between two federation members. At most one of these is registered per
// PeerKey at any instant (enforced by the overlay's Register).
type Connection struct {
	conn             net.Conn
	RemoteKey        types.PeerKey
	RemoteServerAddr types.PeerAddress
	Direction        types.Direction

	inbound chan inboundItem

	closeOnce sync.Once
	closed    chan struct{}

	writeMu sync.Mutex
}

func newConnection(conn net.Conn, remoteKey types.PeerKey, remoteAddr types.PeerAddress, dir types.Direction) *Connection {
	c := &Connection{
		conn:             conn,
		RemoteKey:        remoteKey,
		RemoteServerAddr: remoteAddr,
		Direction:        dir,
		inbound:          make(chan inboundItem, inboundQueueSize),
		closed:           make(chan struct{}),
	}
	go c.pump()
	return c
}

// pump blocks on socket reads and forwards frames to the bounded inbound
// channel. If the consumer falls behind, the channel send blocks, which in
// turn stalls the socket read, providing backpressure.
func (c *Connection) pump() {
	for {
		payload, err := readFrame(c.conn)
		select {
		case c.inbound <- inboundItem{msg: Message{Payload: payload}, err: err}:
		case <-c.closed:
			return
		}
		if err != nil {
			// The socket is no longer readable (remote closed, reset, or a
			// framing violation): the connection is terminal either way, so
			// close it ourselves rather than leaving Done() unsignaled for
			// an owner that may never notice the read side died.
			c.Close()
			return
		}
	}
}

// NextMessage awaits the next inbound message, racing against ctx and the
// connection's own close.
func (c *Connection) NextMessage(ctx context.Context) (Message, error) {
	select {
	case item := <-c.inbound:
		return item.msg, item.err
	case <-c.closed:
		return Message{}, ErrConnectionClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Send writes one frame. Safe for concurrent use; returns ErrSendOnClosedConn
// once Close has run.
func (c *Connection) Send(msg Message) error {
	select {
	case <-c.closed:
		return ErrSendOnClosedConn
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeFrame(c.conn, msg.Payload)
}

// Done reports when the connection has terminated, from either side.
func (c *Connection) Done() <-chan struct{} {
	return c.closed
}

func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}
