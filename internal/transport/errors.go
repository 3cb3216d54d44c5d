package transport

import "errors"

var (
	ErrFrameTooLarge     = errors.New("transport: frame exceeds maximum size")
	ErrHandshakeFailed   = errors.New("transport: handshake failed")
	ErrRemoteKeyMismatch = errors.New("transport: remote key does not match expected peer")
	ErrConnectionClosed  = errors.New("transport: connection closed")
	ErrSendOnClosedConn  = errors.New("transport: send on closed connection")
)
