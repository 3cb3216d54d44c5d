package overlay

import "errors"

var (
	ErrAlreadyConnected = errors.New("overlay: peer already connected")
	ErrUnknownPeer      = errors.New("overlay: peer not connected")
)
