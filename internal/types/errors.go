package types

import "errors"

var (
	ErrMalformedPeerKey = errors.New("types: malformed peer key")
	ErrMalformedHash    = errors.New("types: malformed hash")
)
