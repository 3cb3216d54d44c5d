package config

import "errors"

var (
	ErrInvalidNodeIndex  = errors.New("config: invalid node index")
	ErrInvalidPublicKey  = errors.New("config: invalid public key")
	ErrMissingPrivateKey = errors.New("config: local node missing private key")
)
