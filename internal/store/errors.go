package store

import "errors"

var (
	ErrBlockNotFound     = errors.New("store: block not found")
	ErrBrokenParentChain = errors.New("store: broken parent chain")
	ErrViewStateNotFound = errors.New("store: view state bundle not found")
	ErrGenesisRequired   = errors.New("store: genesis block required before use")
)
