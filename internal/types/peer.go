// Package types holds the vocabulary shared by every package in this module:
// peer identity, blocks, quorum certificates, view state and
// application-state snapshots. Keeping one package for these avoids each of
// overlay/store/node redeclaring the same shapes.
package types

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// PeerKey is an Ed25519 public key, used both as connection identity and
// federation membership token. Equality is byte-wise on the encoding.
type PeerKey [ed25519.PublicKeySize]byte

func PeerKeyFromBytes(b []byte) (PeerKey, error) {
	var k PeerKey
	if len(b) != len(k) {
		return k, fmt.Errorf("%w: got %d bytes", ErrMalformedPeerKey, len(b))
	}
	copy(k[:], b)
	return k, nil
}

func (k PeerKey) Bytes() []byte { return k[:] }

func (k PeerKey) Public() ed25519.PublicKey { return ed25519.PublicKey(k[:]) }

func (k PeerKey) String() string { return hex.EncodeToString(k[:]) }

func (k PeerKey) IsZero() bool { return k == PeerKey{} }

// PeerAddress is a network endpoint (host, port).
type PeerAddress struct {
	Host string
	Port int
}

func (a PeerAddress) String() string { return fmt.Sprintf("%s:%d", a.Host, a.Port) }

// FederationMember is a (PeerKey, PeerAddress) pair known to every node in
// the federation as static configuration. PrivateKey is present only for
// the local node.
type FederationMember struct {
	Key        PeerKey
	Address    PeerAddress
	PrivateKey ed25519.PrivateKey // nil unless this is the local node
}

// Direction records whether a Connection was dialed by us or accepted from a peer.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}
