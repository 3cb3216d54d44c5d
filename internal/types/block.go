package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
)

// Hash is a content address: the SHA-256 of a block's canonical encoding.
type Hash [sha256.Size]byte

var ZeroHash Hash

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) IsZero() bool { return h == ZeroHash }

// HashFromBytes copies a raw, already-computed digest into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return h, ErrMalformedHash
	}
	copy(h[:], b)
	return h, nil
}

// Block is the unit of consensus: a parent pointer, the resulting
// application state hash, and the command the leader proposed.
//
// Identity = content hash of (ParentHash, PostStateHash, Command). Genesis
// has ParentHash == ZeroHash.
type Block struct {
	ParentHash    Hash
	PostStateHash Hash
	Command       Command
}

// Hash computes this block's content address. It is deterministic: encoding
// a Block twice and hashing both encodings always yields the same Hash.
func (b Block) Hash() Hash {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	// Errors are impossible here: Block's fields are all concrete,
	// gob-encodable types with no interfaces or channels.
	_ = enc.Encode(b)
	return sha256.Sum256(buf.Bytes())
}
