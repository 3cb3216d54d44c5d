package store

import (
	"bytes"
	"encoding/gob"

	"github.com/drep-project/robot/internal/types"
)

func encode(v interface{}) []byte {
	var buf bytes.Buffer
	// Every type passed through encode in this package is a concrete,
	// gob-encodable struct of fixed-size fields and slices; encoding never
	// fails.
	_ = gob.NewEncoder(&buf).Encode(v)
	return buf.Bytes()
}

func decodeBlock(b []byte) (types.Block, error) {
	var v types.Block
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
	return v, err
}

func decodeHash(b []byte) (types.Hash, error) {
	var v types.Hash
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
	return v, err
}

func decodeHashSet(b []byte) (map[types.Hash]struct{}, error) {
	var v []types.Hash
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, err
	}
	set := make(map[types.Hash]struct{}, len(v))
	for _, h := range v {
		set[h] = struct{}{}
	}
	return set, nil
}

func encodeHashSet(set map[types.Hash]struct{}) []byte {
	v := make([]types.Hash, 0, len(set))
	for h := range set {
		v = append(v, h)
	}
	return encode(v)
}

func decodeHashSlice(b []byte) ([]types.Hash, error) {
	var v []types.Hash
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
	return v, err
}

func decodeViewState(b []byte) (types.ViewStateBundle, error) {
	var v types.ViewStateBundle
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
	return v, err
}

func decodeSnapshot(b []byte) (types.StateSnapshot, error) {
	var v types.StateSnapshot
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
	return v, err
}
