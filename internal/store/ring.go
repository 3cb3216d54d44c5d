// Bounded state ring: a fixed-capacity FIFO over (Hash -> StateSnapshot).
// The genesis snapshot is written directly to the underlying State
// namespace, bypassing the ring, so it is never evicted.
package store

import (
	"github.com/drep-project/robot/internal/kv"
	"github.com/drep-project/robot/internal/types"
)

const (
	nsState     kv.Namespace = 's'
	nsStateMeta kv.Namespace = 'm'
)

var ringOrderKey = []byte("order")

// StateRing is a ring buffer over application state snapshots keyed by the
// block hash that produced them.
type StateRing struct {
	kv       *kv.Store
	capacity int
}

func NewStateRing(s *kv.Store, capacity int) *StateRing {
	return &StateRing{kv: s, capacity: capacity}
}

// PutGenesis writes the genesis snapshot directly, bypassing ring eviction
// bookkeeping entirely — it is never counted against capacity and never
// evicted.
func (r *StateRing) PutGenesis(h types.Hash, s types.StateSnapshot) error {
	batch := kv.NewBatch()
	batch.Put(nsState, h[:], encode(s))
	return r.kv.Commit(batch)
}

func (r *StateRing) Get(h types.Hash) (types.StateSnapshot, bool, error) {
	raw, ok, err := r.kv.Get(nsState, h[:])
	if err != nil || !ok {
		return types.StateSnapshot{}, ok, err
	}
	snap, err := decodeSnapshot(raw)
	return snap, true, err
}

func (r *StateRing) order() ([]types.Hash, error) {
	raw, ok, err := r.kv.Get(nsStateMeta, ringOrderKey)
	if err != nil || !ok {
		return nil, err
	}
	return decodeHashSlice(raw)
}

// Put inserts a snapshot into the ring and, if the ring's tracked size
// exceeds capacity, evicts the oldest insertion. Re-inserting a hash
// already in the ring moves it to the back without growing the ring.
func (r *StateRing) Put(h types.Hash, s types.StateSnapshot) error {
	order, err := r.order()
	if err != nil {
		return err
	}

	filtered := order[:0:0]
	for _, existing := range order {
		if existing != h {
			filtered = append(filtered, existing)
		}
	}
	filtered = append(filtered, h)

	batch := kv.NewBatch()
	var evicted types.Hash
	hasEviction := false
	if r.capacity > 0 && len(filtered) > r.capacity {
		evicted = filtered[0]
		filtered = filtered[1:]
		hasEviction = true
	}

	batch.Put(nsState, h[:], encode(s))
	batch.Put(nsStateMeta, ringOrderKey, encode(filtered))
	if hasEviction {
		batch.Delete(nsState, evicted[:])
	}
	return r.kv.Commit(batch)
}
