// View state store: persists the single ViewStateBundle checkpoint a node
// keeps across restarts.
package store

import (
	"github.com/drep-project/robot/internal/kv"
	"github.com/drep-project/robot/internal/types"
)

const nsViewState kv.Namespace = 'v'

// viewStateKey is the sole key in the ViewState namespace: exactly one
// bundle exists per node.
var viewStateKey = []byte("bundle")

type ViewStateStore struct {
	kv *kv.Store
}

func NewViewStateStore(s *kv.Store) *ViewStateStore { return &ViewStateStore{kv: s} }

// EnsureGenesis seeds a genesis bundle if none is yet persisted. Idempotent.
func (vs *ViewStateStore) EnsureGenesis(genesisHash types.Hash) error {
	_, ok, err := vs.kv.Get(nsViewState, viewStateKey)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return vs.put(types.GenesisViewStateBundle(genesisHash))
}

func (vs *ViewStateStore) GetBundle() (types.ViewStateBundle, error) {
	raw, ok, err := vs.kv.Get(nsViewState, viewStateKey)
	if err != nil {
		return types.ViewStateBundle{}, err
	}
	if !ok {
		return types.ViewStateBundle{}, ErrViewStateNotFound
	}
	return decodeViewState(raw)
}

func (vs *ViewStateStore) put(b types.ViewStateBundle) error {
	batch := kv.NewBatch()
	batch.Put(nsViewState, viewStateKey, encode(b))
	return vs.kv.Commit(batch)
}

func (vs *ViewStateStore) SetViewNumber(v uint64) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.ViewNumber = v
	return vs.put(b)
}

func (vs *ViewStateStore) SetRootBlockHash(h types.Hash) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.RootBlockHash = h
	return vs.put(b)
}

func (vs *ViewStateStore) SetLastExecutedBlockHash(h types.Hash) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.LastExecutedBlockHash = h
	return vs.put(b)
}

func (vs *ViewStateStore) SetPrepareQC(qc types.QuorumCertificate) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.PrepareQC = qc
	return vs.put(b)
}

func (vs *ViewStateStore) SetLockedQC(qc types.QuorumCertificate) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.LockedQC = qc
	return vs.put(b)
}

func (vs *ViewStateStore) SetCommitQC(qc types.QuorumCertificate) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.CommitQC = qc
	return vs.put(b)
}

// PlanSetRootBlockHash appends the root-hash update to an externally-owned
// batch without committing, so the Pruner can fold it into the same atomic
// commit as BlockStore.PlanPrune (see blocks.go).
func (vs *ViewStateStore) PlanSetRootBlockHash(batch *kv.Batch, h types.Hash) error {
	b, err := vs.GetBundle()
	if err != nil {
		return err
	}
	b.RootBlockHash = h
	batch.Put(nsViewState, viewStateKey, encode(b))
	return nil
}
