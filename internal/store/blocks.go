// Package store implements the content-addressed block DAG with
// parent/children indices and descendant-preserving pruning, plus the
// view-state and application-state-history stores built on the same
// namespaced batched KV store.
package store

import (
	"github.com/drep-project/robot/internal/kv"
	"github.com/drep-project/robot/internal/types"
)

const (
	nsBlock            kv.Namespace = 'b'
	nsChildToParent    kv.Namespace = 'p'
	nsParentToChildren kv.Namespace = 'c'
)

// BlockStore is a content-addressed block store: put/get/contains/path-walk/
// prune, all single-call operations committed as one atomic batch.
type BlockStore struct {
	kv *kv.Store
}

func NewBlockStore(s *kv.Store) *BlockStore { return &BlockStore{kv: s} }

// PutGenesis (re)inserts the genesis block. Genesis tolerates having been
// pruned by an earlier run, so this is called unconditionally on every
// startup.
func (bs *BlockStore) PutGenesis(genesis types.Block) error {
	return bs.Put(genesis)
}

// Put is idempotent: putting an already-stored block is a no-op.
func (bs *BlockStore) Put(b types.Block) error {
	h := b.Hash()
	if ok, err := bs.kv.Has(nsBlock, h[:]); err != nil {
		return err
	} else if ok {
		return nil
	}

	batch := kv.NewBatch()
	batch.Put(nsBlock, h[:], encode(b))
	batch.Put(nsChildToParent, h[:], encode(b.ParentHash))

	children, err := bs.childrenOf(b.ParentHash)
	if err != nil {
		return err
	}
	children[h] = struct{}{}
	batch.Put(nsParentToChildren, b.ParentHash[:], encodeHashSet(children))

	return bs.kv.Commit(batch)
}

func (bs *BlockStore) Get(h types.Hash) (types.Block, bool, error) {
	raw, ok, err := bs.kv.Get(nsBlock, h[:])
	if err != nil || !ok {
		return types.Block{}, ok, err
	}
	b, err := decodeBlock(raw)
	return b, true, err
}

func (bs *BlockStore) Contains(h types.Hash) (bool, error) {
	return bs.kv.Has(nsBlock, h[:])
}

func (bs *BlockStore) childrenOf(h types.Hash) (map[types.Hash]struct{}, error) {
	raw, ok, err := bs.kv.Get(nsParentToChildren, h[:])
	if err != nil {
		return nil, err
	}
	if !ok {
		return make(map[types.Hash]struct{}), nil
	}
	return decodeHashSet(raw)
}

func (bs *BlockStore) parentOf(h types.Hash) (types.Hash, bool, error) {
	raw, ok, err := bs.kv.Get(nsChildToParent, h[:])
	if err != nil || !ok {
		return types.ZeroHash, ok, err
	}
	p, err := decodeHash(raw)
	return p, true, err
}

// PathFromRoot walks parent pointers from h toward the root and returns the
// root-to-h ordered list. Returns [h] when h is itself the root (no
// recorded parent, or the ZeroHash parent genesis carries). Fails with
// ErrBrokenParentChain if a link is missing, indicating storage corruption.
func (bs *BlockStore) PathFromRoot(h types.Hash) ([]types.Hash, error) {
	path := []types.Hash{h}
	cur := h
	for {
		parent, ok, err := bs.parentOf(cur)
		if err != nil {
			return nil, err
		}
		if !ok || parent.IsZero() {
			// cur has no recorded parent (or is genesis): it is the root.
			break
		}
		if exists, err := bs.Contains(parent); err != nil {
			return nil, err
		} else if !exists {
			return nil, ErrBrokenParentChain
		}
		path = append([]types.Hash{parent}, path...)
		cur = parent
	}
	return path, nil
}

// descendants returns the descendant closure of r (including r itself),
// walking ParentToChildren breadth-first.
func (bs *BlockStore) descendants(r types.Hash) (map[types.Hash]struct{}, error) {
	closure := map[types.Hash]struct{}{r: {}}
	frontier := []types.Hash{r}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		children, err := bs.childrenOf(next)
		if err != nil {
			return nil, err
		}
		for child := range children {
			if _, seen := closure[child]; !seen {
				closure[child] = struct{}{}
				frontier = append(frontier, child)
			}
		}
	}
	return closure, nil
}

// allBlockHashes returns every hash currently stored in the Block namespace.
func (bs *BlockStore) allBlockHashes() ([]types.Hash, error) {
	var out []types.Hash
	err := bs.kv.Iterate(nsBlock, func(k, _ []byte) bool {
		h, decErr := types.HashFromBytes(k)
		if decErr == nil {
			out = append(out, h)
		}
		return true
	})
	return out, err
}

// PruneNonDescendants deletes every Block, ChildToParent and
// ParentToChildren entry that is not in newRoot's descendant closure,
// additionally removing newRoot's own parent link so it becomes the new
// forest root. Commits as a single atomic batch.
func (bs *BlockStore) PruneNonDescendants(newRoot types.Hash) error {
	batch := kv.NewBatch()
	if err := bs.PlanPrune(batch, newRoot); err != nil {
		return err
	}
	return bs.kv.Commit(batch)
}

// PlanPrune appends the prune's deletes to an externally-owned batch without
// committing. The node package's pruner uses this to fold the block-store
// prune and the view-state root update into one atomic commit against the
// shared underlying KV store, so a crash leaves either the old or the new
// root consistent.
func (bs *BlockStore) PlanPrune(batch *kv.Batch, newRoot types.Hash) error {
	closure, err := bs.descendants(newRoot)
	if err != nil {
		return err
	}

	all, err := bs.allBlockHashes()
	if err != nil {
		return err
	}

	for _, h := range all {
		if _, keep := closure[h]; keep {
			continue
		}
		batch.Delete(nsBlock, h[:])
		batch.Delete(nsChildToParent, h[:])
		batch.Delete(nsParentToChildren, h[:])
	}

	oldParent, hadParent, err := bs.parentOf(newRoot)
	if err != nil {
		return err
	}
	if hadParent {
		batch.Delete(nsParentToChildren, oldParent[:])
	}
	batch.Delete(nsChildToParent, newRoot[:])
	return nil
}
