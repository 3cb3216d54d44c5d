package node

import (
	"context"
	"time"

	"github.com/drep-project/robot/internal/kv"
)

// runPruner periodically prunes the path from the forest root to the last
// executed block: the newest of the blocks older than the last
// blockHistorySize becomes the new root, so that root plus the last
// blockHistorySize blocks stay on the path, and everything not reachable
// from the new root is discarded. The block-store prune and
// the view-state root update are folded into one kv.Batch so a crash
// mid-prune leaves either the old or the new root consistent, never a torn
// state.
func (n *Node) runPruner(ctx context.Context) {
	ticker := time.NewTicker(n.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.pruneOnce(); err != nil {
				n.log.WithError(err).Warn("prune cycle failed")
			}
		}
	}
}

func (n *Node) pruneOnce() error {
	bundle, err := n.viewState.GetBundle()
	if err != nil {
		return err
	}

	path, err := n.blocks.PathFromRoot(bundle.LastExecutedBlockHash)
	if err != nil {
		return err
	}

	if len(path) <= n.blockHistorySize {
		return nil // nothing eligible for pruning yet
	}
	pruneable := path[:len(path)-n.blockHistorySize]
	newRoot := pruneable[len(pruneable)-1]

	batch := kv.NewBatch()
	if err := n.blocks.PlanPrune(batch, newRoot); err != nil {
		return err
	}
	if err := n.viewState.PlanSetRootBlockHash(batch, newRoot); err != nil {
		return err
	}
	return n.kv.Commit(batch)
}
