// Package node is the composition root that wires the encrypted overlay, the
// persistent stores, and the external HotStuff service driving the robot
// application into one running node, plus the periodic pruning background
// task.
package node

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/drep-project/robot/internal/config"
	"github.com/drep-project/robot/internal/hotstuff"
	"github.com/drep-project/robot/internal/kv"
	"github.com/drep-project/robot/internal/overlay"
	"github.com/drep-project/robot/internal/robot"
	"github.com/drep-project/robot/internal/store"
	"github.com/drep-project/robot/internal/transport"
	"github.com/drep-project/robot/internal/types"
)

// Node is one running consensus participant: its overlay connection
// manager, its three stores, the application and HotStuff services, and the
// pruner, all sharing one lifetime.
type Node struct {
	log *logrus.Entry

	manager  *overlay.Manager
	provider *transport.Provider
	kv       *kv.Store

	blocks    *store.BlockStore
	viewState *store.ViewStateStore
	ring      *store.StateRing

	app       *robot.Robot
	consensus hotstuff.Service
	initial   hotstuff.InitialState

	pruneInterval    time.Duration
	blockHistorySize int
}

// genesisBlock returns the single, deterministic genesis block every node
// constructs independently: no command, parent is the zero hash, and the
// post-state is the robot's starting pose.
func genesisBlock() (types.Block, types.StateSnapshot) {
	snapshot := types.StateSnapshot{Result: types.CommandResult{Row: 0, Col: 0, Heading: types.North}}
	return types.Block{
		ParentHash:    types.ZeroHash,
		PostStateHash: hashSnapshot(snapshot),
		Command:       types.Command{Kind: types.CommandNone},
	}, snapshot
}

func hashSnapshot(s types.StateSnapshot) types.Hash {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return sha256.Sum256(buf.Bytes())
}

// Build runs the node's startup sequence: provider, connection manager,
// storage layers seeded with genesis, and the initial HotStuff protocol
// state recovered from the persisted view bundle. On any failure it tears
// down every resource it had already acquired, in reverse order, and
// returns the error.
func Build(ctx context.Context, cfg *config.Config, nodeIndex int, consensus hotstuff.Service, log *logrus.Entry) (n *Node, err error) {
	federation, err := cfg.Federation()
	if err != nil {
		return nil, fmt.Errorf("node: building federation table: %w", err)
	}
	local := federation[nodeIndex]

	// Step 1: encrypted provider bound to the local key pair.
	provider, err := transport.NewProvider(local.Key, local.PrivateKey, local.Address)
	if err != nil {
		return nil, fmt.Errorf("node: creating connection provider: %w", err)
	}
	defer func() {
		if err != nil {
			provider.Close()
		}
	}()

	// Step 2: connection manager seeded with every federation member but self.
	peers := make(map[types.PeerKey]types.PeerAddress, len(federation)-1)
	for _, m := range federation {
		if m.Key == local.Key {
			continue
		}
		peers[m.Key] = m.Address
	}
	manager := overlay.NewManager(provider, local.Key, peers, overlay.DefaultBackoffConfig(), log.WithField("subsystem", "overlay"))

	// Step 3: open the KV store at <db.path>/<nodeIndex>/.
	dbPath := filepath.Join(cfg.DB.Path, strconv.Itoa(nodeIndex))
	kvStore, err := kv.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("node: opening store at %s: %w", dbPath, err)
	}
	defer func() {
		if err != nil {
			kvStore.Close()
		}
	}()

	genesis, genesisSnapshot := genesisBlock()
	genesisHash := genesis.Hash()

	// Step 4: block store, genesis inserted unconditionally.
	blocks := store.NewBlockStore(kvStore)
	if err = blocks.PutGenesis(genesis); err != nil {
		return nil, fmt.Errorf("node: seeding genesis block: %w", err)
	}

	// Step 5: view state store, genesis bundle if absent.
	viewState := store.NewViewStateStore(kvStore)
	if err = viewState.EnsureGenesis(genesisHash); err != nil {
		return nil, fmt.Errorf("node: seeding genesis view state: %w", err)
	}

	// Step 6: state ring, genesis snapshot bypassing eviction.
	ring := store.NewStateRing(kvStore, cfg.DB.StateHistorySize)
	if err = ring.PutGenesis(genesisHash, genesisSnapshot); err != nil {
		return nil, fmt.Errorf("node: seeding genesis state snapshot: %w", err)
	}

	// Step 7: load persisted view bundle and fetch the prepared block.
	bundle, err := viewState.GetBundle()
	if err != nil {
		return nil, fmt.Errorf("node: loading view state bundle: %w", err)
	}
	preparedBlock, ok, err := blocks.Get(bundle.PrepareQC.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("node: fetching prepared block: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: prepareQC block %s is missing from the block store", ErrStorageCorruption, bundle.PrepareQC.BlockHash)
	}

	app := robot.New(robot.Model{
		MaxRow:                cfg.Model.MaxRow,
		MaxCol:                cfg.Model.MaxCol,
		SimulatedDecisionTime: cfg.Model.SimulatedDecisionTime.Duration,
	})
	if snapshot, ok, err := ring.Get(bundle.LastExecutedBlockHash); err != nil {
		return nil, fmt.Errorf("node: loading last executed snapshot: %w", err)
	} else if ok {
		app.Restore(snapshot)
	}

	n = &Node{
		log:              log,
		manager:          manager,
		provider:         provider,
		kv:               kvStore,
		blocks:           blocks,
		viewState:        viewState,
		ring:             ring,
		app:              app,
		consensus:        consensus,
		pruneInterval:    cfg.DB.PruneInterval.Duration,
		blockHistorySize: cfg.DB.BlockHistorySize,
	}
	n.initial = hotstuff.InitialState{
		ViewNumber:    bundle.ViewNumber + 1,
		Phase:         types.PhasePrepare,
		PrepareQC:     bundle.PrepareQC,
		LockedQC:      bundle.LockedQC,
		CommitQC:      bundle.CommitQC,
		PreparedBlock: preparedBlock,
	}
	return n, nil
}

// Run starts the overlay, the HotStuff service and the pruner as children
// of one errgroup, returning once ctx is cancelled and every child has
// unwound, or as soon as any child fails.
func (n *Node) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return n.manager.Run(ctx)
	})
	group.Go(func() error {
		return n.consensus.Start(ctx, n.initial)
	})
	group.Go(func() error {
		n.runPruner(ctx)
		return nil
	})

	err := group.Wait()
	n.Close()
	return err
}

// Close releases every resource Build acquired: the listening provider and
// the KV store. Safe to call after Run has already closed them.
func (n *Node) Close() {
	n.provider.Close()
	n.kv.Close()
}
