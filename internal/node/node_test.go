package node

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/drep-project/robot/internal/config"
	hsfake "github.com/drep-project/robot/internal/hotstuff/fake"
	"github.com/drep-project/robot/internal/kv"
	"github.com/drep-project/robot/internal/store"
	"github.com/drep-project/robot/internal/types"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.FatalLevel)
	return logrus.NewEntry(l)
}

// testConfig builds a two-node federation config whose node 0 is local
// (carries a private key) and backs its store with a fresh temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dbDir := t.TempDir()

	nodes := make([]config.NodeConfig, 2)
	for i := range nodes {
		pub, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		nodes[i] = config.NodeConfig{
			Address:   "127.0.0.1",
			Port:      0,
			PublicKey: hex.EncodeToString(pub),
		}
		if i == 0 {
			nodes[i].PrivateKey = hex.EncodeToString(priv)
		}
	}

	return &config.Config{
		Network: config.NetworkConfig{Nodes: nodes},
		DB: config.DBConfig{
			Path:             dbDir,
			StateHistorySize: 3,
			BlockHistorySize: 3,
			PruneInterval:    config.Duration{Duration: 50 * time.Millisecond},
		},
		Model: config.ModelConfig{MaxRow: 10, MaxCol: 10},
	}
}

func TestBuildSeedsGenesisAndComputesInitialState(t *testing.T) {
	cfg := testConfig(t)
	fakeConsensus := hsfake.New()

	n, err := Build(context.Background(), cfg, 0, fakeConsensus, testLogger())
	require.NoError(t, err)
	defer n.Close()

	require.Equal(t, uint64(1), n.initial.ViewNumber) // persisted view 0 + 1
	require.Equal(t, types.PhasePrepare, n.initial.Phase)
	require.False(t, n.initial.PreparedBlock.Hash().IsZero())
}

// TestCrashRecoveryAlwaysResumesInPrepare asserts that regardless of which
// phase the persisted QCs reflect, a freshly built Node always starts its
// HotStuff service in Prepare at persisted.viewNumber + 1.
func TestCrashRecoveryAlwaysResumesInPrepare(t *testing.T) {
	cfg := testConfig(t)

	dbPath := cfg.DB.Path + "/0"
	kvStore, err := kv.Open(dbPath)
	require.NoError(t, err)

	genesis, _ := genesisBlock()
	blocks := store.NewBlockStore(kvStore)
	require.NoError(t, blocks.PutGenesis(genesis))
	viewState := store.NewViewStateStore(kvStore)
	require.NoError(t, viewState.EnsureGenesis(genesis.Hash()))

	// Simulate a crash mid-PreCommit at view 7.
	require.NoError(t, viewState.SetViewNumber(7))
	require.NoError(t, viewState.SetLockedQC(types.QuorumCertificate{
		Phase: types.PhasePreCommit, ViewNumber: 7, BlockHash: genesis.Hash(),
	}))
	require.NoError(t, kvStore.Close())

	n, err := Build(context.Background(), cfg, 0, hsfake.New(), testLogger())
	require.NoError(t, err)
	defer n.Close()

	require.Equal(t, uint64(8), n.initial.ViewNumber)
	require.Equal(t, types.PhasePrepare, n.initial.Phase)
}

func TestPruneOnceKeepsOnlyRecentHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.BlockHistorySize = 2

	n, err := Build(context.Background(), cfg, 0, hsfake.New(), testLogger())
	require.NoError(t, err)
	defer n.Close()

	genesis, _ := genesisBlock()
	current := genesis.Hash()
	var chain []types.Hash
	for i := 0; i < 4; i++ {
		b := types.Block{ParentHash: current, Command: types.Command{Kind: types.CommandMoveForward}}
		require.NoError(t, n.blocks.Put(b))
		current = b.Hash()
		chain = append(chain, current)
	}
	require.NoError(t, n.viewState.SetLastExecutedBlockHash(current))

	require.NoError(t, n.pruneOnce())

	ok, err := n.blocks.Contains(genesis.Hash())
	require.NoError(t, err)
	require.False(t, ok, "genesis should have been pruned")

	ok, err = n.blocks.Contains(chain[len(chain)-1])
	require.NoError(t, err)
	require.True(t, ok, "last executed block must survive pruning")

	bundle, err := n.viewState.GetBundle()
	require.NoError(t, err)
	require.NotEqual(t, genesis.Hash(), bundle.RootBlockHash)
}
