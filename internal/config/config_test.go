package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// 64 hex characters = 32 raw bytes, the Ed25519 public key size.
const (
	testPublicKeyA = "1111111111111111111111111111111111111111111111111111111111111111"
	testPublicKeyB = "2222222222222222222222222222222222222222222222222222222222222222"
)

const sampleConfig = `{
  "network": {
    "nodes": [
      {"address": "127.0.0.1", "port": 9001, "publicKey": "` + testPublicKeyA + `", "privateKey": "bb"},
      {"address": "127.0.0.1", "port": 9002, "publicKey": "` + testPublicKeyB + `"}
    ],
    "timeout": "500ms"
  },
  "consensus": {"minTimeout": "1s", "maxTimeout": "30s", "timeoutFactor": 1.5},
  "db": {"path": "/tmp/robot", "stateHistorySize": 16, "blockHistorySize": 32, "pruneInterval": "10s"},
  "model": {"maxRow": 10, "maxCol": 10, "simulatedDecisionTime": "0s"}
}`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	return path
}

func TestLoadParsesDurationsAndNodes(t *testing.T) {
	cfg, err := Load(writeSampleConfig(t))
	require.NoError(t, err)

	require.Len(t, cfg.Network.Nodes, 2)
	require.Equal(t, "500ms", cfg.Network.Timeout.String())
	require.Equal(t, 1.5, cfg.Consensus.TimeoutFactor)
	require.Equal(t, 16, cfg.DB.StateHistorySize)
}

func TestValidateRejectsOutOfRangeIndex(t *testing.T) {
	cfg, err := Load(writeSampleConfig(t))
	require.NoError(t, err)

	require.ErrorIs(t, cfg.Validate(5), ErrInvalidNodeIndex)
}

func TestValidateRejectsMissingLocalPrivateKey(t *testing.T) {
	cfg, err := Load(writeSampleConfig(t))
	require.NoError(t, err)

	require.ErrorIs(t, cfg.Validate(1), ErrMissingPrivateKey)
}

func TestValidateAcceptsWellFormedLocalNode(t *testing.T) {
	cfg, err := Load(writeSampleConfig(t))
	require.NoError(t, err)

	require.NoError(t, cfg.Validate(0))
}

func TestFederationDecodesKeysForEveryNode(t *testing.T) {
	cfg, err := Load(writeSampleConfig(t))
	require.NoError(t, err)

	members, err := cfg.Federation()
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.NotNil(t, members[0].PrivateKey)
	require.Nil(t, members[1].PrivateKey)
}
