// Package config loads and validates the JSON configuration file.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/drep-project/robot/internal/types"
)

type NodeConfig struct {
	Address    string `json:"address"`
	Port       int    `json:"port"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey,omitempty"`
}

type NetworkConfig struct {
	Nodes   []NodeConfig `json:"nodes"`
	Timeout Duration     `json:"timeout"`
}

type ConsensusConfig struct {
	MinTimeout    Duration `json:"minTimeout"`
	MaxTimeout    Duration `json:"maxTimeout"`
	TimeoutFactor float64  `json:"timeoutFactor"`
}

type DBConfig struct {
	Path             string   `json:"path"`
	StateHistorySize int      `json:"stateHistorySize"`
	BlockHistorySize int      `json:"blockHistorySize"`
	PruneInterval    Duration `json:"pruneInterval"`
}

type ModelConfig struct {
	MaxRow                int      `json:"maxRow"`
	MaxCol                int      `json:"maxCol"`
	SimulatedDecisionTime Duration `json:"simulatedDecisionTime"`
}

type Config struct {
	Network   NetworkConfig   `json:"network"`
	Consensus ConsensusConfig `json:"consensus"`
	DB        DBConfig        `json:"db"`
	Model     ModelConfig     `json:"model"`
}

// Duration unmarshals from a Go duration string ("500ms", "30s") the way
// most of the pack's config-bearing repos encode durations in JSON.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks nodeIndex is in range and every node's public key decodes
// to a well-formed PeerKey. Validation failures are fatal at startup and are
// never retried.
func (c *Config) Validate(nodeIndex int) error {
	if nodeIndex < 0 || nodeIndex >= len(c.Network.Nodes) {
		return fmt.Errorf("%w: node-index %d out of range [0,%d)", ErrInvalidNodeIndex, nodeIndex, len(c.Network.Nodes))
	}
	for i, n := range c.Network.Nodes {
		pub, err := decodeHex(n.PublicKey)
		if err == nil {
			_, err = types.PeerKeyFromBytes(pub)
		}
		if err != nil {
			return fmt.Errorf("%w: node %d: %v", ErrInvalidPublicKey, i, err)
		}
	}
	if c.Network.Nodes[nodeIndex].PrivateKey == "" {
		return fmt.Errorf("%w: node %d has no privateKey", ErrMissingPrivateKey, nodeIndex)
	}
	return nil
}

func decodeHex(s string) ([]byte, error) { return hex.DecodeString(s) }

// Federation builds the static federation table from config, with the
// local node's PrivateKey populated.
func (c *Config) Federation() ([]types.FederationMember, error) {
	members := make([]types.FederationMember, len(c.Network.Nodes))
	for i, n := range c.Network.Nodes {
		pubBytes, err := decodeHex(n.PublicKey)
		if err != nil {
			return nil, err
		}
		key, err := types.PeerKeyFromBytes(pubBytes)
		if err != nil {
			return nil, err
		}
		m := types.FederationMember{
			Key:     key,
			Address: types.PeerAddress{Host: n.Address, Port: n.Port},
		}
		if n.PrivateKey != "" {
			privBytes, err := decodeHex(n.PrivateKey)
			if err != nil {
				return nil, err
			}
			m.PrivateKey = privBytes
		}
		members[i] = m
	}
	return members, nil
}
