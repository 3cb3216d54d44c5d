package types

// Phase is one of the three HotStuff voting rounds.
type Phase uint8

const (
	PhasePrepare Phase = iota
	PhasePreCommit
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhasePreCommit:
		return "precommit"
	case PhaseCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// AggregateSignature is a supermajority's worth of per-validator signatures
// over a (Phase, ViewNumber, BlockHash) tuple, plus a bitmap of which
// federation members (by index into the static federation table) signed.
type AggregateSignature struct {
	Signers    []byte // bitmap, one bit per federation member index
	Signatures [][]byte
}

func (s AggregateSignature) IsEmpty() bool {
	return len(s.Signers) == 0 && len(s.Signatures) == 0
}

// QuorumCertificate is an aggregated signature by a supermajority of the
// federation over (Phase, ViewNumber, BlockHash).
type QuorumCertificate struct {
	Phase      Phase
	ViewNumber uint64
	BlockHash  Hash
	Aggregate  AggregateSignature
}

// ViewStateBundle is the single persisted consensus checkpoint a node
// keeps: exactly one instance exists per node, updated atomically.
type ViewStateBundle struct {
	ViewNumber            uint64
	PrepareQC             QuorumCertificate
	LockedQC              QuorumCertificate
	CommitQC              QuorumCertificate
	RootBlockHash         Hash
	LastExecutedBlockHash Hash
}

// GenesisViewStateBundle builds the bundle seeded on first startup: view 0,
// all three QCs pointing at genesis in Prepare phase with an empty
// aggregate signature, root and last-executed both genesis.
func GenesisViewStateBundle(genesisHash Hash) ViewStateBundle {
	qc := QuorumCertificate{
		Phase:      PhasePrepare,
		ViewNumber: 0,
		BlockHash:  genesisHash,
	}
	return ViewStateBundle{
		ViewNumber:            0,
		PrepareQC:             qc,
		LockedQC:              qc,
		CommitQC:              qc,
		RootBlockHash:         genesisHash,
		LastExecutedBlockHash: genesisHash,
	}
}

// StateSnapshot is the application post-state keyed by its defining block's
// hash.
type StateSnapshot struct {
	Result CommandResult
}
