// Package hotstuff specifies the external collaborator contract for the
// BFT protocol state machine. The protocol itself (voting, aggregation,
// view-change) is out of scope for this repository; internal/node only
// needs a Service it can start with the node's recovered view state and
// stop during shutdown.
package hotstuff

import (
	"context"

	"github.com/drep-project/robot/internal/types"
)

// InitialState is the view-state handoff the composition root computes
// during crash recovery and feeds to Service.Start. Phase is always
// types.PhasePrepare: a node may have crashed mid any phase, but resuming in
// Prepare of the next view is always safe since a fresh round carries no
// prior votes or new-view aggregations.
type InitialState struct {
	ViewNumber uint64
	Phase      types.Phase

	PrepareQC types.QuorumCertificate
	LockedQC  types.QuorumCertificate
	CommitQC  types.QuorumCertificate

	PreparedBlock types.Block
}

// Service is the running protocol state machine. Start blocks until ctx is
// cancelled or an unrecoverable error occurs; Stop requests a graceful
// shutdown and waits for Start to return.
type Service interface {
	Start(ctx context.Context, initial InitialState) error
	Stop() error
}
