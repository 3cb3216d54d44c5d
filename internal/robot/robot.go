// Package robot implements the toy application the consensus layer orders
// and applies: a grid robot that executes Move/Turn commands. The
// state machine is total — every command produces a result, never an error
// — because the consensus layer's apply step must never fail.
package robot

import (
	"context"
	"time"

	"github.com/drep-project/robot/internal/types"
)

// Model is the bounded grid the robot moves on and the artificial delay
// applied before acknowledging a decided block, standing in for real
// application work.
type Model struct {
	MaxRow                int
	MaxCol                int
	SimulatedDecisionTime time.Duration
}

// Robot holds the current (row, col, heading) and applies commands against
// Model's bounds.
type Robot struct {
	model Model
	state types.CommandResult
}

// New starts the robot at the origin facing North, the same starting pose
// the node package records as the genesis block's state snapshot.
func New(model Model) *Robot {
	return &Robot{model: model, state: types.CommandResult{Row: 0, Col: 0, Heading: types.North}}
}

// State returns the robot's current pose.
func (r *Robot) State() types.CommandResult {
	return r.state
}

// Apply executes cmd against the current pose and simulates decision
// latency before returning the resulting pose. It never errors: an
// out-of-bounds MoveForward is clamped to a no-op rather than rejected.
func (r *Robot) Apply(ctx context.Context, cmd types.Command) types.CommandResult {
	if r.model.SimulatedDecisionTime > 0 {
		select {
		case <-time.After(r.model.SimulatedDecisionTime):
		case <-ctx.Done():
		}
	}

	switch cmd.Kind {
	case types.CommandMoveForward:
		r.state = r.moveForward()
	case types.CommandTurnLeft:
		r.state.Heading = r.state.Heading.TurnLeft()
	case types.CommandTurnRight:
		r.state.Heading = r.state.Heading.TurnRight()
	case types.CommandNone:
		// no-op
	}
	return r.state
}

func (r *Robot) moveForward() types.CommandResult {
	next := r.state
	switch r.state.Heading {
	case types.North:
		next.Row--
	case types.South:
		next.Row++
	case types.East:
		next.Col++
	case types.West:
		next.Col--
	}
	if next.Row < 0 || next.Row >= r.model.MaxRow || next.Col < 0 || next.Col >= r.model.MaxCol {
		return r.state // clamped: out-of-bounds move is a no-op
	}
	return next
}

// Restore resets the robot's pose to a previously persisted snapshot, used
// by the composition root to rehydrate from the bounded state ring.
func (r *Robot) Restore(snapshot types.StateSnapshot) {
	r.state = snapshot.Result
}
