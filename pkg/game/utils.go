package game

import (
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/cbodonnell/bearpong/pkg/messages"
)

// ServerGameStateFromMatch builds the per-tick broadcast payload from the
// match state.
func ServerGameStateFromMatch(timestamp int64, state *types.MatchState) *messages.ServerGameState {
	update := &messages.ServerGameState{
		Timestamp: timestamp,
		Ball: messages.BallUpdate{
			X:  state.Ball.Position.X,
			Y:  state.Ball.Position.Y,
			VX: state.Ball.Velocity.X,
			VY: state.Ball.Velocity.Y,
		},
		Score:           state.Score,
		Phase:           string(state.Phase),
		SpeedMultiplier: state.SpeedMultiplier,
	}

	for side := types.SideLeft; side <= types.SideRight; side++ {
		update.Paddles[side] = messages.PaddleUpdate{
			CenterY: state.Paddles[side].CenterY,
			Height:  state.Paddles[side].Height,
		}
	}

	return update
}
