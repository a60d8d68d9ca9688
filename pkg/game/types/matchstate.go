package types

import (
	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/kinematic"
	"github.com/solarlune/resolv"
)

// BallState is the ball's continuous state. Position is the ball center.
type BallState struct {
	Position kinematic.Vector `json:"position"`
	Velocity kinematic.Vector `json:"velocity"`
	Object   *resolv.Object   `json:"-"`
}

// PaddleState is one paddle's state. CenterY is the vertical center of the
// paddle, clamped to the playfield. Height shrinks over the match.
type PaddleState struct {
	CenterY float64        `json:"centerY"`
	Height  float64        `json:"height"`
	Object  *resolv.Object `json:"-"`
}

// FaceX returns the x coordinate of the paddle's facing edge.
func FaceX(side Side) float64 {
	if side == SideLeft {
		return constants.PaddleFaceOffset
	}
	return constants.PlayfieldWidth - constants.PaddleFaceOffset
}

// MatchState holds all simulation state for one match. It is owned by a
// single session and mutated only by that session's event loop.
type MatchState struct {
	Ball           BallState      `json:"ball"`
	Paddles        [2]PaddleState `json:"paddles"`
	Score          [2]int         `json:"score"`
	Phase          Phase          `json:"phase"`
	CountdownValue int            `json:"countdownValue"`

	// Transient ability effects. SpeedMultiplier applies to ball
	// integration while SpeedMultiplierRemaining > 0.
	SpeedMultiplier          float64 `json:"speedMultiplier"`
	SpeedMultiplierRemaining float64 `json:"-"`
	PendingPowerStrike       [2]bool `json:"-"`

	// CollisionSpace is a resolv.Space used by the emergency overlap check
	CollisionSpace *resolv.Space `json:"-"`
}

// NewMatchState creates a MatchState in the AWAITING_BETS phase with the
// ball centered and both paddles at full height.
func NewMatchState(space *resolv.Space) *MatchState {
	s := &MatchState{
		Ball: BallState{
			Position: kinematic.Vector{X: constants.PlayfieldWidth / 2, Y: constants.PlayfieldHeight / 2},
			Object: resolv.NewObject(
				constants.PlayfieldWidth/2-constants.BallSize/2,
				constants.PlayfieldHeight/2-constants.BallSize/2,
				constants.BallSize,
				constants.BallSize,
				CollisionSpaceTagBall,
			),
		},
		Phase:           PhaseAwaitingBets,
		SpeedMultiplier: 1.0,
		CollisionSpace:  space,
	}

	for side := SideLeft; side <= SideRight; side++ {
		var x float64
		if side == SideLeft {
			x = constants.PaddleFaceOffset - constants.PaddleWidth
		} else {
			x = constants.PlayfieldWidth - constants.PaddleFaceOffset
		}
		s.Paddles[side] = PaddleState{
			CenterY: constants.PlayfieldHeight / 2,
			Height:  constants.PaddleHeight,
			Object: resolv.NewObject(
				x,
				constants.PlayfieldHeight/2-constants.PaddleHeight/2,
				constants.PaddleWidth,
				constants.PaddleHeight,
				CollisionSpaceTagPaddle,
			),
		}
	}

	if space != nil {
		space.Add(s.Ball.Object)
		space.Add(s.Paddles[SideLeft].Object)
		space.Add(s.Paddles[SideRight].Object)
	}

	return s
}

// SyncObjects updates the resolv objects from the continuous state.
func (s *MatchState) SyncObjects() {
	s.Ball.Object.Position.X = s.Ball.Position.X - constants.BallSize/2
	s.Ball.Object.Position.Y = s.Ball.Position.Y - constants.BallSize/2
	s.Ball.Object.Update()

	for side := SideLeft; side <= SideRight; side++ {
		p := &s.Paddles[side]
		p.Object.Position.Y = p.CenterY - p.Height/2
		p.Object.Size.Y = p.Height
		p.Object.Update()
	}
}

// ClampPaddle clamps a paddle center so the paddle stays fully inside the
// playfield for its current height.
func ClampPaddle(centerY float64, height float64) float64 {
	if centerY < height/2 {
		return height / 2
	}
	if centerY > constants.PlayfieldHeight-height/2 {
		return constants.PlayfieldHeight - height/2
	}
	return centerY
}
