package game

import (
	"math"
	"math/rand"

	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/cbodonnell/bearpong/pkg/kinematic"
)

// HitInfo describes a paddle hit resolved during one physics step.
type HitInfo struct {
	// Side is the paddle that struck the ball
	Side types.Side
	// Offset is where along the paddle the ball struck, normalized to [-1, 1]
	Offset float64
	// Perfect is true when the ball struck the narrow center band
	Perfect bool
	// PowerStrike is true when the hit consumed an armed power strike
	PowerStrike bool
	// Emergency is true when the hit came from the overlap check
	// rather than the swept test
	Emergency bool
}

// StepResult reports what happened during one physics step.
type StepResult struct {
	Hit    *HitInfo
	Scored *types.Side
}

// StepPhysics advances the ball by one fixed timestep and resolves wall and
// paddle collisions. Paddle positions are inputs here; they only change
// through player commands and the teleport ability.
func StepPhysics(state *types.MatchState, dt float64) StepResult {
	multiplier := 1.0
	if state.SpeedMultiplierRemaining > 0 {
		multiplier = state.SpeedMultiplier
		state.SpeedMultiplierRemaining -= dt
		if state.SpeedMultiplierRemaining <= 0 {
			state.SpeedMultiplier = 1.0
			state.SpeedMultiplierRemaining = 0
		}
	}

	before := state.Ball.Position
	state.Ball.Position.X += kinematic.Displacement(state.Ball.Velocity.X*multiplier, dt, 0)
	state.Ball.Position.Y += kinematic.Displacement(state.Ball.Velocity.Y*multiplier, dt, 0)

	// wall collisions are perfectly elastic
	half := constants.BallSize / 2
	if state.Ball.Position.Y-half < 0 {
		state.Ball.Position.Y = half
		state.Ball.Velocity.Y = math.Abs(state.Ball.Velocity.Y)
	} else if state.Ball.Position.Y+half > constants.PlayfieldHeight {
		state.Ball.Position.Y = constants.PlayfieldHeight - half
		state.Ball.Velocity.Y = -math.Abs(state.Ball.Velocity.Y)
	}

	state.SyncObjects()

	result := StepResult{}
	for side := types.SideLeft; side <= types.SideRight; side++ {
		if hit := sweptPaddleHit(state, side, before); hit != nil {
			resolveHit(state, hit)
			result.Hit = hit
			break
		}
	}

	// The overlap check covers cases the swept test misses, e.g. a paddle
	// teleported onto the ball. It must not fire on a tick the swept test
	// already resolved.
	if result.Hit == nil {
		for side := types.SideLeft; side <= types.SideRight; side++ {
			if hit := overlapPaddleHit(state, side); hit != nil {
				resolveHit(state, hit)
				result.Hit = hit
				break
			}
		}
	}

	if state.Ball.Position.X+half < 0 {
		scorer := types.SideRight
		result.Scored = &scorer
	} else if state.Ball.Position.X-half > constants.PlayfieldWidth {
		scorer := types.SideLeft
		result.Scored = &scorer
	}

	return result
}

// sweptPaddleHit tests whether the ball's leading edge crossed the paddle's
// facing edge between the previous and current position. The crossing test
// is widened by a speed-scaled padding to compensate for large per-tick
// displacement; the vertical-extent test is not.
func sweptPaddleHit(state *types.MatchState, side types.Side, before kinematic.Vector) *HitInfo {
	ball := &state.Ball
	half := constants.BallSize / 2
	face := types.FaceX(side)

	var lead0, lead1 float64
	if side == types.SideLeft {
		if ball.Velocity.X >= 0 {
			return nil
		}
		lead0 = before.X - half
		lead1 = ball.Position.X - half
	} else {
		if ball.Velocity.X <= 0 {
			return nil
		}
		lead0 = before.X + half
		lead1 = ball.Position.X + half
	}

	pad := constants.CollisionPaddingBase + constants.CollisionPaddingPerSpeed*ball.Velocity.Length()
	if side == types.SideLeft {
		if lead0 < face-pad || lead1 > face+pad {
			return nil
		}
	} else {
		if lead0 > face+pad || lead1 < face-pad {
			return nil
		}
	}

	// time fraction at which the leading edge crosses the facing edge
	t := 0.0
	if denom := lead0 - lead1; denom != 0 {
		t = (lead0 - face) / denom
	}
	t = math.Max(0, math.Min(1, t))
	yAtCross := before.Y + (ball.Position.Y-before.Y)*t

	paddle := &state.Paddles[side]
	if math.Abs(yAtCross-paddle.CenterY) > paddle.Height/2+half {
		return nil
	}

	offset := clampOffset((yAtCross - paddle.CenterY) / (paddle.Height / 2))
	return &HitInfo{
		Side:    side,
		Offset:  offset,
		Perfect: math.Abs(offset) <= constants.PerfectHitBand,
	}
}

// overlapPaddleHit forces a bounce when the ball geometrically overlaps a
// paddle along both axes.
func overlapPaddleHit(state *types.MatchState, side types.Side) *HitInfo {
	ball := &state.Ball
	paddle := &state.Paddles[side]

	if !ball.Object.SharesCells(paddle.Object) {
		return nil
	}

	half := constants.BallSize / 2
	var paddleCenterX float64
	if side == types.SideLeft {
		paddleCenterX = types.FaceX(side) - constants.PaddleWidth/2
	} else {
		paddleCenterX = types.FaceX(side) + constants.PaddleWidth/2
	}

	if math.Abs(ball.Position.X-paddleCenterX) >= half+constants.PaddleWidth/2 {
		return nil
	}
	if math.Abs(ball.Position.Y-paddle.CenterY) >= half+paddle.Height/2 {
		return nil
	}

	offset := clampOffset((ball.Position.Y - paddle.CenterY) / (paddle.Height / 2))
	return &HitInfo{
		Side:      side,
		Offset:    offset,
		Perfect:   math.Abs(offset) <= constants.PerfectHitBand,
		Emergency: true,
	}
}

// resolveHit applies the hit response: reflect, reposition, spin, clamp the
// vertical component, floor the horizontal component, ramp the speed, and
// shrink both paddles.
func resolveHit(state *types.MatchState, hit *HitInfo) {
	ball := &state.Ball
	v := &ball.Velocity
	half := constants.BallSize / 2
	face := types.FaceX(hit.Side)

	ramps := 1
	if hit.Perfect {
		ramps = 2
	}
	if state.PendingPowerStrike[hit.Side] {
		ramps = constants.PowerStrikeRampCount
		state.PendingPowerStrike[hit.Side] = false
		hit.PowerStrike = true
	}

	var away float64
	if hit.Side == types.SideLeft {
		away = 1
		v.X = math.Abs(v.X)
		ball.Position.X = face + half
	} else {
		away = -1
		v.X = -math.Abs(v.X)
		ball.Position.X = face - half
	}

	// spin: less influence at high speed so it never dominates the bounce
	incoming := v.Length()
	v.Y += hit.Offset * constants.SpinCoefficientBase / (1 + incoming/constants.SpinSpeedSoftening)

	speed := v.Length()
	maxVy := constants.VerticalSpeedMaxFactor * speed
	if v.Y > maxVy {
		v.Y = maxVy
	} else if v.Y < -maxVy {
		v.Y = -maxVy
	}
	minVx := constants.HorizontalSpeedMinFactor * speed
	if math.Abs(v.X) < minVx {
		v.X = away * minVx
	}

	// spin redirects the bounce; it must never slow it down, even when it
	// cancels an opposed vertical component
	if speed = v.Length(); speed < incoming && speed > 0 {
		*v = v.Scale(incoming / speed)
	}

	for i := 0; i < ramps; i++ {
		*v = v.Scale(constants.BallSpeedRampFactor)
	}
	*v = v.ClampLength(constants.BallMaxSpeed)

	// every hit shrinks both paddles
	for side := types.SideLeft; side <= types.SideRight; side++ {
		paddle := &state.Paddles[side]
		paddle.Height -= constants.PaddleShrinkPerHit
		if paddle.Height < constants.PaddleMinHeight {
			paddle.Height = constants.PaddleMinHeight
		}
		paddle.CenterY = types.ClampPaddle(paddle.CenterY, paddle.Height)
	}

	state.SyncObjects()
}

// ResetBall recenters the ball and launches it with a random horizontal
// direction and an angle within the configured range of horizontal.
func ResetBall(state *types.MatchState, rng *rand.Rand) {
	angle := (rng.Float64()*2 - 1) * constants.BallLaunchMaxAngle
	dir := 1.0
	if rng.Intn(2) == 0 {
		dir = -1.0
	}

	state.Ball.Position = kinematic.Vector{
		X: constants.PlayfieldWidth / 2,
		Y: constants.PlayfieldHeight / 2,
	}
	state.Ball.Velocity = kinematic.Vector{
		X: dir * constants.BallInitialSpeed * math.Cos(angle),
		Y: constants.BallInitialSpeed * math.Sin(angle),
	}
	state.SyncObjects()
}

func clampOffset(offset float64) float64 {
	return math.Max(-1, math.Min(1, offset))
}
