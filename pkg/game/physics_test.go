package game

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/cbodonnell/bearpong/pkg/collisions"
	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/cbodonnell/bearpong/pkg/kinematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickDt = 1.0 / 60.0

func newTestState(t *testing.T) *types.MatchState {
	t.Helper()
	state := types.NewMatchState(collisions.NewCollisionSpace())
	state.Phase = types.PhasePlaying
	return state
}

func setBall(state *types.MatchState, x, y, vx, vy float64) {
	state.Ball.Position = kinematic.Vector{X: x, Y: y}
	state.Ball.Velocity = kinematic.Vector{X: vx, Y: vy}
	state.SyncObjects()
}

func TestStepPhysicsWallBounce(t *testing.T) {
	testCases := []struct {
		name string
		y    float64
		vy   float64
	}{
		{
			name: "top wall",
			y:    constants.BallSize / 2,
			vy:   -300,
		},
		{
			name: "bottom wall",
			y:    constants.PlayfieldHeight - constants.BallSize/2,
			vy:   300,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := newTestState(t)
			setBall(state, constants.PlayfieldWidth/2, tc.y, 0, tc.vy)

			result := StepPhysics(state, tickDt)
			require.Nil(t, result.Hit)
			require.Nil(t, result.Scored)

			half := constants.BallSize / 2
			assert.GreaterOrEqual(t, state.Ball.Position.Y, half)
			assert.LessOrEqual(t, state.Ball.Position.Y, constants.PlayfieldHeight-half)
			// vertical velocity reflected, speed unchanged
			assert.InDelta(t, math.Abs(tc.vy), math.Abs(state.Ball.Velocity.Y), 1e-9)
			assert.True(t, tc.vy*state.Ball.Velocity.Y < 0)
		})
	}
}

func TestStepPhysicsPaddleHitReversesBall(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideLeft)
	half := constants.BallSize / 2
	setBall(state, face+half+5, constants.PlayfieldHeight/2, -420, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)
	assert.Equal(t, types.SideLeft, result.Hit.Side)
	assert.True(t, result.Hit.Perfect)
	assert.False(t, result.Hit.Emergency)

	// reflected away from the paddle and repositioned outside it
	assert.Greater(t, state.Ball.Velocity.X, 0.0)
	assert.InDelta(t, face+half, state.Ball.Position.X, 1e-9)

	// a perfect hit ramps the speed twice
	wantSpeed := 420 * constants.BallSpeedRampFactor * constants.BallSpeedRampFactor
	assert.InDelta(t, wantSpeed, state.Ball.Velocity.Length(), 1e-6)
}

func TestStepPhysicsOffCenterHitAddsSpin(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideLeft)
	half := constants.BallSize / 2
	// strike at 80% of the half-height, below the paddle center
	setBall(state, face+half+5, state.Paddles[types.SideLeft].CenterY+40, -420, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)
	assert.InDelta(t, 0.8, result.Hit.Offset, 0.05)
	assert.False(t, result.Hit.Perfect)

	assert.Greater(t, state.Ball.Velocity.X, 0.0)
	assert.Greater(t, state.Ball.Velocity.Y, 0.0, "downward offset must add downward spin")

	speed := state.Ball.Velocity.Length()
	assert.LessOrEqual(t, math.Abs(state.Ball.Velocity.Y), constants.VerticalSpeedMaxFactor*speed+1e-9)
	assert.GreaterOrEqual(t, math.Abs(state.Ball.Velocity.X), constants.HorizontalSpeedMinFactor*speed-1e-9)
}

func TestStepPhysicsOpposedSpinNeverSlowsBall(t *testing.T) {
	testCases := []struct {
		name string
		yOff float64
		vy   float64
	}{
		{
			name: "moving up into the lower half",
			yOff: 45,
			vy:   -177,
		},
		{
			name: "moving down into the upper half",
			yOff: -45,
			vy:   177,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := newTestState(t)
			face := types.FaceX(types.SideLeft)
			half := constants.BallSize / 2
			vx := -math.Sqrt(420*420 - tc.vy*tc.vy)
			setBall(state, face+half+5, state.Paddles[types.SideLeft].CenterY+tc.yOff, vx, tc.vy)

			result := StepPhysics(state, tickDt)
			require.NotNil(t, result.Hit)
			require.False(t, result.Hit.Perfect)

			// the spin term opposes the incoming vertical velocity here; it
			// may redirect the bounce but must never slow it down
			wantSpeed := 420 * constants.BallSpeedRampFactor
			assert.GreaterOrEqual(t, state.Ball.Velocity.Length(), wantSpeed-1e-6)
		})
	}
}

func TestStepPhysicsNoTunnelingAtHighSpeed(t *testing.T) {
	speeds := []float64{420, 900, 1400, 1800}
	offsets := []float64{0, 30, -30, 50}
	angles := []float64{0, math.Pi / 8, -math.Pi / 8, math.Pi / 4, -math.Pi / 4}

	requireHit := func(t *testing.T, state *types.MatchState) {
		t.Helper()
		var hit *HitInfo
		for i := 0; i < 200; i++ {
			result := StepPhysics(state, tickDt)
			if result.Hit != nil {
				hit = result.Hit
				break
			}
			require.Nil(t, result.Scored, "ball passed a covering paddle")
		}

		require.NotNil(t, hit, "ball tunneled through the paddle")
		assert.Equal(t, types.SideLeft, hit.Side)
		assert.Greater(t, state.Ball.Velocity.X, 0.0)
	}

	for _, speed := range speeds {
		for _, offset := range offsets {
			t.Run(fmt.Sprintf("speed %.0f offset %.0f", speed, offset), func(t *testing.T) {
				state := newTestState(t)
				setBall(state, constants.PlayfieldWidth/2, state.Paddles[types.SideLeft].CenterY+offset, -speed, 0)
				requireHit(t, state)
			})
		}

		// angled approaches aimed at the paddle center
		for _, angle := range angles {
			t.Run(fmt.Sprintf("speed %.0f angle %.1f", speed, angle*180/math.Pi), func(t *testing.T) {
				state := newTestState(t)
				const dist = 150.0
				centerY := state.Paddles[types.SideLeft].CenterY
				startX := types.FaceX(types.SideLeft) + dist + constants.BallSize/2
				setBall(state, startX, centerY+dist*math.Tan(angle), -speed*math.Cos(angle), -speed*math.Sin(angle))
				requireHit(t, state)
			})
		}
	}
}

func TestStepPhysicsBallPassesBesidePaddle(t *testing.T) {
	state := newTestState(t)
	// well clear of the paddle's vertical extent
	setBall(state, constants.PlayfieldWidth/2, state.Paddles[types.SideLeft].CenterY+120, -900, 0)

	var scored *types.Side
	for i := 0; i < 200; i++ {
		result := StepPhysics(state, tickDt)
		require.Nil(t, result.Hit)
		if result.Scored != nil {
			scored = result.Scored
			break
		}
	}

	require.NotNil(t, scored)
	assert.Equal(t, types.SideRight, *scored)
}

func TestStepPhysicsEmergencyBounceFiresOnce(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideLeft)
	// overlapping the left paddle but moving away, so the swept test
	// cannot claim the hit
	setBall(state, face-2, state.Paddles[types.SideLeft].CenterY, 60, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)
	assert.True(t, result.Hit.Emergency)
	assert.Greater(t, state.Ball.Velocity.X, 0.0)
	assert.InDelta(t, face+constants.BallSize/2, state.Ball.Position.X, 1e-9)

	// the repositioned ball is flush with the face; the next step must not
	// resolve a second hit
	result = StepPhysics(state, tickDt)
	assert.Nil(t, result.Hit)
}

func TestStepPhysicsSpeedNeverExceedsMax(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideRight)
	half := constants.BallSize / 2
	state.PendingPowerStrike[types.SideRight] = true
	setBall(state, face-half-5, state.Paddles[types.SideRight].CenterY, constants.BallMaxSpeed, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)
	assert.True(t, result.Hit.PowerStrike)
	assert.False(t, state.PendingPowerStrike[types.SideRight])
	assert.LessOrEqual(t, state.Ball.Velocity.Length(), constants.BallMaxSpeed+1e-6)
}

func TestStepPhysicsPowerStrikeRampsSpeed(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideLeft)
	half := constants.BallSize / 2
	state.PendingPowerStrike[types.SideLeft] = true
	setBall(state, face+half+5, state.Paddles[types.SideLeft].CenterY, -420, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)
	require.True(t, result.Hit.PowerStrike)

	wantSpeed := 420 * math.Pow(constants.BallSpeedRampFactor, float64(constants.PowerStrikeRampCount))
	assert.InDelta(t, wantSpeed, state.Ball.Velocity.Length(), 1e-6)
}

func TestStepPhysicsHitShrinksBothPaddles(t *testing.T) {
	state := newTestState(t)
	face := types.FaceX(types.SideLeft)
	half := constants.BallSize / 2
	setBall(state, face+half+5, state.Paddles[types.SideLeft].CenterY, -420, 0)

	result := StepPhysics(state, tickDt)
	require.NotNil(t, result.Hit)

	want := constants.PaddleHeight - constants.PaddleShrinkPerHit
	assert.Equal(t, want, state.Paddles[types.SideLeft].Height)
	assert.Equal(t, want, state.Paddles[types.SideRight].Height)
}

func TestPaddleShrinkFloor(t *testing.T) {
	state := newTestState(t)
	hit := &HitInfo{Side: types.SideLeft, Offset: 0, Perfect: true}
	for i := 0; i < 100; i++ {
		resolveHit(state, hit)
	}
	assert.Equal(t, constants.PaddleMinHeight, state.Paddles[types.SideLeft].Height)
	assert.Equal(t, constants.PaddleMinHeight, state.Paddles[types.SideRight].Height)
}

func TestResetBall(t *testing.T) {
	state := newTestState(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		ResetBall(state, rng)
		assert.Equal(t, constants.PlayfieldWidth/2, state.Ball.Position.X)
		assert.Equal(t, constants.PlayfieldHeight/2, state.Ball.Position.Y)
		assert.InDelta(t, constants.BallInitialSpeed, state.Ball.Velocity.Length(), 1e-9)
		// launch angle stays within 45 degrees of horizontal
		assert.LessOrEqual(t, math.Abs(state.Ball.Velocity.Y), math.Abs(state.Ball.Velocity.X)+1e-9)
	}
}

func TestTimeDistortionSlowsIntegration(t *testing.T) {
	state := newTestState(t)
	setBall(state, constants.PlayfieldWidth/2, constants.PlayfieldHeight/2, 420, 0)
	state.SpeedMultiplier = constants.TimeDistortionFactor
	state.SpeedMultiplierRemaining = constants.TimeDistortionDuration.Seconds()

	before := state.Ball.Position.X
	StepPhysics(state, tickDt)
	moved := state.Ball.Position.X - before
	assert.InDelta(t, 420*constants.TimeDistortionFactor*tickDt, moved, 1e-9)

	// run past the distortion window and confirm the effect expires
	for i := 0; i < constants.TickRate*5; i++ {
		StepPhysics(state, tickDt)
		if state.Ball.Position.X+constants.BallSize/2 > types.FaceX(types.SideRight)-50 {
			// keep the ball clear of the right paddle
			state.Ball.Position.X = constants.PlayfieldWidth / 2
			state.SyncObjects()
		}
	}
	assert.Equal(t, 1.0, state.SpeedMultiplier)
	assert.Equal(t, 0.0, state.SpeedMultiplierRemaining)
}
