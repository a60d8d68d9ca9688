package game

import (
	"testing"

	"github.com/cbodonnell/bearpong/pkg/collisions"
	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbilityUsageOneUsePerKind(t *testing.T) {
	usage := NewAbilityUsage()

	require.NoError(t, usage.Consume(types.SideLeft, types.AbilityTeleport))
	err := usage.Consume(types.SideLeft, types.AbilityTeleport)
	require.Error(t, err)
	assert.True(t, IsAbilityUsed(err))

	// other kinds and the other side are unaffected
	assert.False(t, usage.Used(types.SideLeft, types.AbilityPowerStrike))
	require.NoError(t, usage.Consume(types.SideLeft, types.AbilityPowerStrike))
	require.NoError(t, usage.Consume(types.SideRight, types.AbilityTeleport))
}

func TestApplyAbilityTimeDistortion(t *testing.T) {
	state := types.NewMatchState(collisions.NewCollisionSpace())
	usage := NewAbilityUsage()

	require.NoError(t, ApplyAbility(state, usage, types.SideLeft, types.AbilityTimeDistortion))
	assert.Equal(t, constants.TimeDistortionFactor, state.SpeedMultiplier)
	assert.Equal(t, constants.TimeDistortionDuration.Seconds(), state.SpeedMultiplierRemaining)
}

func TestApplyAbilityTeleport(t *testing.T) {
	state := types.NewMatchState(collisions.NewCollisionSpace())
	usage := NewAbilityUsage()

	state.Ball.Position.Y = 120
	state.SyncObjects()
	require.NoError(t, ApplyAbility(state, usage, types.SideRight, types.AbilityTeleport))
	assert.Equal(t, 120.0, state.Paddles[types.SideRight].CenterY)
	// other paddle untouched
	assert.Equal(t, constants.PlayfieldHeight/2, state.Paddles[types.SideLeft].CenterY)
}

func TestApplyAbilityTeleportClampsToPlayfield(t *testing.T) {
	state := types.NewMatchState(collisions.NewCollisionSpace())
	usage := NewAbilityUsage()

	state.Ball.Position.Y = 5
	state.SyncObjects()
	require.NoError(t, ApplyAbility(state, usage, types.SideLeft, types.AbilityTeleport))
	assert.Equal(t, state.Paddles[types.SideLeft].Height/2, state.Paddles[types.SideLeft].CenterY)
}

func TestApplyAbilityPowerStrikeArms(t *testing.T) {
	state := types.NewMatchState(collisions.NewCollisionSpace())
	usage := NewAbilityUsage()

	require.NoError(t, ApplyAbility(state, usage, types.SideLeft, types.AbilityPowerStrike))
	assert.True(t, state.PendingPowerStrike[types.SideLeft])
	assert.False(t, state.PendingPowerStrike[types.SideRight])
}

func TestApplyAbilityRejectsSecondUse(t *testing.T) {
	state := types.NewMatchState(collisions.NewCollisionSpace())
	usage := NewAbilityUsage()

	require.NoError(t, ApplyAbility(state, usage, types.SideLeft, types.AbilityPowerStrike))
	state.PendingPowerStrike[types.SideLeft] = false

	err := ApplyAbility(state, usage, types.SideLeft, types.AbilityPowerStrike)
	require.Error(t, err)
	assert.True(t, IsAbilityUsed(err))
	assert.False(t, state.PendingPowerStrike[types.SideLeft], "rejected use must not re-arm the strike")
}
