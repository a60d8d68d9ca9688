package game

import (
	"fmt"

	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
)

// ErrAbilityUsed is returned when a player replays an ability kind they
// already consumed this match.
type ErrAbilityUsed struct {
	Kind types.AbilityKind
}

func (e *ErrAbilityUsed) Error() string {
	return fmt.Sprintf("ability already used: %s", e.Kind)
}

func IsAbilityUsed(err error) bool {
	_, ok := err.(*ErrAbilityUsed)
	return ok
}

// AbilityUsage tracks which ability kinds each player has consumed.
// Each of the three kinds may be invoked at most once per player per match.
type AbilityUsage struct {
	used [2]map[types.AbilityKind]bool
}

func NewAbilityUsage() *AbilityUsage {
	return &AbilityUsage{
		used: [2]map[types.AbilityKind]bool{
			{},
			{},
		},
	}
}

// Consume marks the ability as used for the given side. It returns an
// ErrAbilityUsed without mutating anything if the kind was already consumed.
func (u *AbilityUsage) Consume(side types.Side, kind types.AbilityKind) error {
	if u.used[side][kind] {
		return &ErrAbilityUsed{Kind: kind}
	}
	u.used[side][kind] = true
	return nil
}

// Used reports whether the side has consumed the ability kind.
func (u *AbilityUsage) Used(side types.Side, kind types.AbilityKind) bool {
	return u.used[side][kind]
}

// ApplyAbility validates the ability against the usage set and applies its
// effect to the match state. The caller is responsible for broadcasting the
// activation to both players.
func ApplyAbility(state *types.MatchState, usage *AbilityUsage, side types.Side, kind types.AbilityKind) error {
	if err := usage.Consume(side, kind); err != nil {
		return err
	}

	switch kind {
	case types.AbilityTimeDistortion:
		state.SpeedMultiplier = constants.TimeDistortionFactor
		state.SpeedMultiplierRemaining = constants.TimeDistortionDuration.Seconds()
	case types.AbilityTeleport:
		paddle := &state.Paddles[side]
		paddle.CenterY = types.ClampPaddle(state.Ball.Position.Y, paddle.Height)
		state.SyncObjects()
	case types.AbilityPowerStrike:
		state.PendingPowerStrike[side] = true
	default:
		return fmt.Errorf("unknown ability kind: %s", kind)
	}

	return nil
}
