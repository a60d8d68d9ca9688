package types

import "fmt"

// Side identifies one of the two player slots in a match.
// The first player dequeued from matchmaking is always SideLeft.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// ParseSide parses a side string into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	default:
		return SideLeft, fmt.Errorf("unknown side: %s", s)
	}
}

// Phase is the match phase.
type Phase string

const (
	PhaseAwaitingBets Phase = "awaiting_bets"
	PhaseCountdown    Phase = "countdown"
	PhasePlaying      Phase = "playing"
	PhaseScorePause   Phase = "score_pause"
	PhaseGameOver     Phase = "game_over"
)

// AbilityKind identifies one of the three one-shot ultimate abilities.
type AbilityKind string

const (
	AbilityTimeDistortion AbilityKind = "time_distortion"
	AbilityTeleport       AbilityKind = "teleport"
	AbilityPowerStrike    AbilityKind = "power_strike"
)

// ParseAbilityKind parses an ability kind string.
func ParseAbilityKind(s string) (AbilityKind, error) {
	switch AbilityKind(s) {
	case AbilityTimeDistortion, AbilityTeleport, AbilityPowerStrike:
		return AbilityKind(s), nil
	default:
		return "", fmt.Errorf("unknown ability kind: %s", s)
	}
}
