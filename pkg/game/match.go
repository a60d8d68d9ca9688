package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/solarlune/resolv"
)

// ErrInvalidPhase is returned when an operation is not valid in the
// match's current phase.
type ErrInvalidPhase struct {
	Op    string
	Phase types.Phase
}

func (e *ErrInvalidPhase) Error() string {
	return fmt.Sprintf("%s is not valid in phase %s", e.Op, e.Phase)
}

func IsInvalidPhase(err error) bool {
	_, ok := err.(*ErrInvalidPhase)
	return ok
}

// Match is the scoring and phase state machine for one game. It owns the
// match state and the wager state and advances them in response to discrete
// events posted by the session's timers and player commands. Match is not
// safe for concurrent use; the owning session serializes access.
type Match struct {
	State *types.MatchState
	Wager *types.WagerState

	usage                    *AbilityUsage
	winningScore             int
	preMatchCountdownStart   int
	scorePauseCountdownStart int
	rng                      *rand.Rand
}

// NewMatchOptions contains options for creating a new Match.
// Zero values fall back to the deployment constants.
type NewMatchOptions struct {
	CollisionSpace           *resolv.Space
	WinningScore             int
	PreMatchCountdownStart   int
	ScorePauseCountdownStart int
	Rand                     *rand.Rand
}

func NewMatch(opts NewMatchOptions) *Match {
	winningScore := opts.WinningScore
	if winningScore == 0 {
		winningScore = constants.WinningScore
	}
	preMatch := opts.PreMatchCountdownStart
	if preMatch == 0 {
		preMatch = constants.PreMatchCountdownStart
	}
	scorePause := opts.ScorePauseCountdownStart
	if scorePause == 0 {
		scorePause = constants.ScorePauseCountdownStart
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Match{
		State:                    types.NewMatchState(opts.CollisionSpace),
		Wager:                    &types.WagerState{},
		usage:                    NewAbilityUsage(),
		winningScore:             winningScore,
		preMatchCountdownStart:   preMatch,
		scorePauseCountdownStart: scorePause,
		rng:                      rng,
	}
}

// SetBet sets or updates a player's bet. Bets may be updated any number of
// times until the wager is finalized.
func (m *Match) SetBet(side types.Side, amount int64) error {
	if m.State.Phase != types.PhaseAwaitingBets {
		return &ErrInvalidPhase{Op: "set_bet", Phase: m.State.Phase}
	}
	if m.Wager.Finalized {
		return fmt.Errorf("wager is already finalized")
	}
	if amount < 0 {
		return fmt.Errorf("bet amount must not be negative")
	}
	m.Wager.Bets[side] = amount
	return nil
}

// SetReady records a player's readiness signal. A repeated signal is a
// no-op. It returns true when both players are ready.
func (m *Match) SetReady(side types.Side) (bool, error) {
	if m.State.Phase != types.PhaseAwaitingBets {
		return false, &ErrInvalidPhase{Op: "ready_to_start", Phase: m.State.Phase}
	}
	m.Wager.Ready[side] = true
	return m.Wager.Ready[types.SideLeft] && m.Wager.Ready[types.SideRight], nil
}

// AnyReady reports whether at least one player has signaled readiness.
func (m *Match) AnyReady() bool {
	return m.Wager.Ready[types.SideLeft] || m.Wager.Ready[types.SideRight]
}

// StartCountdown finalizes the wager and enters the pre-match countdown.
// It returns the resolved wager amount and the initial countdown value.
func (m *Match) StartCountdown() (int64, int) {
	amount := m.Wager.Finalize()
	m.State.Phase = types.PhaseCountdown
	m.State.CountdownValue = m.preMatchCountdownStart
	return amount, m.State.CountdownValue
}

// CountdownResult reports the outcome of one countdown tick.
type CountdownResult struct {
	// Value is the countdown value after the tick; 0 signals "go"
	Value int
	// Finished is true when the countdown completed and play (re)started
	Finished bool
}

// CountdownTick advances the countdown by one step. On reaching zero the
// ball is reset with a randomized serve and the match enters PLAYING.
func (m *Match) CountdownTick() (CountdownResult, error) {
	if m.State.Phase != types.PhaseCountdown && m.State.Phase != types.PhaseScorePause {
		return CountdownResult{}, &ErrInvalidPhase{Op: "countdown_tick", Phase: m.State.Phase}
	}

	m.State.CountdownValue--
	if m.State.CountdownValue > 0 {
		return CountdownResult{Value: m.State.CountdownValue}, nil
	}

	m.State.CountdownValue = 0
	ResetBall(m.State, m.rng)
	m.State.Phase = types.PhasePlaying
	return CountdownResult{Value: 0, Finished: true}, nil
}

// StartScorePause suspends play for the post-score countdown.
func (m *Match) StartScorePause() int {
	m.State.Phase = types.PhaseScorePause
	m.State.CountdownValue = m.scorePauseCountdownStart
	return m.State.CountdownValue
}

// TickResult reports the outcome of one simulation tick.
type TickResult struct {
	Hit    *HitInfo
	Scored *types.Side
	// ScorePause is true when the point did not end the match and the
	// post-score countdown must start
	ScorePause bool
	// GameOver is true when the point reached the winning score
	GameOver bool
	Winner   types.Side
}

// Tick runs one simulation step. It is a no-op outside the PLAYING phase.
// A point that reaches the winning score transitions directly to GAME_OVER,
// short-circuiting the score pause.
func (m *Match) Tick(dt float64) TickResult {
	if m.State.Phase != types.PhasePlaying {
		return TickResult{}
	}

	step := StepPhysics(m.State, dt)
	result := TickResult{
		Hit:    step.Hit,
		Scored: step.Scored,
	}

	if step.Scored == nil {
		return result
	}

	scorer := *step.Scored
	m.State.Score[scorer]++
	if m.State.Score[scorer] >= m.winningScore {
		m.State.Phase = types.PhaseGameOver
		result.GameOver = true
		result.Winner = scorer
		return result
	}

	m.StartScorePause()
	result.ScorePause = true
	return result
}

// MovePaddle moves a player's paddle, clamped to the playfield. Moves are
// accepted in any non-terminal phase and take effect on the next tick.
func (m *Match) MovePaddle(side types.Side, y float64) error {
	if m.State.Phase == types.PhaseGameOver {
		return &ErrInvalidPhase{Op: "paddle_move", Phase: m.State.Phase}
	}
	paddle := &m.State.Paddles[side]
	paddle.CenterY = types.ClampPaddle(y, paddle.Height)
	m.State.SyncObjects()
	return nil
}

// UseAbility validates and applies a one-shot ability during play.
func (m *Match) UseAbility(side types.Side, kind types.AbilityKind) error {
	if m.State.Phase != types.PhasePlaying {
		return &ErrInvalidPhase{Op: "use_ultimate", Phase: m.State.Phase}
	}
	return ApplyAbility(m.State, m.usage, side, kind)
}

// AbilityUsed reports whether the side already consumed the ability kind.
func (m *Match) AbilityUsed(side types.Side, kind types.AbilityKind) bool {
	return m.usage.Used(side, kind)
}
