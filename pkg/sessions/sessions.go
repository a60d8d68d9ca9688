package sessions

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/bearpong/pkg/collisions"
	"github.com/cbodonnell/bearpong/pkg/game"
	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/cbodonnell/bearpong/pkg/game/types"
	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/messages"
	"github.com/google/uuid"
)

// Notifier delivers outbound notifications to clients. Delivery is best
// effort: a failed delivery must be logged and swallowed, never surfaced to
// the simulation.
type Notifier interface {
	Notify(clientID uint32, msgType string, payload interface{})
}

// Player is one of the two participants in a session.
type Player struct {
	ClientID uint32
	UserID   string
	Name     string
}

// Result is the settled outcome of a completed match.
type Result struct {
	SessionID    string
	WinnerUserID string
	LoserUserID  string
	Amount       int64
	Score        [2]int
}

// Options contains tunables for a session. Zero values fall back to the
// deployment constants.
type Options struct {
	TickInterval             time.Duration
	CountdownInterval        time.Duration
	BettingWindow            time.Duration
	StartDelay               time.Duration
	PreMatchCountdownStart   int
	ScorePauseCountdownStart int
	WinningScore             int
	Rand                     *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.TickInterval == 0 {
		o.TickInterval = constants.TickInterval
	}
	if o.CountdownInterval == 0 {
		o.CountdownInterval = time.Second
	}
	if o.BettingWindow == 0 {
		o.BettingWindow = constants.BettingWindowDuration
	}
	if o.StartDelay == 0 {
		o.StartDelay = constants.MatchStartDelay
	}
	return o
}

// internal events posted by timers and inbound command handlers. The run
// loop consumes them one at a time, so handlers never race on match state.
type sessionEvent interface{}

type commandEvent struct {
	clientID uint32
	msg      *messages.Message
}

type negotiationStartEvent struct{}

type bettingExpiredEvent struct{}

type countdownTickEvent struct{}

type tickEvent struct {
	t time.Time
}

type leaveEvent struct {
	clientID uint32
}

// Session is the externally addressable unit for one match. It owns the
// match state machine, every timer driving it, and outbound notification
// for its two players.
type Session struct {
	ID string

	players  [2]Player
	match    *game.Match
	notifier Notifier
	opts     Options
	results  chan<- Result
	onClose  func(*Session)

	events    chan sessionEvent
	done      chan struct{}
	closeOnce sync.Once

	startTimer    *time.Timer
	bettingTimer  *time.Timer
	tickStop      chan struct{}
	countdownStop chan struct{}
}

// NewSessionOptions contains options for creating a new Session.
type NewSessionOptions struct {
	// Left is the first player dequeued from matchmaking
	Left  Player
	Right Player
	// Notifier delivers outbound notifications
	Notifier Notifier
	// Results receives the settled outcome of a completed match; may be nil
	Results chan<- Result
	// OnClose is called exactly once when the session tears down; may be nil
	OnClose func(*Session)
	Options Options
}

func NewSession(opts NewSessionOptions) *Session {
	options := opts.Options.withDefaults()
	return &Session{
		ID:       uuid.New().String(),
		players:  [2]Player{opts.Left, opts.Right},
		match: game.NewMatch(game.NewMatchOptions{
			CollisionSpace:           collisions.NewCollisionSpace(),
			WinningScore:             options.WinningScore,
			PreMatchCountdownStart:   options.PreMatchCountdownStart,
			ScorePauseCountdownStart: options.ScorePauseCountdownStart,
			Rand:                     options.Rand,
		}),
		notifier: opts.Notifier,
		opts:     options,
		results:  opts.Results,
		onClose:  opts.OnClose,
		events:   make(chan sessionEvent, 256),
		done:     make(chan struct{}),
	}
}

// Players returns the two players, indexed by side.
func (s *Session) Players() [2]Player {
	return s.players
}

// Start notifies both players of the match and begins wager negotiation
// after a short fixed delay.
func (s *Session) Start() {
	log.Info("Session %s: %s (left) vs %s (right)", s.ID, s.players[types.SideLeft].Name, s.players[types.SideRight].Name)

	for side := types.SideLeft; side <= types.SideRight; side++ {
		opponent := s.players[side.Opponent()]
		s.notify(side, messages.MessageTypeServerMatchFound, &messages.ServerMatchFound{
			SessionID: s.ID,
			Side:      side.String(),
			Opponent:  messages.PlayerInfo{Name: opponent.Name},
		})
	}

	s.startTimer = time.AfterFunc(s.opts.StartDelay, func() {
		s.post(negotiationStartEvent{})
	})

	go s.run()
}

// HandleCommand posts an inbound player command to the session's event
// loop.
func (s *Session) HandleCommand(clientID uint32, msg *messages.Message) {
	s.post(commandEvent{clientID: clientID, msg: msg})
}

// HandleDisconnect posts a disconnect for one of the session's players.
func (s *Session) HandleDisconnect(clientID uint32) {
	s.post(leaveEvent{clientID: clientID})
}

// Done is closed when the session has torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// post delivers an event to the session's loop. It blocks until the loop
// accepts the event or the session tears down; events are never dropped, so
// a leave always reaches the loop. Callers are timer and network goroutines,
// never the loop itself, so this cannot deadlock.
func (s *Session) post(ev sessionEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handleEvent(ev)
		}
	}
}

func (s *Session) handleEvent(ev sessionEvent) {
	switch ev := ev.(type) {
	case negotiationStartEvent:
		s.bettingTimer = time.AfterFunc(s.opts.BettingWindow, func() {
			s.post(bettingExpiredEvent{})
		})
	case bettingExpiredEvent:
		s.handleBettingExpired()
	case countdownTickEvent:
		s.handleCountdownTick()
	case tickEvent:
		s.handleTick(ev.t)
	case commandEvent:
		s.handleCommand(ev.clientID, ev.msg)
	case leaveEvent:
		s.handleLeave(ev.clientID)
	default:
		log.Error("Session %s: unhandled event type: %T", s.ID, ev)
	}
}

func (s *Session) handleBettingExpired() {
	if s.match.State.Phase != types.PhaseAwaitingBets {
		return
	}

	if !s.match.AnyReady() {
		log.Info("Session %s: betting window expired with no ready player", s.ID)
		s.broadcast(messages.MessageTypeServerBettingTimeout, nil)
		s.teardown()
		return
	}

	s.beginCountdown()
}

// beginCountdown finalizes the wager and starts the pre-match countdown.
func (s *Session) beginCountdown() {
	if s.bettingTimer != nil {
		s.bettingTimer.Stop()
	}

	amount, count := s.match.StartCountdown()
	log.Info("Session %s: wager finalized at %d", s.ID, amount)

	s.broadcast(messages.MessageTypeServerFinalBetAmount, &messages.ServerFinalBetAmount{Amount: amount})
	s.broadcast(messages.MessageTypeServerCountdown, &messages.ServerCountdown{Count: count})
	s.startCountdownLoop()
}

func (s *Session) handleCountdownTick() {
	result, err := s.match.CountdownTick()
	if err != nil {
		s.stopCountdownLoop()
		return
	}

	s.broadcast(messages.MessageTypeServerCountdown, &messages.ServerCountdown{Count: result.Value})

	if result.Finished {
		s.stopCountdownLoop()
		s.startTickLoop()
	}
}

func (s *Session) handleTick(t time.Time) {
	dt := 1.0 / float64(constants.TickRate)
	result := s.match.Tick(dt)

	s.broadcast(messages.MessageTypeServerGameState, game.ServerGameStateFromMatch(t.UnixMilli(), s.match.State))

	if result.GameOver {
		s.stopTickLoop()
		s.finishGame(result.Winner)
		return
	}

	if result.ScorePause {
		s.stopTickLoop()
		s.broadcast(messages.MessageTypeServerCountdown, &messages.ServerCountdown{Count: s.match.State.CountdownValue})
		s.startCountdownLoop()
	}
}

func (s *Session) finishGame(winner types.Side) {
	amount := s.match.Wager.FinalAmount
	score := s.match.State.Score
	log.Info("Session %s: game over, %s wins %d - %d for %d", s.ID, winner, score[winner], score[winner.Opponent()], amount)

	s.broadcast(messages.MessageTypeServerGameOver, &messages.ServerGameOver{
		Winner:    winner.String(),
		Score:     score,
		BetAmount: amount,
	})

	if s.results != nil {
		result := Result{
			SessionID:    s.ID,
			WinnerUserID: s.players[winner].UserID,
			LoserUserID:  s.players[winner.Opponent()].UserID,
			Amount:       amount,
			Score:        score,
		}
		select {
		case s.results <- result:
		default:
			log.Warn("Session %s: results channel full, dropping result", s.ID)
		}
	}

	s.teardown()
}

func (s *Session) handleCommand(clientID uint32, msg *messages.Message) {
	side, ok := s.sideOf(clientID)
	if !ok {
		log.Warn("Session %s: command from unknown client %d", s.ID, clientID)
		return
	}

	switch msg.Type {
	case messages.MessageTypeClientPaddleMove:
		move := &messages.ClientPaddleMove{}
		if err := json.Unmarshal(msg.Payload, move); err != nil {
			s.notifyError(side, "malformed paddle_move payload")
			return
		}
		if err := s.match.MovePaddle(side, move.Y); err != nil {
			log.Trace("Session %s: paddle_move rejected: %v", s.ID, err)
		}
	case messages.MessageTypeClientSetBet:
		bet := &messages.ClientSetBet{}
		if err := json.Unmarshal(msg.Payload, bet); err != nil {
			s.notifyError(side, "malformed set_bet payload")
			return
		}
		if err := s.match.SetBet(side, bet.Amount); err != nil {
			s.notifyError(side, err.Error())
			return
		}
		s.notify(side.Opponent(), messages.MessageTypeServerOpponentBetSet, &messages.ServerOpponentBetSet{Amount: bet.Amount})
	case messages.MessageTypeClientReady:
		bothReady, err := s.match.SetReady(side)
		if err != nil {
			s.notifyError(side, err.Error())
			return
		}
		s.notify(side.Opponent(), messages.MessageTypeServerOpponentReady, nil)
		if bothReady {
			s.beginCountdown()
		}
	case messages.MessageTypeClientUseUltimate:
		ultimate := &messages.ClientUseUltimate{}
		if err := json.Unmarshal(msg.Payload, ultimate); err != nil {
			s.notifyError(side, "malformed use_ultimate payload")
			return
		}
		kind, err := types.ParseAbilityKind(ultimate.Ability)
		if err != nil {
			s.notifyError(side, err.Error())
			return
		}
		if err := s.match.UseAbility(side, kind); err != nil {
			s.notifyError(side, err.Error())
			return
		}
		s.broadcast(messages.MessageTypeServerUltimateActivated, &messages.ServerUltimateActivated{
			Side:    side.String(),
			Ability: string(kind),
		})
	case messages.MessageTypeClientLeave:
		s.handleLeave(clientID)
	default:
		s.notifyError(side, "unrecognized command: "+msg.Type)
	}
}

func (s *Session) handleLeave(clientID uint32) {
	side, ok := s.sideOf(clientID)
	if !ok {
		return
	}

	if s.match.State.Phase != types.PhaseGameOver {
		log.Info("Session %s: %s left, tearing down", s.ID, side)
		s.notify(side.Opponent(), messages.MessageTypeServerOpponentDisconnected, nil)
	}
	s.teardown()
}

// teardown cancels every outstanding timer the session owns and marks the
// session done. It is safe to call more than once.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		if s.startTimer != nil {
			s.startTimer.Stop()
		}
		if s.bettingTimer != nil {
			s.bettingTimer.Stop()
		}
		s.stopTickLoop()
		s.stopCountdownLoop()
		if s.onClose != nil {
			s.onClose(s)
		}
		close(s.done)
		log.Debug("Session %s torn down", s.ID)
	})
}

func (s *Session) startTickLoop() {
	if s.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	s.tickStop = stop
	ticker := time.NewTicker(s.opts.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-s.done:
				return
			case t := <-ticker.C:
				s.post(tickEvent{t: t})
			}
		}
	}()
}

func (s *Session) stopTickLoop() {
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
}

func (s *Session) startCountdownLoop() {
	if s.countdownStop != nil {
		return
	}
	stop := make(chan struct{})
	s.countdownStop = stop
	ticker := time.NewTicker(s.opts.CountdownInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.post(countdownTickEvent{})
			}
		}
	}()
}

func (s *Session) stopCountdownLoop() {
	if s.countdownStop != nil {
		close(s.countdownStop)
		s.countdownStop = nil
	}
}

func (s *Session) sideOf(clientID uint32) (types.Side, bool) {
	for side := types.SideLeft; side <= types.SideRight; side++ {
		if s.players[side].ClientID == clientID {
			return side, true
		}
	}
	return types.SideLeft, false
}

func (s *Session) notify(side types.Side, msgType string, payload interface{}) {
	s.notifier.Notify(s.players[side].ClientID, msgType, payload)
}

func (s *Session) notifyError(side types.Side, message string) {
	s.notify(side, messages.MessageTypeServerError, &messages.ServerError{Message: message})
}

func (s *Session) broadcast(msgType string, payload interface{}) {
	s.notify(types.SideLeft, msgType, payload)
	s.notify(types.SideRight, msgType, payload)
}
