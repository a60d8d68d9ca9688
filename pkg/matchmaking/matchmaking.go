package matchmaking

import (
	"fmt"
	"sync"

	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/queue"
	"github.com/cbodonnell/bearpong/pkg/sessions"
)

// Matchmaker pairs waiting players first-come first-served and owns the
// registry of live sessions. The first player dequeued takes the left side.
type Matchmaker struct {
	waiting  queue.Queue
	notifier sessions.Notifier
	results  chan<- sessions.Result
	options  sessions.Options

	mu sync.Mutex
	// queued tracks clients currently waiting; a client that disconnects
	// while waiting is marked abandoned and skipped at pairing time
	queued   map[uint32]bool
	bySessID map[string]*sessions.Session
	byClient map[uint32]*sessions.Session
}

// NewMatchmakerOptions contains options for creating a new Matchmaker.
type NewMatchmakerOptions struct {
	// Queue holds waiting players in arrival order
	Queue queue.Queue
	// Notifier is handed to every session the matchmaker creates
	Notifier sessions.Notifier
	// Results receives settled outcomes from every session; may be nil
	Results chan<- sessions.Result
	// SessionOptions is applied to every session the matchmaker creates
	SessionOptions sessions.Options
}

func NewMatchmaker(opts NewMatchmakerOptions) *Matchmaker {
	return &Matchmaker{
		waiting:  opts.Queue,
		notifier: opts.Notifier,
		results:  opts.Results,
		options:  opts.SessionOptions,
		queued:   make(map[uint32]bool),
		bySessID: make(map[string]*sessions.Session),
		byClient: make(map[uint32]*sessions.Session),
	}
}

// Enqueue adds a player to the waiting queue and pairs a session when two
// players are available. It returns the player's position in the queue.
func (m *Matchmaker) Enqueue(player sessions.Player) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queued[player.ClientID] {
		return 0, fmt.Errorf("client %d is already queued", player.ClientID)
	}
	if _, ok := m.byClient[player.ClientID]; ok {
		return 0, fmt.Errorf("client %d is already in a session", player.ClientID)
	}

	if err := m.waiting.Enqueue(player); err != nil {
		return 0, fmt.Errorf("failed to enqueue player: %v", err)
	}
	m.queued[player.ClientID] = true
	position := len(m.queued)

	m.tryPair()
	return position, nil
}

// tryPair creates sessions while two non-abandoned players are waiting.
// Callers must hold m.mu.
func (m *Matchmaker) tryPair() {
	for {
		players, ok := m.nextPair()
		if !ok {
			return
		}

		session := sessions.NewSession(sessions.NewSessionOptions{
			Left:     players[0],
			Right:    players[1],
			Notifier: m.notifier,
			Results:  m.results,
			OnClose:  m.remove,
			Options:  m.options,
		})
		m.bySessID[session.ID] = session
		m.byClient[players[0].ClientID] = session
		m.byClient[players[1].ClientID] = session
		session.Start()
	}
}

// nextPair dequeues the two oldest players still marked as waiting.
// Callers must hold m.mu.
func (m *Matchmaker) nextPair() ([2]sessions.Player, bool) {
	var pair [2]sessions.Player
	found := 0
	for found < 2 && m.waiting.Size() > 0 {
		item, err := m.waiting.Dequeue()
		if err != nil {
			log.Error("Failed to dequeue player: %v", err)
			break
		}
		player, ok := item.(sessions.Player)
		if !ok {
			log.Error("Unexpected item in matchmaking queue: %T", item)
			continue
		}
		if !m.queued[player.ClientID] {
			// abandoned while waiting
			continue
		}
		pair[found] = player
		found++
	}

	if found < 2 {
		for i := 0; i < found; i++ {
			if err := m.waiting.Enqueue(pair[i]); err != nil {
				log.Error("Failed to requeue player %d: %v", pair[i].ClientID, err)
			}
		}
		return pair, false
	}

	delete(m.queued, pair[0].ClientID)
	delete(m.queued, pair[1].ClientID)
	return pair, true
}

// SessionFor returns the live session a client belongs to.
func (m *Matchmaker) SessionFor(clientID uint32) (*sessions.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.byClient[clientID]
	return session, ok
}

// HandleDisconnect removes a waiting client or forwards the disconnect to
// the client's session.
func (m *Matchmaker) HandleDisconnect(clientID uint32) {
	m.mu.Lock()
	if m.queued[clientID] {
		delete(m.queued, clientID)
		m.mu.Unlock()
		log.Debug("Client %d left the matchmaking queue", clientID)
		return
	}
	session, ok := m.byClient[clientID]
	m.mu.Unlock()

	if ok {
		session.HandleDisconnect(clientID)
	}
}

// remove drops a torn-down session from the registry.
func (m *Matchmaker) remove(session *sessions.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bySessID, session.ID)
	for _, player := range session.Players() {
		if m.byClient[player.ClientID] == session {
			delete(m.byClient, player.ClientID)
		}
	}
}

// WaitingCount reports how many clients are waiting to be paired.
func (m *Matchmaker) WaitingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// ActiveSessionCount reports how many sessions are live.
func (m *Matchmaker) ActiveSessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySessID)
}
