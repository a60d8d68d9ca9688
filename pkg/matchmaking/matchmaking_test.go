package matchmaking

import (
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/bearpong/pkg/messages"
	"github.com/cbodonnell/bearpong/pkg/queue"
	"github.com/cbodonnell/bearpong/pkg/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	byClient map[uint32][]string
	payloads map[uint32][]interface{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		byClient: make(map[uint32][]string),
		payloads: make(map[uint32][]interface{}),
	}
}

func (r *recordingNotifier) Notify(clientID uint32, msgType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byClient[clientID] = append(r.byClient[clientID], msgType)
	r.payloads[clientID] = append(r.payloads[clientID], payload)
}

func (r *recordingNotifier) received(clientID uint32, msgType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byClient[clientID] {
		if t == msgType {
			return true
		}
	}
	return false
}

func (r *recordingNotifier) matchFound(clientID uint32) (*messages.ServerMatchFound, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.byClient[clientID] {
		if t == messages.MessageTypeServerMatchFound {
			return r.payloads[clientID][i].(*messages.ServerMatchFound), true
		}
	}
	return nil, false
}

func newTestMatchmaker(notifier sessions.Notifier) *Matchmaker {
	return NewMatchmaker(NewMatchmakerOptions{
		Queue:    queue.NewInMemoryQueue(64),
		Notifier: notifier,
		SessionOptions: sessions.Options{
			TickInterval:      2 * time.Millisecond,
			CountdownInterval: 5 * time.Millisecond,
			BettingWindow:     time.Minute,
			StartDelay:        time.Millisecond,
		},
	})
}

func TestMatchmakerPairsTwoOldest(t *testing.T) {
	notifier := newRecordingNotifier()
	m := newTestMatchmaker(notifier)

	position, err := m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, position)
	assert.Equal(t, 1, m.WaitingCount())
	assert.Equal(t, 0, m.ActiveSessionCount())

	position, err = m.Enqueue(sessions.Player{ClientID: 2, UserID: "u2", Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, position)
	assert.Equal(t, 0, m.WaitingCount())
	assert.Equal(t, 1, m.ActiveSessionCount())

	// first enqueued takes the left side
	found, ok := notifier.matchFound(1)
	require.True(t, ok)
	assert.Equal(t, "left", found.Side)
	found, ok = notifier.matchFound(2)
	require.True(t, ok)
	assert.Equal(t, "right", found.Side)

	session1, ok := m.SessionFor(1)
	require.True(t, ok)
	session2, ok := m.SessionFor(2)
	require.True(t, ok)
	assert.Equal(t, session1.ID, session2.ID)
}

func TestMatchmakerRejectsDoubleEnqueue(t *testing.T) {
	notifier := newRecordingNotifier()
	m := newTestMatchmaker(notifier)

	_, err := m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.NoError(t, err)
	_, err = m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.Error(t, err)
}

func TestMatchmakerSkipsAbandonedPlayer(t *testing.T) {
	notifier := newRecordingNotifier()
	m := newTestMatchmaker(notifier)

	_, err := m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.NoError(t, err)
	m.HandleDisconnect(1)
	assert.Equal(t, 0, m.WaitingCount())

	_, err = m.Enqueue(sessions.Player{ClientID: 2, UserID: "u2", Name: "bob"})
	require.NoError(t, err)
	// no pair: client 1 abandoned before client 2 arrived
	assert.Equal(t, 0, m.ActiveSessionCount())
	assert.Equal(t, 1, m.WaitingCount())

	_, err = m.Enqueue(sessions.Player{ClientID: 3, UserID: "u3", Name: "carol"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveSessionCount())

	found, ok := notifier.matchFound(2)
	require.True(t, ok)
	assert.Equal(t, "left", found.Side)
}

func TestMatchmakerSessionTeardownFreesPlayers(t *testing.T) {
	notifier := newRecordingNotifier()
	m := newTestMatchmaker(notifier)

	_, err := m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.NoError(t, err)
	_, err = m.Enqueue(sessions.Player{ClientID: 2, UserID: "u2", Name: "bob"})
	require.NoError(t, err)

	session, ok := m.SessionFor(1)
	require.True(t, ok)

	m.HandleDisconnect(1)
	select {
	case <-session.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not tear down")
	}

	require.Eventually(t, func() bool {
		return m.ActiveSessionCount() == 0
	}, time.Second, time.Millisecond)
	_, ok = m.SessionFor(2)
	assert.False(t, ok)
	assert.True(t, notifier.received(2, messages.MessageTypeServerOpponentDisconnected))

	// both may queue again
	_, err = m.Enqueue(sessions.Player{ClientID: 1, UserID: "u1", Name: "alice"})
	require.NoError(t, err)
	_, err = m.Enqueue(sessions.Player{ClientID: 2, UserID: "u2", Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveSessionCount())
}
