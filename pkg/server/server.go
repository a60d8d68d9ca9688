package server

import (
	"context"
	"time"

	"github.com/cbodonnell/bearpong/pkg/clients"
	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/matchmaking"
	"github.com/cbodonnell/bearpong/pkg/messages"
	"github.com/cbodonnell/bearpong/pkg/network"
	"github.com/cbodonnell/bearpong/pkg/queue"
	"github.com/cbodonnell/bearpong/pkg/repositories"
	"github.com/cbodonnell/bearpong/pkg/sessions"
)

// DefaultDispatchInterval is how often the dispatch loop drains the
// client message queue.
const DefaultDispatchInterval = 5 * time.Millisecond

// GameServer routes client messages from the transport to matchmaking and
// to the sessions that own them.
type GameServer struct {
	networkManager   *network.NetworkManager
	clientManager    *network.ClientManager
	clientEvents     *clients.ClientEventManager
	messageQueue     queue.Queue
	matchmaker       *matchmaking.Matchmaker
	repository       repositories.Repository
	dispatchInterval time.Duration
}

type NewGameServerOptions struct {
	NetworkManager *network.NetworkManager
	ClientManager  *network.ClientManager
	ClientEvents   *clients.ClientEventManager
	MessageQueue   queue.Queue
	Matchmaker     *matchmaking.Matchmaker
	Repository     repositories.Repository
	// DispatchInterval overrides the default poll interval; for tests
	DispatchInterval time.Duration
}

func NewGameServer(opts NewGameServerOptions) *GameServer {
	dispatchInterval := opts.DispatchInterval
	if dispatchInterval == 0 {
		dispatchInterval = DefaultDispatchInterval
	}

	return &GameServer{
		networkManager:   opts.NetworkManager,
		clientManager:    opts.ClientManager,
		clientEvents:     opts.ClientEvents,
		messageQueue:     opts.MessageQueue,
		matchmaker:       opts.Matchmaker,
		repository:       opts.Repository,
		dispatchInterval: dispatchInterval,
	}
}

// Start runs the dispatch loop until the context is canceled.
func (s *GameServer) Start(ctx context.Context) {
	s.clientEvents.RegisterHandler(func(event clients.ClientEvent) {
		if event.Type == clients.ClientEventDisconnected {
			s.matchmaker.HandleDisconnect(event.ClientID)
		}
	})

	ticker := time.NewTicker(s.dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := s.messageQueue.ReadAllMessages()
			if err != nil {
				log.Error("Failed to read client messages: %v", err)
				continue
			}
			for _, item := range pending {
				message, ok := item.(*messages.Message)
				if !ok {
					log.Error("Unexpected item in message queue: %T", item)
					continue
				}
				s.handleMessage(ctx, message)
			}
		}
	}
}

func (s *GameServer) handleMessage(ctx context.Context, message *messages.Message) {
	switch message.Type {
	case messages.MessageTypeClientJoinQueue:
		s.handleJoinQueue(ctx, message.ClientID)
	case messages.MessageTypeClientPaddleMove,
		messages.MessageTypeClientSetBet,
		messages.MessageTypeClientReady,
		messages.MessageTypeClientUseUltimate,
		messages.MessageTypeClientLeave:
		session, ok := s.matchmaker.SessionFor(message.ClientID)
		if !ok {
			// paddle moves race session teardown; don't spam the client
			if message.Type != messages.MessageTypeClientPaddleMove {
				s.networkManager.Notify(message.ClientID, messages.MessageTypeServerError, &messages.ServerError{
					Message: "not in a session",
				})
			}
			return
		}
		session.HandleCommand(message.ClientID, message)
	default:
		s.networkManager.Notify(message.ClientID, messages.MessageTypeServerError, &messages.ServerError{
			Message: "unrecognized message type: " + message.Type,
		})
	}
}

// handleJoinQueue enters an authenticated client into matchmaking. The
// network layer has already verified the token and attached the identity.
func (s *GameServer) handleJoinQueue(ctx context.Context, clientID uint32) {
	client, err := s.clientManager.GetClient(clientID)
	if err != nil {
		log.Warn("Join queue from disconnected client %d", clientID)
		return
	}
	if client.UserID == "" {
		s.networkManager.Notify(clientID, messages.MessageTypeServerError, &messages.ServerError{
			Message: "not authenticated",
		})
		return
	}

	if err := s.repository.EnsureAccount(ctx, client.UserID, client.Name); err != nil {
		log.Error("Failed to ensure account for user %s: %v", client.UserID, err)
		s.networkManager.Notify(clientID, messages.MessageTypeServerError, &messages.ServerError{
			Message: "account unavailable",
		})
		return
	}

	position, err := s.matchmaker.Enqueue(sessions.Player{
		ClientID: clientID,
		UserID:   client.UserID,
		Name:     client.Name,
	})
	if err != nil {
		s.networkManager.Notify(clientID, messages.MessageTypeServerError, &messages.ServerError{
			Message: err.Error(),
		})
		return
	}

	log.Info("Client %d (%s) joined the queue at position %d", clientID, client.Name, position)
	s.networkManager.Notify(clientID, messages.MessageTypeServerQueueJoined, &messages.ServerQueueJoined{
		ClientID: clientID,
		Position: position,
	})
}

// Stats is a point-in-time snapshot for the status API.
type Stats struct {
	ConnectedClients int `json:"connectedClients"`
	WaitingPlayers   int `json:"waitingPlayers"`
	ActiveSessions   int `json:"activeSessions"`
}

func (s *GameServer) Stats() Stats {
	return Stats{
		ConnectedClients: s.clientManager.Count(),
		WaitingPlayers:   s.matchmaker.WaitingCount(),
		ActiveSessions:   s.matchmaker.ActiveSessionCount(),
	}
}
