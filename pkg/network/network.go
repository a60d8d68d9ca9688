package network

import (
	"context"
	"encoding/json"
	"fmt"

	authproviders "github.com/cbodonnell/bearpong/pkg/auth/providers"
	"github.com/cbodonnell/bearpong/pkg/clients"
	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/messages"
	"github.com/cbodonnell/bearpong/pkg/queue"
	"nhooyr.io/websocket"
)

// NetworkManager owns the transport: it accepts WebSocket connections,
// assigns client IDs, authenticates join_queue messages, answers pings, and
// forwards everything else to the message queue for the game server to
// process. Inbound client IDs are connection-scoped; whatever ID a client
// claims in its messages is overwritten.
type NetworkManager struct {
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	ClientEvents  *clients.ClientEventManager
	MessageQueue  queue.Queue
	WSServer      *WSServer

	ctx context.Context
}

type NewNetworkManagerOptions struct {
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	ClientEvents  *clients.ClientEventManager
	MessageQueue  queue.Queue
	WSPort        int
	WSServerTLS   *TLSConfig
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		AuthProvider:  options.AuthProvider,
		ClientManager: options.ClientManager,
		ClientEvents:  options.ClientEvents,
		MessageQueue:  options.MessageQueue,
		WSServer: NewWSServer(NewWSServerOptions{
			Port: options.WSPort,
			TLS:  options.WSServerTLS,
		}),
	}
}

func (n *NetworkManager) Start(ctx context.Context) {
	n.ctx = ctx
	go n.WSServer.Start(ctx, n.handleConnection)
}

// handleConnection owns one WebSocket connection for its lifetime.
func (n *NetworkManager) handleConnection(ctx context.Context, conn *websocket.Conn) {
	clientID, err := n.ClientManager.AddClient(conn)
	if err != nil {
		log.Error("Failed to add client: %v", err)
		conn.Close(websocket.StatusInternalError, "failed to add client")
		return
	}

	defer func() {
		n.ClientManager.RemoveClient(clientID)
		n.ClientEvents.Trigger(clients.ClientEvent{
			ClientID: clientID,
			Type:     clients.ClientEventDisconnected,
		})
		conn.CloseNow()
		log.Info("Client %d disconnected", clientID)
	}()

	log.Info("Client %d connected", clientID)
	n.ClientEvents.Trigger(clients.ClientEvent{
		ClientID: clientID,
		Type:     clients.ClientEventConnected,
	})

	for {
		message, err := ReadMessageFromWS(ctx, conn)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				log.Trace("Error reading WebSocket message from client %d: %v", clientID, err)
			}
			return
		}

		message.ClientID = clientID
		n.handleMessage(ctx, message)
	}
}

func (n *NetworkManager) handleMessage(ctx context.Context, message *messages.Message) {
	switch message.Type {
	case messages.MessageTypeClientJoinQueue:
		if err := n.handleClientJoinQueue(ctx, message); err != nil {
			log.Warn("Failed to handle join queue from client %d: %v", message.ClientID, err)
			n.Notify(message.ClientID, messages.MessageTypeServerError, &messages.ServerError{
				Message: err.Error(),
			})
		}
	case messages.MessageTypeClientPing:
		if err := n.SendMessageToClient(ctx, message.ClientID, &messages.Message{
			ClientID: 0,
			Type:     messages.MessageTypeServerPong,
		}); err != nil {
			log.Error("Failed to send pong to client %d: %v", message.ClientID, err)
		}
	default:
		if err := n.MessageQueue.Enqueue(message); err != nil {
			log.Error("Failed to enqueue message: %v", err)
		}
	}
}

// handleClientJoinQueue verifies the client's token, attaches the verified
// identity to the connection, and forwards the message for matchmaking.
func (n *NetworkManager) handleClientJoinQueue(ctx context.Context, message *messages.Message) error {
	joinQueue := &messages.ClientJoinQueue{}
	if err := json.Unmarshal(message.Payload, joinQueue); err != nil {
		return fmt.Errorf("failed to unmarshal join queue: %v", err)
	}

	token, err := n.AuthProvider.VerifyToken(ctx, joinQueue.Token)
	if err != nil {
		return fmt.Errorf("failed to verify token: %v", err)
	}

	name := joinQueue.Name
	if name == "" {
		name = token.Name
	}
	if name == "" {
		name = token.UID
	}

	if err := n.ClientManager.SetIdentity(message.ClientID, token.UID, name); err != nil {
		return fmt.Errorf("failed to set client identity: %v", err)
	}

	if err := n.MessageQueue.Enqueue(message); err != nil {
		return fmt.Errorf("failed to enqueue message: %v", err)
	}

	return nil
}

// Notify sends a fire-and-forget notification to a client. Failures are
// logged and swallowed.
func (n *NetworkManager) Notify(clientID uint32, msgType string, payload interface{}) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal %s payload for client %d: %v", msgType, clientID, err)
			return
		}
		raw = b
	}

	msg := &messages.Message{
		ClientID: 0,
		Type:     msgType,
		Payload:  raw,
	}
	if err := n.SendMessageToClient(n.ctx, clientID, msg); err != nil {
		log.Trace("Failed to send %s to client %d: %v", msgType, clientID, err)
	}
}

func (n *NetworkManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %d: %v", clientID, err)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}

	return nil
}

// SendMessageToAll sends a message to every connected client. Individual
// failures are logged and do not stop the broadcast.
func (n *NetworkManager) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range n.ClientManager.GetClients() {
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}
