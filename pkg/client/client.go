package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/bearpong/pkg/messages"
	"nhooyr.io/websocket"
)

// Client is a headless game client. It is used by bots, smoke tests, and
// the end-to-end tests; rendering is someone else's problem.
type Client struct {
	conn *websocket.Conn
}

// Connect dials the game server's WebSocket endpoint.
func Connect(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v", url, err)
	}

	return &Client{
		conn: conn,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// NextMessage blocks until the server sends a message or the context is
// canceled.
func (c *Client) NextMessage(ctx context.Context) (*messages.Message, error) {
	_, b, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}

// WaitFor reads messages until one of the given type arrives, discarding
// everything else.
func (c *Client) WaitFor(ctx context.Context, msgType string) (*messages.Message, error) {
	for {
		msg, err := c.NextMessage(ctx)
		if err != nil {
			return nil, err
		}
		if msg.Type == msgType {
			return msg, nil
		}
	}
}

// JoinQueue authenticates and enters the matchmaking queue.
func (c *Client) JoinQueue(ctx context.Context, token string, name string) error {
	return c.send(ctx, messages.MessageTypeClientJoinQueue, &messages.ClientJoinQueue{
		Token: token,
		Name:  name,
	})
}

// SetBet sets or updates the client's bet.
func (c *Client) SetBet(ctx context.Context, amount int64) error {
	return c.send(ctx, messages.MessageTypeClientSetBet, &messages.ClientSetBet{
		Amount: amount,
	})
}

// Ready signals readiness to start the match.
func (c *Client) Ready(ctx context.Context) error {
	return c.send(ctx, messages.MessageTypeClientReady, nil)
}

// MovePaddle requests a paddle move to the given vertical center.
func (c *Client) MovePaddle(ctx context.Context, y float64) error {
	return c.send(ctx, messages.MessageTypeClientPaddleMove, &messages.ClientPaddleMove{
		Y: y,
	})
}

// UseUltimate invokes a one-shot ability.
func (c *Client) UseUltimate(ctx context.Context, ability string) error {
	return c.send(ctx, messages.MessageTypeClientUseUltimate, &messages.ClientUseUltimate{
		Ability: ability,
	})
}

// Leave leaves the current session.
func (c *Client) Leave(ctx context.Context) error {
	return c.send(ctx, messages.MessageTypeClientLeave, nil)
}

// Ping checks connection liveness.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, messages.MessageTypeClientPing, nil)
}

func (c *Client) send(ctx context.Context, msgType string, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %v", msgType, err)
		}
		raw = b
	}

	b, err := messages.SerializeMessage(&messages.Message{
		Type:    msgType,
		Payload: raw,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := c.conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message: %v", err)
	}

	return nil
}
