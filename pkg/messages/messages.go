package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of a message
	MessageBufferSize = 4096
)

// Message types
const (
	// client -> server
	MessageTypeClientJoinQueue   = "join_queue"
	MessageTypeClientPaddleMove  = "paddle_move"
	MessageTypeClientSetBet      = "set_bet"
	MessageTypeClientReady       = "ready_to_start"
	MessageTypeClientUseUltimate = "use_ultimate"
	MessageTypeClientLeave       = "leave"
	MessageTypeClientPing        = "ping"

	// server -> client
	MessageTypeServerPong                 = "pong"
	MessageTypeServerQueueJoined          = "queue_joined"
	MessageTypeServerMatchFound           = "match_found"
	MessageTypeServerOpponentBetSet       = "opponent_bet_set"
	MessageTypeServerOpponentReady        = "opponent_ready"
	MessageTypeServerFinalBetAmount       = "final_bet_amount"
	MessageTypeServerBettingTimeout       = "betting_timeout"
	MessageTypeServerCountdown            = "countdown"
	MessageTypeServerGameState            = "game_state"
	MessageTypeServerUltimateActivated    = "ultimate_activated"
	MessageTypeServerOpponentDisconnected = "opponent_disconnected"
	MessageTypeServerGameOver             = "game_over"
	MessageTypeServerError                = "error"
)

// Message represents a generic message for serialization/deserialization.
// ClientID 0 means the message is from the server.
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ClientJoinQueue is sent by a client to enter the matchmaking queue.
type ClientJoinQueue struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// ClientPaddleMove carries the desired vertical center of the player's paddle.
type ClientPaddleMove struct {
	Y float64 `json:"y"`
}

// ClientSetBet sets or updates the player's bet during wager negotiation.
type ClientSetBet struct {
	Amount int64 `json:"amount"`
}

// ClientUseUltimate activates a one-shot ability.
type ClientUseUltimate struct {
	Ability string `json:"ability"`
}

// PlayerInfo is the opponent metadata shared on match found.
type PlayerInfo struct {
	Name string `json:"name"`
}

type ServerQueueJoined struct {
	ClientID uint32 `json:"clientID"`
	Position int    `json:"position"`
}

type ServerMatchFound struct {
	SessionID string     `json:"sessionID"`
	Side      string     `json:"side"`
	Opponent  PlayerInfo `json:"opponent"`
}

type ServerOpponentBetSet struct {
	Amount int64 `json:"amount"`
}

type ServerFinalBetAmount struct {
	Amount int64 `json:"amount"`
}

// ServerCountdown is shared by the pre-match and post-score countdowns.
// Count 0 signals "go".
type ServerCountdown struct {
	Count int `json:"count"`
}

type BallUpdate struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type PaddleUpdate struct {
	CenterY float64 `json:"centerY"`
	Height  float64 `json:"height"`
}

// ServerGameState is the full match state broadcast once per tick while
// the match is in the playing phase.
type ServerGameState struct {
	Timestamp       int64           `json:"timestamp"`
	Ball            BallUpdate      `json:"ball"`
	Paddles         [2]PaddleUpdate `json:"paddles"`
	Score           [2]int          `json:"score"`
	Phase           string          `json:"phase"`
	SpeedMultiplier float64         `json:"speedMultiplier"`
}

type ServerUltimateActivated struct {
	Side    string `json:"side"`
	Ability string `json:"ability"`
}

type ServerGameOver struct {
	Winner    string `json:"winner"`
	Score     [2]int `json:"score"`
	BetAmount int64  `json:"betAmount"`
}

type ServerError struct {
	Message string `json:"message"`
}
