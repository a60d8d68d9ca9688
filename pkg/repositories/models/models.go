package models

// Account is a player's wallet row.
type Account struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// WagerResult is the settled outcome of one match.
type WagerResult struct {
	SessionID    string `json:"session_id"`
	WinnerUserID string `json:"winner_user_id"`
	LoserUserID  string `json:"loser_user_id"`
	Amount       int64  `json:"amount"`
	WinnerScore  int    `json:"winner_score"`
	LoserScore   int    `json:"loser_score"`
	SettledAt    int64  `json:"settled_at"`
}
