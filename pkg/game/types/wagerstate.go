package types

// WagerState holds the pre-match wager negotiation state. It is finalized
// exactly once, either when both players are ready or when the betting
// window expires with at least one ready player.
type WagerState struct {
	Bets        [2]int64 `json:"bets"`
	Ready       [2]bool  `json:"ready"`
	Finalized   bool     `json:"finalized"`
	FinalAmount int64    `json:"finalAmount"`
}

// Resolve computes the binding wager amount: zero if either bet is zero,
// otherwise the smaller of the two bets.
func (w *WagerState) Resolve() int64 {
	if w.Bets[SideLeft] == 0 || w.Bets[SideRight] == 0 {
		return 0
	}
	if w.Bets[SideLeft] < w.Bets[SideRight] {
		return w.Bets[SideLeft]
	}
	return w.Bets[SideRight]
}

// Finalize resolves the wager and marks it final. Finalizing twice is a
// no-op and returns the already resolved amount.
func (w *WagerState) Finalize() int64 {
	if w.Finalized {
		return w.FinalAmount
	}
	w.FinalAmount = w.Resolve()
	w.Finalized = true
	return w.FinalAmount
}
