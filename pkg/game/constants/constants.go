package constants

import "time"

const (
	// PlayfieldWidth is the width of the playfield
	PlayfieldWidth float64 = 800.0
	// PlayfieldHeight is the height of the playfield
	PlayfieldHeight float64 = 500.0

	// PaddleWidth is the horizontal thickness of a paddle
	PaddleWidth float64 = 14.0
	// PaddleHeight is the starting height of a paddle
	PaddleHeight float64 = 100.0
	// PaddleMinHeight is the floor below which paddles never shrink
	PaddleMinHeight float64 = 40.0
	// PaddleShrinkPerHit is how much both paddles shrink on every hit
	PaddleShrinkPerHit float64 = 4.0
	// PaddleFaceOffset is the distance of a paddle's facing edge from its goal edge
	PaddleFaceOffset float64 = 40.0

	// BallSize is the width and height of the (square) ball
	BallSize float64 = 14.0
	// BallInitialSpeed is the ball speed at serve
	BallInitialSpeed float64 = 420.0
	// BallMaxSpeed is the hard cap on ball speed
	BallMaxSpeed float64 = 1800.0
	// BallSpeedRampFactor scales ball speed on every hit
	BallSpeedRampFactor float64 = 1.06
	// BallLaunchMaxAngle bounds the randomized serve angle (radians from horizontal)
	BallLaunchMaxAngle float64 = 0.7853981633974483 // 45 degrees

	// PerfectHitBand is the normalized offset from paddle center within
	// which a hit counts as perfect and the speed ramp applies twice
	PerfectHitBand float64 = 0.18

	// SpinCoefficientBase scales the vertical velocity added by strike offset
	SpinCoefficientBase float64 = 260.0
	// SpinSpeedSoftening reduces spin influence as ball speed grows
	SpinSpeedSoftening float64 = 900.0
	// VerticalSpeedMaxFactor caps |vy| at this fraction of ball speed after a hit
	VerticalSpeedMaxFactor float64 = 0.85
	// HorizontalSpeedMinFactor floors |vx| at this fraction of ball speed after a hit
	HorizontalSpeedMinFactor float64 = 0.35

	// CollisionPaddingBase is the baseline crossing tolerance for the swept paddle test
	CollisionPaddingBase float64 = 2.0
	// CollisionPaddingPerSpeed grows the crossing tolerance with ball speed
	CollisionPaddingPerSpeed float64 = 0.01

	// WinningScore is the score at which a match ends
	WinningScore int = 3

	// PowerStrikeRampCount is how many times the speed ramp applies on a power strike
	PowerStrikeRampCount int = 8
	// TimeDistortionFactor is the global ball speed multiplier while time distortion is active
	TimeDistortionFactor float64 = 0.1
	// TimeDistortionDuration is how long time distortion lasts
	TimeDistortionDuration = 4 * time.Second

	// TickRate is the number of simulation ticks per second
	TickRate int = 60
	// PreMatchCountdownStart is the starting value of the pre-match countdown
	PreMatchCountdownStart int = 3
	// ScorePauseCountdownStart is the starting value of the post-score countdown
	ScorePauseCountdownStart int = 3
	// BettingWindowDuration bounds the wager negotiation phase
	BettingWindowDuration = 30 * time.Second
	// MatchStartDelay is the pause between pairing and the start of wager negotiation
	MatchStartDelay = 1 * time.Second
)

// TickInterval is the real-time duration of one simulation tick.
var TickInterval = time.Second / time.Duration(TickRate)
