package collisions

import (
	"github.com/cbodonnell/bearpong/pkg/game/constants"
	"github.com/solarlune/resolv"
)

// NewCollisionSpace creates a resolv.Space sized to the playfield. Walls
// are resolved analytically by the physics engine, so the space only ever
// holds the ball and the two paddles.
func NewCollisionSpace() *resolv.Space {
	return resolv.NewSpace(int(constants.PlayfieldWidth), int(constants.PlayfieldHeight), 16, 16)
}
