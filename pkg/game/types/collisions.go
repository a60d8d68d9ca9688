package types

const (
	CollisionSpaceTagBall   = "ball"
	CollisionSpaceTagPaddle = "paddle"
)
