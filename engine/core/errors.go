package core

import (
	"errors"
)

var (
	ErrNoSolver      = errors.New("no solver instance for the tracked object")
	ErrMeshCorrupted = errors.New("mesh is corrupted: vertex count does not match the solver")
	ErrNoKeyframe    = errors.New("camera has no valid keyframe")
	ErrInvalidCamera = errors.New("invalid camera settings")
	ErrSessionActive = errors.New("a pin-mode session is busy entering or exiting")
	ErrNoSession     = errors.New("no pin-mode session is active")
	ErrInvalidTarget = errors.New("session target is incomplete")
	ErrUnknown       = errors.New("unknown")
)
