package systems

import (
	"time"

	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/pins"
	"github.com/spaghettifunk/facetrack/engine/solver"
)

type SessionState uint8

const (
	SessionStateInactive SessionState = iota
	SessionStateEntering
	SessionStateActive
	SessionStateDragging
	SessionStateExiting
)

func (s SessionState) String() string {
	switch s {
	case SessionStateEntering:
		return "entering"
	case SessionStateActive:
		return "active"
	case SessionStateDragging:
		return "dragging"
	case SessionStateExiting:
		return "exiting"
	default:
		return "inactive"
	}
}

// ExitReason tells why a session ended.
type ExitReason uint8

const (
	// The user pressed ESC or Enter.
	ExitReasonUser ExitReason = iota
	// The view area hosting the session went away.
	ExitReasonContextLost
	// The user rotated the view away from the camera.
	ExitReasonViewRotated
	// The scene token no longer matches, e.g. after an undo past session entry.
	ExitReasonStaleSession
	// A solver call failed.
	ExitReasonSolverFailure
	// Another target entered pin mode.
	ExitReasonReplaced
)

func (r ExitReason) String() string {
	switch r {
	case ExitReasonUser:
		return "user"
	case ExitReasonContextLost:
		return "context lost"
	case ExitReasonViewRotated:
		return "view rotated"
	case ExitReasonStaleSession:
		return "stale session"
	case ExitReasonSolverFailure:
		return "solver failure"
	case ExitReasonReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Undo history messages.
const (
	UndoBeforeDragPin = "Before Drag Pin"
	UndoPinResult     = "Pin Result"
	UndoPinRemove     = "Pin Remove"
)

/**
 * @brief The host document as seen by a pin-mode session. Every call is
 * made on the host UI thread.
 */
type Scene interface {
	// SessionToken returns the token stored on the scene, "" when none.
	SessionToken() string
	SetSessionToken(token string)
	// PushUndo appends an undo step holding a serialized solver state.
	PushUndo(message, state string)
	// RegisterTimer calls fn every interval until fn returns false or cancel is called.
	RegisterTimer(interval time.Duration, fn func() bool) (cancel func())
	Report(level core.ReportLevel, msg string)
	ShowLicenseDialog()
	// SetOverlayElementsHidden hides host UI drawn over the viewport.
	SetOverlayElementsHidden(hidden bool)
}

// Target is the (object, camera frame) pair a session tracks.
type Target struct {
	Object   *components.Object
	Camera   *components.CameraFrame
	Viewport *components.Viewport
	Solver   solver.Solver
	// SpecialEdges are edge indices drawn with the accent colour.
	SpecialEdges []int
}

func (t *Target) same(other *Target) bool {
	return t.Object == other.Object && t.Camera == other.Camera
}

// PinSession is the interactive state of one target in pin mode.
type PinSession struct {
	target   *Target
	registry *pins.Registry
	state    SessionState
	token    string

	// preDrag is the solver state before the current drag started.
	preDrag string
	// lastUndoState is the state of the newest undo step this session knows of.
	lastUndoState string
	changed       bool
	lastPos       math.Vec2

	cancelWatchdog func()
}

func (s *PinSession) Target() *Target {
	return s.target
}

func (s *PinSession) Registry() *pins.Registry {
	return s.registry
}

func (s *PinSession) State() SessionState {
	return s.state
}

func (s *PinSession) Token() string {
	return s.token
}

func (s *PinSession) keyframe() int {
	return s.target.Camera.Keyframe
}
