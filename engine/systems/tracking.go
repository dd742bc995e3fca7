package systems

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/facetrack/engine/assets"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/pins"
	"github.com/spaghettifunk/facetrack/engine/renderer/views"
	"github.com/spaghettifunk/facetrack/engine/solver"
	"golang.org/x/exp/slices"
)

// sessionEvents are the codes a running session listens to.
var sessionEvents = []core.SystemEventCode{
	core.EVENT_CODE_KEY_PRESSED,
	core.EVENT_CODE_BUTTON_PRESSED,
	core.EVENT_CODE_BUTTON_RELEASED,
	core.EVENT_CODE_MOUSE_MOVED,
	core.EVENT_CODE_VIEW_ROTATED,
	core.EVENT_CODE_CONTEXT_LOST,
}

/**
 * @brief Owns pin mode for one host document. At most one PinSession is
 * alive per context; entering another target replaces it. Not safe for
 * concurrent use, every method must run on the host UI thread.
 */
type TrackingContext struct {
	scene    Scene
	settings *assets.Settings
	events   *core.EventBus
	overlay  *views.Overlay
	metrics  *core.SolveMetrics
	clock    *core.Clock
	session  *PinSession
}

func NewTrackingContext(scene Scene, events *core.EventBus, settings *assets.Settings) *TrackingContext {
	if events == nil {
		events = core.NewEventBus()
	}
	if settings == nil {
		settings = assets.DefaultSettings()
	}
	return &TrackingContext{
		scene:    scene,
		settings: settings,
		events:   events,
		overlay:  views.NewOverlay(settings),
		metrics:  core.NewSolveMetrics(),
		clock:    core.NewClock(),
	}
}

func (tc *TrackingContext) Events() *core.EventBus {
	return tc.events
}

func (tc *TrackingContext) Overlay() *views.Overlay {
	return tc.overlay
}

func (tc *TrackingContext) Metrics() *core.SolveMetrics {
	return tc.metrics
}

func (tc *TrackingContext) Settings() *assets.Settings {
	return tc.settings
}

// Session returns the running session or nil.
func (tc *TrackingContext) Session() *PinSession {
	return tc.session
}

func (tc *TrackingContext) State() SessionState {
	if tc.session == nil {
		return SessionStateInactive
	}
	return tc.session.state
}

// Active reports whether a session is in the active or dragging state.
func (tc *TrackingContext) Active() bool {
	st := tc.State()
	return st == SessionStateActive || st == SessionStateDragging
}

// ApplySettings switches to new settings, also for a running session.
// Invalid settings are logged and the current ones are kept.
func (tc *TrackingContext) ApplySettings(settings *assets.Settings) error {
	if settings == nil {
		return fmt.Errorf("no settings given")
	}
	if err := settings.Validate(); err != nil {
		core.LogWarn("keeping current settings: %s", err)
		return err
	}
	old := tc.settings
	tc.settings = settings
	tc.overlay.ApplySettings(settings)

	s := tc.session
	if s == nil {
		return nil
	}
	if old == nil || old.WatchdogInterval != settings.WatchdogInterval {
		tc.startWatchdog(s)
	}
	tc.refreshOverlay()
	return nil
}

/**
 * @brief Enters pin mode on target. Entering the target that is already
 * active does nothing; any other target replaces the running session.
 * Precondition failures are reported to the user and leave the context
 * inactive.
 *
 * @param target The object and camera frame to track.
 * @return An error if the session could not start.
 */
func (tc *TrackingContext) Enter(target *Target) error {
	if s := tc.session; s != nil {
		if s.state == SessionStateEntering || s.state == SessionStateExiting {
			return core.ErrSessionActive
		}
		if target != nil && s.target.same(target) {
			core.LogDebug("pin mode already active on %s", target.Object.Name)
			return nil
		}
		tc.Exit(ExitReasonReplaced)
	}

	if err := tc.checkPreconditions(target); err != nil {
		core.LogError("cannot enter pin mode: %s", err)
		tc.scene.Report(core.REPORT_ERROR, err.Error())
		return err
	}

	s := &PinSession{
		target:   target,
		registry: pins.NewRegistry(target.Solver),
		state:    SessionStateEntering,
	}
	tc.session = s
	if err := tc.prepare(s); err != nil {
		tc.session = nil
		tc.reportSolverError("enter pin mode", err)
		return err
	}

	tc.applyPose()
	tc.refreshOverlay()
	tc.overlay.Show()
	for _, code := range sessionEvents {
		tc.events.Register(code, tc, tc.HandleEvent)
	}
	s.token = core.NewSessionToken()
	tc.scene.SetSessionToken(s.token)
	tc.startWatchdog(s)
	tc.scene.SetOverlayElementsHidden(true)
	tc.metrics.Reset()

	s.state = SessionStateActive
	core.LogInfo("pin mode on %s keyframe %d (session %s)", target.Object.Name, s.keyframe(), s.token)
	return nil
}

func (tc *TrackingContext) checkPreconditions(target *Target) error {
	if target == nil || target.Solver == nil {
		return core.ErrNoSolver
	}
	if target.Object == nil || target.Camera == nil || target.Viewport == nil {
		return core.ErrInvalidTarget
	}
	if err := target.Camera.Validate(); err != nil {
		return err
	}
	if target.Object.SerializedModel != "" {
		if err := target.Solver.Deserialize(target.Object.SerializedModel); err != nil {
			return fmt.Errorf("%w: stored model: %s", core.ErrMeshCorrupted, err)
		}
	}
	if !slices.Contains(target.Solver.Keyframes(), target.Camera.Keyframe) {
		return fmt.Errorf("%w: keyframe %d", core.ErrNoKeyframe, target.Camera.Keyframe)
	}
	if got, want := target.Object.Mesh.VertexCount(), target.Solver.VertexCount(); got != want {
		return fmt.Errorf("%w: mesh has %d vertices, solver %d", core.ErrMeshCorrupted, got, want)
	}
	return nil
}

// prepare syncs the registry with the solver. Nothing visible happens yet.
func (tc *TrackingContext) prepare(s *PinSession) error {
	if err := s.registry.Load(s.keyframe()); err != nil {
		return err
	}
	if _, err := s.registry.CheckPinsOnGeometry(s.target.Object.Mesh, false); err != nil {
		return err
	}
	state, err := s.target.Solver.Serialize()
	if err != nil {
		return err
	}
	s.lastUndoState = s.target.Object.SerializedModel
	if s.lastUndoState == "" {
		s.lastUndoState = state
	}
	return nil
}

func (tc *TrackingContext) startWatchdog(s *PinSession) {
	if s.cancelWatchdog != nil {
		s.cancelWatchdog()
	}
	interval := time.Duration(tc.settings.WatchdogInterval)
	s.cancelWatchdog = tc.scene.RegisterTimer(interval, func() bool {
		if tc.session != s {
			return false
		}
		if tc.scene.SessionToken() != s.token {
			core.LogWarn("session %s no longer matches the scene, leaving pin mode", s.token)
			tc.Exit(ExitReasonStaleSession)
			return false
		}
		return true
	})
}

/**
 * @brief Leaves pin mode. The solver state is written back to the object,
 * the overlay hidden and every handler and timer of the session removed.
 * Does nothing when no session runs.
 */
func (tc *TrackingContext) Exit(reason ExitReason) {
	s := tc.session
	if s == nil || s.state == SessionStateExiting {
		return
	}
	s.state = SessionStateExiting

	if state, err := s.target.Solver.Serialize(); err != nil {
		core.LogError("failed to store model of %s: %s", s.target.Object.Name, err)
	} else {
		s.target.Object.SerializedModel = state
	}

	tc.overlay.Hide()
	for _, code := range sessionEvents {
		tc.events.Unregister(code, tc)
	}
	if s.cancelWatchdog != nil {
		s.cancelWatchdog()
		s.cancelWatchdog = nil
	}
	tc.scene.SetOverlayElementsHidden(false)
	if tc.scene.SessionToken() == s.token {
		tc.scene.SetSessionToken("")
	}

	core.LogInfo("pin mode off (%s): %d solves, %d failed, %.2fms avg",
		reason, tc.metrics.Solves, tc.metrics.Failures, tc.metrics.MSavg)
	s.state = SessionStateInactive
	tc.session = nil
}

// Reload resyncs the session after the host restored state, e.g. on undo.
func (tc *TrackingContext) Reload(state string) error {
	s := tc.session
	if s == nil {
		return core.ErrNoSession
	}
	if err := s.target.Solver.Deserialize(state); err != nil {
		tc.handleSolverError("reload", err)
		return err
	}
	if err := s.registry.Load(s.keyframe()); err != nil {
		tc.handleSolverError("reload", err)
		return err
	}
	s.state = SessionStateActive
	s.changed = false
	s.lastUndoState = state
	tc.applyPose()
	tc.refreshOverlay()
	return nil
}

// HandleEvent dispatches host events to the session handlers.
func (tc *TrackingContext) HandleEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_KEY_PRESSED:
		if ke, ok := context.Data.(*core.KeyEvent); ok {
			return tc.OnKeyPress(ke.KeyCode)
		}
	case core.EVENT_CODE_BUTTON_PRESSED:
		if me, ok := context.Data.(*core.MouseEvent); ok {
			switch me.Button {
			case core.BUTTON_LEFT:
				return tc.OnLeftMousePress(me.X, me.Y)
			case core.BUTTON_RIGHT:
				return tc.OnRightMousePress(me.X, me.Y)
			}
		}
	case core.EVENT_CODE_BUTTON_RELEASED:
		if me, ok := context.Data.(*core.MouseEvent); ok && me.Button == core.BUTTON_LEFT {
			return tc.OnLeftMouseRelease(me.X, me.Y)
		}
	case core.EVENT_CODE_MOUSE_MOVED:
		if me, ok := context.Data.(*core.MouseEvent); ok {
			return tc.OnMouseMove(me.X, me.Y)
		}
	case core.EVENT_CODE_VIEW_ROTATED:
		if tc.session != nil {
			tc.Exit(ExitReasonViewRotated)
			return true
		}
	case core.EVENT_CODE_CONTEXT_LOST:
		if tc.session != nil {
			tc.Exit(ExitReasonContextLost)
			return true
		}
	}
	return false
}

func (tc *TrackingContext) OnKeyPress(key core.KeyCode) bool {
	if !tc.Active() {
		return false
	}
	switch key {
	case core.KEY_ESCAPE, core.KEY_ENTER, core.KEY_NUMPAD_ENTER:
		tc.Exit(ExitReasonUser)
		return true
	}
	return false
}

// nearestPin returns the pin closest to the region point within the pick radius.
func (tc *TrackingContext) nearestPin(s *PinSession, x, y float32) int {
	vp := s.target.Viewport
	positions := s.registry.Positions()
	points := make([]math.Vec2, len(positions))
	for i, p := range positions {
		points[i] = vp.ImageToRegion(p)
	}
	index, _ := math.NearestPoint(x, y, points, tc.settings.ToleranceDist2())
	return index
}

/**
 * @brief Starts a drag: grabs the pin under the pointer, or creates one on
 * the mesh surface when none is near.
 * @return True if the press was consumed by the session.
 */
func (tc *TrackingContext) OnLeftMousePress(x, y float32) bool {
	s := tc.session
	if s == nil || s.state != SessionStateActive {
		return false
	}
	if !s.target.Viewport.InSafeRegion(x, y) {
		return false
	}

	preDrag, err := s.target.Solver.Serialize()
	if err != nil {
		tc.handleSolverError("snapshot", err)
		return true
	}
	s.preDrag = preDrag
	s.changed = false
	s.registry.ClearSelection()

	pos := s.target.Viewport.RegionToImage(x, y)
	index := tc.nearestPin(s, x, y)
	if index < 0 {
		idx, ok, err := s.registry.AddPin(s.keyframe(), pos)
		if err != nil {
			tc.handleSolverError("add pin", err)
			return true
		}
		if !ok {
			core.LogDebug("click at (%.1f, %.1f) missed the mesh", x, y)
			return false
		}
		index = idx
		s.registry.Current = index
		s.state = SessionStateDragging
		if !tc.dragTo(pos) {
			return true
		}
	} else {
		s.registry.Current = index
		s.lastPos = s.registry.Positions()[index]
		s.state = SessionStateDragging
		tc.overlay.UpdatePins(s.registry, s.target.Viewport)
	}
	core.LogDebug("dragging pin %d", index)
	return true
}

func (tc *TrackingContext) OnMouseMove(x, y float32) bool {
	s := tc.session
	if s == nil || s.state != SessionStateDragging {
		return false
	}
	tc.dragTo(s.target.Viewport.RegionToImage(x, y))
	return true
}

// OnLeftMouseRelease ends the drag and records it in the undo history.
func (tc *TrackingContext) OnLeftMouseRelease(x, y float32) bool {
	s := tc.session
	if s == nil || s.state != SessionStateDragging {
		return false
	}
	pos := s.target.Viewport.RegionToImage(x, y)
	if pos != s.lastPos && !tc.dragTo(pos) {
		return true
	}

	s.registry.Current = -1
	s.state = SessionStateActive
	if s.changed {
		tc.pushDragUndo(s)
	}
	s.changed = false
	tc.overlay.UpdatePins(s.registry, s.target.Viewport)
	return true
}

// pushDragUndo records the drag. The pre-drag state gets its own step only
// when it is not already the newest step of the history.
func (tc *TrackingContext) pushDragUndo(s *PinSession) {
	post, err := s.target.Solver.Serialize()
	if err != nil {
		tc.handleSolverError("snapshot", err)
		return
	}
	if s.preDrag != s.lastUndoState {
		tc.scene.PushUndo(UndoBeforeDragPin, s.preDrag)
	}
	tc.scene.PushUndo(UndoPinResult, post)
	s.lastUndoState = post
}

// dragTo moves the current pin and re-solves. It returns false when the
// solver failed and the session was left.
func (tc *TrackingContext) dragTo(pos math.Vec2) bool {
	s := tc.session
	tc.clock.Start()
	err := s.registry.MovePin(s.keyframe(), s.registry.Current, pos)
	tc.clock.Update()
	tc.clock.Stop()
	tc.metrics.Update(tc.clock.Elapsed(), err != nil)
	if err != nil {
		tc.handleSolverError("move pin", err)
		return false
	}
	s.lastPos = pos
	s.changed = true
	tc.applyPose()
	tc.refreshOverlay()
	return true
}

/**
 * @brief Removes the pin under the pointer and re-solves. Invalid argument
 * failures are only reported, anything else ends the session.
 */
func (tc *TrackingContext) OnRightMousePress(x, y float32) bool {
	s := tc.session
	if s == nil || s.state != SessionStateActive {
		return false
	}
	if !s.target.Viewport.InSafeRegion(x, y) {
		return false
	}
	index := tc.nearestPin(s, x, y)
	if index < 0 {
		return false
	}

	tc.clock.Start()
	err := s.registry.RemovePin(s.keyframe(), index)
	tc.clock.Update()
	tc.clock.Stop()
	tc.metrics.Update(tc.clock.Elapsed(), err != nil)
	if err != nil {
		if solver.KindOf(err) != solver.KindInvalidArgument {
			tc.handleSolverError("remove pin", err)
			return true
		}
		core.LogWarn("remove pin %d: %s", index, err)
		tc.scene.Report(core.REPORT_WARNING, fmt.Sprintf("Pin remove: %s", err))
		if err := s.registry.Load(s.keyframe()); err != nil {
			tc.handleSolverError("reload pins", err)
			return true
		}
	}
	tc.applyPose()
	tc.refreshOverlay()

	state, err := s.target.Solver.Serialize()
	if err != nil {
		tc.handleSolverError("snapshot", err)
		return true
	}
	tc.scene.PushUndo(UndoPinRemove, state)
	s.lastUndoState = state
	return true
}

// SelectRectangle selects the pins inside a region space rectangle.
func (tc *TrackingContext) SelectRectangle(x1, y1, x2, y2 float32) []int {
	s := tc.session
	if s == nil || s.state != SessionStateActive {
		return nil
	}
	vp := s.target.Viewport
	a := vp.RegionToImage(x1, y1)
	b := vp.RegionToImage(x2, y2)
	selected := s.registry.PinsInsideRectangle(a.X, a.Y, b.X, b.Y)
	s.registry.ClearSelection()
	s.registry.Select(selected...)
	tc.overlay.UpdatePins(s.registry, vp)
	return selected
}

// applyPose copies the solved camera pose and mesh into the host objects.
func (tc *TrackingContext) applyPose() {
	s := tc.session
	t := s.target
	t.Camera.ModelMatrix = t.Solver.ModelMatrix(s.keyframe()).Mul(t.Object.WorldMatrix)
	if mesh := t.Object.Mesh; mesh != nil {
		vertices := t.Solver.Vertices()
		if len(vertices) == len(mesh.Vertices) {
			copy(mesh.Vertices, vertices)
		}
	}
}

func (tc *TrackingContext) refreshOverlay() {
	s := tc.session
	tc.overlay.Update(&views.OverlayFrame{
		Object:       s.target.Object,
		Camera:       s.target.Camera,
		Viewport:     s.target.Viewport,
		SpecialEdges: s.target.SpecialEdges,
		Pins:         s.registry,
	})
}

// handleSolverError reports a failed solver call and ends the session.
func (tc *TrackingContext) handleSolverError(op string, err error) {
	core.LogError("%s failed: %s", op, err)
	tc.reportSolverError(op, err)
	tc.Exit(ExitReasonSolverFailure)
}

func (tc *TrackingContext) reportSolverError(op string, err error) {
	if solver.IsUnlicensed(err) {
		tc.scene.ShowLicenseDialog()
		return
	}
	tc.scene.Report(core.REPORT_ERROR, fmt.Sprintf("%s failed: %s", op, err))
}
