package testbed

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/facetrack/engine/containers"
	"github.com/spaghettifunk/facetrack/engine/core"
)

// UndoHistorySize is how many undo entries the scene keeps.
const UndoHistorySize = 32

type UndoEntry struct {
	Message string
	State   string
}

type Message struct {
	Level core.ReportLevel
	Text  string
}

type timer struct {
	interval time.Duration
	elapsed  time.Duration
	fn       func() bool
	active   bool
}

// Scene is a host document kept entirely in memory. Timers only run when
// the caller advances them with Tick.
type Scene struct {
	token  string
	Undo   *containers.RingQueue[UndoEntry]
	timers []*timer

	Messages       []Message
	LicenseDialogs int
	OverlayHidden  bool
}

func NewScene() *Scene {
	return &Scene{
		Undo: containers.NewRingQueue[UndoEntry](UndoHistorySize),
	}
}

func (s *Scene) SessionToken() string {
	return s.token
}

func (s *Scene) SetSessionToken(token string) {
	s.token = token
}

func (s *Scene) PushUndo(message, state string) {
	core.LogDebug("undo push: %s", message)
	s.Undo.Push(UndoEntry{Message: message, State: state})
}

// UndoMessages lists the undo history from oldest to newest.
func (s *Scene) UndoMessages() []string {
	items := s.Undo.Items()
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Message
	}
	return out
}

// LastUndo returns the newest undo entry.
func (s *Scene) LastUndo() (UndoEntry, bool) {
	items := s.Undo.Items()
	if len(items) == 0 {
		return UndoEntry{}, false
	}
	return items[len(items)-1], true
}

// RegisterTimer schedules fn every interval until it returns false or the
// returned cancel func is called.
func (s *Scene) RegisterTimer(interval time.Duration, fn func() bool) func() {
	t := &timer{interval: interval, fn: fn, active: true}
	s.timers = append(s.timers, t)
	return func() { t.active = false }
}

// ActiveTimers counts timers that have not been cancelled.
func (s *Scene) ActiveTimers() int {
	n := 0
	for _, t := range s.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Tick advances every timer by dt and runs the ones that are due.
func (s *Scene) Tick(dt time.Duration) {
	// callbacks may register new timers
	timers := append([]*timer(nil), s.timers...)
	for _, t := range timers {
		if !t.active {
			continue
		}
		t.elapsed += dt
		for t.active && t.elapsed >= t.interval {
			t.elapsed -= t.interval
			if !t.fn() {
				t.active = false
			}
		}
	}

	live := s.timers[:0]
	for _, t := range s.timers {
		if t.active {
			live = append(live, t)
		}
	}
	s.timers = live
}

func (s *Scene) Report(level core.ReportLevel, msg string) {
	s.Messages = append(s.Messages, Message{Level: level, Text: msg})
	switch level {
	case core.REPORT_ERROR:
		core.LogError("report: %s", msg)
	case core.REPORT_WARNING:
		core.LogWarn("report: %s", msg)
	default:
		core.LogInfo("report: %s", msg)
	}
}

func (s *Scene) ShowLicenseDialog() {
	s.LicenseDialogs++
}

func (s *Scene) SetOverlayElementsHidden(hidden bool) {
	s.OverlayHidden = hidden
}

// Errors returns the text of every error reported so far.
func (s *Scene) Errors() []string {
	var out []string
	for _, m := range s.Messages {
		if m.Level == core.REPORT_ERROR {
			out = append(out, m.Text)
		}
	}
	return out
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Level, m.Text)
}
