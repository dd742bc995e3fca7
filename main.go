/*
Demo host: builds an in-memory document, enters pin mode on it and replays
a short pin editing session through the engine event queue.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/facetrack/engine"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/systems"
	"github.com/spaghettifunk/facetrack/testbed"
)

const eventCodeScriptDone core.SystemEventCode = core.MAX_EVENT_CODE + 1

// step is one scripted host event at an image space point.
type step struct {
	code   core.SystemEventCode
	button core.Button
	x, y   float32
}

var script = []step{
	{core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_LEFT, 0.1, 0.05},
	{core.EVENT_CODE_MOUSE_MOVED, core.BUTTON_LEFT, 0.11, 0.05},
	{core.EVENT_CODE_BUTTON_RELEASED, core.BUTTON_LEFT, 0.12, 0.05},
	{core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_LEFT, -0.1, 0.01},
	{core.EVENT_CODE_BUTTON_RELEASED, core.BUTTON_LEFT, -0.1, 0.01},
	{core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_LEFT, 0.01, -0.05},
	{core.EVENT_CODE_BUTTON_RELEASED, core.BUTTON_LEFT, 0.01, -0.04},
	{core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_RIGHT, -0.1, 0.01},
}

func main() {
	settingsPath := flag.String("settings", "", "TOML settings file, watched for changes")
	logLevel := flag.String("log-level", "", "overrides the log level of the settings")
	flag.Parse()

	doc := testbed.NewDocument()
	e, err := engine.New(&engine.ApplicationConfig{
		Name:         "facetrack demo",
		SettingsPath: *settingsPath,
		LogLevel:     *logLevel,
	}, doc.Scene)
	if err != nil {
		panic(err)
	}
	if err := e.Initialize(); err != nil {
		panic(err)
	}

	err = e.Tracking().Enter(&systems.Target{
		Object:       doc.Object,
		Camera:       doc.Camera,
		Viewport:     doc.Viewport,
		Solver:       doc.Solver,
		SpecialEdges: []int{0, 1, 2, 3},
	})
	if err != nil {
		core.LogFatal("could not enter pin mode: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()

	e.Events().Register(eventCodeScriptDone, doc, func(core.EventContext) bool {
		cancel()
		return true
	})
	go func() {
		for _, s := range script {
			x, y := doc.RegionPoint(s.x, s.y)
			ev := core.EventContext{Type: s.code, Data: &core.MouseEvent{X: x, Y: y, Button: s.button}}
			if err := e.Post(ctx, ev); err != nil {
				return
			}
		}
		_ = e.Post(ctx, core.EventContext{Type: eventCodeScriptDone})
	}()

	if err := e.Run(ctx); err != nil {
		panic(err)
	}
	if err := e.Shutdown(); err != nil {
		panic(err)
	}

	core.LogInfo("pins on keyframe %d: %d", testbed.DefaultKeyframe, doc.Solver.PinsCount(testbed.DefaultKeyframe))
	for i, m := range doc.Scene.UndoMessages() {
		core.LogInfo("undo %d: %s", i, m)
	}
	for _, m := range doc.Scene.Messages {
		core.LogInfo("report %s", m)
	}
}
