package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/facetrack/engine/assets"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Ticker is implemented by scenes whose timers are advanced by the engine.
type Ticker interface {
	Tick(dt time.Duration)
}

/**
 * @brief Drives one host document: owns its settings, event bus and
 * tracking context and processes host events one at a time on the
 * goroutine that calls Run.
 */
type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	scene        systems.Scene
	settings     *assets.Settings
	watcher      *assets.SettingsWatcher
	events       *core.EventBus
	tracking     *systems.TrackingContext
	queue        chan core.EventContext
	clock        *core.Clock
}

func New(config *ApplicationConfig, scene systems.Scene) (*Engine, error) {
	if scene == nil {
		return nil, errors.New("engine needs a host scene")
	}
	if config == nil {
		config = &ApplicationConfig{}
	}
	cfg := config.withDefaults()
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		scene:        scene,
		events:       core.NewEventBus(),
		queue:        make(chan core.EventContext, cfg.QueueSize),
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing
	if err := e.initialize(); err != nil {
		if e.watcher != nil {
			_ = e.watcher.Close()
			e.watcher = nil
		}
		e.currentStage = EngineStageUninitialized
		return err
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized", e.config.Name)
	return nil
}

func (e *Engine) initialize() error {
	settings := assets.DefaultSettings()
	if e.config.SettingsPath != "" {
		s, err := assets.LoadSettings(e.config.SettingsPath)
		if err != nil {
			return err
		}
		settings = s

		w, err := assets.NewSettingsWatcher(e.config.SettingsPath)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			_ = w.Close()
			return err
		}
		e.watcher = w
	}
	if err := e.applyLogLevel(settings); err != nil {
		return err
	}
	e.settings = settings
	e.tracking = systems.NewTrackingContext(e.scene, e.events, settings)
	return nil
}

func (e *Engine) applyLogLevel(settings *assets.Settings) error {
	level := settings.LogLevel
	if e.config.LogLevel != "" {
		level = e.config.LogLevel
	}
	return core.SetLogLevel(level)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Tracking() *systems.TrackingContext {
	return e.tracking
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Settings() *assets.Settings {
	return e.settings
}

// Post queues a host event for Run. It is safe to call from any goroutine.
func (e *Engine) Post(ctx context.Context, event core.EventContext) error {
	select {
	case e.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch fires an event right away. Only call it from the Run goroutine
// or when Run is not used.
func (e *Engine) Dispatch(event core.EventContext) bool {
	return e.events.Fire(event)
}

// ApplySettings switches every subsystem to settings. Invalid settings are
// rejected and the current ones stay in effect.
func (e *Engine) ApplySettings(settings *assets.Settings) error {
	if err := e.tracking.ApplySettings(settings); err != nil {
		return err
	}
	if err := e.applyLogLevel(settings); err != nil {
		core.LogWarn("keeping log level: %s", err)
	}
	e.settings = settings
	return nil
}

/**
 * @brief Processes queued host events, settings reloads and scene timers
 * until ctx is cancelled. Everything touching the tracking context happens
 * on the calling goroutine.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning

	var updates <-chan *assets.Settings
	if e.watcher != nil {
		updates = e.watcher.Updates()
	}
	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	e.clock.Start()
	last := 0.0
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-e.queue:
			e.events.Fire(event)
		case s := <-updates:
			// rejections are logged by the tracking context
			_ = e.ApplySettings(s)
		case <-ticker.C:
			e.clock.Update()
			now := e.clock.Elapsed()
			if t, ok := e.scene.(Ticker); ok {
				t.Tick(time.Duration((now - last) * float64(time.Second)))
			}
			last = now
		}
	}
}

// Shutdown leaves pin mode, storing the model, and stops watching settings.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	if e.tracking != nil {
		e.tracking.Exit(systems.ExitReasonContextLost)
	}
	e.clock.Stop()
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			return err
		}
	}
	core.LogInfo("%s shut down", e.config.Name)
	return nil
}
