package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/facetrack/engine/core"
)

// SettingsWatcher reloads a settings file whenever it changes on disk and
// publishes the result on Updates. Invalid files are logged and skipped so
// the last good settings stay in effect.
type SettingsWatcher struct {
	path    string
	updates chan *Settings
	errors  chan error

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup

	mutex    sync.Mutex
	isClosed bool
}

func NewSettingsWatcher(path string) (*SettingsWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	return &SettingsWatcher{
		path:     abs,
		updates:  make(chan *Settings, 1),
		errors:   make(chan error, 1),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory of the settings file. Editors often replace
// the file instead of writing it, so watching the file itself loses track.
func (sw *SettingsWatcher) Start() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return errors.New("settings watcher already closed")
	}
	if err := sw.fsnotify.Add(filepath.Dir(sw.path)); err != nil {
		return err
	}
	sw.wg.Add(1)
	go sw.start()
	core.LogDebug("watching settings file %s", sw.path)
	return nil
}

// Updates delivers freshly loaded settings. Only the newest pending value is kept.
func (sw *SettingsWatcher) Updates() <-chan *Settings {
	return sw.updates
}

func (sw *SettingsWatcher) Errors() <-chan error {
	return sw.errors
}

func (sw *SettingsWatcher) Close() error {
	sw.mutex.Lock()
	if sw.isClosed {
		sw.mutex.Unlock()
		return nil
	}
	sw.isClosed = true
	close(sw.done)
	sw.mutex.Unlock()

	sw.wg.Wait()
	return sw.fsnotify.Close()
}

func (sw *SettingsWatcher) start() {
	defer sw.wg.Done()
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != sw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			sw.reload()

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("settings watcher: %s", err)
			sw.publishError(err)

		case <-sw.done:
			return
		}
	}
}

func (sw *SettingsWatcher) reload() {
	s, err := LoadSettings(sw.path)
	if err != nil {
		core.LogWarn("ignoring settings change: %s", err)
		sw.publishError(err)
		return
	}
	core.LogInfo("settings reloaded from %s", sw.path)

	// drop a stale pending value so the consumer sees the newest one
	select {
	case <-sw.updates:
	default:
	}
	select {
	case sw.updates <- s:
	case <-sw.done:
	}
}

func (sw *SettingsWatcher) publishError(err error) {
	select {
	case sw.errors <- err:
	default:
	}
}
