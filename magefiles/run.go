//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Replays the scripted pin session. Set FACETRACK_SETTINGS to watch a settings file.
func (Run) Demo() error {
	args := []string{"run", "main.go"}
	if path := settingsFromEnv(); path != "" {
		args = append(args, "-settings", path)
	}
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests with the race detector.
func (Run) Tests() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
