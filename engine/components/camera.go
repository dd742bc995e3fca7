package components

import (
	"fmt"

	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
)

/**
 * @brief Represents one tracked camera view. The solver stores the pose and
 * pins of the frame under Keyframe; the host keeps the physical camera
 * settings and the last solved pose here.
 */
type CameraFrame struct {
	// Keyframe is the solver-side index of this frame.
	Keyframe int
	// FocalLength in millimetres.
	FocalLength float32
	// SensorWidth and SensorHeight in millimetres.
	SensorWidth  float32
	SensorHeight float32
	// ImageWidth and ImageHeight in pixels, 0 when unknown.
	ImageWidth  int
	ImageHeight int
	ClipStart   float32
	ClipEnd     float32
	// Orientation in quarter turns, 0..3.
	Orientation uint8
	// ModelMatrix places the camera in the world.
	ModelMatrix math.Mat4
}

const (
	DefaultFocalLength  float32 = 50.0
	DefaultSensorWidth  float32 = 36.0
	DefaultSensorHeight float32 = 24.0
)

func NewCameraFrame(keyframe int) *CameraFrame {
	return &CameraFrame{
		Keyframe:     keyframe,
		FocalLength:  DefaultFocalLength,
		SensorWidth:  DefaultSensorWidth,
		SensorHeight: DefaultSensorHeight,
		ClipStart:    0.1,
		ClipEnd:      1000.0,
		ModelMatrix:  math.NewMat4Identity(),
	}
}

func (c *CameraFrame) Validate() error {
	if c.FocalLength <= 0 {
		return fmt.Errorf("%w: focal length must be > 0, got %f", core.ErrInvalidCamera, c.FocalLength)
	}
	if c.SensorWidth <= 0 {
		return fmt.Errorf("%w: sensor width must be > 0, got %f", core.ErrInvalidCamera, c.SensorWidth)
	}
	if c.ImageWidth < 0 || c.ImageHeight < 0 {
		return fmt.Errorf("%w: image size %dx%d", core.ErrInvalidCamera, c.ImageWidth, c.ImageHeight)
	}
	if c.ClipStart <= 0 || c.ClipEnd <= c.ClipStart {
		return fmt.Errorf("%w: clip range %f..%f", core.ErrInvalidCamera, c.ClipStart, c.ClipEnd)
	}
	if c.Orientation > 3 {
		return fmt.Errorf("%w: orientation %d", core.ErrInvalidCamera, c.Orientation)
	}
	return nil
}

// FrameSize returns the frame dimensions after applying the orientation.
func (c *CameraFrame) FrameSize() (float32, float32) {
	w, h := float32(c.ImageWidth), float32(c.ImageHeight)
	if c.Orientation%2 == 1 {
		return h, w
	}
	return w, h
}

// Projection returns the projection matrix from camera space to frame pixels.
func (c *CameraFrame) Projection() math.Mat4 {
	w, h := c.FrameSize()
	return math.ProjectionMatrix(w, h, c.FocalLength, c.SensorWidth,
		c.ClipStart, c.ClipEnd, math.CompensateViewScale(w, h))
}

// View returns the world to camera transform.
func (c *CameraFrame) View() math.Mat4 {
	return c.ModelMatrix.Inverse()
}

// WorldToFrame returns the full transform from world space to frame pixels.
func (c *CameraFrame) WorldToFrame() math.Mat4 {
	return c.View().Mul(c.Projection())
}
