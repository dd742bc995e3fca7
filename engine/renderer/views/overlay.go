package views

import (
	"github.com/spaghettifunk/facetrack/engine/assets"
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/pins"
)

// PinMarkers are the pins in region coordinates.
type PinMarkers struct {
	Points  []math.Vec2
	Colours []math.Colour
	Size    float32
}

// OverlayFrame is everything the overlay is derived from.
type OverlayFrame struct {
	Object       *components.Object
	Camera       *components.CameraFrame
	Viewport     *components.Viewport
	SpecialEdges []int
	Pins         *pins.Registry
}

/**
 * @brief The visual state drawn over the viewport while pinning: mesh
 * wireframe, pin markers, surface points and residual lines. It never
 * touches the model; Update only derives geometry from it.
 */
type Overlay struct {
	Wireframe     Wireframe
	SurfacePoints SurfacePoints
	Residuals     Residuals
	Pins          PinMarkers

	colours assets.Colors
	visible bool
}

func NewOverlay(settings *assets.Settings) *Overlay {
	o := &Overlay{}
	o.ApplySettings(settings)
	return o
}

func (o *Overlay) ApplySettings(settings *assets.Settings) {
	o.colours = settings.Colors
	o.Pins.Size = settings.PinSize
}

func (o *Overlay) Show() {
	o.visible = true
}

func (o *Overlay) Hide() {
	o.visible = false
}

func (o *Overlay) Visible() bool {
	return o.visible
}

// Update rebuilds every layer. The registry must be loaded for the camera keyframe.
func (o *Overlay) Update(frame *OverlayFrame) {
	world := frame.Object.WorldMatrix
	o.Wireframe.Update(frame.Object.Mesh, world, frame.SpecialEdges,
		o.colours.Wireframe.Colour(), o.colours.WireframeSpecial.Colour())

	s := frame.Pins.Solver()
	keyframe := frame.Pins.Keyframe()
	o.SurfacePoints.Update(s, world, keyframe,
		o.colours.SurfacePoint.Colour(), o.colours.SurfacePointActive.Colour())

	o.UpdatePins(frame.Pins, frame.Viewport)

	// surface points of the active keyframe, pin order
	positions := frame.Pins.Positions()
	vertices := s.Vertices()
	surface := make([]math.Vec3, 0, len(positions))
	for i := range positions {
		pin, err := s.Pin(keyframe, i)
		if err != nil || !pin.Surface.Valid(len(vertices)) {
			core.LogDebug("pin %d has no surface point, residuals skipped", i)
			break
		}
		surface = append(surface, pin.Surface.Position(vertices).Transform(world))
	}
	o.Residuals.Update(positions, surface, frame.Camera, frame.Viewport.Border(),
		o.colours.Residual.Colour())
}

// UpdatePins only refreshes the pin markers, e.g. after a selection change.
func (o *Overlay) UpdatePins(registry *pins.Registry, viewport *components.Viewport) {
	o.Pins.Points = o.Pins.Points[:0]
	o.Pins.Colours = o.Pins.Colours[:0]
	for i, p := range registry.Positions() {
		o.Pins.Points = append(o.Pins.Points, viewport.ImageToRegion(p))
		colour := o.colours.Pin
		switch {
		case i == registry.Current:
			colour = o.colours.CurrentPin
		case registry.IsSelected(i):
			colour = o.colours.SelectedPin
		}
		o.Pins.Colours = append(o.Pins.Colours, colour.Colour())
	}
}

func (o *Overlay) Clear() {
	o.Wireframe.Clear()
	o.SurfacePoints.Clear()
	o.Residuals.Clear()
	o.Pins.Points = o.Pins.Points[:0]
	o.Pins.Colours = o.Pins.Colours[:0]
}
