package components

import "github.com/spaghettifunk/facetrack/engine/math"

// Viewport describes the 3D view region the camera frame is drawn in.
type Viewport struct {
	RegionWidth  float32
	RegionHeight float32
	RenderWidth  float32
	RenderHeight float32
	// CameraZoom and CameraOffset are the view camera zoom and pan.
	CameraZoom    float32
	CameraOffsetX float32
	CameraOffsetY float32
	// Panels are UI rectangles drawn over the region. Clicks on them are not ours.
	Panels []math.Extents2D
}

// Border returns the rectangle the camera frame occupies on screen.
func (v *Viewport) Border() math.Extents2D {
	return math.CameraBorder(v.RegionWidth, v.RegionHeight, v.RenderWidth, v.RenderHeight,
		v.CameraZoom, v.CameraOffsetX, v.CameraOffsetY)
}

// InSafeRegion reports whether (x, y) is inside the region and not over a panel.
func (v *Viewport) InSafeRegion(x, y float32) bool {
	if x < 0 || y < 0 || x > v.RegionWidth || y > v.RegionHeight {
		return false
	}
	for _, p := range v.Panels {
		if p.Contains(x, y) {
			return false
		}
	}
	return true
}

func (v *Viewport) RegionToImage(x, y float32) math.Vec2 {
	ix, iy := math.RegionToImageSpace(x, y, v.Border())
	return math.NewVec2(ix, iy)
}

func (v *Viewport) ImageToRegion(p math.Vec2) math.Vec2 {
	rx, ry := math.ImageSpaceToRegion(p.X, p.Y, v.Border())
	return math.NewVec2(rx, ry)
}
