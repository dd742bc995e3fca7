package views

import (
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
)

/**
 * @brief Screen space lines from each pin to the reprojection of its
 * surface point. Lengths holds, per vertex, the distance along the line
 * (0 at the pin) so the renderer can fade the line out.
 */
type Residuals struct {
	Vertices []math.Vec2
	Lengths  []float32
	Colour   math.Colour
}

// Update rebuilds the residual lines. pins are image space positions and
// surface the matching world space points, in the same order. When the two
// disagree in length there is nothing consistent to draw and the result is empty.
func (r *Residuals) Update(pins []math.Vec2, surface []math.Vec3, camera *components.CameraFrame, border math.Extents2D, colour math.Colour) {
	r.Clear()
	r.Colour = colour
	if camera == nil || len(pins) != len(surface) || len(pins) == 0 {
		return
	}

	w, h := camera.FrameSize()
	projected := math.ProjectPoints(surface, camera.WorldToFrame())
	for i, p := range pins {
		px, py := math.ImageSpaceToRegion(p.X, p.Y, border)
		fx, fy := math.FrameToImageSpace(projected[i].X, projected[i].Y, w, h)
		sx, sy := math.ImageSpaceToRegion(fx, fy, border)

		from := math.NewVec2(px, py)
		to := math.NewVec2(sx, sy)
		r.Vertices = append(r.Vertices, from, to)
		r.Lengths = append(r.Lengths, 0, from.Distance(to))
	}
}

// Count returns the number of residual lines.
func (r *Residuals) Count() int {
	return len(r.Vertices) / 2
}

func (r *Residuals) Clear() {
	r.Vertices = r.Vertices[:0]
	r.Lengths = r.Lengths[:0]
}
