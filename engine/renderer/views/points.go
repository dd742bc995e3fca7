package views

import (
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/solver"
)

// SurfacePoints are the 3D positions of every pin of every keyframe.
type SurfacePoints struct {
	Points  []math.Vec3
	Colours []math.Colour
}

// Update resolves the surface point of each pin. Pins of activeKeyframe
// get accent, the rest base. Pins off the current mesh are skipped.
func (sp *SurfacePoints) Update(s solver.Solver, world math.Mat4, activeKeyframe int, base, accent math.Colour) {
	sp.Clear()
	if s == nil {
		return
	}
	vertices := s.Vertices()
	for _, kf := range s.Keyframes() {
		colour := base
		if kf == activeKeyframe {
			colour = accent
		}
		count := s.PinsCount(kf)
		for i := 0; i < count; i++ {
			pin, err := s.Pin(kf, i)
			if err != nil {
				core.LogDebug("surface point %d of keyframe %d: %s", i, kf, err)
				continue
			}
			if !pin.Surface.Valid(len(vertices)) {
				continue
			}
			sp.Points = append(sp.Points, pin.Surface.Position(vertices).Transform(world))
			sp.Colours = append(sp.Colours, colour)
		}
	}
}

func (sp *SurfacePoints) Clear() {
	sp.Points = sp.Points[:0]
	sp.Colours = sp.Colours[:0]
}
