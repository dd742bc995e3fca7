package views

import (
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
)

/**
 * @brief Line list of the tracked mesh in world space. Vertices hold two
 * entries per edge and Colours one entry per vertex, ready to be uploaded
 * as a single vertex buffer.
 */
type Wireframe struct {
	Vertices []math.Vec3
	Colours  []math.Colour
}

// Update rebuilds the line list. Edges listed in special use accent, all others base.
func (w *Wireframe) Update(mesh *components.Mesh, world math.Mat4, special []int, base, accent math.Colour) {
	w.Vertices = w.Vertices[:0]
	w.Colours = w.Colours[:0]
	if mesh == nil {
		return
	}

	isSpecial := make(map[int]struct{}, len(special))
	for _, e := range special {
		isSpecial[e] = struct{}{}
	}

	count := uint32(len(mesh.Vertices))
	for i, e := range mesh.Edges {
		if e[0] >= count || e[1] >= count {
			continue
		}
		colour := base
		if _, ok := isSpecial[i]; ok {
			colour = accent
		}
		w.Vertices = append(w.Vertices,
			mesh.Vertices[e[0]].Transform(world),
			mesh.Vertices[e[1]].Transform(world),
		)
		w.Colours = append(w.Colours, colour, colour)
	}
}

func (w *Wireframe) Clear() {
	w.Vertices = w.Vertices[:0]
	w.Colours = w.Colours[:0]
}
