package components

import "github.com/spaghettifunk/facetrack/engine/math"

// Mesh is the tracked polygon mesh in object space.
type Mesh struct {
	Vertices []math.Vec3
	Edges    [][2]uint32
	// Polygons hold vertex indices, three or more per polygon.
	Polygons [][]uint32
}

func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// PolygonExists reports whether the three vertices belong to one polygon.
func (m *Mesh) PolygonExists(a, b, c uint32) bool {
	for _, poly := range m.Polygons {
		if containsAll(poly, a, b, c) {
			return true
		}
	}
	return false
}

func containsAll(poly []uint32, vs ...uint32) bool {
	for _, v := range vs {
		ok := false
		for _, p := range poly {
			if p == v {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Triangles returns a fan triangulation of every polygon.
func (m *Mesh) Triangles() [][3]uint32 {
	tris := make([][3]uint32, 0, len(m.Polygons))
	for _, poly := range m.Polygons {
		for i := 1; i+1 < len(poly); i++ {
			tris = append(tris, [3]uint32{poly[0], poly[i], poly[i+1]})
		}
	}
	return tris
}

// EdgesFromPolygons fills Edges with the unique polygon borders.
func (m *Mesh) EdgesFromPolygons() {
	seen := make(map[[2]uint32]struct{})
	m.Edges = m.Edges[:0]
	for _, poly := range m.Polygons {
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			if a > b {
				a, b = b, a
			}
			key := [2]uint32{a, b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			m.Edges = append(m.Edges, key)
		}
	}
}

// Object is a tracked scene object.
type Object struct {
	Name        string
	Mesh        *Mesh
	WorldMatrix math.Mat4
	// SerializedModel persists the solver state between sessions.
	SerializedModel string
}

func NewObject(name string, mesh *Mesh) *Object {
	return &Object{
		Name:        name,
		Mesh:        mesh,
		WorldMatrix: math.NewMat4Identity(),
	}
}
