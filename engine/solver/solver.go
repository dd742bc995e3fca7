package solver

import (
	"github.com/spaghettifunk/facetrack/engine/math"
)

// SurfacePoint is a point on a mesh triangle in barycentric form.
type SurfacePoint struct {
	Vertices [3]uint32
	Weights  [3]float32
}

const weightTolerance float32 = 1e-3

// Valid reports whether every vertex index is below vertexCount and the
// weights sum to one.
func (sp SurfacePoint) Valid(vertexCount int) bool {
	for _, v := range sp.Vertices {
		if int(v) >= vertexCount {
			return false
		}
	}
	sum := sp.Weights[0] + sp.Weights[1] + sp.Weights[2]
	return sum > 1-weightTolerance && sum < 1+weightTolerance
}

// Position resolves the surface point against the given vertex positions.
// The caller guarantees the indices are valid.
func (sp SurfacePoint) Position(vertices []math.Vec3) math.Vec3 {
	return math.BarycentricPoint(
		vertices[sp.Vertices[0]],
		vertices[sp.Vertices[1]],
		vertices[sp.Vertices[2]],
		sp.Weights)
}

// Pin binds an image space position to a surface point.
type Pin struct {
	ImagePos math.Vec2
	Surface  SurfacePoint
}

// Solver is the pose/shape solver the tracker drives. Implementations
// return *Error values so failures can be classified with KindOf.
type Solver interface {
	// AddPin creates a pin where pos hits the mesh. ok is false on a miss.
	AddPin(keyframe int, pos math.Vec2) (index int, ok bool, err error)
	MovePin(keyframe int, index int, pos math.Vec2) error
	RemovePin(keyframe int, index int) error
	PinsCount(keyframe int) int
	Pin(keyframe int, index int) (Pin, error)
	SolveForCurrentPins(keyframe int) error
	// SpringPinsBack moves every pin of keyframe onto its surface point.
	SpringPinsBack(keyframe int) error

	Serialize() (string, error)
	Deserialize(state string) error

	Keyframes() []int
	VertexCount() int
	// Vertices returns the reconstructed mesh in object space.
	Vertices() []math.Vec3
	// ModelMatrix returns the solved camera pose of keyframe.
	ModelMatrix(keyframe int) math.Mat4
}
