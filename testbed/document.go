package testbed

import (
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
)

const (
	// DefaultKeyframe is the frame the document camera is tracked on.
	DefaultKeyframe = 1
	// GridSize is the number of quads per side of NewGridMesh meshes.
	GridSize = 10
)

// Document bundles everything a tracking session needs from the host.
type Document struct {
	Scene    *Scene
	Object   *components.Object
	Camera   *components.CameraFrame
	Viewport *components.Viewport
	Solver   *Solver
}

// NewGridMesh builds a flat square of size x size units centred on the
// origin in the XY plane, split into n x n quads.
func NewGridMesh(n int, size float32) *components.Mesh {
	mesh := &components.Mesh{}
	step := size / float32(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			mesh.Vertices = append(mesh.Vertices, math.NewVec3(
				-size/2+float32(i)*step,
				-size/2+float32(j)*step,
				0,
			))
		}
	}
	row := uint32(n + 1)
	for j := uint32(0); j < uint32(n); j++ {
		for i := uint32(0); i < uint32(n); i++ {
			a := j*row + i
			mesh.Polygons = append(mesh.Polygons, []uint32{a, a + 1, a + row + 1, a + row})
		}
	}
	mesh.EdgesFromPolygons()
	return mesh
}

// NewDocument returns a 1920x1080 frame looking at a 2x2 grid from ten
// units away, with a solver that already knows the keyframe.
func NewDocument() *Document {
	mesh := NewGridMesh(GridSize, 2)
	object := components.NewObject("head", mesh)

	camera := components.NewCameraFrame(DefaultKeyframe)
	camera.ImageWidth = 1920
	camera.ImageHeight = 1080
	camera.ModelMatrix = math.TransformFromPosition(math.NewVec3(0, 0, 10)).GetWorld()

	viewport := &components.Viewport{
		RegionWidth:  1000,
		RegionHeight: 800,
		RenderWidth:  1920,
		RenderHeight: 1080,
	}

	s := NewSolver(mesh)
	s.AddKeyframe(camera)

	return &Document{
		Scene:    NewScene(),
		Object:   object,
		Camera:   camera,
		Viewport: viewport,
		Solver:   s,
	}
}

// RegionPoint returns the on-screen position of an image space point.
func (d *Document) RegionPoint(x, y float32) (float32, float32) {
	p := d.Viewport.ImageToRegion(math.NewVec2(x, y))
	return p.X, p.Y
}
