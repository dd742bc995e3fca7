package views

import (
	"testing"

	"github.com/spaghettifunk/facetrack/engine/assets"
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/pins"
	"github.com/spaghettifunk/facetrack/engine/solver"
	"github.com/spaghettifunk/facetrack/testbed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base   = math.NewVec4Create(0, 1, 0, 1)
	accent = math.NewVec4Create(1, 0, 0, 1)
)

func TestWireframeUpdate(t *testing.T) {
	mesh := testbed.NewGridMesh(1, 2)
	require.Len(t, mesh.Edges, 4)
	world := math.NewMat4Translation(math.NewVec3(0, 0, 5))

	var w Wireframe
	w.Update(mesh, world, []int{2}, base, accent)
	require.Len(t, w.Vertices, 8)
	require.Len(t, w.Colours, 8)

	e := mesh.Edges[0]
	assert.True(t, w.Vertices[0].Compare(mesh.Vertices[e[0]].Add(math.NewVec3(0, 0, 5)), 1e-6))
	assert.Equal(t, base, w.Colours[0])
	assert.Equal(t, accent, w.Colours[4])
	assert.Equal(t, accent, w.Colours[5])
	assert.Equal(t, base, w.Colours[6])

	w.Update(nil, world, nil, base, accent)
	assert.Empty(t, w.Vertices)
}

func TestSurfacePointsColourByKeyframe(t *testing.T) {
	doc := testbed.NewDocument()
	other := components.NewCameraFrame(2)
	other.ImageWidth, other.ImageHeight = 1920, 1080
	other.ModelMatrix = math.NewMat4Translation(math.NewVec3(0, 0, 8))
	doc.Solver.AddKeyframe(other)

	_, ok, err := doc.Solver.AddPin(1, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = doc.Solver.AddPin(2, math.NewVec2(-0.05, 0.02))
	require.NoError(t, err)
	require.True(t, ok)
	// off the mesh, skipped
	require.NoError(t, doc.Solver.InjectPin(2, solver.Pin{Surface: solver.SurfacePoint{
		Vertices: [3]uint32{0, 1, 999},
		Weights:  [3]float32{1, 0, 0},
	}}))

	var sp SurfacePoints
	sp.Update(doc.Solver, math.NewMat4Identity(), 2, base, accent)
	require.Len(t, sp.Points, 2)
	assert.Equal(t, []math.Colour{base, accent}, sp.Colours)
	assert.InDelta(t, 0, sp.Points[0].Z, 1e-6)
}

func TestResidualsZeroWhenPinMatchesReprojection(t *testing.T) {
	doc := testbed.NewDocument()
	idx, ok, err := doc.Solver.AddPin(testbed.DefaultKeyframe, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)
	pin, err := doc.Solver.Pin(testbed.DefaultKeyframe, idx)
	require.NoError(t, err)
	surface := []math.Vec3{pin.Surface.Position(doc.Solver.Vertices())}
	border := doc.Viewport.Border()

	var r Residuals
	r.Update([]math.Vec2{pin.ImagePos}, surface, doc.Camera, border, accent)
	require.Equal(t, 1, r.Count())
	assert.InDelta(t, 0, r.Lengths[1], 1e-2)
	assert.InDelta(t, 550, r.Vertices[0].X, 1e-3)
	assert.InDelta(t, 425, r.Vertices[0].Y, 1e-3)

	r.Update([]math.Vec2{math.NewVec2(0.12, 0.05)}, surface, doc.Camera, border, accent)
	require.Equal(t, 1, r.Count())
	// 0.02 image units on a 500 pixel wide border
	assert.InDelta(t, 10, r.Lengths[1], 1e-2)
	assert.Equal(t, float32(0), r.Lengths[0])
}

func TestResidualsCountMismatchIsEmpty(t *testing.T) {
	doc := testbed.NewDocument()
	var r Residuals
	r.Update([]math.Vec2{{X: 0, Y: 0}, {X: 0.1, Y: 0}}, []math.Vec3{{}}, doc.Camera, doc.Viewport.Border(), accent)
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Lengths)
}

func TestOverlayUpdate(t *testing.T) {
	doc := testbed.NewDocument()
	registry := pins.NewRegistry(doc.Solver)
	require.NoError(t, registry.Load(testbed.DefaultKeyframe))
	for _, p := range []math.Vec2{{X: 0.1, Y: 0.05}, {X: -0.1, Y: 0.01}, {X: 0.01, Y: -0.05}} {
		_, ok, err := registry.AddPin(testbed.DefaultKeyframe, p)
		require.NoError(t, err)
		require.True(t, ok)
	}
	registry.Select(1)
	registry.Current = 2

	settings := assets.DefaultSettings()
	o := NewOverlay(settings)
	assert.False(t, o.Visible())
	o.Update(&OverlayFrame{
		Object:   doc.Object,
		Camera:   doc.Camera,
		Viewport: doc.Viewport,
		Pins:     registry,
	})
	o.Show()
	assert.True(t, o.Visible())

	assert.Len(t, o.Wireframe.Vertices, 2*len(doc.Object.Mesh.Edges))
	assert.Len(t, o.SurfacePoints.Points, 3)
	assert.Equal(t, 3, o.Residuals.Count())
	require.Len(t, o.Pins.Points, 3)
	assert.Equal(t, []math.Colour{
		settings.Colors.Pin.Colour(),
		settings.Colors.SelectedPin.Colour(),
		settings.Colors.CurrentPin.Colour(),
	}, o.Pins.Colours)
	assert.Equal(t, settings.PinSize, o.Pins.Size)

	o.Hide()
	o.Clear()
	assert.False(t, o.Visible())
	assert.Empty(t, o.Pins.Points)
}
