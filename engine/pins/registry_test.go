package pins

import (
	"testing"

	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/solver"
	"github.com/spaghettifunk/facetrack/testbed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kf = testbed.DefaultKeyframe

func newRegistry(t *testing.T) (*Registry, *testbed.Document) {
	t.Helper()
	doc := testbed.NewDocument()
	r := NewRegistry(doc.Solver)
	require.NoError(t, r.Load(kf))
	return r, doc
}

func TestRegistryAddPin(t *testing.T) {
	r, _ := newRegistry(t)

	idx, ok, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, math.NewVec2(0.1, 0.05), r.Positions()[0])

	// far outside the 2x2 grid
	idx, ok, err = r.AddPin(kf, math.NewVec2(0.45, 0.25))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryMovePinSolves(t *testing.T) {
	r, doc := newRegistry(t)
	_, ok, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.MovePin(kf, 0, math.NewVec2(0.12, 0.05)))
	assert.Equal(t, math.NewVec2(0.12, 0.05), r.Positions()[0])
	assert.Equal(t, 1, doc.Solver.Solves)

	reproj, err := doc.Solver.Reprojection(kf, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, reproj.X, 1e-4)
	assert.InDelta(t, 0.05, reproj.Y, 1e-4)

	err = r.MovePin(kf, 5, math.NewVec2(0, 0))
	assert.Equal(t, solver.KindInvalidArgument, solver.KindOf(err))
}

func TestRegistryRemovePin(t *testing.T) {
	r, doc := newRegistry(t)
	for _, p := range []math.Vec2{{X: 0.1, Y: 0.05}, {X: -0.1, Y: 0.01}, {X: 0.01, Y: -0.05}} {
		_, ok, err := r.AddPin(kf, p)
		require.NoError(t, err)
		require.True(t, ok)
	}
	r.Select(0, 2)
	r.Current = 2

	require.NoError(t, r.RemovePin(kf, 1))
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []int{0, 1}, r.Selected())
	assert.Equal(t, 1, r.Current)
	assert.Equal(t, 1, doc.Solver.Solves)

	require.NoError(t, r.RemovePin(kf, 0))
	require.NoError(t, r.RemovePin(kf, 0))
	assert.Equal(t, 0, r.Count())
	// the last removal leaves nothing to solve for
	assert.Equal(t, 2, doc.Solver.Solves)
	assert.Equal(t, -1, r.Current)
}

func TestRegistryPinsInsideRectangle(t *testing.T) {
	r, _ := newRegistry(t)
	for _, p := range []math.Vec2{{X: 0.1, Y: 0.05}, {X: -0.1, Y: 0.01}, {X: 0.01, Y: -0.05}} {
		_, _, err := r.AddPin(kf, p)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2}, r.PinsInsideRectangle(0.02, 0.02, -0.2, -0.1))
	assert.Empty(t, r.PinsInsideRectangle(0.3, 0.3, 0.4, 0.4))
}

func TestRegistrySelection(t *testing.T) {
	r, _ := newRegistry(t)
	_, _, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)

	r.Select(0, 7)
	assert.True(t, r.IsSelected(0))
	assert.False(t, r.IsSelected(7))
	r.ClearSelection()
	assert.Empty(t, r.Selected())
}

func TestCheckPinsOnGeometryPrunesStaleTopology(t *testing.T) {
	mesh := testbed.NewGridMesh(9, 2)
	require.Equal(t, 100, mesh.VertexCount())

	camera := components.NewCameraFrame(kf)
	camera.ImageWidth, camera.ImageHeight = 1920, 1080
	camera.ModelMatrix = math.NewMat4Translation(math.NewVec3(0, 0, 10))
	s := testbed.NewSolver(mesh)
	s.AddKeyframe(camera)

	r := NewRegistry(s)
	require.NoError(t, r.Load(kf))
	_, ok, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.InjectPin(kf, solver.Pin{
		ImagePos: math.NewVec2(0, 0),
		Surface: solver.SurfacePoint{
			Vertices: [3]uint32{0, 1, 150},
			Weights:  [3]float32{0.2, 0.3, 0.5},
		},
	}))
	// drift the valid pin away from its surface point
	require.NoError(t, s.MovePin(kf, 0, math.NewVec2(0.3, 0.3)))
	require.NoError(t, r.Load(kf))
	require.Equal(t, 2, r.Count())

	ok, err = r.CheckPinsOnGeometry(mesh, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.PinsCount(kf))
	require.Equal(t, 1, r.Count())

	// sprung back onto its reprojection
	assert.InDelta(t, 0.1, r.Positions()[0].X, 1e-4)
	assert.InDelta(t, 0.05, r.Positions()[0].Y, 1e-4)
}

func TestCheckPinsOnGeometryDeepAnalyze(t *testing.T) {
	r, doc := newRegistry(t)
	_, ok, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)
	require.True(t, ok)
	// valid indices that never share a polygon
	require.NoError(t, doc.Solver.InjectPin(kf, solver.Pin{
		Surface: solver.SurfacePoint{
			Vertices: [3]uint32{0, 60, 120},
			Weights:  [3]float32{0.3, 0.3, 0.4},
		},
	}))

	ok, err = r.CheckPinsOnGeometry(doc.Object.Mesh, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, doc.Solver.PinsCount(kf))

	ok, err = r.CheckPinsOnGeometry(doc.Object.Mesh, true)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 1, doc.Solver.PinsCount(kf))

	mesh := doc.Object.Mesh
	for i := 0; i < doc.Solver.PinsCount(kf); i++ {
		pin, err := doc.Solver.Pin(kf, i)
		require.NoError(t, err)
		v := pin.Surface.Vertices
		assert.Less(t, int(v[0]), mesh.VertexCount())
		assert.Less(t, int(v[1]), mesh.VertexCount())
		assert.Less(t, int(v[2]), mesh.VertexCount())
		assert.True(t, mesh.PolygonExists(v[0], v[1], v[2]))
	}
}

func TestCheckPinsOnGeometryEmptyMesh(t *testing.T) {
	r, doc := newRegistry(t)
	_, _, err := r.AddPin(kf, math.NewVec2(0.1, 0.05))
	require.NoError(t, err)

	ok, err := r.CheckPinsOnGeometry(&components.Mesh{}, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, doc.Solver.PinsCount(kf))
	assert.Equal(t, 0, r.Count())
}
