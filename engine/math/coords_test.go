package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSpaceRoundTrip(t *testing.T) {
	sizes := [][2]float32{{1920, 1080}, {1080, 1920}, {640, 480}, {1, 1}, {4000, 3}}
	points := []Vec2{{0, 0}, {0.1, 0.05}, {-0.5, -0.28125}, {0.5, 0.5}, {-0.37, 0.91}}

	for _, s := range sizes {
		for _, p := range points {
			px, py := ImageSpaceToFrame(p.X, p.Y, s[0], s[1])
			x, y := FrameToImageSpace(px, py, s[0], s[1])
			assert.InDelta(t, p.X, x, 1e-4, "x for %v in %v", p, s)
			assert.InDelta(t, p.Y, y, 1e-4, "y for %v in %v", p, s)
		}
	}
}

func TestImageSpaceToFrameScalesBothAxesByWidth(t *testing.T) {
	px, py := ImageSpaceToFrame(0.1, 0.05, 1920, 1080)
	assert.InDelta(t, 1152.0, px, 1e-3)
	assert.InDelta(t, 0.05*1920+540, py, 1e-3)

	cx, cy := ImageSpaceToFrame(0, 0, 1920, 1080)
	assert.Equal(t, float32(960), cx)
	assert.Equal(t, float32(540), cy)
}

func TestFrameToImageSpaceZeroWidth(t *testing.T) {
	x, y := FrameToImageSpace(3, 4, 0, 2)
	assert.Equal(t, float32(2.5), x)
	assert.Equal(t, float32(3), y)
}

func TestRegionRoundTrip(t *testing.T) {
	border := Extents2D{Min: Vec2{250, 259.375}, Max: Vec2{750, 540.625}}
	rx, ry := ImageSpaceToRegion(0.1, 0.05, border)
	assert.InDelta(t, 550.0, rx, 1e-3)
	assert.InDelta(t, 425.0, ry, 1e-3)

	x, y := RegionToImageSpace(rx, ry, border)
	assert.InDelta(t, 0.1, x, 1e-5)
	assert.InDelta(t, 0.05, y, 1e-5)

	assert.InDelta(t, 1.0/500.0, PixelRelativeSize(border), 1e-7)
	assert.Equal(t, float32(1), PixelRelativeSize(Extents2D{}))
}

func TestProjectionMatrixDeterministic(t *testing.T) {
	a := ProjectionMatrix(1920, 1080, 50, 36, 0.1, 1000, 1)
	b := ProjectionMatrix(1920, 1080, 50, 36, 0.1, 1000, 1)
	assert.Equal(t, a.Data, b.Data)
}

func TestProjectionMatrixMapsOpticalAxisToFrameCentre(t *testing.T) {
	proj := ProjectionMatrix(1920, 1080, 50, 36, 0.1, 1000, 1)
	pts := ProjectPoints([]Vec3{{0, 0, -10}, {1, 0, -10}}, proj)
	require.Len(t, pts, 2)
	assert.InDelta(t, 960.0, pts[0].X, 1e-2)
	assert.InDelta(t, 540.0, pts[0].Y, 1e-2)

	// one unit sideways at depth 10 moves by focal_px / 10 pixels
	focalPx := float32(1920 * 50.0 / 36.0)
	assert.InDelta(t, 960.0+focalPx/10, pts[1].X, 1e-1)
}

func TestCompensateViewScale(t *testing.T) {
	assert.Equal(t, float32(1), CompensateViewScale(1920, 1080))
	assert.Equal(t, float32(1), CompensateViewScale(0, 1080))
	assert.InDelta(t, 1920.0/1080.0, CompensateViewScale(1080, 1920), 1e-6)
}

func TestCameraBorder(t *testing.T) {
	t.Run("landscape frame in landscape view", func(t *testing.T) {
		b := CameraBorder(1000, 800, 1920, 1080, 0, 0, 0)
		ky := float32(0.5 * 1.25 / (1920.0 / 1080.0))
		assert.InDelta(t, 250.0, b.Min.X, 1e-3)
		assert.InDelta(t, 750.0, b.Max.X, 1e-3)
		assert.InDelta(t, 400-ky*400, b.Min.Y, 1e-3)
		assert.InDelta(t, 400+ky*400, b.Max.Y, 1e-3)
		assert.InDelta(t, 259.375, b.Min.Y, 1e-3)
		assert.InDelta(t, 540.625, b.Max.Y, 1e-3)
	})
	t.Run("portrait frame in landscape view", func(t *testing.T) {
		b := CameraBorder(1000, 800, 1080, 1920, 0, 0, 0)
		assert.InDelta(t, 500-0.5*0.5625*500, b.Min.X, 1e-2)
		assert.InDelta(t, 500.0, b.Height(), 1e-2)
	})
	t.Run("portrait frame in portrait view", func(t *testing.T) {
		b := CameraBorder(800, 1000, 1080, 1920, 0, 0, 0)
		assert.InDelta(t, 500.0, b.Height(), 1e-2)
		assert.InDelta(t, 500.0*0.5625, b.Width(), 1e-2)
	})
	t.Run("landscape frame in portrait view", func(t *testing.T) {
		b := CameraBorder(800, 1000, 1920, 1080, 0, 0, 0)
		assert.InDelta(t, 500.0, b.Width(), 1e-2)
		assert.InDelta(t, 500.0*1080.0/1920.0, b.Height(), 1e-2)
	})
	t.Run("offset and zoom", func(t *testing.T) {
		b := CameraBorder(1000, 800, 1920, 1080, 30, 0.1, -0.05)
		f := CameraZoomFactor(30)
		assert.InDelta(t, f*1000, b.Width(), 1e-2)
		assert.InDelta(t, 500-f*500-0.1*1000*2*f, b.Min.X, 1e-2)
		assert.InDelta(t, 400-b.Height()/2+0.05*800*2*f, b.Min.Y, 1e-2)
	})
	t.Run("zero render size does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() { CameraBorder(1000, 0, 0, 0, 0, 0, 0) })
	})
}

func TestCameraZoomFactor(t *testing.T) {
	assert.InDelta(t, 0.5, CameraZoomFactor(0), 1e-6)
}

func TestNearestPoint(t *testing.T) {
	points := []Vec2{{0, 0}, {10, 0}, {3, 4}}

	tests := []struct {
		name      string
		x, y      float32
		max       float32
		wantIndex int
		wantDist  float32
	}{
		{"closest inside", 2, 3, 100, 2, 2},
		{"first point", 0.5, 0, 100, 0, 0.25},
		{"none within threshold", 50, 50, 4, -1, 4},
		{"threshold is exclusive", 0, 2, 4, -1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, d := NearestPoint(tt.x, tt.y, points, tt.max)
			assert.Equal(t, tt.wantIndex, i)
			assert.InDelta(t, tt.wantDist, d, 1e-6)
		})
	}

	i, d := NearestPoint(1, 1, nil, 10)
	assert.Equal(t, -1, i)
	assert.Equal(t, float32(10), d)
}

func TestPointsInsideRectangle(t *testing.T) {
	points := []Vec2{{0, 0}, {1, 1}, {2, 2}, {-1, 0.5}}
	assert.Equal(t, []int{0, 1}, PointsInsideRectangle(points, 1.5, 1.5, -0.5, -0.5))
	assert.Equal(t, []int{}, PointsInsideRectangle(points, 5, 5, 6, 6))
}

func TestBarycentric(t *testing.T) {
	w, ok := Barycentric2D(Vec2{0.25, 0.25}, Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 1})
	require.True(t, ok)
	assert.InDelta(t, 1.0, w.X+w.Y+w.Z, 1e-6)
	assert.InDelta(t, 0.5, w.X, 1e-6)

	_, ok = Barycentric2D(Vec2{1, 1}, Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 1})
	assert.False(t, ok)

	_, ok = Barycentric2D(Vec2{0, 0}, Vec2{0, 0}, Vec2{1, 1}, Vec2{2, 2})
	assert.False(t, ok)

	p := BarycentricPoint(Vec3{0, 0, 0}, Vec3{2, 0, 0}, Vec3{0, 2, 0}, [3]float32{0.5, 0.25, 0.25})
	assert.True(t, p.Compare(Vec3{0.5, 0.5, 0}, 1e-6))
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4EulerXYZ(0.3, -0.2, 0.7).Mul(NewMat4Translation(Vec3{1, 2, 3}))
	id := m.Mul(m.Inverse())
	assert.True(t, id.Compare(NewMat4Identity(), 1e-5))

	p := Vec3{4, 5, 6}
	back := p.Transform(m).Transform(m.Inverse())
	assert.True(t, back.Compare(p, 1e-4))
}

func TestTransformWorld(t *testing.T) {
	parent := TransformFromPosition(Vec3{0, 0, 5})
	child := TransformFromPositionRotationScale(Vec3{1, 0, 0}, NewVec3Zero(), Vec3{2, 2, 2})
	child.Parent = parent

	p := Vec3{1, 0, 0}.Transform(child.GetWorld())
	assert.True(t, p.Compare(Vec3{3, 0, 5}, 1e-6))
}
