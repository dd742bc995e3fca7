package solver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/stretchr/testify/assert"
)

func TestSurfacePointValid(t *testing.T) {
	sp := SurfacePoint{Vertices: [3]uint32{0, 1, 2}, Weights: [3]float32{0.2, 0.3, 0.5}}
	assert.True(t, sp.Valid(3))
	assert.False(t, sp.Valid(2))

	sp.Weights = [3]float32{0.2, 0.3, 0.6}
	assert.False(t, sp.Valid(3))
}

func TestSurfacePointPosition(t *testing.T) {
	verts := []math.Vec3{{X: 0}, {X: 2}, {Y: 2}}
	sp := SurfacePoint{Vertices: [3]uint32{0, 1, 2}, Weights: [3]float32{0.5, 0.25, 0.25}}
	assert.True(t, sp.Position(verts).Compare(math.Vec3{X: 0.5, Y: 0.5}, 1e-6))
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unlicensed", NewError(KindUnlicensed, "solve", nil), KindUnlicensed},
		{"wrapped invalid argument", fmt.Errorf("move: %w", NewError(KindInvalidArgument, "move_pin", base)), KindInvalidArgument},
		{"plain error", base, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}

	assert.True(t, IsUnlicensed(NewError(KindUnlicensed, "solve", nil)))
	assert.False(t, IsUnlicensed(nil))
	assert.ErrorIs(t, NewError(KindUnknown, "solve", base), base)
	assert.Equal(t, "solver solve: unlicensed", NewError(KindUnlicensed, "solve", nil).Error())
}
