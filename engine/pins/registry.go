package pins

import (
	"fmt"

	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/core"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/solver"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry caches the image positions of the active keyframe's pins so the
// viewport can draw and pick them without asking the solver on every event.
// The solver remains the owner of the pins; call Load whenever its state was
// replaced (undo, deserialization).
type Registry struct {
	solver    solver.Solver
	keyframe  int
	positions []math.Vec2
	selected  map[int]struct{}
	// Current is the pin being dragged, -1 when none.
	Current int
}

func NewRegistry(s solver.Solver) *Registry {
	return &Registry{
		solver:   s,
		keyframe: -1,
		selected: make(map[int]struct{}),
		Current:  -1,
	}
}

func (r *Registry) Solver() solver.Solver {
	return r.solver
}

func (r *Registry) Keyframe() int {
	return r.keyframe
}

// Load rebuilds the cache from the solver pins of keyframe.
func (r *Registry) Load(keyframe int) error {
	r.keyframe = keyframe
	r.positions = r.positions[:0]
	r.ClearSelection()
	r.Current = -1
	count := r.solver.PinsCount(keyframe)
	for i := 0; i < count; i++ {
		pin, err := r.solver.Pin(keyframe, i)
		if err != nil {
			return fmt.Errorf("load pin %d of keyframe %d: %w", i, keyframe, err)
		}
		r.positions = append(r.positions, pin.ImagePos)
	}
	return nil
}

// Positions returns the cached image space positions. Do not modify.
func (r *Registry) Positions() []math.Vec2 {
	return r.positions
}

func (r *Registry) Count() int {
	return len(r.positions)
}

// AddPin asks the solver for a pin under pos. ok is false when pos misses the mesh.
func (r *Registry) AddPin(keyframe int, pos math.Vec2) (int, bool, error) {
	index, ok, err := r.solver.AddPin(keyframe, pos)
	if err != nil || !ok {
		return -1, false, err
	}
	if keyframe == r.keyframe {
		pin, err := r.solver.Pin(keyframe, index)
		if err != nil {
			return -1, false, err
		}
		if index == len(r.positions) {
			r.positions = append(r.positions, pin.ImagePos)
		} else if err := r.Load(keyframe); err != nil {
			return -1, false, err
		}
	}
	core.LogDebug("pin %d added on keyframe %d at (%.4f, %.4f)", index, keyframe, pos.X, pos.Y)
	return index, true, nil
}

// MovePin stores the new position and re-solves keyframe.
func (r *Registry) MovePin(keyframe, index int, pos math.Vec2) error {
	if err := r.solver.MovePin(keyframe, index, pos); err != nil {
		return err
	}
	if keyframe == r.keyframe && index >= 0 && index < len(r.positions) {
		r.positions[index] = pos
	}
	return r.solver.SolveForCurrentPins(keyframe)
}

// RemovePin deletes a pin and re-solves while pins remain on keyframe.
func (r *Registry) RemovePin(keyframe, index int) error {
	if err := r.solver.RemovePin(keyframe, index); err != nil {
		return err
	}
	if keyframe == r.keyframe && index >= 0 && index < len(r.positions) {
		r.positions = slices.Delete(r.positions, index, index+1)
		r.shiftSelection(index)
		if r.Current == index {
			r.Current = -1
		} else if r.Current > index {
			r.Current--
		}
	}
	if r.solver.PinsCount(keyframe) == 0 {
		core.LogDebug("keyframe %d has no pins left, skipping solve", keyframe)
		return nil
	}
	return r.solver.SolveForCurrentPins(keyframe)
}

func (r *Registry) shiftSelection(removed int) {
	next := make(map[int]struct{}, len(r.selected))
	for i := range r.selected {
		switch {
		case i < removed:
			next[i] = struct{}{}
		case i > removed:
			next[i-1] = struct{}{}
		}
	}
	r.selected = next
}

// PinsInsideRectangle returns the cached pins inside the rectangle given in image space.
func (r *Registry) PinsInsideRectangle(x1, y1, x2, y2 float32) []int {
	return math.PointsInsideRectangle(r.positions, x1, y1, x2, y2)
}

func (r *Registry) Select(indices ...int) {
	for _, i := range indices {
		if i >= 0 && i < len(r.positions) {
			r.selected[i] = struct{}{}
		}
	}
}

func (r *Registry) ClearSelection() {
	maps.Clear(r.selected)
}

func (r *Registry) IsSelected(index int) bool {
	_, ok := r.selected[index]
	return ok
}

// Selected returns the selected pin indices in ascending order.
func (r *Registry) Selected() []int {
	keys := make([]int, 0, len(r.selected))
	for i := range r.selected {
		keys = append(keys, i)
	}
	slices.Sort(keys)
	return keys
}

// ClearAll removes every pin of every keyframe from the solver and the cache.
func (r *Registry) ClearAll() error {
	for _, kf := range r.solver.Keyframes() {
		for i := r.solver.PinsCount(kf) - 1; i >= 0; i-- {
			if err := r.solver.RemovePin(kf, i); err != nil {
				return err
			}
		}
	}
	r.positions = r.positions[:0]
	r.ClearSelection()
	r.Current = -1
	return nil
}

// CheckPinsOnGeometry removes pins whose surface points no longer fit mesh.
// With deepAnalyze the three vertices must also still form a polygon.
// It returns false when the mesh or the keyframe list is empty, in which
// case every pin is cleared.
func (r *Registry) CheckPinsOnGeometry(mesh *components.Mesh, deepAnalyze bool) (bool, error) {
	keyframes := r.solver.Keyframes()
	vertexCount := mesh.VertexCount()
	if vertexCount == 0 || len(keyframes) == 0 {
		if err := r.ClearAll(); err != nil {
			return false, err
		}
		return false, nil
	}

	removed := 0
	for _, kf := range keyframes {
		for i := r.solver.PinsCount(kf) - 1; i >= 0; i-- {
			pin, err := r.solver.Pin(kf, i)
			if err != nil {
				return false, err
			}
			if pinOnGeometry(pin.Surface, mesh, vertexCount, deepAnalyze) {
				continue
			}
			if err := r.solver.RemovePin(kf, i); err != nil {
				return false, err
			}
			removed++
		}
	}
	if removed > 0 {
		core.LogWarn("%d pins referenced stale geometry and were removed", removed)
	}

	if r.keyframe < 0 {
		return true, nil
	}
	if r.solver.PinsCount(r.keyframe) > 0 {
		if err := r.solver.SpringPinsBack(r.keyframe); err != nil {
			return false, err
		}
	}
	if err := r.Load(r.keyframe); err != nil {
		return false, err
	}
	return true, nil
}

func pinOnGeometry(sp solver.SurfacePoint, mesh *components.Mesh, vertexCount int, deep bool) bool {
	if !sp.Valid(vertexCount) {
		return false
	}
	if deep {
		return mesh.PolygonExists(sp.Vertices[0], sp.Vertices[1], sp.Vertices[2])
	}
	return true
}
