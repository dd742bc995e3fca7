package testbed

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/facetrack/engine/components"
	"github.com/spaghettifunk/facetrack/engine/math"
	"github.com/spaghettifunk/facetrack/engine/solver"
	"golang.org/x/exp/slices"
)

// solveIterations is how many translation refinements one solve performs.
const solveIterations = 4

type pinState struct {
	ImagePos math.Vec2  `toml:"image_pos"`
	Vertices [3]uint32  `toml:"vertices"`
	Weights  [3]float32 `toml:"weights"`
}

type cameraState struct {
	Width       float32     `toml:"width"`
	Height      float32     `toml:"height"`
	FocalLength float32     `toml:"focal_length"`
	SensorWidth float32     `toml:"sensor_width"`
	ClipStart   float32     `toml:"clip_start"`
	ClipEnd     float32     `toml:"clip_end"`
	ModelMatrix [16]float32 `toml:"model_matrix"`
}

type keyframeState struct {
	Keyframe int         `toml:"keyframe"`
	Camera   cameraState `toml:"camera"`
	Pins     []pinState  `toml:"pins"`
}

type modelState struct {
	Vertices  []math.Vec3     `toml:"vertices"`
	Triangles [][3]uint32     `toml:"triangles"`
	Keyframes []keyframeState `toml:"keyframes"`
}

// Solver is an in-memory solver for demos and tests. It picks pins by
// casting through the projected mesh and solves the camera translation only.
type Solver struct {
	model modelState
	// FailNext, when set, is returned by the next solve and then cleared.
	FailNext error
	// Solves counts SolveForCurrentPins calls.
	Solves int
}

func NewSolver(mesh *components.Mesh) *Solver {
	s := &Solver{}
	s.model.Vertices = append([]math.Vec3(nil), mesh.Vertices...)
	s.model.Triangles = mesh.Triangles()
	return s
}

// AddKeyframe registers camera under its keyframe. The camera model matrix
// is taken relative to the tracked object.
func (s *Solver) AddKeyframe(camera *components.CameraFrame) {
	w, h := camera.FrameSize()
	kf := keyframeState{
		Keyframe: camera.Keyframe,
		Camera: cameraState{
			Width:       w,
			Height:      h,
			FocalLength: camera.FocalLength,
			SensorWidth: camera.SensorWidth,
			ClipStart:   camera.ClipStart,
			ClipEnd:     camera.ClipEnd,
			ModelMatrix: camera.ModelMatrix.Data,
		},
	}
	if existing := s.find(camera.Keyframe); existing != nil {
		*existing = kf
		return
	}
	s.model.Keyframes = append(s.model.Keyframes, kf)
	slices.SortFunc(s.model.Keyframes, func(a, b keyframeState) int {
		return a.Keyframe - b.Keyframe
	})
}

// InjectPin appends a pin without any validation.
func (s *Solver) InjectPin(keyframe int, pin solver.Pin) error {
	kf := s.find(keyframe)
	if kf == nil {
		return solver.NewError(solver.KindInvalidArgument, "inject_pin", fmt.Errorf("no keyframe %d", keyframe))
	}
	kf.Pins = append(kf.Pins, pinState{ImagePos: pin.ImagePos, Vertices: pin.Surface.Vertices, Weights: pin.Surface.Weights})
	return nil
}

// SetVertices replaces the reconstructed mesh.
func (s *Solver) SetVertices(vertices []math.Vec3) {
	s.model.Vertices = append([]math.Vec3(nil), vertices...)
}

func (s *Solver) find(keyframe int) *keyframeState {
	for i := range s.model.Keyframes {
		if s.model.Keyframes[i].Keyframe == keyframe {
			return &s.model.Keyframes[i]
		}
	}
	return nil
}

func (s *Solver) keyframe(op string, keyframe int) (*keyframeState, error) {
	kf := s.find(keyframe)
	if kf == nil {
		return nil, solver.NewError(solver.KindInvalidArgument, op, fmt.Errorf("no keyframe %d", keyframe))
	}
	return kf, nil
}

func (s *Solver) pin(op string, keyframe, index int) (*keyframeState, error) {
	kf, err := s.keyframe(op, keyframe)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(kf.Pins) {
		return nil, solver.NewError(solver.KindInvalidArgument, op, fmt.Errorf("no pin %d on keyframe %d", index, keyframe))
	}
	return kf, nil
}

func (c cameraState) modelMatrix() math.Mat4 {
	return math.Mat4{Data: c.ModelMatrix}
}

func (c cameraState) scaleFactor() float32 {
	return math.CompensateViewScale(c.Width, c.Height) * c.FocalLength / c.SensorWidth
}

func (c cameraState) objectToFrame() math.Mat4 {
	proj := math.ProjectionMatrix(c.Width, c.Height, c.FocalLength, c.SensorWidth,
		c.ClipStart, c.ClipEnd, math.CompensateViewScale(c.Width, c.Height))
	return c.modelMatrix().Inverse().Mul(proj)
}

func (c cameraState) project(p math.Vec3) math.Vec2 {
	f := math.ProjectPoints([]math.Vec3{p}, c.objectToFrame())[0]
	x, y := math.FrameToImageSpace(f.X, f.Y, c.Width, c.Height)
	return math.NewVec2(x, y)
}

func (s *Solver) AddPin(keyframe int, pos math.Vec2) (int, bool, error) {
	kf, err := s.keyframe("add_pin", keyframe)
	if err != nil {
		return -1, false, err
	}

	view := kf.Camera.modelMatrix().Inverse()
	toFrame := kf.Camera.objectToFrame()
	projected := math.ProjectPoints(s.model.Vertices, toFrame)
	image := make([]math.Vec2, len(projected))
	depth := make([]float32, len(projected))
	for i, p := range projected {
		x, y := math.FrameToImageSpace(p.X, p.Y, kf.Camera.Width, kf.Camera.Height)
		image[i] = math.NewVec2(x, y)
		depth[i] = -s.model.Vertices[i].Transform(view).Z
	}

	best := -1
	bestDepth := float32(0)
	var bestWeights math.Vec3
	for ti, tri := range s.model.Triangles {
		if depth[tri[0]] <= 0 || depth[tri[1]] <= 0 || depth[tri[2]] <= 0 {
			continue
		}
		w, inside := math.Barycentric2D(pos, image[tri[0]], image[tri[1]], image[tri[2]])
		if !inside {
			continue
		}
		d := w.X*depth[tri[0]] + w.Y*depth[tri[1]] + w.Z*depth[tri[2]]
		if best < 0 || d < bestDepth {
			best, bestDepth, bestWeights = ti, d, w
		}
	}
	if best < 0 {
		return -1, false, nil
	}

	kf.Pins = append(kf.Pins, pinState{
		ImagePos: pos,
		Vertices: s.model.Triangles[best],
		Weights:  [3]float32{bestWeights.X, bestWeights.Y, bestWeights.Z},
	})
	return len(kf.Pins) - 1, true, nil
}

func (s *Solver) MovePin(keyframe int, index int, pos math.Vec2) error {
	kf, err := s.pin("move_pin", keyframe, index)
	if err != nil {
		return err
	}
	kf.Pins[index].ImagePos = pos
	return nil
}

func (s *Solver) RemovePin(keyframe int, index int) error {
	kf, err := s.pin("remove_pin", keyframe, index)
	if err != nil {
		return err
	}
	kf.Pins = append(kf.Pins[:index], kf.Pins[index+1:]...)
	return nil
}

func (s *Solver) PinsCount(keyframe int) int {
	kf := s.find(keyframe)
	if kf == nil {
		return 0
	}
	return len(kf.Pins)
}

func (s *Solver) Pin(keyframe int, index int) (solver.Pin, error) {
	kf, err := s.pin("pin", keyframe, index)
	if err != nil {
		return solver.Pin{}, err
	}
	p := kf.Pins[index]
	return solver.Pin{
		ImagePos: p.ImagePos,
		Surface:  solver.SurfacePoint{Vertices: p.Vertices, Weights: p.Weights},
	}, nil
}

func (s *Solver) surface(p pinState) (math.Vec3, bool) {
	sp := solver.SurfacePoint{Vertices: p.Vertices, Weights: p.Weights}
	if !sp.Valid(len(s.model.Vertices)) {
		return math.Vec3{}, false
	}
	return sp.Position(s.model.Vertices), true
}

// SolveForCurrentPins moves the camera in its image plane so the mean
// reprojection error of the pins goes to zero.
func (s *Solver) SolveForCurrentPins(keyframe int) error {
	s.Solves++
	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return err
	}
	kf, err := s.keyframe("solve", keyframe)
	if err != nil {
		return err
	}
	if len(kf.Pins) == 0 {
		return solver.NewError(solver.KindInvalidArgument, "solve", fmt.Errorf("keyframe %d has no pins", keyframe))
	}

	k := kf.Camera.scaleFactor()
	for iter := 0; iter < solveIterations; iter++ {
		model := kf.Camera.modelMatrix()
		view := model.Inverse()
		var dx, dy float32
		n := 0
		for _, p := range kf.Pins {
			pos, ok := s.surface(p)
			if !ok {
				continue
			}
			r := kf.Camera.project(pos)
			d := -pos.Transform(view).Z
			dx += (p.ImagePos.X - r.X) * d / k
			dy += (p.ImagePos.Y - r.Y) * d / k
			n++
		}
		if n == 0 {
			return solver.NewError(solver.KindInvalidArgument, "solve", fmt.Errorf("keyframe %d has no valid pins", keyframe))
		}
		dx /= float32(n)
		dy /= float32(n)

		right := math.NewVec3(model.Data[0], model.Data[1], model.Data[2])
		up := math.NewVec3(model.Data[4], model.Data[5], model.Data[6])
		shift := right.MulScalar(-dx).Add(up.MulScalar(-dy))
		kf.Camera.ModelMatrix[12] += shift.X
		kf.Camera.ModelMatrix[13] += shift.Y
		kf.Camera.ModelMatrix[14] += shift.Z
	}
	return nil
}

func (s *Solver) SpringPinsBack(keyframe int) error {
	kf, err := s.keyframe("spring_pins_back", keyframe)
	if err != nil {
		return err
	}
	for i, p := range kf.Pins {
		pos, ok := s.surface(p)
		if !ok {
			continue
		}
		kf.Pins[i].ImagePos = kf.Camera.project(pos)
	}
	return nil
}

// Reprojection returns where the surface point of a pin lands in image space.
func (s *Solver) Reprojection(keyframe, index int) (math.Vec2, error) {
	kf, err := s.pin("reprojection", keyframe, index)
	if err != nil {
		return math.Vec2{}, err
	}
	pos, ok := s.surface(kf.Pins[index])
	if !ok {
		return math.Vec2{}, solver.NewError(solver.KindInvalidArgument, "reprojection", fmt.Errorf("pin %d is off the mesh", index))
	}
	return kf.Camera.project(pos), nil
}

// normalize makes empty and missing lists encode alike, so equal models
// serialize to equal strings.
func (s *Solver) normalize() {
	if s.model.Keyframes == nil {
		s.model.Keyframes = []keyframeState{}
	}
	for i := range s.model.Keyframes {
		if s.model.Keyframes[i].Pins == nil {
			s.model.Keyframes[i].Pins = []pinState{}
		}
	}
}

func (s *Solver) Serialize() (string, error) {
	s.normalize()
	b, err := toml.Marshal(s.model)
	if err != nil {
		return "", solver.NewError(solver.KindUnknown, "serialize", err)
	}
	return string(b), nil
}

func (s *Solver) Deserialize(state string) error {
	var m modelState
	if err := toml.Unmarshal([]byte(state), &m); err != nil {
		return solver.NewError(solver.KindInvalidArgument, "deserialize", err)
	}
	s.model = m
	s.normalize()
	return nil
}

func (s *Solver) Keyframes() []int {
	out := make([]int, 0, len(s.model.Keyframes))
	for _, kf := range s.model.Keyframes {
		out = append(out, kf.Keyframe)
	}
	return out
}

func (s *Solver) VertexCount() int {
	return len(s.model.Vertices)
}

func (s *Solver) Vertices() []math.Vec3 {
	return s.model.Vertices
}

func (s *Solver) ModelMatrix(keyframe int) math.Mat4 {
	kf := s.find(keyframe)
	if kf == nil {
		return math.NewMat4Identity()
	}
	return kf.Camera.modelMatrix()
}
