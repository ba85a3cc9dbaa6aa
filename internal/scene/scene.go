// Package scene holds the interactive viewer state: viewpoint, drag mode,
// lighting parameters and the software lighting switch. It turns input into
// mesh operations and produces the per-frame values the lighting pass needs.
package scene

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/lighting"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/pkg/math"
)

// Projection parameters.
const (
	FieldOfView = 45 // degrees
	NearPlane   = 0.1
	FarPlane    = 50
)

// State is the single owner of everything that changes between frames
// apart from the mesh itself.
type State struct {
	View View

	// Params holds the light in world space. Frame converts it.
	Params lighting.Params

	SoftwareLighting bool

	mode           MotionMode
	startX, startY int

	rng *rand.Rand
	log *zap.Logger
}

// New creates a scene state with the default view. A nil rng gets a
// randomly seeded generator.
func New(params lighting.Params, softwareLighting bool, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &State{
		View:             DefaultView(),
		Params:           params,
		SoftwareLighting: softwareLighting,
		rng:              rng,
		log:              logger.Named("scene"),
	}
}

// FrameContext carries the per-frame inputs of the lighting pass.
type FrameContext struct {
	View math.Mat4

	// Params has the light position in eye space and the viewer at the
	// eye-space origin.
	Params lighting.Params

	SoftwareLighting bool
}

// LightEyePosition returns the light position in eye space.
func (f FrameContext) LightEyePosition() math.Vec3 {
	return f.Params.Light.Position
}

// Frame snapshots the state for the next frame.
func (s *State) Frame() FrameContext {
	view := s.View.Matrix()

	p := s.Params
	p.Light.Position = view.TransformVec3(s.Params.Light.Position)
	p.Viewer = math.Vec3{}

	return FrameContext{
		View:             view,
		Params:           p,
		SoftwareLighting: s.SoftwareLighting,
	}
}

// Apply builds the frame context and, when software lighting is on,
// recolors m for it.
func (s *State) Apply(m *mesh.Mesh) FrameContext {
	f := s.Frame()
	if f.SoftwareLighting {
		lighting.Illuminate(m, f.View, f.Params)
	}
	return f
}

// Projection returns the perspective projection for the given aspect ratio.
func Projection(aspect float32) math.Mat4 {
	return math.Perspective(math.Radians(FieldOfView), aspect, NearPlane, FarPlane)
}
