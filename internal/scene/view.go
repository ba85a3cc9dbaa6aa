package scene

import "github.com/Faultbox/plyview/pkg/math"

// Default view parameters.
const (
	DefaultYaw   = 20
	DefaultPitch = 30
)

// DefaultViewPosition places the viewer five units in front of the model.
var DefaultViewPosition = math.Vec3{Z: 5}

// View holds the user-controlled viewpoint. Angles are in degrees.
type View struct {
	Yaw      float32
	Pitch    float32
	Position math.Vec3
}

// DefaultView returns the initial viewpoint.
func DefaultView() View {
	return View{Yaw: DefaultYaw, Pitch: DefaultPitch, Position: DefaultViewPosition}
}

// Reset restores the initial viewpoint.
func (v *View) Reset() {
	*v = DefaultView()
}

// Matrix returns the model-view transform: the model is rotated by yaw
// around Y, then by pitch around X, then moved away from the eye.
func (v View) Matrix() math.Mat4 {
	p := v.Position
	return math.Translate(-p.X, p.Y, -p.Z).
		Mul(math.RotateX(math.Radians(v.Pitch))).
		Mul(math.RotateY(math.Radians(v.Yaw)))
}

// MotionMode is what a mouse drag currently does to the view.
type MotionMode int

const (
	MotionNone MotionMode = iota
	MotionRotate
	MotionTranslate
	MotionZoom
)

func (m MotionMode) String() string {
	switch m {
	case MotionRotate:
		return "rotate"
	case MotionTranslate:
		return "translate"
	case MotionZoom:
		return "zoom"
	default:
		return "none"
	}
}

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Drag sensitivities.
const (
	panPixelsPerUnit  = 100
	zoomPixelsPerUnit = 10
)

// MouseDown starts a drag. Left rotates, middle pans and right zooms; any
// other button cancels the current drag.
func (s *State) MouseDown(b Button, x, y int) {
	switch b {
	case ButtonLeft:
		s.mode = MotionRotate
	case ButtonMiddle:
		s.mode = MotionTranslate
	case ButtonRight:
		s.mode = MotionZoom
	default:
		s.mode = MotionNone
		return
	}
	s.startX, s.startY = x, y
}

// MouseUp ends the current drag.
func (s *State) MouseUp() {
	s.mode = MotionNone
}

// MouseMove updates the view for the pointer moving to (x, y).
// Rotation is one degree per pixel.
func (s *State) MouseMove(x, y int) {
	dx := float32(x - s.startX)
	dy := float32(y - s.startY)

	switch s.mode {
	case MotionNone:
		return
	case MotionRotate:
		s.View.Yaw += dx
		s.View.Pitch += dy
	case MotionTranslate:
		s.View.Position.X -= dx / panPixelsPerUnit
		s.View.Position.Y -= dy / panPixelsPerUnit
	case MotionZoom:
		s.View.Position.Z -= dy / zoomPixelsPerUnit
	}
	s.startX, s.startY = x, y
}

// Mode returns the current drag mode.
func (s *State) Mode() MotionMode {
	return s.mode
}
