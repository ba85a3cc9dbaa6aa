package scene

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/plyview/internal/lighting"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/pkg/math"
)

const square = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`

func loadSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Load(strings.NewReader(square))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m
}

func newState(software bool) *State {
	return New(lighting.DefaultParams(), software, rand.New(rand.NewPCG(7, 11)))
}

func approxVec(a, b math.Vec3) bool {
	d := a.Sub(b)
	return d.X < 1e-5 && d.X > -1e-5 && d.Y < 1e-5 && d.Y > -1e-5 && d.Z < 1e-5 && d.Z > -1e-5
}

func TestViewMatrix(t *testing.T) {
	tests := []struct {
		name  string
		view  View
		point math.Vec3
		want  math.Vec3
	}{
		{"zero view", View{}, math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{X: 1, Y: 2, Z: 3}},
		{"default view moves origin back", DefaultView(), math.Vec3{}, math.Vec3{Z: -5}},
		{"yaw 90", View{Yaw: 90, Position: math.Vec3{Z: 5}}, math.Vec3{X: 1}, math.Vec3{Z: -6}},
		{"pitch 90", View{Pitch: 90}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
		{"pan", View{Position: math.Vec3{X: 1, Y: 2}}, math.Vec3{}, math.Vec3{X: -1, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.view.Matrix().TransformVec3(tt.point)
			if !approxVec(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMouseDrag(t *testing.T) {
	tests := []struct {
		name   string
		button Button
		from   [2]int
		to     [2]int
		want   View
	}{
		{
			name:   "rotate",
			button: ButtonLeft,
			from:   [2]int{10, 10},
			to:     [2]int{15, 7},
			want:   View{Yaw: 25, Pitch: 27, Position: DefaultViewPosition},
		},
		{
			name:   "pan",
			button: ButtonMiddle,
			from:   [2]int{0, 0},
			to:     [2]int{50, -100},
			want:   View{Yaw: DefaultYaw, Pitch: DefaultPitch, Position: math.Vec3{X: -0.5, Y: 1, Z: 5}},
		},
		{
			name:   "zoom",
			button: ButtonRight,
			from:   [2]int{0, 0},
			to:     [2]int{40, 20},
			want:   View{Yaw: DefaultYaw, Pitch: DefaultPitch, Position: math.Vec3{Z: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(false)
			s.MouseDown(tt.button, tt.from[0], tt.from[1])
			s.MouseMove(tt.to[0], tt.to[1])

			if s.View.Yaw != tt.want.Yaw || s.View.Pitch != tt.want.Pitch || !approxVec(s.View.Position, tt.want.Position) {
				t.Errorf("got %+v, want %+v", s.View, tt.want)
			}
		})
	}
}

func TestMouseDragIsIncremental(t *testing.T) {
	s := newState(false)
	s.MouseDown(ButtonLeft, 0, 0)
	s.MouseMove(5, 0)
	s.MouseMove(8, 0)

	if s.View.Yaw != DefaultYaw+8 {
		t.Errorf("yaw: got %v, want %v", s.View.Yaw, DefaultYaw+8)
	}

	s.MouseUp()
	if s.Mode() != MotionNone {
		t.Errorf("mode after release: got %v, want none", s.Mode())
	}
	s.MouseMove(100, 100)
	if s.View.Yaw != DefaultYaw+8 || s.View.Pitch != DefaultPitch {
		t.Errorf("view changed without a drag: %+v", s.View)
	}
}

func TestMouseDownUnknownButton(t *testing.T) {
	s := newState(false)
	s.MouseDown(ButtonRight, 0, 0)
	s.MouseDown(Button(9), 0, 0)

	if s.Mode() != MotionNone {
		t.Errorf("got %v, want none", s.Mode())
	}
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		key  rune
		want Action
	}{
		{'q', ActionQuit},
		{'Q', ActionQuit},
		{KeyEscape, ActionQuit},
		{'+', ActionInflate},
		{'-', ActionShrink},
		{'d', ActionDance},
		{'i', ActionInvert},
		{'I', ActionInvert},
		{'l', ActionToggleLighting},
		{'r', ActionResetView},
		{'h', ActionHelp},
		{'t', ActionNone},
		{'x', ActionNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			s := newState(false)
			if got := s.HandleKey(tt.key); got != tt.want {
				t.Errorf("HandleKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestHandleKeyStateActions(t *testing.T) {
	s := newState(false)

	s.HandleKey('l')
	if !s.SoftwareLighting {
		t.Error("first toggle should enable software lighting")
	}
	s.HandleKey('L')
	if s.SoftwareLighting {
		t.Error("second toggle should disable software lighting")
	}

	s.View = View{Yaw: 1, Pitch: 2, Position: math.Vec3{X: 3}}
	s.HandleKey('r')
	if s.View != DefaultView() {
		t.Errorf("view after reset: got %+v, want %+v", s.View, DefaultView())
	}
}

func TestPerform(t *testing.T) {
	t.Run("inflate and shrink", func(t *testing.T) {
		s := newState(false)
		m := loadSquare(t)

		if !s.Perform(ActionInflate, m) {
			t.Fatal("inflate should report a geometry change")
		}
		if z := m.Vertices[0].Z; z < 0.0099 || z > 0.0101 {
			t.Errorf("z after inflate: %f", z)
		}
		s.Perform(ActionShrink, m)
		if z := m.Vertices[0].Z; z < -1e-6 || z > 1e-6 {
			t.Errorf("z after shrink: %f", z)
		}
	})

	t.Run("dance moves every vertex alike", func(t *testing.T) {
		s := newState(false)
		m := loadSquare(t)
		before := m.Clone()

		s.Perform(ActionDance, m)

		offset := m.Vertices[0].Sub(before.Vertices[0])
		for i, v := range m.Vertices {
			if !approxVec(v.Sub(before.Vertices[i]), offset) {
				t.Errorf("vertex %d moved by %v, want %v", i, v.Sub(before.Vertices[i]), offset)
			}
		}
		for _, c := range offset.Array() {
			if c < -DanceLimit || c >= DanceLimit {
				t.Errorf("offset %v outside the dance range", offset)
			}
		}
	})

	t.Run("invert", func(t *testing.T) {
		s := newState(false)
		m := loadSquare(t)

		s.Perform(ActionInvert, m)
		if !approxVec(m.Normals[0], math.Vec3{Z: -1}) {
			t.Errorf("normal after invert: %v", m.Normals[0])
		}
	})

	t.Run("non-mesh actions", func(t *testing.T) {
		s := newState(false)
		m := loadSquare(t)
		before := m.Clone()

		for _, a := range []Action{ActionNone, ActionQuit, ActionHelp, ActionResetView, ActionToggleLighting} {
			if s.Perform(a, m) {
				t.Errorf("%v reported a geometry change", a)
			}
		}
		if !reflect.DeepEqual(m, before) {
			t.Error("mesh changed")
		}
	})
}

func TestFrame(t *testing.T) {
	s := newState(true)
	world := s.Params.Light.Position

	f := s.Frame()

	if f.View != s.View.Matrix() {
		t.Error("frame view does not match the state view")
	}
	if want := f.View.TransformVec3(world); f.LightEyePosition() != want {
		t.Errorf("light eye position: got %v, want %v", f.LightEyePosition(), want)
	}
	if f.Params.Viewer != (math.Vec3{}) {
		t.Errorf("viewer: got %v, want origin", f.Params.Viewer)
	}
	if s.Params.Light.Position != world {
		t.Error("Frame modified the world light position")
	}
	if !f.SoftwareLighting {
		t.Error("software lighting flag lost")
	}
}

func TestApply(t *testing.T) {
	t.Run("hardware lighting leaves colors", func(t *testing.T) {
		s := newState(false)
		m := loadSquare(t)

		s.Apply(m)
		for i, c := range m.Colors {
			if c != (mesh.Color{}) {
				t.Errorf("vertex %d recolored: %v", i, c)
			}
		}
	})

	t.Run("software lighting recolors", func(t *testing.T) {
		s := newState(true)
		m := loadSquare(t)
		want := m.Clone()

		f := s.Apply(m)
		lighting.Illuminate(want, f.View, f.Params)

		if !reflect.DeepEqual(m.Colors, want.Colors) {
			t.Errorf("colors: got %v, want %v", m.Colors, want.Colors)
		}
		if m.Colors[0] == (mesh.Color{}) {
			t.Error("expected a lit color")
		}
	})
}

func TestProjection(t *testing.T) {
	p := Projection(1)
	// A point on the near plane maps to NDC depth -1.
	got := p.TransformVec3(math.Vec3{Z: -NearPlane})
	if got.Z < -1.0001 || got.Z > -0.9999 {
		t.Errorf("near plane depth: got %f, want -1", got.Z)
	}
}
