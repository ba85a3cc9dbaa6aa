package lighting

import (
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/pkg/math"
)

// Illuminate shades every vertex of m and overwrites its color. Vertices are
// carried into eye space by view and normals by the view's normal matrix;
// p.Light.Position must already be in eye space. The pass is not cached and
// has to be repeated whenever the view changes.
func Illuminate(m *mesh.Mesh, view math.Mat4, p Params) {
	normalMatrix := view.NormalMatrix()
	for i, v := range m.Vertices {
		pos := view.TransformVec3(v)
		n := normalMatrix.MulVec3(m.Normals[i])
		m.Colors[i] = ToColor(Shade(pos, n, p))
	}
}

// ToColor converts an RGBA intensity into an 8-bit vertex color. Channels
// are clamped to [0, 1] before scaling and truncated.
func ToColor(c math.Vec4) mesh.Color {
	return mesh.Color{channel(c[0]), channel(c[1]), channel(c[2])}
}

func channel(v float32) uint8 {
	switch {
	case v >= 1:
		return 255
	case v > 0:
		return uint8(v * 255)
	default:
		return 0
	}
}
