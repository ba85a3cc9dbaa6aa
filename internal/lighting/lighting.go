// Package lighting evaluates a single point light Phong model per vertex.
//
// All positions handed to Shade are in eye space. Illuminate performs the
// transform from model space and writes the result into a mesh's colors.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/plyview/pkg/math"
)

// Attenuation holds the constant, linear and quadratic distance coefficients
// of a point light.
type Attenuation struct {
	Constant  float32 `yaml:"constant"`
	Linear    float32 `yaml:"linear"`
	Quadratic float32 `yaml:"quadratic"`
}

// Factor returns the multiplier applied to the light's ambient and specular
// terms at distance d: constant + linear*d + quadratic*d².
func (a Attenuation) Factor(d float32) float32 {
	return a.Constant + a.Linear*d + a.Quadratic*d*d
}

// Light is a point light. Position is in eye space when passed to Shade.
type Light struct {
	Position    math.Vec3
	Ambient     math.Vec4
	Diffuse     math.Vec4
	Specular    math.Vec4
	Attenuation Attenuation
}

// Material holds the reflectances of a surface.
type Material struct {
	Ambient   math.Vec4
	Diffuse   math.Vec4
	Specular  math.Vec4
	Shininess float32
}

// Params is everything Shade needs besides the vertex itself.
type Params struct {
	Light        Light
	Material     Material
	SceneAmbient math.Vec4

	// Viewer is the eye position, the origin in eye space.
	Viewer math.Vec3
}

// DefaultLightPosition is the world position of the default light.
var DefaultLightPosition = math.Vec3{X: -100, Y: 100, Z: 100}

// DefaultLight returns a white light at DefaultLightPosition with no
// distance falloff.
func DefaultLight() Light {
	return Light{
		Position:    DefaultLightPosition,
		Ambient:     math.RGBA(0.3, 0.3, 0.3, 1),
		Diffuse:     math.RGBA(0.6, 0.6, 0.6, 1),
		Specular:    math.RGBA(0.6, 0.6, 0.6, 1),
		Attenuation: Attenuation{Constant: 1},
	}
}

// DefaultMaterial returns a pale blue, slightly glossy material.
func DefaultMaterial() Material {
	return Material{
		Ambient:   math.RGBA(0.2, 0.2, 0.2, 1),
		Diffuse:   math.RGBA(0.7, 0.7, 1.0, 1),
		Specular:  math.RGBA(0.5, 0.5, 0.5, 1),
		Shininess: 5,
	}
}

// DefaultParams combines the default light and material with a black scene
// ambient and the viewer at the eye-space origin.
func DefaultParams() Params {
	return Params{
		Light:        DefaultLight(),
		Material:     DefaultMaterial(),
		SceneAmbient: math.RGBA(0, 0, 0, 1),
	}
}

// Shade evaluates the lighting equation for one eye-space vertex:
//
//	color = sceneAmbient*matAmbient + a*(lightAmbient*matAmbient)
//	      + lambert*(lightDiffuse*matDiffuse)
//	      + a*spec^shininess*(lightSpecular*matSpecular)
//
// where a is the attenuation factor at the light distance. The diffuse and
// specular terms only apply when the surface faces the light. The returned
// alpha is the material's diffuse alpha.
func Shade(pos, normal math.Vec3, p Params) math.Vec4 {
	light, mat := p.Light, p.Material

	toLight := light.Position.Sub(pos)
	a := light.Attenuation.Factor(toLight.Length())

	color := p.SceneAmbient.Mul(mat.Ambient).
		Add(light.Ambient.Mul(mat.Ambient).Scale(a))

	n := normal.Normalize()
	l := toLight.Normalize()
	lambert := n.Dot(l)
	if lambert > 0 {
		color = color.Add(light.Diffuse.Mul(mat.Diffuse).Scale(lambert))

		r := n.Scale(2 * lambert).Sub(l)
		e := p.Viewer.Sub(pos).Normalize()
		if s := r.Dot(e); s > 0 {
			spec := float32(gomath.Pow(float64(s), float64(mat.Shininess)))
			color = color.Add(light.Specular.Mul(mat.Specular).Scale(a * spec))
		}
	}

	color[3] = mat.Diffuse[3]
	return color
}
