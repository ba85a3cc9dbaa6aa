// Package config handles viewer configuration loading and management.
package config

import (
	"github.com/Faultbox/plyview/internal/lighting"
	"github.com/Faultbox/plyview/pkg/math"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Model    ModelConfig    `yaml:"model"`
	Lighting LightingConfig `yaml:"lighting"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Title      string `yaml:"title"`
}

// ModelConfig selects the mesh and the transforms applied after loading.
type ModelConfig struct {
	Path    string `yaml:"path"`
	Rescale bool   `yaml:"rescale"` // fit into [-1, 1]
	Invert  bool   `yaml:"invert"`  // flip normals and winding
}

// LightingConfig holds the light, material and lighting mode.
type LightingConfig struct {
	// Software computes vertex colors on the CPU instead of in the shader.
	Software bool `yaml:"software"`

	// Position is the light's world position. When Distance is positive the
	// light is placed from Longitude/Latitude (degrees) instead.
	Position  [3]float32 `yaml:"position"`
	Longitude float32    `yaml:"longitude"`
	Latitude  float32    `yaml:"latitude"`
	Distance  float32    `yaml:"distance"`

	Ambient      [4]float32           `yaml:"ambient"`
	Diffuse      [4]float32           `yaml:"diffuse"`
	Specular     [4]float32           `yaml:"specular"`
	SceneAmbient [4]float32           `yaml:"scene_ambient"`
	Attenuation  lighting.Attenuation `yaml:"attenuation"`

	Material MaterialConfig `yaml:"material"`
}

// MaterialConfig holds surface reflectances.
type MaterialConfig struct {
	Ambient   [4]float32 `yaml:"ambient"`
	Diffuse   [4]float32 `yaml:"diffuse"`
	Specular  [4]float32 `yaml:"specular"`
	Shininess float32    `yaml:"shininess"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	light := lighting.DefaultLight()
	mat := lighting.DefaultMaterial()
	params := lighting.DefaultParams()

	return &Config{
		Window: WindowConfig{
			Width:      1024,
			Height:     1024,
			Fullscreen: false,
			VSync:      true,
			Title:      "plyview",
		},
		Model: ModelConfig{
			Rescale: true,
		},
		Lighting: LightingConfig{
			Software:     false,
			Position:     light.Position.Array(),
			Ambient:      light.Ambient,
			Diffuse:      light.Diffuse,
			Specular:     light.Specular,
			SceneAmbient: params.SceneAmbient,
			Attenuation:  light.Attenuation,
			Material: MaterialConfig{
				Ambient:   mat.Ambient,
				Diffuse:   mat.Diffuse,
				Specular:  mat.Specular,
				Shininess: mat.Shininess,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// LightPosition returns the configured world position of the light.
func (l LightingConfig) LightPosition() math.Vec3 {
	if l.Distance > 0 {
		return lighting.PositionFromAngles(l.Longitude, l.Latitude, l.Distance)
	}
	return math.Vec3{X: l.Position[0], Y: l.Position[1], Z: l.Position[2]}
}

// Params converts the lighting section into shading parameters with the
// light in world space.
func (l LightingConfig) Params() lighting.Params {
	return lighting.Params{
		Light: lighting.Light{
			Position:    l.LightPosition(),
			Ambient:     l.Ambient,
			Diffuse:     l.Diffuse,
			Specular:    l.Specular,
			Attenuation: l.Attenuation,
		},
		Material: lighting.Material{
			Ambient:   l.Material.Ambient,
			Diffuse:   l.Material.Diffuse,
			Specular:  l.Material.Specular,
			Shininess: l.Material.Shininess,
		},
		SceneAmbient: l.SceneAmbient,
	}
}
