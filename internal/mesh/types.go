// Package mesh holds triangle meshes loaded from PLY sources and the
// geometric operations applied to them between frames.
package mesh

import (
	"errors"

	"github.com/Faultbox/plyview/pkg/formats"
	"github.com/Faultbox/plyview/pkg/math"
)

// Error categories returned while building or transforming a mesh. The
// parse categories are shared with the formats package.
var (
	ErrFormat       = formats.ErrFormat
	ErrMissingField = formats.ErrMissingField
	ErrTopology     = formats.ErrTopology

	// ErrDegenerateGeometry is returned by operations that cannot be applied
	// to an empty or zero-extent mesh.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Color is an 8-bit RGB vertex color.
type Color [3]uint8

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Mesh is a render-ready indexed triangle mesh.
//
// Vertices, Normals and Colors always have the same length. Faces index into
// them and FaceNormals holds one unit normal per face.
type Mesh struct {
	Vertices    []math.Vec3
	Normals     []math.Vec3
	Colors      []Color
	TexCoords   []math.Vec2 // nil unless HasTexture
	Faces       [][3]int
	FaceNormals []math.Vec3

	// Bounds is tracked during loading and refreshed by RescaleToUnitCube.
	Bounds Bounds

	// Order is the attribute column layout of the source records.
	Order formats.AttributeOrder

	// HasNormal is true once normals are defined, whether read from the
	// source or reconstructed. SourceNormals tells the two apart.
	HasNormal     bool
	HasColor      bool
	HasTexture    bool
	SourceNormals bool
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}
