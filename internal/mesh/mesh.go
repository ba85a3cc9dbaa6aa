package mesh

import (
	"fmt"
	"io"
	gomath "math"
	"math/rand/v2"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/pkg/formats"
	"github.com/Faultbox/plyview/pkg/math"
)

// Load parses an ASCII PLY stream and builds a mesh from it.
func Load(r io.Reader) (*Mesh, error) {
	ply, err := formats.ParsePLY(r)
	if err != nil {
		return nil, err
	}
	return FromPLY(ply)
}

// LoadFile loads a mesh from a PLY file on disk.
func LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

// FromPLY builds a mesh from parsed PLY data. Face normals are computed and,
// when the source has no normals, vertex normals are reconstructed. The PLY
// arrays are copied.
func FromPLY(ply *formats.PLY) (*Mesh, error) {
	nv := len(ply.Vertices)
	if len(ply.Normals) != nv || len(ply.Colors) != nv {
		return nil, fmt.Errorf("%w: %d vertices, %d normals, %d colors",
			ErrFormat, nv, len(ply.Normals), len(ply.Colors))
	}
	if ply.HasTexture() && len(ply.TexCoords) != nv {
		return nil, fmt.Errorf("%w: %d vertices, %d texture coordinates",
			ErrFormat, nv, len(ply.TexCoords))
	}
	for i, f := range ply.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= nv {
				return nil, fmt.Errorf("%w: face %d index %d (vertices: %d)",
					formats.ErrVertexIndexRange, i, idx, nv)
			}
		}
	}

	m := &Mesh{
		Vertices:      slices.Clone(ply.Vertices),
		Normals:       slices.Clone(ply.Normals),
		Colors:        make([]Color, nv),
		Faces:         slices.Clone(ply.Faces),
		Bounds:        Bounds{Min: ply.Min, Max: ply.Max},
		Order:         ply.Header.Order,
		HasNormal:     ply.HasNormal(),
		HasColor:      ply.HasColor(),
		HasTexture:    ply.HasTexture(),
		SourceNormals: ply.HasNormal(),
	}
	for i, c := range ply.Colors {
		m.Colors[i] = Color(c)
	}
	if m.HasTexture {
		m.TexCoords = slices.Clone(ply.TexCoords)
	}

	log := logger.Named("mesh")
	degenerate := 0
	if m.SourceNormals {
		m.computeFaceNormals()
	} else {
		log.Debug("no normal coordinates in source, reconstructing from faces")
		degenerate = m.ReconstructNormals()
	}
	if !m.HasColor {
		log.Debug("no color in source")
	}
	if !m.HasTexture {
		log.Debug("no texture coordinates in source")
	}
	if degenerate > 0 {
		log.Warn("vertices without a defined normal", zap.Int("count", degenerate))
	}

	log.Info("mesh loaded",
		zap.Int("vertices", nv),
		zap.Int("faces", len(m.Faces)),
		zap.Bool("sourceNormals", m.SourceNormals),
		zap.Bool("color", m.HasColor),
		zap.Bool("texture", m.HasTexture),
	)
	return m, nil
}

// ComputeBounds scans the vertices for their bounding box. An empty mesh
// has zero bounds.
func (m *Mesh) ComputeBounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// RescaleToUnitCube maps the mesh so its longest axis spans exactly [-1, 1]
// and the other axes start at -1, preserving proportions. The bounding box
// is recomputed first, so earlier mutations are taken into account.
func (m *Mesh) RescaleToUnitCube() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: rescaling an empty mesh", ErrDegenerateGeometry)
	}

	b := m.ComputeBounds()
	size := b.Size().MaxComponent()
	if !(size > 0) || gomath.IsInf(float64(size), 0) {
		return fmt.Errorf("%w: bounding box extent %v", ErrDegenerateGeometry, b.Size())
	}

	scale := 2 / size
	offset := math.Vec3{X: 1, Y: 1, Z: 1}
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Sub(b.Min).Scale(scale).Sub(offset)
	}
	m.Bounds = m.ComputeBounds()
	return nil
}

// InvertNormals flips every vertex and face normal and reverses each face's
// winding so the topology agrees with the new orientation. Applying it twice
// restores the mesh.
func (m *Mesh) InvertNormals() {
	for i, n := range m.Normals {
		m.Normals[i] = n.Negate()
	}
	for i := range m.Faces {
		m.FaceNormals[i] = m.FaceNormals[i].Negate()
		m.Faces[i][0], m.Faces[i][2] = m.Faces[i][2], m.Faces[i][0]
	}
}

// Inflate moves every vertex along its normal by amount. Negative amounts
// shrink the mesh. Bounds are not refreshed.
func (m *Mesh) Inflate(amount float32) {
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(m.Normals[i].Scale(amount))
	}
}

// Translate adds offset to every vertex and to the tracked bounds.
func (m *Mesh) Translate(offset math.Vec3) {
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(offset)
	}
	m.Bounds.Min = m.Bounds.Min.Add(offset)
	m.Bounds.Max = m.Bounds.Max.Add(offset)
}

// RandomOffset returns a vector whose components are drawn from steps evenly
// spaced values in [-limit, limit).
func RandomOffset(rng *rand.Rand, limit float32, steps int) math.Vec3 {
	component := func() float32 {
		return -limit + float32(rng.IntN(steps))*2*limit/float32(steps)
	}
	return math.Vec3{X: component(), Y: component(), Z: component()}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = slices.Clone(m.Vertices)
	c.Normals = slices.Clone(m.Normals)
	c.Colors = slices.Clone(m.Colors)
	c.TexCoords = slices.Clone(m.TexCoords)
	c.Faces = slices.Clone(m.Faces)
	c.FaceNormals = slices.Clone(m.FaceNormals)
	return &c
}

// ToPLY converts the mesh back into PLY data. Normals are included when
// defined, colors and texture coordinates when their flags are set.
func (m *Mesh) ToPLY() *formats.PLY {
	nv := len(m.Vertices)
	ply := &formats.PLY{
		Header:    formats.StandardPLYHeader(nv, len(m.Faces), m.HasNormal, m.HasColor, m.HasTexture),
		Vertices:  slices.Clone(m.Vertices),
		Normals:   slices.Clone(m.Normals),
		Colors:    make([][3]uint8, nv),
		TexCoords: slices.Clone(m.TexCoords),
		Faces:     slices.Clone(m.Faces),
		Min:       m.Bounds.Min,
		Max:       m.Bounds.Max,
	}
	for i, c := range m.Colors {
		ply.Colors[i] = [3]uint8(c)
	}
	return ply
}
