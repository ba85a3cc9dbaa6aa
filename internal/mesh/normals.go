package mesh

import "github.com/Faultbox/plyview/pkg/math"

// FaceNormal returns the unit normal of the triangle p, q, r under the
// right-hand rule: counter-clockwise vertices face the viewer. A degenerate
// triangle yields the zero vector.
func FaceNormal(p, q, r math.Vec3) math.Vec3 {
	return q.Sub(p).Cross(r.Sub(p)).Normalize()
}

// computeFaceNormals fills FaceNormals from the current vertex positions.
func (m *Mesh) computeFaceNormals() {
	if len(m.FaceNormals) != len(m.Faces) {
		m.FaceNormals = make([]math.Vec3, len(m.Faces))
	}
	for i, f := range m.Faces {
		m.FaceNormals[i] = FaceNormal(m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
	}
}

// ReconstructNormals derives vertex normals from the face topology.
//
// Every face adds its unit normal to each of its three vertices, once per
// occurrence, and the sums are normalized. A vertex no face contributes to
// (or whose contributions cancel) keeps a zero normal; the count of such
// vertices is returned. HasNormal is set afterwards.
func (m *Mesh) ReconstructNormals() int {
	m.computeFaceNormals()

	for i := range m.Normals {
		m.Normals[i] = math.Vec3{}
	}
	for i, f := range m.Faces {
		n := m.FaceNormals[i]
		for _, idx := range f {
			m.Normals[idx] = m.Normals[idx].Add(n)
		}
	}

	degenerate := 0
	for i, n := range m.Normals {
		n = n.Normalize()
		if n.IsZero() {
			degenerate++
		}
		m.Normals[i] = n
	}

	m.HasNormal = true
	return degenerate
}

// DegenerateNormals returns the indices of vertices whose normal has zero
// length.
func (m *Mesh) DegenerateNormals() []int {
	var idxs []int
	for i, n := range m.Normals {
		if n.IsZero() {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
