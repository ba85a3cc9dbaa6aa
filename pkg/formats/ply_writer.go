package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// StandardPLYHeader returns the header WritePLY emits for a mesh with the
// given attribute groups: x y z, then nx ny nz, red green blue, tu tv.
func StandardPLYHeader(vertexCount, faceCount int, hasNormal, hasColor, hasTexture bool) PLYHeader {
	h := PLYHeader{
		Format:      "ascii 1.0",
		VertexCount: vertexCount,
		FaceCount:   faceCount,
		FaceList:    "uchar int vertex_indices",
		Order:       NewAttributeOrder(),
	}

	add := func(typ string, attrs ...Attribute) {
		for _, a := range attrs {
			h.Order[a] = len(h.Properties)
			h.Properties = append(h.Properties, PLYProperty{Type: typ, Name: a.String(), Attr: a})
		}
	}

	add("float", AttrX, AttrY, AttrZ)
	if hasNormal {
		add("float", AttrNX, AttrNY, AttrNZ)
	}
	if hasColor {
		add("uchar", AttrRed, AttrGreen, AttrBlue)
	}
	if hasTexture {
		add("float", AttrTU, AttrTV)
	}
	return h
}

// WritePLY writes p as an ASCII PLY file. Only the attribute groups p reports
// as present are written; undeclared source columns are not preserved.
func WritePLY(w io.Writer, p *PLY) error {
	hasNormal, hasColor, hasTexture := p.HasNormal(), p.HasColor(), p.HasTexture()
	h := StandardPLYHeader(len(p.Vertices), len(p.Faces), hasNormal, hasColor, hasTexture)

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintf(bw, "format %s\n", h.Format)
	for _, c := range p.Header.Comments {
		fmt.Fprintf(bw, "comment %s\n", c)
	}
	fmt.Fprintf(bw, "element vertex %d\n", h.VertexCount)
	for _, prop := range h.Properties {
		fmt.Fprintf(bw, "property %s %s\n", prop.Type, prop.Name)
	}
	fmt.Fprintf(bw, "element face %d\n", h.FaceCount)
	fmt.Fprintf(bw, "property list %s\n", h.FaceList)
	fmt.Fprintln(bw, "end_header")

	buf := make([]byte, 0, 256)
	for i, v := range p.Vertices {
		buf = buf[:0]
		buf = appendFloats(buf, v.X, v.Y, v.Z)
		if hasNormal {
			n := p.Normals[i]
			buf = appendFloats(buf, n.X, n.Y, n.Z)
		}
		if hasColor {
			c := p.Colors[i]
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(c[0]), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(c[1]), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(c[2]), 10)
		}
		if hasTexture {
			tc := p.TexCoords[i]
			buf = appendFloats(buf, tc.X, tc.Y)
		}
		buf = append(buf, '\n')
		// Leading separator from the first appendFloats
		if _, err := bw.Write(buf[1:]); err != nil {
			return fmt.Errorf("writing vertex %d: %w", i, err)
		}
	}

	for i, f := range p.Faces {
		buf = buf[:0]
		buf = append(buf, '3')
		for _, idx := range f {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(idx), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("writing face %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// WritePLYFile writes p to path, replacing any existing file.
func WritePLYFile(path string, p *PLY) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PLY file: %w", err)
	}
	if err := WritePLY(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func appendFloats(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(v), 'g', -1, 32)
	}
	return buf
}
