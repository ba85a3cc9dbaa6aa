package formats

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/plyview/pkg/math"
)

// twoTriangles is a unit square in the z=0 plane split into two triangles.
const twoTriangles = `ply
format ascii 1.0
comment made by hand
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

func TestParsePLY_PositionsOnly(t *testing.T) {
	ply, err := ParsePLY(strings.NewReader(twoTriangles))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	if ply.Header.VertexCount != 4 || len(ply.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got header=%d parsed=%d", ply.Header.VertexCount, len(ply.Vertices))
	}
	if ply.Header.FaceCount != 2 || len(ply.Faces) != 2 {
		t.Errorf("expected 2 faces, got header=%d parsed=%d", ply.Header.FaceCount, len(ply.Faces))
	}
	if ply.HasNormal() || ply.HasColor() || ply.HasTexture() {
		t.Errorf("expected no optional attributes, got normal=%v color=%v texture=%v",
			ply.HasNormal(), ply.HasColor(), ply.HasTexture())
	}
	if len(ply.Normals) != 4 || len(ply.Colors) != 4 {
		t.Errorf("normals/colors must be sized to the vertex count, got %d/%d", len(ply.Normals), len(ply.Colors))
	}
	if ply.TexCoords != nil {
		t.Errorf("expected nil texcoords, got %v", ply.TexCoords)
	}
	if ply.Faces[1] != [3]int{0, 2, 3} {
		t.Errorf("face 1: got %v, want [0 2 3]", ply.Faces[1])
	}
	if ply.Min != (math.Vec3{}) || ply.Max != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("bounds: got %v..%v, want (0,0,0)..(1,1,0)", ply.Min, ply.Max)
	}
	if ply.Header.Format != "ascii 1.0" {
		t.Errorf("format: got %q", ply.Header.Format)
	}
	if len(ply.Header.Comments) != 1 || ply.Header.Comments[0] != "made by hand" {
		t.Errorf("comments: got %q", ply.Header.Comments)
	}
	if ply.Header.FaceList != "uchar int vertex_indices" {
		t.Errorf("face list: got %q", ply.Header.FaceList)
	}
}

func TestParsePLY_AttributeOrder(t *testing.T) {
	// Columns deliberately shuffled, with an unknown property in the middle.
	src := `ply
format ascii 1.0
element vertex 2
property float nz
property float tv
property uchar blue
property float x
property float confidence
property float ny
property uchar green
property float z
property float tu
property float nx
property uchar red
property float y
element face 0
property list uchar int vertex_indices
end_header
1 0.25 30 5 0.9 0 20 7 0.5 0 10 6
-1 0.75 33 -5 0.1 0 22 -7 0.5 0 11 -6
`
	ply, err := ParsePLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	order := ply.Header.Order
	want := map[Attribute]int{
		AttrNZ: 0, AttrTV: 1, AttrBlue: 2, AttrX: 3, AttrNY: 5, AttrGreen: 6,
		AttrZ: 7, AttrTU: 8, AttrNX: 9, AttrRed: 10, AttrY: 11,
	}
	for attr, col := range want {
		if got := order.Column(attr); got != col {
			t.Errorf("column of %s: got %d, want %d", attr, got, col)
		}
	}
	if got := ply.Header.Properties[4]; got.Name != "confidence" || got.Attr != AttrNone {
		t.Errorf("unknown property: got %+v", got)
	}

	if !ply.HasNormal() || !ply.HasColor() || !ply.HasTexture() {
		t.Fatal("expected all attribute groups present")
	}

	if got, want := ply.Vertices[0], (math.Vec3{X: 5, Y: 6, Z: 7}); got != want {
		t.Errorf("vertex 0: got %v, want %v", got, want)
	}
	if got, want := ply.Normals[0], (math.Vec3{X: 0, Y: 0, Z: 1}); got != want {
		t.Errorf("normal 0: got %v, want %v", got, want)
	}
	if got, want := ply.Colors[1], [3]uint8{11, 22, 33}; got != want {
		t.Errorf("color 1: got %v, want %v", got, want)
	}
	if got, want := ply.TexCoords[1], (math.Vec2{X: 0.5, Y: 0.75}); got != want {
		t.Errorf("texcoord 1: got %v, want %v", got, want)
	}
	if ply.Min != (math.Vec3{X: -5, Y: -6, Z: -7}) || ply.Max != (math.Vec3{X: 5, Y: 6, Z: 7}) {
		t.Errorf("bounds: got %v..%v", ply.Min, ply.Max)
	}
}

func TestParsePLY_PartialGroupsAreAbsent(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property uchar red
property uchar green
property float tu
element face 0
property list uchar int vertex_indices
end_header
1 2 3 0.5 0.5 200 100 0.25
`
	ply, err := ParsePLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if ply.HasNormal() {
		t.Error("nx, ny without nz must not count as normals")
	}
	if ply.HasColor() {
		t.Error("red, green without blue must not count as color")
	}
	if ply.HasTexture() {
		t.Error("tu without tv must not count as texture")
	}
	if !ply.Normals[0].IsZero() {
		t.Errorf("partial normal must not be read, got %v", ply.Normals[0])
	}
	if ply.Colors[0] != [3]uint8{} {
		t.Errorf("partial color must not be read, got %v", ply.Colors[0])
	}
}

func TestParsePLY_ColorTruncation(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
property float red
property float green
property float blue
element face 0
property list uchar int vertex_indices
end_header
0 0 0 12.9 300 -4
`
	ply, err := ParsePLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if got, want := ply.Colors[0], [3]uint8{12, 255, 0}; got != want {
		t.Errorf("color: got %v, want %v", got, want)
	}
}

func TestParsePLY_TolerantLayout(t *testing.T) {
	// CRLF line endings, comments between declarations, blank lines, a
	// short vertex record and trailing face fields.
	src := "ply\r\n" +
		"comment before format\r\n" +
		"format ascii 1.0\r\n" +
		"element vertex 3\r\n" +
		"comment between\r\n" +
		"property float x\r\n" +
		"property float y\r\n" +
		"obj_info scanner 7\r\n" +
		"property float z\r\n" +
		"property float intensity\r\n" +
		"element face 1\r\n" +
		"property list uchar int vertex_indices\r\n" +
		"element edge 0\r\n" +
		"property int vertex1\r\n" +
		"end_header\r\n" +
		"\r\n" +
		"0 0 0 1\r\n" +
		"1 0 0\r\n" +
		"0 1\r\n" +
		"3 0 1 2 255 0 0\r\n"

	ply, err := ParsePLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if len(ply.Header.Comments) != 3 {
		t.Errorf("expected 3 comments, got %q", ply.Header.Comments)
	}
	if got, want := ply.Vertices[2], (math.Vec3{X: 0, Y: 1, Z: 0}); got != want {
		t.Errorf("short record: got %v, want %v", got, want)
	}
	if ply.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("face: got %v", ply.Faces[0])
	}
}

func TestParsePLY_Errors(t *testing.T) {
	const props = "property float x\nproperty float y\nproperty float z\n"
	const face = "element face 1\nproperty list uchar int vertex_indices\n"

	tests := []struct {
		name     string
		src      string
		wantErr  error
		category error
	}{
		{
			name:     "empty input",
			src:      "",
			wantErr:  ErrInvalidPLYMagic,
			category: ErrFormat,
		},
		{
			name:     "wrong magic",
			src:      "obj\nformat ascii 1.0\n",
			wantErr:  ErrInvalidPLYMagic,
			category: ErrFormat,
		},
		{
			name:     "binary encoding",
			src:      "ply\nformat binary_little_endian 1.0\n",
			wantErr:  ErrUnsupportedPLYEncoding,
			category: ErrFormat,
		},
		{
			name:     "missing vertex element",
			src:      "ply\nformat ascii 1.0\n" + props + face + "end_header\n",
			wantErr:  ErrMissingVertexCount,
			category: ErrMissingField,
		},
		{
			name:     "vertex count not a number",
			src:      "ply\nformat ascii 1.0\nelement vertex many\n",
			wantErr:  ErrMalformedPLYHeader,
			category: ErrFormat,
		},
		{
			name:     "missing z",
			src:      "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\n" + face + "end_header\n",
			wantErr:  ErrMissingPosition,
			category: ErrMissingField,
		},
		{
			name:     "missing face element",
			src:      "ply\nformat ascii 1.0\nelement vertex 1\n" + props + "end_header\n",
			wantErr:  ErrMissingFaceCount,
			category: ErrMissingField,
		},
		{
			name:     "missing property list",
			src:      "ply\nformat ascii 1.0\nelement vertex 1\n" + props + "element face 1\nend_header\n",
			wantErr:  ErrMissingFaceList,
			category: ErrMissingField,
		},
		{
			name:     "missing end_header",
			src:      "ply\nformat ascii 1.0\nelement vertex 1\n" + props + face,
			wantErr:  ErrMissingEndHeader,
			category: ErrMissingField,
		},
		{
			name:     "truncated vertices",
			src:      "ply\nformat ascii 1.0\nelement vertex 3\n" + props + face + "end_header\n0 0 0\n",
			wantErr:  ErrTruncatedPLYData,
			category: ErrFormat,
		},
		{
			name:     "non-numeric vertex field",
			src:      "ply\nformat ascii 1.0\nelement vertex 1\n" + props + face + "end_header\n0 zero 0\n",
			wantErr:  ErrMalformedPLYRecord,
			category: ErrFormat,
		},
		{
			name: "quad face",
			src: "ply\nformat ascii 1.0\nelement vertex 4\n" + props + face + "end_header\n" +
				"0 0 0\n1 0 0\n1 1 0\n0 1 0\n4 0 1 2 3\n",
			wantErr:  ErrNonTriangularFace,
			category: ErrTopology,
		},
		{
			name: "index out of range",
			src: "ply\nformat ascii 1.0\nelement vertex 3\n" + props + face + "end_header\n" +
				"0 0 0\n1 0 0\n1 1 0\n3 0 1 3\n",
			wantErr:  ErrVertexIndexRange,
			category: ErrTopology,
		},
		{
			name: "negative index",
			src: "ply\nformat ascii 1.0\nelement vertex 3\n" + props + face + "end_header\n" +
				"0 0 0\n1 0 0\n1 1 0\n3 0 -1 2\n",
			wantErr:  ErrVertexIndexRange,
			category: ErrTopology,
		},
		{
			name: "truncated faces",
			src: "ply\nformat ascii 1.0\nelement vertex 3\n" + props + face + "end_header\n" +
				"0 0 0\n1 0 0\n1 1 0\n",
			wantErr:  ErrTruncatedPLYData,
			category: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ply, err := ParsePLY(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if ply != nil {
				t.Error("expected nil PLY on error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, tt.category) {
				t.Errorf("expected category %v, got %v", tt.category, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestParsePLY_ErrorLine(t *testing.T) {
	src := strings.Replace(twoTriangles, "3 0 2 3", "4 0 2 3 1", 1)
	_, err := ParsePLY(strings.NewReader(src))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Line != 16 {
		t.Errorf("error line: got %d, want 16", perr.Line)
	}
	if !strings.HasPrefix(perr.Error(), "line 16: ") {
		t.Errorf("error text: got %q", perr.Error())
	}
}

func TestAttributeForName(t *testing.T) {
	tests := []struct {
		name string
		want Attribute
	}{
		{"x", AttrX},
		{"y", AttrY},
		{"z", AttrZ},
		{"nx", AttrNX},
		{"ny", AttrNY},
		{"nz", AttrNZ},
		{"red", AttrRed},
		{"green", AttrGreen},
		{"blue", AttrBlue},
		{"tu", AttrTU},
		{"tv", AttrTV},
		{"diffuse_red", AttrNone},
		{"s", AttrNone},
		{"intensity", AttrNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttributeForName(tt.name); got != tt.want {
				t.Errorf("AttributeForName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestWritePLY_RoundTrip(t *testing.T) {
	src := &PLY{
		Header:    StandardPLYHeader(3, 1, true, true, true),
		Vertices:  []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1.5, Y: 0, Z: 0}, {X: 0, Y: -2.25, Z: 1e-3}},
		Normals:   []math.Vec3{{Z: 1}, {Z: 1}, {Y: -1}},
		Colors:    [][3]uint8{{255, 0, 0}, {0, 128, 0}, {1, 2, 3}},
		TexCoords: []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}},
		Faces:     [][3]int{{0, 1, 2}},
	}
	src.Header.Comments = []string{"lit by plytool"}

	var buf bytes.Buffer
	if err := WritePLY(&buf, src); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}

	got, err := ParsePLY(&buf)
	if err != nil {
		t.Fatalf("ParsePLY of written data failed: %v", err)
	}

	if !got.HasNormal() || !got.HasColor() || !got.HasTexture() {
		t.Fatal("written file lost attribute groups")
	}
	for i := range src.Vertices {
		if got.Vertices[i] != src.Vertices[i] {
			t.Errorf("vertex %d: got %v, want %v", i, got.Vertices[i], src.Vertices[i])
		}
		if got.Normals[i] != src.Normals[i] {
			t.Errorf("normal %d: got %v, want %v", i, got.Normals[i], src.Normals[i])
		}
		if got.Colors[i] != src.Colors[i] {
			t.Errorf("color %d: got %v, want %v", i, got.Colors[i], src.Colors[i])
		}
		if got.TexCoords[i] != src.TexCoords[i] {
			t.Errorf("texcoord %d: got %v, want %v", i, got.TexCoords[i], src.TexCoords[i])
		}
	}
	if got.Faces[0] != src.Faces[0] {
		t.Errorf("face: got %v, want %v", got.Faces[0], src.Faces[0])
	}
	if len(got.Header.Comments) != 1 || got.Header.Comments[0] != "lit by plytool" {
		t.Errorf("comments: got %q", got.Header.Comments)
	}
}

func TestWritePLYFile_PositionsOnly(t *testing.T) {
	src, err := ParsePLY(strings.NewReader(twoTriangles))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.ply")
	if err := WritePLYFile(path, src); err != nil {
		t.Fatalf("WritePLYFile failed: %v", err)
	}

	got, err := ParsePLYFile(path)
	if err != nil {
		t.Fatalf("ParsePLYFile failed: %v", err)
	}
	if got.HasNormal() || got.HasColor() || got.HasTexture() {
		t.Error("positions-only mesh gained attribute groups")
	}
	if len(got.Header.Properties) != 3 {
		t.Errorf("expected 3 properties, got %d", len(got.Header.Properties))
	}
	if len(got.Faces) != 2 || got.Faces[0] != src.Faces[0] {
		t.Errorf("faces: got %v, want %v", got.Faces, src.Faces)
	}
}

func TestParsePLYFile_Missing(t *testing.T) {
	if _, err := ParsePLYFile("/nonexistent/mesh.ply"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
