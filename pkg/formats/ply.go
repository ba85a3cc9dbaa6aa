// PLY (Polygon File Format) parser for ASCII triangle meshes.
package formats

import (
	"bufio"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/plyview/pkg/math"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic        = fmt.Errorf("%w: expected 'ply' magic", ErrFormat)
	ErrUnsupportedPLYEncoding = fmt.Errorf("%w: only 'format ascii' is supported", ErrFormat)
	ErrMalformedPLYHeader     = fmt.Errorf("%w: malformed header line", ErrFormat)
	ErrMalformedPLYRecord     = fmt.Errorf("%w: malformed record", ErrFormat)
	ErrTruncatedPLYData       = fmt.Errorf("%w: truncated PLY data", ErrFormat)

	ErrMissingVertexCount = fmt.Errorf("%w: 'element vertex' expected", ErrMissingField)
	ErrMissingPosition    = fmt.Errorf("%w: vertex coordinate properties x, y, z expected", ErrMissingField)
	ErrMissingFaceCount   = fmt.Errorf("%w: 'element face' expected", ErrMissingField)
	ErrMissingFaceList    = fmt.Errorf("%w: 'property list' expected", ErrMissingField)
	ErrMissingEndHeader   = fmt.Errorf("%w: 'end_header' expected", ErrMissingField)

	ErrNonTriangularFace = fmt.Errorf("%w: not a triangular face", ErrTopology)
	ErrVertexIndexRange  = fmt.Errorf("%w: vertex index out of range", ErrTopology)
)

// preallocLimit caps up-front allocation driven by header counts.
const preallocLimit = 1 << 20

// Attribute identifies a per-vertex scalar a PLY property can feed.
type Attribute int

const (
	AttrX Attribute = iota
	AttrY
	AttrZ
	AttrNX
	AttrNY
	AttrNZ
	AttrRed
	AttrGreen
	AttrBlue
	AttrTU
	AttrTV

	// AttrNone marks a property that feeds no attribute.
	AttrNone Attribute = -1
)

// NumAttributes is the number of slots in an AttributeOrder.
const NumAttributes = int(AttrTV) + 1

var attributeNames = [NumAttributes]string{
	"x", "y", "z", "nx", "ny", "nz", "red", "green", "blue", "tu", "tv",
}

// String returns the canonical property name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= NumAttributes {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeNames[a]
}

// Property names are matched by prefix, first match wins.
var attributePrefixes = []struct {
	prefix string
	attr   Attribute
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
}

// AttributeForName maps a vertex property name to the attribute it feeds.
func AttributeForName(name string) Attribute {
	for _, p := range attributePrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.attr
		}
	}
	return AttrNone
}

// AttributeOrder maps each attribute to its column in a vertex record,
// or -1 when the source does not declare it.
type AttributeOrder [NumAttributes]int

// NewAttributeOrder returns an order with every attribute absent.
func NewAttributeOrder() AttributeOrder {
	var o AttributeOrder
	for i := range o {
		o[i] = -1
	}
	return o
}

// Column returns the record column for attr, or -1.
func (o AttributeOrder) Column(attr Attribute) int {
	return o[attr]
}

// Has reports whether every listed attribute has a column.
func (o AttributeOrder) Has(attrs ...Attribute) bool {
	for _, a := range attrs {
		if o[a] < 0 {
			return false
		}
	}
	return true
}

// HasPosition reports whether x, y and z are all declared.
func (o AttributeOrder) HasPosition() bool { return o.Has(AttrX, AttrY, AttrZ) }

// HasNormal reports whether nx, ny and nz are all declared.
func (o AttributeOrder) HasNormal() bool { return o.Has(AttrNX, AttrNY, AttrNZ) }

// HasColor reports whether red, green and blue are all declared.
func (o AttributeOrder) HasColor() bool { return o.Has(AttrRed, AttrGreen, AttrBlue) }

// HasTexture reports whether tu and tv are both declared.
func (o AttributeOrder) HasTexture() bool { return o.Has(AttrTU, AttrTV) }

// PLYProperty is one "property <type> <name>" declaration of the vertex element.
type PLYProperty struct {
	Type string
	Name string
	Attr Attribute
}

// PLYHeader holds the declarations read before end_header.
type PLYHeader struct {
	Format      string   // e.g. "ascii 1.0"
	Comments    []string // comment and obj_info lines, without the keyword
	VertexCount int
	FaceCount   int
	Properties  []PLYProperty // vertex properties in column order
	FaceList    string        // e.g. "uchar int vertex_indices"
	Order       AttributeOrder
}

// PLY represents a parsed ASCII PLY triangle mesh.
type PLY struct {
	Header PLYHeader

	Vertices  []math.Vec3
	Normals   []math.Vec3 // zero vectors unless the header declares nx, ny, nz
	Colors    [][3]uint8  // zero unless the header declares red, green, blue
	TexCoords []math.Vec2 // nil unless the header declares tu, tv
	Faces     [][3]int

	// Bounding box accumulated while reading vertex records.
	Min, Max math.Vec3
}

// HasNormal reports whether normals were read from the source.
func (p *PLY) HasNormal() bool { return p.Header.Order.HasNormal() }

// HasColor reports whether colors were read from the source.
func (p *PLY) HasColor() bool { return p.Header.Order.HasColor() }

// HasTexture reports whether texture coordinates were read from the source.
func (p *PLY) HasTexture() bool { return p.Header.Order.HasTexture() }

// ParsePLY parses an ASCII PLY mesh from r.
func ParsePLY(r io.Reader) (*PLY, error) {
	lr := newLineReader(r)

	header, err := parsePLYHeader(lr)
	if err != nil {
		return nil, err
	}

	ply := &PLY{Header: header}
	if err := ply.readVertices(lr); err != nil {
		return nil, err
	}
	if err := ply.readFaces(lr); err != nil {
		return nil, err
	}
	return ply, nil
}

// ParsePLYFile parses a PLY file from disk.
func ParsePLYFile(path string) (*PLY, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	defer f.Close()
	return ParsePLY(f)
}

func parsePLYHeader(lr *lineReader) (PLYHeader, error) {
	h := PLYHeader{Order: NewAttributeOrder()}

	fields, ok := lr.next()
	if !ok || fields[0] != "ply" {
		return h, lr.fail(ErrInvalidPLYMagic)
	}

	fields, ok = lr.nextHeader(&h)
	if !ok || len(fields) < 2 || fields[0] != "format" || fields[1] != "ascii" {
		return h, lr.fail(ErrUnsupportedPLYEncoding)
	}
	h.Format = strings.Join(fields[1:], " ")

	// Vertex count
	fields, ok = lr.nextHeader(&h)
	if !ok || !isElement(fields, "vertex") {
		return h, lr.fail(ErrMissingVertexCount)
	}
	n, err := parseCount(fields)
	if err != nil {
		return h, lr.fail(err)
	}
	h.VertexCount = n

	// Vertex properties, in column order
	fields, ok = lr.nextHeader(&h)
	for ok && fields[0] == "property" {
		if len(fields) < 3 {
			return h, lr.fail(ErrMalformedPLYHeader)
		}
		prop := PLYProperty{
			Type: strings.Join(fields[1:len(fields)-1], " "),
			Name: fields[len(fields)-1],
		}
		prop.Attr = AttributeForName(prop.Name)
		if prop.Attr != AttrNone {
			h.Order[prop.Attr] = len(h.Properties)
		}
		h.Properties = append(h.Properties, prop)
		fields, ok = lr.nextHeader(&h)
	}

	if !h.Order.HasPosition() {
		return h, lr.fail(ErrMissingPosition)
	}

	// Face count
	if !ok || !isElement(fields, "face") {
		return h, lr.fail(ErrMissingFaceCount)
	}
	n, err = parseCount(fields)
	if err != nil {
		return h, lr.fail(err)
	}
	h.FaceCount = n

	fields, ok = lr.nextHeader(&h)
	if !ok || len(fields) < 2 || fields[0] != "property" || fields[1] != "list" {
		return h, lr.fail(ErrMissingFaceList)
	}
	h.FaceList = strings.Join(fields[2:], " ")

	// Anything else up to end_header is ignored.
	for {
		fields, ok = lr.nextHeader(&h)
		if !ok {
			return h, lr.fail(ErrMissingEndHeader)
		}
		if fields[0] == "end_header" {
			return h, nil
		}
	}
}

func isElement(fields []string, name string) bool {
	return len(fields) >= 2 && fields[0] == "element" && fields[1] == name
}

func parseCount(fields []string) (int, error) {
	if len(fields) < 3 {
		if fields[1] == "face" {
			return 0, ErrMissingFaceCount
		}
		return 0, ErrMissingVertexCount
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s count %q", ErrMalformedPLYHeader, fields[1], fields[2])
	}
	return n, nil
}

func (p *PLY) readVertices(lr *lineReader) error {
	h := &p.Header
	n := h.VertexCount
	order := h.Order
	hasNormal, hasColor, hasTexture := order.HasNormal(), order.HasColor(), order.HasTexture()

	p.Vertices = make([]math.Vec3, 0, min(n, preallocLimit))
	p.Normals = make([]math.Vec3, 0, min(n, preallocLimit))
	p.Colors = make([][3]uint8, 0, min(n, preallocLimit))
	if hasTexture {
		p.TexCoords = make([]math.Vec2, 0, min(n, preallocLimit))
	}

	if n == 0 {
		return nil
	}

	p.Min = math.Vec3{X: gomath.MaxFloat32, Y: gomath.MaxFloat32, Z: gomath.MaxFloat32}
	p.Max = math.Vec3{X: -gomath.MaxFloat32, Y: -gomath.MaxFloat32, Z: -gomath.MaxFloat32}

	var values [NumAttributes]float32
	for i := 0; i < n; i++ {
		fields, ok := lr.next()
		if !ok {
			return lr.fail(fmt.Errorf("%w: vertex %d of %d", ErrTruncatedPLYData, i, n))
		}

		for attr, col := range order {
			values[attr] = 0
			if col < 0 || col >= len(fields) {
				continue
			}
			v, err := strconv.ParseFloat(fields[col], 32)
			if err != nil {
				return lr.fail(fmt.Errorf("%w: vertex %d field %d %q", ErrMalformedPLYRecord, i, col, fields[col]))
			}
			values[attr] = float32(v)
		}

		pos := math.Vec3{X: values[AttrX], Y: values[AttrY], Z: values[AttrZ]}
		p.Vertices = append(p.Vertices, pos)

		var normal math.Vec3
		if hasNormal {
			normal = math.Vec3{X: values[AttrNX], Y: values[AttrNY], Z: values[AttrNZ]}
		}
		p.Normals = append(p.Normals, normal)

		var color [3]uint8
		if hasColor {
			color = [3]uint8{
				colorChannel(values[AttrRed]),
				colorChannel(values[AttrGreen]),
				colorChannel(values[AttrBlue]),
			}
		}
		p.Colors = append(p.Colors, color)

		if hasTexture {
			p.TexCoords = append(p.TexCoords, math.Vec2{X: values[AttrTU], Y: values[AttrTV]})
		}

		p.Min = p.Min.Min(pos)
		p.Max = p.Max.Max(pos)
	}
	return nil
}

func (p *PLY) readFaces(lr *lineReader) error {
	n := p.Header.FaceCount
	nv := len(p.Vertices)
	p.Faces = make([][3]int, 0, min(n, preallocLimit))

	for i := 0; i < n; i++ {
		fields, ok := lr.next()
		if !ok {
			return lr.fail(fmt.Errorf("%w: face %d of %d", ErrTruncatedPLYData, i, n))
		}

		k, err := strconv.Atoi(fields[0])
		if err != nil {
			return lr.fail(fmt.Errorf("%w: face %d vertex count %q", ErrMalformedPLYRecord, i, fields[0]))
		}
		if k != 3 {
			return lr.fail(fmt.Errorf("%w: face %d has %d vertices", ErrNonTriangularFace, i, k))
		}
		if len(fields) < 4 {
			return lr.fail(fmt.Errorf("%w: face %d lists %d indices", ErrMalformedPLYRecord, i, len(fields)-1))
		}

		var face [3]int
		for j := 0; j < 3; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return lr.fail(fmt.Errorf("%w: face %d index %q", ErrMalformedPLYRecord, i, fields[1+j]))
			}
			if idx < 0 || idx >= nv {
				return lr.fail(fmt.Errorf("%w: face %d index %d (vertices: %d)", ErrVertexIndexRange, i, idx, nv))
			}
			face[j] = idx
		}
		p.Faces = append(p.Faces, face)
	}
	return nil
}

// colorChannel truncates a color value to an 8-bit channel.
func colorChannel(v float32) uint8 {
	if v <= 0 || gomath.IsNaN(float64(v)) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// lineReader yields the whitespace-separated fields of each non-blank line
// and tracks the line number for error reporting.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: s}
}

func (lr *lineReader) next() ([]string, bool) {
	for lr.scanner.Scan() {
		lr.line++
		fields := strings.Fields(lr.scanner.Text())
		if len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

// nextHeader is next with comment and obj_info lines collected into h.
func (lr *lineReader) nextHeader(h *PLYHeader) ([]string, bool) {
	for {
		fields, ok := lr.next()
		if !ok {
			return nil, false
		}
		switch fields[0] {
		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.Join(fields[1:], " "))
		default:
			return fields, true
		}
	}
}

func (lr *lineReader) fail(err error) error {
	if serr := lr.scanner.Err(); serr != nil {
		err = fmt.Errorf("%w: %v", err, serr)
	}
	return &ParseError{Line: lr.line, Err: err}
}
