// Package renderer draws a lit triangle mesh with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/engine/shader"
	"github.com/Faultbox/plyview/internal/engine/shader/shaders"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/internal/scene"
	"github.com/Faultbox/plyview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Attribute locations shared with mesh.vert.
const (
	locPosition = 0
	locNormal   = 1
	locColor    = 2
)

// Renderer owns the GPU copy of one mesh.
type Renderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger

	vao        uint32
	vboPos     uint32
	vboNormal  uint32
	vboColor   uint32
	ebo        uint32
	indexCount int32
	indices    []uint32
}

// New creates a renderer.
// The OpenGL context must exist before this is called.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(1, 1, 1, 1)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.NewProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vboPos)
	gl.GenBuffers(1, &r.vboNormal)
	gl.GenBuffers(1, &r.vboColor)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vboPos)
	gl.VertexAttribPointer(locPosition, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(locPosition)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vboNormal)
	gl.VertexAttribPointer(locNormal, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(locNormal)

	// 8-bit colors, normalized to [0, 1] by the GPU
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vboColor)
	gl.VertexAttribPointer(locColor, 3, gl.UNSIGNED_BYTE, true, 0, nil)
	gl.EnableVertexAttribArray(locColor)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BindVertexArray(0)

	return r, nil
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	buffers := []uint32{r.vboPos, r.vboNormal, r.vboColor, r.ebo}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Upload sends all mesh arrays to the GPU.
func (r *Renderer) Upload(m *mesh.Mesh) {
	r.UploadGeometry(m)
	r.UploadColors(m)
	r.log.Debug("mesh uploaded",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("faces", m.FaceCount()),
	)
}

// UploadGeometry sends positions, normals and faces. Call it after any
// operation that moves vertices or changes winding.
func (r *Renderer) UploadGeometry(m *mesh.Mesh) {
	bufferVec3(r.vboPos, m.Vertices)
	bufferVec3(r.vboNormal, m.Normals)

	r.indices = r.indices[:0]
	for _, f := range m.Faces {
		r.indices = append(r.indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	r.indexCount = int32(len(r.indices))

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	if len(r.indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(r.indices)*4, unsafe.Pointer(&r.indices[0]), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)
}

// UploadColors sends the vertex colors. With software lighting this runs
// every frame.
func (r *Renderer) UploadColors(m *mesh.Mesh) {
	if len(m.Colors) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vboColor)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Colors)*3, unsafe.Pointer(&m.Colors[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func bufferVec3(vbo uint32, vs []math.Vec3) {
	if len(vs) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vs)*12, unsafe.Pointer(&vs[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw renders the uploaded mesh for one frame. Without software lighting
// the shader evaluates the same lighting model from f.Params.
func (r *Renderer) Draw(f scene.FrameContext) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.indexCount == 0 {
		return
	}

	p := r.program
	p.Use()
	p.SetMat4("uModelView", f.View)
	p.SetMat4("uProjection", scene.Projection(r.Aspect()))
	p.SetMat3("uNormalMatrix", f.View.NormalMatrix())
	p.SetBool("uPrecomputed", f.SoftwareLighting)

	light, mat := f.Params.Light, f.Params.Material
	p.SetVec3("uLightPos", light.Position)
	p.SetVec4("uLightAmbient", light.Ambient)
	p.SetVec4("uLightDiffuse", light.Diffuse)
	p.SetVec4("uLightSpecular", light.Specular)
	p.SetVec3("uAttenuation", math.Vec3{
		X: light.Attenuation.Constant,
		Y: light.Attenuation.Linear,
		Z: light.Attenuation.Quadratic,
	})
	p.SetVec4("uSceneAmbient", f.Params.SceneAmbient)
	p.SetVec4("uMatAmbient", mat.Ambient)
	p.SetVec4("uMatDiffuse", mat.Diffuse)
	p.SetVec4("uMatSpecular", mat.Specular)
	p.SetFloat("uShininess", mat.Shininess)

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}
