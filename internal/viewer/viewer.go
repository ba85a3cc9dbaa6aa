// Package viewer runs the interactive mesh viewer loop.
package viewer

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/config"
	"github.com/Faultbox/plyview/internal/engine/input"
	"github.com/Faultbox/plyview/internal/engine/renderer"
	"github.com/Faultbox/plyview/internal/engine/window"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/internal/scene"
)

// Viewer shows one mesh in a window.
type Viewer struct {
	running  bool
	mesh     *mesh.Mesh
	scene    *scene.State
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	log      *zap.Logger
}

// New opens a window for m using the window and lighting settings in cfg.
func New(cfg *config.Config, m *mesh.Mesh) (*Viewer, error) {
	v := &Viewer{
		mesh:  m,
		scene: scene.New(cfg.Lighting.Params(), cfg.Lighting.Software, nil),
		input: input.New(),
		log:   logger.Named("viewer"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the OpenGL context the window created.
	width, height := v.window.Size()
	v.renderer, err = renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Upload(m)

	v.log.Info("viewer initialized",
		zap.Bool("softwareLighting", cfg.Lighting.Software),
	)
	return v, nil
}

// Run processes input and draws frames until the user quits.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if v.input.Update() {
			break
		}

		for _, event := range v.input.Events() {
			v.handle(event)
		}

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handle(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		v.renderer.Resize(event.Width, event.Height)
	case input.EventMouseDown:
		v.scene.MouseDown(event.Button, event.MouseX, event.MouseY)
	case input.EventMouseUp:
		v.scene.MouseUp()
	case input.EventMouseMove:
		v.scene.MouseMove(event.MouseX, event.MouseY)
	case input.EventKey:
		switch a := v.scene.HandleKey(event.Key); a {
		case scene.ActionQuit:
			v.running = false
		case scene.ActionHelp:
			fmt.Fprintln(os.Stdout, scene.HelpText)
		default:
			if v.scene.Perform(a, v.mesh) {
				v.renderer.UploadGeometry(v.mesh)
			}
		}
	}
}

// render lights the mesh on the CPU when software lighting is on, then
// draws it.
func (v *Viewer) render() {
	f := v.scene.Apply(v.mesh)
	if f.SoftwareLighting {
		v.renderer.UploadColors(v.mesh)
	}
	v.renderer.Draw(f)
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
