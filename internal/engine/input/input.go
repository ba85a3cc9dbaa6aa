// Package input translates SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/plyview/internal/scene"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKey
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event is a processed input event.
type Event struct {
	Type   EventType
	Key    rune
	Width  int
	Height int
	MouseX int
	MouseY int
	Button scene.Button
}

// Input polls SDL events once per frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls pending SDL events. It returns true when the window was
// asked to close.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			if r, ok := keyRune(e.Keysym); ok {
				i.events = append(i.events, Event{Type: EventKey, Key: r})
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				Type:   EventMouseDown,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: button(e.Button),
			}
			if e.Type == sdl.MOUSEBUTTONUP {
				ev.Type = EventMouseUp
			}
			i.events = append(i.events, ev)
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// keyRune maps a key press to the character the scene bindings use.
func keyRune(k sdl.Keysym) (rune, bool) {
	shift := sdl.Keymod(k.Mod)&sdl.KMOD_SHIFT != 0

	switch k.Sym {
	case sdl.K_ESCAPE:
		return scene.KeyEscape, true
	case sdl.K_KP_PLUS:
		return '+', true
	case sdl.K_KP_MINUS:
		return '-', true
	case sdl.K_EQUALS:
		if shift {
			return '+', true
		}
		return '=', true
	}

	if k.Sym >= 0x20 && k.Sym < 0x7f {
		r := rune(k.Sym)
		if shift && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return r, true
	}
	return 0, false
}

func button(b uint8) scene.Button {
	switch b {
	case sdl.BUTTON_LEFT:
		return scene.ButtonLeft
	case sdl.BUTTON_MIDDLE:
		return scene.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		return scene.ButtonRight
	}
	return 0
}
