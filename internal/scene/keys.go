package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/mesh"
)

// Action is the effect of a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionInflate
	ActionShrink
	ActionDance
	ActionInvert
	ActionToggleLighting
	ActionResetView
	ActionHelp
)

var actionNames = [...]string{
	ActionNone:           "none",
	ActionQuit:           "quit",
	ActionInflate:        "inflate",
	ActionShrink:         "shrink",
	ActionDance:          "dance",
	ActionInvert:         "invert",
	ActionToggleLighting: "toggle-lighting",
	ActionResetView:      "reset-view",
	ActionHelp:           "help",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Mesh edit amounts.
const (
	InflateStep = 0.01
	DanceLimit  = 0.1
	DanceSteps  = 30
)

// KeyEscape is the rune input layers deliver for the Escape key.
const KeyEscape = 0x1b

// HelpText lists the key bindings.
const HelpText = `	q/Q, Esc  quit
	h/H       print this help
	l/L       toggle software lighting
	i/I       invert the normals
	r/R       reset the viewpoint
	+         inflate the model along its normals
	-         shrink the model along its normals
	d/D       move the model by a small random offset`

// HandleKey maps a key to its action. Actions that only touch the scene
// state (lighting toggle, view reset) are applied here; mesh actions are
// left to Perform.
func (s *State) HandleKey(r rune) Action {
	var a Action
	switch r {
	case KeyEscape, 'q', 'Q':
		a = ActionQuit
	case '+', '=':
		a = ActionInflate
	case '-':
		a = ActionShrink
	case 'd', 'D':
		a = ActionDance
	case 'i', 'I':
		a = ActionInvert
	case 'l', 'L':
		a = ActionToggleLighting
		s.SoftwareLighting = !s.SoftwareLighting
		mode := "hardware"
		if s.SoftwareLighting {
			mode = "software"
		}
		s.log.Info("lighting mode changed", zap.String("mode", mode))
	case 'r', 'R':
		a = ActionResetView
		s.View.Reset()
	case 'h', 'H':
		a = ActionHelp
	default:
		return ActionNone
	}
	s.log.Debug("key", zap.String("action", a.String()))
	return a
}

// Perform applies a mesh action to m and reports whether its geometry
// changed.
func (s *State) Perform(a Action, m *mesh.Mesh) bool {
	switch a {
	case ActionInflate:
		m.Inflate(InflateStep)
	case ActionShrink:
		m.Inflate(-InflateStep)
	case ActionDance:
		m.Translate(mesh.RandomOffset(s.rng, DanceLimit, DanceSteps))
	case ActionInvert:
		m.InvertNormals()
	default:
		return false
	}
	return true
}
