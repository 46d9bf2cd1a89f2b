// Package input turns SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is what the viewer should do in response to an event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	// ActionAdvance requests a turn to the next page.
	ActionAdvance
	ActionResize
	ActionScreenshot
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionAdvance:
		return "advance"
	case ActionResize:
		return "resize"
	case ActionScreenshot:
		return "screenshot"
	default:
		return "none"
	}
}

// Event is a processed input event.
type Event struct {
	Action Action
	Width  int
	Height int
}

// Input collects the actions of one frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 8),
	}
}

// Update polls SDL events. It returns true once the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev := Translate(event)
		if ev.Action == ActionNone {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Action == ActionQuit {
			quit = true
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Translate maps one SDL event to an Event.
func Translate(event sdl.Event) Event {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Action: ActionQuit}

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Action: ActionResize, Width: int(e.Data1), Height: int(e.Data2)}
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return Event{Action: KeyAction(e.Keysym.Scancode)}
		}

	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN {
			return Event{Action: ButtonAction(e.Button)}
		}
	}
	return Event{}
}

// KeyAction maps a pressed key to an action.
func KeyAction(key sdl.Scancode) Action {
	switch key {
	case sdl.SCANCODE_SPACE, sdl.SCANCODE_RIGHT, sdl.SCANCODE_PAGEDOWN, sdl.SCANCODE_RETURN:
		return ActionAdvance
	case sdl.SCANCODE_F12:
		return ActionScreenshot
	case sdl.SCANCODE_ESCAPE:
		return ActionQuit
	}
	return ActionNone
}

// ButtonAction maps a pressed mouse button to an action. Any click turns
// the page.
func ButtonAction(button uint8) Action {
	switch button {
	case sdl.BUTTON_LEFT, sdl.BUTTON_RIGHT:
		return ActionAdvance
	}
	return ActionNone
}
