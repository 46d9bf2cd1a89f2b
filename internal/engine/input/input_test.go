package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Action: ActionQuit}},
		{"left click", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT}, Event{Action: ActionAdvance}},
		{"button release", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT}, Event{}},
		{"middle click", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_MIDDLE}, Event{}},
		{
			"space",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}},
			Event{Action: ActionAdvance},
		},
		{
			"held space",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}},
			Event{},
		},
		{
			"F12",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F12}},
			Event{Action: ActionScreenshot},
		},
		{
			"escape",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			Event{Action: ActionQuit},
		},
		{
			"key up",
			&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}},
			Event{},
		},
		{
			"resize",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600},
			Event{Action: ActionResize, Width: 800, Height: 600},
		},
		{
			"focus",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED},
			Event{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translate(tt.event); got != tt.want {
				t.Errorf("Translate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	if ActionAdvance.String() != "advance" {
		t.Errorf("got %q", ActionAdvance.String())
	}
	if Action(99).String() != "none" {
		t.Errorf("got %q", Action(99).String())
	}
}
