package main

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
)

// Input tracks which keys and mouse buttons are held and where the cursor is.
type Input struct {
	keys    map[sdl.Keycode]struct{}
	buttons map[uint8]struct{}
	cursor  mgl32.Vec2
}

func NewInput() *Input {
	return &Input{
		keys:    make(map[sdl.Keycode]struct{}),
		buttons: make(map[uint8]struct{}),
	}
}

// Handle updates the state from an input event. Other events are ignored.
func (in *Input) Handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return
		}
		if e.State == sdl.PRESSED {
			in.keys[e.Keysym.Sym] = struct{}{}
		} else {
			delete(in.keys, e.Keysym.Sym)
		}
	case *sdl.MouseButtonEvent:
		if e.State == sdl.PRESSED {
			in.buttons[e.Button] = struct{}{}
		} else {
			delete(in.buttons, e.Button)
		}
		in.cursor = mgl32.Vec2{float32(e.X), float32(e.Y)}
	case *sdl.MouseMotionEvent:
		in.cursor = mgl32.Vec2{float32(e.X), float32(e.Y)}
	}
}

func (in *Input) KeyDown(key sdl.Keycode) bool {
	_, ok := in.keys[key]
	return ok
}

func (in *Input) ButtonDown(button uint8) bool {
	_, ok := in.buttons[button]
	return ok
}

func (in *Input) Cursor() mgl32.Vec2 { return in.cursor }

// Held returns the number of keys and buttons currently held.
func (in *Input) Held() int { return len(in.keys) + len(in.buttons) }
