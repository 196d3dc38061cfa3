package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func key(kind uint32, code sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: kind, Keysym: sdl.Keysym{Scancode: code}}
}

func TestHeldKeys(t *testing.T) {
	in := New()
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_W))
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_D))

	if !in.IsKeyHeld(sdl.SCANCODE_W) || !in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("W should be held and pressed")
	}
	if got := in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S); got != 1 {
		t.Errorf("Axis(W, S) = %v, want 1", got)
	}

	in.reset()
	if in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("pressed state must not outlive the frame")
	}
	if !in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("held state must survive the frame")
	}

	in.handle(key(sdl.KEYUP, sdl.SCANCODE_W))
	in.handle(key(sdl.KEYDOWN, sdl.SCANCODE_S))
	if got := in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S); got != -1 {
		t.Errorf("Axis(W, S) = %v, want -1", got)
	}
}

func TestKeyRepeatIgnored(t *testing.T) {
	in := New()
	e := key(sdl.KEYDOWN, sdl.SCANCODE_SPACE)
	e.Repeat = 1
	in.handle(e)
	if in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("auto-repeat counted as a new press")
	}
}

func TestMouseAndWheel(t *testing.T) {
	in := New()
	in.handle(&sdl.MouseMotionEvent{XRel: 3, YRel: -2})
	in.handle(&sdl.MouseMotionEvent{XRel: 4, YRel: 1})
	in.handle(&sdl.MouseWheelEvent{Y: -1})

	if dx, dy := in.MouseDelta(); dx != 7 || dy != -1 {
		t.Errorf("MouseDelta = (%d, %d), want (7, -1)", dx, dy)
	}
	if in.Wheel() != -1 {
		t.Errorf("Wheel = %d, want -1", in.Wheel())
	}

	in.reset()
	if dx, dy := in.MouseDelta(); dx != 0 || dy != 0 || in.Wheel() != 0 {
		t.Error("motion must reset every frame")
	}
}

func TestQuitAndResize(t *testing.T) {
	in := New()
	if !in.handle(&sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("quit event should request exit")
	}
	in.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600})

	events := in.Events()
	if len(events) != 2 || events[1].Type != EventWindowResize || events[1].Width != 800 || events[1].Height != 600 {
		t.Errorf("unexpected events %+v", events)
	}
}
