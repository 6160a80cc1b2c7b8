// Package input translates SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/interact"
)

// EventType identifies a translated event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointer
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	// Key is the lower-case character or control code of a key press.
	Key    rune
	Width  int
	Height int
	// Pointer is set for EventPointer, in drawable pixels.
	Pointer interact.Event
}

// Input handles all input processing.
type Input struct {
	events []Event
	scaleX float32
	scaleY float32
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		scaleX: 1,
		scaleY: 1,
	}
}

// SetPointerScale converts window coordinates to drawable pixels on
// high-density displays.
func (i *Input) SetPointerScale(windowW, windowH, drawW, drawH int) {
	if windowW < 1 || windowH < 1 {
		return
	}
	i.scaleX = float32(drawW) / float32(windowW)
	i.scaleY = float32(drawH) / float32(windowH)
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := i.translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			return true
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key rune) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

func (i *Input) translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return Event{}, false
		}
		sym := int32(e.Keysym.Sym)
		if sym <= 0 || sym >= 0x80 {
			return Event{}, false
		}
		return Event{Type: EventKeyDown, Key: rune(sym)}, true

	case *sdl.MouseMotionEvent:
		x, y := i.scale(e.X, e.Y)
		return pointer(interact.Move(x, y)), true

	case *sdl.MouseButtonEvent:
		b, ok := buttonFor(e.Button)
		if !ok {
			return Event{}, false
		}
		x, y := i.scale(e.X, e.Y)
		if e.Type == sdl.MOUSEBUTTONDOWN {
			return pointer(interact.ButtonDown(b, x, y)), true
		}
		return pointer(interact.ButtonUp(b, x, y)), true

	case *sdl.MouseWheelEvent:
		amount := float32(e.Y)
		if e.Direction == uint32(sdl.MOUSEWHEEL_FLIPPED) {
			amount = -amount
		}
		if amount == 0 {
			return Event{}, false
		}
		mx, my, _ := sdl.GetMouseState()
		x, y := i.scale(mx, my)
		return pointer(interact.Wheel(amount, x, y)), true
	}
	return Event{}, false
}

func (i *Input) scale(x, y int32) (float32, float32) {
	return float32(x) * i.scaleX, float32(y) * i.scaleY
}

func pointer(ev interact.Event) Event {
	return Event{Type: EventPointer, Pointer: ev}
}

func buttonFor(b uint8) (camera.Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return camera.ButtonPrimary, true
	case sdl.BUTTON_RIGHT:
		return camera.ButtonSecondary, true
	case sdl.BUTTON_MIDDLE:
		return camera.ButtonTertiary, true
	default:
		return 0, false
	}
}
