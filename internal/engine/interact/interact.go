// Package interact turns pointer events into camera motion.
//
// The controller is a small state machine over the three button-held flags
// stored in camera.State: button events set and clear the flags, pointer
// moves orbit, pan or dolly depending on which flag is held, and wheel events
// dolly unconditionally.
package interact

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/pkg/math"
)

// Motion gains.
const (
	orbitGain float32 = 2
	dollyGain float32 = 0.01
	wheelStep float32 = 0.1
)

// EventType identifies the kind of pointer event.
type EventType int

const (
	EventNone EventType = iota
	EventButtonDown
	EventButtonUp
	EventMove
	EventWheel
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventButtonDown:
		return "button-down"
	case EventButtonUp:
		return "button-up"
	case EventMove:
		return "move"
	case EventWheel:
		return "wheel"
	default:
		return "none"
	}
}

// Event is a pointer event in output-buffer pixel coordinates.
type Event struct {
	Type   EventType
	Button camera.Button
	X, Y   float32

	// Wheel is the scroll amount; only its sign is used.
	Wheel float32
}

// ButtonDown returns a button press at (x, y).
func ButtonDown(b camera.Button, x, y float32) Event {
	return Event{Type: EventButtonDown, Button: b, X: x, Y: y}
}

// ButtonUp returns a button release at (x, y).
func ButtonUp(b camera.Button, x, y float32) Event {
	return Event{Type: EventButtonUp, Button: b, X: x, Y: y}
}

// Move returns a pointer move to (x, y).
func Move(x, y float32) Event {
	return Event{Type: EventMove, X: x, Y: y}
}

// Wheel returns a scroll of amount at (x, y).
func Wheel(amount, x, y float32) Event {
	return Event{Type: EventWheel, Wheel: amount, X: x, Y: y}
}

// Options configures the controller.
type Options struct {
	// HoverOrbit orbits on pointer moves while no button is held.
	HoverOrbit bool
}

// Controller applies pointer events to a camera.
//
// A Controller is not safe for concurrent use; the camera state it mutates
// is.
type Controller struct {
	state  *camera.State
	opts   Options
	width  float32
	height float32
}

// NewController creates a controller for state. Deltas are normalized by
// the output size set with SetViewport.
func NewController(state *camera.State, width, height int, opts Options) *Controller {
	c := &Controller{state: state, opts: opts}
	c.SetViewport(width, height)
	return c
}

// SetViewport sets the output size used to normalize pointer deltas.
func (c *Controller) SetViewport(width, height int) {
	c.width = float32(max(width, 1))
	c.height = float32(max(height, 1))
}

// Handle applies one event. Whatever its type, the event's position becomes
// the last pointer position so deltas stay continuous.
func (c *Controller) Handle(ev Event) {
	c.state.Update(func(p *camera.Pose) {
		switch ev.Type {
		case EventButtonDown:
			setButton(p, ev.Button, true)
		case EventButtonUp:
			setButton(p, ev.Button, false)
		case EventMove:
			c.move(p, ev.X-p.Pointer.X, ev.Y-p.Pointer.Y)
		case EventWheel:
			dolly(p, math32.Copysign(wheelStep, ev.Wheel))
		}
		p.Pointer = math.Vec2{X: ev.X, Y: ev.Y}
	})
}

// HandleAll applies events in order.
func (c *Controller) HandleAll(events []Event) {
	for _, ev := range events {
		c.Handle(ev)
	}
}

func (c *Controller) move(p *camera.Pose, dx, dy float32) {
	switch {
	case p.Buttons[camera.ButtonPrimary]:
		c.orbit(p, dx, dy)

	case p.Buttons[camera.ButtonSecondary]:
		pan := math.Vec3{X: dx / c.width, Y: dy / c.height}
		p.Translation = p.Translation.Sub(p.Rotation().MulVec(pan))

	case p.Buttons[camera.ButtonTertiary]:
		// a move with no vertical component dollies forward
		step := dollyGain
		if dy > 0 {
			step = -dollyGain
		}
		dolly(p, math32.Sqrt(dx*dx+dy*dy)*step)

	case c.opts.HoverOrbit:
		c.orbit(p, dx, dy)
	}
}

func (c *Controller) orbit(p *camera.Pose, dx, dy float32) {
	p.Yaw += dx / c.width * orbitGain
	p.Pitch -= dy / c.height * orbitGain
}

// dolly moves the camera along its view axis while keeping the pivot fixed.
func dolly(p *camera.Pose, dz float32) {
	p.Translation.Z += dz
	p.Distance -= dz
}

func setButton(p *camera.Pose, b camera.Button, held bool) {
	if b < 0 || int(b) >= len(p.Buttons) {
		return
	}
	p.Buttons[b] = held
}
