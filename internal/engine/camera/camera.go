// Package camera holds the orbit camera state of the viewer.
//
// The state is written by the interaction controller and key handlers, and
// read once per frame by the renderer through an immutable Pose snapshot.
package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Faultbox/depthview/pkg/math"
)

// MaxDecimation is the highest decimation level. Level n reduces the native
// cloud resolution by 2^n in each dimension.
const MaxDecimation = 2

// Button identifies a pointer button.
type Button int

const (
	// ButtonPrimary orbits the camera.
	ButtonPrimary Button = iota
	// ButtonSecondary pans the camera.
	ButtonSecondary
	// ButtonTertiary dollies the camera.
	ButtonTertiary

	buttonCount
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Pose is a snapshot of the camera parameters.
type Pose struct {
	// Orientation (radians). Angles accumulate without wrapping.
	Pitch float32
	Yaw   float32

	// Translation is a camera-space offset. Its Z doubles as the
	// pan-along-view-axis and zoom accumulator.
	Translation math.Vec3

	// Distance is the forward offset of the orbit pivot.
	Distance float32

	// Rendering switches
	DecimationLevel int
	ScaleToOutput   bool
	UseColorTexture bool

	// Pointer tracking
	Buttons [buttonCount]bool
	Pointer math.Vec2
}

// DefaultPose returns the pose a session starts with.
func DefaultPose() Pose {
	return Pose{
		Pitch:           Radians(-10),
		Yaw:             Radians(-15),
		Translation:     math.Vec3{X: 0, Y: 0, Z: -1},
		Distance:        2,
		DecimationLevel: 1,
		ScaleToOutput:   true,
		UseColorTexture: true,
	}
}

// Rotation returns Ry(yaw) * Rx(pitch). It is recomputed on every call.
func (p Pose) Rotation() math.Mat3 {
	return math.RotationY(p.Yaw).Mul(math.RotationX(p.Pitch))
}

// Pivot returns the orbit center: translation + (0, 0, distance).
func (p Pose) Pivot() math.Vec3 {
	return p.Translation.Add(math.Vec3{Z: p.Distance})
}

// AnyButton reports whether any pointer button is held.
func (p Pose) AnyButton() bool {
	for _, held := range p.Buttons {
		if held {
			return true
		}
	}
	return false
}

// DecimationScale returns 0.5^DecimationLevel.
func (p Pose) DecimationScale() float32 {
	return math32.Ldexp(1, -p.DecimationLevel)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// State is the mutable camera of one viewer session.
// All methods are safe for concurrent use.
type State struct {
	mu   sync.RWMutex
	pose Pose
}

// NewState creates a camera with the session defaults.
func NewState() *State {
	return NewStateFromPose(DefaultPose())
}

// NewStateFromPose creates a camera starting at the given pose.
func NewStateFromPose(p Pose) *State {
	p.DecimationLevel = clampDecimation(p.DecimationLevel)
	return &State{pose: p}
}

// Pose returns a snapshot of the current parameters.
func (s *State) Pose() Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose
}

// Rotation returns the current rotation matrix.
func (s *State) Rotation() math.Mat3 {
	return s.Pose().Rotation()
}

// Pivot returns the current orbit pivot.
func (s *State) Pivot() math.Vec3 {
	return s.Pose().Pivot()
}

// Update applies fn to the pose under the write lock.
func (s *State) Update(fn func(p *Pose)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.pose)
	s.pose.DecimationLevel = clampDecimation(s.pose.DecimationLevel)
}

// Reset restores the orientation, translation and distance.
// Rendering switches and pointer tracking are kept.
func (s *State) Reset() {
	s.Update(func(p *Pose) {
		p.Pitch, p.Yaw, p.Distance = 0, 0, 2
		p.Translation = math.Vec3{X: 0, Y: 0, Z: -1}
	})
}

// SetButton records whether b is held.
func (s *State) SetButton(b Button, held bool) {
	if b < 0 || b >= buttonCount {
		return
	}
	s.Update(func(p *Pose) { p.Buttons[b] = held })
}

// SetDecimation sets the decimation level, clamped to [0, MaxDecimation].
func (s *State) SetDecimation(level int) {
	s.Update(func(p *Pose) { p.DecimationLevel = level })
}

// CycleDecimation advances the decimation level modulo MaxDecimation+1 and
// returns the new level.
func (s *State) CycleDecimation() int {
	var level int
	s.Update(func(p *Pose) {
		p.DecimationLevel = (p.DecimationLevel + 1) % (MaxDecimation + 1)
		level = p.DecimationLevel
	})
	return level
}

// ToggleScale flips ScaleToOutput and returns the new value.
func (s *State) ToggleScale() bool {
	var v bool
	s.Update(func(p *Pose) {
		p.ScaleToOutput = !p.ScaleToOutput
		v = p.ScaleToOutput
	})
	return v
}

// ToggleColor flips UseColorTexture and returns the new value.
func (s *State) ToggleColor() bool {
	var v bool
	s.Update(func(p *Pose) {
		p.UseColorTexture = !p.UseColorTexture
		v = p.UseColorTexture
	})
	return v
}

func clampDecimation(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxDecimation {
		return MaxDecimation
	}
	return level
}
