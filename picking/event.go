package picking

import (
	"github.com/gekko3d/raycast"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type PickEventType int

const (
	Pressed PickEventType = iota
	Released
	Clicked
	Moved
	Entered
	Exited
)

func (t PickEventType) String() string {
	switch t {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	case Clicked:
		return "clicked"
	case Moved:
		return "moved"
	case Entered:
		return "entered"
	case Exited:
		return "exited"
	}
	return "unknown"
}

// PickEvent is delivered to the picker of the hit entity first and then to
// its ancestors until one of them leaves it accepted.
type PickEvent struct {
	ID       uuid.UUID
	Type     PickEventType
	Entity   raycast.EntityId
	Receiver raycast.EntityId
	Distance float32
	Point    mgl32.Vec3
	Position mgl32.Vec2
	Button   int

	accepted bool
}

func newPickEvent(typ PickEventType, hit raycast.Hit, ev PointerEvent) *PickEvent {
	return &PickEvent{
		ID:       uuid.New(),
		Type:     typ,
		Entity:   hit.Entity,
		Distance: hit.Distance,
		Point:    hit.Point,
		Position: mgl32.Vec2{ev.X, ev.Y},
		Button:   ev.Button,
	}
}

func (e *PickEvent) Accept()          { e.accepted = true }
func (e *PickEvent) Ignore()          { e.accepted = false }
func (e *PickEvent) IsAccepted() bool { return e.accepted }

// ObjectPicker receives pick events for an entity and its descendants.
type ObjectPicker interface {
	HandlePick(ev *PickEvent)
}

type PickerFunc func(ev *PickEvent)

func (f PickerFunc) HandlePick(ev *PickEvent) { f(ev) }
