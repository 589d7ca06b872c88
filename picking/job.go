package picking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gekko3d/raycast"
)

type PickMethod int

const (
	// NearestPick reports only the closest entity under the pointer.
	NearestPick PickMethod = iota
	// AllPicks reports every entity under the pointer, nearest first.
	AllPicks
)

type Settings struct {
	Method       PickMethod
	HoverEnabled bool
}

func DefaultSettings() Settings {
	return Settings{Method: NearestPick}
}

type PointerEventType int

const (
	PointerPressed PointerEventType = iota
	PointerReleased
	PointerMoved
)

type PointerEvent struct {
	Type   PointerEventType
	X, Y   float32
	Button int
}

// View pairs a camera with the viewport it renders to.
type View struct {
	Camera   Camera
	Viewport Viewport
}

// PickingJob turns pointer events into ray queries and dispatches the
// resulting pick events. Run must not be called concurrently.
type PickingJob struct {
	scene    *Scene
	service  *raycast.RayCastingService
	settings Settings
	views    []View
	log      raycast.Logger

	pressed    raycast.EntityId
	pressedHit raycast.Hit
	hovered    raycast.EntityId
}

func NewPickingJob(scene *Scene, service *raycast.RayCastingService, settings Settings, logger raycast.Logger) *PickingJob {
	if logger == nil {
		logger = raycast.NewNopLogger()
	}
	return &PickingJob{
		scene:    scene,
		service:  service,
		settings: settings,
		log:      raycast.Named(logger, "picking"),
	}
}

func (j *PickingJob) SetViews(views ...View) {
	j.views = views
}

// Run processes events in order and returns every pick event that reached a
// picker.
func (j *PickingJob) Run(ctx context.Context, events []PointerEvent) ([]PickEvent, error) {
	var delivered []PickEvent
	for _, ev := range events {
		hits, err := j.pick(ctx, ev)
		if err != nil {
			return delivered, err
		}
		delivered = append(delivered, j.dispatch(ev, hits)...)
	}
	return delivered, nil
}

// pick queries every view under the pointer and merges the hits by distance.
func (j *PickingJob) pick(ctx context.Context, ev PointerEvent) ([]raycast.Hit, error) {
	mode := raycast.FirstHit
	if j.settings.Method == AllPicks {
		mode = raycast.AllHits
	}

	// Every ray is built before the first query so a camera error cannot
	// strand issued handles.
	rays := make([]raycast.Ray, 0, len(j.views))
	for _, v := range j.views {
		ray, err := RayFromViewport(v.Camera, v.Viewport, ev.X, ev.Y)
		if errors.Is(err, ErrOutsideViewport) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rays = append(rays, ray)
	}

	handles := make([]raycast.QueryHandle, 0, len(rays))
	for _, ray := range rays {
		handles = append(handles, j.service.Query(ray, mode, j.scene.Provider(ray)))
	}

	// Each handle is consumed even after a failure so none stays behind in
	// the service.
	var (
		hits     []raycast.Hit
		firstErr error
	)
	for _, h := range handles {
		res, err := j.service.FetchResult(ctx, h)
		if err != nil && ctx.Err() != nil {
			_, _ = j.service.FetchResult(context.WithoutCancel(ctx), h)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch pick result %d: %w", h, err)
			}
			continue
		}
		hits = append(hits, res.Hits...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if j.log.DebugEnabled() {
		j.log.Debugf("picked%s", raycast.Fields{
			"views": len(handles),
			"hits":  len(hits),
			"x":     ev.X,
			"y":     ev.Y,
		})
	}

	slices.SortStableFunc(hits, func(a, b raycast.Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if j.settings.Method == NearestPick && len(hits) > 1 {
		hits = hits[:1]
	}
	return hits, nil
}

func (j *PickingJob) dispatch(ev PointerEvent, hits []raycast.Hit) []PickEvent {
	var out []PickEvent
	send := func(typ PickEventType, hit raycast.Hit) {
		pe := newPickEvent(typ, hit, ev)
		if j.deliver(pe) {
			out = append(out, *pe)
		}
	}

	nearest := raycast.Hit{Entity: raycast.NullEntity}
	if len(hits) > 0 {
		nearest = hits[0]
	}

	if j.settings.HoverEnabled && nearest.Entity != j.hovered {
		if j.hovered != raycast.NullEntity {
			send(Exited, raycast.Hit{Entity: j.hovered})
		}
		if nearest.Entity != raycast.NullEntity {
			send(Entered, nearest)
		}
		j.hovered = nearest.Entity
	}

	switch ev.Type {
	case PointerPressed:
		for _, h := range hits {
			send(Pressed, h)
		}
		j.pressed = nearest.Entity
		j.pressedHit = nearest

	case PointerReleased:
		if j.pressed == raycast.NullEntity {
			break
		}
		released := j.pressedHit
		var over bool
		for _, h := range hits {
			if h.Entity == j.pressed {
				released, over = h, true
				break
			}
		}
		send(Released, released)
		if over {
			send(Clicked, released)
		}
		j.pressed = raycast.NullEntity

	case PointerMoved:
		// Moves are drags of the pressed entity.
		if j.pressed == raycast.NullEntity {
			break
		}
		moved := j.pressedHit
		for _, h := range hits {
			if h.Entity == j.pressed {
				moved = h
				break
			}
		}
		send(Moved, moved)
	}
	return out
}

// deliver walks from the hit entity up to the root until a picker accepts.
// It reports whether any picker saw the event.
func (j *PickingJob) deliver(pe *PickEvent) bool {
	seen := false
	for id := pe.Entity; id != raycast.NullEntity; id = j.scene.Parent(id) {
		p := j.scene.picker(id)
		if p == nil {
			continue
		}
		seen = true
		pe.Receiver = id
		pe.Accept()
		p.HandlePick(pe)
		if pe.IsAccepted() {
			j.log.Debugf("pick %s%s", pe.Type, raycast.Fields{
				"id":       pe.ID,
				"entity":   pe.Entity,
				"receiver": id,
				"distance": pe.Distance,
			})
			return true
		}
	}
	return seen
}
