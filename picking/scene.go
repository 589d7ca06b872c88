package picking

import (
	"errors"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/gekko3d/raycast"
	"github.com/gekko3d/raycast/bvh"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrVolumeMismatch = errors.New("volume id does not match entity")
	ErrCycle          = errors.New("parent would create a cycle")
)

type entity struct {
	parent raycast.EntityId
	volume raycast.BoundingVolume
	picker ObjectPicker
}

// Scene is the entity hierarchy the picking job resolves hits against.
// It is safe for concurrent use.
type Scene struct {
	mu       sync.RWMutex
	next     raycast.EntityId
	entities map[raycast.EntityId]*entity
	pickable *roaring64.Bitmap

	tree  *bvh.Tree
	dirty bool
}

func NewScene() *Scene {
	return &Scene{
		entities: make(map[raycast.EntityId]*entity),
		pickable: roaring64.New(),
	}
}

// AddEntity creates an entity under parent (NullEntity for a root). New
// entities are pickable once they get a volume.
func (s *Scene) AddEntity(parent raycast.EntityId) (raycast.EntityId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parent != raycast.NullEntity {
		if _, ok := s.entities[parent]; !ok {
			return raycast.NullEntity, ErrUnknownEntity
		}
	}
	s.next++
	id := s.next
	s.entities[id] = &entity{parent: parent}
	s.pickable.Add(uint64(id))
	return id, nil
}

// Remove deletes the entity. Its children become roots.
func (s *Scene) Remove(id raycast.EntityId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return
	}
	for _, other := range s.entities {
		if other.parent == id {
			other.parent = raycast.NullEntity
		}
	}
	delete(s.entities, id)
	s.pickable.Remove(uint64(id))
	if e.volume != nil {
		s.dirty = true
	}
}

func (s *Scene) SetParent(id, parent raycast.EntityId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return ErrUnknownEntity
	}
	for p := parent; p != raycast.NullEntity; {
		if p == id {
			return ErrCycle
		}
		pe, ok := s.entities[p]
		if !ok {
			return ErrUnknownEntity
		}
		p = pe.parent
	}
	e.parent = parent
	return nil
}

func (s *Scene) Parent(id raycast.EntityId) raycast.EntityId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[id]; ok {
		return e.parent
	}
	return raycast.NullEntity
}

// SetVolume attaches a bounding volume. The volume must carry the entity id.
// A nil volume detaches it.
func (s *Scene) SetVolume(id raycast.EntityId, v raycast.BoundingVolume) error {
	if v != nil && v.ID() != id {
		return ErrVolumeMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return ErrUnknownEntity
	}
	e.volume = v
	s.dirty = true
	return nil
}

// SetSphere is a shorthand for SetVolume with a sphere owned by id.
func (s *Scene) SetSphere(id raycast.EntityId, center mgl32.Vec3, radius float32) error {
	return s.SetVolume(id, raycast.NewSphere(center, radius, id))
}

func (s *Scene) SetPicker(id raycast.EntityId, p ObjectPicker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return ErrUnknownEntity
	}
	e.picker = p
	return nil
}

func (s *Scene) SetPickable(id raycast.EntityId, pickable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return ErrUnknownEntity
	}
	if pickable {
		s.pickable.Add(uint64(id))
	} else {
		s.pickable.Remove(uint64(id))
	}
	return nil
}

func (s *Scene) picker(id raycast.EntityId) ObjectPicker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[id]; ok {
		return e.picker
	}
	return nil
}

// Provider returns a snapshot provider for one ray: BVH candidates filtered
// by the pickable set at the time of the call.
func (s *Scene) Provider(ray raycast.Ray) raycast.BoundingVolumeProvider {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil || s.dirty {
		s.rebuildLocked()
	}
	return &raycast.FilteredProvider{
		Inner:   bvh.RayProvider{Tree: s.tree, Ray: ray},
		Allowed: s.pickable.Clone(),
	}
}

func (s *Scene) rebuildLocked() {
	ids := make([]raycast.EntityId, 0, len(s.entities))
	for id, e := range s.entities {
		if e.volume != nil {
			ids = append(ids, id)
		}
	}
	// Entity order keeps equal-distance ties deterministic.
	slices.Sort(ids)

	volumes := make([]raycast.BoundingVolume, len(ids))
	for i, id := range ids {
		volumes[i] = s.entities[id].volume
	}
	s.tree = bvh.Build(volumes)
	s.dirty = false
}
