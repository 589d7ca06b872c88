package raycast

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingVolume is any shape the service can test a ray against.
// Intersects returns the first hit point at or in front of the ray origin.
type BoundingVolume interface {
	ID() EntityId
	Intersects(ray Ray) (mgl32.Vec3, bool)
}

// BoundedVolume is implemented by volumes that can report an enclosing box.
// Spatial indexes need it; the service does not.
type BoundedVolume interface {
	BoundingVolume
	Bounds() *AABB
}

// BoundingVolumeProvider supplies the candidates for one query. The volumes
// are read without copying and must not be mutated while a query runs.
type BoundingVolumeProvider interface {
	BoundingVolumes() []BoundingVolume
}

// VolumeList is the trivial provider.
type VolumeList []BoundingVolume

func (l VolumeList) BoundingVolumes() []BoundingVolume {
	return l
}

func (s *Sphere) Bounds() *AABB {
	return AABBFromSphere(s)
}

func (b *AABB) Bounds() *AABB {
	c := *b
	return &c
}

// FilteredProvider yields only the volumes of the wrapped provider whose
// entity is in Allowed. Volumes with NullEntity are never yielded.
type FilteredProvider struct {
	Inner   BoundingVolumeProvider
	Allowed *roaring64.Bitmap
}

func NewFilteredProvider(inner BoundingVolumeProvider, allowed ...EntityId) *FilteredProvider {
	rb := roaring64.New()
	for _, id := range allowed {
		rb.Add(uint64(id))
	}
	return &FilteredProvider{Inner: inner, Allowed: rb}
}

func (f *FilteredProvider) Allow(id EntityId) {
	f.Allowed.Add(uint64(id))
}

func (f *FilteredProvider) Deny(id EntityId) {
	f.Allowed.Remove(uint64(id))
}

func (f *FilteredProvider) BoundingVolumes() []BoundingVolume {
	if f.Inner == nil || f.Allowed == nil || f.Allowed.IsEmpty() {
		return nil
	}
	all := f.Inner.BoundingVolumes()
	out := make([]BoundingVolume, 0, len(all))
	for _, v := range all {
		if v == nil || v.ID() == NullEntity {
			continue
		}
		if f.Allowed.Contains(uint64(v.ID())) {
			out = append(out, v)
		}
	}
	return out
}
