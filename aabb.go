package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned box volume.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
	Id  EntityId
}

func NewAABB(a, b mgl32.Vec3, id ...EntityId) *AABB {
	box := &AABB{
		Min: mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())},
		Max: mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())},
	}
	if len(id) > 0 {
		box.Id = id[0]
	}
	return box
}

// AABBFromSphere returns the box enclosing s, keeping its id.
func AABBFromSphere(s *Sphere) *AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return &AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r), Id: s.Id}
}

func (b *AABB) ID() EntityId {
	return b.Id
}

func (b *AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Union returns a box enclosing both b and o. The id of b is kept.
func (b *AABB) Union(o *AABB) *AABB {
	return &AABB{
		Min: mgl32.Vec3{min(b.Min.X(), o.Min.X()), min(b.Min.Y(), o.Min.Y()), min(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), o.Max.X()), max(b.Max.Y(), o.Max.Y()), max(b.Max.Z(), o.Max.Z())},
		Id:  b.Id,
	}
}

// IntersectDistance runs the slab test. An origin inside the box hits at t = 0.
func (b *AABB) IntersectDistance(ray Ray) (float32, bool) {
	tMin := float32(0)
	tMax := float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		o, d := ray.Origin[axis], ray.Direction[axis]
		if d > -1e-12 && d < 1e-12 {
			// Parallel to this slab.
			if o < b.Min[axis] || o > b.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / d
		t0 := (b.Min[axis] - o) * inv
		t1 := (b.Max[axis] - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = max(tMin, t0)
		tMax = min(tMax, t1)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

func (b *AABB) Intersects(ray Ray) (mgl32.Vec3, bool) {
	t, ok := b.IntersectDistance(ray)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return ray.Point(t), true
}
