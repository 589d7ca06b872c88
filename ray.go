package raycast

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EntityId identifies the entity owning a bounding volume.
type EntityId uint64

// NullEntity is carried by volumes used for ad hoc geometric tests.
const NullEntity EntityId = 0

const rayEpsilon = 1e-5

// Ray is a half line. Direction is expected to be unit length; NewRay
// guarantees that, a literal leaves it to the caller.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func NewRay(origin, direction mgl32.Vec3) (Ray, error) {
	l := direction.Len()
	if l < 1e-12 {
		return Ray{}, ErrZeroDirection
	}
	return Ray{Origin: origin, Direction: direction.Mul(1.0 / l)}, nil
}

// Point returns the position at parameter t along the ray.
func (r Ray) Point(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

func (r Ray) ProjectedDistance(p mgl32.Vec3) float32 {
	return p.Sub(r.Origin).Dot(r.Direction)
}

// DistanceTo is the distance from p to the infinite line through the ray.
func (r Ray) DistanceTo(p mgl32.Vec3) float32 {
	t := r.ProjectedDistance(p)
	return p.Sub(r.Point(t)).Len()
}

func (r Ray) Contains(p mgl32.Vec3) bool {
	if r.ProjectedDistance(p) < -rayEpsilon {
		return false
	}
	return r.DistanceTo(p) <= rayEpsilon
}

// Transformed maps the ray through an affine transform. The direction is
// re-normalized, so parameters along the result are world distances.
func (r Ray) Transformed(m mgl32.Mat4) Ray {
	origin := m.Mul4x1(r.Origin.Vec4(1)).Vec3()
	dir := m.Mul4x1(r.Direction.Vec4(0)).Vec3()
	if l := dir.Len(); l > 1e-12 {
		dir = dir.Mul(1.0 / l)
	}
	return Ray{Origin: origin, Direction: dir}
}
