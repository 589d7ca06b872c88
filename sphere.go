package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a spherical bounding volume.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
	Id     EntityId
}

// NewSphere clamps negative radii to zero. The id is optional and defaults
// to NullEntity.
func NewSphere(center mgl32.Vec3, radius float32, id ...EntityId) *Sphere {
	s := &Sphere{Center: center, Radius: max(radius, 0)}
	if len(id) > 0 {
		s.Id = id[0]
	}
	return s
}

func (s *Sphere) ID() EntityId {
	return s.Id
}

// IntersectDistance returns the ray parameter of the first hit. An origin
// inside (or on) the sphere hits at t = 0.
func (s *Sphere) IntersectDistance(ray Ray) (float32, bool) {
	m := ray.Origin.Sub(s.Center)
	c := m.Dot(m) - s.Radius*s.Radius
	b := m.Dot(ray.Direction)

	// Origin outside and pointing away.
	if c > 0 && b > 0 {
		return 0, false
	}

	discr := b*b - c
	if discr < 0 {
		return 0, false
	}

	t := -b - float32(math.Sqrt(float64(discr)))
	if t < 0 {
		t = 0
	}
	return t, true
}

func (s *Sphere) Intersects(ray Ray) (mgl32.Vec3, bool) {
	t, ok := s.IntersectDistance(ray)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return ray.Point(t), true
}

func (s *Sphere) ContainsPoint(p mgl32.Vec3) bool {
	d := p.Sub(s.Center)
	return d.Dot(d) <= s.Radius*s.Radius
}

// ExpandToContainPoint grows the sphere just enough to enclose p, moving the
// center toward it.
func (s *Sphere) ExpandToContainPoint(p mgl32.Vec3) {
	d := p.Sub(s.Center)
	dist := d.Len()
	if dist <= s.Radius {
		return
	}
	newRadius := (s.Radius + dist) * 0.5
	s.Center = s.Center.Add(d.Mul((newRadius - s.Radius) / dist))
	s.Radius = newRadius
}

func (s *Sphere) ExpandToContain(other *Sphere) {
	d := other.Center.Sub(s.Center)
	dist := d.Len()
	if dist+other.Radius <= s.Radius {
		return
	}
	if dist+s.Radius <= other.Radius {
		s.Center = other.Center
		s.Radius = other.Radius
		return
	}
	newRadius := (s.Radius + dist + other.Radius) * 0.5
	s.Center = s.Center.Add(d.Mul((newRadius - s.Radius) / dist))
	s.Radius = newRadius
}

// Transformed returns the sphere under m. Non-uniform scales grow the radius
// by the largest axis factor so the result still bounds the shape.
func (s *Sphere) Transformed(m mgl32.Mat4) *Sphere {
	center := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	scale := max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
	return &Sphere{Center: center, Radius: s.Radius * scale, Id: s.Id}
}

// SphereFromPoints builds a bounding sphere with Ritter's algorithm.
func SphereFromPoints(points []mgl32.Vec3, id EntityId) *Sphere {
	if len(points) == 0 {
		return &Sphere{Id: id}
	}

	// Most separated pair among the axis extremes seeds the sphere.
	var minIdx, maxIdx [3]int
	for i, p := range points {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < points[minIdx[axis]][axis] {
				minIdx[axis] = i
			}
			if p[axis] > points[maxIdx[axis]][axis] {
				maxIdx[axis] = i
			}
		}
	}
	lo, hi := points[minIdx[0]], points[maxIdx[0]]
	span := hi.Sub(lo)
	best := span.Dot(span)
	for axis := 1; axis < 3; axis++ {
		a, b := points[minIdx[axis]], points[maxIdx[axis]]
		span = b.Sub(a)
		if d := span.Dot(span); d > best {
			lo, hi, best = a, b, d
		}
	}

	s := &Sphere{
		Center: lo.Add(hi).Mul(0.5),
		Radius: float32(math.Sqrt(float64(best))) * 0.5,
		Id:     id,
	}
	for _, p := range points {
		s.ExpandToContainPoint(p)
	}
	return s
}
