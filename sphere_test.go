package raycast

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereIntersects(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{1, 1, 1}, Direction: mgl32.Vec3{0, 0, 1}}

	tests := []struct {
		name     string
		center   mgl32.Vec3
		radius   float32
		expected bool
		point    mgl32.Vec3
	}{
		{"origin inside", mgl32.Vec3{1, 1, 1}, 2, true, mgl32.Vec3{1, 1, 1}},
		{"too far off axis", mgl32.Vec3{4, 4, 5}, 1, false, mgl32.Vec3{}},
		{"tangent", mgl32.Vec3{0, 1, 3}, 1, true, mgl32.Vec3{1, 1, 3}},
		{"in front", mgl32.Vec3{1, 1, 10}, 2, true, mgl32.Vec3{1, 1, 8}},
		{"behind", mgl32.Vec3{1, 1, -10}, 2, false, mgl32.Vec3{}},
		{"origin on surface", mgl32.Vec3{1, 1, 3}, 2, true, mgl32.Vec3{1, 1, 1}},
		{"origin on surface pointing away", mgl32.Vec3{1, 1, -1}, 2, true, mgl32.Vec3{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSphere(tt.center, tt.radius)
			p, ok := s.Intersects(ray)
			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.InDelta(t, tt.point.X(), p.X(), 1e-5)
				assert.InDelta(t, tt.point.Y(), p.Y(), 1e-5)
				assert.InDelta(t, tt.point.Z(), p.Z(), 1e-5)
			}
		})
	}
}

func TestSphereMatchesLineDistance(t *testing.T) {
	ray, err := NewRay(mgl32.Vec3{-3, 0.5, 2}, mgl32.Vec3{1, 0.2, -0.1})
	require.NoError(t, err)

	for x := float32(-6); x <= 6; x += 1.5 {
		for y := float32(-3); y <= 3; y += 1.5 {
			for _, r := range []float32{0.5, 1, 2.5} {
				s := NewSphere(mgl32.Vec3{x, y, 1}, r)
				_, ok := s.Intersects(ray)

				inside := s.ContainsPoint(ray.Origin)
				closeEnough := ray.DistanceTo(s.Center) <= r
				ahead := ray.ProjectedDistance(s.Center) >= 0
				expected := inside || (closeEnough && ahead)
				assert.Equal(t, expected, ok, "sphere at %v r=%v", s.Center, r)
			}
		}
	}
}

func TestNewSphereDefaults(t *testing.T) {
	s := NewSphere(mgl32.Vec3{}, -3)
	assert.Equal(t, float32(0), s.Radius)
	assert.Equal(t, NullEntity, s.ID())

	s = NewSphere(mgl32.Vec3{}, 1, 42)
	assert.Equal(t, EntityId(42), s.ID())
}

func TestSphereExpandToContain(t *testing.T) {
	s := NewSphere(mgl32.Vec3{0, 0, 0}, 1)
	s.ExpandToContainPoint(mgl32.Vec3{3, 0, 0})
	assert.InDelta(t, 2.0, s.Radius, 1e-5)
	assert.InDelta(t, 1.0, s.Center.X(), 1e-5)

	// Already contained.
	s.ExpandToContainPoint(mgl32.Vec3{1, 0.5, 0})
	assert.InDelta(t, 2.0, s.Radius, 1e-5)

	a := NewSphere(mgl32.Vec3{0, 0, 0}, 1)
	a.ExpandToContain(NewSphere(mgl32.Vec3{0, 4, 0}, 1))
	assert.InDelta(t, 3.0, a.Radius, 1e-5)
	assert.InDelta(t, 2.0, a.Center.Y(), 1e-5)

	b := NewSphere(mgl32.Vec3{0, 0, 0}, 1)
	b.ExpandToContain(NewSphere(mgl32.Vec3{0.5, 0, 0}, 5))
	assert.Equal(t, float32(5), b.Radius)
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, b.Center)
}

func TestSphereFromPoints(t *testing.T) {
	points := []mgl32.Vec3{
		{-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}, {0.5, 0.5, 0.5},
	}
	s := SphereFromPoints(points, 7)
	assert.Equal(t, EntityId(7), s.ID())
	for _, p := range points {
		assert.LessOrEqual(t, p.Sub(s.Center).Len(), s.Radius+1e-4)
	}
	assert.InDelta(t, 1.0, s.Radius, 0.2)

	empty := SphereFromPoints(nil, 3)
	assert.Equal(t, float32(0), empty.Radius)
}

func TestSphereTransformed(t *testing.T) {
	s := NewSphere(mgl32.Vec3{1, 0, 0}, 2, 5)
	m := mgl32.Translate3D(0, 10, 0).Mul4(mgl32.Scale3D(1, 3, 2))
	out := s.Transformed(m)

	assert.Equal(t, EntityId(5), out.ID())
	assert.InDelta(t, 6.0, out.Radius, 1e-5)
	assert.InDelta(t, 1.0, out.Center.X(), 1e-5)
	assert.InDelta(t, 10.0, out.Center.Y(), 1e-5)
}
