package raycast

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAABBIntersects(t *testing.T) {
	box := NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, -1}, 9)
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, box.Min)
	assert.Equal(t, EntityId(9), box.ID())

	tests := []struct {
		name     string
		ray      Ray
		expected bool
		t        float32
	}{
		{"hit front", Ray{mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1}}, true, 4},
		{"miss beside", Ray{mgl32.Vec3{3, 0, -5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"behind", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"origin inside", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 0},
		{"parallel outside slab", Ray{mgl32.Vec3{0, 2, -5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"grazing edge", Ray{mgl32.Vec3{1, 1, -5}, mgl32.Vec3{0, 0, 1}}, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := box.IntersectDistance(tt.ray)
			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.InDelta(t, tt.t, d, 1e-5)
				p, ok := box.Intersects(tt.ray)
				assert.True(t, ok)
				assert.Equal(t, tt.ray.Point(d), p)
			}
		})
	}
}

func TestAABBFromSphereAndUnion(t *testing.T) {
	s := NewSphere(mgl32.Vec3{1, 2, 3}, 1, 4)
	box := AABBFromSphere(s)
	assert.Equal(t, mgl32.Vec3{0, 1, 2}, box.Min)
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, box.Max)
	assert.Equal(t, EntityId(4), box.ID())
	assert.Equal(t, *box, *s.Bounds())

	u := box.Union(NewAABB(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{0, 0, 0}))
	assert.Equal(t, mgl32.Vec3{-5, 0, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, u.Max)
	assert.Equal(t, mgl32.Vec3{-1.5, 1.5, 2}, u.Center())
}
