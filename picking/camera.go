package picking

import (
	"errors"
	"fmt"

	"github.com/gekko3d/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrOutsideViewport = errors.New("pointer outside viewport")

type Camera struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// NewPerspectiveCamera looks from eye at center with a vertical fov in degrees.
func NewPerspectiveCamera(eye, center, up mgl32.Vec3, fovDeg, aspect, near, far float32) Camera {
	return Camera{
		View:       mgl32.LookAtV(eye, center, up),
		Projection: mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far),
	}
}

// Viewport is a pixel rectangle in window coordinates, origin top-left.
type Viewport struct {
	X, Y          int
	Width, Height int
}

func (v Viewport) Contains(x, y float32) bool {
	return x >= float32(v.X) && x <= float32(v.X+v.Width) &&
		y >= float32(v.Y) && y <= float32(v.Y+v.Height)
}

// RayFromViewport un-projects the pointer at the near and far planes.
func RayFromViewport(cam Camera, vp Viewport, x, y float32) (raycast.Ray, error) {
	if vp.Width <= 0 || vp.Height <= 0 || !vp.Contains(x, y) {
		return raycast.Ray{}, ErrOutsideViewport
	}

	// UnProject measures y from the bottom.
	winX := x
	winY := float32(vp.Height) - (y - float32(vp.Y))

	near, err := mgl32.UnProject(mgl32.Vec3{winX, winY, 0}, cam.View, cam.Projection, vp.X, 0, vp.Width, vp.Height)
	if err != nil {
		return raycast.Ray{}, fmt.Errorf("unproject near: %w", err)
	}
	far, err := mgl32.UnProject(mgl32.Vec3{winX, winY, 1}, cam.View, cam.Projection, vp.X, 0, vp.Width, vp.Height)
	if err != nil {
		return raycast.Ray{}, fmt.Errorf("unproject far: %w", err)
	}
	return raycast.NewRay(near, far.Sub(near))
}
