package diorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera. Its orientation always looks at Target,
// which the follow controller pins to the world origin every frame.
type Camera struct {
	// Position is the world-space eye position.
	Position mgl64.Vec3
	// Target is the world-space point the camera looks at.
	Target mgl64.Vec3
	// Up is the world-space up direction used to build the view matrix.
	Up mgl64.Vec3

	// FOV is the vertical field of view in degrees.
	FOV float64
	// Aspect is viewport width divided by height.
	Aspect float64
	// Near and Far are the clip plane distances.
	Near, Far float64

	viewMatrix mgl64.Mat4
	projMatrix mgl64.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a perspective camera at the origin looking down -Z.
func NewCamera(fov, aspect, near, far float64) *Camera {
	return &Camera{
		Target:    mgl64.Vec3{0, 0, -1},
		Up:        mgl64.Vec3{0, 1, 0},
		FOV:       fov,
		Aspect:    aspect,
		Near:      near,
		Far:       far,
		viewDirty: true,
		projDirty: true,
	}
}

// SetPosition moves the eye.
func (c *Camera) SetPosition(p mgl64.Vec3) {
	if c.Position != p {
		c.Position = p
		c.viewDirty = true
	}
}

// LookAt orients the camera toward the given world point.
func (c *Camera) LookAt(target mgl64.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetAspect updates the aspect ratio and marks the projection for rebuild.
// Non-positive values are ignored.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || aspect == c.Aspect {
		return
	}
	c.Aspect = aspect
	c.projDirty = true
}

// UpdateProjectionMatrix forces the projection to be recomputed. Call this
// after modifying FOV, Near or Far directly.
func (c *Camera) UpdateProjectionMatrix() {
	c.projDirty = true
}

// MarkDirty forces a recomputation of the view matrix. Call this after
// modifying Position, Target or Up directly.
func (c *Camera) MarkDirty() {
	c.viewDirty = true
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	if c.viewDirty {
		c.viewMatrix = mgl64.LookAtV(c.Position, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	if c.projDirty {
		c.projMatrix = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// ViewDepth returns the distance of world point p in front of the camera
// along its viewing axis. Negative values are behind the camera.
func (c *Camera) ViewDepth(p mgl64.Vec3) float64 {
	v := c.View().Mul4x1(p.Vec4(1))
	return -v.Z()
}

// ScreenPoint is a projected vertex in viewport pixels.
type ScreenPoint struct {
	X, Y  float64
	Depth float64 // view-space distance along the camera axis
}

// WorldToScreen projects world point p into a viewport of (w, h) pixels.
// ok is false when the point lies behind the near plane.
func (c *Camera) WorldToScreen(p mgl64.Vec3, w, h float64) (pt ScreenPoint, ok bool) {
	return projectPoint(c.ViewProjection(), c.View(), p, w, h, c.Near)
}

func projectPoint(viewProj, view mgl64.Mat4, p mgl64.Vec3, w, h, near float64) (ScreenPoint, bool) {
	depth := -view.Mul4x1(p.Vec4(1)).Z()
	if depth < near {
		return ScreenPoint{Depth: depth}, false
	}
	clip := viewProj.Mul4x1(p.Vec4(1))
	if clip.W() == 0 {
		return ScreenPoint{Depth: depth}, false
	}
	nx := clip.X() / clip.W()
	ny := clip.Y() / clip.W()
	return ScreenPoint{
		X:     (nx + 1) * 0.5 * w,
		Y:     (1 - ny) * 0.5 * h,
		Depth: depth,
	}, true
}

// --- Follow ---

// Follow angle scale applied to the normalized pointer X before orbiting.
const followOrbitScale = math.Pi * 0.035

// followHeightScale is how far the normalized pointer Y raises the target.
const followHeightScale = 0.15

// DefaultFollowLerp is the per-frame smoothing factor toward the target.
const DefaultFollowLerp = 0.05

// FollowController eases the camera toward a pointer-driven orbit position.
// ScrollXZ is the orbit radius in the XZ plane and ScrollY the base height;
// both are fixed at startup.
type FollowController struct {
	ScrollXZ float64
	ScrollY  float64
	Offset   mgl64.Vec3
	// Lerp is the fraction of the remaining distance covered each frame.
	// The step is not scaled by frame time.
	Lerp float64
}

// Target returns the camera target position for the given pointer state.
func (f *FollowController) Target(p PointerState) mgl64.Vec3 {
	angle := p.X * followOrbitScale
	return mgl64.Vec3{
		f.Offset.X() + f.ScrollXZ*math.Cos(angle),
		f.Offset.Y() + f.ScrollY + p.Y*followHeightScale,
		f.Offset.Z() + f.ScrollXZ*math.Sin(angle),
	}
}

// Step advances cam one frame toward the target for p and re-aims it at
// the world origin.
func (f *FollowController) Step(cam *Camera, p PointerState) {
	target := f.Target(p)
	pos := cam.Position
	cam.SetPosition(mgl64.Vec3{
		pos.X() + (target.X()-pos.X())*f.Lerp,
		pos.Y() + (target.Y()-pos.Y())*f.Lerp,
		pos.Z() + (target.Z()-pos.Z())*f.Lerp,
	})
	cam.LookAt(mgl64.Vec3{})
}
