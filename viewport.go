package diorama

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// MaxPixelRatio caps the device pixel ratio used for rendering.
const MaxPixelRatio = 2.0

// Viewport is the drawable area in logical pixels plus the device pixel
// ratio used to size the physical render buffers.
type Viewport struct {
	Width, Height float64
	PixelRatio    float64
}

// PhysicalSize returns the buffer size in device pixels.
func (v Viewport) PhysicalSize() (w, h int) {
	return int(math.Round(v.Width * v.PixelRatio)), int(math.Round(v.Height * v.PixelRatio))
}

// Aspect returns width divided by height, or 1 for an empty viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0 || v.PixelRatio <= 0
}

// clampPixelRatio bounds a reported device scale factor to (0, MaxPixelRatio].
// Non-positive values fall back to 1.
func clampPixelRatio(r float64) float64 {
	if r <= 0 || math.IsNaN(r) {
		return 1
	}
	return math.Min(r, MaxPixelRatio)
}

// monitorPixelRatio reads the current monitor's device scale factor.
func monitorPixelRatio() float64 {
	m := ebiten.Monitor()
	if m == nil {
		return 1
	}
	return clampPixelRatio(m.DeviceScaleFactor())
}
