package diorama

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is redrawn.
const fpsRefresh = 500 * time.Millisecond

// fpsOverlay draws the current FPS and TPS in the top-left corner (devMode).
// The text is rendered into a small cached image every fpsRefresh.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed time.Duration
	stale   bool
	op      ebiten.DrawImageOptions
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsOverlay{img: ebiten.NewImage(100, 32), stale: true}
}

func (o *fpsOverlay) update(dt time.Duration) {
	if o == nil {
		return
	}
	o.elapsed += dt
	if o.elapsed >= fpsRefresh {
		o.elapsed = 0
		o.stale = true
	}
}

func (o *fpsOverlay) draw(dst *ebiten.Image, scale float64) {
	if o == nil {
		return
	}
	if o.stale {
		o.stale = false
		o.img.Clear()
		// Semi-transparent background for readability
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	o.op.GeoM.Reset()
	o.op.GeoM.Scale(scale, scale)
	o.op.GeoM.Translate(4*scale, 4*scale)
	dst.DrawImage(o.img, &o.op)
}
