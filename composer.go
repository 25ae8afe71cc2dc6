package diorama

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Composer runs an ordered list of passes each frame. Intermediate results
// ping-pong between two offscreen buffers; the last pass writes straight to
// the target image.
type Composer struct {
	passes  []Pass
	buffers [2]*ebiten.Image
	w, h    int

	timings []time.Duration
	timed   bool
}

// NewComposer creates a composer with offscreen buffers of w x h physical
// pixels.
func NewComposer(w, h int) *Composer {
	c := &Composer{}
	c.SetSize(w, h)
	return c
}

// AddPass appends p to the pass list.
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
	c.timings = append(c.timings, 0)
}

// Passes returns the pass list. The returned slice MUST NOT be mutated.
func (c *Composer) Passes() []Pass {
	return c.passes
}

// Size returns the buffer size in physical pixels.
func (c *Composer) Size() (w, h int) {
	return c.w, c.h
}

// SetSize resizes the offscreen buffers. Buffers are only reallocated when
// the size actually changes. Non-positive sizes are clamped to 1.
func (c *Composer) SetSize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == c.w && h == c.h && c.buffers[0] != nil {
		return
	}
	c.w, c.h = w, h
	for i := range c.buffers {
		if c.buffers[i] != nil {
			c.buffers[i].Deallocate()
		}
		c.buffers[i] = ebiten.NewImageWithOptions(
			image.Rect(0, 0, w, h),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	}
}

// SetTimed enables per-pass wall-clock timing (devMode stats).
func (c *Composer) SetTimed(enabled bool) {
	c.timed = enabled
}

// Timings returns the duration of each pass in the last Render when timing
// is enabled. The returned slice MUST NOT be mutated.
func (c *Composer) Timings() []time.Duration {
	return c.timings
}

// Render runs every pass in order, writing the final pass into target.
func (c *Composer) Render(target *ebiten.Image) {
	var src *ebiten.Image
	last := len(c.passes) - 1
	for i, p := range c.passes {
		dst := target
		if i != last {
			dst = c.buffers[i%2]
			dst.Clear()
		}
		var t0 time.Time
		if c.timed {
			t0 = time.Now()
		}
		p.Apply(src, dst)
		if c.timed {
			c.timings[i] = time.Since(t0)
		}
		src = dst
	}
}

// Dispose releases the offscreen buffers.
func (c *Composer) Dispose() {
	for i := range c.buffers {
		if c.buffers[i] != nil {
			c.buffers[i].Deallocate()
			c.buffers[i] = nil
		}
	}
	c.w, c.h = 0, 0
}
