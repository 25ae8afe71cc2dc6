package diorama

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type recordingPass struct {
	name     string
	src, dst *ebiten.Image
	calls    int
	log      *[]string
}

func (p *recordingPass) Apply(src, dst *ebiten.Image) {
	p.src, p.dst = src, dst
	p.calls++
	*p.log = append(*p.log, p.name)
}

func (p *recordingPass) Name() string { return p.name }

func TestComposerPassOrderAndPingPong(t *testing.T) {
	var order []string
	c := NewComposer(64, 32)
	defer c.Dispose()
	passes := []*recordingPass{
		{name: "render", log: &order},
		{name: "vignette", log: &order},
		{name: "fxaa", log: &order},
		{name: "output", log: &order},
	}
	for _, p := range passes {
		c.AddPass(p)
	}

	target := ebiten.NewImage(64, 32)
	c.Render(target)

	want := []string{"render", "vignette", "fxaa", "output"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	if passes[0].src != nil {
		t.Error("first pass should receive a nil src")
	}
	for i := 1; i < len(passes); i++ {
		if passes[i].src != passes[i-1].dst {
			t.Errorf("pass %d src is not pass %d dst", i, i-1)
		}
	}
	if passes[3].dst != target {
		t.Error("last pass should write to the target")
	}
	if passes[0].dst == target || passes[1].dst == target || passes[2].dst == target {
		t.Error("intermediate passes should write offscreen")
	}
	if passes[0].dst == passes[1].dst {
		t.Error("consecutive passes should alternate buffers")
	}
}

func TestComposerRendersEveryFrame(t *testing.T) {
	var order []string
	c := NewComposer(8, 8)
	defer c.Dispose()
	p := &recordingPass{name: "only", log: &order}
	c.AddPass(p)
	target := ebiten.NewImage(8, 8)
	for i := 0; i < 3; i++ {
		c.Render(target)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
	if p.dst != target {
		t.Error("a single pass writes straight to the target")
	}
}

func TestComposerSetSize(t *testing.T) {
	c := NewComposer(100, 50)
	defer c.Dispose()
	buf := c.buffers[0]

	c.SetSize(100, 50)
	if c.buffers[0] != buf {
		t.Error("same size should not reallocate")
	}

	c.SetSize(200, 80)
	if w, h := c.Size(); w != 200 || h != 80 {
		t.Errorf("Size = %dx%d, want 200x80", w, h)
	}
	if b := c.buffers[1].Bounds(); b.Dx() != 200 || b.Dy() != 80 {
		t.Errorf("buffer = %v, want 200x80", b)
	}

	c.SetSize(0, -5)
	if w, h := c.Size(); w != 1 || h != 1 {
		t.Errorf("Size = %dx%d, want clamped to 1x1", w, h)
	}
}

func TestComposerTimings(t *testing.T) {
	var order []string
	c := NewComposer(8, 8)
	defer c.Dispose()
	c.AddPass(&recordingPass{name: "a", log: &order})
	c.AddPass(&recordingPass{name: "b", log: &order})
	if len(c.Timings()) != 2 {
		t.Fatalf("timings = %d, want one per pass", len(c.Timings()))
	}
	c.SetTimed(true)
	c.Render(ebiten.NewImage(8, 8))
	for i, d := range c.Timings() {
		if d < 0 {
			t.Errorf("timing %d = %v, want >= 0", i, d)
		}
	}
}

func TestFXAAResolution(t *testing.T) {
	p := NewFXAAPass(1280, 720, 1)
	if !approxEqual(p.Resolution[0], 1.0/1280, epsilon) || !approxEqual(p.Resolution[1], 1.0/720, epsilon) {
		t.Errorf("Resolution = %v, want (1/1280, 1/720)", p.Resolution)
	}

	p.SetResolution(800, 600, 2)
	if !approxEqual(p.Resolution[0], 1.0/1600, epsilon) || !approxEqual(p.Resolution[1], 1.0/1200, epsilon) {
		t.Errorf("Resolution = %v, want (1/1600, 1/1200)", p.Resolution)
	}

	p.SetResolution(0, 600, 2)
	if !approxEqual(p.Resolution[0], 1.0/1600, epsilon) {
		t.Error("zero-width resize should be ignored")
	}
}

func TestPassNames(t *testing.T) {
	s := newTestScene()
	passes := []Pass{
		NewRenderPass(s),
		NewVignettePass(1, 1.1),
		NewFXAAPass(1, 1, 1),
		NewOutputPass(ToneMappingACES, 1),
	}
	want := []string{"render", "vignette", "fxaa", "output"}
	for i, p := range passes {
		if p.Name() != want[i] {
			t.Errorf("pass %d name = %q, want %q", i, p.Name(), want[i])
		}
	}
}

func TestViewport(t *testing.T) {
	v := Viewport{Width: 640, Height: 360, PixelRatio: 1.5}
	if w, h := v.PhysicalSize(); w != 960 || h != 540 {
		t.Errorf("PhysicalSize = %dx%d, want 960x540", w, h)
	}
	if !approxEqual(v.Aspect(), 16.0/9.0, epsilon) {
		t.Errorf("Aspect = %v, want 16/9", v.Aspect())
	}
	if (Viewport{}).Aspect() != 1 || !(Viewport{}).Empty() {
		t.Error("zero viewport should be empty with aspect 1")
	}
}

func TestClampPixelRatio(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1, 1},
		{1.25, 1.25},
		{2, 2},
		{3, 2},
		{0, 1},
		{-1, 1},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		if got := clampPixelRatio(tt.in); got != tt.want {
			t.Errorf("clampPixelRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
