package diorama

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	// FadeStep is the interval between opacity decrements.
	FadeStep = 30 * time.Millisecond
	// FadeDecrement is subtracted from the opacity every FadeStep.
	FadeDecrement = 0.05

	preloaderFontSize = 18
)

// fadeSteps is the number of steps from opaque to transparent.
var fadeSteps = int(math.Ceil(1 / FadeDecrement))

// Preloader is the loading overlay. It covers the scene with the background
// color and a progress line until the model is attached, then fades out over
// fixed steps and stays hidden.
//
// All methods are safe on a nil *Preloader and do nothing.
type Preloader struct {
	background  Color
	toneMapping ToneMapping
	exposure    float64
	label       string
	opacity     float64
	hidden      bool

	fade    *gween.Tween
	pending time.Duration
	steps   int

	face    *text.GoTextFace
	faceErr error
}

// NewPreloader creates a visible, opaque preloader over background (linear).
func NewPreloader(background Color) *Preloader {
	return &Preloader{
		background: background,
		exposure:   1,
		label:      progressLabel(0),
		opacity:    1,
	}
}

func progressLabel(ratio float64) string {
	pct := int(math.Floor(clamp01(ratio) * 100))
	return fmt.Sprintf("Progress: %d%%", pct)
}

// Visible reports whether the overlay is still drawn.
func (p *Preloader) Visible() bool {
	return p != nil && !p.hidden
}

// Hidden reports whether the fade has finished.
func (p *Preloader) Hidden() bool {
	return p != nil && p.hidden
}

// Fading reports whether the fade-out has started but not finished.
func (p *Preloader) Fading() bool {
	return p != nil && p.fade != nil && !p.hidden
}

// Opacity returns the overlay opacity in [0, 1].
func (p *Preloader) Opacity() float64 {
	if p == nil || p.hidden {
		return 0
	}
	return p.opacity
}

// Label returns the progress text.
func (p *Preloader) Label() string {
	if p == nil {
		return ""
	}
	return p.label
}

// Steps returns the number of fade steps applied so far.
func (p *Preloader) Steps() int {
	if p == nil {
		return 0
	}
	return p.steps
}

// SetProgress updates the label to the given load ratio. Ignored once the
// fade has started.
func (p *Preloader) SetProgress(ratio float64) {
	if p == nil || p.fade != nil {
		return
	}
	p.label = progressLabel(ratio)
}

// SetBackground changes the overlay color (linear).
func (p *Preloader) SetBackground(c Color) {
	if p == nil {
		return
	}
	p.background = c
}

// SetToneMapping sets the curve used to display the background, so the
// overlay matches the scene background drawn through OutputPass.
func (p *Preloader) SetToneMapping(tm ToneMapping, exposure float64) {
	if p == nil {
		return
	}
	p.toneMapping = tm
	p.exposure = exposure
}

// DisplayBackground returns the overlay color as drawn, before opacity.
func (p *Preloader) DisplayBackground() Color {
	if p == nil {
		return Color{}
	}
	return p.toneMapping.Display(p.background, p.exposure)
}

// Complete starts the fade-out. Repeated calls are ignored.
func (p *Preloader) Complete() {
	if p == nil || p.fade != nil {
		return
	}
	p.label = progressLabel(1)
	p.fade = gween.New(float32(p.opacity), 0, float32(fadeSteps), ease.Linear)
}

// Advance moves the fade forward by elapsed wall-clock time, one
// FadeDecrement per whole FadeStep. Before Complete it does nothing.
func (p *Preloader) Advance(elapsed time.Duration) {
	if p == nil || p.fade == nil || p.hidden || elapsed <= 0 {
		return
	}
	p.pending += elapsed
	for p.pending >= FadeStep && !p.hidden {
		p.pending -= FadeStep
		p.Tick()
	}
}

// Tick applies a single fade step.
func (p *Preloader) Tick() {
	if p == nil || p.fade == nil || p.hidden {
		return
	}
	v, done := p.fade.Update(1)
	p.steps++
	p.opacity = float64(v)
	if done || p.opacity <= 0 {
		p.opacity = 0
		p.hidden = true
	}
}

// Draw paints the overlay over dst. scale is the device pixel ratio used to
// size the text.
func (p *Preloader) Draw(dst *ebiten.Image, scale float64) {
	if !p.Visible() || p.opacity <= 0 {
		return
	}
	bg := p.DisplayBackground()
	bg.A = p.opacity
	dst.Fill(bg.RGBA())

	b := dst.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2

	face := p.fontFace(scale)
	if face == nil {
		ebitenutil.DebugPrintAt(dst, p.label, int(cx)-len(p.label)*3, int(cy)-8)
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(cx, cy)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(color.White)
	op.ColorScale.ScaleAlpha(float32(p.opacity))
	text.Draw(dst, p.label, face, op)
}

// fontFace returns the label face at the given scale, creating the font
// source on first use. Returns nil if the font cannot be parsed.
func (p *Preloader) fontFace(scale float64) *text.GoTextFace {
	if p.faceErr != nil {
		return nil
	}
	if p.face == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			p.faceErr = err
			return nil
		}
		p.face = &text.GoTextFace{Source: src}
	}
	p.face.Size = preloaderFontSize * max(scale, 1)
	return p.face
}
