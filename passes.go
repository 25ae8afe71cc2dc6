package diorama

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Pass is one step of the post-processing pipeline.
type Pass interface {
	// Apply renders src into dst. The first pass of a pipeline receives a
	// nil src.
	Apply(src, dst *ebiten.Image)
	// Name identifies the pass in logs and stats.
	Name() string
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Ebitengine uses premultiplied alpha;
// shaders un-premultiply before processing and re-premultiply the output.

const vignetteShaderSrc = `//kage:unit pixels
package main

var Offset float
var Darkness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	rgb := c.rgb
	if c.a > 0 {
		rgb /= c.a
	}
	uv := ((src-imageSrc0Origin())/imageSrc0Size() - 0.5) * Offset
	rgb = mix(rgb, vec3(1.0-Darkness), dot(uv, uv))
	return vec4(rgb*c.a, c.a)
}
`

const fxaaShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func luma(c vec3) float {
	return dot(c, vec3(0.299, 0.587, 0.114))
}

func sampleAt(p vec2) vec3 {
	o := imageSrc0Origin()
	s := imageSrc0Size()
	return imageSrc0At(clamp(p, o+0.5, o+s-0.5)).rgb
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	texel := Resolution * imageSrc0Size()
	m := imageSrc0At(src)

	lumaNW := luma(sampleAt(src + vec2(-1, -1)*texel))
	lumaNE := luma(sampleAt(src + vec2(1, -1)*texel))
	lumaSW := luma(sampleAt(src + vec2(-1, 1)*texel))
	lumaSE := luma(sampleAt(src + vec2(1, 1)*texel))
	lumaM := luma(m.rgb)

	lumaMin := min(lumaM, min(min(lumaNW, lumaNE), min(lumaSW, lumaSE)))
	lumaMax := max(lumaM, max(max(lumaNW, lumaNE), max(lumaSW, lumaSE)))

	dir := vec2(-((lumaNW + lumaNE) - (lumaSW + lumaSE)), (lumaNW + lumaSW) - (lumaNE + lumaSE))
	dirReduce := max((lumaNW+lumaNE+lumaSW+lumaSE)*(0.25/8.0), 1.0/128.0)
	rcpDirMin := 1.0 / (min(abs(dir.x), abs(dir.y)) + dirReduce)
	dir = clamp(dir*rcpDirMin, vec2(-8.0), vec2(8.0)) * texel

	rgbA := 0.5 * (sampleAt(src+dir*(1.0/3.0-0.5)) + sampleAt(src+dir*(2.0/3.0-0.5)))
	rgbB := rgbA*0.5 + 0.25*(sampleAt(src+dir*(-0.5))+sampleAt(src+dir*0.5))
	lumaB := luma(rgbB)
	if lumaB < lumaMin || lumaB > lumaMax {
		return vec4(rgbA, m.a)
	}
	return vec4(rgbB, m.a)
}
`

const outputShaderSrc = `//kage:unit pixels
package main

var Mode float
var Exposure float

func aces(x vec3) vec3 {
	return clamp((x*(2.51*x+0.03))/(x*(2.43*x+0.59)+0.14), 0, 1)
}

func toSRGB(c vec3) vec3 {
	lo := c * 12.92
	hi := 1.055*pow(c, vec3(1.0/2.4)) - 0.055
	return mix(lo, hi, step(vec3(0.0031308), c))
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	rgb := c.rgb
	if c.a > 0 {
		rgb /= c.a
	}
	if Mode == 1 {
		rgb *= Exposure
	} else if Mode == 2 {
		rgb *= Exposure
		rgb = rgb / (1.0 + rgb)
	} else if Mode == 3 {
		rgb = aces(rgb * Exposure)
	}
	rgb = toSRGB(clamp(rgb, 0, 1))
	return vec4(rgb*c.a, c.a)
}
`

// --- Lazy shader compilation (no sync.Once, rendering is single-threaded) ---

var (
	vignetteShader *ebiten.Shader
	fxaaShader     *ebiten.Shader
	outputShader   *ebiten.Shader
)

func ensureShader(slot **ebiten.Shader, name, src string) *ebiten.Shader {
	if *slot == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("diorama: failed to compile " + name + " shader: " + err.Error())
		}
		*slot = s
	}
	return *slot
}

// --- RenderPass ---

// RenderPass rasterizes the scene from its camera. It ignores src.
type RenderPass struct {
	scene  *Scene
	raster rasterizer
}

// NewRenderPass creates the geometry pass for scene.
func NewRenderPass(scene *Scene) *RenderPass {
	return &RenderPass{scene: scene}
}

// Apply clears dst to the scene background and draws the scene into it.
func (p *RenderPass) Apply(_, dst *ebiten.Image) {
	p.raster.render(dst, p.scene)
}

// Name returns "render".
func (p *RenderPass) Name() string { return "render" }

// Stats returns the counters of the last Apply.
func (p *RenderPass) Stats() RenderStats {
	return p.raster.stats
}

// --- VignettePass ---

// VignettePass darkens the frame toward its edges. Offset scales the
// vignette radius and Darkness sets the edge color (1 - Darkness).
type VignettePass struct {
	Offset   float64
	Darkness float64
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewVignettePass creates a vignette pass.
func NewVignettePass(offset, darkness float64) *VignettePass {
	return &VignettePass{
		Offset:   offset,
		Darkness: darkness,
		uniforms: make(map[string]any, 2),
	}
}

// Apply renders src into dst with the vignette applied.
func (p *VignettePass) Apply(src, dst *ebiten.Image) {
	shader := ensureShader(&vignetteShader, "vignette", vignetteShaderSrc)
	p.uniforms["Offset"] = float32(p.Offset)
	p.uniforms["Darkness"] = float32(p.Darkness)
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

// Name returns "vignette".
func (p *VignettePass) Name() string { return "vignette" }

// --- FXAAPass ---

// FXAAPass applies fast approximate anti-aliasing. Resolution holds the
// reciprocal of the physical frame size and must be refreshed with
// SetResolution whenever the viewport size or pixel ratio changes.
type FXAAPass struct {
	Resolution [2]float64
	resF32     [2]float32
	resSlice   []float32
	uniforms   map[string]any
	shaderOp   ebiten.DrawRectShaderOptions
}

// NewFXAAPass creates an FXAA pass for a w x h viewport at pixelRatio.
func NewFXAAPass(w, h, pixelRatio float64) *FXAAPass {
	p := &FXAAPass{uniforms: make(map[string]any, 1)}
	p.resSlice = p.resF32[:]
	p.uniforms["Resolution"] = p.resSlice
	p.SetResolution(w, h, pixelRatio)
	return p
}

// SetResolution sets Resolution to (1/(w*pixelRatio), 1/(h*pixelRatio)).
// Zero-area sizes are ignored.
func (p *FXAAPass) SetResolution(w, h, pixelRatio float64) {
	pw, ph := w*pixelRatio, h*pixelRatio
	if pw <= 0 || ph <= 0 {
		return
	}
	p.Resolution = [2]float64{1 / pw, 1 / ph}
}

// Apply renders an anti-aliased copy of src into dst.
func (p *FXAAPass) Apply(src, dst *ebiten.Image) {
	shader := ensureShader(&fxaaShader, "fxaa", fxaaShaderSrc)
	p.resF32[0] = float32(p.Resolution[0])
	p.resF32[1] = float32(p.Resolution[1])
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

// Name returns "fxaa".
func (p *FXAAPass) Name() string { return "fxaa" }

// --- OutputPass ---

// OutputPass applies tone mapping and converts linear color to sRGB for
// display.
type OutputPass struct {
	ToneMapping ToneMapping
	Exposure    float64
	uniforms    map[string]any
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewOutputPass creates an output pass.
func NewOutputPass(tm ToneMapping, exposure float64) *OutputPass {
	return &OutputPass{
		ToneMapping: tm,
		Exposure:    exposure,
		uniforms:    make(map[string]any, 2),
	}
}

// Apply renders the display-ready frame from src into dst.
func (p *OutputPass) Apply(src, dst *ebiten.Image) {
	shader := ensureShader(&outputShader, "output", outputShaderSrc)
	p.uniforms["Mode"] = float32(p.ToneMapping)
	p.uniforms["Exposure"] = float32(p.Exposure)
	b := src.Bounds()
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &p.shaderOp)
}

// Name returns "output".
func (p *OutputPass) Name() string { return "output" }
