package diorama

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color represents a linear-space RGBA color with components in [0, 1].
// Not premultiplied. Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is full-intensity white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black.
var ColorBlack = Color{0, 0, 0, 1}

// Scale multiplies the RGB components by k. Alpha is preserved.
func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k, c.A}
}

// Mul multiplies two colors component-wise (RGB only). Alpha is taken from c.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A}
}

// Add sums the RGB components of two colors. Alpha is taken from c.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Lerp blends from c toward o by t. t=0 returns c, t=1 returns o (RGB only).
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A,
	}
}

// RGBA converts the color to a premultiplied color.RGBA, clamping each
// component to [0, 1]. No transfer function is applied.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// SRGB returns the color encoded with the sRGB transfer function, for
// drawing directly to the display after the output pass.
func (c Color) SRGB() Color {
	return Color{linearToSRGB(clamp01(c.R)), linearToSRGB(clamp01(c.G)), linearToSRGB(clamp01(c.B)), c.A}
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" as an sRGB color and returns
// it converted to linear space. The leading '#' is optional.
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	a := 1.0
	if len(h) == 8 {
		a = float64(v&0xff) / 255
		v >>= 8
	}
	return Color{
		R: srgbToLinear(float64((v>>16)&0xff) / 255),
		G: srgbToLinear(float64((v>>8)&0xff) / 255),
		B: srgbToLinear(float64(v&0xff) / 255),
		A: a,
	}, nil
}

// srgbToLinear applies the inverse sRGB transfer function to one channel.
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// linearToSRGB applies the sRGB transfer function to one channel.
func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToneMapping selects the curve OutputPass applies before sRGB encoding.
type ToneMapping uint8

const (
	ToneMappingNone     ToneMapping = iota // clamp only
	ToneMappingLinear                      // exposure scale, then clamp
	ToneMappingReinhard                    // c / (1 + c)
	ToneMappingACES                        // ACES filmic fit
)

var toneMappingNames = map[string]ToneMapping{
	"none":     ToneMappingNone,
	"linear":   ToneMappingLinear,
	"reinhard": ToneMappingReinhard,
	"aces":     ToneMappingACES,
}

// String returns the config name of the tone mapping.
func (t ToneMapping) String() string {
	for name, v := range toneMappingNames {
		if v == t {
			return name
		}
	}
	return "ToneMapping(" + strconv.Itoa(int(t)) + ")"
}

// ParseToneMapping returns the ToneMapping for a config name.
func ParseToneMapping(s string) (ToneMapping, error) {
	t, ok := toneMappingNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown tone mapping %q", s)
	}
	return t, nil
}

// Display maps an opaque linear color through t and encodes it as sRGB, the
// same curve OutputPass applies per pixel. Alpha is passed through.
func (t ToneMapping) Display(c Color, exposure float64) Color {
	curve := func(v float64) float64 {
		switch t {
		case ToneMappingLinear:
			v *= exposure
		case ToneMappingReinhard:
			v *= exposure
			v /= 1 + v
		case ToneMappingACES:
			v *= exposure
			v = clamp01((v * (2.51*v + 0.03)) / (v*(2.43*v+0.59) + 0.14))
		}
		return linearToSRGB(clamp01(v))
	}
	return Color{curve(c.R), curve(c.G), curve(c.B), c.A}
}
