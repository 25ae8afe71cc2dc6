package diorama

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ffffff")
	if err != nil {
		t.Fatal(err)
	}
	if c != ColorWhite {
		t.Errorf("white = %v, want %v", c, ColorWhite)
	}

	c, err = ParseHexColor("000000")
	if err != nil || c != ColorBlack {
		t.Errorf("black = %v, %v", c, err)
	}

	// sRGB mid-gray is about 0.214 linear.
	c, err = ParseHexColor("#808080")
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(c.R, 0.2158605, 1e-6) {
		t.Errorf("#808080 linear R = %v, want ~0.2159", c.R)
	}

	c, err = ParseHexColor("#ff000080")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 1 || !approxEqual(c.A, 128.0/255, epsilon) {
		t.Errorf("#ff000080 = %v", c)
	}
}

func TestParseHexColorErrors(t *testing.T) {
	for _, s := range []string{"", "#fff", "#gggggg", "#12345"} {
		if _, err := ParseHexColor(s); err == nil {
			t.Errorf("ParseHexColor(%q) should fail", s)
		}
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.02, 0.2, 0.5, 0.9, 1} {
		got := srgbToLinear(linearToSRGB(v))
		if !approxEqual(got, v, 1e-9) {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestColorRGBAPremultiplied(t *testing.T) {
	got := Color{1, 0.5, 0, 0.5}.RGBA()
	want := color.RGBA{128, 64, 0, 128}
	if got != want {
		t.Errorf("RGBA = %v, want %v", got, want)
	}
	if (Color{2, -1, 0, 1}).RGBA() != (color.RGBA{255, 0, 0, 255}) {
		t.Error("components should clamp")
	}
}

func TestColorLerp(t *testing.T) {
	got := ColorBlack.Lerp(ColorWhite, 0.25)
	if got != (Color{0.25, 0.25, 0.25, 1}) {
		t.Errorf("Lerp = %v", got)
	}
}

func TestToneMappingDisplay(t *testing.T) {
	c := Color{1, 0.2, 0, 0.5}

	if got, want := ToneMappingNone.Display(c, 3), c.SRGB(); got != want {
		t.Errorf("none = %v, want plain sRGB %v (exposure ignored)", got, want)
	}

	got := ToneMappingLinear.Display(c, 2)
	if !approxEqual(got.R, 1, epsilon) || !approxEqual(got.G, linearToSRGB(0.4), epsilon) {
		t.Errorf("linear x2 = %v", got)
	}

	got = ToneMappingReinhard.Display(c, 1)
	if !approxEqual(got.R, linearToSRGB(0.5), epsilon) {
		t.Errorf("reinhard R = %v, want %v", got.R, linearToSRGB(0.5))
	}

	got = ToneMappingACES.Display(c, 1)
	if !approxEqual(got.R, linearToSRGB(2.54/3.16), epsilon) {
		t.Errorf("aces R = %v, want %v", got.R, linearToSRGB(2.54/3.16))
	}
	if got.B != 0 {
		t.Errorf("aces of 0 = %v, want 0", got.B)
	}
	if got.A != c.A {
		t.Errorf("alpha = %v, want %v", got.A, c.A)
	}
}

func TestToneMappingNames(t *testing.T) {
	for name, tm := range toneMappingNames {
		got, err := ParseToneMapping(name)
		if err != nil || got != tm {
			t.Errorf("ParseToneMapping(%q) = %v, %v", name, got, err)
		}
		if tm.String() != name {
			t.Errorf("String() = %q, want %q", tm.String(), name)
		}
	}
	if got, err := ParseToneMapping(" ACES "); err != nil || got != ToneMappingACES {
		t.Errorf("ParseToneMapping is case- and space-insensitive, got %v %v", got, err)
	}
	if _, err := ParseToneMapping("filmic"); err == nil {
		t.Error("unknown tone mapping should fail")
	}
}
