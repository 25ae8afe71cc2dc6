package diorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightType identifies how a Light contributes to shading.
type LightType uint8

const (
	LightAmbient     LightType = iota // uniform light from every direction
	LightDirectional                  // parallel rays from Position toward Target
	LightPoint                        // omnidirectional light at Position
)

var lightTypeNames = map[string]LightType{
	"ambient":     LightAmbient,
	"directional": LightDirectional,
	"point":       LightPoint,
}

// String returns the config name of the light type.
func (t LightType) String() string {
	for name, v := range lightTypeNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// Light is a light source in the scene. Lights are created at startup and
// not modified while the scene animates, except for ambient intensity on
// config reload.
type Light struct {
	Type LightType
	// Color is the linear-space light color.
	Color Color
	// Intensity scales Color.
	Intensity float64
	// Position is the world-space light position (directional and point).
	Position mgl64.Vec3
	// Target is the point a directional light shines toward.
	Target mgl64.Vec3
	// Distance is the point light cutoff range. Zero means unlimited.
	Distance float64
	// Decay is the point light falloff exponent.
	Decay float64
	// Enabled determines whether this light contributes to shading.
	Enabled bool
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(c Color, intensity float64) *Light {
	return &Light{Type: LightAmbient, Color: c, Intensity: intensity, Enabled: true}
}

// NewDirectionalLight creates a directional light shining from position
// toward target.
func NewDirectionalLight(c Color, intensity float64, position, target mgl64.Vec3) *Light {
	return &Light{
		Type:      LightDirectional,
		Color:     c,
		Intensity: intensity,
		Position:  position,
		Target:    target,
		Enabled:   true,
	}
}

// NewPointLight creates a point light. distance 0 disables the range cutoff.
func NewPointLight(c Color, intensity float64, position mgl64.Vec3, distance, decay float64) *Light {
	return &Light{
		Type:      LightPoint,
		Color:     c,
		Intensity: intensity,
		Position:  position,
		Distance:  distance,
		Decay:     decay,
		Enabled:   true,
	}
}

// Direction returns the unit vector from the surface toward a directional
// light. Zero for other light types or a degenerate position/target pair.
func (l *Light) Direction() mgl64.Vec3 {
	if l.Type != LightDirectional {
		return mgl64.Vec3{}
	}
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl64.Vec3{}
	}
	return d.Normalize()
}

// irradiance returns the light arriving at point p with unit normal n.
func (l *Light) irradiance(p, n mgl64.Vec3) Color {
	if !l.Enabled {
		return Color{}
	}
	radiance := l.Color.Scale(l.Intensity)
	switch l.Type {
	case LightAmbient:
		return radiance
	case LightDirectional:
		ndotl := n.Dot(l.Direction())
		if ndotl <= 0 {
			return Color{}
		}
		return radiance.Scale(ndotl)
	case LightPoint:
		toLight := l.Position.Sub(p)
		d := toLight.Len()
		if d == 0 {
			return radiance
		}
		ndotl := n.Dot(toLight.Mul(1 / d))
		if ndotl <= 0 {
			return Color{}
		}
		return radiance.Scale(ndotl * distanceAttenuation(d, l.Distance, l.Decay))
	}
	return Color{}
}

// distanceAttenuation is the point light falloff: inverse-power decay with
// a smooth window to zero at cutoff when cutoff > 0.
func distanceAttenuation(d, cutoff, decay float64) float64 {
	f := 1 / math.Max(math.Pow(d, decay), 0.01)
	if cutoff > 0 {
		w := 1 - math.Pow(d/cutoff, 4)
		if w <= 0 {
			return 0
		}
		f *= w * w
	}
	return f
}

// shade returns the Lambert-lit color of a surface with the given albedo.
// Alpha is taken from albedo.
func shade(lights []*Light, albedo Color, p, n mgl64.Vec3) Color {
	var sum Color
	for _, l := range lights {
		sum = sum.Add(l.irradiance(p, n))
	}
	return Color{albedo.R * sum.R, albedo.G * sum.G, albedo.B * sum.B, albedo.A}
}

// --- Helpers ---

// helperColor is the line color used for light helpers when the light
// color is too dark to see.
var helperColor = Color{1, 0.85, 0.2, 1}

// NewLightHelper returns a devMode helper node visualizing l, or nil for
// ambient lights (which have no position). size is the marker extent in
// world units.
func NewLightHelper(l *Light, size float64) *Node {
	c := l.Color
	if c.R+c.G+c.B < 0.3 {
		c = helperColor
	}
	c.A = 1

	switch l.Type {
	case LightDirectional:
		lines := squareLines(l.Position, l.Direction(), size, c)
		lines = append(lines, Line{From: l.Position, To: l.Target, Color: c})
		return NewHelper("directional_light_helper", lines)
	case LightPoint:
		return NewHelper("point_light_helper", diamondLines(l.Position, size, c))
	}
	return nil
}

// squareLines outlines a square of side size centered at center and facing
// normal.
func squareLines(center, normal mgl64.Vec3, size float64, c Color) []Line {
	up := mgl64.Vec3{0, 1, 0}
	if math.Abs(normal.Dot(up)) > 0.99 {
		up = mgl64.Vec3{1, 0, 0}
	}
	u := normal.Cross(up)
	if u.Len() == 0 {
		u = mgl64.Vec3{1, 0, 0}
	}
	u = u.Normalize().Mul(size / 2)
	v := normal.Cross(u)
	if v.Len() > 0 {
		v = v.Normalize().Mul(size / 2)
	}
	corners := [4]mgl64.Vec3{
		center.Add(u).Add(v),
		center.Sub(u).Add(v),
		center.Sub(u).Sub(v),
		center.Add(u).Sub(v),
	}
	lines := make([]Line, 0, 5)
	for i := range corners {
		lines = append(lines, Line{From: corners[i], To: corners[(i+1)%4], Color: c})
	}
	return lines
}

// diamondLines outlines an octahedron with the given radius around center.
func diamondLines(center mgl64.Vec3, radius float64, c Color) []Line {
	axes := [6]mgl64.Vec3{
		{radius, 0, 0}, {-radius, 0, 0},
		{0, radius, 0}, {0, -radius, 0},
		{0, 0, radius}, {0, 0, -radius},
	}
	var lines []Line
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			// Skip opposite vertices (pairs 0-1, 2-3, 4-5).
			if i/2 == j/2 {
				continue
			}
			lines = append(lines, Line{From: center.Add(axes[i]), To: center.Add(axes[j]), Color: c})
		}
	}
	return lines
}
