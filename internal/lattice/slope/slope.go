package slope

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/mathx"
)

// TriType classifies a triangle by the elevation spread of its corners.
// Cliff never results from classification; it is the palette entry for
// wall triangles.
type TriType uint8

const (
	Flat TriType = iota
	NoCost
	Cost
	NonTraversable
	Cliff

	numTypes
)

var typeNames = [numTypes]string{"flat", "no_cost", "cost", "non_traversable", "cliff"}

func (t TriType) String() string {
	if t >= numTypes {
		return fmt.Sprintf("TriType(%d)", uint8(t))
	}
	return typeNames[t]
}

func ParseTriType(s string) (TriType, bool) {
	for i, n := range typeNames {
		if n == s {
			return TriType(i), true
		}
	}
	return 0, false
}

// Thresholds split sloped triangles: spreads below Low cost nothing to
// cross, spreads below High cost something, the rest block movement.
type Thresholds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func DefaultThresholds() Thresholds { return Thresholds{Low: 2, High: 5} }

func (t Thresholds) Validate() error {
	if t.Low <= 0 || t.High <= t.Low {
		return fmt.Errorf("slope thresholds [%d, %d] must satisfy 0 < low < high", t.Low, t.High)
	}
	return nil
}

// Classify maps the max-min elevation spread of a triangle to its type.
func Classify(diff int, th Thresholds) TriType {
	switch {
	case diff == 0:
		return Flat
	case diff < th.Low:
		return NoCost
	case diff < th.High:
		return Cost
	default:
		return NonTraversable
	}
}

// Spread returns max-min over the given elevations.
func Spread(elevations ...int) int {
	if len(elevations) == 0 {
		return 0
	}
	lo, hi := elevations[0], elevations[0]
	for _, e := range elevations[1:] {
		if e < lo {
			lo = e
		}
		if e > hi {
			hi = e
		}
	}
	return hi - lo
}

// Palette holds one color per TriType.
type Palette [numTypes]colorful.Color

func DefaultPalette() Palette {
	return Palette{
		Flat:           colorful.Color{R: 1, G: 1, B: 1},
		NoCost:         colorful.Color{R: 0.2, G: 0.8, B: 0.2},
		Cost:           colorful.Color{R: 0.9, G: 0.9, B: 0},
		NonTraversable: colorful.Color{R: 0.8, G: 0.2, B: 0.2},
		Cliff:          colorful.Color{R: 0.42, G: 0.31, B: 0.23},
	}
}

// ParsePalette reads hex colors keyed by TriType name. Missing keys keep the
// default.
func ParsePalette(hex map[string]string) (Palette, error) {
	p := DefaultPalette()
	for name, h := range hex {
		t, ok := ParseTriType(name)
		if !ok {
			return Palette{}, fmt.Errorf("palette: unknown type %q", name)
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %s: %w", name, err)
		}
		p[t] = c
	}
	return p, nil
}

func (p Palette) Hex() map[string]string {
	out := make(map[string]string, numTypes)
	for i, c := range p {
		out[TriType(i).String()] = c.Hex()
	}
	return out
}

var (
	costLow  = colorful.Color{R: 0, G: 1, B: 0}
	costHigh = colorful.Color{R: 1, G: 1, B: 0}
)

// Shader derives corner colors from a cell's type and a corner's elevation.
type Shader struct {
	Thresholds   Thresholds
	MaxElevation int
	Palette      Palette
}

func DefaultShader() Shader {
	return Shader{Thresholds: DefaultThresholds(), MaxElevation: 20, Palette: DefaultPalette()}
}

// CornerColor: flat cells fade from white toward black with height, cost
// cells run green to yellow across the threshold band, everything else
// takes its palette color.
func (s Shader) CornerColor(t TriType, elevation int) colorful.Color {
	switch t {
	case Flat:
		k := 1.0
		if s.MaxElevation > 0 {
			k = mathx.Clamp01(1 - float64(elevation)/float64(s.MaxElevation))
		}
		w := s.Palette[Flat]
		return colorful.Color{R: w.R * k, G: w.G * k, B: w.B * k}
	case Cost:
		f := mathx.InverseLerp(float64(s.Thresholds.Low), float64(s.Thresholds.High), float64(elevation))
		return costLow.BlendRgb(costHigh, f)
	}
	if t < numTypes {
		return s.Palette[t]
	}
	return s.Palette[NonTraversable]
}

// Tint multiplies c by a paint color channel-wise.
func Tint(c, paint colorful.Color) colorful.Color {
	return colorful.Color{R: c.R * paint.R, G: c.G * paint.G, B: c.B * paint.B}
}

// White is the neutral paint.
var White = colorful.Color{R: 1, G: 1, B: 1}

// RGBA32 converts to the float32 vertex color layout used by meshes.
func RGBA32(c colorful.Color) [4]float32 {
	c = c.Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}
