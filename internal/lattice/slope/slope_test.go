package slope

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestClassify_DefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		diff int
		want TriType
	}{
		{0, Flat},
		{1, NoCost},
		{2, Cost},
		{4, Cost},
		{5, NonTraversable},
		{40, NonTraversable},
	}
	for _, c := range cases {
		if got := Classify(c.diff, th); got != c.want {
			t.Fatalf("Classify(%d) = %s, want %s", c.diff, got, c.want)
		}
	}
	if Spread(3, 7, 5) != 4 || Spread() != 0 {
		t.Fatalf("unexpected spread")
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("default: %v", err)
	}
	if err := (Thresholds{Low: 5, High: 5}).Validate(); err == nil {
		t.Fatalf("expected error for low == high")
	}
}

func TestShader_CornerColor(t *testing.T) {
	s := DefaultShader()
	if c := s.CornerColor(Flat, 0); c != (colorful.Color{R: 1, G: 1, B: 1}) {
		t.Fatalf("flat at 0 = %v", c)
	}
	if c := s.CornerColor(Flat, 10); math.Abs(c.R-0.5) > 1e-9 || c.R != c.G || c.G != c.B {
		t.Fatalf("flat at half height = %v", c)
	}
	if c := s.CornerColor(Flat, 40); c.R != 0 {
		t.Fatalf("flat above max should clamp to black, got %v", c)
	}
	lo := s.CornerColor(Cost, 2)
	if lo.R != 0 || lo.G != 1 || lo.B != 0 {
		t.Fatalf("cost at low threshold = %v", lo)
	}
	hi := s.CornerColor(Cost, 9)
	if hi.R != 1 || hi.G != 1 || hi.B != 0 {
		t.Fatalf("cost above high threshold = %v", hi)
	}
	if c := s.CornerColor(NonTraversable, 3); c != s.Palette[NonTraversable] {
		t.Fatalf("non-traversable = %v", c)
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette(map[string]string{"cliff": "#000000"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p[Cliff] != (colorful.Color{}) || p[Flat] != DefaultPalette()[Flat] {
		t.Fatalf("unexpected palette %v", p)
	}
	if _, err := ParsePalette(map[string]string{"lava": "#ff0000"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
	if _, err := ParsePalette(map[string]string{"flat": "white"}); err == nil {
		t.Fatalf("expected bad hex error")
	}
}

func TestTint(t *testing.T) {
	c := Tint(colorful.Color{R: 0.5, G: 1, B: 1}, colorful.Color{R: 1, G: 0.5, B: 0})
	if c.R != 0.5 || c.G != 0.5 || c.B != 0 {
		t.Fatalf("tint = %v", c)
	}
	if RGBA32(colorful.Color{R: 2, G: -1, B: 0.5}) != [4]float32{1, 0, 0.5, 1} {
		t.Fatalf("RGBA32 should clamp")
	}
}
