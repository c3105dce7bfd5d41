package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// JetPalette builds the 256-entry MATLAB-style jet color ramp used by
// heat-map masks. Index 0 is reserved for the background gray level;
// indices 1-255 ramp from dark blue through green to dark red.
func JetPalette(background uint8) color.Palette {
	palette := make(color.Palette, 256)
	palette[0] = color.Gray{Y: background}

	for i := 1; i < 256; i++ {
		t := 4 * float64(i) / 255
		c := colorful.Color{
			R: jetRamp(t - 1.5),
			G: jetRamp(t - 0.5),
			B: jetRamp(t + 0.5),
		}.Clamped()
		palette[i] = c
	}
	return palette
}

// jetRamp is one channel of the jet colormap: a trapezoid rising over
// one unit, holding at 1 for one unit and falling over one unit.
func jetRamp(t float64) float64 {
	return math.Min(math.Max(math.Min(t, -t+3), 0), 1)
}

// GrayPalette is the plain intensity ramp counterpart of JetPalette,
// for grayscale masks.
func GrayPalette(background uint8) color.Palette {
	palette := make(color.Palette, 256)
	palette[0] = color.Gray{Y: background}
	for i := 1; i < 256; i++ {
		palette[i] = color.Gray{Y: uint8(i)}
	}
	return palette
}
