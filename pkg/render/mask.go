// Package render produces heat-map masks of analyzed images: every
// foreground pixel is recolored by the intersection count (sampled or
// fitted) of the shell it belongs to, using a jet color ramp over a
// flat background.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"shollmetrics/internal/models"
	"shollmetrics/pkg/config"
	"shollmetrics/pkg/geometry"
)

// Mask paints the per-shell values onto the foreground pixels of the
// stack, one annulus per sampled radius, colored with the jet LUT.
// For volumetric stacks the painting happens on a maximum-intensity
// projection over the bounded slab. values must hold one entry per
// sampled radius.
func Mask(st *models.Stack, cfg *config.Config, values []float64) (*image.Paletted, error) {
	return mask(st, cfg, values, JetPalette(uint8(cfg.Mask.Background)))
}

// MaskGray is Mask with a plain intensity ramp instead of the jet LUT.
func MaskGray(st *models.Stack, cfg *config.Config, values []float64) (*image.Paletted, error) {
	return mask(st, cfg, values, GrayPalette(uint8(cfg.Mask.Background)))
}

func mask(st *models.Stack, cfg *config.Config, values []float64, palette color.Palette) (*image.Paletted, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to render")
	}

	plane := st
	if st.Is3D() {
		plane = project(st, cfg.Bounds)
	}

	img := image.NewPaletted(
		image.Rect(0, 0, plane.Width, plane.Height),
		palette,
	)

	vxWH := cfg.Voxel.Lateral
	steps := len(values)
	firstRadius := int(math.Round(cfg.Shells.Start / vxWH))
	lastRadius := int(math.Round((cfg.Shells.Start + float64(steps-1)*cfg.StepRadius()) / vxWH))
	drawWidth := (lastRadius - firstRadius) / steps
	if drawWidth < 1 {
		drawWidth = 1
	}

	max := floats.Max(values)
	if max <= 0 {
		max = 1
	}

	bounds := models.Bounds{MaxX: plane.Width - 1, MaxY: plane.Height - 1}
	radius := firstRadius
	for i := 0; i < steps; i++ {
		idx := colorIndex(values[i], max)
		for j := 0; j < drawWidth; j++ {
			for _, pt := range geometry.CircumferencePoints(cfg.Center.X, cfg.Center.Y, radius, bounds) {
				if cfg.Classify(plane.Intensity(pt.X, pt.Y, 0)) {
					img.SetColorIndex(pt.X, pt.Y, idx)
				}
			}
			radius++
		}
	}

	return img, nil
}

// Save writes the mask to disk; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save mask: %w", err)
	}
	return nil
}

// colorIndex maps a value to the jet ramp, keeping index 0 for the
// background.
func colorIndex(v, max float64) uint8 {
	idx := 1 + int(math.Round(v/max*254))
	if idx < 1 {
		idx = 1
	}
	if idx > 255 {
		idx = 255
	}
	return uint8(idx)
}

// project flattens a volumetric stack into a single plane by maximum
// intensity over the slab bounded in z, so thresholding against the
// original intensity range still applies.
func project(st *models.Stack, bounds models.Bounds) *models.Stack {
	out := models.NewStack(st.Width, st.Height, 1)
	out.VoxelWH = st.VoxelWH
	out.VoxelD = st.VoxelD
	for y := 0; y < st.Height; y++ {
		for x := 0; x < st.Width; x++ {
			max := 0.0
			for z := bounds.MinZ; z <= bounds.MaxZ; z++ {
				if v := st.Intensity(x, y, z); v > max {
					max = v
				}
			}
			out.SetIntensity(x, y, 0, max)
		}
	}
	return out
}
