package models

import (
	"fmt"
	"image"
	"image/color"
)

// Bounds is an inclusive axis-aligned region restricting the analysis.
// For 2D images MinZ and MaxZ are both zero.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
	MinZ, MaxZ int
}

// Contains reports whether the 2D lattice point (x, y) lies inside the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Contains3D reports whether the voxel (x, y, z) lies inside the bounds.
func (b Bounds) Contains3D(x, y, z int) bool {
	return b.Contains(x, y) && z >= b.MinZ && z <= b.MaxZ
}

// Stack holds segmented image data as a flat intensity volume.
// A single-slice stack (Depth == 1) represents a 2D image.
type Stack struct {
	// Data is the voxel intensity data as a 1D array in row-major,
	// slice-major order
	Data []float64

	// Width, Height and Depth are the stack dimensions in voxels
	Width, Height, Depth int

	// VoxelWH is the lateral voxel size (physical units per pixel).
	// Stacks are likely to have anisotropic voxels with large z-steps,
	// so the axial size VoxelD is kept separately.
	VoxelWH float64
	VoxelD  float64
}

// NewStack creates a zero-filled stack with isotropic unit voxels.
func NewStack(width, height, depth int) *Stack {
	return &Stack{
		Data:    make([]float64, width*height*depth),
		Width:   width,
		Height:  height,
		Depth:   depth,
		VoxelWH: 1,
		VoxelD:  1,
	}
}

// Is3D reports whether the stack holds more than one slice.
func (s *Stack) Is3D() bool { return s.Depth > 1 }

// Intensity returns the voxel value at (x, y, z). Out-of-bounds
// positions read as zero, i.e. background; neighborhood probes at the
// image edge therefore never need their own range checks.
func (s *Stack) Intensity(x, y, z int) float64 {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height || z < 0 || z >= s.Depth {
		return 0
	}
	return s.Data[z*s.Width*s.Height+y*s.Width+x]
}

// SetIntensity writes the voxel value at (x, y, z). Writes outside the
// stack are ignored.
func (s *Stack) SetIntensity(x, y, z int, v float64) {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height || z < 0 || z >= s.Depth {
		return
	}
	s.Data[z*s.Width*s.Height+y*s.Width+x] = v
}

// FullBounds returns the bounds covering the entire stack.
func (s *Stack) FullBounds() Bounds {
	return Bounds{
		MinX: 0, MaxX: s.Width - 1,
		MinY: 0, MaxY: s.Height - 1,
		MinZ: 0, MaxZ: s.Depth - 1,
	}
}

// StackFromImages builds a stack from a sequence of equally sized
// slices. Pixel intensities are 8-bit grayscale values (0-255), the
// scale segmentation thresholds are expressed in.
func StackFromImages(slices []image.Image) (*Stack, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices provided")
	}

	bounds := slices[0].Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	stack := NewStack(width, height, len(slices))
	for z, slice := range slices {
		if slice.Bounds().Dx() != width || slice.Bounds().Dy() != height {
			return nil, fmt.Errorf("slice %d is %dx%d, expected %dx%d",
				z, slice.Bounds().Dx(), slice.Bounds().Dy(), width, height)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := color.GrayModel.Convert(slice.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				stack.Data[z*width*height+y*width+x] = float64(c.Y)
			}
		}
	}

	return stack, nil
}
