// Package geometry generates the integer lattice points of digital
// circles. Sampling shells are one pixel wide, so intersection counts
// depend on each circumference point being produced exactly once;
// the octant walk below guarantees that.
package geometry

import (
	"shollmetrics/internal/models"
)

// Point2D is an integer lattice coordinate on a sampled circumference.
type Point2D struct {
	X, Y int
}

// Point3D is an integer lattice coordinate on a sampled shell.
type Point3D struct {
	X, Y, Z int
}

// CircumferencePoints returns the pixels of a 1-pixel wide digital
// circle of the given radius centered at (cx, cy), clipped to bounds.
//
// The first octant is walked with a midpoint algorithm starting at
// (0, radius): at each step the squared error of moving right is
// compared against moving down and the smaller one wins, until the
// walk crosses the diagonal. The remaining 7/8 of the circumference
// are mirrored from it. Mirroring duplicates the points shared by
// adjacent octants; those land at index multiples of radius+1 and are
// dropped, so each point appears exactly once.
//
// The result is a pure function of its arguments. A circle that lies
// entirely outside bounds yields an empty slice, which is valid input
// for cluster counting.
func CircumferencePoints(cx, cy, radius int, bounds models.Bounds) []Point2D {
	if radius < 0 {
		return nil
	}
	if radius == 0 {
		if !bounds.Contains(cx, cy) {
			return nil
		}
		return []Point2D{{cx, cy}}
	}

	r := radius + 1
	octant := make([]Point2D, 0, r)

	x, y := 0, radius
	err := 0
	for {
		octant = append(octant, Point2D{x, y})

		// Squared-distance errors of stepping right vs. down
		errR := err + 2*x + 1
		errD := err - 2*y + 1

		if abs(errD) < abs(errR) {
			y--
			err = errD
		} else {
			x++
			err = errR
		}
		if x > y {
			break
		}
	}

	// Mirror the octant across all 8 symmetric positions. Index layout
	// follows the octant ordering of the walk so that duplicates fall
	// on multiples of r.
	points := make([]Point2D, r*8)
	for i, p := range octant {
		x, y := p.X, p.Y

		points[i] = Point2D{x + cx, y + cy}
		points[r*4-i-1] = Point2D{x + cx, -y + cy}
		points[r*8-i-1] = Point2D{-x + cx, y + cy}
		points[r*4+i] = Point2D{-x + cx, -y + cy}
		points[r*2-i-1] = Point2D{y + cx, x + cy}
		points[r*2+i] = Point2D{y + cx, -x + cy}
		points[r*6+i] = Point2D{-y + cx, x + cy}
		points[r*6-i-1] = Point2D{-y + cx, -x + cy}
	}

	// Duplicates sit at every r-th index; skip those and anything
	// outside the clipping bounds.
	refined := make([]Point2D, 0, len(points))
	for i, p := range points {
		if (i+1)%r == 0 {
			continue
		}
		if !bounds.Contains(p.X, p.Y) {
			continue
		}
		refined = append(refined, p)
	}

	return refined
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
