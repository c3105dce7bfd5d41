package geometry

import (
	"math"
	"testing"

	"shollmetrics/internal/models"
)

func fullBounds() models.Bounds {
	return models.Bounds{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}
}

func TestCircumferencePointsNegativeRadius(t *testing.T) {
	if pts := CircumferencePoints(0, 0, -1, fullBounds()); pts != nil {
		t.Errorf("expected nil for negative radius, got %v", pts)
	}
}

func TestCircumferencePointsZeroRadius(t *testing.T) {
	pts := CircumferencePoints(7, 3, 0, fullBounds())
	if len(pts) != 1 || pts[0] != (Point2D{X: 7, Y: 3}) {
		t.Errorf("expected the center point only, got %v", pts)
	}
}

func TestCircumferencePointsDistanceBand(t *testing.T) {
	for radius := 1; radius <= 50; radius++ {
		for _, pt := range CircumferencePoints(0, 0, radius, fullBounds()) {
			d := math.Hypot(float64(pt.X), float64(pt.Y))
			if math.Abs(d-float64(radius)) >= 1 {
				t.Fatalf("radius %d: point %v at distance %f outside the band",
					radius, pt, d)
			}
		}
	}
}

func TestCircumferencePointsNoDuplicates(t *testing.T) {
	for radius := 1; radius <= 20; radius++ {
		seen := make(map[Point2D]bool)
		for _, pt := range CircumferencePoints(0, 0, radius, fullBounds()) {
			if seen[pt] {
				t.Fatalf("radius %d: duplicate point %v", radius, pt)
			}
			seen[pt] = true
		}
	}
}

func TestCircumferencePointsAxesPresent(t *testing.T) {
	pts := CircumferencePoints(10, 10, 5, fullBounds())
	want := []Point2D{{15, 10}, {5, 10}, {10, 15}, {10, 5}}
	for _, w := range want {
		found := false
		for _, pt := range pts {
			if pt == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("axis point %v missing from circumference", w)
		}
	}
}

func TestCircumferencePointsClipped(t *testing.T) {
	bounds := models.Bounds{MinX: 0, MinY: 0, MaxX: 9, MaxY: 9}
	for _, pt := range CircumferencePoints(0, 0, 5, bounds) {
		if pt.X < 0 || pt.Y < 0 || pt.X > 9 || pt.Y > 9 {
			t.Errorf("point %v escapes the clip bounds", pt)
		}
	}
	// the quadrant inside the bounds survives
	if len(CircumferencePoints(0, 0, 5, bounds)) == 0 {
		t.Error("expected surviving in-bounds points")
	}
}
