package models

import (
	"image"
	"image/color"
	"testing"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinX: 2, MaxX: 8, MinY: 1, MaxY: 5}

	cases := []struct {
		x, y int
		want bool
	}{
		{2, 1, true}, {8, 5, true}, {5, 3, true},
		{1, 3, false}, {9, 3, false}, {5, 0, false}, {5, 6, false},
	}
	for _, tc := range cases {
		if got := b.Contains(tc.x, tc.y); got != tc.want {
			t.Errorf("Contains(%d,%d) = %v, expected %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestBoundsContains3D(t *testing.T) {
	b := Bounds{MaxX: 10, MaxY: 10, MinZ: 2, MaxZ: 4}

	if !b.Contains3D(5, 5, 3) {
		t.Error("expected voxel inside the slab")
	}
	if b.Contains3D(5, 5, 1) || b.Contains3D(5, 5, 5) {
		t.Error("expected voxels outside the slab to be rejected")
	}
}

func TestStackIntensityOutOfBounds(t *testing.T) {
	st := NewStack(4, 4, 2)
	st.SetIntensity(1, 2, 1, 99)

	if got := st.Intensity(1, 2, 1); got != 99 {
		t.Errorf("Intensity = %f, expected 99", got)
	}
	for _, probe := range [][3]int{
		{-1, 0, 0}, {4, 0, 0}, {0, -1, 0}, {0, 4, 0}, {0, 0, -1}, {0, 0, 2},
	} {
		if got := st.Intensity(probe[0], probe[1], probe[2]); got != 0 {
			t.Errorf("Intensity%v = %f, expected background 0", probe, got)
		}
	}
}

func TestStackIs3D(t *testing.T) {
	if NewStack(4, 4, 1).Is3D() {
		t.Error("single slice should not be 3D")
	}
	if !NewStack(4, 4, 2).Is3D() {
		t.Error("two slices should be 3D")
	}
}

func TestFullBounds(t *testing.T) {
	b := NewStack(10, 20, 3).FullBounds()
	want := Bounds{MaxX: 9, MaxY: 19, MaxZ: 2}
	if b != want {
		t.Errorf("FullBounds = %+v, expected %+v", b, want)
	}
}

func TestStackFromImages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(1, 1, color.Gray{Y: 200})

	st, err := StackFromImages([]image.Image{img})
	if err != nil {
		t.Fatalf("StackFromImages failed: %v", err)
	}
	if st.Width != 3 || st.Height != 2 || st.Depth != 1 {
		t.Errorf("dimensions = %dx%dx%d", st.Width, st.Height, st.Depth)
	}
	if got := st.Intensity(1, 1, 0); got != 200 {
		t.Errorf("Intensity(1,1,0) = %f, expected 200", got)
	}
	if got := st.Intensity(0, 0, 0); got != 0 {
		t.Errorf("Intensity(0,0,0) = %f, expected 0", got)
	}
}

func TestStackFromImagesMismatchedSizes(t *testing.T) {
	a := image.NewGray(image.Rect(0, 0, 3, 3))
	b := image.NewGray(image.Rect(0, 0, 4, 3))

	if _, err := StackFromImages([]image.Image{a, b}); err == nil {
		t.Error("expected an error for mismatched slice sizes")
	}
}

func TestStackFromImagesEmpty(t *testing.T) {
	if _, err := StackFromImages(nil); err == nil {
		t.Error("expected an error for an empty sequence")
	}
}
