package sampling

import (
	"context"
	"testing"

	"shollmetrics/internal/models"
	"shollmetrics/pkg/config"
)

// diskStack builds a 2D image with a filled foreground disk around the
// center.
func diskStack(size, cx, cy, radius int) *models.Stack {
	st := models.NewStack(size, size, 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				st.SetIntensity(x, y, 0, 255)
			}
		}
	}
	return st
}

func stackConfig(st *models.Stack, start, end, step float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Center.X = st.Width / 2
	cfg.Center.Y = st.Height / 2
	cfg.Shells.Start = start
	cfg.Shells.End = end
	cfg.Shells.Step = step
	cfg.Bounds = st.FullBounds()
	return cfg
}

func TestSampleFilledDisk(t *testing.T) {
	st := diskStack(101, 50, 50, 12)
	cfg := stackConfig(st, 5, 20, 5)

	prof := New(st, cfg).Sample(context.Background())

	if len(prof) != 4 {
		t.Fatalf("profile length = %d, expected 4", len(prof))
	}
	// circles inside the disk cross it as one connected ring, circles
	// beyond it cross nothing
	want := []float64{1, 1, 0, 0}
	for i, w := range want {
		if prof[i].Count != w {
			t.Errorf("count at radius %.0f = %f, expected %f",
				prof[i].Radius, prof[i].Count, w)
		}
	}
}

func TestSampleTangentCircleFragments(t *testing.T) {
	// a circle whose radius equals the disk radius grazes the disk
	// boundary: the digital circle weaves across it and the foreground
	// points break into many arcs, each counted as a crossing. Interior
	// circles still count one ring and exterior ones zero.
	st := diskStack(101, 50, 50, 20)
	cfg := stackConfig(st, 5, 25, 5)

	prof := New(st, cfg).Sample(context.Background())

	want := []float64{1, 1, 1, 16, 0}
	for i, w := range want {
		if prof[i].Count != w {
			t.Errorf("count at radius %.0f = %f, expected %f",
				prof[i].Radius, prof[i].Count, w)
		}
	}
}

func TestSampleLineCrossings(t *testing.T) {
	st := models.NewStack(101, 101, 1)
	for x := 0; x < 101; x++ {
		st.SetIntensity(x, 50, 0, 255) // horizontal branch
	}
	for y := 0; y < 101; y++ {
		st.SetIntensity(50, y, 0, 255) // vertical branch
	}

	cfg := stackConfig(st, 10, 30, 10)
	prof := New(st, cfg).Sample(context.Background())

	for _, s := range prof {
		if s.Count != 4 {
			t.Errorf("count at radius %.0f = %f, expected 4 crossings",
				s.Radius, s.Count)
		}
	}
}

func TestSampleTwoDisks(t *testing.T) {
	// two filled blobs on opposite sides of the center, both cut by
	// the radius-15 circle
	st := models.NewStack(101, 101, 1)
	paint := func(cx, cy, r int) {
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				dx, dy := x-cx, y-cy
				if dx*dx+dy*dy <= r*r {
					st.SetIntensity(x, y, 0, 255)
				}
			}
		}
	}
	paint(35, 50, 5)
	paint(65, 50, 5)

	cfg := stackConfig(st, 15, 16, 5)
	prof := New(st, cfg).Sample(context.Background())

	if prof[0].Count != 2 {
		t.Errorf("count = %f, expected 2 separate crossings", prof[0].Count)
	}
}

func TestSampleCancelled(t *testing.T) {
	st := diskStack(101, 50, 50, 12)
	cfg := stackConfig(st, 5, 20, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prof := New(st, cfg).Sample(ctx)
	if len(prof) != 4 {
		t.Fatalf("cancelled run must keep the full schedule, got %d entries", len(prof))
	}
	for _, s := range prof {
		if s.Count != 0 {
			t.Errorf("cancelled run sampled radius %.0f", s.Radius)
		}
	}
}

func TestSampleCancelMidway(t *testing.T) {
	st := diskStack(101, 50, 50, 12)
	cfg := stackConfig(st, 5, 20, 5)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(st, cfg)
	s.Progress = func(completed, total int, message string) {
		if completed == 1 {
			cancel()
		}
	}

	prof := s.Sample(ctx)
	if prof[0].Count != 1 {
		t.Errorf("first radius = %f, expected the completed sample", prof[0].Count)
	}
	for _, sample := range prof[1:] {
		if sample.Count != 0 {
			t.Errorf("radius %.0f sampled after cancellation", sample.Radius)
		}
	}
}

func TestSampleProgressReports(t *testing.T) {
	st := diskStack(101, 50, 50, 12)
	cfg := stackConfig(st, 5, 20, 5)

	var completedSeq []int
	var total int
	s := New(st, cfg)
	s.Progress = func(completed, tot int, message string) {
		completedSeq = append(completedSeq, completed)
		total = tot
		if message != "sampling circle" {
			t.Errorf("unexpected message %q", message)
		}
	}
	s.Sample(context.Background())

	if total != 4 {
		t.Errorf("total = %d, expected 4", total)
	}
	for i, c := range completedSeq {
		if c != i+1 {
			t.Fatalf("progress sequence %v not monotonic", completedSeq)
		}
	}
}

func TestCombineIntegrations(t *testing.T) {
	samples := []int{1, 2, 2, 3}

	if got := combine(samples, config.IntegrateMean); got != 2 {
		t.Errorf("mean = %f", got)
	}
	if got := combine(samples, config.IntegrateMedian); got != 2 {
		t.Errorf("median = %f", got)
	}
	if got := combine(samples, config.IntegrateMode); got != 2 {
		t.Errorf("mode = %f", got)
	}

	// even-length median averages the central pair
	if got := combine([]int{1, 2, 3, 10}, config.IntegrateMedian); got != 2.5 {
		t.Errorf("median = %f, expected 2.5", got)
	}
	// mode ties keep the earliest value in scan order
	if got := combine([]int{3, 1, 1, 3}, config.IntegrateMode); got != 3 {
		t.Errorf("tied mode = %f, expected 3", got)
	}
	// a single sample passes through untouched
	if got := combine([]int{7}, config.IntegrateMode); got != 7 {
		t.Errorf("single sample = %f", got)
	}
}

func TestSampleSpanBinning(t *testing.T) {
	// a branch reaching in from the left crosses every circle once; an
	// isolated pixel at distance 12 is met only by the outermost of
	// the three binned circles, so the bin samples are {2, 1, 1}
	st := models.NewStack(101, 101, 1)
	for x := 0; x <= 40; x++ {
		st.SetIntensity(x, 50, 0, 255)
	}
	st.SetIntensity(62, 50, 0, 255)

	cfg := stackConfig(st, 11, 20, 10)
	cfg.Samples.Span = 3

	cfg.Samples.Integration = "mean"
	prof := New(st, cfg).Sample(context.Background())
	if want := 4.0 / 3; prof[0].Count != want {
		t.Errorf("mean-binned count = %f, expected %f", prof[0].Count, want)
	}

	cfg.Samples.Integration = "median"
	prof = New(st, cfg).Sample(context.Background())
	if prof[0].Count != 1 {
		t.Errorf("median-binned count = %f, expected 1", prof[0].Count)
	}
}

func TestSampleSphere(t *testing.T) {
	st := models.NewStack(41, 41, 41)
	cx, cy, cz := 20, 20, 20
	for z := 0; z < 41; z++ {
		for y := 0; y < 41; y++ {
			for x := 0; x < 41; x++ {
				dx, dy, dz := x-cx, y-cy, z-cz
				if dx*dx+dy*dy+dz*dz <= 8*8 {
					st.SetIntensity(x, y, z, 255)
				}
			}
		}
	}

	cfg := stackConfig(st, 5, 12, 7)
	cfg.ThreeD = true
	cfg.Center.Z = cz

	prof := New(st, cfg).Sample(context.Background())

	if len(prof) != 2 {
		t.Fatalf("profile length = %d, expected 2", len(prof))
	}
	if prof[0].Count != 1 {
		t.Errorf("count inside the ball = %f, expected 1", prof[0].Count)
	}
	if prof[1].Count != 0 {
		t.Errorf("count outside the ball = %f, expected 0", prof[1].Count)
	}
}

func TestSampleSphereProgressMessage(t *testing.T) {
	st := models.NewStack(11, 11, 11)
	cfg := stackConfig(st, 2, 4, 2)
	cfg.ThreeD = true
	cfg.Center.Z = 5

	called := false
	s := New(st, cfg)
	s.Progress = func(completed, total int, message string) {
		called = true
		if message != "sampling sphere" {
			t.Errorf("unexpected message %q", message)
		}
	}
	s.Sample(context.Background())

	if !called {
		t.Error("expected progress reports")
	}
}
