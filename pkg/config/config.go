// Package config provides configuration loading and management for
// shollmetrics. It handles loading configuration from YAML files,
// provides default values and validates parameters before a sampling
// run starts.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"shollmetrics/internal/models"
)

// Integration selects how multiple samples per radius are combined
// (2D analysis only).
type Integration int

const (
	IntegrateMean Integration = iota
	IntegrateMedian
	IntegrateMode
)

// Normalizer selects the geometric quantity intersection counts are
// divided by when building normalized profiles.
type Normalizer int

const (
	// NormArea divides by circle area (2D) or sphere volume (3D)
	NormArea Normalizer = iota
	// NormPerimeter divides by circumference length (2D) or sphere
	// surface area (3D)
	NormPerimeter
	// NormAnnulus divides by annulus area (2D) or spherical shell
	// volume (3D) of one radius step
	NormAnnulus
)

// BestDegree requests the polynomial degree with the highest
// coefficient of determination among degrees 2-8.
const BestDegree = 0

// Config holds the full analysis configuration. It is constructed once
// per run and never mutated during sampling.
type Config struct {
	// Center of analysis in voxel coordinates. Z is ignored for 2D
	Center struct {
		X int `yaml:"x"`
		Y int `yaml:"y"`
		Z int `yaml:"z"`
	} `yaml:"center"`

	// Shells defines the radius schedule in physical units
	Shells struct {
		// Start is the smallest sampled radius; may be zero
		Start float64 `yaml:"start"`

		// End is the largest sampled radius
		End float64 `yaml:"end"`

		// Step is the radius increment between shells
		Step float64 `yaml:"step"`
	} `yaml:"shells"`

	// Voxel holds the physical voxel dimensions. Lateral applies to x
	// and y, Axial to z
	Voxel struct {
		Lateral float64 `yaml:"lateral"`
		Axial   float64 `yaml:"axial"`
	} `yaml:"voxel"`

	// Threshold is the inclusive intensity range defining the arbor
	Threshold struct {
		Lower float64 `yaml:"lower"`
		Upper float64 `yaml:"upper"`
	} `yaml:"threshold"`

	// ThreeD selects spherical (3D) rather than circular (2D) sampling
	ThreeD bool `yaml:"threeD"`

	// Samples controls multi-sample binning per radius (2D only)
	Samples struct {
		// Span is the number of samples per radius, 1-10
		Span int `yaml:"span"`

		// Integration is "mean", "median" or "mode"
		Integration string `yaml:"integration"`
	} `yaml:"samples"`

	// SkipIsolatedVoxels discards shell voxels with no thresholded
	// 6-connected neighbor (3D only)
	SkipIsolatedVoxels bool `yaml:"skipIsolatedVoxels"`

	// SpikeSuppression removes single-pixel groups judged to be
	// digitization artifacts (2D only)
	SpikeSuppression bool `yaml:"spikeSuppression"`

	// Descriptors groups the parameters of descriptor extraction
	Descriptors struct {
		// EnclosingCutoff is the minimum intersection count a radius
		// must reach to qualify as enclosing radius
		EnclosingCutoff int `yaml:"enclosingCutoff"`

		// PrimaryBranches is the user-supplied number of primary
		// branches used for ramification indices
		PrimaryBranches int `yaml:"primaryBranches"`

		// InferPrimary infers the primary branch count from the
		// intersections at the first sampled radius instead
		InferPrimary bool `yaml:"inferPrimary"`

		// PolyDegree is the polynomial degree for the linear profile
		// fit, 2-8, or 0 to pick the best fitting degree
		PolyDegree int `yaml:"polyDegree"`

		// Normalizer is "area", "perimeter" or "annulus" (their 3D
		// counterparts being volume, surface and spherical shell)
		Normalizer string `yaml:"normalizer"`
	} `yaml:"descriptors"`

	// Mask holds intersections-mask rendering options
	Mask struct {
		// Background is the grayscale level (0-255) used for
		// zero-intersection pixels
		Background int `yaml:"background"`
	} `yaml:"mask"`

	// Bounds restricts sampling to a region of the stack. Derived from
	// the stack dimensions via ClampBounds
	Bounds models.Bounds `yaml:"-"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Shells.Start = 10.0
	cfg.Shells.End = 100.0
	cfg.Shells.Step = 1.0

	cfg.Voxel.Lateral = 1.0
	cfg.Voxel.Axial = 1.0

	cfg.Threshold.Lower = 1
	cfg.Threshold.Upper = 255

	cfg.Samples.Span = 1
	cfg.Samples.Integration = "mean"

	cfg.SpikeSuppression = true

	cfg.Descriptors.EnclosingCutoff = 1
	cfg.Descriptors.PrimaryBranches = 4
	cfg.Descriptors.PolyDegree = BestDegree
	cfg.Descriptors.Normalizer = "area"

	cfg.Mask.Background = 228

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// VoxelSize returns the nominal voxel size used to map physical radii
// to pixel radii: the cube root of the voxel volume for 3D stacks, the
// lateral size otherwise.
func (c *Config) VoxelSize() float64 {
	if c.ThreeD {
		return math.Cbrt(c.Voxel.Lateral * c.Voxel.Lateral * c.Voxel.Axial)
	}
	return c.Voxel.Lateral
}

// StepRadius returns the effective radius increment. Steps below the
// voxel size would resample the same digital shell, so the increment
// is clamped to at least one voxel.
func (c *Config) StepRadius() float64 {
	return math.Max(c.VoxelSize(), c.Shells.Step)
}

// Radii derives the ordered radius schedule in physical units.
func (c *Config) Radii() []float64 {
	step := c.StepRadius()
	size := int((c.Shells.End-c.Shells.Start)/step) + 1
	if size < 1 {
		return nil
	}
	radii := make([]float64, size)
	for i := range radii {
		radii[i] = c.Shells.Start + float64(i)*step
	}
	return radii
}

// Classify reports whether an intensity value falls inside the
// configured threshold range.
func (c *Config) Classify(v float64) bool {
	return v >= c.Threshold.Lower && v <= c.Threshold.Upper
}

// IntegrationMethod parses the configured integration name.
func (c *Config) IntegrationMethod() (Integration, error) {
	switch c.Samples.Integration {
	case "", "mean":
		return IntegrateMean, nil
	case "median":
		return IntegrateMedian, nil
	case "mode":
		return IntegrateMode, nil
	}
	return 0, fmt.Errorf("unknown integration %q", c.Samples.Integration)
}

// NormalizerMethod parses the configured normalizer name.
func (c *Config) NormalizerMethod() (Normalizer, error) {
	switch c.Descriptors.Normalizer {
	case "", "area", "volume":
		return NormArea, nil
	case "perimeter", "surface":
		return NormPerimeter, nil
	case "annulus", "shell":
		return NormAnnulus, nil
	}
	return 0, fmt.Errorf("unknown normalizer %q", c.Descriptors.Normalizer)
}

// ClampBounds restricts the analysis bounds to the volume reachable
// from the center within the largest scheduled radius, clipped to the
// stack dimensions.
func (c *Config) ClampBounds(width, height, depth int) {
	radii := c.Radii()
	if len(radii) == 0 {
		c.Bounds = models.Bounds{MaxX: width - 1, MaxY: height - 1, MaxZ: depth - 1}
		return
	}
	last := radii[len(radii)-1]
	xymax := int(math.Round(last / c.Voxel.Lateral))
	zmax := int(math.Round(last / c.Voxel.Axial))

	c.Bounds = models.Bounds{
		MinX: max(c.Center.X-xymax, 0),
		MaxX: min(c.Center.X+xymax, width-1),
		MinY: max(c.Center.Y-xymax, 0),
		MaxY: min(c.Center.Y+xymax, height-1),
		MinZ: max(c.Center.Z-zmax, 0),
		MaxZ: min(c.Center.Z+zmax, depth-1),
	}
}

// Validate checks the configuration before any sampling begins.
// Violations are fatal to the run and reported immediately.
func (c *Config) Validate() error {
	if c.Shells.Step <= 0 {
		return fmt.Errorf("radius step must be positive, got %g", c.Shells.Step)
	}
	if c.Shells.Start < 0 {
		return fmt.Errorf("starting radius must be non-negative, got %g", c.Shells.Start)
	}
	if c.Shells.End <= c.Shells.Start {
		return fmt.Errorf("ending radius (%g) must exceed starting radius (%g)",
			c.Shells.End, c.Shells.Start)
	}
	if c.Voxel.Lateral <= 0 || c.Voxel.Axial <= 0 {
		return fmt.Errorf("voxel dimensions must be positive")
	}
	if c.Threshold.Upper < c.Threshold.Lower {
		return fmt.Errorf("upper threshold (%g) below lower threshold (%g)",
			c.Threshold.Upper, c.Threshold.Lower)
	}
	if len(c.Radii()) <= 1 {
		return fmt.Errorf("radius schedule is empty: check start/end/step")
	}
	if c.Samples.Span < 1 || c.Samples.Span > 10 {
		return fmt.Errorf("samples per radius must be 1-10, got %d", c.Samples.Span)
	}
	if _, err := c.IntegrationMethod(); err != nil {
		return err
	}
	if _, err := c.NormalizerMethod(); err != nil {
		return err
	}
	if d := c.Descriptors.PolyDegree; d != BestDegree && (d < 2 || d > 8) {
		return fmt.Errorf("polynomial degree must be 2-8 or 0 for best fit, got %d", d)
	}
	if !c.Bounds.Contains3D(c.Center.X, c.Center.Y, c.Center.Z) {
		return fmt.Errorf("center (%d,%d,%d) outside analysis bounds",
			c.Center.X, c.Center.Y, c.Center.Z)
	}
	return nil
}
