package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"shollmetrics/internal/models"
	"shollmetrics/pkg/config"
	"shollmetrics/pkg/descriptors"
	"shollmetrics/pkg/render"
	"shollmetrics/pkg/sampling"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "Input image file, or directory of slices for 3D analysis")
	configPath := flag.String("config", "", "Optional YAML configuration file")
	centerX := flag.Int("cx", 0, "X coordinate of the analysis center (pixels)")
	centerY := flag.Int("cy", 0, "Y coordinate of the analysis center (pixels)")
	centerZ := flag.Int("cz", 0, "Z coordinate of the analysis center (slice index, 3D only)")
	startRadius := flag.Float64("start", 10, "Starting radius in physical units")
	endRadius := flag.Float64("end", 100, "Ending radius in physical units")
	stepSize := flag.Float64("step", 1, "Radius step size in physical units")
	lowerT := flag.Float64("lower", 1, "Lower segmentation threshold")
	upperT := flag.Float64("upper", 255, "Upper segmentation threshold")
	threeD := flag.Bool("3d", false, "Sample spherical shells through the whole stack")
	csvPath := flag.String("csv", "", "Write the sampled profile to this CSV file")
	maskPath := flag.String("mask", "", "Write an intersections heat-map mask to this image file")
	fitMask := flag.Bool("fit-mask", false, "Paint the mask with fitted instead of sampled counts")
	grayMask := flag.Bool("gray-mask", false, "Use a grayscale ramp instead of the jet color map")
	flag.Parse()

	// Validate inputs
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	// Command line flags override the configuration file when given
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cx":
			cfg.Center.X = *centerX
		case "cy":
			cfg.Center.Y = *centerY
		case "cz":
			cfg.Center.Z = *centerZ
		case "start":
			cfg.Shells.Start = *startRadius
		case "end":
			cfg.Shells.End = *endRadius
		case "step":
			cfg.Shells.Step = *stepSize
		case "lower":
			cfg.Threshold.Lower = *lowerT
		case "upper":
			cfg.Threshold.Upper = *upperT
		case "3d":
			cfg.ThreeD = *threeD
		}
	})

	stack, err := loadStack(*input)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}
	stack.VoxelWH = cfg.Voxel.Lateral
	stack.VoxelD = cfg.Voxel.Axial

	if cfg.ThreeD && !stack.Is3D() {
		log.Fatalf("3D analysis requested but input has a single slice")
	}

	cfg.ClampBounds(stack.Width, stack.Height, stack.Depth)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("SHOLL ANALYSIS OF SEGMENTED ARBORS")
	fmt.Println("================================")
	fmt.Printf("Input: %s (%dx%dx%d)\n", *input, stack.Width, stack.Height, stack.Depth)
	fmt.Printf("Center: (%d, %d, %d)  Radii: %.1f-%.1f step %.1f\n",
		cfg.Center.X, cfg.Center.Y, cfg.Center.Z,
		cfg.Shells.Start, cfg.Shells.End, cfg.StepRadius())

	sampler := sampling.New(stack, cfg)
	sampler.Progress = func(completed, total int, message string) {
		fmt.Printf("\r%s: %d/%d", message, completed, total)
		if completed == total {
			fmt.Println()
		}
	}

	startTime := time.Now()
	prof := sampler.Sample(context.Background())
	fmt.Printf("Sampling completed in %.2f seconds\n", time.Since(startTime).Seconds())

	result, err := descriptors.New(cfg).Analyze(prof)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	printDescriptors(result)

	if *csvPath != "" {
		if err := writeProfileCSV(*csvPath, result); err != nil {
			log.Fatalf("Failed to write profile: %v", err)
		}
		fmt.Printf("Profile saved to: %s\n", *csvPath)
	}

	if *maskPath != "" {
		values := prof.Counts()
		if *fitMask {
			if result.FittedLinear == nil {
				log.Fatalf("No fitted curve available for the mask")
			}
			values = result.FittedLinear
		}
		renderer := render.Mask
		if *grayMask {
			renderer = render.MaskGray
		}
		mask, err := renderer(stack, cfg, values)
		if err != nil {
			log.Fatalf("Failed to render mask: %v", err)
		}
		if err := render.Save(mask, *maskPath); err != nil {
			log.Fatalf("Failed to save mask: %v", err)
		}
		fmt.Printf("Mask saved to: %s\n", *maskPath)
	}
}

// loadStack reads either a single image or a directory of equally
// sized slices sorted by filename.
func loadStack(path string) (*models.Stack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !isImageFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no image files found in %s", path)
		}
		// Sort by the numeric part of the filename so slice10 follows
		// slice9, keeping the z-axis in anatomical order
		sort.Slice(files, func(i, j int) bool {
			return sliceNumber(files[i]) < sliceNumber(files[j])
		})
	} else {
		files = []string{path}
	}

	slices := make([]image.Image, 0, len(files))
	for _, file := range files {
		img, err := imaging.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		slices = append(slices, img)
	}
	return models.StackFromImages(slices)
}

// sliceNumber extracts the numeric part of a slice filename; files
// without digits sort first.
func sliceNumber(path string) int {
	numStr := ""
	for _, c := range filepath.Base(path) {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}
	if numStr == "" {
		return 0
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0
	}
	return n
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".gif", ".bmp":
		return true
	}
	return false
}

// printDescriptors writes the descriptor table in alphabetical order.
func printDescriptors(result *descriptors.Result) {
	keys := make([]string, 0, len(result.Values))
	for key := range result.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Println("\nDescriptors:")
	fmt.Println("=======================================")
	for _, key := range keys {
		fmt.Printf("%-45s %g\n", key, result.Values[key])
	}
}

// writeProfileCSV saves the zero-filtered profile, with the fitted
// counts as a third column when a polynomial fit was made.
func writeProfileCSV(path string, result *descriptors.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"radius", "inters."}
	if result.FittedLinear != nil {
		header = append(header, "fitted inters.")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, s := range result.Linear {
		row := []string{
			strconv.FormatFloat(s.Radius, 'g', -1, 64),
			strconv.FormatFloat(s.Count, 'g', -1, 64),
		}
		if result.FittedLinear != nil {
			row = append(row, strconv.FormatFloat(result.FittedLinear[i], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
