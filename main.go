package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/render"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/df07/go-lightpath/pkg/tracer"
)

func main() {
	levelName := flag.String("level", "corridor", "Built-in level id, level file name in -levels, or path to a .json level")
	levelsDir := flag.String("levels", "levels", "Directory scanned for level files")
	elapsed := flag.Float64("elapsed", 0, "Simulation time in seconds")
	phase := flag.String("phase", "A", "Active phase: A or B")
	frames := flag.Int("frames", 1, "Number of ticks to simulate from -elapsed to -elapsed+frames-1 seconds")
	out := flag.String("out", "", "Output PNG path (default output/<level>/trace_<timestamp>.png)")
	scale := flag.Int("scale", render.DefaultScale, "Pixels per grid cell")
	list := flag.Bool("list", false, "List available levels and exit")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "lightpath"})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("Unknown log level, using info", "level", *logLevel)
	}

	if *help {
		fmt.Println("Lightpath beam simulator")
		fmt.Println("Usage: lightpath [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output will be saved to output/<level>/trace_<timestamp>.png")
		return
	}

	if *list {
		if err := listLevels(*levelsDir, logger); err != nil {
			logger.Error("Failed to list levels", "err", err)
			os.Exit(1)
		}
		return
	}

	lvl, err := createLevel(*levelName, *levelsDir)
	if err != nil {
		logger.Error("Failed to load level", "err", err)
		os.Exit(1)
	}
	for _, warning := range lvl.Warnings() {
		logger.Warn("Level authoring issue", "warning", warning)
	}

	rt := level.NewRuntime()
	rt.Elapsed = *elapsed
	if rt.ActivePhase, err = parsePhase(*phase); err != nil {
		logger.Error("Invalid phase", "err", err)
		os.Exit(1)
	}

	if *frames > 1 {
		if err := runTimeline(lvl, rt, *frames, logger); err != nil {
			logger.Error("Timeline failed", "err", err)
			os.Exit(1)
		}
		return
	}

	startTime := time.Now()
	frame := sim.Simulate(lvl, rt, tracer.Options{Logger: logger})
	logger.Info("Trace completed", "level", lvl.ID, "time", time.Since(startTime))
	printSummary(lvl, frame)

	filename := *out
	if filename == "" {
		dir := createOutputDir(*levelName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("Error creating output directory", "err", err)
			os.Exit(1)
		}
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(dir, fmt.Sprintf("trace_%s.png", timestamp))
	}

	if err := savePNG(filename, lvl, rt, frame, *scale); err != nil {
		logger.Error("Error saving PNG", "err", err)
		os.Exit(1)
	}
	logger.Info("Trace saved", "file", filename)
}

// createLevel resolves a level by built-in id, file name or path
func createLevel(name, dir string) (*level.Level, error) {
	if name == "" {
		return nil, fmt.Errorf("no level given")
	}
	return level.Resolve(name, dir)
}

// createOutputDir returns output/<base>, where base is the built-in id or
// the level file name without extension
func createOutputDir(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".json")
	if base == "" || base == "." {
		base = "level"
	}
	return filepath.Join("output", base)
}

func parsePhase(s string) (level.PhaseTag, error) {
	switch strings.ToUpper(s) {
	case "", "A":
		return level.PhaseA, nil
	case "B":
		return level.PhaseB, nil
	}
	return "", fmt.Errorf("phase must be A or B, got %q", s)
}

func listLevels(dir string, logger *log.Logger) error {
	response, warnings, err := level.ListAllLevels(dir)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		logger.Warn("Skipped level file", "warning", warning)
	}
	for _, group := range response.Groups {
		fmt.Printf("%s:\n", group.Name)
		for _, info := range group.Levels {
			fmt.Printf("  %-14s %-16s %2dx%-2d  %s\n", info.ID, info.Name, info.Width, info.Height, info.Description)
		}
	}
	return nil
}

func printSummary(lvl *level.Level, frame sim.Frame) {
	fmt.Printf("Level %s at t=%.2fs, phase %s\n", lvl.Name, frame.Elapsed, frame.Phase)
	fmt.Printf("  %s\n", frame.Stats)
	if frame.Truncated {
		fmt.Println("  trace truncated")
	}
	for _, id := range lvl.Objectives {
		report := frame.Reports[id]
		mark := " "
		if report.Solved {
			mark = "x"
		}
		fmt.Printf("  [%s] %-10s hits=%d intensity=%.1f colors=%v\n", mark, id, report.Hits, report.Intensity, report.Colors)
	}
	if frame.Complete {
		fmt.Println("  level complete")
	}
}

func runTimeline(lvl *level.Level, rt level.Runtime, frames int, logger *log.Logger) error {
	cfg := sim.TimelineConfig{
		From:   rt.Elapsed,
		To:     rt.Elapsed + float64(frames-1),
		Frames: frames,
		Logger: logger,
	}
	result, err := sim.Timeline(context.Background(), lvl, rt, cfg)
	if err != nil {
		return err
	}
	for _, f := range result {
		fmt.Printf("t=%6.2fs segments=%-3d hits=%-2d solved=%v\n", f.Elapsed, len(f.Traces), len(f.Hits), f.SolvedIDs(lvl))
	}
	return nil
}

func savePNG(filename string, lvl *level.Level, rt level.Runtime, frame sim.Frame, scale int) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, render.Rasterize(lvl, rt, frame, scale)); err != nil {
		return fmt.Errorf("error encoding png: %w", err)
	}
	return nil
}
