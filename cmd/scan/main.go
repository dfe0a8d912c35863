package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"wld-viewer/internal/batch"
	"wld-viewer/internal/catalog"
	"wld-viewer/internal/config"
	"wld-viewer/internal/render"
)

func main() {
	configFile := flag.String("config", "", "Path to viewer.yaml config file")
	inputDir := flag.String("input", "", "Directory to scan for world files")
	outputDir := flag.String("output", "", "Output directory for thumbnails and manifest")
	dbPath := flag.String("db", "", "Catalog database path")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	testN := flag.Int("test", 0, "Scan only first N files for testing")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		DBPath:    *dbPath,
		Workers:   *workers,
	})

	files, err := batch.ListFiles(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(files) {
		files = files[:*testN]
	}
	if len(files) == 0 {
		fmt.Println("No world files found.")
		os.Exit(0)
	}

	db, err := catalog.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Files: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batch.Config{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Catalog:   db,
		Render: render.Options{
			Size:        cfg.RenderSize,
			Supersample: cfg.Supersample,
			Yaw:         cfg.Yaw,
			Pitch:       cfg.Pitch,
		},
		Workers:  cfg.Workers,
		Progress: os.Stdout,
	}, files)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}
	fmt.Printf("Scanned: %d/%d\n", success, len(files))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Path, e.Error)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
