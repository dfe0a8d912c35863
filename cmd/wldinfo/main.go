package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"wld-viewer/internal/batch"
	"wld-viewer/internal/console"
	"wld-viewer/internal/wld"
	"wld-viewer/internal/worldstat"
)

func main() {
	asJSON := flag.Bool("json", false, "Print stats as JSON")
	quiet := flag.Bool("q", false, "Suppress parse log, print stats only")
	logPath := flag.String("log", "", "Also append parse events to this zstd JSONL file")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wldinfo [flags] <world file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := batch.ReadWorldFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sinks := []console.Sink{}
	if !*quiet {
		sinks = append(sinks, console.NewWriterSink(os.Stderr))
	}
	if *logPath != "" {
		fs, err := console.NewFileSink(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log: %v\n", err)
			os.Exit(1)
		}
		defer fs.Close()
		sinks = append(sinks, fs.Sink())
	}

	world, derr := wld.Decode(data, console.Tee(sinks...))
	if derr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", derr)
		os.Exit(1)
	}

	stats := worldstat.Collect(world)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("World:      %s\n", orDash(stats.Name))
	if stats.Description != "" {
		fmt.Printf("Info:       %s\n", stats.Description)
	}
	if world.HasEngineBuild {
		fmt.Printf("Build:      %d\n", stats.EngineBuild)
	}
	if stats.EngineVersion != "" {
		fmt.Printf("Version:    %s\n", stats.EngineVersion)
	}
	fmt.Printf("Background: #%08X\n", stats.Background)
	fmt.Printf("Brushes:    %d (%d mips, %d sectors)\n", stats.Brushes, stats.Mips, stats.Sectors)
	fmt.Printf("Geometry:   %d polygons, %d vertices, %d triangles\n",
		stats.Polygons, stats.Vertices, stats.Triangles)
	if stats.HasBounds {
		fmt.Printf("Bounds:     [%.1f %.1f %.1f] .. [%.1f %.1f %.1f]\n",
			stats.Min[0], stats.Min[1], stats.Min[2],
			stats.Max[0], stats.Max[1], stats.Max[2])
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
