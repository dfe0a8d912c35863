package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"wld-viewer/internal/batch"
	"wld-viewer/internal/console"
	"wld-viewer/internal/render"
	"wld-viewer/internal/wld"
)

func main() {
	out := flag.String("o", "", "Output image path, .webp or .tga (default: input with .webp)")
	size := flag.Int("size", 512, "Output edge length in pixels")
	supersample := flag.Int("supersample", 2, "Internal oversampling factor")
	yaw := flag.Float64("yaw", 30, "Camera yaw in degrees")
	pitch := flag.Float64("pitch", -25, "Camera pitch in degrees")
	quiet := flag.Bool("q", false, "Suppress parse log")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: render [flags] <world file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := batch.ReadWorldFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sink := console.Discard
	if !*quiet {
		sink = console.NewWriterSink(os.Stderr)
	}
	world, derr := wld.Decode(data, sink)
	if derr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", derr)
		os.Exit(1)
	}

	target := *out
	if target == "" {
		base := path
		for _, ext := range []string{".zst", ".gz", ".wld"} {
			base = strings.TrimSuffix(base, ext)
		}
		target = base + ".webp"
	}

	img := render.RenderWorld(world, render.Options{
		Size:        *size,
		Supersample: *supersample,
		Yaw:         *yaw,
		Pitch:       *pitch,
	})
	if err := render.WriteImage(target, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", target)
}
