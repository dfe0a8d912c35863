// Package batch scans a directory of world files with a worker pool,
// decodes each one, renders a thumbnail and records the outcome in the
// catalog.
package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"wld-viewer/internal/catalog"
	"wld-viewer/internal/console"
	"wld-viewer/internal/render"
	"wld-viewer/internal/wld"
	"wld-viewer/internal/worldstat"
)

// Config holds all shared resources for a scan run.
type Config struct {
	InputDir  string
	OutputDir string
	Catalog   *catalog.DB // optional
	Render    render.Options
	Workers   int
	Progress  io.Writer // optional, nil silences progress lines
}

// Result holds the outcome of processing one file.
type Result struct {
	Path      string          `json:"path"`
	Stats     worldstat.Stats `json:"stats"`
	Warnings  int             `json:"warnings"`
	Error     string          `json:"error,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Success   bool            `json:"success"`
}

// worldExts in scan order. Compressed variants decompress in memory.
var worldExts = []string{".wld", ".wld.gz", ".wld.zst"}

// ListFiles walks the input directory and returns relative paths of every
// world file, sorted.
func ListFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range worldExts {
			if strings.HasSuffix(name, ext) {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				out = append(out, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// Run processes all files using a worker pool and writes a manifest.json
// next to the thumbnails.
func Run(cfg Config, files []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Progress != nil {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(cfg, files[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	if cfg.OutputDir != "" {
		if err := writeManifest(cfg.OutputDir, results); err != nil && cfg.Progress != nil {
			fmt.Fprintf(cfg.Progress, "  manifest: %v\n", err)
		}
	}
	return results
}

func processFile(cfg Config, rel string) Result {
	res := Result{Path: rel}

	data, err := ReadWorldFile(filepath.Join(cfg.InputDir, rel))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	sum := sha256.Sum256(data)

	rec := &console.Recorder{}
	world, err := wld.Decode(data, rec.Sink())
	for _, ev := range rec.Events() {
		if ev.Level == console.Warn {
			res.Warnings++
		}
	}
	if err != nil {
		res.Error = err.Error()
	}
	if world != nil {
		res.Stats = worldstat.Collect(world)
	}

	if cfg.OutputDir != "" && err == nil {
		thumb := thumbnailPath(rel)
		outPath := filepath.Join(cfg.OutputDir, thumb)
		if werr := writeThumbnail(outPath, world, cfg.Render); werr != nil {
			res.Error = werr.Error()
		} else {
			res.Thumbnail = thumb
		}
	}

	if cfg.Catalog != nil {
		entry := catalog.Entry{
			Path:       rel,
			SHA256:     hex.EncodeToString(sum[:]),
			Stats:      res.Stats,
			Warnings:   res.Warnings,
			FatalError: res.Error,
			Thumbnail:  res.Thumbnail,
			ScannedAt:  time.Now(),
		}
		if cerr := cfg.Catalog.Put(entry); cerr != nil && res.Error == "" {
			res.Error = cerr.Error()
		}
	}

	res.Success = res.Error == ""
	return res
}

// ReadWorldFile loads a world file, transparently decompressing .gz and
// .zst variants.
func ReadWorldFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	defer f.Close()

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("batch: gzip %s: %w", path, err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("batch: gzip %s: %w", path, err)
		}
		return data, nil
	case strings.HasSuffix(lower, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("batch: zstd %s: %w", path, err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("batch: zstd %s: %w", path, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}
	return data, nil
}

func thumbnailPath(rel string) string {
	base := rel
	for _, ext := range []string{".zst", ".gz", ".wld"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".webp"
}

func writeThumbnail(path string, w *wld.World, opts render.Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	img := render.RenderWorld(w, opts)
	return render.WriteImage(path, img)
}

func writeManifest(dir string, results []Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "manifest.json"), append(data, '\n'), 0o644)
}
