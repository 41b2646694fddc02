package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/rs/zerolog"

	"clipvault/internal/catalog"
)

// Generator extracts one frame per clip with ffmpeg and keeps the result
// under <media_root>/assets/thumbnails/<id>.jpg, downscaled to fit maxEdge.
type Generator struct {
	dir     string
	maxEdge int
	log     zerolog.Logger
}

func NewGenerator(dir string, maxEdge int, log zerolog.Logger) *Generator {
	if maxEdge <= 0 {
		maxEdge = 480
	}
	return &Generator{dir: dir, maxEdge: maxEdge, log: log}
}

// Path returns where the thumbnail for a clip ID lives (whether or not it
// has been generated yet).
func (g *Generator) Path(id string) string {
	return filepath.Join(g.dir, id+".jpg")
}

// Ensure generates the thumbnail for one clip unless it already exists.
func (g *Generator) Ensure(ctx context.Context, id, videoPath string) error {
	out := g.Path(id)
	if _, err := os.Stat(out); err == nil {
		return nil
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("ensure thumbnail dir: %w", err)
	}
	tmp := out + ".tmp"
	defer os.Remove(tmp)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-ss", "1",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "4",
		"-f", "image2",
		"-y", tmp,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg frame extract: %w", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		return fmt.Errorf("read extracted frame: %w", err)
	}
	scaled, err := downscale(data, g.maxEdge)
	if err != nil {
		// Keep the raw frame rather than failing the whole thumbnail.
		g.log.Debug().Err(err).Str("clip", id).Msg("downscale failed, keeping raw frame")
		scaled = data
	}
	if err := os.WriteFile(tmp, scaled, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return os.Rename(tmp, out)
}

// Sync generates missing thumbnails for every record and prunes thumbnails
// whose clip is gone from the catalog. resolve maps a record's file name to
// its absolute media path. Returns how many clips have a thumbnail after the
// pass.
func (g *Generator) Sync(ctx context.Context, records []catalog.ClipRecord, resolve func(fileName string) string) int {
	generated := 0
	want := make(map[string]bool, len(records))
	for _, rec := range records {
		want[rec.ID+".jpg"] = true
		if err := g.Ensure(ctx, rec.ID, resolve(rec.FileName)); err != nil {
			g.log.Warn().Err(err).Str("clip", rec.ID).Str("file", rec.FileName).Msg("thumbnail generation failed")
			continue
		}
		generated++
	}

	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return generated
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jpg") {
			continue
		}
		if !want[name] {
			if err := os.Remove(filepath.Join(g.dir, name)); err == nil {
				g.log.Debug().Str("thumbnail", name).Msg("pruned stale thumbnail")
			}
		}
	}
	return generated
}

// downscale fits a JPEG frame inside max x max, preserving aspect ratio.
func downscale(data []byte, max int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, os.ErrInvalid
	}
	if w <= max && h <= max {
		return data, nil
	}
	nw, nh := w, h
	if w > h {
		nw = max
		nh = int(float64(h) * (float64(max) / float64(w)))
	} else {
		nh = max
		nw = int(float64(w) * (float64(max) / float64(h)))
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 82}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
