package thumbs

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"clipvault/internal/catalog"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPath(t *testing.T) {
	g := NewGenerator("/data/assets/thumbnails", 480, zerolog.Nop())
	if got := g.Path("a1b2c3d4"); got != filepath.Join("/data/assets/thumbnails", "a1b2c3d4.jpg") {
		t.Fatalf("Path = %q", got)
	}
}

func TestEnsureSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, 480, zerolog.Nop())
	existing := encodeJPEG(t, 10, 10)
	if err := os.WriteFile(g.Path("abc"), existing, 0o644); err != nil {
		t.Fatal(err)
	}
	// videoPath does not exist; Ensure must not touch ffmpeg when the
	// thumbnail is already on disk.
	if err := g.Ensure(context.Background(), "abc", filepath.Join(dir, "missing.mp4")); err != nil {
		t.Fatalf("existing thumbnail: %v", err)
	}
	data, err := os.ReadFile(g.Path("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, existing) {
		t.Fatal("existing thumbnail was rewritten")
	}
}

func TestSyncPrunesStaleThumbnails(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, 480, zerolog.Nop())
	keep := encodeJPEG(t, 4, 4)
	if err := os.WriteFile(g.Path("kept1234"), keep, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(g.Path("stale567"), keep, 0o644); err != nil {
		t.Fatal(err)
	}
	// A non-thumbnail file in the directory is left alone.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	records := []catalog.ClipRecord{{ID: "kept1234", FileName: "kept.mp4"}}
	n := g.Sync(context.Background(), records, func(fileName string) string {
		return filepath.Join(dir, fileName)
	})
	if n != 1 {
		t.Fatalf("Sync reported %d thumbnails, want 1", n)
	}
	if _, err := os.Stat(g.Path("kept1234")); err != nil {
		t.Fatalf("kept thumbnail pruned: %v", err)
	}
	if _, err := os.Stat(g.Path("stale567")); !os.IsNotExist(err) {
		t.Fatalf("stale thumbnail survived, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("non-thumbnail file pruned: %v", err)
	}
}

func TestDownscale(t *testing.T) {
	t.Run("large frame is scaled to fit", func(t *testing.T) {
		out, err := downscale(encodeJPEG(t, 1920, 1080), 480)
		if err != nil {
			t.Fatal(err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		b := img.Bounds()
		if b.Dx() != 480 || b.Dy() != 270 {
			t.Fatalf("scaled to %dx%d, want 480x270", b.Dx(), b.Dy())
		}
	})
	t.Run("small frame is untouched", func(t *testing.T) {
		in := encodeJPEG(t, 320, 240)
		out, err := downscale(in, 480)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(in, out) {
			t.Fatal("frame within bounds must pass through unchanged")
		}
	})
	t.Run("portrait frame keeps aspect", func(t *testing.T) {
		out, err := downscale(encodeJPEG(t, 600, 1200), 300)
		if err != nil {
			t.Fatal(err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		b := img.Bounds()
		if b.Dx() != 150 || b.Dy() != 300 {
			t.Fatalf("scaled to %dx%d, want 150x300", b.Dx(), b.Dy())
		}
	})
	t.Run("garbage input errors", func(t *testing.T) {
		if _, err := downscale([]byte("not an image"), 480); err == nil {
			t.Fatal("expected decode error")
		}
	})
}
