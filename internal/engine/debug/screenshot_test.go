package debug

import (
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/Faultbox/depthview/internal/engine/framebuffer"
)

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "depthview")
	sc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

	want := filepath.Join("shots", "depthview_2024-03-09_14-05-07.png")
	if got := sc.GenerateFilename(); got != want {
		t.Errorf("GenerateFilename: got %q, want %q", got, want)
	}

	sc.SetOutputDir("")
	if got := sc.GenerateFilename(); got != "depthview_2024-03-09_14-05-07.png" {
		t.Errorf("GenerateFilename without dir: got %q", got)
	}
}

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	sc := NewScreenshotCapture(dir, "frame")

	buf := framebuffer.New(6, 4)
	buf.Set(3, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	name, err := sc.Capture(buf)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	img, err := imgio.Open(name)
	if err != nil {
		t.Fatalf("reopening %s: %v", name, err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("size: got %v, want 6x4", b)
	}
	r, g, b, _ := img.At(5, 3).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel (5,3): got (%d,%d,%d), want (10,20,30)", r>>8, g>>8, b>>8)
	}
}
