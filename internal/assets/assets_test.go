package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAddRoot(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if err := m.AddRoot(t.TempDir()); err != nil {
		t.Errorf("AddRoot(dir) error = %v", err)
	}
	if err := m.AddRoot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("AddRoot(missing) should fail")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, []byte("x"))
	if err := m.AddRoot(file); err == nil {
		t.Error("AddRoot(file) should fail")
	}
}

func TestResolve(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "a.txt"), []byte("first"))
	writeFile(t, filepath.Join(first, "only.txt"), []byte("only"))
	writeFile(t, filepath.Join(second, "a.txt"), []byte("second"))

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(first); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRoot(second); err != nil {
		t.Fatal(err)
	}

	got, err := m.Resolve("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(second, "a.txt") {
		t.Errorf("Resolve(a.txt) = %s, want the later root", got)
	}

	got, err = m.Resolve("only.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(first, "only.txt") {
		t.Errorf("Resolve(only.txt) = %s", got)
	}

	abs := filepath.Join(first, "a.txt")
	if got, err := m.Resolve(abs); err != nil || got != abs {
		t.Errorf("Resolve(abs) = %s, %v", got, err)
	}

	if _, err := m.Resolve("nope.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(nope) error = %v, want ErrNotFound", err)
	}
	if _, err := m.Resolve(filepath.Join(first, "nope.txt")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(abs nope) error = %v, want ErrNotFound", err)
	}
}

func TestLoadCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.bin"), []byte{1, 2, 3})

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(dir); err != nil {
		t.Fatal(err)
	}

	data, err := m.Load("data.bin")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Load() = %v", data)
	}

	// A cached entry survives the file changing on disk.
	writeFile(t, filepath.Join(dir, "data.bin"), []byte{9})
	data, err = m.Load("data.bin")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("Load() after change = %v, want cached bytes", data)
	}

	hits, misses := m.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1, 1", hits, misses)
	}

	m.Evict("data.bin")
	data, err = m.Load("data.bin")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{9}) {
		t.Errorf("Load() after Evict = %v", data)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 2, color.RGBA{R: 200, A: 255})
	if err := imgio.Save(filepath.Join(dir, "color.png"), img, imgio.PNGEncoder()); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(dir); err != nil {
		t.Fatal(err)
	}

	got, err := m.LoadImage("color.png")
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 3 {
		t.Errorf("LoadImage() bounds = %v", got.Bounds())
	}
	r, _, _, _ := got.At(1, 2).RGBA()
	if r>>8 != 200 {
		t.Errorf("LoadImage() pixel red = %d, want 200", r>>8)
	}

	again, err := m.LoadImage("color.png")
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Error("LoadImage() should return the cached image")
	}

	writeFile(t, filepath.Join(dir, "bad.png"), []byte("not a png"))
	if _, err := m.LoadImage("bad.png"); err == nil {
		t.Error("LoadImage(bad) should fail")
	}
}

func TestLoadPointCloud(t *testing.T) {
	cloud := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z"},
			Size:      []int{4, 4, 4},
			Type:      []string{"F", "F", "F"},
			Count:     []int{1, 1, 1},
			Width:     2,
			Height:    1,
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
		},
		Points: 2,
	}
	cloud.Data = make([]byte, cloud.Points*cloud.Stride())
	it, err := cloud.Vec3Iterator()
	if err != nil {
		t.Fatal(err)
	}
	it.SetVec3(mat.Vec3{1, 2, 3})
	it.Incr()
	it.SetVec3(mat.Vec3{4, 5, 6})

	var buf bytes.Buffer
	if err := pc.Marshal(cloud, &buf); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cloud.pcd"), buf.Bytes())

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(dir); err != nil {
		t.Fatal(err)
	}

	got, err := m.LoadPointCloud("cloud.pcd")
	if err != nil {
		t.Fatal(err)
	}
	if got.Points != 2 {
		t.Fatalf("Points = %d, want 2", got.Points)
	}
	jt, err := got.Vec3Iterator()
	if err != nil {
		t.Fatal(err)
	}
	jt.Incr()
	if v := jt.Vec3(); v != (mat.Vec3{4, 5, 6}) {
		t.Errorf("second point = %v", v)
	}

	if _, err := m.LoadPointCloud("missing.pcd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadPointCloud(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache[int]()

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Delete should miss")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats() = %d, %d, want 1, 2", hits, misses)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	hits, misses = c.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("Stats() after Clear = %d, %d", hits, misses)
	}
}
