package viewer

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/depthview/internal/assets"
	"github.com/Faultbox/depthview/internal/capture"
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/interact"
	"github.com/Faultbox/depthview/internal/engine/renderer"
	"github.com/Faultbox/depthview/internal/engine/texture"
	"github.com/Faultbox/depthview/pkg/math"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type fakeSource struct {
	frame    *capture.Frame
	nexts    int
	level    int
	paused   bool
	closed   bool
	err      error
	canPause bool
}

func (f *fakeSource) Next(ctx context.Context) (*capture.Frame, error) {
	f.nexts++
	if f.err != nil {
		return nil, f.err
	}
	return f.frame, nil
}

func (f *fakeSource) SetDecimation(level int) { f.level = level }

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type holdingSource struct {
	*fakeSource
}

func (h holdingSource) SetPaused(paused bool) { h.paused = paused }

func solid(c color.RGBA) *texture.Texture {
	return texture.Solid(2, 2, c)
}

func singlePoint() *capture.Frame {
	return &capture.Frame{
		Vertices:   []math.Vec3{{X: 0, Y: 0, Z: 2}},
		TexCoords:  []math.Vec2{{}},
		Intrinsics: capture.DefaultIntrinsics(10, 10),
		Color:      solid(red),
		DepthColor: solid(blue),
	}
}

func newTestSession(t *testing.T, src capture.Source) *Session {
	t.Helper()
	pose := camera.Pose{Distance: 2, DecimationLevel: 1, UseColorTexture: true}
	dir := t.TempDir()
	s := New(src, 10, 10, Options{
		Renderer:      renderer.Config{Painter: true},
		Pose:          &pose,
		ScreenshotDir: dir,
		ExportDir:     dir,
	}, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCommandForKey(t *testing.T) {
	tests := map[rune]Command{
		'r':       CommandReset,
		'p':       CommandPause,
		'd':       CommandDecimate,
		'z':       CommandScale,
		'c':       CommandColor,
		's':       CommandScreenshot,
		'e':       CommandExport,
		'm':       CommandMode,
		'o':       CommandPainter,
		'q':       CommandQuit,
		KeyEscape: CommandQuit,
		'x':       CommandNone,
	}
	for key, want := range tests {
		assert.Equal(t, want, CommandForKey(key), "key %q", key)
	}
	assert.Equal(t, "decimate", CommandDecimate.String())
	assert.Equal(t, "none", Command(99).String())
}

func TestStepRendersFrame(t *testing.T) {
	src := &fakeSource{frame: singlePoint()}
	s := newTestSession(t, src)
	assert.Equal(t, 1, src.level, "starting decimation is forwarded")

	stats, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Points)
	assert.Equal(t, 1, stats.Drawn)
	assert.Equal(t, red, s.Target().At(5, 5))
	assert.Same(t, src.frame, s.Frame())

	require.NoError(t, s.Execute(CommandColor))
	_, err = s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, blue, s.Target().At(5, 5))
}

func TestStepError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestSession(t, &fakeSource{err: boom})
	_, err := s.Step(context.Background())
	assert.ErrorIs(t, err, boom)
}

func unorganizedCloud(t *testing.T, n int) *pc.PointCloud {
	t.Helper()
	cloud := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version: 0.7,
			Fields:  []string{"x", "y", "z"},
			Size:    []int{4, 4, 4},
			Type:    []string{"F", "F", "F"},
			Count:   []int{1, 1, 1},
			Width:   n,
			Height:  1,
		},
		Points: n,
	}
	cloud.Data = make([]byte, n*cloud.Stride())
	it, err := cloud.Vec3Iterator()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		f := float32(i)/float32(n-1) - 0.5
		it.SetVec3(mat.Vec3{0.4 * f, 0.2 * f, 2})
		it.Incr()
	}
	return cloud
}

func TestStepUnorganizedCloudScaled(t *testing.T) {
	for _, level := range []int{0, 1} {
		f, err := capture.FrameFromCloud(unorganizedCloud(t, 64), capture.Intrinsics{}, capture.DefaultDepthOptions(), 0)
		require.NoError(t, err)

		pose := camera.DefaultPose()
		pose.DecimationLevel = level
		s := New(&fakeSource{frame: f}, 320, 240, Options{Renderer: renderer.Config{Painter: true}, Pose: &pose}, nil)
		require.True(t, s.State().Pose().ScaleToOutput)

		stats, err := s.Step(context.Background())
		require.NoError(t, err)
		assert.False(t, stats.Staged, "level %d", level)
		assert.Equal(t, 64, stats.Drawn, "level %d", level)
		assert.Greater(t, s.Target().CountNonBlack(), 1, "level %d", level)
	}
}

func TestPauseHoldsFrame(t *testing.T) {
	src := &fakeSource{frame: singlePoint()}
	s := newTestSession(t, src)

	_, err := s.Step(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Execute(CommandPause))
	assert.True(t, s.Paused())

	_, err = s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.nexts)

	require.NoError(t, s.Execute(CommandPause))
	_, err = s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.nexts)
}

func TestPauseForwardsToHoldingSource(t *testing.T) {
	inner := &fakeSource{frame: singlePoint()}
	s := newTestSession(t, holdingSource{inner})

	require.NoError(t, s.Execute(CommandPause))
	assert.True(t, inner.paused)

	for i := 0; i < 2; i++ {
		_, err := s.Step(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.nexts, "a holding source is still asked for frames")
}

func TestDecimateCycles(t *testing.T) {
	src := &fakeSource{frame: singlePoint()}
	s := newTestSession(t, src)

	var levels []int
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Execute(CommandDecimate))
		levels = append(levels, src.level)
		assert.Equal(t, src.level, s.State().Pose().DecimationLevel)
	}
	assert.Equal(t, []int{2, 0, 1}, levels)
}

func TestToggles(t *testing.T) {
	s := newTestSession(t, &fakeSource{frame: singlePoint()})

	require.NoError(t, s.Execute(CommandScale))
	assert.True(t, s.State().Pose().ScaleToOutput)

	require.NoError(t, s.Execute(CommandPainter))
	assert.False(t, s.renderer.Config().Painter)

	require.NoError(t, s.Execute(CommandMode))
	assert.Equal(t, ModeFlat, s.Mode())
	require.NoError(t, s.Execute(CommandMode))
	assert.Equal(t, ModeCloud, s.Mode())

	assert.False(t, s.Done())
	require.NoError(t, s.Execute(CommandQuit))
	assert.True(t, s.Done())

	require.NoError(t, s.Execute(CommandNone))
}

func TestResetKeepsSwitches(t *testing.T) {
	s := newTestSession(t, &fakeSource{frame: singlePoint()})

	s.HandlePointer(interact.ButtonDown(camera.ButtonPrimary, 5, 5))
	s.HandlePointer(interact.Move(6, 5))
	s.HandlePointer(interact.ButtonUp(camera.ButtonPrimary, 6, 5))
	require.NotZero(t, s.State().Pose().Yaw)

	require.NoError(t, s.Execute(CommandScale))
	require.NoError(t, s.Execute(CommandReset))

	pose := s.State().Pose()
	assert.Zero(t, pose.Yaw)
	assert.Zero(t, pose.Pitch)
	assert.True(t, pose.ScaleToOutput)
}

func TestFlatMode(t *testing.T) {
	s := newTestSession(t, &fakeSource{frame: singlePoint()})
	require.NoError(t, s.Execute(CommandMode))

	_, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, red, s.Target().At(5, 2))
	assert.Equal(t, blue, s.Target().At(5, 7))
}

func TestResize(t *testing.T) {
	s := newTestSession(t, &fakeSource{frame: singlePoint()})

	s.Resize(20, 8)
	w, h := s.Target().Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 8, h)

	s.Resize(0, 8)
	w, _ = s.Target().Size()
	assert.Equal(t, 20, w)

	_, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, s.Target().Image().Bounds().Dx())
}

func TestScreenshotAndExport(t *testing.T) {
	s := newTestSession(t, &fakeSource{frame: singlePoint()})

	err := s.Execute(CommandExport)
	assert.ErrorIs(t, err, ErrNoFrame)

	_, err = s.Step(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Execute(CommandScreenshot))
	shots, err := filepath.Glob(filepath.Join(s.exportDir, "depthview_*.png"))
	require.NoError(t, err)
	assert.Len(t, shots, 1)

	require.NoError(t, s.Execute(CommandExport))
	path := filepath.Join(s.exportDir, "depthview_2024-05-01_12-00-00.pcd")
	assert.FileExists(t, path)

	src := capture.NewPCDSource(assets.NewManager(), path, capture.Intrinsics{}, capture.DefaultDepthOptions())
	f, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.InDelta(t, 2.0, f.Vertices[0].Z, 1e-6)
	assert.Equal(t, red, f.Color.At(0, 0))
}

func TestClose(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src)
	require.NoError(t, s.Close())
	assert.True(t, src.closed)
}
