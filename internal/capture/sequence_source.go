package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Faultbox/depthview/internal/assets"
)

// SequenceSource plays a directory of depth images in name order and loops.
// When colorDir is set, a color image with the same file name is paired with
// each depth image if it exists.
type SequenceSource struct {
	assets     *assets.Manager
	files      []string
	colorDir   string
	intrinsics Intrinsics
	opts       DepthOptions

	mu      sync.Mutex
	level   int
	next    int
	current int
	paused  bool
	last    *Frame
	loaded  [2]string
}

// NewSequenceSource lists the PNG files of dir.
func NewSequenceSource(m *assets.Manager, dir, colorDir string, in Intrinsics, opts DepthOptions) (*SequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sequence dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("sequence %s: %w", dir, ErrNoDepth)
	}
	slices.Sort(files)

	return &SequenceSource{
		assets:     m,
		files:      files,
		colorDir:   colorDir,
		intrinsics: in,
		opts:       opts,
		current:    -1,
	}, nil
}

// Len returns the number of frames in the sequence.
func (s *SequenceSource) Len() int {
	return len(s.files)
}

// SetDecimation implements Source.
func (s *SequenceSource) SetDecimation(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	level = clampLevel(level)
	if level != s.level {
		s.level = level
		s.last = nil
	}
}

// SetPaused holds the current frame.
func (s *SequenceSource) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Next implements Source.
func (s *SequenceSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused && s.last != nil {
		return s.last, nil
	}

	idx := s.next
	if s.paused && s.current >= 0 {
		// Rebuild the held frame after a decimation change.
		idx = s.current
	}

	depthPath := s.files[idx]
	colorPath := ""
	if s.colorDir != "" {
		candidate := filepath.Join(s.colorDir, filepath.Base(depthPath))
		if _, err := os.Stat(candidate); err == nil {
			colorPath = candidate
		}
	}

	f, err := loadDepthFrame(s.assets, depthPath, colorPath, s.intrinsics, s.opts, s.level)
	if err != nil {
		return nil, err
	}
	f.Index = idx
	s.current = idx

	for _, p := range s.loaded {
		if p != "" && p != depthPath && p != colorPath {
			s.assets.Evict(p)
		}
	}
	s.loaded = [2]string{depthPath, colorPath}

	if !s.paused {
		s.next = (idx + 1) % len(s.files)
	}
	s.last = f
	return f, nil
}

// Close implements Source.
func (s *SequenceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.loaded {
		if p != "" {
			s.assets.Evict(p)
		}
	}
	s.last = nil
	return nil
}
