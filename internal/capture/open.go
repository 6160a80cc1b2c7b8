package capture

import (
	"fmt"

	"github.com/Faultbox/depthview/internal/assets"
)

// Kind names a source implementation.
type Kind string

const (
	KindDepth    Kind = "depth"
	KindSequence Kind = "sequence"
	KindPCD      Kind = "pcd"
)

// Kinds lists the known source kinds.
func Kinds() []Kind {
	return []Kind{KindDepth, KindSequence, KindPCD}
}

// Spec selects and configures a source.
type Spec struct {
	Kind Kind
	// Path is the depth image, the sequence directory or the PCD file.
	Path string
	// Color is the aligned color image, or for sequences the color directory.
	Color string

	Intrinsics Intrinsics
	Depth      DepthOptions
}

// Open creates the source described by spec.
func Open(m *assets.Manager, spec Spec) (Source, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("open %s source: empty path", spec.Kind)
	}
	switch spec.Kind {
	case KindDepth:
		return NewDepthImageSource(m, spec.Path, spec.Color, spec.Intrinsics, spec.Depth), nil
	case KindSequence:
		return NewSequenceSource(m, spec.Path, spec.Color, spec.Intrinsics, spec.Depth)
	case KindPCD:
		return NewPCDSource(m, spec.Path, spec.Intrinsics, spec.Depth), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", spec.Kind)
	}
}
