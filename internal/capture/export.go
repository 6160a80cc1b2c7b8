package capture

import (
	"fmt"
	"io"
	"os"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"github.com/Faultbox/depthview/internal/engine/texture"
)

// ToPointCloud builds an unorganized x y z rgb cloud from the points of f
// that have depth. Colors are sampled from src at each point's texture
// coordinate; a nil src leaves rgb zero.
func ToPointCloud(f *Frame, src *texture.Texture) (*pc.PointCloud, error) {
	n := f.Len()
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		v := f.Vertices[i]
		if v.Z > 0 && v.IsFinite() {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, ErrNoDepth
	}

	cloud := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z", "rgb"},
			Size:      []int{4, 4, 4, 4},
			Type:      []string{"F", "F", "F", "U"},
			Count:     []int{1, 1, 1, 1},
			Width:     len(keep),
			Height:    1,
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
		},
		Points: len(keep),
	}
	cloud.Data = make([]byte, cloud.Points*cloud.Stride())

	it, err := cloud.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	ct, err := cloud.Uint32Iterator("rgb")
	if err != nil {
		return nil, err
	}
	for _, i := range keep {
		v := f.Vertices[i]
		it.SetVec3(mat.Vec3{v.X, v.Y, v.Z})
		if src != nil {
			tc := f.TexCoords[i]
			ct.SetUint32(packRGB(src.Sample(tc.X, tc.Y)))
		}
		it.Incr()
		ct.Incr()
	}
	return cloud, nil
}

// WritePCD encodes the frame as a PCD stream.
func WritePCD(w io.Writer, f *Frame, src *texture.Texture) error {
	cloud, err := ToPointCloud(f, src)
	if err != nil {
		return err
	}
	if err := pc.Marshal(cloud, w); err != nil {
		return fmt.Errorf("encode pcd: %w", err)
	}
	return nil
}

// ExportPCD writes the frame to a PCD file at path.
func ExportPCD(path string, f *Frame, src *texture.Texture) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WritePCD(file, f, src)
}
