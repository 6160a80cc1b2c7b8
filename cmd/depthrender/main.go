// depthrender renders depth captures and point cloud files without a display.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/Faultbox/depthview/internal/assets"
	"github.com/Faultbox/depthview/internal/capture"
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/renderer"
	"github.com/Faultbox/depthview/internal/logger"
	"github.com/Faultbox/depthview/internal/viewer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "render":
		err = cmdRender(args)
	case "export":
		err = cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`depthrender - headless depth and point cloud renderer

Usage:
  depthrender <command> [options] <path>

Commands:
  info <path>                 Show frame information
  render [options] <path>     Render one frame to a PNG
  export [options] <path>     Write the frame as a PCD file

Paths ending in .pcd are point clouds, directories are depth sequences,
anything else is a 16-bit depth image.

Examples:
  depthrender info scan.png
  depthrender render -o view.png -yaw 30 -color scan_color.png scan.png
  depthrender export -o scan.pcd -color scan_color.png scan.png`)
}

type sourceFlags struct {
	kind      *string
	color     *string
	scale     *float64
	near      *float64
	far       *float64
	decim     *int
	debug     *bool
	logFile   *string
	logFormat *string
}

func addSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		kind:      fs.String("kind", "", "Source kind: depth, sequence or pcd (default: from path)"),
		color:     fs.String("color", "", "Aligned color image or color directory"),
		scale:     fs.Float64("depth-scale", 0.001, "Meters per depth unit"),
		near:      fs.Float64("near", 0.3, "Colorizer near distance (m)"),
		far:       fs.Float64("far", 4, "Colorizer far distance (m)"),
		decim:     fs.Int("decimate", 1, "Decimation level (0-2)"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log", "", "Log file"),
		logFormat: fs.String("log-format", logger.FormatConsole, "Log format: console or json"),
	}
}

func (f sourceFlags) open(path string) (capture.Source, *assets.Manager, error) {
	level := "warn"
	if *f.debug {
		level = "debug"
	}
	opts := logger.Options{Level: level, Format: *f.logFormat, Console: true}
	if *f.logFile != "" {
		opts.File = logger.DefaultFileConfig(*f.logFile)
	}
	if err := logger.Setup(opts); err != nil {
		return nil, nil, err
	}

	kind := capture.Kind(*f.kind)
	if kind == "" {
		kind = detectKind(path)
	}
	m := assets.NewManager()
	src, err := capture.Open(m, capture.Spec{
		Kind:  kind,
		Path:  path,
		Color: *f.color,
		Depth: capture.DepthOptions{
			Scale: float32(*f.scale),
			Near:  float32(*f.near),
			Far:   float32(*f.far),
		},
	})
	if err != nil {
		return nil, nil, err
	}
	src.SetDecimation(*f.decim)
	return src, m, nil
}

func detectKind(path string) capture.Kind {
	if strings.EqualFold(filepath.Ext(path), ".pcd") {
		return capture.KindPCD
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return capture.KindSequence
	}
	return capture.KindDepth
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	sf := addSourceFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: depthrender info <path>")
	}
	path := fs.Arg(0)

	src, m, err := sf.open(path)
	if err != nil {
		return err
	}
	defer m.Close()
	defer src.Close()

	frame, err := src.Next(context.Background())
	if err != nil {
		return err
	}

	var valid int
	minZ, maxZ := float32(0), float32(0)
	for _, v := range frame.Vertices {
		if v.Z <= 0 || !v.IsFinite() {
			continue
		}
		if valid == 0 || v.Z < minZ {
			minZ = v.Z
		}
		if valid == 0 || v.Z > maxZ {
			maxZ = v.Z
		}
		valid++
	}

	in := frame.Intrinsics
	fmt.Printf("Source:     %s\n", path)
	fmt.Printf("Points:     %d (%d with depth)\n", frame.Len(), valid)
	fmt.Printf("Resolution: %dx%d\n", in.Width, in.Height)
	fmt.Printf("Intrinsics: fx=%.2f fy=%.2f cx=%.2f cy=%.2f\n", in.Fx, in.Fy, in.Cx, in.Cy)
	if valid > 0 {
		fmt.Printf("Depth:      %.3f - %.3f m\n", minZ, maxZ)
	}
	fmt.Printf("Color:      %v\n", frame.Color != nil)
	return nil
}

func cmdRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	sf := addSourceFlags(fs)
	output := fs.String("o", "depthrender.png", "Output PNG")
	width := fs.Int("w", 1280, "Output width")
	height := fs.Int("h", 720, "Output height")
	pitch := fs.Float64("pitch", -10, "Camera pitch (degrees)")
	yaw := fs.Float64("yaw", -15, "Camera yaw (degrees)")
	dist := fs.Float64("distance", 2, "Pivot distance (m)")
	noScale := fs.Bool("no-scale", false, "Project at output size without staging")
	depthTex := fs.Bool("depth-texture", false, "Color points with the colorized depth")
	noPainter := fs.Bool("no-painter", false, "Draw points in acquisition order")
	flat := fs.Bool("flat", false, "Render the 2D color and depth view")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: depthrender render [options] <path>")
	}

	src, m, err := sf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Close()

	pose := camera.DefaultPose()
	pose.Pitch = camera.Radians(float32(*pitch))
	pose.Yaw = camera.Radians(float32(*yaw))
	pose.Distance = float32(*dist)
	pose.DecimationLevel = max(0, min(camera.MaxDecimation, *sf.decim))
	pose.ScaleToOutput = !*noScale
	pose.UseColorTexture = !*depthTex

	cfg := renderer.DefaultConfig()
	cfg.Painter = !*noPainter

	session := viewer.New(src, *width, *height, viewer.Options{
		Renderer: cfg,
		Pose:     &pose,
	}, logger.Named("render"))
	defer session.Close()

	if *flat {
		if err := session.Execute(viewer.CommandMode); err != nil {
			return err
		}
	}

	stats, err := session.Step(context.Background())
	if err != nil {
		return err
	}
	if err := imgio.Save(*output, session.Target().Image(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("saving %s: %w", *output, err)
	}

	fmt.Printf("Rendered %d of %d points to %s\n", stats.Drawn, stats.Points, *output)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	sf := addSourceFlags(fs)
	output := fs.String("o", "depthrender.pcd", "Output PCD")
	depthTex := fs.Bool("depth-texture", false, "Store the colorized depth as rgb")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: depthrender export [options] <path>")
	}

	src, m, err := sf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Close()
	defer src.Close()

	frame, err := src.Next(context.Background())
	if err != nil {
		return err
	}
	if err := capture.ExportPCD(*output, frame, frame.ColorSource(!*depthTex)); err != nil {
		return err
	}

	fmt.Printf("Exported %s\n", *output)
	return nil
}
