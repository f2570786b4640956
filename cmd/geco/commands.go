package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine"
	"github.com/klyja/geco/engine/bake"
	"github.com/klyja/geco/engine/camera"
	"github.com/klyja/geco/engine/preview"
	"github.com/klyja/geco/engine/profiler"
	"github.com/klyja/geco/engine/renderer"
	"github.com/klyja/geco/engine/store"
	"gopkg.in/yaml.v3"
)

var errMissingInput = errors.New("-in is required")

// inspection is the document printed by inspect.
type inspection struct {
	ID            string                       `json:"id" yaml:"id"`
	Name          string                       `json:"name" yaml:"name"`
	TotalFrames   int32                        `json:"total_frames" yaml:"total_frames"`
	ActiveFeature string                       `json:"active_feature,omitempty" yaml:"active_feature,omitempty"`
	Features      []store.FeatureInfo          `json:"features" yaml:"features"`
	Frame         *int32                       `json:"frame,omitempty" yaml:"frame,omitempty"`
	Renderables   []renderer.RenderableFeature `json:"renderables,omitempty" yaml:"renderables,omitempty"`
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("geco "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse parses args and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments %v", fs.Args())
	}
	return nil
}

// flagSet reports whether name was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// loadEngine decodes the animation file at path into a new engine.
func loadEngine(path string) (engine.Engine, error) {
	if path == "" {
		return nil, errMissingInput
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read animation: %w", err)
	}
	e := engine.NewEngine()
	if err := e.Decode(data); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return e, nil
}

func runDemo(_ Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("demo")
	out := fs.String("out", "demo.pb", "file to write the encoded animation to")
	if err := parse(fs, args); err != nil {
		return err
	}

	e := engine.NewEngine()
	if err := buildDemo(e); err != nil {
		return fmt.Errorf("build demo: %w", err)
	}
	data := e.Encode()
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write animation: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes, %d features)\n", *out, len(data), len(e.Features()))
	return nil
}

func runInspect(_ Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("inspect")
	in := fs.String("in", "", "encoded animation file")
	frame := fs.Int("frame", 0, "also list the features visible at this frame")
	format := fs.String("format", "json", "output format: json or yaml")
	if err := parse(fs, args); err != nil {
		return err
	}

	e, err := loadEngine(*in)
	if err != nil {
		return err
	}

	doc := inspection{
		ID:          e.ID(),
		Name:        e.Name(),
		TotalFrames: e.TotalFrames(),
		Features:    e.Features(),
	}
	doc.ActiveFeature, _ = e.ActiveFeatureID()
	if flagSet(fs, "frame") {
		f := int32(*frame)
		doc.Frame = &f
		doc.Renderables = e.Renderables(f)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

// previewFlags holds the image and camera flags shared by preview and bake.
type previewFlags struct {
	width     *int
	height    *int
	azimuth   *float64
	elevation *float64
	radius    *float64
}

func addPreviewFlags(fs *flag.FlagSet, cfg PreviewConfig) previewFlags {
	return previewFlags{
		width:     fs.Int("width", cfg.Width, "image width in pixels"),
		height:    fs.Int("height", cfg.Height, "image height in pixels"),
		azimuth:   fs.Float64("azimuth", float64(cfg.Azimuth), "camera azimuth in radians"),
		elevation: fs.Float64("elevation", float64(cfg.Elevation), "camera elevation in radians"),
		radius:    fs.Float64("radius", float64(cfg.Radius), "camera distance from the globe center"),
	}
}

func (p previewFlags) previewer(cfg PreviewConfig) preview.Previewer {
	width, height := *p.width, *p.height
	cam := camera.NewCamera(
		camera.WithAspect(float32(width)/float32(max(height, 1))),
		camera.WithController(camera.NewOrbitController(
			camera.WithAzimuth(float32(*p.azimuth)),
			camera.WithElevation(float32(*p.elevation)),
			camera.WithRadius(float32(*p.radius)),
		)),
	)
	return preview.NewPreviewer(
		preview.WithSize(width, height),
		preview.WithCamera(cam),
		preview.WithLineWidth(cfg.LineWidth),
		preview.WithHiddenAlpha(cfg.HiddenAlpha),
		preview.WithGlobe(cfg.Globe),
	)
}

func runPreview(cfg Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("preview")
	in := fs.String("in", "", "encoded animation file")
	frame := fs.Int("frame", 0, "frame to render")
	out := fs.String("out", "frame.png", "PNG file to write")
	active := fs.String("active", "", "feature to highlight (default: the active feature of the file)")
	pf := addPreviewFlags(fs, cfg.Preview)
	if err := parse(fs, args); err != nil {
		return err
	}

	e, err := loadEngine(*in)
	if err != nil {
		return err
	}
	activeID := *active
	if !flagSet(fs, "active") {
		activeID, _ = e.ActiveFeatureID()
	}

	buf := e.BuildSegments(int32(*frame), activeID)
	if err := pf.previewer(cfg.Preview).SavePNG(*out, buf); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (frame %d, %d segments)\n", *out, *frame, buf.SegmentCount)
	return nil
}

func runBake(cfg Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("bake")
	in := fs.String("in", "", "encoded animation file")
	from := fs.Int("from", 0, "first frame")
	to := fs.Int("to", -1, "last frame, inclusive (default: the last frame of the animation)")
	out := fs.String("out", "bake", "directory to write frame files to")
	png := fs.Bool("png", false, "also write a PNG preview per frame")
	workers := fs.Int("workers", cfg.Bake.Workers, "worker count (0: one less than the CPU count)")
	pf := addPreviewFlags(fs, cfg.Preview)
	if err := parse(fs, args); err != nil {
		return err
	}

	e, err := loadEngine(*in)
	if err != nil {
		return err
	}
	last := int32(*to)
	if !flagSet(fs, "to") {
		last = max(e.TotalFrames()-1, int32(*from))
	}
	active, _ := e.ActiveFeatureID()

	options := []bake.BakerBuilderOption{
		bake.WithQueueSize(cfg.Bake.QueueSize),
		bake.WithActiveFeature(active),
	}
	if *workers > 0 {
		options = append(options, bake.WithWorkers(*workers))
	}
	if cfg.Bake.Profile {
		options = append(options, bake.WithProfiler(profiler.NewProfiler(profiler.WithLabel("bake"))))
	}

	frames, err := bake.Frames(e.Animation(), int32(*from), last, options...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var pv preview.Previewer
	if *png {
		pv = pf.previewer(cfg.Preview)
	}
	segments := 0
	for _, f := range frames {
		base := filepath.Join(*out, fmt.Sprintf("frame_%05d", f.Frame))
		if err := os.WriteFile(base+".bin", f.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Frame, err)
		}
		if pv != nil {
			if err := pv.SavePNG(base+".png", f.SegmentBuffer()); err != nil {
				return err
			}
		}
		segments += f.SegmentCount
	}

	common.Logger().Info("bake written", "dir", *out, "frames", len(frames), "segments", segments)
	fmt.Fprintf(stdout, "wrote %d frames to %s\n", len(frames), *out)
	return nil
}
