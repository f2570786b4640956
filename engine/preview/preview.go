// Package preview rasterizes segment buffers to images on the CPU, for inspecting an animation without a GPU.
package preview

import (
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/camera"
	"github.com/klyja/geco/engine/renderer"
)

// horizonSteps is the number of line segments used to outline the globe.
const horizonSteps = 96

type previewer struct {
	width  int
	height int
	camera camera.Camera

	background  gg.RGBA
	globe       gg.RGBA
	color       gg.RGBA
	activeColor gg.RGBA

	lineWidth   float64
	hiddenAlpha float64
	drawGlobe   bool
}

// Previewer draws the segments of a SegmentBuffer as seen through an orbit camera around the globe.
// Segments on the far hemisphere are drawn with reduced opacity, or skipped when the hidden alpha is 0.
type Previewer interface {
	// Draw rasterizes buf into a new context. The caller must Close the returned context.
	//
	// Parameters:
	//   - buf: the segments to draw
	//
	// Returns:
	//   - *gg.Context: the drawn image
	//   - error: an error if stroking fails
	Draw(buf *renderer.SegmentBuffer) (*gg.Context, error)

	// WritePNG draws buf and encodes the image as PNG to w.
	//
	// Parameters:
	//   - w: the destination
	//   - buf: the segments to draw
	//
	// Returns:
	//   - error: an error if drawing or encoding fails
	WritePNG(w io.Writer, buf *renderer.SegmentBuffer) error

	// SavePNG draws buf and writes the image as a PNG file.
	//
	// Parameters:
	//   - path: the file to write
	//   - buf: the segments to draw
	//
	// Returns:
	//   - error: an error if drawing or writing fails
	SavePNG(path string, buf *renderer.SegmentBuffer) error

	// Camera returns the camera used for projection.
	Camera() camera.Camera

	// Size returns the image dimensions in pixels.
	Size() (width, height int)
}

var _ Previewer = &previewer{}

// NewPreviewer creates a Previewer producing 512x512 images. Without WithCamera a default orbit camera
// is created with the aspect ratio of the image.
//
// Parameters:
//   - options: functional options (size, camera, colors, line width)
//
// Returns:
//   - Previewer: the newly created previewer
func NewPreviewer(options ...PreviewerBuilderOption) Previewer {
	p := &previewer{
		width:       512,
		height:      512,
		background:  gg.Hex("#0b1320"),
		globe:       gg.RGBA{R: 0.25, G: 0.32, B: 0.42, A: 1},
		color:       rgba(renderer.DefaultSegmentColor),
		activeColor: rgba(renderer.DefaultActiveSegmentColor),
		lineWidth:   2,
		hiddenAlpha: 0.2,
		drawGlobe:   true,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.camera == nil {
		p.camera = camera.NewCamera(camera.WithAspect(float32(p.width) / float32(p.height)))
	}
	return p
}

func (p *previewer) Camera() camera.Camera {
	return p.camera
}

func (p *previewer) Size() (width, height int) {
	return p.width, p.height
}

func (p *previewer) Draw(buf *renderer.SegmentBuffer) (*gg.Context, error) {
	dc := gg.NewContext(p.width, p.height)
	dc.ClearWithColor(p.background)
	dc.SetLineCap(gg.LineCapRound)

	if p.drawGlobe {
		if err := p.drawHorizon(dc); err != nil {
			dc.Close()
			return nil, fmt.Errorf("draw globe: %w", err)
		}
	}

	frustum := p.camera.Frustum()
	drawn, culled := 0, 0
	dc.SetLineWidth(p.lineWidth)
	for i := 0; i < buf.SegmentCount; i++ {
		from, to := buf.Segment(i)
		a := common.NewVec3(from.Position[0], from.Position[1], from.Position[2])
		b := common.NewVec3(to.Position[0], to.Position[1], to.Position[2])

		if !frustum.IntersectsSegment(a, b) {
			culled++
			continue
		}
		ax, ay, okA := p.camera.Project(a)
		bx, by, okB := p.camera.Project(b)
		if !okA || !okB {
			culled++
			continue
		}

		col := p.color
		if from.Active > 0.5 {
			col = p.activeColor
		}
		if !p.camera.FacesCamera(a) || !p.camera.FacesCamera(b) {
			if p.hiddenAlpha <= 0 {
				culled++
				continue
			}
			col.A *= p.hiddenAlpha
		}

		dc.SetRGBA(col.R, col.G, col.B, col.A)
		x1, y1 := p.toPixel(ax, ay)
		x2, y2 := p.toPixel(bx, by)
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("stroke segment %d: %w", i, err)
		}
		drawn++
	}

	common.Logger().Debug("preview drawn", "segments", buf.SegmentCount, "drawn", drawn, "culled", culled)
	return dc, nil
}

func (p *previewer) WritePNG(w io.Writer, buf *renderer.SegmentBuffer) error {
	dc, err := p.Draw(buf)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

func (p *previewer) SavePNG(path string, buf *renderer.SegmentBuffer) error {
	dc, err := p.Draw(buf)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save preview %s: %w", path, err)
	}
	common.Logger().Info("preview saved", "path", path, "width", p.width, "height", p.height)
	return nil
}

// drawHorizon outlines the unit globe. Seen from an eye at distance d, the horizon is a circle of radius
// sqrt(1 - 1/d^2) centered at eye/d^2.
func (p *previewer) drawHorizon(dc *gg.Context) error {
	eye := p.camera.Eye()
	d2 := eye.Dot(eye)
	if d2 <= 1 {
		return nil
	}
	center := eye.Scale(1 / d2)
	radius := math32.Sqrt(1 - 1/d2)

	n := eye.Normalize()
	u := common.NewVec3(0, 1, 0)
	if math32.Abs(n.Dot(u)) > 0.99 {
		u = common.NewVec3(1, 0, 0)
	}
	u = u.Sub(n.Scale(n.Dot(u))).Normalize()
	v := common.NewVec3(n.Y*u.Z-n.Z*u.Y, n.Z*u.X-n.X*u.Z, n.X*u.Y-n.Y*u.X)

	started := false
	for i := 0; i <= horizonSteps; i++ {
		angle := 2 * math32.Pi * float32(i) / horizonSteps
		pt := center.Add(u.Scale(radius * math32.Cos(angle))).Add(v.Scale(radius * math32.Sin(angle)))
		x, y, ok := p.camera.Project(pt)
		if !ok {
			started = false
			continue
		}
		px, py := p.toPixel(x, y)
		if !started {
			dc.MoveTo(px, py)
			started = true
			continue
		}
		dc.LineTo(px, py)
	}

	dc.SetRGBA(p.globe.R, p.globe.G, p.globe.B, p.globe.A)
	dc.SetLineWidth(1)
	return dc.Stroke()
}

// toPixel maps NDC (y up) to image coordinates (y down).
func (p *previewer) toPixel(x, y float32) (float64, float64) {
	return float64(x+1) / 2 * float64(p.width), float64(1-y) / 2 * float64(p.height)
}

func rgba(c [4]float32) gg.RGBA {
	return gg.RGBA{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}
