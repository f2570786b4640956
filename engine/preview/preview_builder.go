package preview

import (
	"github.com/gogpu/gg"
	"github.com/klyja/geco/engine/camera"
)

// PreviewerBuilderOption is a functional option applied to a previewer during construction via NewPreviewer.
type PreviewerBuilderOption func(*previewer)

// WithSize sets the image dimensions in pixels. Non-positive values keep the default.
//
// Parameters:
//   - width: image width
//   - height: image height
//
// Returns:
//   - PreviewerBuilderOption: option function to apply
func WithSize(width, height int) PreviewerBuilderOption {
	return func(p *previewer) {
		if width > 0 {
			p.width = width
		}
		if height > 0 {
			p.height = height
		}
	}
}

// WithCamera sets the camera used for projection.
//
// Parameters:
//   - c: a pre-configured camera
//
// Returns:
//   - PreviewerBuilderOption: option function to apply
func WithCamera(c camera.Camera) PreviewerBuilderOption {
	return func(p *previewer) {
		p.camera = c
	}
}

// WithBackground sets the clear color.
func WithBackground(col gg.RGBA) PreviewerBuilderOption {
	return func(p *previewer) {
		p.background = col
	}
}

// WithColors sets the stroke colors of inactive and active features.
//
// Parameters:
//   - color: inactive feature color
//   - active: active feature color
//
// Returns:
//   - PreviewerBuilderOption: option function to apply
func WithColors(color, active gg.RGBA) PreviewerBuilderOption {
	return func(p *previewer) {
		p.color = color
		p.activeColor = active
	}
}

// WithLineWidth sets the segment stroke width in pixels.
func WithLineWidth(width float64) PreviewerBuilderOption {
	return func(p *previewer) {
		p.lineWidth = width
	}
}

// WithHiddenAlpha sets the opacity multiplier for segments on the far hemisphere. 0 skips them.
//
// Parameters:
//   - alpha: multiplier in [0, 1]
//
// Returns:
//   - PreviewerBuilderOption: option function to apply
func WithHiddenAlpha(alpha float64) PreviewerBuilderOption {
	return func(p *previewer) {
		p.hiddenAlpha = alpha
	}
}

// WithGlobe enables or disables the globe outline.
func WithGlobe(enabled bool) PreviewerBuilderOption {
	return func(p *previewer) {
		p.drawGlobe = enabled
	}
}
