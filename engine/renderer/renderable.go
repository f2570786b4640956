package renderer

import (
	"github.com/klyja/geco/engine/model"
)

// RenderablePoint is a point resolved to its position at one frame.
type RenderablePoint struct {
	ID string  `json:"id" yaml:"id"`
	X  float32 `json:"x" yaml:"x"`
	Y  float32 `json:"y" yaml:"y"`
	Z  float32 `json:"z" yaml:"z"`
}

// RenderableFeature is a feature visible at one frame, with its structure resolved to positions.
type RenderableFeature struct {
	ID     string            `json:"id" yaml:"id"`
	Name   string            `json:"name" yaml:"name"`
	Kind   string            `json:"kind" yaml:"kind"`
	Points []RenderablePoint `json:"points" yaml:"points"`
}

// Renderables resolves every feature visible at frame into a plain, serializable view.
// Points without a defined position are left out.
//
// Parameters:
//   - a: the animation to read
//   - frame: the frame to resolve
//
// Returns:
//   - []RenderableFeature: visible features in creation order, never nil
func Renderables(a *model.Animation, frame int32) []RenderableFeature {
	out := []RenderableFeature{}
	if a == nil {
		return out
	}
	for _, f := range a.Features {
		if !f.VisibleAt(frame) {
			continue
		}
		rf := RenderableFeature{
			ID:     f.ID,
			Name:   f.Name,
			Kind:   f.Kind.String(),
			Points: []RenderablePoint{},
		}
		for _, id := range f.StructureAt(frame) {
			pos, ok := positionOf(f, id, frame)
			if !ok {
				continue
			}
			rf.Points = append(rf.Points, RenderablePoint{ID: id, X: pos.X, Y: pos.Y, Z: pos.Z})
		}
		out = append(out, rf)
	}
	return out
}
