package model

import (
	"fmt"
	"sort"

	"github.com/klyja/geco/common"
)

const (
	// DefaultName is the name given to a fresh animation.
	DefaultName = "Untitled Animation"
	// DefaultTotalFrames is the timeline length of a fresh animation.
	DefaultTotalFrames int32 = 100
)

// Feature is a polygon or polyline whose vertices and topology evolve over the timeline.
// A Feature exclusively owns its points and snapshots.
type Feature struct {
	ID   string
	Name string
	Kind Kind

	// AppearanceFrame and DisappearanceFrame bound the inclusive visibility window.
	AppearanceFrame    int32
	DisappearanceFrame int32

	// Points are kept in insertion order.
	Points []*Point

	// Snapshots are sorted ascending by frame with unique frames.
	Snapshots []StructureSnapshot

	pointIndex map[string]int
}

// NewFeature creates a feature with no points and the implicit empty snapshot at its appearance frame.
func NewFeature(id, name string, kind Kind, appearance, disappearance int32) *Feature {
	return &Feature{
		ID:                 id,
		Name:               name,
		Kind:               kind,
		AppearanceFrame:    appearance,
		DisappearanceFrame: disappearance,
		Points:             []*Point{},
		Snapshots:          []StructureSnapshot{{Frame: appearance, OrderedPointIDs: []string{}}},
		pointIndex:         make(map[string]int),
	}
}

// VisibleAt reports whether frame falls within the inclusive visibility window.
func (f *Feature) VisibleAt(frame int32) bool {
	return f.AppearanceFrame <= frame && frame <= f.DisappearanceFrame
}

// Point looks up a point by id.
//
// Parameters:
//   - id: the point id
//
// Returns:
//   - *Point: the point, or nil if it does not exist
//   - bool: true if the point exists
func (f *Feature) Point(id string) (*Point, bool) {
	i, ok := f.pointIndex[id]
	if !ok {
		return nil, false
	}
	return f.Points[i], true
}

// PointIDs returns the ids of every point known to the feature, in insertion order.
func (f *Feature) PointIDs() []string {
	ids := make([]string, len(f.Points))
	for i, p := range f.Points {
		ids[i] = p.ID
	}
	return ids
}

// AppendPoint attaches p to the feature. The caller guarantees p.ID is not already present.
func (f *Feature) AppendPoint(p *Point) {
	if f.pointIndex == nil {
		f.pointIndex = make(map[string]int)
	}
	f.pointIndex[p.ID] = len(f.Points)
	f.Points = append(f.Points, p)
}

// SnapshotIndex returns the index of the snapshot effective at frame: the one with the greatest
// frame <= frame, or the earliest snapshot when frame precedes all of them.
//
// Parameters:
//   - frame: the query frame
//
// Returns:
//   - int: the snapshot index, or -1 if the feature has no snapshots
func (f *Feature) SnapshotIndex(frame int32) int {
	if len(f.Snapshots) == 0 {
		return -1
	}
	// first snapshot starting after frame
	i := sort.Search(len(f.Snapshots), func(i int) bool {
		return f.Snapshots[i].Frame > frame
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// StructureAt returns the ordered point ids effective at frame.
// The returned slice aliases feature storage and must not be modified.
func (f *Feature) StructureAt(frame int32) []string {
	i := f.SnapshotIndex(frame)
	if i < 0 {
		return nil
	}
	return f.Snapshots[i].OrderedPointIDs
}

// InsertSnapshot stores s in frame order, replacing any snapshot already at s.Frame.
func (f *Feature) InsertSnapshot(s StructureSnapshot) {
	i := sort.Search(len(f.Snapshots), func(i int) bool {
		return f.Snapshots[i].Frame >= s.Frame
	})
	if i < len(f.Snapshots) && f.Snapshots[i].Frame == s.Frame {
		f.Snapshots[i] = s
		return
	}
	f.Snapshots = append(f.Snapshots, StructureSnapshot{})
	copy(f.Snapshots[i+1:], f.Snapshots[i:])
	f.Snapshots[i] = s
}

// Validate checks the feature invariants: a well-formed visibility window, unique point ids,
// strictly increasing keyframe and snapshot frames, and snapshots that only reference known points.
//
// Returns:
//   - error: an *common.InvalidRangeError, *common.DuplicatePointIDError or *common.NotFoundError
func (f *Feature) Validate() error {
	if f.AppearanceFrame > f.DisappearanceFrame {
		return &common.InvalidRangeError{
			Field:  "visibility window",
			Reason: fmt.Sprintf("feature %q appears at %d after it disappears at %d", f.ID, f.AppearanceFrame, f.DisappearanceFrame),
		}
	}

	seen := make(map[string]struct{}, len(f.Points))
	for _, p := range f.Points {
		if _, dup := seen[p.ID]; dup {
			return &common.DuplicatePointIDError{FeatureID: f.ID, PointID: p.ID}
		}
		seen[p.ID] = struct{}{}
		for i := 1; i < len(p.Keyframes); i++ {
			if p.Keyframes[i].Frame <= p.Keyframes[i-1].Frame {
				return &common.InvalidRangeError{
					Field:  "keyframe order",
					Reason: fmt.Sprintf("point %q has keyframe %d after %d", p.ID, p.Keyframes[i].Frame, p.Keyframes[i-1].Frame),
				}
			}
		}
	}

	for i, s := range f.Snapshots {
		if i > 0 && s.Frame <= f.Snapshots[i-1].Frame {
			return &common.InvalidRangeError{
				Field:  "snapshot order",
				Reason: fmt.Sprintf("feature %q has snapshot %d after %d", f.ID, s.Frame, f.Snapshots[i-1].Frame),
			}
		}
		for _, id := range s.OrderedPointIDs {
			if _, ok := seen[id]; !ok {
				return &common.NotFoundError{Kind: common.EntityPoint, ID: id}
			}
		}
	}
	return nil
}

// Animation is the root of the entity graph. It exclusively owns its features.
type Animation struct {
	ID          string
	Name        string
	TotalFrames int32

	// Features are kept in creation order, which is also the render and encode order.
	Features []*Feature

	featureIndex map[string]int
}

// NewAnimation creates an empty animation.
func NewAnimation(id, name string, totalFrames int32) *Animation {
	return &Animation{
		ID:           id,
		Name:         name,
		TotalFrames:  totalFrames,
		Features:     []*Feature{},
		featureIndex: make(map[string]int),
	}
}

// Feature looks up a feature by id.
//
// Parameters:
//   - id: the feature id
//
// Returns:
//   - *Feature: the feature, or nil if it does not exist
//   - bool: true if the feature exists
func (a *Animation) Feature(id string) (*Feature, bool) {
	i, ok := a.featureIndex[id]
	if !ok {
		return nil, false
	}
	return a.Features[i], true
}

// AppendFeature attaches f to the animation. The caller guarantees f.ID is not already present.
func (a *Animation) AppendFeature(f *Feature) {
	if a.featureIndex == nil {
		a.featureIndex = make(map[string]int)
	}
	a.featureIndex[f.ID] = len(a.Features)
	a.Features = append(a.Features, f)
}

// Validate checks animation-level invariants and then every feature.
func (a *Animation) Validate() error {
	if a.TotalFrames < 0 {
		return &common.InvalidRangeError{Field: "total frames", Reason: fmt.Sprintf("%d is negative", a.TotalFrames)}
	}
	seen := make(map[string]struct{}, len(a.Features))
	for _, f := range a.Features {
		if _, dup := seen[f.ID]; dup {
			return &common.InvalidRangeError{Field: "feature id", Reason: fmt.Sprintf("%q appears more than once", f.ID)}
		}
		seen[f.ID] = struct{}{}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
