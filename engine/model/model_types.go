package model

import (
	"fmt"
	"sort"

	"github.com/klyja/geco/common"
)

// --- Feature Kind ---

// Kind is the geometric kind of a feature. Values match the persisted enum numbering.
type Kind int32

const (
	// KindUnspecified is the wire default; it is never produced by the engine but may appear in foreign data.
	KindUnspecified Kind = 0
	// KindPolygon is a closed ring: the last point connects back to the first.
	KindPolygon Kind = 1
	// KindPolyline is an open chain of points.
	KindPolyline Kind = 2
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindPolyline:
		return "polyline"
	default:
		return "unspecified"
	}
}

// Valid reports whether k is a kind the engine can create.
func (k Kind) Valid() bool {
	return k == KindPolygon || k == KindPolyline
}

// ParseKind parses "polygon" or "polyline".
//
// Parameters:
//   - s: the kind name
//
// Returns:
//   - Kind: the parsed kind, KindUnspecified if s is unknown
//   - bool: true if s named a known kind
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "polygon":
		return KindPolygon, true
	case "polyline":
		return KindPolyline, true
	}
	return KindUnspecified, false
}

// MarshalText encodes the kind by name, so JSON and YAML output reads "polygon" rather than 1.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	if string(text) == "unspecified" {
		*k = KindUnspecified
		return nil
	}
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown feature kind %q", text)
	}
	*k = parsed
	return nil
}

// --- Timeline Types ---

// Keyframe stores a recorded position for a point at a specific frame.
// Positions between keyframes are computed, never stored.
type Keyframe struct {
	// Frame is the timeline frame of this keyframe.
	Frame int32

	// X and Y are the first two position components.
	X, Y float32

	// Z is the third position component. It is optional on the wire; nil reads as 0.
	Z *float32
}

// NewKeyframe creates a keyframe with all three components set.
func NewKeyframe(frame int32, x, y, z float32) Keyframe {
	return Keyframe{Frame: frame, X: x, Y: y, Z: &z}
}

// Position returns the keyframe position as a vector.
func (k Keyframe) Position() common.Vec3 {
	v := common.Vec3{X: k.X, Y: k.Y}
	if k.Z != nil {
		v.Z = *k.Z
	}
	return v
}

// clone returns a copy that does not share the Z pointer.
func (k Keyframe) clone() Keyframe {
	if k.Z != nil {
		z := *k.Z
		k.Z = &z
	}
	return k
}

// StructureSnapshot is a frame-stamped statement of which points compose a feature, and in what order.
// It stays effective from Frame until the next snapshot.
type StructureSnapshot struct {
	// Frame is the first frame this snapshot applies to.
	Frame int32

	// OrderedPointIDs lists the participating points in drawing order.
	OrderedPointIDs []string
}

// Clone returns a deep copy of the snapshot.
func (s StructureSnapshot) Clone() StructureSnapshot {
	ids := make([]string, len(s.OrderedPointIDs))
	copy(ids, s.OrderedPointIDs)
	return StructureSnapshot{Frame: s.Frame, OrderedPointIDs: ids}
}

// --- Point ---

// Point is a single animated vertex of a feature.
type Point struct {
	// ID is unique within the owning feature.
	ID string

	// Keyframes are sorted ascending by frame; frames are pairwise distinct.
	Keyframes []Keyframe
}

// NewPoint creates a point with a single initial keyframe.
func NewPoint(id string, initial Keyframe) *Point {
	return &Point{ID: id, Keyframes: []Keyframe{initial.clone()}}
}

// keyframeSearch returns the index of the first keyframe whose frame is >= frame.
func (p *Point) keyframeSearch(frame int32) int {
	return sort.Search(len(p.Keyframes), func(i int) bool {
		return p.Keyframes[i].Frame >= frame
	})
}

// HasKeyframe reports whether the point has a keyframe exactly at frame.
func (p *Point) HasKeyframe(frame int32) bool {
	i := p.keyframeSearch(frame)
	return i < len(p.Keyframes) && p.Keyframes[i].Frame == frame
}

// SetKeyframe inserts kf in frame order, replacing any keyframe already at kf.Frame.
//
// Parameters:
//   - kf: the keyframe to store
//
// Returns:
//   - bool: true if an existing keyframe was replaced
func (p *Point) SetKeyframe(kf Keyframe) bool {
	kf = kf.clone()
	i := p.keyframeSearch(kf.Frame)
	if i < len(p.Keyframes) && p.Keyframes[i].Frame == kf.Frame {
		p.Keyframes[i] = kf
		return true
	}
	p.Keyframes = append(p.Keyframes, Keyframe{})
	copy(p.Keyframes[i+1:], p.Keyframes[i:])
	p.Keyframes[i] = kf
	return false
}
