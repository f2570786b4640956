package store

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/identifier"
	"github.com/klyja/geco/engine/model"
)

// KeyframePolicy decides what AddKeyframe does when the point already has a keyframe at the requested frame.
type KeyframePolicy int

const (
	// KeyframeReplace overwrites the existing keyframe. This is the default.
	KeyframeReplace KeyframePolicy = iota
	// KeyframeReject fails with an InvalidRange error and leaves the point untouched.
	KeyframeReject
)

// FeatureInfo is the summary of a feature returned by Features.
type FeatureInfo struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	Kind               model.Kind `json:"kind" yaml:"kind"`
	AppearanceFrame    int32      `json:"appearance_frame" yaml:"appearance_frame"`
	DisappearanceFrame int32      `json:"disappearance_frame" yaml:"disappearance_frame"`
}

// store is the implementation of the Store interface.
type store struct {
	animation      *model.Animation
	activeFeature  string
	ids            identifier.Allocator
	animationIDs   identifier.Allocator
	keyframePolicy KeyframePolicy

	defaultName        string
	defaultTotalFrames int32
}

// Store owns the mutable Animation → Features → Points → Keyframes graph and is the only component allowed
// to mutate it.
//
// Every operation is synchronous and atomic: arguments and invariants are checked before anything changes,
// so a failed call leaves the graph exactly as it was. The store is not safe for concurrent use; the host
// serializes calls.
type Store interface {
	// ID returns the animation id.
	ID() string

	// Name returns the animation name.
	Name() string

	// SetName renames the animation.
	//
	// Parameters:
	//   - name: the new name
	//
	// Returns:
	//   - error: InvalidRange if name is not valid UTF-8
	SetName(name string) error

	// TotalFrames returns the timeline length.
	TotalFrames() int32

	// SetTotalFrames sets the timeline length.
	//
	// Parameters:
	//   - frames: the new length, must be non-negative
	//
	// Returns:
	//   - error: an InvalidRange error if frames is negative
	SetTotalFrames(frames int32) error

	// CreateFeature inserts a new feature with no points and the implicit empty snapshot at appearance,
	// and makes it the active feature.
	//
	// Parameters:
	//   - name: display name of the feature
	//   - kind: model.KindPolygon or model.KindPolyline
	//   - appearance: first visible frame
	//   - disappearance: last visible frame
	//
	// Returns:
	//   - string: the new feature id
	//   - error: an InvalidRange error if appearance > disappearance or kind is unknown
	CreateFeature(name string, kind model.Kind, appearance, disappearance int32) (string, error)

	// AddPoint creates a point on a feature with one keyframe at frame and appends it to the structure
	// snapshot starting at frame. If no snapshot starts exactly at frame, the snapshot effective at frame is
	// cloned to a new snapshot at frame first. Snapshots after frame are left as they are.
	//
	// Parameters:
	//   - featureID: the owning feature
	//   - pointID: the new point id, or "" to allocate one
	//   - frame: the frame of the initial keyframe and the structure change
	//   - x, y, z: the initial position
	//
	// Returns:
	//   - string: the point id
	//   - error: NotFound if the feature is unknown, DuplicatePointID if pointID is taken
	AddPoint(featureID, pointID string, frame int32, x, y, z float32) (string, error)

	// AddPointToActiveFeature is AddPoint on the active feature.
	//
	// Parameters:
	//   - pointID: the new point id, or "" to allocate one
	//   - frame: the frame of the initial keyframe and the structure change
	//   - x, y, z: the initial position
	//
	// Returns:
	//   - string: the point id
	//   - error: NoActiveFeature if no feature is active, otherwise as AddPoint
	AddPointToActiveFeature(pointID string, frame int32, x, y, z float32) (string, error)

	// AddKeyframe records a position for an existing point. Structure is not affected.
	//
	// Parameters:
	//   - featureID: the owning feature
	//   - pointID: the point to animate
	//   - frame: the keyframe frame
	//   - x, y, z: the position at frame
	//
	// Returns:
	//   - error: NotFound for an unknown feature or point; InvalidRange when a keyframe already exists at
	//     frame and the policy is KeyframeReject
	AddKeyframe(featureID, pointID string, frame int32, x, y, z float32) error

	// SetActiveFeature marks a feature as the editing target. An empty id clears it.
	//
	// Parameters:
	//   - featureID: the feature to activate, or ""
	//
	// Returns:
	//   - error: NotFound if featureID is non-empty and unknown
	SetActiveFeature(featureID string) error

	// ActiveFeatureID returns the active feature id, if any.
	//
	// Returns:
	//   - string: the active feature id
	//   - bool: false when no feature is active
	ActiveFeatureID() (string, bool)

	// Features summarizes every feature in creation order.
	Features() []FeatureInfo

	// Points lists every point known to a feature, across all snapshots, in insertion order.
	//
	// Parameters:
	//   - featureID: the feature to list
	//
	// Returns:
	//   - []string: point ids
	//   - error: NotFound if the feature is unknown
	Points(featureID string) ([]string, error)

	// ResolveStructure returns the ordered point ids composing a feature at frame.
	//
	// Parameters:
	//   - featureID: the feature to resolve
	//   - frame: the query frame
	//
	// Returns:
	//   - []string: a copy of the effective snapshot's ordered ids
	//   - error: NotFound if the feature is unknown
	ResolveStructure(featureID string, frame int32) ([]string, error)

	// Point returns a read-only view of a point.
	//
	// Returns:
	//   - *model.Point: the point
	//   - error: NotFound for an unknown feature or point
	Point(featureID, pointID string) (*model.Point, error)

	// Animation returns the owned animation for read-only use by renderers and codecs.
	// Callers must not mutate it.
	Animation() *model.Animation

	// Replace swaps in a whole animation, typically a freshly decoded one. The animation is validated first
	// and the store is left untouched if validation fails. The last feature becomes active.
	//
	// Parameters:
	//   - a: the replacement animation
	//
	// Returns:
	//   - error: the validation error, if any
	Replace(a *model.Animation) error
}

// Ensure store implements Store interface.
var _ Store = &store{}

// NewStore creates a Store holding a fresh empty animation unless WithAnimation supplies one.
//
// Parameters:
//   - options: functional options (allocator, keyframe policy, name, total frames, animation)
//
// Returns:
//   - Store: the newly created store
func NewStore(options ...StoreBuilderOption) Store {
	s := &store{
		ids:                identifier.NewAllocator(),
		animationIDs:       identifier.NewAllocator(identifier.WithPrefix("id-")),
		keyframePolicy:     KeyframeReplace,
		defaultName:        model.DefaultName,
		defaultTotalFrames: model.DefaultTotalFrames,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.animation == nil {
		s.animation = model.NewAnimation(s.animationIDs.NewID(), s.defaultName, s.defaultTotalFrames)
	} else if n := len(s.animation.Features); n > 0 {
		s.activeFeature = s.animation.Features[n-1].ID
	}

	return s
}

func (s *store) ID() string {
	return s.animation.ID
}

func (s *store) Name() string {
	return s.animation.Name
}

func (s *store) SetName(name string) error {
	if err := checkUTF8("name", name); err != nil {
		return err
	}
	s.animation.Name = name
	return nil
}

// checkUTF8 rejects strings the wire format cannot carry.
func checkUTF8(field, value string) error {
	if utf8.ValidString(value) {
		return nil
	}
	return &common.InvalidRangeError{Field: field, Reason: fmt.Sprintf("%q is not valid UTF-8", value)}
}

func (s *store) TotalFrames() int32 {
	return s.animation.TotalFrames
}

func (s *store) SetTotalFrames(frames int32) error {
	if frames < 0 {
		return &common.InvalidRangeError{Field: "total frames", Reason: fmt.Sprintf("%d is negative", frames)}
	}
	s.animation.TotalFrames = frames
	return nil
}

func (s *store) CreateFeature(name string, kind model.Kind, appearance, disappearance int32) (string, error) {
	if err := checkUTF8("name", name); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", &common.InvalidRangeError{Field: "feature kind", Reason: fmt.Sprintf("unknown kind %d", kind)}
	}
	if appearance > disappearance {
		return "", &common.InvalidRangeError{
			Field:  "visibility window",
			Reason: fmt.Sprintf("appearance frame %d is after disappearance frame %d", appearance, disappearance),
		}
	}

	id := s.ids.NewID()
	for _, taken := s.animation.Feature(id); taken; _, taken = s.animation.Feature(id) {
		id = s.ids.NewID()
	}

	s.animation.AppendFeature(model.NewFeature(id, name, kind, appearance, disappearance))
	s.activeFeature = id

	common.Logger().Debug("feature created", "feature", id, "name", name, "kind", kind.String(),
		"appearance", appearance, "disappearance", disappearance)
	return id, nil
}

func (s *store) AddPoint(featureID, pointID string, frame int32, x, y, z float32) (string, error) {
	f, err := s.feature(featureID)
	if err != nil {
		return "", err
	}

	if pointID == "" {
		pointID = s.ids.NewID()
		for _, taken := f.Point(pointID); taken; _, taken = f.Point(pointID) {
			pointID = s.ids.NewID()
		}
	} else if err := checkUTF8("point id", pointID); err != nil {
		return "", err
	} else if _, taken := f.Point(pointID); taken {
		return "", &common.DuplicatePointIDError{FeatureID: featureID, PointID: pointID}
	}

	f.AppendPoint(model.NewPoint(pointID, model.NewKeyframe(frame, x, y, z)))

	i := f.SnapshotIndex(frame)
	switch {
	case i >= 0 && f.Snapshots[i].Frame == frame:
		f.Snapshots[i].OrderedPointIDs = append(f.Snapshots[i].OrderedPointIDs, pointID)
	case i >= 0:
		next := f.Snapshots[i].Clone()
		next.Frame = frame
		next.OrderedPointIDs = append(next.OrderedPointIDs, pointID)
		f.InsertSnapshot(next)
	default:
		f.InsertSnapshot(model.StructureSnapshot{Frame: frame, OrderedPointIDs: []string{pointID}})
	}

	common.Logger().Debug("point added", "feature", featureID, "point", pointID, "frame", frame)
	return pointID, nil
}

func (s *store) AddPointToActiveFeature(pointID string, frame int32, x, y, z float32) (string, error) {
	active, ok := s.ActiveFeatureID()
	if !ok {
		return "", common.ErrNoActiveFeature
	}
	return s.AddPoint(active, pointID, frame, x, y, z)
}

func (s *store) AddKeyframe(featureID, pointID string, frame int32, x, y, z float32) error {
	p, err := s.Point(featureID, pointID)
	if err != nil {
		return err
	}

	if s.keyframePolicy == KeyframeReject && p.HasKeyframe(frame) {
		return &common.InvalidRangeError{
			Field:  "keyframe frame",
			Reason: fmt.Sprintf("point %q already has a keyframe at frame %d", pointID, frame),
		}
	}

	replaced := p.SetKeyframe(model.NewKeyframe(frame, x, y, z))
	common.Logger().Debug("keyframe set", "feature", featureID, "point", pointID, "frame", frame, "replaced", replaced)
	return nil
}

func (s *store) SetActiveFeature(featureID string) error {
	if featureID == "" {
		s.activeFeature = ""
		return nil
	}
	if _, err := s.feature(featureID); err != nil {
		return err
	}
	s.activeFeature = featureID
	return nil
}

// ActiveFeatureID treats the active id as a weak reference: if the feature is gone the id is dropped.
func (s *store) ActiveFeatureID() (string, bool) {
	if s.activeFeature == "" {
		return "", false
	}
	if _, ok := s.animation.Feature(s.activeFeature); !ok {
		s.activeFeature = ""
		return "", false
	}
	return s.activeFeature, true
}

func (s *store) Features() []FeatureInfo {
	infos := make([]FeatureInfo, len(s.animation.Features))
	for i, f := range s.animation.Features {
		infos[i] = FeatureInfo{
			ID:                 f.ID,
			Name:               f.Name,
			Kind:               f.Kind,
			AppearanceFrame:    f.AppearanceFrame,
			DisappearanceFrame: f.DisappearanceFrame,
		}
	}
	return infos
}

func (s *store) Points(featureID string) ([]string, error) {
	f, err := s.feature(featureID)
	if err != nil {
		return nil, err
	}
	return f.PointIDs(), nil
}

func (s *store) ResolveStructure(featureID string, frame int32) ([]string, error) {
	f, err := s.feature(featureID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(f.StructureAt(frame)), nil
}

func (s *store) Point(featureID, pointID string) (*model.Point, error) {
	f, err := s.feature(featureID)
	if err != nil {
		return nil, err
	}
	p, ok := f.Point(pointID)
	if !ok {
		return nil, &common.NotFoundError{Kind: common.EntityPoint, ID: pointID}
	}
	return p, nil
}

func (s *store) Animation() *model.Animation {
	return s.animation
}

func (s *store) Replace(a *model.Animation) error {
	if a == nil {
		return &common.InvalidRangeError{Field: "animation", Reason: "nil"}
	}
	if err := a.Validate(); err != nil {
		return err
	}

	s.animation = a
	s.activeFeature = ""
	if n := len(a.Features); n > 0 {
		s.activeFeature = a.Features[n-1].ID
	}
	return nil
}

// feature resolves a feature id or returns a NotFound error.
func (s *store) feature(id string) (*model.Feature, error) {
	f, ok := s.animation.Feature(id)
	if !ok {
		return nil, &common.NotFoundError{Kind: common.EntityFeature, ID: id}
	}
	return f, nil
}
