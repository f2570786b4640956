package codec

import (
	"sort"

	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/model"
)

// Decode parses data into a fresh animation.
// Keyframes and snapshots are sorted by frame, then the whole animation is validated. Any failure,
// including an invariant violation in otherwise well-formed bytes, is reported as a *common.DecodeError;
// for invariant violations the underlying typed error is kept in its Err field.
//
// Parameters:
//   - data: an encoded MapAnimation message
//
// Returns:
//   - *model.Animation: the decoded animation
//   - error: a *common.DecodeError if data is malformed
func Decode(data []byte) (*model.Animation, error) {
	var (
		id, name string
		total    int32
		features []*model.Feature
	)

	r := newFieldReader("MapAnimation", data)
	for {
		ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch r.num {
		case animationID:
			id, err = r.string()
		case animationName:
			name, err = r.string()
		case animationTotalFrames:
			total, err = r.int32()
		case animationFeatures:
			var msg []byte
			if msg, err = r.bytes(); err == nil {
				var f *model.Feature
				if f, err = decodeFeature(msg); err == nil {
					features = append(features, f)
				}
			}
		default:
			err = r.skip()
		}
		if err != nil {
			return nil, err
		}
	}

	a := model.NewAnimation(id, name, total)
	for _, f := range features {
		a.AppendFeature(f)
	}
	if err := a.Validate(); err != nil {
		return nil, &common.DecodeError{Reason: "invalid animation", Err: err}
	}
	return a, nil
}

func decodeFeature(data []byte) (*model.Feature, error) {
	var (
		id, name                  string
		kind                      int32
		appearance, disappearance int32
		points                    []*model.Point
	)
	snapshots := []model.StructureSnapshot{}

	r := newFieldReader("Feature", data)
	for {
		ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch r.num {
		case featureID:
			id, err = r.string()
		case featureName:
			name, err = r.string()
		case featureKind:
			kind, err = r.int32()
		case featureAppearance:
			appearance, err = r.int32()
		case featureDisappearance:
			disappearance, err = r.int32()
		case featurePoints:
			var msg []byte
			if msg, err = r.bytes(); err == nil {
				var p *model.Point
				if p, err = decodePoint(msg); err == nil {
					points = append(points, p)
				}
			}
		case featureSnapshots:
			var msg []byte
			if msg, err = r.bytes(); err == nil {
				var s model.StructureSnapshot
				if s, err = decodeSnapshot(msg); err == nil {
					snapshots = append(snapshots, s)
				}
			}
		default:
			err = r.skip()
		}
		if err != nil {
			return nil, err
		}
	}

	f := model.NewFeature(id, name, model.Kind(kind), appearance, disappearance)
	for _, p := range points {
		f.AppendPoint(p)
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Frame < snapshots[j].Frame
	})
	f.Snapshots = snapshots
	return f, nil
}

func decodePoint(data []byte) (*model.Point, error) {
	p := &model.Point{Keyframes: []model.Keyframe{}}

	r := newFieldReader("PointAnimationPath", data)
	for {
		ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch r.num {
		case pointID:
			p.ID, err = r.string()
		case pointKeyframes:
			var msg []byte
			if msg, err = r.bytes(); err == nil {
				var k model.Keyframe
				if k, err = decodeKeyframe(msg); err == nil {
					p.Keyframes = append(p.Keyframes, k)
				}
			}
		default:
			err = r.skip()
		}
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(p.Keyframes, func(i, j int) bool {
		return p.Keyframes[i].Frame < p.Keyframes[j].Frame
	})
	return p, nil
}

func decodeKeyframe(data []byte) (model.Keyframe, error) {
	var k model.Keyframe

	r := newFieldReader("Keyframe", data)
	for {
		ok, err := r.next()
		if err != nil {
			return k, err
		}
		if !ok {
			break
		}
		switch r.num {
		case keyframeFrame:
			k.Frame, err = r.int32()
		case keyframeX:
			k.X, err = r.float32()
		case keyframeY:
			k.Y, err = r.float32()
		case keyframeZ:
			var z float32
			if z, err = r.float32(); err == nil {
				k.Z = &z
			}
		default:
			err = r.skip()
		}
		if err != nil {
			return k, err
		}
	}
	return k, nil
}

func decodeSnapshot(data []byte) (model.StructureSnapshot, error) {
	s := model.StructureSnapshot{OrderedPointIDs: []string{}}

	r := newFieldReader("StructureSnapshot", data)
	for {
		ok, err := r.next()
		if err != nil {
			return s, err
		}
		if !ok {
			break
		}
		switch r.num {
		case snapshotFrame:
			s.Frame, err = r.int32()
		case snapshotPointIDs:
			var id string
			if id, err = r.string(); err == nil {
				s.OrderedPointIDs = append(s.OrderedPointIDs, id)
			}
		default:
			err = r.skip()
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}
