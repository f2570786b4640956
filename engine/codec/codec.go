// Package codec encodes an animation to the protobuf wire form described by proto/geco/v1/animation.proto
// and decodes it back.
//
// Encoding follows proto3 rules: zero scalars and empty strings are omitted, the optional keyframe z is written
// whenever it is set, and repeated fields are written in model order. Decoding skips unknown fields, so newer
// writers stay readable.
package codec

import (
	"github.com/klyja/geco/engine/model"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the wire schema.
const (
	animationID          protowire.Number = 1
	animationName        protowire.Number = 2
	animationTotalFrames protowire.Number = 3
	animationFeatures    protowire.Number = 4

	featureID            protowire.Number = 1
	featureName          protowire.Number = 2
	featureKind          protowire.Number = 3
	featureAppearance    protowire.Number = 4
	featureDisappearance protowire.Number = 5
	featurePoints        protowire.Number = 6
	featureSnapshots     protowire.Number = 7

	pointID        protowire.Number = 1
	pointKeyframes protowire.Number = 2

	keyframeFrame protowire.Number = 1
	keyframeX     protowire.Number = 2
	keyframeY     protowire.Number = 3
	keyframeZ     protowire.Number = 4

	snapshotFrame    protowire.Number = 1
	snapshotPointIDs protowire.Number = 2
)

// Encode serializes a to its wire form. It cannot fail.
//
// Parameters:
//   - a: the animation to encode
//
// Returns:
//   - []byte: the encoded MapAnimation message
func Encode(a *model.Animation) []byte {
	var b []byte
	b = appendString(b, animationID, a.ID)
	b = appendString(b, animationName, a.Name)
	b = appendInt32(b, animationTotalFrames, a.TotalFrames)
	for _, f := range a.Features {
		b = appendMessage(b, animationFeatures, encodeFeature(f))
	}
	return b
}

func encodeFeature(f *model.Feature) []byte {
	var b []byte
	b = appendString(b, featureID, f.ID)
	b = appendString(b, featureName, f.Name)
	b = appendInt32(b, featureKind, int32(f.Kind))
	b = appendInt32(b, featureAppearance, f.AppearanceFrame)
	b = appendInt32(b, featureDisappearance, f.DisappearanceFrame)
	for _, p := range f.Points {
		b = appendMessage(b, featurePoints, encodePoint(p))
	}
	for _, s := range f.Snapshots {
		b = appendMessage(b, featureSnapshots, encodeSnapshot(s))
	}
	return b
}

func encodePoint(p *model.Point) []byte {
	var b []byte
	b = appendString(b, pointID, p.ID)
	for _, k := range p.Keyframes {
		b = appendMessage(b, pointKeyframes, encodeKeyframe(k))
	}
	return b
}

func encodeKeyframe(k model.Keyframe) []byte {
	var b []byte
	b = appendInt32(b, keyframeFrame, k.Frame)
	b = appendFloat(b, keyframeX, k.X)
	b = appendFloat(b, keyframeY, k.Y)
	if k.Z != nil {
		b = appendFloatAlways(b, keyframeZ, *k.Z)
	}
	return b
}

func encodeSnapshot(s model.StructureSnapshot) []byte {
	var b []byte
	b = appendInt32(b, snapshotFrame, s.Frame)
	b = appendRepeatedString(b, snapshotPointIDs, s.OrderedPointIDs)
	return b
}
