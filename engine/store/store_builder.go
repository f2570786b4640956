package store

import (
	"github.com/klyja/geco/engine/identifier"
	"github.com/klyja/geco/engine/model"
)

// StoreBuilderOption is a functional option for configuring a Store during construction.
type StoreBuilderOption func(*store)

// WithIDAllocator sets the allocator used for feature and point ids the caller does not supply.
//
// Parameters:
//   - ids: the allocator to use
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithIDAllocator(ids identifier.Allocator) StoreBuilderOption {
	return func(s *store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithKeyframePolicy sets how AddKeyframe treats a frame that already has a keyframe.
// Defaults to KeyframeReplace.
//
// Parameters:
//   - policy: KeyframeReplace or KeyframeReject
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithKeyframePolicy(policy KeyframePolicy) StoreBuilderOption {
	return func(s *store) {
		s.keyframePolicy = policy
	}
}

// WithAnimation seeds the store with an existing animation instead of a fresh one.
// The animation must already satisfy its invariants (see model.Animation.Validate).
//
// Parameters:
//   - a: the animation to own
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithAnimation(a *model.Animation) StoreBuilderOption {
	return func(s *store) {
		s.animation = a
	}
}

// WithName sets the animation name of a fresh store.
//
// Parameters:
//   - name: the animation name
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithName(name string) StoreBuilderOption {
	return func(s *store) {
		s.defaultName = name
	}
}

// WithTotalFrames sets the timeline length of a fresh store. Negative values are ignored.
//
// Parameters:
//   - frames: the number of frames
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithTotalFrames(frames int32) StoreBuilderOption {
	return func(s *store) {
		if frames >= 0 {
			s.defaultTotalFrames = frames
		}
	}
}
