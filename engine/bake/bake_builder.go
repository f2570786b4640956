package bake

import "github.com/klyja/geco/engine/profiler"

// BakerBuilderOption is a functional option for configuring a Baker during construction.
type BakerBuilderOption func(*baker)

// WithWorkers sets the maximum number of concurrent workers. Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithWorkers(n int) BakerBuilderOption {
	return func(b *baker) {
		if n >= 1 {
			b.workers = n
		}
	}
}

// WithQueueSize sets the pending task queue length of the worker pool. Values below 1 are ignored.
//
// Parameters:
//   - n: the queue length
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithQueueSize(n int) BakerBuilderOption {
	return func(b *baker) {
		if n >= 1 {
			b.queueSize = n
		}
	}
}

// WithActiveFeature sets the feature whose segments are flagged active in every baked frame.
//
// Parameters:
//   - featureID: the feature id
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithActiveFeature(featureID string) BakerBuilderOption {
	return func(b *baker) {
		b.active = featureID
	}
}

// WithProfiler ticks p once per baked frame.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) BakerBuilderOption {
	return func(b *baker) {
		b.profiler = p
	}
}
