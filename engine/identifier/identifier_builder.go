package identifier

// AllocatorBuilderOption is a functional option for configuring an Allocator during construction.
type AllocatorBuilderOption func(*uuidAllocator)

// WithPrefix prepends a fixed prefix to every generated identifier, e.g. "id-".
//
// Parameters:
//   - prefix: the prefix to prepend
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the prefix option to an allocator
func WithPrefix(prefix string) AllocatorBuilderOption {
	return func(a *uuidAllocator) {
		a.prefix = prefix
	}
}
