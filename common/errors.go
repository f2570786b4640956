package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine error taxonomy. Every typed error below unwraps to its own sentinel, so
// callers can branch with errors.Is and recover the offending id or field with errors.As. A DecodeError
// also unwraps to its cause, which may itself match another sentinel.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicatePointID = errors.New("duplicate point id")
	ErrInvalidRange     = errors.New("invalid range")
	ErrDecode           = errors.New("decode error")
	ErrNoActiveFeature  = errors.New("no active feature")
)

// EntityKind names the kind of entity a NotFoundError refers to.
type EntityKind string

const (
	EntityFeature EntityKind = "feature"
	EntityPoint   EntityKind = "point"
)

// NotFoundError reports a feature or point id that does not exist.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicatePointIDError reports an attempt to add a point whose id already exists on the feature.
type DuplicatePointIDError struct {
	FeatureID string
	PointID   string
}

func (e *DuplicatePointIDError) Error() string {
	return fmt.Sprintf("point %q already exists on feature %q", e.PointID, e.FeatureID)
}

func (e *DuplicatePointIDError) Unwrap() error {
	return ErrDuplicatePointID
}

// InvalidRangeError reports a malformed frame window, frame ordering or out-of-domain value.
type InvalidRangeError struct {
	Field  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// DecodeError reports malformed persisted bytes. Err holds the underlying wire error when there is one.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

// Unwrap exposes both the ErrDecode sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}
