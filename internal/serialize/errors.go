package serialize

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrPathTooShort       = errors.New("xml path is too short")
	ErrMissingExtension   = errors.New("xml path does not end with .xml")
	ErrUnsupportedVersion = errors.New("unsupported IR version")
	ErrDynamicShape       = errors.New("unsupported dynamic shape")
	ErrNoLayerID          = errors.New("edge endpoint has no assigned layer id")
	ErrUnsupportedType    = errors.New("unsupported element type")
)

// SerializationError reports a failure tied to a specific node during a
// serialization run.
type SerializationError struct {
	Phase string // "resolve", "layer", "edge"
	Node  string // friendly name of the offending node
	Err   error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: node %q: %v", e.Phase, e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error { return e.Err }
