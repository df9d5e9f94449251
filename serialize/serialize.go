// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialize provides the public API for serializing computation
// graphs to the NetIR format: an XML topology document plus a raw
// binary blob of constant payloads.
//
// Example:
//
//	s, err := serialize.New("model.xml", "", serialize.IRv10, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := s.Run(g); err != nil {
//	    log.Fatal(err)
//	}
package serialize

import (
	"github.com/born-ml/netir/internal/opset"
	"github.com/born-ml/netir/internal/serialize"
)

// Serializer converts a computation graph into a topology document and
// binary blob.
type Serializer = serialize.Serializer

// Version selects the output format version.
type Version = serialize.Version

// IRv10 is the only supported format version.
const IRv10 Version = serialize.IRv10

// SerializationError reports a failure tied to a specific node.
type SerializationError = serialize.SerializationError

// OpSet is a named collection of operation type names.
type OpSet = opset.OpSet

// Common errors.
var (
	ErrPathTooShort       = serialize.ErrPathTooShort
	ErrMissingExtension   = serialize.ErrMissingExtension
	ErrUnsupportedVersion = serialize.ErrUnsupportedVersion
	ErrDynamicShape       = serialize.ErrDynamicShape
)

// New validates the output configuration and creates a serializer. An
// empty binPath defaults to xmlPath with the extension replaced by
// "bin".
func New(xmlPath, binPath string, version Version, custom map[string]*OpSet) (*Serializer, error) {
	return serialize.New(xmlPath, binPath, version, custom)
}

// NewOpSet creates a custom opset for version-tag resolution.
func NewOpSet(name string, types ...string) *OpSet {
	return opset.New(name, types...)
}
