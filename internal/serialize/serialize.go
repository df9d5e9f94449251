package serialize

import (
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/born-ml/netir/internal/graph"
	"github.com/born-ml/netir/internal/opset"
)

// Version selects the output format version.
type Version int

// IRv10 is the only supported format version.
const IRv10 Version = 10

const xmlExtension = ".xml"

// Serializer converts a computation graph into an IR topology document
// plus a companion binary blob of constant payloads.
//
// A Serializer is not safe for concurrent use; each Run exclusively owns
// both output sinks for its duration.
type Serializer struct {
	xmlPath string
	binPath string
	version Version
	custom  map[string]*opset.OpSet
}

// New validates the output configuration and creates a serializer.
// When binPath is empty it defaults to xmlPath with the extension
// replaced by "bin". Custom opsets extend the built-in ones for
// version-tag resolution.
func New(xmlPath, binPath string, version Version, custom map[string]*opset.OpSet) (*Serializer, error) {
	if err := validateXMLPath(xmlPath); err != nil {
		return nil, err
	}
	if version != IRv10 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if binPath == "" {
		binPath = xmlPath[:len(xmlPath)-len("xml")] + "bin"
	}
	return &Serializer{
		xmlPath: xmlPath,
		binPath: binPath,
		version: version,
		custom:  custom,
	}, nil
}

// XMLPath returns the configured topology output path.
func (s *Serializer) XMLPath() string { return s.xmlPath }

// BinPath returns the configured binary output path.
func (s *Serializer) BinPath() string { return s.binPath }

// Run serializes the graph to the configured outputs.
//
// The run has three phases: open both sinks, resolve dynamic shapes and
// emit the topology, then restore shapes and flush. The returned flag
// reports whether the graph was modified; it is always false, since
// shape annotations are transiently altered but restored and pass
// chaining sees no net effect. On failure the sink contents are undefined and
// left for the caller to discard.
func (s *Serializer) Run(g *graph.Graph) (changed bool, err error) {
	bin, err := newBinWriter(s.binPath)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := bin.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close bin file: %w", cerr)
		}
	}()

	//nolint:gosec // G304: the xml path comes from caller configuration.
	xmlFile, err := os.Create(s.xmlPath)
	if err != nil {
		return false, fmt.Errorf("failed to create xml file: %w", err)
	}
	defer func() {
		if cerr := xmlFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close xml file: %w", cerr)
		}
	}()

	doc := etree.NewDocument()
	switch s.version {
	case IRv10:
		if err := writeTopology(doc, bin, g, s.custom); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.version)
	}

	doc.Indent(4)
	if _, err := doc.WriteTo(xmlFile); err != nil {
		return false, fmt.Errorf("failed to write xml document: %w", err)
	}
	return false, nil
}

// validateXMLPath rejects topology paths that are too short or miss the
// required extension.
func validateXMLPath(path string) error {
	if len(path) <= len(xmlExtension) {
		return fmt.Errorf("%w: %q", ErrPathTooShort, path)
	}
	if !strings.HasSuffix(path, xmlExtension) {
		return fmt.Errorf("%w: %q", ErrMissingExtension, path)
	}
	return nil
}
