// SPDX-License-Identifier: MPL-2.0

package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

var (
	// ErrNotNodeList is returned when a document is not an array of objects.
	ErrNotNodeList = errors.New("document is not a list of nodes")
	// ErrUnsupportedFormat is returned by For for unknown file formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type (
	// Codec converts a node list to and from one on-disk encoding.
	Codec interface {
		// Format is the config value selecting this codec.
		Format() config.FileFormat
		// Ext is the file extension without the dot.
		Ext() string
		Encode(nodes []flownode.Node) ([]byte, error)
		Decode(data []byte) ([]flownode.Node, error)
	}

	// NotNodeListError reports where a decoded document stops being a node list.
	// It wraps ErrNotNodeList for errors.Is() compatibility.
	NotNodeListError struct {
		// Index is the offending element, or -1 when the document itself is not an array.
		Index int
		// Got describes the value found.
		Got string
	}
)

// For returns the codec for a file format.
func For(format config.FileFormat) (Codec, error) {
	switch format {
	case config.FileFormatJSON:
		return JSON{}, nil
	case config.FileFormatYAML:
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Error implements the error interface for NotNodeListError.
func (e *NotNodeListError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("document is not a list of nodes: got %s", e.Got)
	}
	return fmt.Sprintf("element %d is not a node: got %s", e.Index, e.Got)
}

// Unwrap returns ErrNotNodeList for errors.Is() compatibility.
func (e *NotNodeListError) Unwrap() error { return ErrNotNodeList }

// toNodes converts a generic decoded document into nodes. null elements are
// kept as nil nodes so callers can report them.
func toNodes(doc any) ([]flownode.Node, error) {
	if doc == nil {
		return []flownode.Node{}, nil
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, &NotNodeListError{Index: -1, Got: describe(doc)}
	}

	nodes := make([]flownode.Node, len(list))
	for i, e := range list {
		switch v := e.(type) {
		case nil:
			nodes[i] = nil
		case map[string]any:
			nodes[i] = flownode.Node(v)
		default:
			return nil, &NotNodeListError{Index: i, Got: describe(e)}
		}
	}
	return nodes, nil
}

func describe(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
