// SPDX-License-Identifier: MPL-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// JSON stores group files as 2-space indented JSON.
type JSON struct{}

// Format implements Codec.
func (JSON) Format() config.FileFormat { return config.FileFormatJSON }

// Ext implements Codec.
func (JSON) Ext() string { return "json" }

// Encode implements Codec. The output ends with a newline.
func (JSON) Encode(nodes []flownode.Node) ([]byte, error) {
	return encodeJSON(nodes, "  ")
}

// Decode implements Codec.
func (JSON) Decode(data []byte) ([]flownode.Node, error) {
	return decodeJSON(data)
}

// encodeJSON leaves <, > and & unescaped since function nodes are full of them.
func encodeJSON(nodes []flownode.Node, indent string) ([]byte, error) {
	if nodes == nil {
		nodes = []flownode.Node{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(nodes); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeJSON(data []byte) ([]flownode.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []flownode.Node{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: unexpected data after the top-level value")
	}
	return toNodes(doc)
}
