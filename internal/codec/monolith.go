// SPDX-License-Identifier: MPL-2.0

package codec

import (
	"bytes"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// MonolithIndent matches the pretty-printed flow file written by Node-RED.
const MonolithIndent = "    "

// DecodeMonolith parses a Node-RED flow file. Empty or whitespace-only input
// decodes to an empty list; anything other than an array of objects is an
// error.
func DecodeMonolith(data []byte) ([]flownode.Node, error) {
	return decodeJSON(data)
}

// EncodeMonolith renders nodes the way Node-RED writes its flow file, without
// a trailing newline.
func EncodeMonolith(nodes []flownode.Node) ([]byte, error) {
	data, err := encodeJSON(nodes, MonolithIndent)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(data, []byte("\n")), nil
}
