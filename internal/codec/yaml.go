// SPDX-License-Identifier: MPL-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"

	"gopkg.in/yaml.v3"
)

// YAML stores group files as YAML. Multi-line strings such as function
// bodies are written as literal blocks, which keeps diffs readable.
type YAML struct{}

// Format implements Codec.
func (YAML) Format() config.FileFormat { return config.FileFormatYAML }

// Ext implements Codec.
func (YAML) Ext() string { return "yaml" }

// Encode implements Codec.
func (YAML) Encode(nodes []flownode.Node) ([]byte, error) {
	doc := make([]any, len(nodes))
	for i, n := range nodes {
		if n == nil {
			continue
		}
		doc[i] = toYAMLValue(map[string]any(n))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (YAML) Decode(data []byte) ([]flownode.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	v, err := fromYAMLNode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return toNodes(v)
}

// jsonNumber matches the number grammar of JSON.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// toYAMLValue turns json.Number into a scalar node carrying the literal
// text, so integers beyond int64 and float formatting survive a round trip.
func toYAMLValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		lit := t.String()
		if !jsonNumber.MatchString(lit) {
			return lit
		}
		tag := "!!int"
		if strings.ContainsAny(lit, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: lit}
	case flownode.Node:
		return toYAMLValue(map[string]any(t))
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = toYAMLValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = toYAMLValue(e)
		}
		return s
	default:
		return v
	}
}

// fromYAMLNode builds the generic value of a YAML node. Numbers written in
// JSON notation become json.Number with their literal text; mapping keys
// become strings, since JSON cannot represent other keys.
func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return fromYAMLMapping(n)
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

func fromYAMLMapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		key, err := mappingKey(k)
		if err != nil {
			return nil, err
		}
		val, err := fromYAMLNode(v)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}

	// Explicit keys win over merged ones.
	for _, m := range merges {
		v, err := fromYAMLNode(m)
		if err != nil {
			return nil, err
		}
		sources := []any{v}
		if list, ok := v.([]any); ok {
			sources = list
		}
		for _, src := range sources {
			sm, ok := src.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("line %d: merge value is not a mapping", m.Line)
			}
			for k, e := range sm {
				if _, set := out[k]; !set {
					out[k] = e
				}
			}
		}
	}
	return out, nil
}

func mappingKey(k *yaml.Node) (string, error) {
	if k.Kind == yaml.ScalarNode {
		return k.Value, nil
	}
	v, err := fromYAMLNode(k)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func fromYAMLScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!str":
		return n.Value, nil
	case "!!int", "!!float":
		if jsonNumber.MatchString(n.Value) {
			return json.Number(n.Value), nil
		}
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
