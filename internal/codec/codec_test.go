// SPDX-License-Identifier: MPL-2.0

package codec

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

func sampleGroup() []flownode.Node {
	return []flownode.Node{
		{"id": "t1", "type": "tab", "label": "Kitchen", "disabled": false},
		{
			"id":     "f1",
			"type":   "function",
			"z":      "t1",
			"func":   "if (msg.payload < 10 && msg.ok) {\n    return msg;\n}\nreturn null;",
			"x":      json.Number("120"),
			"y":      json.Number("80.5"),
			"wires":  []any{[]any{"d1"}},
			"libs":   []any{},
			"info":   "",
			"nested": map[string]any{"yes": "no", "on": true},
		},
	}
}

func TestFor(t *testing.T) {
	t.Parallel()

	for _, f := range config.FileFormats() {
		c, err := For(f)
		if err != nil {
			t.Fatalf("For(%q) error = %v", f, err)
		}
		if c.Format() != f || c.Ext() != string(f) {
			t.Errorf("For(%q) = %s/%s", f, c.Format(), c.Ext())
		}
	}

	if _, err := For("toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("For(toml) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []Codec{JSON{}, YAML{}} {
		t.Run(c.Ext(), func(t *testing.T) {
			t.Parallel()

			want := sampleGroup()
			data, err := c.Encode(want)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, data)
			}
			if len(got) != len(want) {
				t.Fatalf("decoded %d nodes, want %d", len(got), len(want))
			}
			for i := range want {
				if !flownode.Equal(want[i], got[i]) {
					t.Errorf("node %d = %v, want %v", i, got[i], want[i])
				}
			}

			again, err := c.Encode(got)
			if err != nil {
				t.Fatalf("re-Encode() error = %v", err)
			}
			if string(again) != string(data) {
				t.Errorf("re-encoding is not stable:\n%s\n---\n%s", data, again)
			}
		})
	}
}

func TestJSON_Layout(t *testing.T) {
	t.Parallel()

	data, err := JSON{}.Encode(sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	if !strings.HasPrefix(s, "[\n  {\n    \"disabled\": false,") {
		t.Errorf("expected 2-space indentation with sorted keys, got:\n%s", s)
	}
	if !strings.HasSuffix(s, "]\n") {
		t.Error("output should end with a newline")
	}
	if strings.Contains(s, `\u003c`) || !strings.Contains(s, "msg.payload < 10 && msg.ok") {
		t.Error("HTML characters must not be escaped")
	}
	if !strings.Contains(s, `"x": 120,`) || !strings.Contains(s, `"y": 80.5`) {
		t.Errorf("numbers should be written verbatim:\n%s", s)
	}
}

func TestYAML_Layout(t *testing.T) {
	t.Parallel()

	data, err := YAML{}.Encode(sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	for _, want := range []string{
		"- disabled: false\n  id: t1\n",
		"func: |-\n",
		"x: 120\n",
		"y: 80.5\n",
		": \"no\"\n",
		"libs: []\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("YAML output missing %q:\n%s", want, s)
		}
	}
}

func TestEncode_EmptyList(t *testing.T) {
	t.Parallel()

	for _, c := range []Codec{JSON{}, YAML{}} {
		data, err := c.Encode(nil)
		if err != nil {
			t.Fatalf("%s Encode(nil) error = %v", c.Ext(), err)
		}
		got, err := c.Decode(data)
		if err != nil || len(got) != 0 {
			t.Errorf("%s: decoded %v, %v; want empty list", c.Ext(), got, err)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		codec   Codec
		data    string
		wantNL  bool
		wantMsg string
	}{
		{"json object", JSON{}, `{"id":"a"}`, true, "got object"},
		{"json scalar element", JSON{}, `[{"id":"a"}, 3]`, true, "element 1"},
		{"json syntax", JSON{}, `[{"id":`, false, "decode json"},
		{"json trailing data", JSON{}, `[] []`, false, "unexpected data"},
		{"yaml scalar", YAML{}, "just text\n", true, "got string"},
		{"yaml nested list element", YAML{}, "- [a, b]\n", true, "element 0"},
		{"yaml syntax", YAML{}, "- id: [\n", false, "decode yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.codec.Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if errors.Is(err, ErrNotNodeList) != tt.wantNL {
				t.Errorf("errors.Is(ErrNotNodeList) = %v, want %v (%v)", !tt.wantNL, tt.wantNL, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecode_NullElementsAreKept(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		codec Codec
		data  string
	}{
		{JSON{}, `[{"id":"a"}, null]`},
		{YAML{}, "- id: a\n- null\n"},
	} {
		nodes, err := tc.codec.Decode([]byte(tc.data))
		if err != nil {
			t.Fatalf("%s Decode() error = %v", tc.codec.Ext(), err)
		}
		if len(nodes) != 2 || nodes[1] != nil {
			t.Errorf("%s: got %v, want a nil second node", tc.codec.Ext(), nodes)
		}
	}
}

func TestYAML_NonStringKeys(t *testing.T) {
	t.Parallel()

	nodes, err := YAML{}.Decode([]byte("- id: a\n  rules:\n    1: first\n    2: second\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	rules, ok := nodes[0]["rules"].(map[string]any)
	if !ok {
		t.Fatalf("rules = %T, want map[string]any", nodes[0]["rules"])
	}
	if rules["1"] != "first" || rules["2"] != "second" {
		t.Errorf("rules = %v", rules)
	}
	if _, err := (JSON{}).Encode(nodes); err != nil {
		t.Errorf("decoded YAML should be JSON-encodable: %v", err)
	}
}

func TestYAML_NumbersKeepTheirLiteral(t *testing.T) {
	t.Parallel()

	literals := []string{
		"12345678901234567890",
		"123456789012345678901234567890",
		"-42",
		"80.50",
		"1.5e300",
		"1E-7",
	}
	node := flownode.Node{"id": "n1"}
	for i, lit := range literals {
		node["v"+strconv.Itoa(i)] = json.Number(lit)
	}

	data, err := YAML{}.Encode([]flownode.Node{node})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(data), "v0: 12345678901234567890\n") {
		t.Errorf("large integer should be written verbatim and unquoted:\n%s", data)
	}

	got, err := YAML{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, data)
	}
	for i, lit := range literals {
		key := "v" + strconv.Itoa(i)
		if v := got[0][key]; v != json.Number(lit) {
			t.Errorf("%s = %#v, want json.Number(%q)", key, v, lit)
		}
	}

	monolith, err := EncodeMonolith(got)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(monolith), `"v0": 12345678901234567890`) {
		t.Errorf("flow file lost the integer literal:\n%s", monolith)
	}
}

func TestYAML_HandWrittenScalars(t *testing.T) {
	t.Parallel()

	src := "- id: n1\n  hex: 0x1F\n  on: true\n  empty: ~\n  text: '42'\n" +
		"  base: &b {x: 1, y: 2}\n  moved:\n    <<: *b\n    y: 5\n"
	nodes, err := YAML{}.Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	n := nodes[0]

	if n["hex"] != 31 {
		t.Errorf("hex = %#v, want 31", n["hex"])
	}
	if n["on"] != true || n["empty"] != nil || n["text"] != "42" {
		t.Errorf("scalars = %#v %#v %#v", n["on"], n["empty"], n["text"])
	}
	moved, ok := n["moved"].(map[string]any)
	if !ok {
		t.Fatalf("moved = %T", n["moved"])
	}
	if moved["x"] != json.Number("1") || moved["y"] != json.Number("5") {
		t.Errorf("merged mapping = %v, want x=1 y=5", moved)
	}
}

func TestMonolith(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "  \n\t", "[]"} {
			nodes, err := DecodeMonolith([]byte(in))
			if err != nil || len(nodes) != 0 {
				t.Errorf("DecodeMonolith(%q) = %v, %v; want empty list", in, nodes, err)
			}
		}
	})

	t.Run("not an array", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeMonolith([]byte(`{"flows":[]}`)); !errors.Is(err, ErrNotNodeList) {
			t.Errorf("DecodeMonolith(object) error = %v, want ErrNotNodeList", err)
		}
	})

	t.Run("layout", func(t *testing.T) {
		t.Parallel()

		data, err := EncodeMonolith([]flownode.Node{{"id": "t1", "type": "tab"}})
		if err != nil {
			t.Fatal(err)
		}
		want := "[\n    {\n        \"id\": \"t1\",\n        \"type\": \"tab\"\n    }\n]"
		if string(data) != want {
			t.Errorf("EncodeMonolith() =\n%s\nwant\n%s", data, want)
		}
	})

	t.Run("large integers survive", func(t *testing.T) {
		t.Parallel()

		in := `[{"id":"a","big":12345678901234567890}]`
		nodes, err := DecodeMonolith([]byte(in))
		if err != nil {
			t.Fatal(err)
		}
		out, err := EncodeMonolith(nodes)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), "12345678901234567890") {
			t.Errorf("large integer was rounded: %s", out)
		}
	})
}
