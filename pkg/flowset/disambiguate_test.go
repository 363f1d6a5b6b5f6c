// SPDX-License-Identifier: MPL-2.0

package flowset

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

func page(id, label string) Group {
	return NewGroup(flownode.KindPage, flownode.Node{"id": id, "type": "tab", "label": label})
}

func normalizedNames(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.NormalizedName
	}
	return out
}

func TestDisambiguate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		groups []Group
		want   []string
	}{
		{
			name:   "unique names untouched",
			groups: []Group{page("t1", "Alpha"), page("t2", "Beta")},
			want:   []string{"alpha", "beta"},
		},
		{
			name:   "equal names get id suffix",
			groups: []Group{page("t1", "Flow A"), page("t2", "Flow A"), page("t3", "Other")},
			want:   []string{"flow-a-t1", "flow-a-t2", "other"},
		},
		{
			name:   "names normalizing alike are renamed",
			groups: []Group{page("t1", "Flow A"), page("t2", "flow-a")},
			want:   []string{"flow-a-t1", "flow-a-t2"},
		},
		{
			name:   "empty normalized name falls back to id",
			groups: []Group{page("t1", "???")},
			want:   []string{"t1"},
		},
		{
			name:   "ids differing only in case get numeric suffix",
			groups: []Group{page("AB", "Same"), page("ab", "Same")},
			want:   []string{"same-ab", "same-ab-2"},
		},
		{
			name:   "numeric suffix skips names already taken",
			groups: []Group{page("AB", "Same"), page("ab", "Same"), page("x", "same-ab-2")},
			want:   []string{"same-ab", "same-ab-3", "same-ab-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Disambiguate(tt.groups)
			if diff := cmp.Diff(tt.want, normalizedNames(got)); diff != "" {
				t.Errorf("normalized names (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDisambiguateUniqueness(t *testing.T) {
	t.Parallel()

	labels := []string{"A", "a", "A ", "-a-", "B", "B", "B", "", "", "c.d", "C.D"}
	groups := make([]Group, len(labels))
	for i, l := range labels {
		groups[i] = page(string(rune('p'+i%5))+string(rune('0'+i)), l)
	}

	seen := make(map[string]string)
	for _, g := range Disambiguate(groups) {
		if g.NormalizedName == "" {
			t.Errorf("group %q has an empty normalized name", g.ID)
		}
		if prev, dup := seen[g.NormalizedName]; dup {
			t.Errorf("groups %q and %q share normalized name %q", prev, g.ID, g.NormalizedName)
		}
		seen[g.NormalizedName] = g.ID
	}
}

func TestDisambiguateReturnsCopies(t *testing.T) {
	t.Parallel()

	in := []Group{page("t1", "Dup"), page("t2", "Dup")}
	out := Disambiguate(in)

	if in[0].Name != "Dup" || in[0].NormalizedName != "dup" {
		t.Errorf("input mutated: %+v", in[0])
	}
	out[0].Content[0]["label"] = "changed"
	if in[0].Content[0].Label() != "Dup" {
		t.Error("output content aliases input content")
	}
}

func TestDisambiguateRewritesDisplayNames(t *testing.T) {
	t.Parallel()

	got := Disambiguate([]Group{
		page("t1", "Flow A"),
		page("t2", "flow-a"),
		page("t3", "???"),
		page("t4", "Flow B"),
	})

	type named struct{ Name, NormalizedName string }
	var names []named
	for _, g := range got {
		names = append(names, named{g.Name, g.NormalizedName})
	}
	want := []named{
		{"Flow A-t1", "flow-a-t1"},
		{"flow-a-t2", "flow-a-t2"},
		{"???-t3", "t3"},
		{"Flow B", "flow-b"},
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
