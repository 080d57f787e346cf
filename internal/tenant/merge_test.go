package tenant

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "override wins on leaves",
			base:     map[string]any{"ai": map[string]any{"model": "A"}},
			override: map[string]any{"ai": map[string]any{"model": "B"}},
			want:     map[string]any{"ai": map[string]any{"model": "B"}},
		},
		{
			name:     "nested keys absent from override are preserved",
			base:     map[string]any{"ai": map[string]any{"model": "A", "temperature": 0.7}},
			override: map[string]any{"ai": map[string]any{"model": "B"}},
			want:     map[string]any{"ai": map[string]any{"model": "B", "temperature": 0.7}},
		},
		{
			name:     "arrays replace wholesale",
			base:     map[string]any{"tags": []any{"a", "b"}},
			override: map[string]any{"tags": []any{"c"}},
			want:     map[string]any{"tags": []any{"c"}},
		},
		{
			name:     "map replaces scalar",
			base:     map[string]any{"brand": "plain"},
			override: map[string]any{"brand": map[string]any{"name": "Acme"}},
			want:     map[string]any{"brand": map[string]any{"name": "Acme"}},
		},
		{
			name:     "disjoint keys union",
			base:     map[string]any{"a": 1},
			override: map[string]any{"b": 2},
			want:     map[string]any{"a": 1, "b": 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deepMerge(tt.base, tt.override)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("deepMerge() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"ai": map[string]any{"model": "A"}}
	override := map[string]any{"ai": map[string]any{"model": "B"}}
	deepMerge(base, override)

	if base["ai"].(map[string]any)["model"] != "A" {
		t.Error("base mutated by merge")
	}
}
