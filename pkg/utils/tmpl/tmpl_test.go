package tmpl_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/utils/tmpl"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ctx  map[string]any
		want string
	}{
		{
			name: "simple substitution",
			in:   "release-{{tagName}}",
			ctx:  map[string]any{"tagName": "1.2.0"},
			want: "release-1.2.0",
		},
		{
			name: "dotted path",
			in:   "{{pkg.name}}@{{pkg.version}}",
			ctx: map[string]any{
				"pkg": map[string]any{"name": "core", "version": "2.0.1"},
			},
			want: "core@2.0.1",
		},
		{
			name: "missing key keeps literal token",
			in:   "release-{{nope}}",
			ctx:  map[string]any{"tagName": "1.2.0"},
			want: "release-{{nope}}",
		},
		{
			name: "missing nested key keeps literal token",
			in:   "{{pkg.missing}}",
			ctx:  map[string]any{"pkg": map[string]any{"name": "core"}},
			want: "{{pkg.missing}}",
		},
		{
			name: "path through non-map keeps literal token",
			in:   "{{pkg.name.oops}}",
			ctx:  map[string]any{"pkg": map[string]any{"name": "core"}},
			want: "{{pkg.name.oops}}",
		},
		{
			name: "number and bool values",
			in:   "batch-{{length}}-{{dryRun}}",
			ctx:  map[string]any{"length": 2, "dryRun": true},
			want: "batch-2-true",
		},
		{
			name: "json float renders as integer",
			in:   "n={{n}}",
			ctx:  map[string]any{"n": float64(42)},
			want: "n=42",
		},
		{
			name: "whitespace inside braces",
			in:   "release-{{ tagName }}",
			ctx:  map[string]any{"tagName": "1.2.0"},
			want: "release-1.2.0",
		},
		{
			name: "no tokens",
			in:   "plain text",
			ctx:  map[string]any{},
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tmpl.Render(tt.in, tt.ctx)).Equal(tt.want)
		})
	}
}

func TestRenderValue(t *testing.T) {
	ctx := map[string]any{"name": "core", "version": "1.0.0"}

	in := map[string]any{
		"title": "[Release] {{name}}",
		"nested": map[string]any{
			"body": "{{name}}@{{version}}",
		},
		"list":  []any{"{{name}}", 7, true},
		"count": 3,
	}

	out := gt.Cast[map[string]any](t, tmpl.RenderValue(in, ctx))
	gt.Value(t, out["title"]).Equal("[Release] core")
	gt.Value(t, out["count"]).Equal(3)

	nested := gt.Cast[map[string]any](t, out["nested"])
	gt.Value(t, nested["body"]).Equal("core@1.0.0")

	list := gt.Cast[[]any](t, out["list"])
	gt.Value(t, list[0]).Equal("core")
	gt.Value(t, list[1]).Equal(7)

	// Input containers must not be mutated
	gt.Value(t, in["title"]).Equal("[Release] {{name}}")
}
