package core

import "testing"

func TestRelativeImport(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want string
	}{
		{"pages/index/index.js", "components/card.js", "../../components/card.js"},
		{"app.js", "pages/index/index.js", "./pages/index/index.js"},
		{"components/a.js", "components/b.js", "./b.js"},
		{"pages/index/index.js", "node_modules/react/index.js", "../../node_modules/react/index.js"},
		{"components/ui/button.js", "components/theme.js", "../theme.js"},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := RelativeImport(tt.from, tt.to); got != tt.want {
				t.Errorf("RelativeImport(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	valid := []string{"pages/index.js", "base.ttml", "node_modules/react/index.js"}
	for _, p := range valid {
		if err := ValidateOutputPath(p); err != nil {
			t.Errorf("ValidateOutputPath(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"", "/etc/passwd", "../escape.js", "a/../../b.js", "pages/*.js"}
	for _, p := range invalid {
		if err := ValidateOutputPath(p); err == nil {
			t.Errorf("ValidateOutputPath(%q) = nil, want error", p)
		}
	}
}

func TestRouteForPath(t *testing.T) {
	if got := RouteForPath("pages/index/index.js"); got != "pages/index/index" {
		t.Errorf("RouteForPath = %q", got)
	}
	if got := TemplatePathFor("pages/index/index.js", ".ttml"); got != "pages/index/index.ttml" {
		t.Errorf("TemplatePathFor = %q", got)
	}
}
