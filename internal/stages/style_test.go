package stages

import (
	"context"
	"strings"
	"testing"

	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

func TestPxToRpx(t *testing.T) {
	tests := []struct {
		css      string
		multiple float64
		want     string
	}{
		{css: "a { margin: 10px; }", multiple: 1, want: "a { margin: 10rpx; }"},
		{css: "a { padding: 16px 24px; }", multiple: 2, want: "a { padding: 32rpx 48rpx; }"},
		{css: "a { top: -0.5px; }", multiple: 1, want: "a { top: -0.5rpx; }"},
		{css: "a { width: 10PX; }", multiple: 1, want: "a { width: 10PX; }"},
		{css: ".w1px { width: 1px; }", multiple: 1, want: ".w1px { width: 1rpx; }"},
	}

	for _, tt := range tests {
		if got := pxToRpx(tt.css, tt.multiple); got != tt.want {
			t.Errorf("pxToRpx(%q) = %q, want %q", tt.css, got, tt.want)
		}
	}
}

func TestStylePlainStylesheet(t *testing.T) {
	s := mustStage(t, Style, testDeps(t, &config.File{CSSModules: true}, nil))

	m := module("src/app.css", ".app { font-size: 14px; }\n", core.EntryNone)
	if err := s.Transform(context.Background(), &m, &warnings{}); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if string(m.Content) != ".app { font-size: 14rpx; }\n" {
		t.Errorf("Content = %q", m.Content)
	}
	if len(m.Assets) != 0 {
		t.Errorf("Assets = %v, want none", m.Assets)
	}
	if len(m.Map) != 0 {
		t.Errorf("Map = %s, want none for a stylesheet", m.Map)
	}
}

func TestStyleLessModule(t *testing.T) {
	source := "/* .ignored */\n.title, .title:hover { padding: 8px; }\n@media (min-width: 100px) {\n  .title .sub-title { color: red; }\n}\n"

	tests := []struct {
		name       string
		cssModules bool
		scoped     bool
	}{
		{name: "css modules", cssModules: true, scoped: true},
		{name: "global classes", cssModules: false, scoped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustStage(t, Style, testDeps(t, &config.File{CSSModules: tt.cssModules}, nil))

			m := module("src/components/card.less", source, core.EntryNone)
			if err := s.Transform(context.Background(), &m, &warnings{}); err != nil {
				t.Fatalf("Transform() error = %v", err)
			}

			if len(m.Assets) != 1 || m.Assets[0].Path != "src/components/card.css" {
				t.Fatalf("Assets = %+v", m.Assets)
			}
			css := string(m.Assets[0].Content)
			code := string(m.Content)

			suffix := "_" + core.ShortHash([]byte(m.ID), 5)
			title := "title"
			if tt.scoped {
				title += suffix
			}

			if !strings.Contains(css, "."+title+", ."+title+":hover { padding: 8rpx; }") {
				t.Errorf("stylesheet selectors not rewritten:\n%s", css)
			}
			if !strings.Contains(css, "(min-width: 100rpx)") {
				t.Errorf("media query px not converted:\n%s", css)
			}
			if !strings.Contains(css, "/* .ignored */") {
				t.Errorf("comment altered:\n%s", css)
			}
			if !strings.Contains(code, `"title": "`+title+`",`) {
				t.Errorf("class map missing title:\n%s", code)
			}
			if strings.Contains(code, "ignored") {
				t.Errorf("class map picked up a comment:\n%s", code)
			}
			if !strings.HasPrefix(code, "export default {") {
				t.Errorf("class map is not a default export:\n%s", code)
			}
			if !strings.Contains(string(m.Map), `"sources":["src/components/card.less"]`) {
				t.Errorf("Map = %s, want an identity map of the .less source", m.Map)
			}
		})
	}
}
