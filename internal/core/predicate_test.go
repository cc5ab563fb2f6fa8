package core

import "testing"

func TestPredicates(t *testing.T) {
	page := NewModulePath("src/pages/index/index.tsx", EntryPage)
	component := NewModulePath("./src/components/card.tsx", EntryNone)
	dep := NewModulePath("node_modules/react/index.js", EntryNone)
	style := NewModulePath("src/app.css", EntryNone)

	tests := []struct {
		name string
		pred Predicate
		path ModulePath
		want bool
	}{
		{"all matches anything", All(), dep, true},
		{"exts match", Exts(".ts", ".tsx"), component, true},
		{"exts miss", Exts(".ts", ".tsx"), style, false},
		{"entries match page", Entries(), page, true},
		{"entries miss component", Entries(), component, false},
		{"node modules", NodeModules(), dep, true},
		{"not node modules", Not(NodeModules()), component, true},
		{"glob double star", MustGlob("src/**"), component, true},
		{"glob miss", MustGlob("src/**"), dep, false},
		{"glob node_modules js", MustGlob("**/node_modules/**/*.js", "node_modules/**/*.js"), dep, true},
		{"and", And(Exts(".tsx"), Entries()), page, true},
		{"and miss", And(Exts(".tsx"), Entries()), component, false},
		{"or", Or(Exts(".css"), Entries()), style, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.path); got != tt.want {
				t.Errorf("predicate(%q) = %v, want %v", tt.path.Raw, got, tt.want)
			}
		})
	}
}

func TestGlobRejectsInvalidPattern(t *testing.T) {
	if _, err := Glob("src/[a"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestModulePath(t *testing.T) {
	p := NewModulePath("./src//pages/index.tsx", EntryNone)
	if p.Raw != "src/pages/index.tsx" {
		t.Errorf("Raw = %q", p.Raw)
	}
	if p.Ext() != ".tsx" {
		t.Errorf("Ext = %q", p.Ext())
	}
	if got := len(p.Segments()); got != 3 {
		t.Errorf("Segments len = %d, want 3", got)
	}
	if p.InNodeModules() {
		t.Error("InNodeModules = true, want false")
	}
}
