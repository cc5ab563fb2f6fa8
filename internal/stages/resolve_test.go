package stages

import (
	"context"
	"strings"
	"testing"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

var graphFiles = map[string]string{
	"src/app.ts":                    "import './app.css';\nexport default {};\n",
	"src/app.css":                   ".app { font-size: 14px; }\n",
	"src/pages/index/index.tsx":     "import * as React from 'react';\nimport { Video } from 'remax/toutiao';\nimport styles from './styles.less';\nimport Card from '../../components/card';\nimport debounce from 'lodash.debounce';\nexport default () => null;\n",
	"src/pages/index/styles.less":   ".title { color: red; }\n",
	"src/components/card/index.tsx": "export default 1;\n",

	"node_modules/react/package.json": `{"name":"react","main":"index.js"}`,
	"node_modules/react/index.js":     "module.exports = require('./cjs/react.js');\n",
	"node_modules/react/cjs/react.js": "exports.createElement = function () {};\n",

	"node_modules/remax/package.json":     `{"name":"remax","module":"esm/index.js","main":"lib/index.js"}`,
	"node_modules/remax/esm/index.js":     "import React from 'react';\nexport const createPageConfig = c => c;\n",
	"node_modules/remax/lib/index.js":     "module.exports = {};\n",
	"node_modules/remax/toutiao/index.js": "export const Video = 'video';\n",

	"node_modules/remax/node_modules/react/index.js": "module.exports = 'nested copy';\n",
}

func TestResolveWalksGraph(t *testing.T) {
	d := testDeps(t, nil, graphFiles,
		core.Entry{Path: "src/app.ts", Kind: core.EntryApp},
		core.Entry{Path: "src/pages/index/index.tsx", Kind: core.EntryPage},
	)
	s := mustStage(t, Resolve, d)

	b := core.NewBundle(d.Catalog.Seed("remax"))
	var w warnings
	if err := s.Bundle(context.Background(), b, &w); err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}

	for _, id := range []string{
		"src/app.ts",
		"src/app.css",
		"src/pages/index/index.tsx",
		"src/pages/index/styles.less",
		"src/components/card/index.tsx",
		"node_modules/react/index.js",
		"node_modules/react/cjs/react.js",
		"node_modules/remax/esm/index.js",
		"node_modules/remax/toutiao/index.js",
	} {
		if !b.Has(id) {
			t.Errorf("bundle missing %s; have %v", id, b.IDs())
		}
	}
	if b.Has("node_modules/remax/node_modules/react/index.js") {
		t.Error("react was not deduplicated to the root node_modules")
	}
	if b.Has("node_modules/remax/lib/index.js") {
		t.Error("package main was preferred over module")
	}

	page, _ := b.Get("src/pages/index/index.tsx")
	if page.Entry != core.EntryPage {
		t.Errorf("page Entry = %v, want EntryPage", page.Entry)
	}
	resolved := make(map[string]string)
	for _, imp := range page.Imports {
		resolved[imp.Specifier] = imp.Resolved
	}
	if resolved["../../components/card"] != "src/components/card/index.tsx" {
		t.Errorf("card resolved to %q", resolved["../../components/card"])
	}
	if got, ok := resolved["lodash.debounce"]; !ok || got != "" {
		t.Errorf("lodash.debounce import = %q, %v; want unresolved", got, ok)
	}

	codes := w.codes()
	if len(codes) != 1 || codes[0] != core.CodeUnresolvedImport {
		t.Errorf("warnings = %v, want one UNRESOLVED_IMPORT", codes)
	}
}

func TestResolveMissingRelativeImportFails(t *testing.T) {
	d := testDeps(t, nil, map[string]string{
		"src/pages/index/index.tsx": "import x from './missing';\n",
	})
	s := mustStage(t, Resolve, d)

	err := s.Bundle(context.Background(), core.NewBundle(d.Catalog.Seed()), &warnings{})
	if err == nil || !strings.Contains(err.Error(), "./missing") {
		t.Errorf("Bundle() error = %v, want unresolved ./missing", err)
	}
}

func TestResolveIgnoresCommentedImports(t *testing.T) {
	d := testDeps(t, nil, map[string]string{
		"src/pages/index/index.tsx": "// import gone from './gone';\n/* import old from './old';\n*/\nimport card from './card';\nconst url = 'http://cdn/x.js'; // require('./nope')\nexport default card;\n",
		"src/pages/index/card.ts":   "export default 1;\n",
	})
	s := mustStage(t, Resolve, d)

	b := core.NewBundle(d.Catalog.Seed())
	if err := s.Bundle(context.Background(), b, &warnings{}); err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}
	page, _ := b.Get("src/pages/index/index.tsx")
	if len(page.Imports) != 1 || page.Imports[0].Specifier != "./card" {
		t.Errorf("Imports = %+v, want only ./card", page.Imports)
	}
}

func TestScanImportsSkipsComments(t *testing.T) {
	code := "import a from './a'; // import b from './b'\n/*\nrequire('./c')\n*/\nconst s = \"// not a comment\"; import d from './d';\n"
	got := strings.Join(scanImports(code), ",")
	if got != "./a,./d" {
		t.Errorf("scanImports() = %q, want ./a,./d", got)
	}

	rewritten := rewriteImports(code, func(spec string) (string, bool) { return spec + ".js", false })
	if !strings.Contains(rewritten, "'./b'") || !strings.Contains(rewritten, "'./d.js'") {
		t.Errorf("rewriteImports() = %q", rewritten)
	}
}

func TestSplitPackage(t *testing.T) {
	tests := []struct {
		spec    string
		wantPkg string
		wantSub string
	}{
		{spec: "react", wantPkg: "react"},
		{spec: "remax/toutiao", wantPkg: "remax", wantSub: "toutiao"},
		{spec: "@remax/core", wantPkg: "@remax/core"},
		{spec: "@remax/core/lib/index", wantPkg: "@remax/core", wantSub: "lib/index"},
	}

	for _, tt := range tests {
		pkg, sub := splitPackage(tt.spec)
		if pkg != tt.wantPkg || sub != tt.wantSub {
			t.Errorf("splitPackage(%q) = %q, %q; want %q, %q", tt.spec, pkg, sub, tt.wantPkg, tt.wantSub)
		}
	}
}
