package stages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

const entryBinding = "__mini_entry"

var (
	exportDefaultRe = regexp.MustCompile(`\bexport\s+default\s+`)
	exportAsDefault = regexp.MustCompile(`\bexport\s*\{([^}]*)\}\s*;?`)
)

// Page wraps the default export of every entry in the runtime's config
// factory: pages become Page(createPageConfig(X)), the app App(createAppConfig(X)).
func Page(d Deps) (core.Stage, error) {
	if err := d.require(NamePage, "project"); err != nil {
		return core.Stage{}, err
	}

	runtimeModule := d.Project.RuntimeModule()

	return core.Stage{
		Name:     NamePage,
		Role:     core.RoleComponent,
		Include:  core.And(core.Entries(), core.Exts(scriptExts...)),
		Consumes: scriptExts,
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			host, factory := "Page", "createPageConfig"
			if m.Entry == core.EntryApp {
				host, factory = "App", "createAppConfig"
			}

			code, ok := bindDefaultExport(string(m.Content))
			if !ok {
				w.Warn(core.Warning(core.CodeMissingDefaultExport, m.ID, "entry has no default export to pass to %s", factory))
				return nil
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "import { %s } from %q;\n", factory, runtimeModule)
			sb.WriteString(code)
			if !strings.HasSuffix(code, "\n") {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "export default %s(%s(%s));\n", host, factory, entryBinding)

			m.Content = []byte(sb.String())
			m.Imports = append(m.Imports, core.Import{Specifier: runtimeModule})
			return nil
		},
	}, nil
}

// bindDefaultExport turns the default export into a local binding.
func bindDefaultExport(code string) (string, bool) {
	if loc := exportDefaultRe.FindStringIndex(code); loc != nil {
		return code[:loc[0]] + "const " + entryBinding + " = " + code[loc[1]:], true
	}

	for _, loc := range exportAsDefault.FindAllStringSubmatchIndex(code, -1) {
		var kept []string
		local := ""
		for _, item := range strings.Split(code[loc[2]:loc[3]], ",") {
			fields := strings.Fields(item)
			if len(fields) == 3 && fields[1] == "as" && fields[2] == "default" {
				local = fields[0]
				continue
			}
			if len(fields) > 0 {
				kept = append(kept, strings.Join(fields, " "))
			}
		}
		if local == "" {
			continue
		}

		stmt := ""
		if len(kept) > 0 {
			stmt = "export { " + strings.Join(kept, ", ") + " };"
		}
		stmt += "\nconst " + entryBinding + " = " + local + ";"
		return code[:loc[0]] + stmt + code[loc[1]:], true
	}

	return "", false
}
