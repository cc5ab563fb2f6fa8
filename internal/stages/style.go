package stages

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

var (
	pxRe    = regexp.MustCompile(`([^\w.]|^)(\d*\.?\d+)px\b`)
	classRe = regexp.MustCompile(`\.(-?[_a-zA-Z][\w-]*)`)
)

// Style converts px to rpx and turns .less files into class-map modules whose
// stylesheet is extracted as an asset. With cssModules the class names of
// those modules are scoped per file.
func Style(d Deps) (core.Stage, error) {
	if err := d.require(NameStyle, "project"); err != nil {
		return core.Stage{}, err
	}

	multiple := d.Project.PxMultiple()
	modules := d.Project.CSSModules()

	return core.Stage{
		Name:     NameStyle,
		Role:     core.RoleStyle,
		Include:  core.Exts(styleExts...),
		Consumes: styleExts,
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			css := pxToRpx(string(m.Content), multiple)

			if m.Kind != core.KindStyleModule {
				m.Content = []byte(css)
				return nil
			}

			rename := func(name string) string { return name }
			if modules {
				suffix := "_" + core.ShortHash([]byte(m.ID), 5)
				rename = func(name string) string { return name + suffix }
			}
			css, classes := scopeClasses(css, rename)

			stem := strings.TrimSuffix(m.Path, ".less")
			m.Assets = append(m.Assets, core.Asset{Path: stem + ".css", Content: []byte(css)})
			m.Map = identityMap(m.ID, string(m.Content))
			m.Content = []byte(classMapModule(classes))
			return nil
		},
	}, nil
}

func pxToRpx(css string, multiple float64) string {
	return pxRe.ReplaceAllStringFunc(css, func(match string) string {
		sub := pxRe.FindStringSubmatch(match)
		v, err := strconv.ParseFloat(sub[2], 64)
		if err != nil {
			return match
		}
		return sub[1] + strconv.FormatFloat(v*multiple, 'f', -1, 64) + "rpx"
	})
}

// scopeClasses renames class selectors, leaving declarations and comments
// untouched. It returns the rewritten stylesheet and the original to new
// name map.
func scopeClasses(css string, rename func(string) string) (string, map[string]string) {
	classes := make(map[string]string)
	var out strings.Builder

	chunkStart := 0
	for i := 0; i < len(css); i++ {
		switch c := css[i]; {
		case c == '/' && i+1 < len(css) && css[i+1] == '*':
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				i = len(css) - 1
			} else {
				i += end + 3
			}
			out.WriteString(css[chunkStart : i+1])
			chunkStart = i + 1
		case c == '"' || c == '\'':
			i = skipString(css, i)
		case c == '{':
			chunk := css[chunkStart:i]
			if !strings.HasPrefix(strings.TrimSpace(chunk), "@") {
				chunk = classRe.ReplaceAllStringFunc(chunk, func(sel string) string {
					name := sel[1:]
					scoped, ok := classes[name]
					if !ok {
						scoped = rename(name)
						classes[name] = scoped
					}
					return "." + scoped
				})
			}
			out.WriteString(chunk)
			out.WriteByte(c)
			chunkStart = i + 1
		case c == '}' || c == ';':
			out.WriteString(css[chunkStart : i+1])
			chunkStart = i + 1
		}
	}
	if chunkStart < len(css) {
		out.WriteString(css[chunkStart:])
	}

	return out.String(), classes
}

func classMapModule(classes map[string]string) string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("export default {")
	for _, name := range names {
		sb.WriteString("\n  " + strconv.Quote(name) + ": " + strconv.Quote(classes[name]) + ",")
	}
	if len(names) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("};\n")
	return sb.String()
}
